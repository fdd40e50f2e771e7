package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/oszuidwest/zwfm-countdown/internal/countdown"
	"github.com/oszuidwest/zwfm-countdown/internal/util"
)

var (
	tuiTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	tuiUnitStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2).
			Align(lipgloss.Center)

	tuiExpiredStyle = tuiUnitStyle.
			BorderForeground(lipgloss.Color("196"))

	tuiHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// refreshMsg carries the display written by one countdown refresh.
type refreshMsg struct {
	display   countdown.Display
	remaining countdown.Remaining
}

// stateMsg reports the timer state after a start/stop toggle.
type stateMsg countdown.State

// tuiModel renders a countdown in the terminal.
type tuiModel struct {
	timer   *countdown.Timer
	display countdown.Display
	state   countdown.State
	expired bool
}

func newTUIModel(timer *countdown.Timer) tuiModel {
	return tuiModel{
		timer:   timer,
		display: countdown.Display{Days: "00", Hours: "00", Minutes: "00", Seconds: "00"},
		state:   countdown.StateStopped,
	}
}

// Init implements tea.Model.
func (m tuiModel) Init() tea.Cmd {
	return m.toggle(countdown.StateRunning)
}

// toggle changes the timer state off the event loop; a refresh in progress
// may be waiting for the loop to accept its message.
func (m tuiModel) toggle(want countdown.State) tea.Cmd {
	timer := m.timer
	return func() tea.Msg {
		if want == countdown.StateRunning {
			timer.Start()
		} else {
			timer.Stop()
		}
		return stateMsg(timer.State())
	}
}

// Update implements tea.Model.
func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.display = msg.display
		if msg.remaining.Expired() {
			m.expired = true
			m.state = countdown.StateStopped
		} else {
			m.state = countdown.StateRunning
		}
	case stateMsg:
		m.state = countdown.State(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "s", " ":
			if m.expired {
				return m, nil
			}
			if m.state == countdown.StateRunning {
				return m, m.toggle(countdown.StateStopped)
			}
			return m, m.toggle(countdown.StateRunning)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m tuiModel) View() string {
	style := tuiUnitStyle
	if m.expired {
		style = tuiExpiredStyle
	}

	units := []struct{ label, value string }{
		{"DAYS", m.display.Days},
		{"HOURS", m.display.Hours},
		{"MINUTES", m.display.Minutes},
		{"SECONDS", m.display.Seconds},
	}
	boxes := make([]string, 0, len(units))
	for _, u := range units {
		boxes = append(boxes, style.Render(u.value+"\n"+u.label))
	}

	var b strings.Builder
	b.WriteString(tuiTitleStyle.Render("Counting down to " + util.HumanTime(m.timer.Target())))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")
	help := fmt.Sprintf("state: %s · s: start/stop · q: quit", m.state)
	if m.expired {
		help = "target reached · q: quit"
	}
	b.WriteString(tuiHelpStyle.Render(help))
	b.WriteString("\n")
	return b.String()
}

// runTUI counts down to target in the terminal until the user quits.
func runTUI(target time.Time) error {
	board := countdown.NewBoard()

	var program *tea.Program
	timer, err := countdown.New(target, board.Targets(),
		countdown.WithRefreshHook(func(r countdown.Remaining) {
			program.Send(refreshMsg{display: board.Snapshot(), remaining: r})
		}),
	)
	if err != nil {
		return err
	}
	defer timer.Stop()

	program = tea.NewProgram(newTUIModel(timer), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return util.WrapError("run terminal UI", err)
	}
	return nil
}
