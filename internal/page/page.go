// Package page assembles the countdown page from its header and countdown
// fragments.
package page

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-countdown/internal/fragment"
	"github.com/oszuidwest/zwfm-countdown/internal/util"
	"golang.org/x/net/html"
)

// Fragment paths relative to the fragment root.
const (
	HeaderFragment    = "components/header.html"
	CountdownFragment = "components/countdown.html"
)

// TargetIDs are the element IDs of the four display targets, in unit order.
var TargetIDs = []string{"days", "hours", "minutes", "seconds"}

// ErrTargetNotFound is returned when the countdown fragment lacks a display target.
var ErrTargetNotFound = errors.New("display target not found in countdown fragment")

// Options configures an Assembler.
type Options struct {
	// HeaderPath overrides the header fragment, e.g. a Markdown file.
	HeaderPath string
	Target     time.Time
	Version    string
}

// Page is an assembled page ready for rendering.
type Page struct {
	Header    template.HTML
	Countdown template.HTML
	// Live is true when all display targets were resolved and the browser
	// should subscribe to countdown updates.
	Live        bool
	TargetISO   string
	TargetLabel string
	Version     string
	Year        int
}

// Assembler loads fragments and injects them into the index template.
type Assembler struct {
	loader fragment.Loader
	tmpl   *template.Template
	opts   Options
}

// New parses index.html from templates and returns an Assembler.
func New(loader fragment.Loader, templates fs.FS, opts Options) (*Assembler, error) {
	tmpl, err := template.ParseFS(templates, "index.html")
	if err != nil {
		return nil, util.WrapError("parse index template", err)
	}
	if opts.HeaderPath == "" {
		opts.HeaderPath = HeaderFragment
	}
	return &Assembler{loader: loader, tmpl: tmpl, opts: opts}, nil
}

// Assemble loads both fragments and resolves the display targets.
// On ErrTargetNotFound the returned page is still usable but not live.
func (a *Assembler) Assemble(ctx context.Context) (*Page, error) {
	header := a.loader.Load(ctx, a.opts.HeaderPath)
	countdown := a.loader.Load(ctx, CountdownFragment)

	p := &Page{
		// Fragments are trusted static assets.
		Header:      template.HTML(header),    //nolint:gosec
		Countdown:   template.HTML(countdown), //nolint:gosec
		TargetISO:   a.opts.Target.Format(time.RFC3339),
		TargetLabel: util.HumanTime(a.opts.Target),
		Version:     a.opts.Version,
		Year:        time.Now().Year(),
	}

	missing, err := MissingTargets(countdown)
	if err != nil {
		return p, err
	}
	if len(missing) > 0 {
		return p, fmt.Errorf("%w: %s", ErrTargetNotFound, strings.Join(missing, ", "))
	}
	p.Live = true
	return p, nil
}

// Render writes the assembled page.
func (a *Assembler) Render(w io.Writer, p *Page) error {
	if err := a.tmpl.Execute(w, p); err != nil {
		return util.WrapError("render page", err)
	}
	return nil
}

// MissingTargets returns the display target IDs absent from markup.
func MissingTargets(markup string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, util.WrapError("parse countdown fragment", err)
	}

	found := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "id" && slices.Contains(TargetIDs, attr.Val) {
					found[attr.Val] = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var missing []string
	for _, id := range TargetIDs {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
