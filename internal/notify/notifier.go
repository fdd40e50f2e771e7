package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-countdown/internal/config"
	"github.com/oszuidwest/zwfm-countdown/internal/util"
)

// ExpiryNotifier reports a countdown reaching its target on every configured
// channel, at most once.
type ExpiryNotifier struct {
	cfg *config.Config

	once sync.Once
	wg   sync.WaitGroup
}

// NewExpiryNotifier returns a notifier reading its channels from cfg.
func NewExpiryNotifier(cfg *config.Config) *ExpiryNotifier {
	return &ExpiryNotifier{cfg: cfg}
}

// Watch blocks until expired is closed or ctx is done, and notifies on expiry.
func (n *ExpiryNotifier) Watch(ctx context.Context, expired <-chan struct{}, target time.Time) {
	select {
	case <-ctx.Done():
	case <-expired:
		n.Notify(ctx, target)
	}
}

// Notify sends the expiry of target to each configured channel. Only the
// first call sends; the sends are not cancelled with ctx.
func (n *ExpiryNotifier) Notify(ctx context.Context, target time.Time) {
	n.once.Do(func() {
		ctx := context.WithoutCancel(ctx)
		ev := NewEvent(EventExpired, target)
		cfg := n.cfg.Snapshot()
		emailCfg := emailConfigFromSnapshot(&cfg)

		slog.Info("countdown reached target", "target", ev.target(), "event", ev.ID)

		channels := []struct {
			name    string
			enabled bool
			send    func() error
		}{
			{"Expiry webhook", cfg.HasWebhook(), func() error { return SendWebhook(ctx, cfg.WebhookURL, ev) }},
			{"Expiry email", cfg.HasEmail(), func() error { return SendEmail(ctx, emailCfg, ev) }},
			{"Expiry log", cfg.HasLogPath(), func() error { return AppendLog(cfg.LogPath, ev) }},
		}
		for _, ch := range channels {
			if !ch.enabled {
				continue
			}
			n.wg.Go(func() {
				util.LogNotifyResult(ch.send, ch.name, true)
			})
		}
	})
}

// Wait blocks until all notifications in flight have finished.
func (n *ExpiryNotifier) Wait() {
	n.wg.Wait()
}

// TestTriggers returns the test senders keyed by channel name.
func (n *ExpiryNotifier) TestTriggers() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"webhook": func(ctx context.Context) error {
			return SendTestWebhook(ctx, n.cfg.WebhookURL())
		},
		"email": func(ctx context.Context) error {
			cfg := n.cfg.Snapshot()
			return SendTestEmail(ctx, emailConfigFromSnapshot(&cfg))
		},
		"log": func(_ context.Context) error {
			return WriteTestLog(n.cfg.LogPath())
		},
	}
}

func emailConfigFromSnapshot(s *config.Snapshot) *EmailConfig {
	return &EmailConfig{
		Host:       s.EmailSMTPHost,
		Port:       s.EmailSMTPPort,
		FromName:   s.EmailFromName,
		Username:   s.EmailUsername,
		Password:   s.EmailPassword,
		Recipients: s.EmailRecipients,
	}
}
