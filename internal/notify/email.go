// Package notify reports countdown expiry over webhook, email and a JSON
// lines log file.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-countdown/internal/util"
	"github.com/wneessen/go-mail"
)

// EmailConfig contains SMTP server settings for email notifications.
type EmailConfig struct {
	Host       string
	Port       int
	FromName   string
	Username   string
	Password   string
	Recipients string
}

// validate reports the first missing setting needed to send mail.
func (c *EmailConfig) validate() error {
	switch {
	case c.Host == "":
		return errors.New("SMTP host not configured")
	case c.Username == "":
		return errors.New("email username not configured")
	case c.Recipients == "":
		return errors.New("email recipients not configured")
	}
	return nil
}

// SendEmail mails ev to the configured recipients. Incomplete settings skip
// the send.
func SendEmail(ctx context.Context, cfg *EmailConfig, ev Event) error {
	if cfg.validate() != nil {
		return nil
	}
	subject, body := composeEmail(ev)
	return sendEmail(ctx, cfg, subject, body)
}

// SendTestEmail mails a test event. Unlike SendEmail it reports incomplete
// settings.
func SendTestEmail(ctx context.Context, cfg *EmailConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	subject, body := composeEmail(NewEvent(EventTest, time.Time{}))
	return sendEmail(ctx, cfg, subject, body)
}

// composeEmail returns the subject and plain text body for ev.
func composeEmail(ev Event) (subject, body string) {
	if ev.Kind == EventExpired {
		return "[COUNTDOWN] Target reached - ZuidWest FM", fmt.Sprintf(
			"The countdown has reached its target.\n\n"+
				"Target: %s\n"+
				"Time:   %s\n"+
				"Event:  %s",
			util.HumanTime(ev.Target), util.HumanTime(ev.At), ev.ID,
		)
	}
	return "[TEST] ZuidWest FM Countdown", fmt.Sprintf(
		"%s.\n\n"+
			"Time: %s\n\n"+
			"SMTP configuration is working correctly.",
		testMessage, util.HumanTime(ev.At),
	)
}

// parseRecipients splits a comma-separated recipient list.
func parseRecipients(list string) []string {
	var recipients []string
	for r := range strings.SplitSeq(list, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return recipients
}

// buildMessage assembles the message for the configured sender and recipients.
func buildMessage(cfg *EmailConfig, subject, body string) (*mail.Msg, error) {
	recipients := parseRecipients(cfg.Recipients)
	if len(recipients) == 0 {
		return nil, errors.New("no valid recipients")
	}

	m := mail.NewMsg()
	if err := m.FromFormat(cfg.FromName, cfg.Username); err != nil {
		return nil, util.WrapError("set from address", err)
	}
	if err := m.To(recipients...); err != nil {
		return nil, util.WrapError("set recipient address", err)
	}
	m.Subject(subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}

// clientOptions returns SMTP client options with port-appropriate TLS settings.
func clientOptions(cfg *EmailConfig) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}

	switch cfg.Port {
	case 465: // implicit TLS
		opts = append(opts, mail.WithSSL())
	case 587: // STARTTLS required
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	return opts
}

func sendEmail(ctx context.Context, cfg *EmailConfig, subject, body string) error {
	m, err := buildMessage(cfg, subject, body)
	if err != nil {
		return err
	}

	c, err := mail.NewClient(cfg.Host, clientOptions(cfg)...)
	if err != nil {
		return util.WrapError("create SMTP client", err)
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return util.WrapError("send email", err)
	}
	return nil
}
