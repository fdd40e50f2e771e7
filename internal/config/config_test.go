package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := New(path)
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if !strings.Contains(string(data), DefaultTarget) {
		t.Errorf("default file missing target: %s", data)
	}
	if cfg.WebPort() != DefaultWebPort {
		t.Errorf("WebPort = %d, want %d", cfg.WebPort(), DefaultWebPort)
	}
	for _, section := range []string{`"fragments"`, `"notifications"`} {
		if strings.Contains(string(data), section) {
			t.Errorf("default file contains empty section %s: %s", section, data)
		}
	}
}

func TestSaveOmitsEmptySections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := New(path)
	cfg.Notifications.LogPath = "/tmp/expired.log"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.Contains(got, `"notifications"`) || !strings.Contains(got, `"log_path"`) {
		t.Errorf("saved file missing notifications: %s", got)
	}
	if strings.Contains(got, `"email"`) || strings.Contains(got, `"fragments"`) {
		t.Errorf("saved file contains empty sections: %s", got)
	}
}

func TestLoadJSONAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"countdown":{"target":"2026-05-31T22:00:00Z"},"notifications":{"log_path":"/tmp/expired.log"}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := New(path)
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.WebPort() != DefaultWebPort {
		t.Errorf("WebPort = %d, want default", cfg.WebPort())
	}
	target, err := cfg.Target()
	if err != nil {
		t.Fatalf("Target: %v", err)
	}
	if !target.Equal(time.Date(2026, 5, 31, 22, 0, 0, 0, time.UTC)) {
		t.Errorf("Target = %v", target)
	}
	if cfg.LogPath() != "/tmp/expired.log" {
		t.Errorf("LogPath = %q", cfg.LogPath())
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `web:
  port: 9090
countdown:
  target: "2026-06-19T23:59:59"
fragments:
  base_url: https://static.example.com/site/
  header_markdown: components/header.md
notifications:
  email:
    host: smtp.example.com
    recipients: ops@example.com
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := New(path)
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	snap := cfg.Snapshot()
	if snap.WebPort != 9090 {
		t.Errorf("WebPort = %d, want 9090", snap.WebPort)
	}
	if snap.FragmentsBaseURL != "https://static.example.com/site/" {
		t.Errorf("FragmentsBaseURL = %q", snap.FragmentsBaseURL)
	}
	if snap.HeaderMarkdown != "components/header.md" {
		t.Errorf("HeaderMarkdown = %q", snap.HeaderMarkdown)
	}
	if !snap.HasEmail() {
		t.Error("expected email to be configured")
	}
	if snap.EmailSMTPPort != DefaultEmailSMTPPort {
		t.Errorf("EmailSMTPPort = %d, want default", snap.EmailSMTPPort)
	}
	if snap.EmailFromName != DefaultEmailFromName {
		t.Errorf("EmailFromName = %q, want default", snap.EmailFromName)
	}
	if snap.HasWebhook() || snap.HasLogPath() {
		t.Error("unexpected webhook or log path")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{"web":`, "parse config"},
		{"bad target", `{"countdown":{"target":"soon"}}`, "countdown.target"},
		{"bad port", `{"web":{"port":70000}}`, "web.port"},
		{"bad webhook", `{"notifications":{"webhook_url":"not a url"}}`, "webhook_url"},
		{"bad base url", `{"fragments":{"base_url":"ftp://x"}}`, "base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatal(err)
			}
			err := New(path).Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSaveYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := New(path)
	cfg.Notifications.WebhookURL = "https://hooks.example.com/x"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "webhook_url: https://hooks.example.com/x") {
		t.Errorf("saved YAML missing webhook: %s", data)
	}

	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.WebhookURL() != "https://hooks.example.com/x" {
		t.Errorf("WebhookURL = %q", reloaded.WebhookURL())
	}
}
