// Package config provides application configuration management.
package config

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-countdown/internal/util"
	"gopkg.in/yaml.v3"
)

// Configuration defaults.
const (
	DefaultWebPort       = 8080
	DefaultTarget        = "2026-06-19T23:59:59"
	DefaultEmailSMTPPort = 587
	DefaultEmailFromName = "ZuidWest FM Countdown"
)

// WebConfig contains web server configuration.
type WebConfig struct {
	Port int `json:"port" yaml:"port"`
}

// CountdownConfig contains the countdown target.
type CountdownConfig struct {
	// Target is a local wall-clock value (2006-01-02T15:04:05) or RFC 3339.
	Target string `json:"target" yaml:"target"`
}

// FragmentsConfig controls where page fragments are loaded from.
type FragmentsConfig struct {
	Dir            string `json:"dir,omitempty" yaml:"dir,omitempty"`
	BaseURL        string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	HeaderMarkdown string `json:"header_markdown,omitempty" yaml:"header_markdown,omitempty"`
}

// EmailConfig contains email notification configuration.
type EmailConfig struct {
	Host       string `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	FromName   string `json:"from_name,omitempty" yaml:"from_name,omitempty"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
	Recipients string `json:"recipients,omitempty" yaml:"recipients,omitempty"`
}

// NotificationsConfig contains expiry notification configuration.
type NotificationsConfig struct {
	WebhookURL string      `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`
	LogPath    string      `json:"log_path,omitempty" yaml:"log_path,omitempty"`
	Email      EmailConfig `json:"email,omitzero" yaml:"email,omitempty"`
}

// Config holds all application configuration. It is safe for concurrent use.
type Config struct {
	Web           WebConfig           `json:"web" yaml:"web"`
	Countdown     CountdownConfig     `json:"countdown" yaml:"countdown"`
	Fragments     FragmentsConfig     `json:"fragments,omitzero" yaml:"fragments,omitempty"`
	Notifications NotificationsConfig `json:"notifications,omitzero" yaml:"notifications,omitempty"`

	mu       sync.RWMutex
	filePath string
}

// New creates a new Config with default values.
func New(filePath string) *Config {
	return &Config{
		Web: WebConfig{
			Port: DefaultWebPort,
		},
		Countdown: CountdownConfig{
			Target: DefaultTarget,
		},
		filePath: filePath,
	}
}

// isYAML reports whether the config file uses YAML encoding.
func (c *Config) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(c.filePath))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads config from file, creating a default if none exists.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if os.IsNotExist(err) {
		return c.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if c.isYAML() {
		err = yaml.Unmarshal(data, c)
	} else {
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return util.WrapError("parse config", err)
	}

	c.applyDefaults()
	return c.validateLocked()
}

// applyDefaults sets default values for zero-value fields.
func (c *Config) applyDefaults() {
	if c.Web.Port == 0 {
		c.Web.Port = DefaultWebPort
	}
	if c.Countdown.Target == "" {
		c.Countdown.Target = DefaultTarget
	}
}

// validateLocked rejects values the server cannot run with. Caller must hold c.mu.
func (c *Config) validateLocked() error {
	if err := util.ValidatePort("web.port", c.Web.Port); err != nil {
		return err
	}
	if _, err := util.ParseInstant(c.Countdown.Target); err != nil {
		return fmt.Errorf("invalid countdown.target %q: %w", c.Countdown.Target, err)
	}
	if err := util.ValidateHTTPURL("fragments.base_url", c.Fragments.BaseURL); err != nil {
		return err
	}
	if err := util.ValidateHTTPURL("notifications.webhook_url", c.Notifications.WebhookURL); err != nil {
		return err
	}
	return nil
}

// Save writes the configuration to file.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// saveLocked persists configuration. Caller must hold c.mu.
func (c *Config) saveLocked() error {
	var (
		data []byte
		err  error
	)
	if c.isYAML() {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return util.WrapError("marshal config", err)
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return util.WrapError("create config directory", err)
	}

	if err := os.WriteFile(c.filePath, data, 0o600); err != nil {
		return util.WrapError("write config", err)
	}

	return nil
}

// WebPort returns the web server port.
func (c *Config) WebPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Web.Port
}

// Target returns the parsed countdown target instant.
func (c *Config) Target() (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return util.ParseInstant(c.Countdown.Target)
}

// FragmentsDir returns the directory that overrides the embedded fragments.
func (c *Config) FragmentsDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Fragments.Dir
}

// FragmentsBaseURL returns the base URL fragments are fetched from.
func (c *Config) FragmentsBaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Fragments.BaseURL
}

// HeaderMarkdown returns the fragment path of a Markdown header, if any.
func (c *Config) HeaderMarkdown() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Fragments.HeaderMarkdown
}

// WebhookURL returns the configured webhook URL for notifications.
func (c *Config) WebhookURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Notifications.WebhookURL
}

// LogPath returns the configured log file path for notifications.
func (c *Config) LogPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Notifications.LogPath
}

// Snapshot contains a point-in-time copy of all configuration values.
// Use this instead of multiple individual getters to reduce mutex contention.
type Snapshot struct {
	// Web
	WebPort int

	// Countdown
	Target string

	// Fragments
	FragmentsDir     string
	FragmentsBaseURL string
	HeaderMarkdown   string

	// Notifications
	WebhookURL string
	LogPath    string

	// Email
	EmailSMTPHost   string
	EmailSMTPPort   int
	EmailFromName   string
	EmailUsername   string
	EmailPassword   string
	EmailRecipients string
}

// Snapshot returns a point-in-time copy of all configuration values.
func (c *Config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		WebPort: c.Web.Port,

		Target: c.Countdown.Target,

		FragmentsDir:     c.Fragments.Dir,
		FragmentsBaseURL: c.Fragments.BaseURL,
		HeaderMarkdown:   c.Fragments.HeaderMarkdown,

		WebhookURL: c.Notifications.WebhookURL,
		LogPath:    c.Notifications.LogPath,

		// Email (with defaults)
		EmailSMTPHost:   c.Notifications.Email.Host,
		EmailSMTPPort:   cmp.Or(c.Notifications.Email.Port, DefaultEmailSMTPPort),
		EmailFromName:   cmp.Or(c.Notifications.Email.FromName, DefaultEmailFromName),
		EmailUsername:   c.Notifications.Email.Username,
		EmailPassword:   c.Notifications.Email.Password,
		EmailRecipients: c.Notifications.Email.Recipients,
	}
}

// HasWebhook returns true if a webhook URL is configured.
func (s *Snapshot) HasWebhook() bool {
	return s.WebhookURL != ""
}

// HasEmail returns true if email notifications are configured.
func (s *Snapshot) HasEmail() bool {
	return s.EmailSMTPHost != "" && s.EmailRecipients != ""
}

// HasLogPath returns true if a log path is configured.
func (s *Snapshot) HasLogPath() bool {
	return s.LogPath != ""
}
