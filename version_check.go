package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-countdown/internal/types"
	"github.com/oszuidwest/zwfm-countdown/internal/util"
	"golang.org/x/mod/semver"
)

// Build metadata, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const (
	latestReleaseURL = "https://api.github.com/repos/oszuidwest/zwfm-countdown/releases/latest"

	versionCheckInterval = 24 * time.Hour
	versionCheckDelay    = 30 * time.Second
	versionCheckTimeout  = 30 * time.Second
	versionMaxAttempts   = 3
	versionRetryDelay    = time.Minute
)

// errRetryable marks a release check that may succeed if repeated.
var errRetryable = errors.New("retryable release check failure")

// githubRelease is the part of the GitHub release response that is used.
type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// VersionChecker polls GitHub for the latest published release.
type VersionChecker struct {
	url    string
	client *http.Client

	mu     sync.RWMutex
	latest string
	etag   string
}

// NewVersionChecker returns a checker for this project's releases.
func NewVersionChecker() *VersionChecker {
	return &VersionChecker{
		url:    latestReleaseURL,
		client: &http.Client{Timeout: versionCheckTimeout},
	}
}

// Run checks once shortly after startup and then daily until ctx is done.
func (vc *VersionChecker) Run(ctx context.Context) {
	delay := versionCheckDelay
	for {
		if !sleepCtx(ctx, delay) {
			return
		}
		vc.cycle(ctx)
		delay = versionCheckInterval
	}
}

// cycle runs one check, repeating retryable failures.
func (vc *VersionChecker) cycle(ctx context.Context) {
	for attempt := 1; ; attempt++ {
		err := vc.check(ctx)
		if err == nil {
			return
		}
		if !errors.Is(err, errRetryable) || attempt == versionMaxAttempts {
			slog.Debug("release check failed", "attempt", attempt, "error", err)
			return
		}
		if !sleepCtx(ctx, versionRetryDelay) {
			return
		}
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// check fetches the latest release. A 304 or 404 response is not an error.
func (vc *VersionChecker) check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, vc.url, nil)
	if err != nil {
		return util.WrapError("create release request", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "zwfm-countdown/"+Version)

	vc.mu.RLock()
	if vc.etag != "" {
		req.Header.Set("If-None-Match", vc.etag)
	}
	vc.mu.RUnlock()

	resp, err := vc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errRetryable, err)
	}
	defer util.SafeCloseFunc(resp.Body, "release response body")()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotModified, resp.StatusCode == http.StatusNotFound:
		return nil
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
	default:
		return fmt.Errorf("release check returned status %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return util.WrapError("decode release", err)
	}
	if release.Draft || release.Prerelease || release.TagName == "" {
		return nil
	}

	latest := normalizeVersion(release.TagName)

	vc.mu.Lock()
	changed := latest != vc.latest
	vc.latest = latest
	vc.etag = resp.Header.Get("ETag")
	vc.mu.Unlock()

	if current := normalizeVersion(Version); changed && isRelease(current) && isNewerVersion(latest, current) {
		slog.Info("new release available", "current", current, "latest", latest)
	}
	return nil
}

// Info returns the running build and the latest known release.
func (vc *VersionChecker) Info() types.VersionInfo {
	vc.mu.RLock()
	latest := vc.latest
	vc.mu.RUnlock()

	current := normalizeVersion(Version)
	return types.VersionInfo{
		Current:     current,
		Latest:      latest,
		UpdateAvail: latest != "" && isRelease(current) && isNewerVersion(latest, current),
		Commit:      Commit,
		BuildTime:   BuildTime,
	}
}

// isRelease reports whether v is a tagged build rather than a dev build.
func isRelease(v string) bool {
	return semver.IsValid(canonicalVersion(v))
}

// normalizeVersion trims whitespace and a leading "v".
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// canonicalVersion adds the "v" prefix semver expects.
func canonicalVersion(v string) string {
	return "v" + normalizeVersion(v)
}

// isNewerVersion reports whether latest is a higher semver than current.
func isNewerVersion(latest, current string) bool {
	return semver.Compare(canonicalVersion(latest), canonicalVersion(current)) > 0
}
