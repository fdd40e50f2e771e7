// Package fragment loads static markup fragments for page assembly.
//
// Loaders never fail: a fragment that cannot be read is logged and
// returned as an empty string so the rest of the page still renders.
package fragment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-countdown/internal/util"
	"github.com/yuin/goldmark"
)

const (
	fetchTimeout    = 10 * time.Second
	maxFragmentSize = 1 << 20
)

// Loader returns the text of the fragment at a relative path.
type Loader interface {
	Load(ctx context.Context, name string) string
}

// FSLoader reads fragments from a file system.
type FSLoader struct {
	fsys fs.FS
}

// NewFSLoader returns a loader over fsys.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// Load reads name from the file system.
func (l *FSLoader) Load(_ context.Context, name string) string {
	name = path.Clean(strings.TrimPrefix(name, "./"))
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		slog.Error("failed to load fragment", "fragment", name, "error", err)
		return ""
	}
	return render(name, data)
}

// HTTPLoader fetches fragments relative to a base URL.
type HTTPLoader struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPLoader returns a loader that resolves fragment paths against baseURL.
func NewHTTPLoader(baseURL string) (*HTTPLoader, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, util.WrapError("parse fragment base URL", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return &HTTPLoader{
		base:   base,
		client: &http.Client{Timeout: fetchTimeout},
	}, nil
}

// Load fetches name over HTTP.
func (l *HTTPLoader) Load(ctx context.Context, name string) string {
	text, err := l.fetch(ctx, name)
	if err != nil {
		slog.Error("failed to load fragment", "fragment", name, "error", err)
		return ""
	}
	return text
}

func (l *HTTPLoader) fetch(ctx context.Context, name string) (string, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return "", util.WrapError("parse fragment path", err)
	}
	target := l.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", util.WrapError("create request", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", util.WrapError("fetch fragment", err)
	}
	defer util.SafeCloseFunc(resp.Body, "fragment response body")()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fragment %s returned status %d", target, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFragmentSize+1))
	if err != nil {
		return "", util.WrapError("read fragment", err)
	}
	if len(data) > maxFragmentSize {
		return "", fmt.Errorf("fragment %s exceeds %d bytes", target, maxFragmentSize)
	}
	return render(name, data), nil
}

// render converts Markdown fragments to HTML and returns others unchanged.
func render(name string, data []byte) string {
	if !strings.EqualFold(path.Ext(name), ".md") {
		return string(data)
	}
	var buf bytes.Buffer
	if err := goldmark.Convert(data, &buf); err != nil {
		slog.Error("failed to render markdown fragment", "fragment", name, "error", err)
		return ""
	}
	return buf.String()
}
