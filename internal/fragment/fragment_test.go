package fragment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func TestFSLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"components/header.html": {Data: []byte(`<header><h1>Countdown</h1></header>`)},
		"components/notice.md":   {Data: []byte("# Launch\n\nSee you *soon*.")},
	}
	loader := NewFSLoader(fsys)
	ctx := context.Background()

	if got := loader.Load(ctx, "./components/header.html"); got != `<header><h1>Countdown</h1></header>` {
		t.Errorf("header = %q", got)
	}

	md := loader.Load(ctx, "components/notice.md")
	if !strings.Contains(md, "<h1>Launch</h1>") || !strings.Contains(md, "<em>soon</em>") {
		t.Errorf("markdown not rendered: %q", md)
	}

	if got := loader.Load(ctx, "components/missing.html"); got != "" {
		t.Errorf("missing fragment = %q, want empty", got)
	}
}

func TestHTTPLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/site/components/countdown.html":
			_, _ = w.Write([]byte(`<span id="days">00</span>`))
		case "/site/components/header.md":
			_, _ = w.Write([]byte("## Almost there"))
		case "/site/components/broken.html":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	loader, err := NewHTTPLoader(srv.URL + "/site")
	if err != nil {
		t.Fatalf("NewHTTPLoader: %v", err)
	}
	ctx := context.Background()

	if got := loader.Load(ctx, "./components/countdown.html"); got != `<span id="days">00</span>` {
		t.Errorf("countdown = %q", got)
	}
	if got := loader.Load(ctx, "components/header.md"); !strings.Contains(got, "<h2>Almost there</h2>") {
		t.Errorf("header = %q", got)
	}

	tests := []string{"components/broken.html", "components/absent.html"}
	for _, name := range tests {
		if got := loader.Load(ctx, name); got != "" {
			t.Errorf("Load(%q) = %q, want empty", name, got)
		}
	}
}

func TestHTTPLoaderTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	loader, err := NewHTTPLoader(url)
	if err != nil {
		t.Fatalf("NewHTTPLoader: %v", err)
	}
	if got := loader.Load(context.Background(), "components/header.html"); got != "" {
		t.Errorf("Load = %q, want empty", got)
	}
}

func TestHTTPLoaderRejectsOversizedFragment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		size := maxFragmentSize
		if r.URL.Path == "/components/huge.html" {
			size++
		}
		_, _ = w.Write([]byte(strings.Repeat("x", size)))
	}))
	defer srv.Close()

	loader, err := NewHTTPLoader(srv.URL)
	if err != nil {
		t.Fatalf("NewHTTPLoader: %v", err)
	}
	ctx := context.Background()

	if got := loader.Load(ctx, "components/huge.html"); got != "" {
		t.Errorf("oversized fragment returned %d bytes, want empty", len(got))
	}
	if got := loader.Load(ctx, "components/full.html"); len(got) != maxFragmentSize {
		t.Errorf("fragment at the limit returned %d bytes, want %d", len(got), maxFragmentSize)
	}
}
