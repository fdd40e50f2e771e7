package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oszuidwest/zwfm-countdown/internal/config"
	"github.com/oszuidwest/zwfm-countdown/internal/countdown"
	"github.com/oszuidwest/zwfm-countdown/internal/fragment"
	"github.com/oszuidwest/zwfm-countdown/internal/types"
)

func newTestServer(t *testing.T, target time.Time, loader fragment.Loader) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.New(filepath.Join(t.TempDir(), "config.json"))
	if loader == nil {
		loader = fragment.NewFSLoader(webRoot())
	}
	s, err := NewServer(cfg, target, webRoot(), loader)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	s.master.Start()
	t.Cleanup(s.Close)

	ts := httptest.NewServer(s.SetupRoutes())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestIndexAssemblesEmbeddedFragments(t *testing.T) {
	_, ts := newTestServer(t, time.Now().Add(48*time.Hour), nil)

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	for _, want := range []string{
		`class="site-header"`,
		`id="days"`,
		`id="seconds"`,
		`data-live="true"`,
		`/static/app.js`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestIndexDegradesWithoutFragments(t *testing.T) {
	_, ts := newTestServer(t, time.Now().Add(time.Hour), fragment.NewFSLoader(fstest.MapFS{}))

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `data-live="false"`) {
		t.Error("page without fragments rendered as live")
	}
}

func TestStaticAssets(t *testing.T) {
	_, ts := newTestServer(t, time.Now().Add(time.Hour), nil)

	resp, body := get(t, ts.URL+"/static/style.css")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, ".countdown") {
		t.Errorf("style.css: status %d", resp.StatusCode)
	}
	resp, _ = get(t, ts.URL+"/static/missing.js")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing asset status = %d", resp.StatusCode)
	}
}

func TestCountdownEndpoint(t *testing.T) {
	_, ts := newTestServer(t, time.Now().Add(26*time.Hour+30*time.Second), nil)

	_, body := get(t, ts.URL+"/api/countdown")
	var got countdownResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v (%s)", err, body)
	}
	if got.State != countdown.StateRunning {
		t.Errorf("state = %q", got.State)
	}
	if got.Display.Days != "01" || got.Display.Hours != "02" {
		t.Errorf("display = %+v", got.Display)
	}
	if got.RemainingMS <= 0 {
		t.Errorf("remaining = %d", got.RemainingMS)
	}
}

func TestCountdownEndpointExpired(t *testing.T) {
	_, ts := newTestServer(t, time.Now().Add(-time.Minute), nil)

	_, body := get(t, ts.URL+"/api/countdown")
	var got countdownResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.State != countdown.StateStopped || got.RemainingMS != 0 {
		t.Errorf("unexpected response %+v", got)
	}
	if got.Display != (countdown.Display{Days: "00", Hours: "00", Minutes: "00", Seconds: "00"}) {
		t.Errorf("display = %+v", got.Display)
	}
}

func TestStatusEndpointCountsSessions(t *testing.T) {
	_, ts := newTestServer(t, time.Now().Add(time.Hour), nil)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var frame types.Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Type != types.MessageCountdown || frame.State != countdown.StateRunning {
		t.Errorf("unexpected frame %+v", frame)
	}

	_, body := get(t, ts.URL+"/api/status")
	var status types.Status
	if err := json.Unmarshal([]byte(body), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Sessions != 1 {
		t.Errorf("sessions = %d, want 1", status.Sessions)
	}
	if status.Version.Current != normalizeVersion(Version) {
		t.Errorf("version = %+v", status.Version)
	}
}

func TestNewFragmentLoader(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New(filepath.Join(dir, "config.json"))

	loader, err := newFragmentLoader(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := loader.(*fragment.FSLoader); !ok {
		t.Errorf("default loader = %T", loader)
	}

	cfg.Fragments.BaseURL = "https://static.example.com/"
	loader, err = newFragmentLoader(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := loader.(*fragment.HTTPLoader); !ok {
		t.Errorf("base URL loader = %T", loader)
	}
}
