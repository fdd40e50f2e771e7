package server

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: checkOrigin,
}

// checkOrigin accepts requests without an Origin header, same-host origins,
// and origins on loopback or private network addresses.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err == nil && u.Host != "" {
		if u.Host == r.Host || u.Hostname() == hostOnly(r.Host) {
			return true
		}
		if u.Hostname() == "localhost" {
			return true
		}
		if addr, err := netip.ParseAddr(u.Hostname()); err == nil && (addr.IsLoopback() || addr.IsPrivate()) {
			return true
		}
	}

	slog.Warn("rejected WebSocket connection", "origin", origin)
	return false
}

func hostOnly(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}

// UpgradeConnection upgrades an HTTP connection to WebSocket.
func UpgradeConnection(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}
