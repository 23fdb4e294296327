package webhook

import (
	"log/slog"
	"net/http"
	"net/netip"
)

// Guard authenticates inbound callbacks before any workflow runs. The IP and
// token checks are each optional and enabled by configuration; the event-type
// check is mandatory.
type Guard struct {
	event     string
	salt      string       // empty disables the token check
	allowlist []netip.Addr // nil disables the IP check
	logger    *slog.Logger
}

// NewGuard creates a Guard that accepts only requests carrying the given
// event-type literal. An empty salt disables token verification; a nil
// allowlist disables source-IP filtering (an empty non-nil allowlist rejects
// everything).
func NewGuard(event, salt string, allowlist []netip.Addr, logger *slog.Logger) *Guard {
	return &Guard{event: event, salt: salt, allowlist: allowlist, logger: logger}
}

// Middleware enforces the guard's checks in order: source IP, token, event
// type. Failed requests never reach the wrapped handler.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.allowlist != nil {
			addr, ok := clientAddr(r)
			if !ok || !g.allowed(addr) {
				g.logger.WarnContext(r.Context(), "callback from unlisted address", "remote", r.RemoteAddr)
				http.Error(w, "IP not whitelisted", http.StatusForbidden)
				return
			}
		}

		if g.salt != "" {
			expected := Token(r.URL.Path, g.salt)
			if !headerMatches(r.Header.Values("X-Gitlab-Token"), expected) {
				g.logger.WarnContext(r.Context(), "callback token mismatch", "path", r.URL.Path)
				http.Error(w, "Require valid token", http.StatusForbidden)
				return
			}
		}

		events := r.Header.Values("X-Gitlab-Event")
		if len(events) != 1 {
			http.Error(w, "missing event header", http.StatusBadRequest)
			return
		}
		if events[0] != g.event {
			http.Error(w, "unexpected event type", http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Guard) allowed(addr netip.Addr) bool {
	for _, a := range g.allowlist {
		// netip.Addr keeps IPv4 and IPv4-mapped IPv6 distinct, so a mapped
		// address never satisfies a plain IPv4 allowlist entry.
		if a == addr {
			return true
		}
	}
	return false
}

// clientAddr derives the peer address from the connection. Forwarding headers
// are deliberately ignored: they are caller-controlled and would defeat the
// allowlist.
func clientAddr(r *http.Request) (netip.Addr, bool) {
	ap, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		return netip.Addr{}, false
	}
	return ap.Addr(), true
}

func headerMatches(values []string, expected string) bool {
	for _, v := range values {
		if v == expected {
			return true
		}
	}
	return false
}
