package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/JonMunkholm/schedulizer/internal/logging"
)

// ClientAddr resolves the address of the client behind any trusted proxies
// and stores it in r.RemoteAddr, where the rate limiter and request logger
// read it. The address and User-Agent are also added to the request's log
// fields, so import logs name the client that sent the file.
//
// Forwarding headers are honoured only when the connection comes from a
// trusted proxy. X-Real-IP wins when valid; otherwise X-Forwarded-For is
// walked from the right, skipping trusted hops, and the first untrusted
// address is the client. Entries further left were written by the client
// itself and cannot be trusted.
func ClientAddr(trusted []string) func(http.Handler) http.Handler {
	proxies := parsePrefixes(trusted)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if addr, ok := clientAddr(r, proxies); ok {
				r.RemoteAddr = addr.String()
			}

			ctx := logging.ContextWithFields(r.Context(),
				"client_ip", hostOnly(r.RemoteAddr),
				"user_agent", r.UserAgent(),
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parsePrefixes accepts CIDRs and bare addresses. Config validation rejects
// bad entries, so anything unparsable here is logged and skipped.
func parsePrefixes(entries []string) []netip.Prefix {
	var out []netip.Prefix
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if p, err := netip.ParsePrefix(e); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			slog.Warn("ignoring trusted proxy entry", "entry", e, "error", err)
			continue
		}
		out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return out
}

func clientAddr(r *http.Request, proxies []netip.Prefix) (netip.Addr, bool) {
	peer, err := netip.ParseAddr(hostOnly(r.RemoteAddr))
	if err != nil || !within(peer, proxies) {
		return netip.Addr{}, false
	}

	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap(), true
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			return netip.Addr{}, false
		}
		if !within(addr, proxies) {
			return addr.Unmap(), true
		}
	}
	return netip.Addr{}, false
}

func within(addr netip.Addr, prefixes []netip.Prefix) bool {
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// hostOnly strips the port from a host:port address.
func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
