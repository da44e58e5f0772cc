package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RealIP rewrites RemoteAddr to the client address carried in
// X-Forwarded-For or X-Real-IP, but only for requests whose peer falls in
// one of the trusted proxy prefixes. Headers from any other peer are
// ignored, so a direct client cannot choose the address it is throttled by.
//
// X-Forwarded-For is read right to left and the first hop outside the
// trusted prefixes is the client. With no trusted prefixes the middleware
// leaves every request untouched.
func RealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, port, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host, port = r.RemoteAddr, ""
			}
			peer, err := netip.ParseAddr(host)
			if err != nil || !isTrustedProxy(peer.Unmap(), trusted) {
				next.ServeHTTP(w, r)
				return
			}

			if client, ok := forwardedClient(r.Header, trusted); ok {
				if port != "" {
					r.RemoteAddr = net.JoinHostPort(client.String(), port)
				} else {
					r.RemoteAddr = client.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedClient(h http.Header, trusted []netip.Prefix) (netip.Addr, bool) {
	if xff := h.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		var leftmost netip.Addr
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				// A malformed hop ends the chain we can vouch for.
				break
			}
			addr = addr.Unmap()
			if !isTrustedProxy(addr, trusted) {
				return addr, true
			}
			leftmost = addr
		}
		if leftmost.IsValid() {
			return leftmost, true
		}
	}

	if xri := strings.TrimSpace(h.Get("X-Real-IP")); xri != "" {
		if addr, err := netip.ParseAddr(xri); err == nil {
			return addr.Unmap(), true
		}
	}
	return netip.Addr{}, false
}

func isTrustedProxy(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
