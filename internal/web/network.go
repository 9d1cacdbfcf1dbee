package web

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// clientIP extracts the originating client address. Behind the reverse
// proxy the first X-Forwarded-For entry is the real client; direct
// connections fall back to RemoteAddr.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// isLocalRequest reports whether the request originates from the local
// network: loopback or private (RFC1918) address ranges. Anything
// unparseable is treated as remote.
func isLocalRequest(r *http.Request) bool {
	addr, err := netip.ParseAddr(clientIP(r))
	if err != nil {
		return false
	}
	return addr.IsLoopback() || addr.IsPrivate()
}
