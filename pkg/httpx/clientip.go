package httpx

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address attempts are attributed to: the first entry of
// X-Forwarded-For when present, otherwise the peer address without its port.
// The service is expected to sit behind a proxy that overwrites the header.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
