package web

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLocalRequest(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       bool
	}{
		{"loopback", "127.0.0.1:5000", "", true},
		{"ipv6 loopback", "[::1]:5000", "", true},
		{"private 192.168", "192.168.1.10:80", "", true},
		{"private 10", "10.1.2.3:80", "", true},
		{"private 172.16", "172.16.0.9:80", "", true},
		{"public", "203.0.113.9:80", "", false},
		{"forwarded private", "203.0.113.9:80", "192.168.1.10", true},
		{"forwarded public", "192.168.1.10:80", "203.0.113.9", false},
		{"forwarded chain uses first", "127.0.0.1:80", "203.0.113.9, 192.168.1.1", false},
		{"garbage", "not-an-addr", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = c.remoteAddr
			if c.forwarded != "" {
				req.Header.Set("X-Forwarded-For", c.forwarded)
			}
			assert.Equal(t, c.want, isLocalRequest(req))
		})
	}
}
