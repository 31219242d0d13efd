package util

import (
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// MaxErrorBody caps how much of a failed response is read back for logs.
const MaxErrorBody = 4096

// NewHTTPClient returns a client with a bounded overall timeout. A zero
// timeout falls back to def so no call can block forever.
func NewHTTPClient(timeout, def time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = def
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// ReadSnippet reads at most MaxErrorBody bytes of r and trims surrounding space.
func ReadSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, MaxErrorBody))
	return strings.TrimSpace(string(b))
}
