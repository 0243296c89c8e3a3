package fetcher

import (
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
)

// NewSafeClient returns an HTTP client that refuses to connect to private,
// loopback, link-local and metadata addresses, checked after DNS resolution.
// A refused connection surfaces as a transport error.
func NewSafeClient(timeout time.Duration) *http.Client {
	cfg := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(cfg).Client
}

// NewClient returns a plain HTTP client with the given timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
