package httputil

import (
	"net/http"
	"time"
)

const (
	DefaultTimeout = 30 * time.Second

	// NDBC asks automated clients to identify themselves.
	userAgent = "buoycams/1.0 (+https://github.com/sergei/buoycams)"
)

type uaTransport struct {
	base http.RoundTripper
}

func (t uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.base.RoundTrip(req)
}

// NewClient returns an HTTP client with standard timeout and User-Agent
// configuration.
func NewClient() *http.Client {
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: uaTransport{base: http.DefaultTransport},
	}
}
