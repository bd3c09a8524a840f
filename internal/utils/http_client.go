package utils

import (
	"github.com/go-resty/resty/v2"
)

// HTTPClient wraps resty.Client. Embedding *resty.Client exposes its
// full API while leaving room for application-specific behavior.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns an independent HTTPClient with its own
// configuration, connection pool and state.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: resty.New()}
}
