package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/service"
	"github.com/go-resty/resty/v2"
)

// mapHTTPError translates a non-2xx response into one of the engine's
// error kinds. This is the only place status codes are interpreted;
// callers match the result with errors.Is against the service sentinels.
func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: http %d: %s", service.ErrPermissionDenied, code, body)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: http %d: %s", service.ErrQuotaExhausted, code, body)
	default:
		return fmt.Errorf("%w: http %d: %s", service.ErrNetworkFailure, code, body)
	}
}

// transportError wraps a request-execution failure (no response at all).
// Context expiry keeps its identity so the engine's per-batch timeout
// detection still sees context.DeadlineExceeded through the chain;
// everything else is a network failure.
func transportError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, service.ErrNetworkFailure, err)
}
