package middleware

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatfront/internal/identity"
)

const RequestIDHeader = "X-Request-ID"

// Authorize attaches the current principal's bearer token, when it has one.
func Authorize(provider identity.Provider) resty.RequestMiddleware {
	return func(_ *resty.Client, r *resty.Request) error {
		principal, err := provider.Principal(r.Context())
		if err != nil {
			return fmt.Errorf("resolve identity: %w", err)
		}
		if principal.Token != "" {
			r.SetAuthToken(principal.Token)
		}
		return nil
	}
}

// RequestID tags every outgoing request so it can be matched in backend logs.
func RequestID() resty.RequestMiddleware {
	return func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(RequestIDHeader) == "" {
			r.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	}
}

// LogResponse records method, url, status and latency of every response.
func LogResponse(logger *zap.Logger) resty.ResponseMiddleware {
	return func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("backend response",
			zap.String("method", resp.Request.Method),
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("latency", resp.Time()),
			zap.String("request_id", resp.Request.Header.Get(RequestIDHeader)),
		)
		return nil
	}
}
