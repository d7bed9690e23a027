package services

import (
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"chatfront/internal/identity"
	"chatfront/internal/middleware"
)

type ClientOptions struct {
	BaseURL  string
	Timeout  time.Duration // zero means no timeout
	Identity identity.Provider
	Logger   *zap.Logger
}

// NewRestClient builds the HTTP client shared by one backend's API calls.
// Failed calls are never retried.
func NewRestClient(opts ClientOptions) *resty.Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetRetryCount(0).
		SetLogger(logger.Sugar()).
		SetHeader("Accept", "application/json")

	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	client.OnBeforeRequest(middleware.RequestID())
	if opts.Identity != nil {
		client.OnBeforeRequest(middleware.Authorize(opts.Identity))
	}
	client.OnAfterResponse(middleware.LogResponse(logger))

	return client
}
