package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chatfront/internal/identity"
)

func TestRequireBearer(t *testing.T) {
	secret := []byte("stub-secret")
	now := time.Now()
	valid, err := identity.GenerateAccessToken(secret, 5, now, now.Add(time.Minute))
	require.NoError(t, err)
	expired, err := identity.GenerateAccessToken(secret, 5, now.Add(-time.Hour), now.Add(-time.Minute))
	require.NoError(t, err)

	var seen int64
	handler := RequireBearer(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusNoContent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/conversations/5", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.status, rr.Code)
		})
	}
	assert.Equal(t, int64(5), seen)
}

type failingProvider struct{}

func (failingProvider) Principal(context.Context) (identity.Principal, error) {
	return identity.Principal{}, identity.ErrTokenExpired
}

func TestClientHooksAttachHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := resty.New().
		SetBaseURL(srv.URL).
		OnBeforeRequest(Authorize(identity.NewSigner("k", 9, time.Minute))).
		OnBeforeRequest(RequestID()).
		OnAfterResponse(LogResponse(zap.NewNop()))

	_, err := client.R().Get("/ping")
	require.NoError(t, err)

	assert.Contains(t, gotAuth, "Bearer ")
	assert.NotEmpty(t, gotRequestID)
}

func TestClientHooksSkipAuthWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client := resty.New().SetBaseURL(srv.URL).OnBeforeRequest(Authorize(identity.Static{UserID: 1}))
	_, err := client.R().Get("/ping")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestAuthorizeFailsRequestWhenIdentityUnavailable(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := resty.New().SetBaseURL(srv.URL).OnBeforeRequest(Authorize(failingProvider{}))
	_, err := client.R().Get("/ping")
	require.Error(t, err)
	assert.True(t, errors.Is(err, identity.ErrTokenExpired))
	assert.False(t, called)
}

func TestRateLimiter_SlidingWindowPerKey(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Hour, http.StatusForbidden, "limit").WithClock(func() time.Time { return now })

	assert.True(t, rl.Allow("1"))
	assert.True(t, rl.Allow("1"))
	assert.False(t, rl.Allow("1"))
	assert.True(t, rl.Allow("2"), "keys are limited independently")

	now = now.Add(time.Hour + time.Second)
	assert.True(t, rl.Allow("1"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, http.StatusForbidden, "Message limit reached")
	handler := rl.Middleware(func(r *http.Request) (string, bool) {
		key := r.Header.Get("X-User")
		return key, key != ""
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusNoContent, send("7").Code)
	rr := send("7")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"Message limit reached"}`, rr.Body.String())
	assert.Equal(t, http.StatusNoContent, send("").Code)
	assert.Equal(t, http.StatusNoContent, send("").Code)
}
