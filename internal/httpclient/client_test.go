package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(maxRetries int) *DefaultClient {
	return NewDefaultClient(ClientConfig{
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
	}, logger.NewNopLogger())
}

func TestDefaultClient_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.JSONEq(t, `{"amount":"150"}`, string(body))

		w.Header().Set("X-Request-Id", "req_1")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(0).Send(context.Background(), &Request{
		Method:  http.MethodPost,
		URL:     srv.URL + "/calculate-tax",
		Headers: map[string]string{"Authorization": "Bearer token"},
		Body:    []byte(`{"amount":"150"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req_1", resp.Headers["X-Request-Id"])
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestDefaultClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	resp, err := newTestClient(3).Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDefaultClient_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		wantUnavailable bool
	}{
		{"not_found", http.StatusNotFound, false},
		{"bad_request", http.StatusBadRequest, false},
		{"server_error", http.StatusInternalServerError, true},
		{"throttled", http.StatusTooManyRequests, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"detail":"nope"}`))
			}))
			defer srv.Close()

			_, err := newTestClient(0).Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
			require.Error(t, err)

			httpErr, ok := IsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.JSONEq(t, `{"detail":"nope"}`, string(httpErr.Response))
			assert.True(t, ierr.IsHTTPClient(err))
			assert.Equal(t, tt.wantUnavailable, ierr.IsUnavailable(err))
		})
	}
}

func TestDefaultClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(0).Send(context.Background(), &Request{Method: http.MethodGet, URL: url})
	require.Error(t, err)
	assert.True(t, ierr.IsUnavailable(err))
}

func TestDefaultClient_RateLimitHonoursContext(t *testing.T) {
	client := NewDefaultClient(ClientConfig{Timeout: time.Second, RateLimit: 0.001, RateBurst: 1}, logger.NewNopLogger())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := client.Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Send(ctx, &Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	assert.True(t, ierr.IsUnavailable(err))
}
