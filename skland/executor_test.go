package skland

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(maxAttempts int) *executor {
	e := newExecutor(&http.Client{}, maxAttempts, time.Second, zerolog.Nop())
	e.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return e
}

func TestExecutor_RetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"code":0}`))
	}))
	defer srv.Close()

	e := newTestExecutor(3)
	body, err := e.do(context.Background(), "GET", srv.URL, nil, nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"code":0}`, string(body))
	require.EqualValues(t, 3, calls.Load())
}

func TestExecutor_ExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := newTestExecutor(3)
	_, err := e.do(context.Background(), "GET", srv.URL, nil, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrRetriesExhausted)
	require.EqualValues(t, 3, calls.Load(), "no more than maxAttempts calls")
}

func TestExecutor_NonRetryableStatusSurfacesImmediately(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	e := newTestExecutor(3)
	_, err := e.do(context.Background(), "GET", srv.URL, nil, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUpstream)
	require.NotErrorIs(t, err, ErrTransport)
	require.EqualValues(t, 1, calls.Load(), "4xx must not be retried")
}

func TestExecutor_TooManyRequestsIsRetryable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	e := newTestExecutor(2)
	body, err := e.do(context.Background(), "GET", srv.URL, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
}

func TestExecutor_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	e := newTestExecutor(2)
	_, err := e.do(context.Background(), "GET", srv.URL, nil, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrRetriesExhausted)
}

func TestExecutor_ContextCancellationStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	e := newTestExecutor(5)
	e.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := e.do(ctx, "GET", srv.URL, nil, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestExecutor_RetryCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	var retries atomic.Int32
	e := newTestExecutor(3)
	e.onRetry = func() { retries.Add(1) }

	_, err := e.do(context.Background(), "GET", srv.URL, nil, nil)
	require.Error(t, err)
	require.EqualValues(t, 2, retries.Load(), "3 attempts means 2 retries")
}

func TestExecutor_Backoff(t *testing.T) {
	e := newTestExecutor(5)
	e.baseDelay = 500 * time.Millisecond
	e.maxDelay = 2 * time.Second

	require.Equal(t, 500*time.Millisecond, e.backoff(1))
	require.Equal(t, time.Second, e.backoff(2))
	require.Equal(t, 2*time.Second, e.backoff(3))
	require.Equal(t, 2*time.Second, e.backoff(4), "capped at maxDelay")
}
