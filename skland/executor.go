package skland

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultMaxAttempts    = 3
	defaultBaseDelay      = 500 * time.Millisecond
	defaultMaxDelay       = 5 * time.Second
	defaultAttemptTimeout = 10 * time.Second
	defaultRequestRate    = 5 // requests per second to the upstream
)

// executor issues one logical HTTP call with bounded retry. Only transient
// classifications are retried: network-level faults, 429 and 5xx statuses.
// Anything else surfaces immediately.
type executor struct {
	client         *http.Client
	limiter        *rate.Limiter
	maxAttempts    int
	baseDelay      time.Duration
	maxDelay       time.Duration
	attemptTimeout time.Duration
	log            zerolog.Logger
	onRetry        func()

	// sleep is injectable so retry tests don't wait out real backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

func newExecutor(client *http.Client, maxAttempts int, attemptTimeout time.Duration, log zerolog.Logger) *executor {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	return &executor{
		client:         client,
		limiter:        rate.NewLimiter(rate.Limit(defaultRequestRate), 1),
		maxAttempts:    maxAttempts,
		baseDelay:      defaultBaseDelay,
		maxDelay:       defaultMaxDelay,
		attemptTimeout: attemptTimeout,
		log:            log,
		sleep:          sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// do issues the request, retrying transient faults up to the attempt budget.
// The response body is returned whole; callers parse the envelope.
func (e *executor) do(ctx context.Context, method, url string, header http.Header, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			if e.onRetry != nil {
				e.onRetry()
			}
			delay := e.backoff(attempt)
			e.log.Debug().
				Int("attempt", attempt+1).
				Dur("backoff", delay).
				Str("url", url).
				Msg("retrying request")
			if err := e.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		respBody, err := e.attempt(ctx, method, url, header, body)
		if err == nil {
			return respBody, nil
		}
		if !errors.Is(err, ErrTransport) {
			return nil, err
		}
		lastErr = err
	}
	return nil, errors.Wrapf(ErrRetriesExhausted, "%d attempts: %v", e.maxAttempts, lastErr)
}

func (e *executor) attempt(ctx context.Context, method, url string, header http.Header, body []byte) ([]byte, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if len(body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		// Caller-initiated cancellation is not a transport fault.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrapf(ErrTransport, "%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrTransport, "read response: %v", err)
	}
	if retryableStatus(resp.StatusCode) {
		return nil, errors.Wrapf(ErrTransport, "%s %s: status %d", method, url, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrUpstream, "%s %s: status %d", method, url, resp.StatusCode)
	}
	return respBody, nil
}

// backoff doubles per retry from baseDelay, capped at maxDelay.
func (e *executor) backoff(attempt int) time.Duration {
	d := e.baseDelay << (attempt - 1)
	if d > e.maxDelay || d <= 0 {
		return e.maxDelay
	}
	return d
}
