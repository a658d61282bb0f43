package skland

import "errors"

var (
	// ErrGrantExpired means the upstream rejected the long-lived grant.
	// Never retried; callers surface it as "please log in again".
	ErrGrantExpired = errors.New("grant rejected by upstream, re-login required")

	// ErrTransport covers network faults and retryable HTTP statuses.
	ErrTransport = errors.New("transport error")

	// ErrRetriesExhausted wraps ErrTransport once the retry budget is spent.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrUpstream covers non-retryable HTTP statuses and malformed bodies.
	ErrUpstream = errors.New("upstream error")
)
