// Package skland is a client for the Skland (森空岛) portal: it exchanges a
// user's long-lived grant for a signed API session and performs the daily
// sign-in for every bound game role.
package skland

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAuthBase    = "https://as.hypergryph.com"
	defaultAPIBase     = "https://zonai.skland.com"
	defaultConcurrency = 4
)

// Recorder receives client-level observations. Implementations must be safe
// for concurrent use. A nil Recorder disables recording.
type Recorder interface {
	RunObserved(d time.Duration, err error)
	ResultObserved(game Game, outcome OutcomeKind)
	RetryObserved()
}

// Client drives the full sign-in flow for one grant at a time. It holds no
// per-grant state, so one Client may serve concurrent calls for different
// users. Close releases the underlying connection pool.
type Client struct {
	httpClient *http.Client
	exec       *executor
	signer     *Signer
	xchg       *exchanger
	adapters   map[Game]SignInTarget

	authBase    string
	apiBase     string
	deviceID    string
	maxRetries  int
	attemptTO   time.Duration
	concurrency int
	now         func() time.Time
	log         zerolog.Logger
	recorder    Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets the per-request attempt budget (default 3).
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithAttemptTimeout bounds each individual HTTP attempt.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Client) { c.attemptTO = d }
}

// WithBaseURLs overrides the upstream endpoints (primarily for testing).
func WithBaseURLs(authBase, apiBase string) Option {
	return func(c *Client) {
		c.authBase = authBase
		c.apiBase = apiBase
	}
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) { c.now = nowFunc }
}

// WithDeviceID pins the device identifier instead of generating one.
func WithDeviceID(id string) Option {
	return func(c *Client) { c.deviceID = id }
}

// WithAdapters replaces the default title adapters.
func WithAdapters(targets ...SignInTarget) Option {
	return func(c *Client) {
		c.adapters = make(map[Game]SignInTarget, len(targets))
		for _, t := range targets {
			c.adapters[t.Game()] = t
		}
	}
}

// WithConcurrency bounds the number of per-role sign-in calls in flight.
func WithConcurrency(n int) Option {
	return func(c *Client) { c.concurrency = n }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// New creates a Client with the default adapters (Arknights, Endfield) and a
// freshly generated device identifier.
func New(options ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{},
		authBase:    defaultAuthBase,
		apiBase:     defaultAPIBase,
		maxRetries:  defaultMaxAttempts,
		attemptTO:   defaultAttemptTimeout,
		concurrency: defaultConcurrency,
		now:         time.Now,
		log:         zerolog.Nop(),
	}
	WithAdapters(ArknightsAdapter{}, EndfieldAdapter{})(c)
	for _, opt := range options {
		opt(c)
	}
	if c.deviceID == "" {
		c.deviceID = uuid.NewString()
	}
	if c.concurrency <= 0 {
		c.concurrency = 1
	}

	c.signer = NewSigner(c.deviceID)
	c.exec = newExecutor(c.httpClient, c.maxRetries, c.attemptTO, c.log)
	if c.recorder != nil {
		c.exec.onRetry = c.recorder.RetryObserved
	}

	appCodes := make(map[string]Game, len(c.adapters))
	for _, t := range c.adapters {
		appCodes[t.AppCode()] = t.Game()
	}
	c.xchg = &exchanger{
		exec:     c.exec,
		signer:   c.signer,
		authBase: c.authBase,
		apiBase:  c.apiBase,
		appCodes: appCodes,
		now:      c.now,
		log:      c.log,
	}
	return c
}

// Close releases the HTTP connection pool. Call once when shutting down.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// DoFullSignIn exchanges the grant and signs in every bound role. It returns
// exactly one SignInResult per discovered role; per-role failures are
// captured in their result rather than aborting the remainder. A credential
// failure aborts the whole call: ErrGrantExpired when the grant is rejected,
// a transport error when the exchange itself could not complete.
func (c *Client) DoFullSignIn(ctx context.Context, grant string) ([]SignInResult, string, error) {
	start := c.now()
	log := c.log.With().Str("grant", TruncateGrant(grant)).Logger()

	cred, nickname, roles, err := c.xchg.exchange(ctx, grant)
	if err != nil {
		log.Warn().Err(err).Msg("credential exchange failed")
		c.observeRun(start, err)
		return nil, "", err
	}
	log.Info().Int("roles", len(roles)).Str("nickname", nickname).Msg("credential exchange complete")

	results := make([]SignInResult, len(roles))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, role := range roles {
		i, role := i, role
		g.Go(func() error {
			results[i] = c.signInRole(ctx, cred, role)
			return nil
		})
	}
	// Per-role funcs never return an error; failures live in their result.
	_ = g.Wait()

	for _, r := range results {
		c.observeResult(r)
	}
	c.observeRun(start, nil)
	return results, nickname, nil
}

func (c *Client) signInRole(ctx context.Context, cred SessionCredential, role BoundRole) SignInResult {
	result := SignInResult{Game: role.Game}

	adapter, ok := c.adapters[role.Game]
	if !ok {
		result.Err = "no adapter for game " + string(role.Game)
		return result
	}

	req, err := adapter.BuildSignInRequest(role)
	if err != nil {
		result.Err = err.Error()
		return result
	}

	ts := c.xchg.timestamp()
	header, err := c.signer.AuthHeaders(cred, req.Path, string(req.Body), ts)
	if err != nil {
		result.Err = err.Error()
		return result
	}

	respBody, err := c.exec.do(ctx, req.Method, c.apiBase+req.Path, header, req.Body)
	if err != nil {
		c.log.Warn().
			Str("game", string(role.Game)).
			Str("uid", role.UID).
			Err(err).
			Msg("sign-in request failed")
		result.Err = err.Error()
		return result
	}

	outcome := adapter.ParseSignInResponse(respBody)
	switch outcome.Kind {
	case OutcomeSigned:
		result.Success = true
		result.Awards = outcome.Awards
	default:
		result.Err = outcome.Message
	}
	return result
}

func (c *Client) observeRun(start time.Time, err error) {
	if c.recorder == nil {
		return
	}
	c.recorder.RunObserved(c.now().Sub(start), err)
}

func (c *Client) observeResult(r SignInResult) {
	if c.recorder == nil {
		return
	}
	kind := OutcomeSigned
	if !r.Success {
		kind = classifyFailure(0, r.Err)
	}
	c.recorder.ResultObserved(r.Game, kind)
}
