package netatmo

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// SessionState describes where the AuthSession is in its lifecycle.
type SessionState int

// Session states.
const (
	StateUnauthenticated SessionState = iota
	StateAuthenticated
	StateRefreshing
	StateFailed
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TokenSource supplies a bearer token that is valid for at least a small
// safety margin. AuthSession is the primary implementation.
type TokenSource interface {
	ValidToken(ctx context.Context) (*Token, error)
}

// staticTokenSource wraps a fixed access token.
type staticTokenSource struct {
	token *Token
}

// StaticToken returns a TokenSource that always yields the given access
// token. Useful for tests and for backends that issue non-expiring tokens.
func StaticToken(accessToken string) TokenSource {
	return &staticTokenSource{token: &Token{
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(100 * 365 * 24 * time.Hour),
	}}
}

func (s *staticTokenSource) ValidToken(ctx context.Context) (*Token, error) {
	return s.token, nil
}

// refreshCall is the shared handle for an in-flight token refresh. The first
// caller initiates the refresh; later concurrent callers attach to the same
// handle rather than issuing redundant exchanges. A waiter that times out
// detaches without aborting the exchange for others.
type refreshCall struct {
	done  chan struct{}
	token *Token
	err   error
}

// AuthSession manages the OAuth2 token lifecycle: initial credential
// exchange, transparent refresh before expiry, and concurrent-safe reuse.
// All methods are safe for concurrent use.
type AuthSession struct {
	creds          Credentials
	baseURL        string
	httpClient     *http.Client
	store          TokenStore
	logger         *slog.Logger
	margin         time.Duration
	refreshTimeout time.Duration

	mu      sync.Mutex
	token   *Token
	state   SessionState
	failure error        // rejection that moved the session to StateFailed
	pending *refreshCall // non-nil while a refresh is in flight
}

// SessionOption configures an AuthSession.
type SessionOption func(*AuthSession)

// WithSessionBaseURL points the session at a compatible third-party backend.
func WithSessionBaseURL(baseURL string) SessionOption {
	return func(s *AuthSession) {
		s.baseURL = baseURL
	}
}

// WithSessionHTTPClient sets a custom HTTP client for token exchanges.
func WithSessionHTTPClient(client *http.Client) SessionOption {
	return func(s *AuthSession) {
		s.httpClient = client
	}
}

// WithTokenStore persists each issued token to the given store and loads an
// existing token from it at construction.
func WithTokenStore(store TokenStore) SessionOption {
	return func(s *AuthSession) {
		s.store = store
	}
}

// WithExpiryMargin overrides the safety margin before expiry at which a token
// is refreshed. Default is DefaultExpiryMargin.
func WithExpiryMargin(margin time.Duration) SessionOption {
	return func(s *AuthSession) {
		s.margin = margin
	}
}

// WithRefreshTimeout bounds the shared refresh exchange itself. The exchange
// runs detached from any single waiter's context so that one waiter's
// timeout does not abort the refresh for others. Default is 30s.
func WithRefreshTimeout(timeout time.Duration) SessionOption {
	return func(s *AuthSession) {
		s.refreshTimeout = timeout
	}
}

// WithSessionLogger sets a structured logger for token lifecycle events.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *AuthSession) {
		s.logger = logger
	}
}

// NewAuthSession creates a session for the given credentials. If a token
// store is configured and holds a token, the session starts authenticated;
// otherwise Authenticate must be called first, unless the credentials carry a
// refresh token, in which case the first ValidToken call refreshes directly.
func NewAuthSession(creds Credentials, opts ...SessionOption) *AuthSession {
	s := &AuthSession{
		creds:          creds,
		baseURL:        DefaultBaseURL,
		margin:         DefaultExpiryMargin,
		refreshTimeout: 30 * time.Second,
		state:          StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpClient == nil {
		s.httpClient = defaultHTTPClient()
	}

	if s.store != nil {
		if tok, err := s.store.LoadToken(context.Background()); err == nil && tok != nil && tok.AccessToken != "" {
			s.token = tok
			s.state = StateAuthenticated
		}
	}
	if s.token == nil && creds.RefreshToken != "" {
		// A configured refresh token is as good as a stored one: the first
		// ValidToken call will exchange it.
		s.token = &Token{RefreshToken: creds.RefreshToken}
		s.state = StateAuthenticated
	}
	return s
}

// Authenticate performs the initial credential exchange and replaces any
// cached token. It returns an AuthError with ReasonInvalidCredentials on a
// rejected grant, a NetworkError on transport failure, and
// ErrUnexpectedResponse if the response cannot be parsed into a token.
func (s *AuthSession) Authenticate(ctx context.Context) (*Token, error) {
	var tok *Token
	var err error
	if s.creds.Username != "" || s.creds.Password != "" {
		tok, err = exchangePassword(ctx, s.httpClient, s.baseURL, s.creds)
	} else if s.creds.RefreshToken != "" {
		tok, err = refreshTokens(ctx, s.httpClient, s.baseURL, s.creds.ClientID, s.creds.ClientSecret, s.creds.RefreshToken)
	} else {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		s.logAttrs(ctx, slog.LevelWarn, "authentication failed", slog.String("error", err.Error()))
		return nil, err
	}

	s.mu.Lock()
	s.token = tok
	s.state = StateAuthenticated
	s.failure = nil
	s.mu.Unlock()

	s.persist(ctx, tok)
	s.logAttrs(ctx, slog.LevelDebug, "authenticated",
		slog.Time("expires_at", tok.ExpiresAt))
	return tok, nil
}

// ValidToken returns a token with at least the configured safety margin
// before expiry, refreshing synchronously if needed. Concurrent callers share
// a single in-flight refresh; a caller whose context expires while waiting
// detaches and sees its context error, while the refresh completes for the
// remaining waiters.
func (s *AuthSession) ValidToken(ctx context.Context) (*Token, error) {
	s.mu.Lock()

	if s.state == StateFailed {
		err := s.failure
		s.mu.Unlock()
		return nil, err
	}

	if s.token.Valid(s.margin) && s.pending == nil {
		tok := s.token
		s.mu.Unlock()
		return tok, nil
	}

	if s.token == nil || s.token.RefreshToken == "" {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}

	call := s.pending
	if call == nil {
		call = &refreshCall{done: make(chan struct{})}
		s.pending = call
		s.state = StateRefreshing
		refreshToken := s.token.RefreshToken
		go s.runRefresh(call, refreshToken)
	}
	s.mu.Unlock()

	select {
	case <-call.done:
		return call.token, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// runRefresh performs the shared refresh exchange. It runs on a detached
// context bounded by the configured refresh timeout, so no single waiter's
// cancellation can burn the single-use refresh token mid-exchange.
func (s *AuthSession) runRefresh(call *refreshCall, refreshToken string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
	defer cancel()

	tok, err := refreshTokens(ctx, s.httpClient, s.baseURL, s.creds.ClientID, s.creds.ClientSecret, refreshToken)

	s.mu.Lock()
	s.pending = nil
	switch {
	case err == nil:
		s.token = tok
		s.state = StateAuthenticated
		s.failure = nil
	case IsAuthError(err):
		// The backend rejected the refresh token; it is gone for good.
		s.state = StateFailed
		s.failure = err
	default:
		// Transient failure: the prior refresh token was not consumed, so
		// keep the session state and let a later retry use it.
		s.state = StateAuthenticated
	}
	s.mu.Unlock()

	if err == nil {
		s.persist(ctx, tok)
		s.logAttrs(ctx, slog.LevelDebug, "token refreshed",
			slog.Time("expires_at", tok.ExpiresAt))
	} else {
		s.logAttrs(ctx, slog.LevelWarn, "token refresh failed",
			slog.String("error", err.Error()))
	}

	call.token = tok
	call.err = err
	close(call.done)
}

// Invalidate forces the next ValidToken call to refresh. It also clears a
// Failed state so a retry can be attempted after re-configuration.
func (s *AuthSession) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != nil {
		// Whole-object replacement with a zero expiry; the refresh token is
		// carried over untouched.
		s.token = &Token{
			AccessToken:  s.token.AccessToken,
			RefreshToken: s.token.RefreshToken,
			Scope:        s.token.Scope,
		}
	}
	if s.state == StateFailed {
		s.state = StateAuthenticated
		s.failure = nil
	}
}

// State returns the current lifecycle state.
func (s *AuthSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns a copy of the cached token without triggering a refresh, or
// nil if none is cached.
func (s *AuthSession) Token() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return nil
	}
	tok := *s.token
	return &tok
}

// persist saves the token to the configured store, if any. Persistence
// failures are logged, not surfaced: the token in memory is valid and the
// next issue will try again.
func (s *AuthSession) persist(ctx context.Context, tok *Token) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveToken(ctx, tok); err != nil {
		s.logAttrs(ctx, slog.LevelWarn, "failed to persist token",
			slog.String("error", err.Error()))
	}
}

func (s *AuthSession) logAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}
