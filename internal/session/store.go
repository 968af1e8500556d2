// Package session owns the authenticated operator session: the current user,
// the access/refresh token pair and its expiry bookkeeping, persistence across
// console runs, and deduplicated token refresh. It registers itself as the API
// client's unauthorized handler, so a server-side session revocation tears the
// local session down from one place.
package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/microcrop/console/internal/api"
)

// Default refresh policy. The lease is assumed when the backend omits a token
// lifetime and the access token carries no usable exp claim; the lead is how
// far before expiry a proactive refresh kicks in.
const (
	DefaultRefreshLease   = time.Hour
	DefaultNearExpiryLead = 5 * time.Minute
)

// TokenPair is the stored credential pair. ExpiresAt is an absolute epoch
// timestamp in milliseconds. A pair is stored whole or not at all.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
}

// refreshCall is the shared in-flight refresh handle. The first caller runs
// the network call; everyone else waits on done and reads the same err.
type refreshCall struct {
	done chan struct{}
	err  error
}

// Store is the authenticated session store. All methods are safe for
// concurrent use.
type Store struct {
	client *api.Client
	logger zerolog.Logger

	statePath   string
	now         func() time.Time
	lease       time.Duration
	nearLead    time.Duration
	expiredHook func()

	mu      sync.Mutex
	user    *api.User
	tokens  *TokenPair
	loading bool
	refresh *refreshCall
}

// Option configures a Store.
type Option func(*Store)

// WithStatePath overrides where the session file is persisted.
func WithStatePath(path string) Option {
	return func(s *Store) { s.statePath = path }
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRefreshLease overrides the assumed access-token lifetime used when the
// backend does not report one.
func WithRefreshLease(d time.Duration) Option {
	return func(s *Store) { s.lease = d }
}

// WithNearExpiryLead overrides how long before expiry a token counts as near
// expiry.
func WithNearExpiryLead(d time.Duration) Option {
	return func(s *Store) { s.nearLead = d }
}

// WithSessionExpiredHook sets the hook fired when the session ends without the
// operator asking for it: a failed refresh or a server-signalled 401. The
// console uses it to drop back to the login prompt.
func WithSessionExpiredHook(fn func()) Option {
	return func(s *Store) { s.expiredHook = fn }
}

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a session store bound to client and registers the store as the
// client's unauthorized handler. The store starts in the loading state until
// Open settles rehydration.
func New(client *api.Client, opts ...Option) *Store {
	s := &Store{
		client:   client,
		logger:   zerolog.Nop(),
		now:      time.Now,
		lease:    DefaultRefreshLease,
		nearLead: DefaultNearExpiryLead,
		loading:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.statePath == "" {
		s.statePath = defaultStatePath()
	}

	client.OnUnauthorized(func() {
		s.logger.Warn().Msg("session revoked by backend")
		s.Logout()
		s.fireExpired()
	})
	return s
}

func (s *Store) fireExpired() {
	if s.expiredHook != nil {
		s.expiredHook()
	}
}

// =============================================================================
// Mutators
// =============================================================================

// Login establishes a brand-new session: user and tokens are set together, the
// access token is pushed into the API client, and the session is persisted.
func (s *Store) Login(user *api.User, tokens *TokenPair) {
	s.mu.Lock()
	s.user = user
	s.tokens = tokens
	s.loading = false
	s.mu.Unlock()

	if tokens != nil {
		s.client.SetAccessToken(tokens.AccessToken)
	} else {
		s.client.ClearAccessToken()
	}
	s.persist()
}

// Logout clears the session. Calling it while logged out is a no-op in effect.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.tokens = nil
	s.loading = false
	s.mu.Unlock()

	s.client.ClearAccessToken()
	s.persist()
}

// SetUser replaces the identity; authentication state follows from whether the
// user is nil. Tokens are untouched.
func (s *Store) SetUser(user *api.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.persist()
}

// SetTokens replaces the token pair and mirrors the access token (or its
// absence) into the API client. The user is untouched.
func (s *Store) SetTokens(tokens *TokenPair) {
	s.mu.Lock()
	s.tokens = tokens
	s.mu.Unlock()

	if tokens != nil {
		s.client.SetAccessToken(tokens.AccessToken)
	} else {
		s.client.ClearAccessToken()
	}
	s.persist()
}

// SetLoading flips the transient loading flag. It has no other side effects
// and is never persisted.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// =============================================================================
// Accessors
// =============================================================================

// User returns the current identity, nil when logged out.
func (s *Store) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Tokens returns a copy of the current token pair, nil when absent.
func (s *Store) Tokens() *TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return nil
	}
	t := *s.tokens
	return &t
}

// IsAuthenticated reports whether a user is present. It is derived, never
// stored, so it cannot drift from the user field.
func (s *Store) IsAuthenticated() bool {
	return s.User() != nil
}

// IsLoading reports whether startup rehydration or a refresh triggered by it
// is still in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// HasRole reports whether the current user holds role; false when logged out.
func (s *Store) HasRole(role string) bool {
	u := s.User()
	return u != nil && u.Role == role
}

// IsPlatformAdmin reports whether the current user operates the platform.
func (s *Store) IsPlatformAdmin() bool { return s.HasRole(api.RolePlatformAdmin) }

// IsOrgAdmin reports whether the current user administers an organization.
func (s *Store) IsOrgAdmin() bool { return s.HasRole(api.RoleOrgAdmin) }

// IsOrgStaff reports whether the current user is organization staff.
func (s *Store) IsOrgStaff() bool { return s.HasRole(api.RoleOrgStaff) }

// IsTokenExpired reports whether there is no token pair or its expiry has
// passed. Once true for a fixed pair it stays true.
func (s *Store) IsTokenExpired() bool {
	return s.expiresWithin(0)
}

// IsTokenNearExpiry reports whether the token pair is within the refresh lead
// of expiry. Every expired token is also near expiry.
func (s *Store) IsTokenNearExpiry() bool {
	return s.expiresWithin(s.nearLead)
}

func (s *Store) expiresWithin(lead time.Duration) bool {
	t := s.Tokens()
	if t == nil {
		return true
	}
	return s.now().UnixMilli() >= t.ExpiresAt-lead.Milliseconds()
}
