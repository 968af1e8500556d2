package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/microcrop/console/internal/api"
)

// RefreshAccessToken exchanges the stored refresh token for a rotated pair.
//
// Concurrency contract: at most one refresh call is outstanding. Callers that
// arrive while one is in flight wait for it and observe its outcome instead of
// issuing a second network call, which matters against backends that rotate
// the refresh token on use.
//
// A missing refresh token logs the session out without a network call. A
// failed refresh is terminal: logout plus the session-expired hook.
func (s *Store) RefreshAccessToken(ctx context.Context) error {
	s.mu.Lock()
	if s.refresh != nil {
		call := s.refresh
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.tokens == nil || s.tokens.RefreshToken == "" {
		s.mu.Unlock()
		s.Logout()
		return nil
	}
	call := &refreshCall{done: make(chan struct{})}
	s.refresh = call
	refreshToken := s.tokens.RefreshToken
	s.mu.Unlock()

	call.err = s.doRefresh(ctx, refreshToken)

	// Clear the in-flight handle before waking waiters so the next caller can
	// start a fresh attempt.
	s.mu.Lock()
	s.refresh = nil
	s.mu.Unlock()
	close(call.done)

	return call.err
}

func (s *Store) doRefresh(ctx context.Context, refreshToken string) error {
	resp, err := s.client.RefreshSession(ctx, refreshToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("token refresh failed, ending session")
		s.Logout()
		s.fireExpired()
		return err
	}

	expiresAt := s.expiryFor(resp.AccessToken, resp.ExpiresIn)
	s.SetTokens(&TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt,
	})
	if resp.User != nil {
		s.SetUser(resp.User)
	}
	s.logger.Debug().Int64("expiresAt", expiresAt).Msg("access token refreshed")
	return nil
}

// expiryFor derives the absolute expiry for a fresh access token: the
// backend-reported lifetime wins, then the token's own exp claim, then the
// configured lease.
func (s *Store) expiryFor(accessToken string, expiresIn int64) int64 {
	if expiresIn > 0 {
		return s.now().Add(time.Duration(expiresIn) * time.Second).UnixMilli()
	}
	if exp, ok := tokenExpClaim(accessToken); ok {
		return exp.UnixMilli()
	}
	return s.now().Add(s.lease).UnixMilli()
}

// tokenExpClaim extracts the exp claim without verifying the signature; the
// client holds no signing key and only needs a refresh deadline.
func tokenExpClaim(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// LoginWithResponse establishes a session from a login, register or
// invitation-accept response, deriving the token expiry the same way the
// refresh path does.
func (s *Store) LoginWithResponse(resp *api.AuthResponse) {
	s.Login(resp.User, &TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    s.expiryFor(resp.AccessToken, resp.ExpiresIn),
	})
}

// AutoRefresh keeps the access token fresh for the lifetime of ctx, checking
// every interval and refreshing once the token is near expiry. Long-running
// commands (bulk exports, imports) run this in the background.
func (s *Store) AutoRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.IsAuthenticated() || !s.IsTokenNearExpiry() {
				continue
			}
			if err := s.RefreshAccessToken(ctx); err != nil {
				return
			}
		}
	}
}
