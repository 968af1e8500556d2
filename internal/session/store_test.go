package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microcrop/console/internal/api"
)

func testUser() *api.User {
	return &api.User{ID: "u1", Email: "ops@sahelmutual.example", Role: api.RoleOrgAdmin}
}

func newTestStore(t *testing.T, handler http.Handler, opts ...Option) (*Store, *api.Client) {
	t.Helper()
	if handler == nil {
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":true,"data":null}`))
		})
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.New(server.URL)
	opts = append([]Option{WithStatePath(filepath.Join(t.TempDir(), "auth-storage.json"))}, opts...)
	return New(client, opts...), client
}

func refreshHandler(t *testing.T, calls *atomic.Int64, delay time.Duration) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/refresh", r.URL.Path)
		n := calls.Add(1)
		time.Sleep(delay)
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		resp := fmt.Sprintf(
			`{"success":true,"data":{"accessToken":"access-%d","refreshToken":"refresh-%d","expiresIn":3600}}`, n, n)
		w.Write([]byte(resp))
	})
}

// =============================================================================
// Session flags
// =============================================================================

func TestIsAuthenticated_FollowsUser(t *testing.T) {
	s, _ := newTestStore(t, nil)

	assert.False(t, s.IsAuthenticated())

	s.SetUser(testUser())
	assert.True(t, s.IsAuthenticated())

	s.SetUser(nil)
	assert.False(t, s.IsAuthenticated())
}

func TestLogin_Postconditions(t *testing.T) {
	s, client := newTestStore(t, nil)

	s.Login(testUser(), &TokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresAt: time.Now().Add(time.Hour).UnixMilli()})

	assert.True(t, s.IsAuthenticated())
	assert.False(t, s.IsLoading())
	assert.Equal(t, "acc", client.AccessToken(), "login must arm the API client")
	require.NotNil(t, s.Tokens())
	assert.Equal(t, "ref", s.Tokens().RefreshToken)
}

func TestLogout_Postconditions(t *testing.T) {
	s, client := newTestStore(t, nil)
	s.Login(testUser(), &TokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresAt: time.Now().Add(time.Hour).UnixMilli()})

	s.Logout()

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Nil(t, s.Tokens())
	assert.False(t, s.IsLoading())
	assert.Empty(t, client.AccessToken(), "logout must disarm the API client")

	// Logging out twice is harmless.
	s.Logout()
	assert.False(t, s.IsAuthenticated())
}

func TestRolePredicates(t *testing.T) {
	s, _ := newTestStore(t, nil)

	assert.False(t, s.HasRole(api.RoleOrgAdmin), "no role while logged out")

	s.SetUser(&api.User{ID: "u1", Role: api.RolePlatformAdmin})
	assert.True(t, s.IsPlatformAdmin())
	assert.False(t, s.IsOrgAdmin())
	assert.False(t, s.IsOrgStaff())

	s.SetUser(&api.User{ID: "u2", Role: api.RoleOrgStaff})
	assert.True(t, s.IsOrgStaff())
	assert.False(t, s.IsPlatformAdmin())
}

// =============================================================================
// Expiry
// =============================================================================

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	s, _ := newTestStore(t, nil, WithClock(func() time.Time { return *clock }))

	t.Run("no tokens counts as expired", func(t *testing.T) {
		assert.True(t, s.IsTokenExpired())
		assert.True(t, s.IsTokenNearExpiry())
	})

	s.SetTokens(&TokenPair{
		AccessToken:  "acc",
		RefreshToken: "ref",
		ExpiresAt:    now.Add(2 * time.Minute).UnixMilli(),
	})

	t.Run("two minutes left is near expiry but not expired", func(t *testing.T) {
		assert.False(t, s.IsTokenExpired())
		assert.True(t, s.IsTokenNearExpiry())
	})

	t.Run("expired implies near expiry", func(t *testing.T) {
		*clock = now.Add(3 * time.Minute)
		assert.True(t, s.IsTokenExpired())
		assert.True(t, s.IsTokenNearExpiry())
	})

	t.Run("expiry is monotonic for a fixed pair", func(t *testing.T) {
		for _, advance := range []time.Duration{time.Hour, 24 * time.Hour} {
			*clock = now.Add(advance)
			assert.True(t, s.IsTokenExpired())
		}
	})

	t.Run("a fresh pair is neither", func(t *testing.T) {
		s.SetTokens(&TokenPair{
			AccessToken:  "acc2",
			RefreshToken: "ref2",
			ExpiresAt:    clock.Add(time.Hour).UnixMilli(),
		})
		assert.False(t, s.IsTokenExpired())
		assert.False(t, s.IsTokenNearExpiry())
	})
}

// =============================================================================
// Refresh
// =============================================================================

func TestRefreshAccessToken_RotatesPair(t *testing.T) {
	var calls atomic.Int64
	s, client := newTestStore(t, refreshHandler(t, &calls, 0))
	s.Login(testUser(), &TokenPair{AccessToken: "old-acc", RefreshToken: "old-ref", ExpiresAt: 1})

	require.NoError(t, s.RefreshAccessToken(context.Background()))

	tokens := s.Tokens()
	require.NotNil(t, tokens)
	assert.Equal(t, "access-1", tokens.AccessToken)
	assert.Equal(t, "refresh-1", tokens.RefreshToken)
	assert.Greater(t, tokens.ExpiresAt, time.Now().UnixMilli())
	assert.Equal(t, "access-1", client.AccessToken(), "rotated token must reach the API client")
	assert.True(t, s.IsAuthenticated())
}

func TestRefreshAccessToken_Deduplicated(t *testing.T) {
	var calls atomic.Int64
	s, _ := newTestStore(t, refreshHandler(t, &calls, 100*time.Millisecond))
	s.Login(testUser(), &TokenPair{AccessToken: "old-acc", RefreshToken: "old-ref", ExpiresAt: 1})

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.RefreshAccessToken(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "concurrent callers must share one backend call")
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, "access-1", s.Tokens().AccessToken)

	// A later call is a fresh attempt, not a stale waiter.
	require.NoError(t, s.RefreshAccessToken(context.Background()))
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, "access-2", s.Tokens().AccessToken)
}

func TestRefreshAccessToken_NoRefreshTokenLogsOut(t *testing.T) {
	var calls atomic.Int64
	s, _ := newTestStore(t, refreshHandler(t, &calls, 0))
	s.SetUser(testUser())

	require.NoError(t, s.RefreshAccessToken(context.Background()))

	assert.False(t, s.IsAuthenticated())
	assert.Zero(t, calls.Load(), "no network call without a refresh token")
}

func TestRefreshAccessToken_FailureEndsSession(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":{"code":"AUTH_ERROR","message":"Refresh token revoked"}}`))
	})
	expired := 0
	s, client := newTestStore(t, handler, WithSessionExpiredHook(func() { expired++ }))
	s.Login(testUser(), &TokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresAt: 1})

	err := s.RefreshAccessToken(context.Background())
	require.Error(t, err)

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.Tokens())
	assert.Empty(t, client.AccessToken())
	assert.Equal(t, 1, expired, "the session-expired hook fires on a failed refresh")
}

func TestUnauthorizedResponse_TearsSessionDown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":{"message":"Session revoked"}}`))
	})
	expired := 0
	s, client := newTestStore(t, handler, WithSessionExpiredHook(func() { expired++ }))
	s.Login(testUser(), &TokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresAt: time.Now().Add(time.Hour).UnixMilli()})

	_, err := client.GetMyOrganization(context.Background())
	require.Error(t, err)

	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 1, expired)
}

// =============================================================================
// Expiry derivation
// =============================================================================

func TestLoginWithResponse_ExpiryPrecedence(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("backend lifetime wins", func(t *testing.T) {
		s, _ := newTestStore(t, nil, WithClock(func() time.Time { return now }))
		s.LoginWithResponse(&api.AuthResponse{
			User: testUser(), AccessToken: "acc", RefreshToken: "ref", ExpiresIn: 900,
		})
		assert.Equal(t, now.Add(15*time.Minute).UnixMilli(), s.Tokens().ExpiresAt)
	})

	t.Run("jwt exp claim when lifetime absent", func(t *testing.T) {
		exp := now.Add(30 * time.Minute)
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "u1",
			"exp": exp.Unix(),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		s, _ := newTestStore(t, nil, WithClock(func() time.Time { return now }))
		s.LoginWithResponse(&api.AuthResponse{User: testUser(), AccessToken: token, RefreshToken: "ref"})
		assert.Equal(t, exp.Unix()*1000, s.Tokens().ExpiresAt)
	})

	t.Run("configured lease as last resort", func(t *testing.T) {
		s, _ := newTestStore(t, nil,
			WithClock(func() time.Time { return now }),
			WithRefreshLease(20*time.Minute))
		s.LoginWithResponse(&api.AuthResponse{User: testUser(), AccessToken: "opaque-token", RefreshToken: "ref"})
		assert.Equal(t, now.Add(20*time.Minute).UnixMilli(), s.Tokens().ExpiresAt)
	})
}
