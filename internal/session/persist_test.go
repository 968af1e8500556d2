package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microcrop/console/internal/api"
)

func TestPersistence_RoundTrip(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "auth-storage.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":null}`))
	}))
	defer server.Close()

	first := New(api.New(server.URL), WithStatePath(statePath))
	first.Login(testUser(), &TokenPair{
		AccessToken:  "acc",
		RefreshToken: "ref",
		ExpiresAt:    time.Now().Add(time.Hour).UnixMilli(),
	})

	// A second store on the same path sees the session a fresh process would.
	client := api.New(server.URL)
	second := New(client, WithStatePath(statePath))
	assert.True(t, second.IsLoading(), "a new store starts loading")

	require.NoError(t, second.Open(context.Background()))

	assert.False(t, second.IsLoading())
	assert.True(t, second.IsAuthenticated())
	require.NotNil(t, second.User())
	assert.Equal(t, "ops@sahelmutual.example", second.User().Email)
	require.NotNil(t, second.Tokens())
	assert.Equal(t, "ref", second.Tokens().RefreshToken)
	assert.Equal(t, "acc", client.AccessToken(), "rehydration must arm the API client")
}

func TestPersistence_LoadingNeverStored(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "auth-storage.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	s := New(api.New(server.URL), WithStatePath(statePath))
	s.SetLoading(true)
	s.Login(testUser(), &TokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresAt: 1})

	data, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "loading")
	assert.Contains(t, string(data), `"isAuthenticated":true`)
}

func TestOpen_MissingFileIsCleanStart(t *testing.T) {
	s, client := newTestStore(t, nil)

	require.NoError(t, s.Open(context.Background()))

	assert.False(t, s.IsLoading())
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, client.AccessToken())
}

func TestOpen_DiscardsTornTokenPair(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "auth-storage.json")
	state := `{"user":{"id":"u1","email":"a@b.com","role":"ORG_ADMIN"},"tokens":{"accessToken":"acc","refreshToken":"","expiresAt":1},"isAuthenticated":true}`
	require.NoError(t, os.WriteFile(statePath, []byte(state), 0o600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("a torn pair must not trigger network traffic")
	}))
	defer server.Close()

	client := api.New(server.URL)
	s := New(client, WithStatePath(statePath))
	require.NoError(t, s.Open(context.Background()))

	assert.Nil(t, s.Tokens())
	assert.True(t, s.IsAuthenticated(), "the identity survives even when the pair is torn")
	assert.Empty(t, client.AccessToken())
	assert.False(t, s.IsLoading())
}

func TestOpen_ExpiredTokensRefreshInBackground(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "auth-storage.json")
	var calls atomic.Int64
	server := httptest.NewServer(refreshHandler(t, &calls, 0))
	defer server.Close()

	seed := New(api.New(server.URL), WithStatePath(statePath))
	seed.Login(testUser(), &TokenPair{
		AccessToken:  "stale-acc",
		RefreshToken: "stale-ref",
		ExpiresAt:    time.Now().Add(-time.Minute).UnixMilli(),
	})

	client := api.New(server.URL)
	s := New(client, WithStatePath(statePath))
	require.NoError(t, s.Open(context.Background()))

	require.Eventually(t, func() bool {
		return !s.IsLoading()
	}, 2*time.Second, 10*time.Millisecond, "loading must settle once the refresh lands")

	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, "access-1", s.Tokens().AccessToken)
	assert.Equal(t, "access-1", client.AccessToken())
	assert.True(t, s.IsAuthenticated())
}

func TestReset_RemovesStateFile(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "auth-storage.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	s := New(api.New(server.URL), WithStatePath(statePath))
	s.Login(testUser(), &TokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresAt: 1})

	_, err := os.Stat(statePath)
	require.NoError(t, err)

	require.NoError(t, s.Reset())
	_, err = os.Stat(statePath)
	assert.True(t, os.IsNotExist(err))

	// Resetting an already clean machine is fine.
	require.NoError(t, s.Reset())
}
