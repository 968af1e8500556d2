package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/microcrop/console/internal/api"
)

// storageFileName is the fixed storage name of the persisted session.
const storageFileName = "auth-storage.json"

// persistedState is what survives console restarts. The loading flag is
// deliberately absent: every run starts loading and collapses after
// rehydration settles.
type persistedState struct {
	User            *api.User  `json:"user"`
	Tokens          *TokenPair `json:"tokens"`
	IsAuthenticated bool       `json:"isAuthenticated"`
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "microcrop", storageFileName)
}

// snapshot captures the persistable state. Pure: no I/O, no side effects.
func (s *Store) snapshot() persistedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return persistedState{
		User:            s.user,
		Tokens:          s.tokens,
		IsAuthenticated: s.user != nil,
	}
}

// restore installs a snapshot. Pure counterpart of snapshot; reconciliation
// against the backend happens separately in Open.
func (s *Store) restore(state persistedState) {
	s.mu.Lock()
	s.user = state.User
	s.tokens = state.Tokens
	s.mu.Unlock()
}

// persist writes the current snapshot to the state file. Failures are logged,
// not surfaced: a read-only config dir must not break the session itself.
func (s *Store) persist() {
	state := s.snapshot()
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal session state")
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.statePath), 0o700); err != nil {
		s.logger.Warn().Err(err).Str("path", s.statePath).Msg("create session state dir")
		return
	}
	if err := os.WriteFile(s.statePath, data, 0o600); err != nil {
		s.logger.Warn().Err(err).Str("path", s.statePath).Msg("write session state")
	}
}

func (s *Store) load() (persistedState, error) {
	var state persistedState
	data, err := os.ReadFile(s.statePath)
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, err
	}
	// A pair is stored whole or not at all; discard a torn record.
	if state.Tokens != nil && (state.Tokens.AccessToken == "" || state.Tokens.RefreshToken == "") {
		state.Tokens = nil
	}
	return state, nil
}

// Open rehydrates the session from the state file. The stored access token is
// pushed into the API client before anything else so the first request of the
// run is already authenticated; if the token is expired a refresh runs in the
// background and the store stays loading until it settles either way.
func (s *Store) Open(ctx context.Context) error {
	state, err := s.load()
	if err != nil {
		s.SetLoading(false)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	s.restore(state)

	if state.Tokens != nil && state.Tokens.AccessToken != "" {
		s.client.SetAccessToken(state.Tokens.AccessToken)
	}

	if state.Tokens != nil && s.IsTokenExpired() {
		go func() {
			if err := s.RefreshAccessToken(ctx); err != nil {
				s.logger.Debug().Err(err).Msg("rehydration refresh failed")
			}
			s.SetLoading(false)
		}()
		return nil
	}

	s.SetLoading(false)
	return nil
}

// Reset deletes the persisted session file. Used by logout on the console so
// a revoked operator leaves nothing behind on shared machines.
func (s *Store) Reset() error {
	err := os.Remove(s.statePath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
