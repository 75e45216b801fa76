package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ha-image-scene/internal/model"
)

// TokenStore caches the Home Assistant access token in a single JSON file.
type TokenStore struct {
	path  string
	mu    sync.RWMutex
	state model.StoredToken
}

func NewTokenStore(path string) (*TokenStore, error) {
	if path == "" {
		return nil, errors.New("token cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	s := &TokenStore{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *TokenStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.state = model.StoredToken{}
			return nil
		}
		return err
	}
	if len(b) == 0 {
		s.state = model.StoredToken{}
		return nil
	}

	var state model.StoredToken
	if err := json.Unmarshal(b, &state); err != nil {
		return err
	}
	s.state = state
	return nil
}

func (s *TokenStore) saveLocked() error {
	b, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}

func (s *TokenStore) Get() model.StoredToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *TokenStore) Set(baseURL, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = model.StoredToken{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		AccessToken: token,
		UpdatedAt:   time.Now().UTC(),
	}
	return s.saveLocked()
}

// Seed stores token only when nothing is cached yet.
func (s *TokenStore) Seed(baseURL, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	s.mu.RLock()
	has := s.state.AccessToken != ""
	s.mu.RUnlock()
	if has {
		return nil
	}
	return s.Set(baseURL, token)
}

func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = model.StoredToken{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
