// Package session caches the signed-in user on disk, one file per API
// server, and broadcasts forced sign-outs to interested listeners.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
)

const sessionsDirName = "sessions"

// Store is the cached user for a single API server. It is safe for
// concurrent use.
type Store struct {
	path string

	mu        sync.Mutex
	loaded    bool
	user      *client.User
	nextID    int
	listeners map[int]func(reason error)
}

var _ client.SessionCache = (*Store)(nil)

// Open returns the store for server under dir. Nothing is read until the
// cache is first used.
func Open(dir, server string) *Store {
	return &Store{
		path:      filepath.Join(dir, sessionsDirName, fileName(server)),
		listeners: make(map[int]func(error)),
	}
}

// fileName maps a server URL to a safe file name
func fileName(server string) string {
	var b strings.Builder
	for _, r := range server {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String() + ".json"
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Current returns the cached user, or nil when signed out
func (s *Store) Current() (*client.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrateLocked(); err != nil {
		return nil, err
	}
	if s.user == nil {
		return nil, nil
	}
	user := *s.user
	return &user, nil
}

func (s *Store) hydrateLocked() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session cache: %w", err)
	}

	var user client.User
	if err := json.Unmarshal(data, &user); err != nil || user.ID == "" {
		// A corrupt cache is treated as signed out.
		_ = os.Remove(s.path)
		s.loaded = true
		return nil
	}

	s.user = &user
	s.loaded = true
	return nil
}

// Save caches user
func (s *Store) Save(user client.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session cache: %w", err)
	}

	s.user = &user
	s.loaded = true
	return nil
}

// Clear forgets the cached user without notifying listeners
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *Store) clearLocked() error {
	s.user = nil
	s.loaded = true
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session cache: %w", err)
	}
	return nil
}

// Invalidate forgets the cached user and tells every listener the session
// is gone.
func (s *Store) Invalidate(reason error) {
	s.mu.Lock()
	_ = s.clearLocked()
	listeners := make([]func(error), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(reason)
	}
}

// OnLogout registers fn to run on every forced sign-out. The returned
// function unregisters it.
func (s *Store) OnLogout(fn func(reason error)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
