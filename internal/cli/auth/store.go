package auth

import "sync"

// TokenStore defines the interface for token storage operations
// This allows us to swap the keyring for memory in tests
type TokenStore interface {
	SaveTokens(server string, tokens Tokens) error
	LoadTokens(server string) (Tokens, error)
	DeleteTokens(server string) error
}

// keyringStore implements TokenStore using the OS keyring
type keyringStore struct{}

var Default TokenStore = &keyringStore{}

func (k *keyringStore) SaveTokens(server string, tokens Tokens) error {
	return SaveTokens(server, tokens)
}

func (k *keyringStore) LoadTokens(server string) (Tokens, error) {
	return LoadTokens(server)
}

func (k *keyringStore) DeleteTokens(server string) error {
	return DeleteTokens(server)
}

// MemoryStore keeps tokens in process memory
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]Tokens
}

// NewMemoryStore returns an empty in-memory token store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]Tokens)}
}

func (m *MemoryStore) SaveTokens(server string, tokens Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[server] = tokens
	return nil
}

func (m *MemoryStore) LoadTokens(server string) (Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tokens, ok := m.tokens[server]
	if !ok {
		return Tokens{}, ErrNotAuthenticated
	}
	return tokens, nil
}

func (m *MemoryStore) DeleteTokens(server string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, server)
	return nil
}
