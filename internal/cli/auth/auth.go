package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "pixelshop-cli"
)

// ErrNotAuthenticated is returned when no tokens are stored for a server
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'pixelshop login' first")

// Tokens is the access/refresh cookie pair issued by the API
type Tokens struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// Empty reports whether neither token is set
func (t Tokens) Empty() bool {
	return t.Access == "" && t.Refresh == ""
}

// getKeyringKey returns a unique key for storing tokens per server
func getKeyringKey(server string) string {
	return fmt.Sprintf("tokens-%s", server)
}

// SaveTokens persists the token pair in the OS keychain/credential manager
func SaveTokens(server string, tokens Tokens) error {
	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}
	if err := keyring.Set(service, getKeyringKey(server), string(data)); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	return nil
}

// LoadTokens retrieves the token pair from the OS keychain/credential manager
func LoadTokens(server string) (Tokens, error) {
	raw, err := keyring.Get(service, getKeyringKey(server))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Tokens{}, ErrNotAuthenticated
		}
		return Tokens{}, fmt.Errorf("failed to load tokens: %w", err)
	}

	var tokens Tokens
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return Tokens{}, fmt.Errorf("failed to decode stored tokens: %w", err)
	}
	return tokens, nil
}

// DeleteTokens removes the token pair from the OS keychain/credential manager
func DeleteTokens(server string) error {
	if err := keyring.Delete(service, getKeyringKey(server)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete tokens: %w", err)
	}
	return nil
}
