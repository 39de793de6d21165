package serverselect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelshop-dev/pixelshop/internal/cli/config"
	"github.com/pixelshop-dev/pixelshop/internal/cli/userconfig"
)

func twoServers() *config.Config {
	return &config.Config{Servers: []config.Server{
		{URL: "https://api.pixelshop.dev/api/v1", Alias: "production"},
		{URL: "http://localhost:8080/api/v1", Alias: "local"},
	}}
}

func noPrompt(t *testing.T) Prompter {
	return func(*config.Config) (*config.Server, error) {
		t.Fatal("prompt must not be shown")
		return nil, nil
	}
}

func TestResolveServer_AliasWins(t *testing.T) {
	r := &Resolver{ConfigDir: t.TempDir(), Prompt: noPrompt(t)}
	require.NoError(t, userconfig.SetSelectedServer(r.ConfigDir, "https://api.pixelshop.dev/api/v1"))

	server, err := r.ResolveServer(twoServers(), "local")
	require.NoError(t, err)
	assert.Equal(t, "local", server.Alias)
}

func TestResolveServer_RemembersSelection(t *testing.T) {
	r := &Resolver{ConfigDir: t.TempDir(), Prompt: noPrompt(t)}
	require.NoError(t, userconfig.SetSelectedServer(r.ConfigDir, "http://localhost:8080/api/v1"))

	server, err := r.ResolveServer(twoServers(), "")
	require.NoError(t, err)
	assert.Equal(t, "local", server.Alias)
}

func TestResolveServer_SingleServer(t *testing.T) {
	r := &Resolver{ConfigDir: t.TempDir(), Prompt: noPrompt(t)}
	cfg := &config.Config{Servers: []config.Server{{URL: "http://only.test", Alias: "only"}}}

	server, err := r.ResolveServer(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "only", server.Alias)

	selected, err := userconfig.GetSelectedServer(r.ConfigDir)
	require.NoError(t, err)
	assert.Equal(t, "http://only.test", selected)
}

func TestResolveServer_PromptsAndClearsStaleSelection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, userconfig.SetSelectedServer(dir, "http://gone.test"))

	prompted := 0
	r := &Resolver{ConfigDir: dir, Prompt: func(cfg *config.Config) (*config.Server, error) {
		prompted++
		return &cfg.Servers[1], nil
	}}

	server, err := r.ResolveServer(twoServers(), "")
	require.NoError(t, err)
	assert.Equal(t, "local", server.Alias)
	assert.Equal(t, 1, prompted)

	selected, err := userconfig.GetSelectedServer(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1", selected)
}

func TestResolveServer_PromptCancelled(t *testing.T) {
	r := &Resolver{ConfigDir: t.TempDir(), Prompt: func(*config.Config) (*config.Server, error) {
		return nil, errors.New("server selection cancelled")
	}}

	_, err := r.ResolveServer(twoServers(), "")
	assert.Error(t, err)
}

func TestGetServerByURLOrAlias(t *testing.T) {
	cfg := twoServers()

	server, err := GetServerByURLOrAlias(cfg, "production")
	require.NoError(t, err)
	assert.Equal(t, "https://api.pixelshop.dev/api/v1", server.URL)

	server, err = GetServerByURLOrAlias(cfg, "http://localhost:8080/api/v1")
	require.NoError(t, err)
	assert.Equal(t, "local", server.Alias)

	_, err = GetServerByURLOrAlias(cfg, "staging")
	assert.Error(t, err)
}
