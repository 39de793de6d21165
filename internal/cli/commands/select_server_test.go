package commands

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelshop-dev/pixelshop/internal/cli/config"
	"github.com/pixelshop-dev/pixelshop/internal/cli/userconfig"
)

func selectTestConfig() *config.Config {
	return &config.Config{Servers: []config.Server{
		{URL: "https://api.pixelshop.dev/api/v1", Alias: "production"},
		{URL: "http://localhost:8080/api/v1", Alias: "local"},
	}}
}

func noPrompt(*config.Config) (*config.Server, error) {
	return nil, errors.New("prompt should not run")
}

func TestSelectServer_ByAlias(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, runSelectServer(&out, selectTestConfig(), dir, "local", noPrompt))

	selected, err := userconfig.GetSelectedServer(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1", selected)
	assert.Contains(t, out.String(), "Selected server: local (http://localhost:8080/api/v1)")
}

func TestSelectServer_ByURL(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, runSelectServer(&bytes.Buffer{}, selectTestConfig(), dir, "https://api.pixelshop.dev/api/v1", noPrompt))

	selected, err := userconfig.GetSelectedServer(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://api.pixelshop.dev/api/v1", selected)
}

func TestSelectServer_Prompt(t *testing.T) {
	dir := t.TempDir()
	cfg := selectTestConfig()

	prompt := func(c *config.Config) (*config.Server, error) {
		return &c.Servers[1], nil
	}
	require.NoError(t, runSelectServer(&bytes.Buffer{}, cfg, dir, "", prompt))

	selected, err := userconfig.GetSelectedServer(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1", selected)
}

func TestSelectServer_Unknown(t *testing.T) {
	dir := t.TempDir()

	err := runSelectServer(&bytes.Buffer{}, selectTestConfig(), dir, "staging", noPrompt)
	require.Error(t, err)

	selected, err := userconfig.GetSelectedServer(dir)
	require.NoError(t, err)
	assert.Empty(t, selected)
}
