package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelshop-dev/pixelshop/internal/cli/config"
)

func TestInitCommand_NewConfig(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, runInit(&out, dir, "https://api.pixelshop.dev/api/v1/", ""))

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	require.Len(t, cfg.Servers, 1)
	assert.Equal(t, "https://api.pixelshop.dev/api/v1", cfg.Servers[0].URL)
	assert.Equal(t, "production", cfg.Servers[0].Alias)
	assert.Equal(t, 12, cfg.PageSize)
	assert.Contains(t, out.String(), "✓ Created ./pixelshop.yaml")
}

func TestInitCommand_AddSecondServer(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, runInit(&out, dir, "https://api.pixelshop.dev/api/v1", ""))
	require.NoError(t, runInit(&out, dir, "http://localhost:8080/api/v1", ""))
	require.NoError(t, runInit(&out, dir, "http://staging.pixelshop.dev/api/v1", "staging"))

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	require.Len(t, cfg.Servers, 3)
	assert.Equal(t, "production", cfg.Servers[0].Alias)
	assert.Equal(t, "server-2", cfg.Servers[1].Alias)
	assert.Equal(t, "staging", cfg.Servers[2].Alias)
	assert.Contains(t, out.String(), "✓ Added server http://localhost:8080/api/v1 (server-2)")
}

func TestInitCommand_DuplicateServer(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, runInit(&out, dir, "http://localhost:8080/api/v1", "local"))
	out.Reset()
	require.NoError(t, runInit(&out, dir, "http://localhost:8080/api/v1", "other"))
	assert.Contains(t, out.String(), "already exists")

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	assert.Len(t, cfg.Servers, 1)
}

func TestInitCommand_DuplicateAlias(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, runInit(&out, dir, "http://localhost:8080/api/v1", "local"))
	err := runInit(&out, dir, "http://localhost:9090/api/v1", "local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alias 'local' is already used")
}

func TestInitCommand_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"192.168.1.100", "ftp://example.com", "https://"} {
		err := runInit(&bytes.Buffer{}, t.TempDir(), raw, "")
		assert.Error(t, err, raw)
	}
}

func TestInitCommand_MissingArgument(t *testing.T) {
	cmd := NewInitCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
