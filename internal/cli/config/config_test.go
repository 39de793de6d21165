package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
servers:
  - url: https://api.pixelshop.dev/api/v1
    alias: production
  - url: http://localhost:8080/api/v1
    alias: local
page_size: 24
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Servers, 2)
	assert.Equal(t, "production", cfg.Servers[0].Alias)
	assert.Equal(t, 24, cfg.EffectivePageSize(12))

	server, err := cfg.GetServerByAlias("local")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1", server.URL)

	server, err = cfg.GetServerByURL("https://api.pixelshop.dev/api/v1")
	require.NoError(t, err)
	assert.Equal(t, "production (https://api.pixelshop.dev/api/v1)", server.Label())

	_, err = cfg.GetServerByAlias("staging")
	assert.Error(t, err)

	server, err = cfg.GetDefaultServer()
	require.NoError(t, err)
	assert.Equal(t, "production", server.Alias)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "empty url",
			content: "servers:\n  - alias: broken\n",
			wantErr: "url is empty",
		},
		{
			name:    "bad scheme",
			content: "servers:\n  - url: ftp://example.com\n",
			wantErr: "must be an http(s) URL",
		},
		{
			name:    "duplicate alias",
			content: "servers:\n  - url: http://a.test\n    alias: x\n  - url: http://b.test\n    alias: x\n",
			wantErr: "duplicate server alias",
		},
		{
			name:    "not yaml",
			content: "servers: [",
			wantErr: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFindConfigFile_SearchesParents(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "servers: []\n")
	nested := filepath.Join(root, "assets", "sprites")
	require.NoError(t, os.MkdirAll(nested, 0755))
	t.Chdir(nested)

	path, err := FindConfigFile()
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(root, ConfigFileName))
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindConfigFile_NotFound(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadFromCurrentDir()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, Save(path, DefaultConfig()))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = (&Config{}).GetDefaultServer()
	assert.Error(t, err)
	assert.Equal(t, 12, (&Config{}).EffectivePageSize(12))
}
