package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pixelshop-dev/pixelshop/internal/cli/apitest"
	"github.com/pixelshop-dev/pixelshop/internal/cli/auth"
	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
	"github.com/pixelshop-dev/pixelshop/internal/cli/config"
	"github.com/pixelshop-dev/pixelshop/internal/cli/session"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "engine"
)

// testEnv wires an app to an in-process fake API
type testEnv struct {
	api    *apitest.Server
	app    *app
	out    *bytes.Buffer
	tokens *auth.MemoryStore
	user   client.User

	confirmed []string
	opened    []string
}

func newTestEnv(t *testing.T, role client.Role) *testEnv {
	t.Helper()

	api := apitest.New(t)
	env := &testEnv{
		api:    api,
		out:    &bytes.Buffer{},
		tokens: auth.NewMemoryStore(),
		user:   api.AddUser(testEmail, testPassword, "ada", role),
	}

	store := session.Open(t.TempDir(), api.URL())
	c, err := client.New(api.URL(), client.WithTokenStore(env.tokens), client.WithSession(store))
	require.NoError(t, err)

	env.app = &app{
		api:      c,
		server:   &config.Server{URL: api.URL(), Alias: "test"},
		session:  store,
		out:      env.out,
		pageSize: client.DefaultPageSize,
		now:      time.Now,
		confirm: func(label string) (bool, error) {
			env.confirmed = append(env.confirmed, label)
			return true, nil
		},
		readSecret: func(label string) (string, error) {
			return "", fmt.Errorf("%s is required in non-interactive mode", strings.ToLower(label))
		},
		openURL: func(url string) error {
			env.opened = append(env.opened, url)
			return nil
		},
	}
	return env
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	require.NoError(t, runLogin(context.Background(), e.app, testEmail, testPassword))
	e.out.Reset()
}

// secrets answers readSecret prompts in order
func (e *testEnv) secrets(answers ...string) {
	e.app.readSecret = func(label string) (string, error) {
		if len(answers) == 0 {
			return "", fmt.Errorf("unexpected prompt %q", label)
		}
		answer := answers[0]
		answers = answers[1:]
		return answer, nil
	}
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake"), 0o600))
	return path
}
