package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
	"github.com/pixelshop-dev/pixelshop/internal/cli/validate"
)

func TestProfileUpdate(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	env.login(t)

	require.NoError(t, runProfileUpdate(context.Background(), env.app, "", "Ada Lovelace"))
	assert.Contains(t, env.out.String(), "✓ Profile updated: ada (Ada Lovelace)")

	cached, err := env.app.session.Current()
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Ada Lovelace", cached.FullName)
}

func TestProfileUpdate_InvalidUsername(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	env.login(t)

	err := runProfileUpdate(context.Background(), env.app, "ada lovelace", "")
	var formErr *validate.Error
	require.ErrorAs(t, err, &formErr)
	assert.Equal(t, "Username can only contain letters, numbers, underscore, and hyphen", formErr.Message("username"))
}

func TestProfileUpdate_SignedOut(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)

	err := runProfileUpdate(context.Background(), env.app, "ada2", "")
	assert.Equal(t, client.ErrSessionExpired, err)
}

func TestProfileAvatar(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	env.login(t)

	require.NoError(t, runProfileAvatar(context.Background(), env.app, writeImage(t, "me.png")))
	assert.Equal(t, "✓ Avatar updated\n", env.out.String())

	cached, err := env.app.session.Current()
	require.NoError(t, err)
	require.NotNil(t, cached)
	require.NotNil(t, cached.AvatarURL)
	assert.Equal(t, "https://cdn.pixelshop.test/avatars/me.png", *cached.AvatarURL)
}
