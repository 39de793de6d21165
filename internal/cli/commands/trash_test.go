package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
)

const day = 24 * time.Hour

func TestTrashList_ShowsDaysLeft(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	now := time.Now()
	env.app.now = func() time.Time { return now }

	old := env.api.AddSprite(env.user.ID, "Old Bat", 0)
	recent := env.api.AddSprite(env.user.ID, "Broken Sword", 0)
	env.api.AddSprite(env.user.ID, "Green Slime", 0)
	env.api.TrashSprite(old.ID, now.Add(-27*day))
	env.api.TrashSprite(recent.ID, now.Add(-2*day))
	env.login(t)

	require.NoError(t, runTrashList(context.Background(), env.app, 1))

	out := env.out.String()
	assert.Contains(t, out, "EXPIRES")
	assert.Contains(t, out, "3d left !")
	assert.Contains(t, out, "28d left")
	assert.NotContains(t, out, "28d left !")
	assert.NotContains(t, out, "Green Slime")
	assert.Contains(t, out, "permanently deleted 30 days after")
	assert.Equal(t, "20", env.api.LastQuery("/sprites/trash").Get("size"))
}

func TestTrashList_Empty(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	env.login(t)

	require.NoError(t, runTrashList(context.Background(), env.app, 1))
	assert.Equal(t, "Trash is empty.\n", env.out.String())
}

func TestTrashList_RequiresLogin(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)

	err := runTrashList(context.Background(), env.app, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrSessionExpired)
}

func TestTrashRestore(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	sprite := env.api.AddSprite(env.user.ID, "Old Bat", 0)
	env.api.TrashSprite(sprite.ID, time.Now().Add(-day))
	env.login(t)

	require.NoError(t, runTrashRestore(context.Background(), env.app, []string{sprite.ID}))
	assert.Contains(t, env.out.String(), "✓ Restored Old Bat")

	deleted, ok := env.api.SpriteDeleted(sprite.ID)
	require.True(t, ok)
	assert.False(t, deleted)
}

func TestTrashRestore_NotInTrash(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	sprite := env.api.AddSprite(env.user.ID, "Green Slime", 0)
	env.login(t)

	err := runTrashRestore(context.Background(), env.app, []string{sprite.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sprite is not in trash")
}

func TestTrashPurge_Confirmed(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	first := env.api.AddSprite(env.user.ID, "Old Bat", 0)
	second := env.api.AddSprite(env.user.ID, "Broken Sword", 0)
	env.api.TrashSprite(first.ID, time.Now().Add(-day))
	env.api.TrashSprite(second.ID, time.Now().Add(-day))
	env.login(t)

	require.NoError(t, runTrashPurge(context.Background(), env.app, []string{first.ID, second.ID}, false))

	require.Len(t, env.confirmed, 1)
	assert.Contains(t, env.confirmed[0], "Permanently delete 2 sprite(s)")
	assert.Contains(t, env.out.String(), "✓ Permanently deleted "+first.ID)

	for _, id := range []string{first.ID, second.ID} {
		_, ok := env.api.SpriteDeleted(id)
		assert.False(t, ok, "purged sprites are gone")
	}
}

func TestTrashPurge_Declined(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	sprite := env.api.AddSprite(env.user.ID, "Old Bat", 0)
	env.api.TrashSprite(sprite.ID, time.Now().Add(-day))
	env.login(t)
	env.app.confirm = func(string) (bool, error) { return false, nil }

	require.NoError(t, runTrashPurge(context.Background(), env.app, []string{sprite.ID}, false))
	assert.Equal(t, "Cancelled.\n", env.out.String())

	_, ok := env.api.SpriteDeleted(sprite.ID)
	assert.True(t, ok)
}

func TestTrashPurge_YesSkipsPrompt(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	sprite := env.api.AddSprite(env.user.ID, "Old Bat", 0)
	env.api.TrashSprite(sprite.ID, time.Now().Add(-day))
	env.login(t)

	require.NoError(t, runTrashPurge(context.Background(), env.app, []string{sprite.ID}, true))
	assert.Empty(t, env.confirmed)

	_, ok := env.api.SpriteDeleted(sprite.ID)
	assert.False(t, ok)
}
