package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
	"github.com/pixelshop-dev/pixelshop/internal/cli/validate"
)

func ptr(v float64) *float64 { return &v }

func TestPacksList_PriceRange(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	slime := env.api.AddSprite(env.user.ID, "Green Slime", 0)
	env.api.AddAssetPack(env.user.ID, "Starter Kit", 0, slime.ID)
	env.api.AddAssetPack(env.user.ID, "Dungeon Kit", 9.99, slime.ID)
	env.api.AddAssetPack(env.user.ID, "Castle Kit", 49)

	filter := client.AssetPackFilter{MinPrice: ptr(0), MaxPrice: ptr(10), SortBy: client.SortByPrice, SortOrder: client.SortAsc}
	require.NoError(t, runPacksList(context.Background(), env.app, filter, nil, 1))

	out := env.out.String()
	assert.Contains(t, out, "SPRITES")
	assert.Contains(t, out, "Starter Kit")
	assert.Contains(t, out, "$9.99")
	assert.NotContains(t, out, "Castle Kit")

	query := env.api.LastQuery("/asset-packs")
	assert.Equal(t, "0", query.Get("minPrice"))
	assert.Equal(t, "10", query.Get("maxPrice"))
	assert.Equal(t, "price", query.Get("sortBy"))
}

func TestPacksList_OmitsUnsetPrices(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)

	require.NoError(t, runPacksList(context.Background(), env.app, client.DefaultAssetPackFilter(), nil, 1))
	assert.Contains(t, env.out.String(), "No asset packs found.")

	query := env.api.LastQuery("/asset-packs")
	assert.False(t, query.Has("minPrice"))
	assert.False(t, query.Has("maxPrice"))
}

func TestPacksList_InvertedRange(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)

	err := runPacksList(context.Background(), env.app, client.AssetPackFilter{MinPrice: ptr(10), MaxPrice: ptr(1)}, nil, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "greater than max price")
	assert.Nil(t, env.api.LastQuery("/asset-packs"), "nothing is sent for an invalid filter")
}

func TestPacksShow_ListsSprites(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	monsters := env.api.AddCategory("Monsters")
	slime := env.api.AddSprite(env.user.ID, "Green Slime", 0, monsters.ID)
	bat := env.api.AddSprite(env.user.ID, "Old Bat", 0, monsters.ID)
	pack := env.api.AddAssetPack(env.user.ID, "Dungeon Kit", 4.99, slime.ID, bat.ID)

	require.NoError(t, runPacksShow(context.Background(), env.app, pack.ID))

	out := env.out.String()
	assert.Contains(t, out, "Name:        Dungeon Kit")
	assert.Contains(t, out, "Price:       $4.99")
	assert.Contains(t, out, "Categories:  Monsters")
	assert.Contains(t, out, "Sprites (2):")
	assert.Contains(t, out, slime.ID+"  Green Slime")
}

func TestPacksCreate(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	slime := env.api.AddSprite(env.user.ID, "Green Slime", 0)
	env.login(t)

	err := runPacksCreate(context.Background(), env.app, packWriteOptions{
		name:        "Dungeon Kit",
		description: "Everything for a first dungeon",
		price:       4.99,
		sprites:     []string{slime.ID},
		image:       writeImage(t, "cover.png"),
	})
	require.NoError(t, err)
	assert.Contains(t, env.out.String(), "✓ Created asset pack Dungeon Kit (")

	page, err := env.app.api.ListAssetPacks(context.Background(), client.DefaultAssetPackFilter(), client.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, 1, page.Content[0].SpriteCount)
	assert.Equal(t, "https://cdn.pixelshop.test/packs/cover.png", page.Content[0].ImageURL)
}

func TestPacksCreate_Validation(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)

	err := runPacksCreate(context.Background(), env.app, packWriteOptions{
		price:   -1,
		sprites: []string{"nope"},
		image:   writeImage(t, "cover.png"),
	})
	var formErr *validate.Error
	require.ErrorAs(t, err, &formErr)
	assert.Equal(t, "Name is required", formErr.Message("name"))
	assert.Equal(t, "Price must not be negative", formErr.Message("price"))
	assert.Equal(t, "Sprite must be a valid ID", formErr.Message("spriteIds"))
}

func TestPacksUpdate_ZeroPriceIsAnEdit(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	slime := env.api.AddSprite(env.user.ID, "Green Slime", 0)
	pack := env.api.AddAssetPack(env.user.ID, "Dungeon Kit", 4.99, slime.ID)
	env.login(t)

	err := runPacksUpdate(context.Background(), env.app, pack.ID, packWriteOptions{}, packChanges{price: true})
	require.NoError(t, err)
	assert.Contains(t, env.out.String(), "✓ Updated asset pack Dungeon Kit")

	updated, err := env.app.api.GetAssetPack(context.Background(), pack.ID)
	require.NoError(t, err)
	assert.Zero(t, updated.Price)
	require.Len(t, updated.Sprites, 1, "unchanged sprites are kept")
	assert.Equal(t, slime.ID, updated.Sprites[0].ID)
}

func TestPacksUpdate_ReplacesSprites(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	slime := env.api.AddSprite(env.user.ID, "Green Slime", 0)
	bat := env.api.AddSprite(env.user.ID, "Old Bat", 0)
	pack := env.api.AddAssetPack(env.user.ID, "Dungeon Kit", 4.99, slime.ID)
	env.login(t)

	err := runPacksUpdate(context.Background(), env.app, pack.ID,
		packWriteOptions{name: "Cave Kit", sprites: []string{slime.ID, bat.ID}},
		packChanges{sprites: true})
	require.NoError(t, err)

	updated, err := env.app.api.GetAssetPack(context.Background(), pack.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cave Kit", updated.Name)
	assert.Equal(t, 4.99, updated.Price)
	assert.Equal(t, 2, updated.SpriteCount)
}

func TestPacksDelete(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	pack := env.api.AddAssetPack(env.user.ID, "Dungeon Kit", 4.99)
	env.login(t)

	require.NoError(t, runPacksDelete(context.Background(), env.app, []string{pack.ID}, false))
	require.Len(t, env.confirmed, 1)
	assert.Contains(t, env.out.String(), "✓ Deleted asset pack "+pack.ID)

	_, err := env.app.api.GetAssetPack(context.Background(), pack.ID)
	assert.True(t, client.IsStatus(err, 404))
}

func TestPacksDelete_Declined(t *testing.T) {
	env := newTestEnv(t, client.RoleUser)
	pack := env.api.AddAssetPack(env.user.ID, "Dungeon Kit", 4.99)
	env.login(t)
	env.app.confirm = func(string) (bool, error) { return false, nil }

	require.NoError(t, runPacksDelete(context.Background(), env.app, []string{pack.ID}, false))
	assert.Equal(t, "Cancelled.\n", env.out.String())

	_, err := env.app.api.GetAssetPack(context.Background(), pack.ID)
	assert.NoError(t, err)
}
