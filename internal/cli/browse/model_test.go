package browse

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeSource serves fixed data and records the queries it receives
type fakeSource struct {
	mu         sync.Mutex
	sprites    []client.SpriteSummary
	packs      []client.AssetPack
	trashed    []client.SpriteSummary
	categories []client.Category
	user       *client.User
	packErr    error

	spriteFilters []client.SpriteFilter
	spritePages   []int
	trashCalls    int
	meCalls       int
	restored      []string
}

func newFakeSource() *fakeSource {
	deleted := func(days int) *client.Timestamp {
		return &client.Timestamp{Time: testNow.Add(-time.Duration(days) * 24 * time.Hour)}
	}
	return &fakeSource{
		sprites: []client.SpriteSummary{
			{ID: "s1", Name: "Green Slime", Price: 0},
			{ID: "s2", Name: "Fire Dragon", Price: 4.5},
			{ID: "s3", Name: "Skeleton Knight", Price: 2},
		},
		packs: []client.AssetPack{
			{ID: "p1", Name: "Dungeon Kit", Price: 9.99, SpriteCount: 3},
		},
		trashed: []client.SpriteSummary{
			{ID: "t1", Name: "Old Bat", DeletedAt: deleted(27)},
			{ID: "t2", Name: "Broken Sword", DeletedAt: deleted(2)},
		},
		categories: []client.Category{
			{ID: "c1", Name: "Monsters"},
			{ID: "c2", Name: "Weapons"},
		},
		user: &client.User{ID: "u1", Username: "ada"},
	}
}

func paginate[T any](items []T, page client.PageRequest) *client.Page[T] {
	size := page.Size
	start := min(page.Page*size, len(items))
	end := min(start+size, len(items))
	return &client.Page[T]{
		Content:       items[start:end],
		Number:        page.Page,
		Size:          size,
		TotalElements: int64(len(items)),
		TotalPages:    (len(items) + size - 1) / size,
	}
}

func (f *fakeSource) ListSprites(_ context.Context, filter client.SpriteFilter, page client.PageRequest) (*client.Page[client.SpriteSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spriteFilters = append(f.spriteFilters, filter)
	f.spritePages = append(f.spritePages, page.Page)

	var matched []client.SpriteSummary
	for _, sprite := range f.sprites {
		if strings.Contains(strings.ToLower(sprite.Name), strings.ToLower(filter.Keyword)) {
			matched = append(matched, sprite)
		}
	}
	return paginate(matched, page), nil
}

func (f *fakeSource) ListAssetPacks(_ context.Context, _ client.AssetPackFilter, page client.PageRequest) (*client.Page[client.AssetPack], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.packErr != nil {
		return nil, f.packErr
	}
	return paginate(f.packs, page), nil
}

func (f *fakeSource) ListTrash(_ context.Context, page client.PageRequest) (*client.Page[client.SpriteSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trashCalls++
	return paginate(f.trashed, page), nil
}

func (f *fakeSource) RestoreSprite(_ context.Context, id string) (*client.Sprite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restored = append(f.restored, id)
	for i, sprite := range f.trashed {
		if sprite.ID == id {
			f.trashed = append(f.trashed[:i:i], f.trashed[i+1:]...)
			return &client.Sprite{ID: id, Name: sprite.Name}, nil
		}
	}
	return nil, errors.New("not in trash")
}

func (f *fakeSource) ListCategories(context.Context) ([]client.Category, error) {
	return f.categories, nil
}

func (f *fakeSource) Me(context.Context) (*client.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.user == nil {
		return nil, errors.New("unauthorized")
	}
	return f.user, nil
}

func (f *fakeSource) HasTokens() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user != nil
}

func (f *fakeSource) lastSpriteFilter() client.SpriteFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.spriteFilters[len(f.spriteFilters)-1]
}

func (f *fakeSource) spriteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.spriteFilters)
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(m Model, keys string) Model {
	for _, r := range keys {
		m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// settle waits for every loader and applies the resulting change
func settle(t *testing.T, m Model) Model {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.sprites.Wait(ctx))
	require.NoError(t, m.packs.Wait(ctx))
	require.NoError(t, m.trash.Wait(ctx))
	return update(m, loaderChangedMsg{})
}

func newTestModel(t *testing.T, source *fakeSource) Model {
	t.Helper()
	m := New(context.Background(), source, Options{PageSize: 2, Now: func() time.Time { return testNow }})
	t.Cleanup(m.Close)

	m.Init()
	m = update(m, m.loadContext()())
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return settle(t, m)
}

func TestModel_ShowsFirstPage(t *testing.T) {
	m := newTestModel(t, newFakeSource())

	view := m.View()
	assert.Contains(t, view, "1:Sprites")
	assert.Contains(t, view, "Green Slime")
	assert.Contains(t, view, "Fire Dragon")
	assert.NotContains(t, view, "Skeleton Knight")
	assert.Contains(t, view, "$4.50")
	assert.Contains(t, view, "Page 1 / 2 · 3 total")
	assert.Contains(t, view, "signed in as ada")
}

func TestModel_NextPageStopsAtLastPage(t *testing.T) {
	source := newFakeSource()
	m := newTestModel(t, source)

	m = settle(t, press(m, "n"))
	view := m.View()
	assert.Contains(t, view, "Skeleton Knight")
	assert.Contains(t, view, "Page 2 / 2")

	calls := source.spriteCalls()
	m = settle(t, press(m, "n"))
	assert.Equal(t, calls, source.spriteCalls(), "no fetch past the last page")

	m = settle(t, press(m, "p"))
	assert.Contains(t, m.View(), "Page 1 / 2")
}

func TestModel_SearchIsDebounced(t *testing.T) {
	source := newFakeSource()
	m := newTestModel(t, source)

	m = press(m, "/")
	require.True(t, m.searching)
	m = press(m, "sl")
	assert.Equal(t, 2, m.searchSeq)
	assert.Equal(t, "sl", m.search.Value())

	calls := source.spriteCalls()
	m = settle(t, update(m, searchMsg{seq: 1}))
	assert.Equal(t, calls, source.spriteCalls(), "stale debounce tick must not search")

	m = settle(t, update(m, searchMsg{seq: 2}))
	assert.Equal(t, "sl", source.lastSpriteFilter().Keyword)

	view := m.View()
	assert.Contains(t, view, "Green Slime")
	assert.NotContains(t, view, "Fire Dragon")
	assert.Contains(t, view, "Page 1 / 1 · 1 total")

	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.searching)
}

func TestModel_TrashLoadsOnlyWhenOpened(t *testing.T) {
	source := newFakeSource()
	m := newTestModel(t, source)
	assert.Equal(t, 0, source.trashCalls)

	m = settle(t, press(m, "3"))
	assert.Equal(t, 1, source.trashCalls)

	view := m.View()
	assert.Contains(t, view, "Old Bat")
	assert.Contains(t, view, "3d left !")
	assert.Contains(t, view, "28d left")
	assert.NotContains(t, view, "28d left !")
	assert.Contains(t, view, "30 days")
}

func TestModel_RestoreFromTrash(t *testing.T) {
	source := newFakeSource()
	m := newTestModel(t, source)
	m = settle(t, press(m, "3"))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = next.(Model)
	require.NotNil(t, cmd)

	m = settle(t, update(m, cmd()))
	assert.Equal(t, []string{"t1"}, source.restored)
	assert.Contains(t, m.View(), "Restored Old Bat")
	assert.NotContains(t, m.View(), "Old Bat ")
}

func TestModel_RestoreIgnoredOutsideTrash(t *testing.T) {
	source := newFakeSource()
	m := newTestModel(t, source)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.Nil(t, cmd)
	assert.Empty(t, source.restored)
}

func TestModel_SessionExpiredShowsBanner(t *testing.T) {
	m := newTestModel(t, newFakeSource())

	m.SessionExpired(errors.New("refresh rejected"))
	m = update(m, listenForExpiry(m.expired)())

	view := m.View()
	assert.Contains(t, view, "Session expired")
	assert.Contains(t, view, "not signed in")
	assert.False(t, m.trash.Enabled())
}

func TestModel_SignedOutSkipsMe(t *testing.T) {
	source := newFakeSource()
	source.user = nil
	m := newTestModel(t, source)

	assert.Equal(t, 0, source.meCalls)
	assert.Contains(t, m.View(), "not signed in")
	assert.Contains(t, m.View(), "Green Slime")
}

func TestModel_CategoryCycle(t *testing.T) {
	source := newFakeSource()
	m := newTestModel(t, source)

	m = settle(t, press(m, "c"))
	assert.Equal(t, []string{"c1"}, source.lastSpriteFilter().CategoryIDs)
	assert.Contains(t, m.View(), "category: Monsters")

	m = settle(t, press(m, "c"))
	assert.Equal(t, []string{"c2"}, source.lastSpriteFilter().CategoryIDs)

	m = settle(t, press(m, "c"))
	assert.Empty(t, source.lastSpriteFilter().CategoryIDs)
	assert.NotContains(t, m.View(), "category:")
}

func TestModel_SortAndReset(t *testing.T) {
	source := newFakeSource()
	m := newTestModel(t, source)

	m = settle(t, press(m, "s"))
	filter := source.lastSpriteFilter()
	assert.Equal(t, client.SortByPrice, filter.SortBy)
	assert.Equal(t, client.SortAsc, filter.SortOrder)
	assert.Contains(t, m.View(), "cheapest")

	m = settle(t, press(m, "c"))
	m = settle(t, press(m, "x"))
	filter = source.lastSpriteFilter()
	assert.Equal(t, client.DefaultSpriteFilter(), filter)
	assert.Contains(t, m.View(), "newest")
}

func TestModel_PackErrorShown(t *testing.T) {
	source := newFakeSource()
	source.packErr = errors.New("asset packs unavailable")
	m := newTestModel(t, source)

	m = press(m, "2")
	assert.Contains(t, m.View(), "asset packs unavailable")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, newFakeSource())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}
