// Package browse is the interactive terminal browser for the marketplace
// catalogue: sprites, asset packs and the signed-in user's trash.
//
// Every list is backed by a listing.Loader, so a slow search answered after
// a newer one never repaints the screen with stale rows.
package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
	"github.com/pixelshop-dev/pixelshop/internal/cli/listing"
	"github.com/pixelshop-dev/pixelshop/internal/cli/trash"
)

// Tab identifies which list is shown
type Tab int

const (
	TabSprites Tab = iota
	TabPacks
	TabTrash
)

var tabs = []Tab{TabSprites, TabPacks, TabTrash}

func (t Tab) String() string {
	switch t {
	case TabSprites:
		return "Sprites"
	case TabPacks:
		return "Asset packs"
	case TabTrash:
		return "Trash"
	default:
		return "?"
	}
}

// searchDebounce is how long typing must pause before a search is sent
const searchDebounce = 300 * time.Millisecond

// Source is the part of the API client the browser reads from
type Source interface {
	ListSprites(ctx context.Context, filter client.SpriteFilter, page client.PageRequest) (*client.Page[client.SpriteSummary], error)
	ListAssetPacks(ctx context.Context, filter client.AssetPackFilter, page client.PageRequest) (*client.Page[client.AssetPack], error)
	ListTrash(ctx context.Context, page client.PageRequest) (*client.Page[client.SpriteSummary], error)
	RestoreSprite(ctx context.Context, spriteID string) (*client.Sprite, error)
	ListCategories(ctx context.Context) ([]client.Category, error)
	Me(ctx context.Context) (*client.User, error)
	HasTokens() bool
}

type spriteQuery struct {
	Filter client.SpriteFilter
	Page   int
}

type packQuery struct {
	Filter client.AssetPackFilter
	Page   int
}

// loaderChangedMsg tells the model that some loader's state moved
type loaderChangedMsg struct{}

// searchMsg fires after the debounce delay; only the newest seq searches
type searchMsg struct {
	seq int
}

type contextMsg struct {
	user       *client.User
	categories []client.Category
	err        error
}

type sessionExpiredMsg struct {
	reason error
}

type restoredMsg struct {
	name string
	err  error
}

// Options configures a Model
type Options struct {
	PageSize int
	Now      func() time.Time
}

// Model is the bubbletea model of the browser
type Model struct {
	ctx    context.Context
	source Source
	keys   KeyMap
	theme  Theme
	now    func() time.Time

	tab       Tab
	search    textinput.Model
	searching bool
	searchSeq int
	table     table.Model

	sprites *listing.Loader[spriteQuery, client.SpriteSummary]
	packs   *listing.Loader[packQuery, client.AssetPack]
	trash   *listing.Loader[int, client.SpriteSummary]
	changes chan struct{}
	expired chan error

	user          *client.User
	categories    []client.Category
	categoryIndex int // -1 when no category filter is set
	sortIndex     int
	status        string
	banner        string

	width  int
	height int
}

// sortModes is the cycle the sort key walks through
var sortModes = []struct {
	label  string
	sortBy string
	order  string
}{
	{"newest", client.SortByCreatedAt, client.SortDesc},
	{"cheapest", client.SortByPrice, client.SortAsc},
	{"priciest", client.SortByPrice, client.SortDesc},
	{"oldest", client.SortByCreatedAt, client.SortAsc},
}

// New creates a browser reading from source. Call Close when done.
func New(ctx context.Context, source Source, opts Options) Model {
	if opts.PageSize <= 0 {
		opts.PageSize = client.DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	changes := make(chan struct{}, 1)
	notify := func() {
		// One pending wake-up is enough; the model reads the latest state.
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	search := textinput.New()
	search.Placeholder = "search by name"
	search.Prompt = "/ "
	search.CharLimit = 100

	m := Model{
		ctx:           ctx,
		source:        source,
		keys:          DefaultKeyMap,
		theme:         DefaultTheme,
		now:           opts.Now,
		search:        search,
		changes:       changes,
		expired:       make(chan error, 1),
		categoryIndex: -1,
		table: table.New(
			table.WithFocused(true),
			table.WithHeight(opts.PageSize+1),
		),
	}

	pageSize := opts.PageSize
	m.sprites = listing.New(func(ctx context.Context, q spriteQuery) (*client.Page[client.SpriteSummary], error) {
		return source.ListSprites(ctx, q.Filter, client.PageRequest{Page: q.Page, Size: pageSize})
	}, spriteQuery{Filter: client.DefaultSpriteFilter()},
		listing.WithOnChange(func(listing.State[spriteQuery, client.SpriteSummary]) { notify() }))

	m.packs = listing.New(func(ctx context.Context, q packQuery) (*client.Page[client.AssetPack], error) {
		return source.ListAssetPacks(ctx, q.Filter, client.PageRequest{Page: q.Page, Size: pageSize})
	}, packQuery{Filter: client.DefaultAssetPackFilter()},
		listing.WithOnChange(func(listing.State[packQuery, client.AssetPack]) { notify() }))

	// The trash is only fetched once its tab is opened
	m.trash = listing.New(func(ctx context.Context, page int) (*client.Page[client.SpriteSummary], error) {
		return source.ListTrash(ctx, client.PageRequest{Page: page, Size: client.TrashPageSize})
	}, 0,
		listing.WithOnChange(func(listing.State[int, client.SpriteSummary]) { notify() }),
		listing.WithEnabled[int, client.SpriteSummary](false))

	m.rebuildTable()
	return m
}

// SessionExpired shows the signed-out banner. It is safe to call from any
// goroutine, typically a session.Store OnLogout listener.
func (m Model) SessionExpired(reason error) {
	select {
	case m.expired <- reason:
	default:
	}
}

// Close stops every loader
func (m Model) Close() {
	m.sprites.Close()
	m.packs.Close()
	m.trash.Close()
}

// Init implements tea.Model. It starts the sprite and pack fetches and the
// listeners for loader and session events.
func (m Model) Init() tea.Cmd {
	m.sprites.Refresh()
	m.packs.Refresh()
	return tea.Batch(
		m.loadContext(),
		listenForChanges(m.changes),
		listenForExpiry(m.expired),
	)
}

func listenForChanges(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return loaderChangedMsg{}
	}
}

func listenForExpiry(expired <-chan error) tea.Cmd {
	return func() tea.Msg {
		reason, ok := <-expired
		if !ok {
			return nil
		}
		return sessionExpiredMsg{reason: reason}
	}
}

// loadContext fetches the categories and, when tokens exist, the signed-in
// user side by side.
func (m Model) loadContext() tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		var msg contextMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			categories, err := source.ListCategories(gctx)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}
			msg.categories = categories
			return nil
		})
		if source.HasTokens() {
			g.Go(func() error {
				// Browsing works signed out, so a failed lookup is not fatal
				if user, err := source.Me(gctx); err == nil {
					msg.user = user
				}
				return nil
			})
		}
		msg.err = g.Wait()
		return msg
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.rebuildTable()
		return m, nil

	case loaderChangedMsg:
		m.rebuildTable()
		return m, listenForChanges(m.changes)

	case searchMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		m.applyKeyword(m.search.Value())
		return m, nil

	case contextMsg:
		m.user = msg.user
		m.categories = msg.categories
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		return m, nil

	case sessionExpiredMsg:
		m.user = nil
		m.banner = "Session expired. Run 'pixelshop login' to sign in again."
		m.trash.SetEnabled(false)
		return m, listenForExpiry(m.expired)

	case restoredMsg:
		if msg.err != nil {
			m.status = "Restore failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Restored %s", msg.name)
			m.trash.Refresh()
			m.sprites.Refresh()
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.SearchLeave) {
		m.searching = false
		m.search.Blur()
		m.table.Focus()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}

	m.searchSeq++
	seq := m.searchSeq
	return m, tea.Batch(cmd, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchMsg{seq: seq}
	}))
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.TabSprites):
		m.switchTab(TabSprites)

	case key.Matches(msg, m.keys.TabPacks):
		m.switchTab(TabPacks)

	case key.Matches(msg, m.keys.TabTrash):
		m.switchTab(TabTrash)

	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(tabs[(int(m.tab)+1)%len(tabs)])

	case key.Matches(msg, m.keys.Search):
		if m.tab == TabTrash {
			return m, nil
		}
		m.searching = true
		m.table.Blur()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.NextPage):
		m.turnPage(1)

	case key.Matches(msg, m.keys.PrevPage):
		m.turnPage(-1)

	case key.Matches(msg, m.keys.Category):
		m.cycleCategory()

	case key.Matches(msg, m.keys.Sort):
		m.cycleSort()

	case key.Matches(msg, m.keys.Reset):
		m.resetFilters()

	case key.Matches(msg, m.keys.Refresh):
		m.currentRefresh()

	case key.Matches(msg, m.keys.Restore):
		if m.tab == TabTrash {
			return m, m.restoreSelected()
		}

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) switchTab(tab Tab) {
	if m.tab == tab {
		return
	}
	m.tab = tab
	m.status = ""
	if tab == TabTrash {
		m.trash.SetEnabled(true)
	}
	m.rebuildTable()
	m.table.SetCursor(0)
}

// applyKeyword sends the debounced search to the current tab, back on page 1
func (m *Model) applyKeyword(keyword string) {
	switch m.tab {
	case TabSprites:
		q := m.sprites.State().Params
		q.Filter.Keyword = keyword
		q.Page = 0
		m.sprites.Load(q)
	case TabPacks:
		q := m.packs.State().Params
		q.Filter.Keyword = keyword
		q.Page = 0
		m.packs.Load(q)
	}
	m.rebuildTable()
}

func (m *Model) turnPage(delta int) {
	switch m.tab {
	case TabSprites:
		state := m.sprites.State()
		if page, ok := nextPage(state.Data, state.Params.Page, delta); ok {
			q := state.Params
			q.Page = page
			m.sprites.Load(q)
		}
	case TabPacks:
		state := m.packs.State()
		if page, ok := nextPage(state.Data, state.Params.Page, delta); ok {
			q := state.Params
			q.Page = page
			m.packs.Load(q)
		}
	case TabTrash:
		state := m.trash.State()
		if page, ok := nextPage(state.Data, state.Params, delta); ok {
			m.trash.Load(page)
		}
	}
	m.rebuildTable()
	m.table.SetCursor(0)
}

// nextPage moves current by delta within the pages data knows about
func nextPage[T any](data *client.Page[T], current, delta int) (int, bool) {
	if data == nil {
		return 0, false
	}
	if (delta > 0 && !data.HasNext()) || (delta < 0 && !data.HasPrev()) {
		return 0, false
	}
	page := data.Clamp(current + delta)
	return page, page != current
}

func (m *Model) cycleCategory() {
	if len(m.categories) == 0 || m.tab == TabTrash {
		return
	}

	var previous string
	if m.categoryIndex >= 0 {
		previous = m.categories[m.categoryIndex].ID
	}
	m.categoryIndex++
	if m.categoryIndex >= len(m.categories) {
		m.categoryIndex = -1
	}

	sprites := m.sprites.State().Params
	packs := m.packs.State().Params
	if previous != "" {
		sprites.Filter.ToggleCategory(previous)
		packs.Filter.ToggleCategory(previous)
	}
	if m.categoryIndex >= 0 {
		id := m.categories[m.categoryIndex].ID
		sprites.Filter.ToggleCategory(id)
		packs.Filter.ToggleCategory(id)
	}
	sprites.Page, packs.Page = 0, 0
	m.sprites.Load(sprites)
	m.packs.Load(packs)
	m.rebuildTable()
}

func (m *Model) cycleSort() {
	if m.tab == TabTrash {
		return
	}
	m.sortIndex = (m.sortIndex + 1) % len(sortModes)
	mode := sortModes[m.sortIndex]

	sprites := m.sprites.State().Params
	sprites.Filter.SortBy, sprites.Filter.SortOrder = mode.sortBy, mode.order
	sprites.Page = 0
	packs := m.packs.State().Params
	packs.Filter.SortBy, packs.Filter.SortOrder = mode.sortBy, mode.order
	packs.Page = 0

	m.sprites.Load(sprites)
	m.packs.Load(packs)
	m.rebuildTable()
}

func (m *Model) resetFilters() {
	m.search.SetValue("")
	m.searchSeq++
	m.categoryIndex = -1
	m.sortIndex = 0

	sprites := m.sprites.State().Params
	sprites.Filter.Reset()
	packs := m.packs.State().Params
	packs.Filter.Reset()
	m.sprites.Load(spriteQuery{Filter: sprites.Filter})
	m.packs.Load(packQuery{Filter: packs.Filter})
	m.rebuildTable()
}

func (m *Model) currentRefresh() {
	switch m.tab {
	case TabSprites:
		m.sprites.Refresh()
	case TabPacks:
		m.packs.Refresh()
	case TabTrash:
		m.trash.Refresh()
	}
	m.status = ""
}

func (m Model) restoreSelected() tea.Cmd {
	items := m.trash.State().Items()
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(items) {
		return nil
	}
	item := items[cursor]
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		sprite, err := source.RestoreSprite(ctx, item.ID)
		if err != nil {
			return restoredMsg{name: item.Name, err: err}
		}
		return restoredMsg{name: sprite.Name}
	}
}

// rebuildTable copies the current tab's loader state into the table
func (m *Model) rebuildTable() {
	var columns []table.Column
	var rows []table.Row

	nameWidth := 28
	if m.width > 0 {
		nameWidth = max(16, m.width-60)
	}

	switch m.tab {
	case TabSprites:
		columns = []table.Column{
			{Title: "Name", Width: nameWidth},
			{Title: "Price", Width: 10},
			{Title: "Created", Width: 16},
		}
		for _, sprite := range m.sprites.State().Items() {
			rows = append(rows, table.Row{sprite.Name, formatPrice(sprite.Price), formatDate(sprite.CreatedAt)})
		}
	case TabPacks:
		columns = []table.Column{
			{Title: "Name", Width: nameWidth},
			{Title: "Price", Width: 10},
			{Title: "Sprites", Width: 8},
			{Title: "Created", Width: 16},
		}
		for _, pack := range m.packs.State().Items() {
			rows = append(rows, table.Row{pack.Name, formatPrice(pack.Price), fmt.Sprint(pack.SpriteCount), formatDate(pack.CreatedAt)})
		}
	case TabTrash:
		columns = []table.Column{
			{Title: "Name", Width: nameWidth},
			{Title: "Deleted", Width: 16},
			{Title: "Expires", Width: 12},
		}
		now := m.now()
		for _, sprite := range m.trash.State().Items() {
			deleted, expires := "-", "-"
			if sprite.DeletedAt != nil && !sprite.DeletedAt.IsZero() {
				deleted = formatDate(*sprite.DeletedAt)
				days := trash.DaysRemaining(sprite.DeletedAt.Time, now)
				expires = fmt.Sprintf("%dd left", days)
				if trash.Urgent(days) {
					expires += " !"
				}
			}
			rows = append(rows, table.Row{sprite.Name, deleted, expires})
		}
	}

	// Rows must be cleared before the column count changes
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(rows)
	if len(rows) > 0 && m.table.Cursor() < 0 {
		m.table.SetCursor(0)
	}
	if m.height > 0 {
		m.table.SetHeight(max(3, m.height-8))
	}
}

// currentState summarizes the active loader for the header and footer
func (m Model) currentState() (loading bool, errMsg string, page, totalPages int, total int64) {
	switch m.tab {
	case TabSprites:
		s := m.sprites.State()
		return s.Loading, s.ErrMessage(), s.Params.Page, totalPagesOf(s.Data), totalOf(s.Data)
	case TabPacks:
		s := m.packs.State()
		return s.Loading, s.ErrMessage(), s.Params.Page, totalPagesOf(s.Data), totalOf(s.Data)
	default:
		s := m.trash.State()
		return s.Loading, s.ErrMessage(), s.Params, totalPagesOf(s.Data), totalOf(s.Data)
	}
}

func totalPagesOf[T any](data *client.Page[T]) int {
	if data == nil {
		return 0
	}
	return data.TotalPages
}

func totalOf[T any](data *client.Page[T]) int64 {
	if data == nil {
		return 0
	}
	return data.TotalElements
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	if m.banner != "" {
		b.WriteString(m.theme.Banner.Render(m.banner))
		b.WriteString("\n")
	}

	var tabLabels []string
	for i, tab := range tabs {
		label := fmt.Sprintf("%d:%s", i+1, tab)
		if tab == m.tab {
			tabLabels = append(tabLabels, m.theme.ActiveTab.Render(label))
		} else {
			tabLabels = append(tabLabels, m.theme.InactiveTab.Render(label))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabLabels...)
	if m.user != nil {
		header += "  " + m.theme.Faint.Render("signed in as "+m.user.Username)
	} else {
		header += "  " + m.theme.Faint.Render("not signed in")
	}
	b.WriteString(header)
	b.WriteString("\n")

	if m.tab != TabTrash {
		b.WriteString(m.search.View())
		b.WriteString("  ")
		b.WriteString(m.theme.Faint.Render(m.filterSummary()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	loading, errMsg, page, totalPages, total := m.currentState()
	switch {
	case errMsg != "":
		b.WriteString(m.theme.Error.Render(errMsg))
		b.WriteString("\n")
	case loading && len(m.table.Rows()) == 0:
		b.WriteString(m.theme.Faint.Render("Loading..."))
		b.WriteString("\n")
	case len(m.table.Rows()) == 0:
		b.WriteString(m.theme.Faint.Render(emptyText(m.tab)))
		b.WriteString("\n")
	default:
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	if totalPages > 0 {
		footer := fmt.Sprintf("Page %d / %d · %d total", page+1, totalPages, total)
		if loading {
			footer += " · loading"
		}
		b.WriteString(m.theme.Faint.Render(footer))
		b.WriteString("\n")
	}
	if m.tab == TabTrash {
		b.WriteString(m.theme.Urgent.Render(fmt.Sprintf("Items are deleted for good %d days after trashing; ! marks %d days or less.",
			int(trash.Retention.Hours()/24), trash.UrgentDays)))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.theme.Status.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.theme.Faint.Render(m.helpText()))
	return b.String()
}

func (m Model) filterSummary() string {
	parts := []string{sortModes[m.sortIndex].label}
	if m.categoryIndex >= 0 && m.categoryIndex < len(m.categories) {
		parts = append(parts, "category: "+m.categories[m.categoryIndex].Name)
	}
	return strings.Join(parts, " · ")
}

func (m Model) helpText() string {
	if m.searching {
		return "type to search · esc done"
	}
	help := "1-3 tabs · / search · c category · s sort · x clear · n/p page · q quit"
	if m.tab == TabTrash {
		help = "1-3 tabs · r restore · n/p page · ctrl+r reload · q quit"
	}
	return help
}

func emptyText(tab Tab) string {
	switch tab {
	case TabPacks:
		return "No asset packs found."
	case TabTrash:
		return "Trash is empty."
	default:
		return "No sprites found."
	}
}

func formatPrice(price float64) string {
	if price == 0 {
		return "free"
	}
	return fmt.Sprintf("$%.2f", price)
}

func formatDate(ts client.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

// Run shows the browser until the user quits or ctx is cancelled
func Run(ctx context.Context, source Source, sessions SessionEvents, opts Options) error {
	m := New(ctx, source, opts)
	defer m.Close()

	if sessions != nil {
		unsubscribe := sessions.OnLogout(m.SessionExpired)
		defer unsubscribe()
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// SessionEvents announces forced sign-outs
type SessionEvents interface {
	OnLogout(fn func(reason error)) (unsubscribe func())
}
