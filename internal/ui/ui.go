package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvtrack/internal/formatter"
	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/services"
	"github.com/desertthunder/tvtrack/internal/shared"
	"github.com/desertthunder/tvtrack/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	SearchView
	NoteView
	ConfirmView
	UpcomingView
)

// ModelOpts contains the dependencies of the TUI. Only Manager is required.
type ModelOpts struct {
	Manager *tasks.Manager
	Catalog services.Catalog
	Sweeper *tasks.Sweeper
	Logger  *log.Logger
	Now     func() time.Time
	OpenURL func(url string) error

	// SignIn runs the Google sign-in flow; say receives lines for the banner. Nil disables sign-in.
	SignIn  func(ctx context.Context, say func(string)) (models.Identity, error)
	SignOut func(ctx context.Context) error
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	manager *tasks.Manager
	catalog services.Catalog
	sweeper *tasks.Sweeper
	logger  *log.Logger
	now     func() time.Time
	openURL func(string) error
	signIn  func(context.Context, func(string)) (models.Identity, error)
	signOut func(context.Context) error

	identity   models.Identity
	identities chan models.Identity
	authing    bool

	width    int
	height   int
	shows    list.Model
	results  list.Model
	query    textinput.Model
	note     textarea.Model
	spinner  spinner.Model
	adding   bool
	updates  chan tasks.ProgressUpdate
	progress tasks.ProgressUpdate
	searched string // query the current results belong to
	target   int    // id of the show being annotated or deleted

	styles *Palette
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	query := textinput.New()
	query.Placeholder = "Search for a show..."
	query.CharLimit = 100

	note := textarea.New()
	note.Placeholder = "Notes..."
	note.ShowLineNumbers = false

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		ctx:     ctx,
		view:    ListView,
		manager: opts.Manager,
		catalog: opts.Catalog,
		sweeper: opts.Sweeper,
		logger:  shared.WithLogger(opts.Logger, "component", "tui"),
		now:     opts.Now,
		openURL: opts.OpenURL,
		signIn:  opts.SignIn,
		signOut: opts.SignOut,
		query:   query,
		note:    note,
		spinner: spin,
		help:    help.New(),
		keys:    newKeyMap(),
	}

	m.shows = newList("Tracked Shows")
	m.results = newList("Results")
	m.applyTheme()
	m.refresh()

	m.identities = make(chan models.Identity, 1)
	m.identity = m.manager.Identity()
	m.manager.OnIdentityChange(m.publishIdentity)
	return m
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

// Run starts the TUI on the alternate screen and blocks until the user quits.
func Run(ctx context.Context, opts ModelOpts) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// Init runs the startup sweeps and starts listening for alerts.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.sweep(), m.waitForAlert(), m.waitForIdentity())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case NoteView:
			return m.handleNoteKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case UpcomingView:
			return m.handleUpcomingKeys(msg)
		default:
			return m.handleListKeys(msg)
		}

	case spinner.TickMsg:
		if !m.adding {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateActive(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSearchResults:
		res := msg.data.(searchResults)
		if res.query != m.searched {
			return m, nil
		}
		m.results.SetItems(hitItems(res.hits))
		m.results.ResetSelected()
		if len(res.hits) > 0 {
			m.query.Blur()
		}
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, waitForProgress(m.updates)

	case MsgShowAdded:
		res := msg.data.(showAdded)
		m.adding = false
		m.updates = nil
		m.progress = tasks.ProgressUpdate{}
		switch {
		case errors.Is(res.err, shared.ErrDuplicate):
			m.logger.Debug("ignored duplicate add", "error", res.err)
		case res.err != nil:
			m.manager.SetNotification(fmt.Sprintf("⚠ Could not add show: %v", res.err))
		default:
			m.clearSearch()
			m.view = ListView
			m.refresh()
			m.selectShow(res.show.ID)
		}
		return m, nil

	case MsgAlert:
		m.refresh()
		return m, m.waitForAlert()

	case MsgSweepDone:
		m.logger.Debug("startup sweep finished", "alerts", msg.data.(int))
		return m, nil

	case MsgIdentityChanged:
		m.identity = msg.data.(models.Identity)
		m.refresh()
		return m, m.waitForIdentity()

	case MsgAuthDone:
		res := msg.data.(authDone)
		m.authing = false
		switch {
		case res.err != nil:
			m.manager.SetNotification(fmt.Sprintf("⚠ Sign-in failed: %v", res.err))
		case res.identity.SignedIn():
			m.manager.SetNotification("✓ Signed in as " + res.identity.DisplayName)
		default:
			m.manager.SetNotification("✓ Signed out")
		}
		m.refresh()
		return m, nil

	case MsgSiteOpened:
		if err, _ := msg.data.(error); err != nil {
			m.manager.SetNotification(fmt.Sprintf("⚠ Could not open site: %v", err))
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	sections := []string{m.renderHeader()}
	if banner := m.manager.Notification(); banner != "" {
		sections = append(sections, m.styles.banner.Render(banner))
	}

	switch m.view {
	case SearchView:
		sections = append(sections, m.renderSearch())
	case NoteView:
		sections = append(sections, m.renderNote())
	case ConfirmView:
		sections = append(sections, m.renderConfirm())
	case UpcomingView:
		sections = append(sections, m.renderUpcoming())
	default:
		sections = append(sections, m.renderList())
	}

	return strings.Join(sections, "\n\n")
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		m.query.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.filter):
		m.manager.SetFilter(m.manager.Filter().Next())
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.sort):
		m.manager.SetSort(m.manager.Sort().Next())
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.group):
		m.manager.SetGroup(m.manager.Group().Next())
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.theme):
		m.manager.ToggleTheme()
		m.applyTheme()
		return m, nil
	case key.Matches(msg, m.keys.dismiss):
		m.manager.SetNotification("")
		return m, nil
	case key.Matches(msg, m.keys.upcoming):
		m.view = UpcomingView
		return m, nil
	case key.Matches(msg, m.keys.auth):
		return m, m.toggleAuth()
	}

	show, ok := m.selected()
	if ok {
		switch {
		case key.Matches(msg, m.keys.toggle):
			m.mutate(m.manager.ToggleWatched(show.ID))
			return m, nil
		case key.Matches(msg, m.keys.remove):
			m.target = show.ID
			m.view = ConfirmView
			return m, nil
		case key.Matches(msg, m.keys.note):
			m.target = show.ID
			m.note.SetValue(show.Notes)
			m.view = NoteView
			return m, m.note.Focus()
		case key.Matches(msg, m.keys.open):
			if show.Site == "" {
				return m, nil
			}
			return m, m.openSite(show.Site)
		}
	}

	var cmd tea.Cmd
	m.shows, cmd = m.shows.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.clearSearch()
		m.view = ListView
		return m, nil
	}

	if m.query.Focused() {
		if msg.String() == "enter" {
			return m, m.search(m.query.Value())
		}
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.search):
		m.query.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.quit) && msg.String() == "q":
		m.clearSearch()
		m.view = ListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if m.adding {
			return m, nil
		}
		if item, ok := m.results.SelectedItem().(hitItem); ok {
			return m, m.add(item.hit)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleNoteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.save):
		m.mutate(m.manager.UpdateNote(m.target, m.note.Value()))
		m.note.Blur()
		m.view = ListView
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.note.Blur()
		m.view = ListView
		return m, nil
	}

	var cmd tea.Cmd
	m.note, cmd = m.note.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		m.mutate(m.manager.Delete(m.target))
		m.view = ListView
	case key.Matches(msg, m.keys.no):
		m.view = ListView
	}
	return m, nil
}

func (m *Model) handleUpcomingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.upcoming), key.Matches(msg, m.keys.quit):
		m.view = ListView
	}
	return m, nil
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ListView:
		m.shows, cmd = m.shows.Update(msg)
	case SearchView:
		if m.query.Focused() {
			m.query, cmd = m.query.Update(msg)
		} else {
			m.results, cmd = m.results.Update(msg)
		}
	case NoteView:
		m.note, cmd = m.note.Update(msg)
	}
	return m, cmd
}

// mutate reports a failed mutation in the banner and re-renders the list.
func (m *Model) mutate(err error) {
	if err != nil {
		m.manager.SetNotification(fmt.Sprintf("⚠ %v", err))
	}
	m.refresh()
}

// refresh rebuilds the show list from the manager's current derived view.
func (m *Model) refresh() {
	m.shows.SetItems(showItems(m.manager.Groups()))
	m.shows.Title = fmt.Sprintf("Tracked Shows (%d) • %s • %s", m.manager.Len(), m.manager.Filter(), m.manager.Sort())
	if g := m.manager.Group(); g != models.GroupNone {
		m.shows.Title += " • by " + string(g)
	}
}

func (m *Model) selected() (models.TrackedShow, bool) {
	item, ok := m.shows.SelectedItem().(showItem)
	if !ok {
		return models.TrackedShow{}, false
	}
	return item.show, true
}

func (m *Model) selectShow(id int) {
	for i, item := range m.shows.Items() {
		if si, ok := item.(showItem); ok && si.show.ID == id {
			m.shows.Select(i)
			return
		}
	}
}

func (m *Model) clearSearch() {
	m.query.Reset()
	m.query.Blur()
	m.searched = ""
	m.results.SetItems(nil)
}

func (m *Model) applyTheme() {
	m.styles = paletteFor(m.manager.Theme())
	m.shows.SetDelegate(m.styles.Delegate())
	m.results.SetDelegate(m.styles.Delegate())
	m.shows.Styles.Title = m.shows.Styles.Title.Background(m.styles.accent)
	m.results.Styles.Title = m.results.Styles.Title.Background(m.styles.accent)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	listHeight := max(height-8, 5)
	m.shows.SetSize(max(width/2, 20), listHeight)
	m.results.SetSize(max(width-4, 20), listHeight-2)
	m.query.Width = max(width-8, 20)
	m.note.SetWidth(max(width-4, 20))
	m.note.SetHeight(max(height/3, 3))
}

func (m *Model) search(raw string) tea.Cmd {
	query := strings.TrimSpace(raw)
	m.searched = query
	if m.catalog == nil {
		m.manager.SetNotification("⚠ Search is unavailable: no catalog configured")
		return nil
	}

	catalog, logger := m.catalog, m.logger
	return func() tea.Msg {
		return searchResultsMsg(query, tasks.Search(m.ctx, catalog, query, logger))
	}
}

func (m *Model) add(hit models.CatalogHit) tea.Cmd {
	m.adding = true
	progress := make(chan tasks.ProgressUpdate, 8)
	m.updates = progress

	run := func() tea.Msg {
		show, err := m.manager.AddFromHit(m.ctx, hit, progress)
		close(progress)
		return showAddedMsg(show, err)
	}

	return tea.Batch(m.spinner.Tick, run, waitForProgress(progress))
}

func waitForProgress(progress <-chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

// sweep runs the episode and season checks once for the session.
func (m *Model) sweep() tea.Cmd {
	if m.sweeper == nil {
		return nil
	}

	tracked := m.manager.Snapshot()
	today := shared.Today(m.now())
	return func() tea.Msg {
		episodes := m.sweeper.Episodes(m.ctx, tracked, today)
		seasons := m.sweeper.Seasons(m.ctx, tracked, today)
		return sweepDoneMsg(len(episodes) + len(seasons))
	}
}

func (m *Model) waitForAlert() tea.Cmd {
	if m.sweeper == nil {
		return nil
	}

	alerts := m.sweeper.Alerts()
	return func() tea.Msg {
		select {
		case alert, ok := <-alerts:
			if !ok {
				return nil
			}
			return alertMsg(alert)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// publishIdentity keeps only the latest identity for the update loop.
func (m *Model) publishIdentity(identity models.Identity) {
	select {
	case <-m.identities:
	default:
	}
	select {
	case m.identities <- identity:
	default:
	}
}

func (m *Model) waitForIdentity() tea.Cmd {
	identities := m.identities
	return func() tea.Msg {
		select {
		case identity := <-identities:
			return identityChangedMsg(identity)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// toggleAuth signs out when signed in and starts the Google sign-in otherwise.
func (m *Model) toggleAuth() tea.Cmd {
	if m.authing {
		return nil
	}

	if m.identity.SignedIn() {
		if m.signOut == nil {
			return nil
		}
		m.authing = true
		signOut := m.signOut
		return func() tea.Msg {
			return authDoneMsg(models.Identity{}, signOut(m.ctx))
		}
	}

	if m.signIn == nil {
		m.manager.SetNotification("⚠ Sign-in is unavailable: set Google credentials in the config file")
		return nil
	}
	m.authing = true
	signIn, say := m.signIn, m.manager.SetNotification
	return func() tea.Msg {
		identity, err := signIn(m.ctx, say)
		return authDoneMsg(identity, err)
	}
}

func (m *Model) openSite(url string) tea.Cmd {
	open := m.openURL
	return func() tea.Msg {
		return siteOpenedMsg(open(url))
	}
}

func (m *Model) renderHeader() string {
	title := m.styles.title.UnsetMarginBottom().Render("📺 tvtrack")
	switch {
	case m.authing:
		title += m.styles.help.Render("  signing in...")
	case m.identity.SignedIn():
		title += m.styles.help.Render("  signed in as " + m.identity.DisplayName)
	default:
		title += m.styles.help.Render("  signed out, press i to sign in")
	}
	return title
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.search, m.keys.toggle, m.keys.note, m.keys.remove, m.keys.filter, m.keys.sort, m.keys.group, m.keys.upcoming, m.keys.auth, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.manager.Len() == 0 {
		empty := m.styles.help.Render("No shows tracked yet. Press / to search the catalog.")
		return fmt.Sprintf("%s\n\n%s", empty, helpView)
	}

	detail := ""
	if show, ok := m.selected(); ok {
		detail = m.styles.card.Render(formatter.Card(show, m.now()))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.shows.View(), "  ", detail)
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}

func (m *Model) renderSearch() string {
	addKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search/add"))
	helpKeys := []key.Binding{addKey, m.keys.search, m.keys.back}
	helpView := m.help.ShortHelpView(helpKeys)

	status := ""
	switch {
	case m.adding:
		status = fmt.Sprintf("%s %s", m.spinner.View(), m.progress.Message)
	case m.searched != "" && len(m.results.Items()) == 0 && !m.query.Focused():
		status = m.styles.warn.Render("No results")
	}

	parts := []string{m.query.View()}
	if status != "" {
		parts = append(parts, status)
	}
	if len(m.results.Items()) > 0 {
		parts = append(parts, m.results.View())
	}
	parts = append(parts, helpView)
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderUpcoming() string {
	upcoming := m.manager.Upcoming()
	title := m.styles.title.Render(fmt.Sprintf("Upcoming Episodes (%d)", len(upcoming)))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back})

	if len(upcoming) == 0 {
		return fmt.Sprintf("%s\n%s\n\n%s", title, m.styles.help.Render("No upcoming episodes"), helpView)
	}

	lines := make([]string, 0, len(upcoming))
	for _, show := range upcoming {
		ep := show.NextEpisode
		lines = append(lines, fmt.Sprintf("%s %s  %s",
			m.styles.ok.Render(show.Title),
			m.styles.help.Render(fmt.Sprintf("S%02dE%02d", ep.Season, ep.Number)),
			m.styles.text.Render(formatter.NextEpisode(show, m.now()))))
	}
	return fmt.Sprintf("%s\n%s\n\n%s", title, strings.Join(lines, "\n"), helpView)
}

func (m *Model) renderNote() string {
	show, _ := m.manager.Find(m.target)
	title := m.styles.title.Render(fmt.Sprintf("Notes for '%s'", show.Title))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.save, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.note.View(), helpView)
}

func (m *Model) renderConfirm() string {
	show, _ := m.manager.Find(m.target)
	title := m.styles.warn.Render(fmt.Sprintf("Stop tracking '%s'?", show.Title))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n\n%s", title, helpView)
}
