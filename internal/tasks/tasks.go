// package tasks implements the show list manager and the catalog, sync and notification operations around it.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/repositories"
	"github.com/desertthunder/tvtrack/internal/services"
	"github.com/desertthunder/tvtrack/internal/shared"
	"github.com/desertthunder/tvtrack/internal/shows"
)

// ShowStore persists full snapshots of the collection. Implemented by [repositories.ShowRepository].
type ShowStore interface {
	Save(shows []models.TrackedShow) (int, error)
	List() ([]models.TrackedShow, error)
}

// PreferenceStore persists session selectors. Implemented by [repositories.PreferenceRepository].
type PreferenceStore interface {
	Get(key, fallback string) (string, error)
	Set(key, value string) error
}

// Change is delivered to observers after every successful mutation.
type Change struct {
	Generation uint64               // increases with every mutation
	Shows      []models.TrackedShow // snapshot in canonical order
}

// Observer is notified of collection changes on its own goroutine.
type Observer func(ctx context.Context, change Change)

// IdentityObserver is notified synchronously when the signed-in identity changes.
type IdentityObserver func(identity models.Identity)

// ManagerOpts configures a [Manager]. Every collaborator is optional.
type ManagerOpts struct {
	Catalog     services.Catalog
	Store       ShowStore
	Preferences PreferenceStore
	Sweeper     *Sweeper // runs the episode sweep after every change when set
	Logger      *log.Logger
	Locale      string
	Now         func() time.Time
}

// Manager owns the canonical collection and session state.
//
// Mutations apply synchronously to the in-memory list; persistence and sweeps run afterwards on observer goroutines.
type Manager struct {
	mu           sync.RWMutex
	list         *shows.List
	generation   uint64
	identity     models.Identity
	theme        models.Theme
	filter       models.Filter
	sort         models.SortMode
	group        models.GroupBy
	notification string

	remote services.RemoteStore

	observers         []Observer
	identityObservers []IdentityObserver
	wg                sync.WaitGroup

	// last persisted generations; older snapshots are skipped
	localMu    sync.Mutex
	localGen   uint64
	remoteMu   sync.Mutex
	remoteGen  uint64
	catalog    services.Catalog
	store      ShowStore
	prefs      PreferenceStore
	sweeper    *Sweeper
	sorter     shows.Sorter
	logger     *log.Logger
	now        func() time.Time
	background context.Context
}

// NewManager loads the stored collection and selectors and registers the built-in observers.
func NewManager(opts ManagerOpts) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := &Manager{
		list:       shows.NewList(nil),
		theme:      models.ThemeDark,
		filter:     models.FilterAll,
		sort:       models.SortAlphabetical,
		group:      models.GroupNone,
		catalog:    opts.Catalog,
		store:      opts.Store,
		prefs:      opts.Preferences,
		sweeper:    opts.Sweeper,
		sorter:     shows.NewSorter(opts.Locale),
		logger:     shared.WithLogger(logger, "component", "manager"),
		now:        now,
		background: context.Background(),
	}

	if m.store != nil {
		stored, err := m.store.List()
		if err != nil {
			return nil, fmt.Errorf("failed to load shows: %w", err)
		}
		m.list.Replace(stored)
		m.OnChange(m.persistLocal)
	}

	m.loadPreferences()
	m.OnChange(m.persistRemote)

	if m.sweeper != nil {
		m.sweeper.OnAlert(func(a Alert) { m.SetNotification(a.Message) })
		m.OnChange(m.sweepEpisodes)
	}

	return m, nil
}

func (m *Manager) loadPreferences() {
	if m.prefs == nil {
		return
	}

	get := func(key, fallback string) string {
		v, err := m.prefs.Get(key, fallback)
		if err != nil {
			m.logger.Warn("failed to read preference", "key", key, "error", err)
			return fallback
		}
		return v
	}

	if t, err := models.ParseTheme(get(repositories.PrefTheme, string(models.ThemeDark))); err == nil {
		m.theme = t
	}
	if f, err := models.ParseFilter(get(repositories.PrefFilter, string(models.FilterAll))); err == nil {
		m.filter = f
	}
	if s, err := models.ParseSortMode(get(repositories.PrefSort, string(models.SortAlphabetical))); err == nil {
		m.sort = s
	}
	if g, err := models.ParseGroupBy(get(repositories.PrefGroup, string(models.GroupNone))); err == nil {
		m.group = g
	}
}

// OnChange registers an observer called after every successful mutation.
func (m *Manager) OnChange(fn Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// OnIdentityChange registers an observer called on sign-in and sign-out.
//
// fn is called right away with the current identity, so late observers still see the startup state.
func (m *Manager) OnIdentityChange(fn IdentityObserver) {
	m.mu.Lock()
	m.identityObservers = append(m.identityObservers, fn)
	current := m.identity
	m.mu.Unlock()

	fn(current)
}

// Wait blocks until every in-flight observer has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// mutate applies fn under the write lock and notifies observers when it reports a change.
func (m *Manager) mutate(fn func(l *shows.List) bool) bool {
	m.mu.Lock()
	if !fn(m.list) {
		m.mu.Unlock()
		return false
	}
	m.generation++
	change := Change{Generation: m.generation, Shows: m.list.Snapshot()}
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	for _, observer := range observers {
		m.wg.Add(1)
		go func(observer Observer) {
			defer m.wg.Done()
			observer(m.background, change)
		}(observer)
	}
	return true
}

// Add tracks show. Returns [shared.ErrDuplicate] when a show with the same title is tracked.
func (m *Manager) Add(show models.TrackedShow) error {
	if !m.mutate(func(l *shows.List) bool { return l.Add(show) }) {
		return fmt.Errorf("%w: %s", shared.ErrDuplicate, show.Title)
	}
	m.logger.Info("show added", "id", show.ID, "title", show.Title)
	return nil
}

// ToggleWatched flips the watched flag of the show with id.
func (m *Manager) ToggleWatched(id int) error {
	if !m.mutate(func(l *shows.List) bool { return l.ToggleWatched(id) }) {
		return fmt.Errorf("%w: show #%d is not tracked", shared.ErrNotFound, id)
	}
	return nil
}

// Delete stops tracking the show with id.
func (m *Manager) Delete(id int) error {
	if !m.mutate(func(l *shows.List) bool { return l.Delete(id) }) {
		return fmt.Errorf("%w: show #%d is not tracked", shared.ErrNotFound, id)
	}
	m.logger.Info("show deleted", "id", id)
	return nil
}

// UpdateNote replaces the notes of the show with id.
func (m *Manager) UpdateNote(id int, text string) error {
	if !m.mutate(func(l *shows.List) bool { return l.UpdateNote(id, text) }) {
		return fmt.Errorf("%w: show #%d is not tracked", shared.ErrNotFound, id)
	}
	return nil
}

// Replace swaps the whole collection, as done when a remote snapshot is loaded.
func (m *Manager) Replace(tracked []models.TrackedShow) {
	m.mutate(func(l *shows.List) bool {
		l.Replace(tracked)
		return true
	})
}

// Find returns the tracked show with id.
func (m *Manager) Find(id int) (models.TrackedShow, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.list.Find(id)
}

// Has reports whether a show titled exactly title is tracked.
func (m *Manager) Has(title string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.list.HasTitle(title)
}

// Snapshot returns a copy of the collection in canonical order.
func (m *Manager) Snapshot() []models.TrackedShow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.list.Snapshot()
}

// Len returns the number of tracked shows.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.list.Len()
}

// View returns the collection filtered and sorted by the session selectors.
func (m *Manager) View() []models.TrackedShow {
	m.mu.RLock()
	snapshot, f, s := m.list.Snapshot(), m.filter, m.sort
	m.mu.RUnlock()
	return m.sorter.View(snapshot, f, s)
}

// Groups returns [Manager.View] bucketed by the session grouping.
func (m *Manager) Groups() []shows.Group {
	m.mu.RLock()
	g := m.group
	m.mu.RUnlock()
	return shows.Grouped(m.View(), g)
}

// Upcoming returns tracked shows with a next episode, soonest first.
func (m *Manager) Upcoming() []models.TrackedShow {
	return shows.Upcoming(m.Snapshot())
}

// Identity returns the signed-in identity; the zero value means signed out.
func (m *Manager) Identity() models.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity
}

// Theme returns the active theme.
func (m *Manager) Theme() models.Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.theme
}

// Filter returns the active filter.
func (m *Manager) Filter() models.Filter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filter
}

// Sort returns the active sort mode.
func (m *Manager) Sort() models.SortMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sort
}

// Group returns the active grouping.
func (m *Manager) Group() models.GroupBy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.group
}

// SetTheme sets and persists the theme.
func (m *Manager) SetTheme(t models.Theme) {
	m.mu.Lock()
	m.theme = t
	m.mu.Unlock()
	m.savePreference(repositories.PrefTheme, string(t))
}

// ToggleTheme switches between dark and light and returns the new theme.
func (m *Manager) ToggleTheme() models.Theme {
	m.mu.Lock()
	m.theme = m.theme.Toggle()
	t := m.theme
	m.mu.Unlock()
	m.savePreference(repositories.PrefTheme, string(t))
	return t
}

// SetFilter sets and persists the filter.
func (m *Manager) SetFilter(f models.Filter) {
	m.mu.Lock()
	m.filter = f
	m.mu.Unlock()
	m.savePreference(repositories.PrefFilter, string(f))
}

// SetSort sets and persists the sort mode.
func (m *Manager) SetSort(s models.SortMode) {
	m.mu.Lock()
	m.sort = s
	m.mu.Unlock()
	m.savePreference(repositories.PrefSort, string(s))
}

// SetGroup sets and persists the grouping.
func (m *Manager) SetGroup(g models.GroupBy) {
	m.mu.Lock()
	m.group = g
	m.mu.Unlock()
	m.savePreference(repositories.PrefGroup, string(g))
}

// Notification returns the active notification message, or "".
func (m *Manager) Notification() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.notification
}

// SetNotification replaces the active notification. There is no queue; the latest message wins.
func (m *Manager) SetNotification(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notification = message
}

func (m *Manager) savePreference(key, value string) {
	if m.prefs == nil {
		return
	}
	if err := m.prefs.Set(key, value); err != nil {
		m.logger.Error("failed to save preference", "key", key, "error", err)
	}
}

// persistLocal writes change to the local store unless a newer snapshot was already written.
func (m *Manager) persistLocal(ctx context.Context, change Change) {
	m.localMu.Lock()
	defer m.localMu.Unlock()

	if change.Generation <= m.localGen {
		return
	}

	revision, err := m.store.Save(change.Shows)
	if err != nil {
		m.logger.Error("failed to save shows locally", "error", err)
		return
	}
	m.localGen = change.Generation
	m.logger.Debug("saved shows locally", "count", len(change.Shows), "revision", revision)
}

// persistRemote mirrors change to the remote store while signed in.
func (m *Manager) persistRemote(ctx context.Context, change Change) {
	m.mu.RLock()
	identity, remote := m.identity, m.remote
	m.mu.RUnlock()

	if !identity.SignedIn() || remote == nil {
		return
	}

	m.remoteMu.Lock()
	defer m.remoteMu.Unlock()

	if change.Generation <= m.remoteGen {
		return
	}

	if err := remote.Write(ctx, identity.UID, change.Shows); err != nil {
		m.logger.Error("failed to save shows remotely", "uid", identity.UID, "error", err)
		return
	}
	m.remoteGen = change.Generation
	m.logger.Debug("saved shows remotely", "uid", identity.UID, "count", len(change.Shows))
}

func (m *Manager) sweepEpisodes(ctx context.Context, change Change) {
	m.sweeper.Episodes(ctx, change.Shows, shared.Today(m.now()))
}
