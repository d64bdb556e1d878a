package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/services"
	"github.com/desertthunder/tvtrack/internal/shared"
)

type mockCatalog struct {
	mu          sync.Mutex
	hits        []models.CatalogHit
	shows       map[string]*services.CatalogShow
	seasons     map[int][]services.CatalogSeason
	episodes    map[int][]services.CatalogEpisode
	searchErr   error
	seasonsErr  error
	episodesErr map[int]error
	calls       map[string]int
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		shows:       map[string]*services.CatalogShow{},
		seasons:     map[int][]services.CatalogSeason{},
		episodes:    map[int][]services.CatalogEpisode{},
		episodesErr: map[int]error{},
		calls:       map[string]int{},
	}
}

func (m *mockCatalog) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockCatalog) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

func (m *mockCatalog) Search(ctx context.Context, query string) ([]models.CatalogHit, error) {
	m.record("search")
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

func (m *mockCatalog) SingleSearch(ctx context.Context, title string) (*services.CatalogShow, error) {
	m.record("singlesearch")
	show, ok := m.shows[title]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, title)
	}
	return show, nil
}

func (m *mockCatalog) Seasons(ctx context.Context, showID int) ([]services.CatalogSeason, error) {
	m.record("seasons")
	if m.seasonsErr != nil {
		return nil, m.seasonsErr
	}
	return m.seasons[showID], nil
}

func (m *mockCatalog) Episodes(ctx context.Context, showID int) ([]services.CatalogEpisode, error) {
	m.record("episodes")
	if err := m.episodesErr[showID]; err != nil {
		return nil, err
	}
	return m.episodes[showID], nil
}

type memoryStore struct {
	mu      sync.Mutex
	shows   []models.TrackedShow
	saves   int
	listErr error
	saveErr error
}

func (s *memoryStore) Save(shows []models.TrackedShow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	s.saves++
	s.shows = shows
	return s.saves, nil
}

func (s *memoryStore) List() ([]models.TrackedShow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.shows, nil
}

func (s *memoryStore) snapshot() ([]models.TrackedShow, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shows, s.saves
}

type memoryPrefs struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryPrefs(kv ...string) *memoryPrefs {
	p := &memoryPrefs{values: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		p.values[kv[i]] = kv[i+1]
	}
	return p
}

func (p *memoryPrefs) Get(key, fallback string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.values[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (p *memoryPrefs) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}

func (p *memoryPrefs) get(key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values[key]
}
