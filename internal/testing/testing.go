// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/tvtrack/internal/models"
)

// MockRemote is an in-memory test double for [services.RemoteStore]
type MockRemote struct {
	mu       sync.Mutex
	docs     map[string][]models.TrackedShow
	Writes   int
	ReadErr  error
	WriteErr error
}

func NewMockRemote() *MockRemote {
	return &MockRemote{docs: map[string][]models.TrackedShow{}}
}

// Seed stores shows for uid as if another device had written them.
func (m *MockRemote) Seed(uid string, shows []models.TrackedShow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[uid] = cloneShows(shows)
}

func (m *MockRemote) Read(ctx context.Context, uid string) ([]models.TrackedShow, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, false, m.ReadErr
	}
	shows, ok := m.docs[uid]
	if !ok {
		return nil, false, nil
	}
	return cloneShows(shows), true, nil
}

func (m *MockRemote) Write(ctx context.Context, uid string, shows []models.TrackedShow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Writes++
	m.docs[uid] = cloneShows(shows)
	return nil
}

// Stored returns what was last written for uid.
func (m *MockRemote) Stored(uid string) ([]models.TrackedShow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	shows, ok := m.docs[uid]
	return cloneShows(shows), ok
}

func cloneShows(shows []models.TrackedShow) []models.TrackedShow {
	if shows == nil {
		return nil
	}
	out := make([]models.TrackedShow, len(shows))
	for i, s := range shows {
		out[i] = s.Clone()
	}
	return out
}

// Notification is a desktop notification captured by [MockNotifier]
type Notification struct {
	Title string
	Body  string
	Icon  string
}

// MockNotifier is a test double for [notify.Notifier]
type MockNotifier struct {
	mu      sync.Mutex
	Sent    []Notification
	Denied  bool
	SendErr error
}

func (m *MockNotifier) Permission(ctx context.Context) bool {
	return !m.Denied
}

func (m *MockNotifier) Notify(ctx context.Context, title, body, icon string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, Notification{Title: title, Body: body, Icon: icon})
	return nil
}

// Notifications returns a copy of everything sent so far.
func (m *MockNotifier) Notifications() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.Sent...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// SampleShows returns a small collection covering watched, unrated and upcoming entries.
func SampleShows() []models.TrackedShow {
	return []models.TrackedShow{
		{
			ID: 169, Title: "Breaking Bad", Rating: models.NewRating(9.2), Genres: []string{"Drama", "Crime"},
			Status: "Ended", Premiered: "2008", SeasonCount: 5, Watched: true,
		},
		{
			ID: 82, Title: "Game of Thrones", Rating: models.NewRating(8.9), Genres: []string{"Drama", "Fantasy"},
			Status: "Ended", Premiered: "2011", SeasonCount: 8,
		},
		{
			ID: 1371, Title: "Westworld", Rating: models.Rating{}, Genres: []string{},
			Status: "Running", Premiered: "2016", SeasonCount: 4,
			NextEpisode: &models.EpisodeSnapshot{ID: 900, Name: "Reboot", Season: 5, Number: 1, Airdate: "2099-01-01"},
		},
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
