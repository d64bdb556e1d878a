package tasks

import (
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/notify"
	"github.com/desertthunder/tvtrack/internal/services"
	"github.com/desertthunder/tvtrack/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSweepWorkers = 4
	defaultAlertBuffer  = 16
)

// SweeperOpts configures a [Sweeper].
type SweeperOpts struct {
	Catalog  services.Catalog
	Notifier notify.Notifier // desktop surface for episode alerts; nil disables it
	Logger   *log.Logger
	Workers  int // concurrent catalog lookups
	Buffer   int // capacity of the alert channel
}

// Sweeper checks tracked shows against the catalog for episodes airing today and upcoming seasons.
//
// Each show is looked up independently; a failed lookup is logged and never affects the others.
type Sweeper struct {
	catalog  services.Catalog
	notifier notify.Notifier
	logger   *log.Logger
	workers  int
	alerts   chan Alert

	mu       sync.RWMutex
	handlers []func(Alert)
}

// NewSweeper creates a sweeper. Alerts are published on [Sweeper.Alerts] and to [Sweeper.OnAlert] handlers.
func NewSweeper(opts SweeperOpts) *Sweeper {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultSweepWorkers
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = defaultAlertBuffer
	}

	return &Sweeper{
		catalog:  opts.Catalog,
		notifier: opts.Notifier,
		logger:   shared.WithLogger(logger, "component", "sweeper"),
		workers:  workers,
		alerts:   make(chan Alert, buffer),
	}
}

// Alerts returns the alert channel. Alerts are dropped when nobody drains it.
func (s *Sweeper) Alerts() <-chan Alert {
	return s.alerts
}

// OnAlert registers fn to be called for every alert, on the goroutine that found it.
func (s *Sweeper) OnAlert(fn func(Alert)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, fn)
}

// Episodes reports shows with an episode airing on today (YYYY-MM-DD).
//
// Matching episodes are also sent to the desktop notifier.
func (s *Sweeper) Episodes(ctx context.Context, tracked []models.TrackedShow, today string) []Alert {
	return s.sweep(ctx, tracked, func(ctx context.Context, show models.TrackedShow) (*Alert, error) {
		episodes, err := s.catalog.Episodes(ctx, show.ID)
		if err != nil {
			return nil, err
		}
		for _, ep := range episodes {
			if ep.Airdate == today {
				alert := episodeAlert(show, ep.Name, today)
				s.desktop(ctx, alert)
				return &alert, nil
			}
		}
		return nil, nil
	})
}

// Seasons reports shows whose next season premieres after today (YYYY-MM-DD).
func (s *Sweeper) Seasons(ctx context.Context, tracked []models.TrackedShow, today string) []Alert {
	return s.sweep(ctx, tracked, func(ctx context.Context, show models.TrackedShow) (*Alert, error) {
		seasons, err := s.catalog.Seasons(ctx, show.ID)
		if err != nil {
			return nil, err
		}
		for _, season := range seasons {
			if season.PremiereDate != "" && season.PremiereDate > today {
				alert := seasonAlert(show, season.Number, season.PremiereDate)
				return &alert, nil
			}
		}
		return nil, nil
	})
}

// sweep runs check for every show with a catalog id and returns the alerts in collection order.
func (s *Sweeper) sweep(ctx context.Context, tracked []models.TrackedShow, check func(context.Context, models.TrackedShow) (*Alert, error)) []Alert {
	if s.catalog == nil {
		return nil
	}

	found := make([]*Alert, len(tracked))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, show := range tracked {
		if show.ID == 0 {
			continue
		}
		g.Go(func() error {
			alert, err := check(ctx, show)
			if err != nil {
				s.logger.Warn("sweep lookup failed", "id", show.ID, "title", show.Title, "error", err)
				return nil
			}
			if alert != nil {
				found[i] = alert
				s.publish(*alert)
			}
			return nil
		})
	}
	g.Wait()

	alerts := make([]Alert, 0, len(found))
	for _, a := range found {
		if a != nil {
			alerts = append(alerts, *a)
		}
	}
	return alerts
}

// publish sends alert through the channel without blocking and calls the handlers.
func (s *Sweeper) publish(alert Alert) {
	select {
	case s.alerts <- alert:
	default:
	}

	s.mu.RLock()
	handlers := slices.Clone(s.handlers)
	s.mu.RUnlock()

	for _, fn := range handlers {
		fn(alert)
	}
}

func (s *Sweeper) desktop(ctx context.Context, alert Alert) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, EpisodeAlertTitle, alert.Message, alert.Image); err != nil {
		s.logger.Warn("desktop notification failed", "title", alert.Title, "error", err)
	}
}
