package tasks

import (
	"cmp"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvtrack/internal/shared"
	"github.com/go-co-op/gocron/v2"
)

// TaskFunc is the function signature for scheduled tasks.
type TaskFunc func(ctx context.Context) error

// TaskConfig contains configuration for a scheduled task.
type TaskConfig struct {
	ID         string
	Name       string
	Cron       string // standard five-field cron expression
	Func       TaskFunc
	RunOnStart bool
}

// TaskInfo describes a registered task.
type TaskInfo struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Cron    string     `json:"cron"`
	LastRun *time.Time `json:"lastRun,omitempty"`
	NextRun *time.Time `json:"nextRun,omitempty"`
	Running bool       `json:"running"`
}

type taskEntry struct {
	config  TaskConfig
	job     gocron.Job
	lastRun *time.Time
	running bool
}

// Scheduler runs sweeps on cron schedules for watch mode.
type Scheduler struct {
	gocron gocron.Scheduler
	logger *log.Logger
	ctx    context.Context
	tasks  map[string]*taskEntry
	order  []string
	wg     sync.WaitGroup
	mu     sync.RWMutex
}

// NewScheduler creates a scheduler whose tasks run with ctx.
func NewScheduler(ctx context.Context, logger *log.Logger) (*Scheduler, error) {
	gs, err := gocron.NewScheduler(gocron.WithLocation(time.Local))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Scheduler{
		gocron: gs,
		logger: shared.WithLogger(logger, "component", "scheduler"),
		ctx:    ctx,
		tasks:  make(map[string]*taskEntry),
	}, nil
}

// Register adds a task. Invalid cron expressions wrap [shared.ErrInvalidConfig].
func (s *Scheduler) Register(config TaskConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[config.ID]; exists {
		return fmt.Errorf("%w: task %q already registered", shared.ErrInvalidArgument, config.ID)
	}

	job, err := s.gocron.NewJob(
		gocron.CronJob(config.Cron, false),
		gocron.NewTask(func() { s.execute(config.ID) }),
		gocron.WithName(cmp.Or(config.Name, config.ID)),
		gocron.WithTags(config.ID),
	)
	if err != nil {
		return fmt.Errorf("%w: task %q: %v", shared.ErrInvalidConfig, config.ID, err)
	}

	s.tasks[config.ID] = &taskEntry{config: config, job: job}
	s.order = append(s.order, config.ID)
	s.logger.Info("registered task", "id", config.ID, "cron", config.Cron, "runOnStart", config.RunOnStart)
	return nil
}

func (s *Scheduler) execute(id string) {
	s.mu.Lock()
	entry, exists := s.tasks[id]
	if !exists || entry.running {
		s.mu.Unlock()
		return
	}
	entry.running = true
	s.mu.Unlock()

	start := time.Now()
	s.logger.Debug("starting task", "id", id)
	err := entry.config.Func(s.ctx)

	s.mu.Lock()
	entry.running = false
	entry.lastRun = &start
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("task failed", "id", id, "duration", time.Since(start), "error", err)
		return
	}
	s.logger.Info("task completed", "id", id, "duration", time.Since(start))
}

// Start starts the cron loop and runs tasks configured with RunOnStart.
func (s *Scheduler) Start() {
	s.gocron.Start()

	s.mu.RLock()
	var startup []string
	for _, id := range s.order {
		if s.tasks[id].config.RunOnStart {
			startup = append(startup, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range startup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.execute(id)
		}()
	}
}

// Stop shuts the cron loop down and waits for startup runs.
func (s *Scheduler) Stop() error {
	err := s.gocron.Shutdown()
	s.wg.Wait()
	return err
}

// RunNow runs the task synchronously.
func (s *Scheduler) RunNow(id string) error {
	s.mu.RLock()
	_, exists := s.tasks[id]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: task %q", shared.ErrNotFound, id)
	}
	s.execute(id)
	return nil
}

// Tasks describes the registered tasks in registration order.
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]TaskInfo, 0, len(s.order))
	for _, id := range s.order {
		entry := s.tasks[id]
		info := TaskInfo{
			ID:      id,
			Name:    cmp.Or(entry.config.Name, id),
			Cron:    entry.config.Cron,
			LastRun: entry.lastRun,
			Running: entry.running,
		}
		if next, err := entry.job.NextRun(); err == nil && !next.IsZero() {
			info.NextRun = &next
		}
		infos = append(infos, info)
	}
	return infos
}

// WatchTasks returns the episode and season sweeps used by watch mode.
//
// Both run once at start and then on cron, so a long-running watch process rechecks seasons daily.
func WatchTasks(m *Manager, sweeper *Sweeper, cron string) []TaskConfig {
	return []TaskConfig{
		{
			ID:         "episodes",
			Name:       "Episode sweep",
			Cron:       cron,
			RunOnStart: true,
			Func: func(ctx context.Context) error {
				sweeper.Episodes(ctx, m.Snapshot(), shared.Today(m.now()))
				return nil
			},
		},
		{
			ID:         "seasons",
			Name:       "Season sweep",
			Cron:       cron,
			RunOnStart: true,
			Func: func(ctx context.Context) error {
				sweeper.Seasons(ctx, m.Snapshot(), shared.Today(m.now()))
				return nil
			},
		},
	}
}
