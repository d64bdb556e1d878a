package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/notify"
	"github.com/desertthunder/tvtrack/internal/repositories"
	"github.com/desertthunder/tvtrack/internal/services"
	"github.com/desertthunder/tvtrack/internal/shared"
	"github.com/desertthunder/tvtrack/internal/tasks"
	"github.com/urfave/cli/v3"
)

const (
	defaultConfigPath  = "config.toml"
	defaultAuthTimeout = 2 * time.Minute
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, manager and sweeper are opened lazily by the commands that need them.
type Runner struct {
	config      *shared.Config
	configPath  string
	catalog     services.Catalog
	identity    *services.GoogleIdentity
	remote      services.RemoteStore
	notifier    notify.Notifier
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	now         func() time.Time
	openURL     func(url string) error
	authTimeout time.Duration
	noNotify    bool

	outputMu sync.Mutex
	db       *sql.DB
	ownsDB   bool
	manager  *tasks.Manager
	sweeper  *tasks.Sweeper
	sessions *repositories.SessionRepository
	prefs    *repositories.PreferenceRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.Catalog
	Identity   *services.GoogleIdentity
	Remote     services.RemoteStore // replaces the Firestore store built from the session
	Notifier   notify.Notifier      // replaces the desktop notifier
	DB         *sql.DB              // already migrated; opened from config when nil
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Now        func() time.Time
	OpenURL    func(url string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = defaultConfigPath
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		catalog:     opts.Catalog,
		identity:    opts.Identity,
		remote:      opts.Remote,
		notifier:    opts.Notifier,
		db:          opts.DB,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		now:         opts.Now,
		openURL:     opts.OpenURL,
		authTimeout: defaultAuthTimeout,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, searchCommand, addCommand, showsCommand, authCommand, syncCommand,
		notifyCommand, watchCommand, themeCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger. Must be called before the manager is opened to reach its components.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Configure loads the configuration and builds the catalog and identity services.
//
// Used as the root command's Before hook. A config injected through [RunnerOpts] is kept
// unless --config is passed explicitly.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	r.noNotify = cmd.Bool("no-notify")

	if r.config == nil || cmd.IsSet("config") {
		if path := cmd.String("config"); path != "" {
			r.configPath = path
		}
		config, err := shared.LoadConfigOrDefault(r.configPath)
		if err != nil {
			return ctx, err
		}
		shared.ApplyEnv(config)
		r.config = config
	}

	if r.catalog == nil {
		r.catalog = services.NewTVMazeService(r.config.Catalog, r.httpClient)
	}

	if r.identity == nil {
		identity, err := services.NewGoogleIdentity(r.config.Credentials.Google.Map())
		if err != nil {
			r.logger.Debug("google sign-in unavailable", "error", err)
		} else {
			r.identity = identity
		}
	}

	return ctx, nil
}

// openStore opens the database and the preference and session repositories.
func (r *Runner) openStore() error {
	if r.prefs != nil {
		return nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open database (run 'tvtrack setup database' first?): %w", err)
		}
		r.db, r.ownsDB = db, true
	}

	r.prefs = repositories.NewPreferenceRepository(r.db)
	r.sessions = repositories.NewSessionRepository(r.db)
	return nil
}

// open builds the manager over local storage and restores the stored session.
func (r *Runner) open(ctx context.Context) (*tasks.Manager, error) {
	if r.manager != nil {
		return r.manager, nil
	}
	if err := r.openStore(); err != nil {
		return nil, err
	}

	r.sweeper = tasks.NewSweeper(tasks.SweeperOpts{
		Catalog:  r.catalog,
		Notifier: r.desktopNotifier(ctx),
		Logger:   r.logger,
	})

	manager, err := tasks.NewManager(tasks.ManagerOpts{
		Catalog:     r.catalog,
		Store:       repositories.NewShowRepository(r.db),
		Preferences: r.prefs,
		Sweeper:     r.sweeper,
		Logger:      r.logger,
		Locale:      r.config.Display.Locale,
		Now:         r.now,
	})
	if err != nil {
		return nil, err
	}
	r.manager = manager

	r.restoreSession(ctx)
	return manager, nil
}

// desktopNotifier returns the notifier used for episode alerts, asking for permission once.
func (r *Runner) desktopNotifier(ctx context.Context) notify.Notifier {
	if r.noNotify || !r.config.Notify.Enabled {
		return notify.Disabled{}
	}

	n := r.notifier
	if n == nil {
		n = notify.NewDesktopNotifier(r.logger)
	}

	granted, err := notify.RequestPermission(ctx, n, r.prefs)
	if err != nil {
		r.logger.Warn("failed to store notification permission", "error", err)
	}
	if !granted {
		r.logger.Debug("desktop notifications disabled")
		return notify.Disabled{}
	}
	return n
}

// restoreSession hands the stored session, or the signed-out identity, to the manager.
func (r *Runner) restoreSession(ctx context.Context) {
	session, err := r.sessions.Get()
	if err != nil {
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			r.logger.Warn("failed to load session", "error", err)
		}
		r.manager.SetIdentity(ctx, models.Identity{}, nil)
		return
	}

	remote, err := r.remoteStore(ctx, session.Token)
	if err != nil {
		r.logger.Warn("remote store unavailable", "error", err)
	}

	if err := r.manager.SetIdentity(ctx, session.Identity, remote); err != nil {
		if errors.Is(err, shared.ErrServiceUnavailable) {
			r.logger.Debug("remote store not configured", "uid", session.Identity.UID)
			return
		}
		r.logger.Warn("failed to load remote shows", "error", err)
	}
}

// Close waits for pending persistence and closes the database it opened. Used as the root command's After hook.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if r.manager != nil {
		r.manager.Wait()
	}
	if r.db == nil || !r.ownsDB {
		return nil
	}

	err := r.db.Close()
	r.db, r.ownsDB = nil, false
	r.manager, r.prefs, r.sessions = nil, nil, nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	r.outputMu.Lock()
	defer r.outputMu.Unlock()

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	r.outputMu.Lock()
	defer r.outputMu.Unlock()
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain("\n%s\n", fmt.Sprintf(format, args...))
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// relay prints progress updates until stop is called.
func (r *Runner) relay() (progress chan tasks.ProgressUpdate, stop func()) {
	progress = make(chan tasks.ProgressUpdate, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("→ %s\n", update.Message)
		}
	}()
	return progress, func() {
		close(progress)
		<-done
	}
}
