package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlog/internal/repositories"
	"github.com/desertthunder/watchlog/internal/services"
	"github.com/desertthunder/watchlog/internal/session"
	"github.com/desertthunder/watchlog/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader

	db       *sql.DB
	store    session.Store
	prefs    *repositories.PreferenceRepository
	session  *session.Manager
	nav      *session.Navigator
	client   *services.Client
	auth     *services.AuthService
	catalog  services.Catalog
	uploader *services.ImageUploader

	injected services.Catalog
}

// RunnerOpts contains configuration options for creating a Runner.
//
// When Store is set the runner is wired immediately and never opens the session database.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Store      session.Store
	Catalog    services.Catalog
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		injected:   opts.Catalog,
	}
	if opts.Store != nil {
		if err := r.wire(opts.Store); err != nil {
			r.logger.Error("failed to restore session", "err", err)
		}
	}
	return r
}

// Before resolves configuration and opens the session database. Runners
// created with a store are already wired and skip this step.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.session != nil {
		return ctx, nil
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	config, err := shared.ResolveConfig(r.configPath, cmd.String("env"))
	if err != nil {
		return ctx, err
	}
	if url := cmd.String("api-url"); url != "" {
		config.API.BaseURL = url
	}
	r.config = config

	if err := shared.SetLogLevel(r.logger, config.Log.Level); err != nil {
		r.logger.Warn("ignoring log level", "err", err)
	}
	if cmd.Bool("verbose") {
		r.logger.SetLevel(log.DebugLevel)
	}

	db, err := shared.OpenSessionDatabase(config.Session)
	if err != nil {
		return ctx, fmt.Errorf("failed to open session database: %w", err)
	}
	r.db = db
	r.prefs = repositories.NewPreferenceRepository(db)

	return ctx, r.wire(repositories.NewTokenRepository(db))
}

// After closes the session database.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// wire builds the session, client and services on top of store.
func (r *Runner) wire(store session.Store) error {
	mgr, err := session.NewManager(store)
	if err != nil {
		return err
	}

	r.store = store
	r.session = mgr
	r.nav = session.NewNavigator(mgr, session.RouteHome)
	r.client = services.NewClient(services.ClientOpts{
		BaseURL:    r.config.API.BaseURL,
		HTTPClient: r.httpClient,
		Session:    mgr,
		Navigator:  r.nav,
		Logger:     r.logger,
	})
	r.auth = services.NewAuthService(r.client)
	r.catalog = r.injected
	if r.catalog == nil {
		r.catalog = services.NewCatalogService(r.client)
	}

	r.uploader = nil
	if r.config.Upload.Enabled() {
		up, err := services.NewImageUploader(services.UploaderOpts{
			Endpoint:     r.config.Upload.Endpoint,
			CloudName:    r.config.Upload.CloudName,
			UploadPreset: r.config.Upload.UploadPreset,
			HTTPClient:   r.httpClient,
			Logger:       r.logger,
		})
		if err != nil {
			r.logger.Warn("image uploads disabled", "err", err)
		} else {
			r.uploader = up
		}
	}
	return nil
}

// SetLogger replaces the logger and rebuilds the services that carry it.
func (r *Runner) SetLogger(logger *log.Logger) error {
	r.logger = logger
	if r.store == nil {
		return nil
	}
	return r.wire(r.store)
}

// requireSession moves to the home route and refuses guarded commands when the guard sends it to login.
func (r *Runner) requireSession() error {
	if r.nav == nil || r.nav.Navigate(session.RouteHome) == session.RouteLogin {
		return fmt.Errorf("%w: run 'watchlog auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, seriesCommand, genresCommand, exportCommand, importCommand, tuiCommand, mockAPICommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

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
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
