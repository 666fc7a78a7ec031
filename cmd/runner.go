package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamz/internal/formatter"
	"github.com/desertthunder/streamz/internal/repositories"
	"github.com/desertthunder/streamz/internal/services"
	"github.com/desertthunder/streamz/internal/session"
	"github.com/desertthunder/streamz/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	store      session.TokenStore
	session    *session.Manager
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	Store      session.TokenStore // Overrides the store selected by storage.driver
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.API.Timeout()}
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.API.BaseURL, opts.HTTPClient)
		opts.API.SetAuthScheme(opts.Config.API.AuthScheme)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, profileCommand, plansCommand, browseCommand, contentCommand,
		genreCommand, playCommand, tuiCommand, devCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while a TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the credential database when one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// tokenStore opens the credential store selected by storage.driver.
func (r *Runner) tokenStore(ctx context.Context) (session.TokenStore, error) {
	if r.store != nil {
		return r.store, nil
	}

	switch driver := r.config.Storage.Driver; driver {
	case "", "file":
		r.store = session.NewFileStore(r.config.Storage.TokenPath)
	case "memory":
		r.store = session.NewMemoryStore("")
	case "sqlite":
		repo, db, err := repositories.Open(ctx, r.config.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open credential database: %w", err)
		}
		r.store, r.db = repo, db
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, driver)
	}
	return r.store, nil
}

// sessionManager returns the session without consulting the store.
func (r *Runner) sessionManager(ctx context.Context) (*session.Manager, error) {
	if r.session != nil {
		return r.session, nil
	}

	store, err := r.tokenStore(ctx)
	if err != nil {
		return nil, err
	}
	r.session = session.NewManager(r.api, store, r.logger)
	return r.session, nil
}

// startSession seeds the session from the store and waits for the stored token to be validated.
func (r *Runner) startSession(ctx context.Context) (*session.Manager, error) {
	started := r.session != nil
	m, err := r.sessionManager(ctx)
	if err != nil {
		return nil, err
	}
	if !started {
		m.Start(ctx)
		m.Wait()
	}
	return m, nil
}

// requireSession is startSession for commands that need a signed-in user.
func (r *Runner) requireSession(ctx context.Context) (*session.Manager, error) {
	m, err := r.startSession(ctx)
	if err != nil {
		return nil, err
	}
	if !m.Snapshot().IsAuthenticated() {
		return nil, fmt.Errorf("%w: run 'streamz auth login' first", shared.ErrNotAuthenticated)
	}
	return m, nil
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

// emit writes data as JSON when --json is set, otherwise renders it in the --format
// requested and writes it to --output (or the runner's output).
func (r *Runner) emit(cmd *cli.Command, data any, render func(formatter.Format) ([]byte, error)) error {
	if cmd.Bool("json") {
		return r.writeJSON(data, cmd.Bool("pretty"))
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	out, err := render(format)
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}

	if path := cmd.String("output"); path != "" && path != "-" {
		if err := formatter.WriteFile(path, out); err != nil {
			return err
		}
		r.logger.Info("output written", "path", path, "format", format)
		return nil
	}

	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
