// Package app provides the application context and dependency management
// for the lotsync CLI: configuration loading, logger setup, and lazy
// construction of the sync engine.
package app

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/motorlot/lotsync"
	"github.com/motorlot/lotsync/internal/state"
	"github.com/motorlot/lotsync/pkg/inventory"
	"github.com/motorlot/lotsync/pkg/schema"
	"github.com/motorlot/lotsync/pkg/wordpress"
)

// App represents the lotsync application with all its dependencies.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger

	// Engine is lazy-initialized; commands that never sync (version,
	// offset show against a missing db) should not demand full config.
	mu     sync.Mutex
	engine lotsync.Lotsync
	store  *state.Store
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version string.
func (a *App) Version() string { return a.version }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// Engine returns the sync engine, creating it lazily from the
// configuration. Thread-safe; only one engine is created.
func (a *App) Engine() (lotsync.Lotsync, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.engine != nil {
		return a.engine, nil
	}

	if a.config.SheetPath == "" {
		return nil, fmt.Errorf("an inventory sheet path is required (--sheet or LOTSYNC_SHEET_PATH)")
	}

	store, err := a.stateStoreLocked()
	if err != nil {
		return nil, err
	}

	profile := schema.Default()
	if a.config.ProfilePath != "" {
		profile, err = schema.Load(a.config.ProfilePath)
		if err != nil {
			return nil, err
		}
	}

	engine, err := lotsync.New(
		lotsync.WithSource(inventory.NewCSVSource(a.config.SheetPath)),
		lotsync.WithBackend(wordpress.Config{
			BaseURL:       a.config.BaseURL,
			PostType:      a.config.PostType,
			RelationsPath: a.config.RelationsPath,
			Username:      a.config.Username,
			Password:      a.config.Password,
		}),
		lotsync.WithStateStore(store),
		lotsync.WithProfile(profile),
		lotsync.WithBatchSize(a.config.BatchSize),
		lotsync.WithDelay(a.config.Delay),
	)
	if err != nil {
		return nil, err
	}

	a.engine = engine
	return engine, nil
}

// StateStore returns the state store, opening it lazily. Used by the offset
// commands, which need the store without the full engine.
func (a *App) StateStore() (*state.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateStoreLocked()
}

func (a *App) stateStoreLocked() (*state.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := state.Open(a.config.StatePath)
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// Shutdown releases held resources.
func (a *App) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close state store")
		}
		a.store = nil
		a.engine = nil
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithEngine sets a custom engine (useful for testing).
func WithEngine(engine lotsync.Lotsync) Option {
	return func(a *App) error {
		a.engine = engine
		return nil
	}
}
