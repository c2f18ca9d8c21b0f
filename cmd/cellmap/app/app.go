// Package app provides the application context and dependency management
// for the cellmap CLI. It centralizes configuration, logging, and cellmap
// instance construction for the command packages.
package app

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/cellmap"
	"github.com/agentstation/cellmap/internal/appcontext"
	"github.com/agentstation/cellmap/pkg/errors"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App represents the cellmap application with all its dependencies.
// It provides a centralized place for configuration, logging, and
// cellmap instance construction.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	// Load configuration
	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "loading configuration", err)
	}
	app.config = config

	// Initialize logger
	logger := NewLogger(config)
	app.logger = &logger

	// Apply any custom options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// RegistryPath returns the configured default registry file path.
func (a *App) RegistryPath() string {
	return a.config.Registry
}

// Cellmap creates a cellmap instance with the given options. Commands pass
// the options their flags resolved to; construction is cheap, so each
// command builds its own instance.
func (a *App) Cellmap(opts ...cellmap.Option) (cellmap.Cellmap, error) {
	cm, err := cellmap.New(opts...)
	if err != nil {
		return nil, errors.NewConfigError("cellmap", "creating instance", err)
	}
	return cm, nil
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
