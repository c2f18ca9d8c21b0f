// Package appcontext provides the shared application context interface
// used by all CLI commands. Commands accept this interface rather than the
// concrete App type, so tests can substitute a mock.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/cellmap"
)

// Interface defines the application context that commands need. The App
// struct from cmd/cellmap/app implements it.
type Interface interface {
	// Cellmap creates a cellmap instance with the given options.
	Cellmap(opts ...cellmap.Option) (cellmap.Cellmap, error)

	// Logger returns the configured logger instance. Commands should use
	// this for all logging operations.
	Logger() *zerolog.Logger

	// RegistryPath returns the configured default registry file path.
	// Command flags override it.
	RegistryPath() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
