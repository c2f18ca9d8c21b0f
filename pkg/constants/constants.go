// Package constants provides shared constants used throughout the cellmap codebase.
// This includes timeouts, limits, file permissions, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// BuildTimeout is the timeout for a full registry build across all sources
	BuildTimeout = 30 * time.Minute

	// SuggestTimeout is the timeout for a single classifier suggestion call
	SuggestTimeout = 30 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxLineBuffer is the scanner buffer ceiling for ontology and catalog files.
	// Cellosaurus comment lines and OBO synonym lines can run long.
	MaxLineBuffer = 1024 * 1024

	// MaxConcurrentSources is the maximum number of sources loaded concurrently
	MaxConcurrentSources = 5

	// WriteBufferSize is the default buffer size for write operations
	WriteBufferSize = 4096
)

// Path constants
const (
	// DefaultRegistryFile is the default filename for the consolidated registry
	DefaultRegistryFile = "cl-annotations-db.tsv"

	// DefaultConfigPath is the default path for the configuration file
	DefaultConfigPath = "~/.cellmap.yaml"
)
