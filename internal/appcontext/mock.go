package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/cellmap"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	CellmapFunc      func(...cellmap.Option) (cellmap.Cellmap, error)
	LoggerFunc       func() *zerolog.Logger
	RegistryPathFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Cellmap returns a cellmap instance using the mock function, or a real
// instance built from the given options.
func (m *Mock) Cellmap(opts ...cellmap.Option) (cellmap.Cellmap, error) {
	if m.CellmapFunc != nil {
		return m.CellmapFunc(opts...)
	}
	return cellmap.New(opts...)
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// RegistryPath returns the registry path using the mock function or "".
func (m *Mock) RegistryPath() string {
	if m.RegistryPathFunc != nil {
		return m.RegistryPathFunc()
	}
	return ""
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
