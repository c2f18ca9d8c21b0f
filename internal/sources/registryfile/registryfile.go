// Package registryfile exposes an existing registry TSV as a reconcile
// source, so a rebuild can merge a previous run's output and keep its
// per-row curation tags.
package registryfile

import (
	"context"

	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/reconcile"
	"github.com/agentstation/cellmap/pkg/registry"
)

// Source loads rows from a previously written registry file.
type Source struct {
	path     string
	id       reconcile.SourceID
	curation registry.Curation
}

// Option configures a registryfile source.
type Option func(*Source)

// WithID overrides the default source id.
func WithID(id reconcile.SourceID) Option {
	return func(s *Source) {
		s.id = id
	}
}

// WithCuration sets the source-level curation tag. Rows keep their own
// stronger tags from the file.
func WithCuration(c registry.Curation) Option {
	return func(s *Source) {
		s.curation = c
	}
}

// New creates a registryfile source reading from path.
func New(path string, opts ...Option) *Source {
	s := &Source{
		path:     path,
		id:       reconcile.SourceRegistry,
		curation: registry.NotCurated,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the source id.
func (s *Source) ID() reconcile.SourceID { return s.id }

// Curation returns the source-level curation tag.
func (s *Source) Curation() registry.Curation { return s.curation }

// Rows loads the registry file. Codes in the file are already normalized,
// so they group onto themselves.
func (s *Source) Rows(ctx context.Context) ([]registry.Row, error) {
	table, err := registry.Load(s.path)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("path", s.path).
		Int("rows", table.Len()).
		Msg("registry file loaded")

	return table.Rows, nil
}
