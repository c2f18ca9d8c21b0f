// Package reconcile merges cell-line records from multiple sources into one
// canonical registry row per cell line.
//
// Sources are supplied in priority order: when two sources disagree on a
// field, the earlier source wins and the conflict is recorded, never
// silently dropped. Records group by cell-line code, derived by normalizing
// each record's primary name. Groups that end up without an organism are
// dropped with a warning.
package reconcile

import (
	"context"
	"sync"

	"github.com/agentstation/cellmap/pkg/constants"
	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/registry"
)

// SourceID names a data source.
type SourceID string

// String returns the string representation of a source id.
func (id SourceID) String() string {
	return string(id)
}

// Common source ids.
const (
	SourceCellosaurus SourceID = "cellosaurus"
	SourcePassports   SourceID = "passports"
	SourceAtlas       SourceID = "atlas"
	SourceRegistry    SourceID = "registry"
)

// Source supplies partial registry rows for reconciliation. Rows carry the
// raw primary cell-line name in the CellLine field; the reconciler derives
// the canonical code from it. Curation is the source-level tag applied to
// every row the source contributes; per-row Curated values override it when
// stronger.
type Source interface {
	ID() SourceID
	Curation() registry.Curation
	Rows(ctx context.Context) ([]registry.Row, error)
}

// Reconciler merges rows from prioritized sources into canonical rows.
type Reconciler interface {
	// Reconcile loads every source and merges their rows. Source priority
	// is the argument order: earlier sources win field conflicts.
	Reconcile(ctx context.Context, sources ...Source) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	overrides     map[string]registry.Curation
	maxConcurrent int
}

// Option configures a Reconciler.
type Option func(*reconciler) error

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	r := &reconciler{
		maxConcurrent: constants.MaxConcurrentSources,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// WithOverrides records per-code curation overrides applied after merging.
// The key is the canonical cell-line code.
func WithOverrides(overrides map[string]registry.Curation) Option {
	return func(r *reconciler) error {
		r.overrides = overrides
		return nil
	}
}

// WithMaxConcurrent bounds how many sources load at once.
func WithMaxConcurrent(n int) Option {
	return func(r *reconciler) error {
		if n < 1 {
			return errors.NewValidationError("maxConcurrent", n, "must be at least 1")
		}
		r.maxConcurrent = n
		return nil
	}
}

// Reconcile loads every source and merges their rows into canonical form.
func (r *reconciler) Reconcile(ctx context.Context, sources ...Source) (*Result, error) {
	if len(sources) == 0 {
		return nil, errors.NewValidationError("sources", nil, "at least one source is required")
	}
	seen := make(map[SourceID]bool, len(sources))
	for _, src := range sources {
		if seen[src.ID()] {
			return nil, errors.NewValidationError("sources", src.ID(), "duplicate source id")
		}
		seen[src.ID()] = true
	}

	rowsBySource, err := r.load(ctx, sources)
	if err != nil {
		return nil, err
	}

	return r.merge(ctx, sources, rowsBySource), nil
}

// load fetches each source's rows concurrently. Sources share no mutable
// state before the merge, so each runs in its own goroutine; the merge is
// the synchronization barrier.
func (r *reconciler) load(ctx context.Context, sources []Source) ([][]registry.Row, error) {
	rowsBySource := make([][]registry.Row, len(sources))
	errs := make([]error, len(sources))
	sem := make(chan struct{}, r.maxConcurrent)

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rows, err := src.Rows(ctx)
			if err != nil {
				errs[i] = errors.WrapSource(src.ID().String(), "", err)
				return
			}
			rowsBySource[i] = rows
		}(i, src)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return rowsBySource, nil
}
