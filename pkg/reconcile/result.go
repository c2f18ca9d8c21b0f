package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/registry"
)

// Result represents the outcome of a reconciliation run.
type Result struct {
	// Rows is the canonical registry, sorted by cell-line code.
	Rows []registry.Row

	// Conflicts lists every field disagreement resolved by source priority.
	Conflicts []Conflict

	// Dropped lists codes discarded for lacking organism data.
	Dropped []string

	// Metadata about the run.
	Metadata Metadata
}

// Conflict records one field value displaced by a higher-priority source.
type Conflict struct {
	Code      string
	Field     string
	Kept      string
	KeptBy    SourceID
	Dropped   string
	DroppedBy SourceID
}

// Metadata contains metadata about the reconciliation run.
type Metadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Sources   []SourceID
	Stats     Statistics
}

// Statistics counts what the run saw and produced.
type Statistics struct {
	// Sources reconciled.
	Sources int

	// Records read across all sources.
	Records int

	// Rows in the canonical output.
	Rows int

	// Merged counts codes that more than one record contributed to.
	Merged int

	// Conflicts resolved by source priority.
	Conflicts int

	// Skipped records (no usable cell-line name).
	Skipped int

	// Dropped codes (no organism).
	Dropped int
}

// HasConflicts reports whether any field conflicts were resolved.
func (r *Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	return fmt.Sprintf("reconciled %d records from %d sources into %d rows (%d merged, %d conflicts, %d dropped)",
		s.Records, s.Sources, s.Rows, s.Merged, s.Conflicts, s.Dropped)
}

// LogSummary emits the run statistics as one structured event.
func (r *Result) LogSummary(ctx context.Context) {
	s := r.Metadata.Stats
	logging.Ctx(ctx).Info().
		Int("sources", s.Sources).
		Int("records", s.Records).
		Int("rows", s.Rows).
		Int("merged", s.Merged).
		Int("conflicts", s.Conflicts).
		Int("skipped", s.Skipped).
		Int("dropped", s.Dropped).
		Dur("duration", r.Metadata.Duration).
		Msg("registry reconciled")
}
