package cellmap

import (
	"context"

	"github.com/agentstation/cellmap/pkg/annotate"
	"github.com/agentstation/cellmap/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ Annotator = (*client)(nil)

// Annotator rewrites sample tables with registry annotations.
type Annotator interface {
	// Annotate reads the sample table at inPath, resolves each row's
	// cell-line label against the registry, and writes the annotated
	// table to outPath.
	Annotate(ctx context.Context, inPath, outPath string) (*annotate.Stats, error)
}

// Annotate resolves the cell-line labels of a sample table against the
// loaded registry. Every input row is emitted; rows no rule matched carry
// the "not available" sentinel in the annotation columns.
func (c *client) Annotate(ctx context.Context, inPath, outPath string) (*annotate.Stats, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	table, err := c.Registry()
	if err != nil {
		return nil, err
	}

	stats, err := annotate.New(table).AnnotateFile(ctx, inPath, outPath)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("input", inPath).
		Str("output", outPath).
		Int("labels", stats.Labels).
		Int("matched", stats.Matched).
		Int("unmatched", stats.Unmatched).
		Msg("annotation completed")

	return stats, nil
}
