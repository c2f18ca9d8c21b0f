package cellmap

import (
	"context"

	"github.com/agentstation/cellmap/pkg/annotate"
)

// Compile-time interface check to ensure proper implementation.
var _ Finder = (*client)(nil)

// Finder resolves single labels against the registry.
type Finder interface {
	// Lookup resolves one free-text label and reports the matched row
	// and the rule that produced it.
	Lookup(ctx context.Context, label string) (annotate.Match, error)
}

// Lookup resolves a single label against the loaded registry.
func (c *client) Lookup(ctx context.Context, label string) (annotate.Match, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	table, err := c.Registry()
	if err != nil {
		return annotate.Match{}, err
	}

	return annotate.New(table).Match(ctx, label), nil
}
