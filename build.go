package cellmap

import (
	"context"
	"os"

	"github.com/agentstation/cellmap/internal/sources"
	"github.com/agentstation/cellmap/internal/sources/catalog"
	"github.com/agentstation/cellmap/internal/sources/registryfile"
	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/obo"
	"github.com/agentstation/cellmap/pkg/reconcile"
	"github.com/agentstation/cellmap/pkg/registry"
)

// Compile-time interface check to ensure proper implementation.
var _ Builder = (*client)(nil)

// Builder reconciles the configured sources into the canonical registry.
type Builder interface {
	// Build loads every configured source, reconciles them by priority,
	// and writes the registry TSV when an output path is set.
	Build(ctx context.Context) (*reconcile.Result, error)
}

// Build runs the full registry pipeline: ontology loading, source
// assembly, reconciliation, and persistence.
func (c *client) Build(ctx context.Context) (*reconcile.Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.Ctx(ctx)

	// Step 1: Load the ontologies; the extractor resolves catalog
	// cross-references through them
	bto, cl, err := loadOntologies(ctx, c.options.btoPath, c.options.clPath)
	if err != nil {
		return nil, err
	}

	// Step 2: Assemble the sources in priority order
	srcs, err := c.assemble(ctx, bto, cl)
	if err != nil {
		return nil, err
	}

	// Step 3: Reconcile all sources into canonical rows
	var opts []reconcile.Option
	if len(c.options.overrides) > 0 {
		opts = append(opts, reconcile.WithOverrides(c.options.overrides))
	}
	reconciler, err := reconcile.New(opts...)
	if err != nil {
		return nil, err
	}
	result, err := reconciler.Reconcile(ctx, srcs...)
	if err != nil {
		return nil, err
	}
	result.LogSummary(ctx)

	// Step 4: Persist the registry only after a fully successful run
	if c.options.outputPath != "" {
		if err := registry.Save(c.options.outputPath, result.Rows); err != nil {
			return nil, err
		}
		log.Info().
			Str("path", c.options.outputPath).
			Int("rows", len(result.Rows)).
			Msg("registry written")
	}

	// Step 5: Replace the cached table so Annotate and Lookup see the
	// fresh registry
	table, err := registry.NewTable(result.Rows)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.table = table
	c.mu.Unlock()

	return result, nil
}

// assemble builds the prioritized source list: the Cellosaurus catalog
// first, then manifest entries in declared order, then explicit sources,
// and finally the existing registry when merging is enabled.
func (c *client) assemble(ctx context.Context, bto, cl *obo.Ontology) ([]reconcile.Source, error) {
	var srcs []reconcile.Source

	if c.options.catalogPath != "" {
		srcs = append(srcs, catalog.New(c.options.catalogPath, bto, cl))
	}

	if c.options.manifestPath != "" {
		manifest, err := sources.LoadManifest(c.options.manifestPath)
		if err != nil {
			return nil, err
		}
		built, err := manifest.Build()
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, built...)
	}

	srcs = append(srcs, c.options.sources...)

	if c.options.mergeExisting {
		path := c.options.registryPath
		if path == "" {
			path = c.options.outputPath
		}
		if path == "" {
			return nil, &errors.ConfigError{
				Component: "build",
				Message:   "merging requires a registry or output path",
			}
		}
		if _, err := os.Stat(path); err == nil {
			srcs = append(srcs, registryfile.New(path))
		} else if os.IsNotExist(err) {
			logging.Ctx(ctx).Info().
				Str("path", path).
				Msg("no existing registry to merge, building fresh")
		} else {
			return nil, errors.WrapIO("stat", path, err)
		}
	}

	if len(srcs) == 0 {
		return nil, &errors.ConfigError{
			Component: "build",
			Message:   "no sources configured: set a catalog, manifest, or explicit sources",
		}
	}

	return srcs, nil
}
