// Package cellmap consolidates cell-line metadata from heterogeneous
// sources into one canonical registry and resolves free-text cell-line
// labels against it.
//
// Cellmap wraps the parsing, reconciliation, and matching packages with a
// high-level interface:
//   - Build parses the Cellosaurus catalog and any supplementary tables,
//     reconciles them by source priority, and writes the registry TSV
//   - Annotate resolves the cell-line labels of a sample table against a
//     built registry and rewrites the table with annotation columns
//   - Lookup resolves a single label and reports the rule that matched it
//
// Example usage:
//
//	// Build a registry from the Cellosaurus catalog and two ontologies
//	cm, err := cellmap.New(
//	    cellmap.WithCatalog("cellosaurus.txt.gz"),
//	    cellmap.WithOntologies("bto.obo", "cl.obo"),
//	    cellmap.WithOutput("cell-lines.tsv"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := cm.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
//
//	// Annotate a sample table against an existing registry
//	cm, err = cellmap.New(cellmap.WithRegistry("cell-lines.tsv"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := cm.Annotate(ctx, "samples.tsv", "samples.annotated.tsv"); err != nil {
//	    log.Fatal(err)
//	}
package cellmap

import (
	"sync"

	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/registry"
)

// Compile-time interface check to ensure proper implementation.
var _ Registry = (*client)(nil)

// Registry provides access to the loaded registry table.
type Registry interface {
	// Registry returns the current registry table, loading it from the
	// configured path on first use.
	Registry() (*registry.Table, error)
}

// Cellmap builds, loads, and queries the canonical cell-line registry.
type Cellmap interface {

	// Registry provides access to the loaded registry table
	Registry

	// Builder reconciles the configured sources into the registry
	Builder

	// Annotator rewrites sample tables with registry annotations
	Annotator

	// Finder resolves single labels against the registry
	Finder
}

// client is the internal implementation of the Cellmap interface.
type client struct {

	// options are the configured options for the client
	options *options

	// table is the currently loaded registry table
	mu    sync.RWMutex
	table *registry.Table
}

// New creates a new Cellmap instance with the given options.
func New(opts ...Option) (Cellmap, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &client{options: options}, nil
}

// Registry returns the current registry table. The table comes from the
// last successful Build, or is loaded from the configured registry path on
// first use. Tables are immutable once constructed, so callers share the
// returned value.
func (c *client) Registry() (*registry.Table, error) {
	c.mu.RLock()
	table := c.table
	c.mu.RUnlock()
	if table != nil {
		return table, nil
	}

	if c.options.registryPath == "" {
		return nil, &errors.ConfigError{
			Component: "registry",
			Message:   "no registry loaded: set a registry path or run Build first",
		}
	}

	loaded, err := registry.Load(c.options.registryPath)
	if err != nil {
		return nil, err
	}

	// Keep the first table to win if two callers raced the load.
	c.mu.Lock()
	if c.table == nil {
		c.table = loaded
	}
	table = c.table
	c.mu.Unlock()
	return table, nil
}
