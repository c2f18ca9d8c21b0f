package cellmap

import (
	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/reconcile"
	"github.com/agentstation/cellmap/pkg/registry"
)

// options configures a Cellmap client.
type options struct {
	btoPath      string
	clPath       string
	catalogPath  string
	manifestPath string
	registryPath string
	outputPath   string

	mergeExisting bool
	overrides     map[string]registry.Curation
	sources       []reconcile.Source
}

func defaultOptions() *options {
	return &options{}
}

// Option is a function that configures a Cellmap instance.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns cellmap options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithOntologies sets the BTO and CL ontology file paths used to resolve
// cross-references during Build. Either path may be empty; cross-references
// into that vocabulary then resolve to the missing-value sentinel.
func WithOntologies(btoPath, clPath string) Option {
	return func(o *options) error {
		o.btoPath = btoPath
		o.clPath = clPath
		return nil
	}
}

// WithCatalog sets the Cellosaurus catalog path, the highest-priority
// source for Build.
func WithCatalog(path string) Option {
	return func(o *options) error {
		if path == "" {
			return &errors.ValidationError{
				Field:   "catalog",
				Message: "cannot be empty",
			}
		}
		o.catalogPath = path
		return nil
	}
}

// WithManifest sets the path of a YAML manifest listing supplementary
// sources in priority order.
func WithManifest(path string) Option {
	return func(o *options) error {
		if path == "" {
			return &errors.ValidationError{
				Field:   "manifest",
				Message: "cannot be empty",
			}
		}
		o.manifestPath = path
		return nil
	}
}

// WithRegistry sets the path of an existing registry TSV. Annotate and
// Lookup load it; Build folds it in as the lowest-priority source when
// merging is enabled.
func WithRegistry(path string) Option {
	return func(o *options) error {
		if path == "" {
			return &errors.ValidationError{
				Field:   "registry",
				Message: "cannot be empty",
			}
		}
		o.registryPath = path
		return nil
	}
}

// WithOutput sets the path Build writes the reconciled registry to. An
// empty output path leaves the result in memory only.
func WithOutput(path string) Option {
	return func(o *options) error {
		o.outputPath = path
		return nil
	}
}

// WithMergeExisting configures whether Build folds the existing registry
// in as the lowest-priority source, preserving rows and curation tags that
// the fresh sources no longer carry. The existing registry is read from
// the registry path when set, otherwise from the output path.
func WithMergeExisting(enabled bool) Option {
	return func(o *options) error {
		o.mergeExisting = enabled
		return nil
	}
}

// WithOverrides records per-code curation overrides applied after merging.
// The key is the canonical cell-line code.
func WithOverrides(overrides map[string]registry.Curation) Option {
	return func(o *options) error {
		o.overrides = overrides
		return nil
	}
}

// WithSources appends explicit sources, in the given order, after any
// manifest entries.
func WithSources(srcs ...reconcile.Source) Option {
	return func(o *options) error {
		for _, src := range srcs {
			if src == nil {
				return &errors.ValidationError{
					Field:   "sources",
					Message: "cannot be nil",
				}
			}
		}
		o.sources = append(o.sources, srcs...)
		return nil
	}
}
