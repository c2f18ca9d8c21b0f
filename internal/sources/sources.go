// Package sources builds reconcile sources from a declarative manifest.
// The manifest lists supplementary sources in priority order; the
// Cellosaurus catalog is not manifest-built because it needs the loaded
// ontologies, and always precedes the manifest entries.
package sources

import (
	"fmt"
	"os"
	"sort"

	"github.com/agentstation/cellmap/internal/sources/atlas"
	"github.com/agentstation/cellmap/internal/sources/passports"
	"github.com/agentstation/cellmap/internal/sources/registryfile"
	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/reconcile"
	"github.com/agentstation/cellmap/pkg/registry"
	"github.com/goccy/go-yaml"
)

// Kind names a source implementation.
type Kind string

// Supported source kinds.
const (
	KindPassports Kind = "passports"
	KindAtlas     Kind = "atlas"
	KindRegistry  Kind = "registry"
)

// Entry is one manifest source. ID defaults to the kind name; Curation
// defaults to "not curated" and must be one of the registry tags.
type Entry struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Kind     Kind   `json:"kind" yaml:"kind"`
	Path     string `json:"path" yaml:"path"`
	Curation string `json:"curation,omitempty" yaml:"curation,omitempty"`
}

// Manifest is the sources.yaml document: supplementary sources in the
// priority order they feed the reconciler.
type Manifest struct {
	Sources []Entry `json:"sources" yaml:"sources"`
}

// builders maps source kinds to their constructors.
var builders = map[Kind]func(Entry) reconcile.Source{
	KindPassports: func(e Entry) reconcile.Source {
		return passports.New(e.Path, passports.WithID(reconcile.SourceID(e.ID)), passports.WithCuration(registry.Curation(e.Curation)))
	},
	KindAtlas: func(e Entry) reconcile.Source {
		return atlas.New(e.Path, atlas.WithID(reconcile.SourceID(e.ID)), atlas.WithCuration(registry.Curation(e.Curation)))
	},
	KindRegistry: func(e Entry) reconcile.Source {
		return registryfile.New(e.Path, registryfile.WithID(reconcile.SourceID(e.ID)), registryfile.WithCuration(registry.Curation(e.Curation)))
	},
}

// Has reports whether a kind has an implementation.
func Has(k Kind) bool {
	_, ok := builders[k]
	return ok
}

// Kinds returns the supported kinds, sorted.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(builders))
	for k := range builders {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// New builds the source for one manifest entry.
func New(e Entry) (reconcile.Source, error) {
	if err := validate(e); err != nil {
		return nil, err
	}
	e = withDefaults(e)
	return builders[e.Kind](e), nil
}

// LoadManifest reads and validates a sources.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every entry and the uniqueness of effective ids.
func (m *Manifest) Validate() error {
	ids := make(map[string]bool, len(m.Sources))
	for _, e := range m.Sources {
		if err := validate(e); err != nil {
			return err
		}
		id := withDefaults(e).ID
		if ids[id] {
			return errors.NewValidationError("id", id, "duplicate source id")
		}
		ids[id] = true
	}
	return nil
}

// Build constructs every manifest source in order.
func (m *Manifest) Build() ([]reconcile.Source, error) {
	srcs := make([]reconcile.Source, 0, len(m.Sources))
	for _, e := range m.Sources {
		src, err := New(e)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

func validate(e Entry) error {
	if !Has(e.Kind) {
		return errors.NewValidationError("kind", e.Kind, fmt.Sprintf("unsupported source kind: %s", e.Kind))
	}
	if e.Path == "" {
		return errors.NewValidationError("path", e.Path, "source path required")
	}
	switch registry.Curation(e.Curation) {
	case "", registry.NotCurated, registry.AICurated, registry.ManualCurated:
	default:
		return errors.NewValidationError("curation", e.Curation,
			fmt.Sprintf("unknown curation tag: %q", e.Curation))
	}
	return nil
}

func withDefaults(e Entry) Entry {
	if e.ID == "" {
		e.ID = string(e.Kind)
	}
	if e.Curation == "" {
		e.Curation = string(registry.NotCurated)
	}
	return e
}
