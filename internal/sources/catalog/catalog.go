// Package catalog adapts the Cellosaurus catalog file into a reconcile
// source: each parsed entry becomes one partial registry row with the
// comment-derived attributes resolved against the BTO and CL ontologies.
package catalog

import (
	"context"

	"github.com/agentstation/cellmap/pkg/cellosaurus"
	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/obo"
	"github.com/agentstation/cellmap/pkg/reconcile"
	"github.com/agentstation/cellmap/pkg/registry"
)

// Source loads cell-line rows from a Cellosaurus catalog file.
type Source struct {
	path     string
	bto      *obo.Ontology
	cl       *obo.Ontology
	id       reconcile.SourceID
	curation registry.Curation
}

// Option configures a catalog source.
type Option func(*Source)

// WithID overrides the default source id.
func WithID(id reconcile.SourceID) Option {
	return func(s *Source) {
		s.id = id
	}
}

// WithCuration sets the source-level curation tag applied to every row.
func WithCuration(c registry.Curation) Option {
	return func(s *Source) {
		s.curation = c
	}
}

// New creates a catalog source reading from path, which may be gzip
// compressed. The ontologies resolve cross-references and cell-type
// markers; either may be nil when unavailable.
func New(path string, bto, cl *obo.Ontology, opts ...Option) *Source {
	s := &Source{
		path:     path,
		bto:      bto,
		cl:       cl,
		id:       reconcile.SourceCellosaurus,
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

// Rows parses the catalog and converts every entry into a partial registry
// row. The raw primary name is carried in CellLine for the reconciler to
// normalize. Secondary accessions join the synonym set so retired ids keep
// matching.
func (s *Source) Rows(ctx context.Context) ([]registry.Row, error) {
	log := logging.Ctx(ctx)

	entries, err := cellosaurus.ParseFile(ctx, s.path)
	if err != nil {
		return nil, err
	}

	rows := make([]registry.Row, 0, len(entries))
	for _, e := range entries {
		attrs := cellosaurus.Extract(ctx, e, s.bto, s.cl)

		synonyms := make([]string, 0, len(e.Synonyms)+len(e.Secondary))
		synonyms = append(synonyms, e.Synonyms...)
		synonyms = append(synonyms, e.Secondary...)

		rows = append(rows, registry.Row{
			CellLine:             e.Name,
			CellosaurusName:      e.Name,
			CellosaurusAccession: e.Accession,
			BTOCellLine:          attrs.BTOCellLine,
			Organism:             attrs.Organism,
			SamplingSite:         attrs.SamplingSite,
			Age:                  attrs.Age,
			Sex:                  e.Sex,
			AncestryCategory:     attrs.Ancestry,
			Disease:              attrs.Disease,
			CellType:             attrs.CellType,
			MaterialType:         e.Category,
			Synonyms:             synonyms,
		})
	}

	log.Debug().
		Str("path", s.path).
		Int("rows", len(rows)).
		Msg("cellosaurus catalog loaded")

	return rows, nil
}
