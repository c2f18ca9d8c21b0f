// Package passports loads the Cell Model Passports model list CSV as a
// reconcile source. The mapping is a pure column rename: each model row
// becomes one partial registry row keyed by the model name.
package passports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/reconcile"
	"github.com/agentstation/cellmap/pkg/registry"
)

const formatName = "csv"

// Column names of the model list file, matched case-insensitively. Only
// the model name is required; absent columns leave their fields missing.
const (
	columnName      = "model_name"
	columnSynonyms  = "synonyms"
	columnRRID      = "rrid"
	columnSpecies   = "species"
	columnTissue    = "tissue"
	columnSite      = "sample_site"
	columnDisease   = "cancer_type"
	columnAge       = "age_at_sampling"
	columnSex       = "gender"
	columnEthnicity = "ethnicity"
	columnModelType = "model_type"
)

// Source loads cell-line rows from a Cell Model Passports CSV file.
type Source struct {
	path     string
	id       reconcile.SourceID
	curation registry.Curation
}

// Option configures a passports source.
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

// New creates a passports source reading from path.
func New(path string, opts ...Option) *Source {
	s := &Source{
		path:     path,
		id:       reconcile.SourcePassports,
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

// Rows reads the CSV and maps its columns onto partial registry rows. Rows
// without a model name cannot be grouped and are skipped.
func (s *Source) Rows(ctx context.Context) ([]registry.Row, error) {
	log := logging.Ctx(ctx)

	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.WrapIO("open", s.path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.NewParseError(formatName, s.path, 0, "empty input, header row required")
	}
	if err != nil {
		return nil, errors.WrapParse(formatName, s.path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = registry.Fold(strings.TrimSpace(name))
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	if _, ok := index[columnName]; !ok {
		return nil, errors.NewParseError(formatName, s.path, 1,
			fmt.Sprintf("missing required column %q", columnName))
	}

	cell := func(rec []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []registry.Row
	skipped := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapParse(formatName, s.path, err)
		}

		name := cell(rec, columnName)
		if name == "" {
			skipped++
			continue
		}

		// The model name is not a Cellosaurus name; it joins the synonym
		// set instead so the display form survives merging. The RRID is a
		// genuine Cellosaurus accession.
		row := registry.Row{
			CellLine:             name,
			CellosaurusAccession: cell(rec, columnRRID),
			Organism:             cell(rec, columnSpecies),
			OrganismPart:         cell(rec, columnTissue),
			SamplingSite:         cell(rec, columnSite),
			Age:                  cell(rec, columnAge),
			Sex:                  cell(rec, columnSex),
			AncestryCategory:     cell(rec, columnEthnicity),
			Disease:              cell(rec, columnDisease),
			MaterialType:         cell(rec, columnModelType),
			Synonyms:             []string{name},
		}
		for _, syn := range strings.Split(cell(rec, columnSynonyms), registry.SynonymSep) {
			if syn = strings.TrimSpace(syn); syn != "" {
				row.Synonyms = append(row.Synonyms, syn)
			}
		}
		rows = append(rows, row)
	}

	log.Debug().
		Str("path", s.path).
		Int("rows", len(rows)).
		Int("skipped", skipped).
		Msg("passports table loaded")

	return rows, nil
}
