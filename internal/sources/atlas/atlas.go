// Package atlas loads an Expression Atlas reference table as a reconcile
// source. The file is a TSV whose header names registry columns directly
// (matched case-insensitively); anything else is a pure rename away, so
// unknown columns are ignored.
package atlas

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/agentstation/cellmap/pkg/constants"
	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/reconcile"
	"github.com/agentstation/cellmap/pkg/registry"
)

const formatName = "tsv"

// columnCellLine is the only required column; it carries the raw name the
// reconciler groups on.
const columnCellLine = "cell line"

// columns maps folded header names onto row fields. Synonyms are handled
// separately because they split.
var columns = map[string]func(*registry.Row, string){
	"cellosaurus name":      func(r *registry.Row, v string) { r.CellosaurusName = v },
	"cellosaurus accession": func(r *registry.Row, v string) { r.CellosaurusAccession = v },
	"bto cell line":         func(r *registry.Row, v string) { r.BTOCellLine = v },
	"organism":              func(r *registry.Row, v string) { r.Organism = v },
	"organism part":         func(r *registry.Row, v string) { r.OrganismPart = v },
	"sampling site":         func(r *registry.Row, v string) { r.SamplingSite = v },
	"age":                   func(r *registry.Row, v string) { r.Age = v },
	"developmental stage":   func(r *registry.Row, v string) { r.DevelopmentalStage = v },
	"sex":                   func(r *registry.Row, v string) { r.Sex = v },
	"ancestry category":     func(r *registry.Row, v string) { r.AncestryCategory = v },
	"disease":               func(r *registry.Row, v string) { r.Disease = v },
	"cell type":             func(r *registry.Row, v string) { r.CellType = v },
	"material type":         func(r *registry.Row, v string) { r.MaterialType = v },
}

const columnSynonyms = "synonyms"

// Source loads cell-line rows from an Expression Atlas reference TSV.
type Source struct {
	path     string
	id       reconcile.SourceID
	curation registry.Curation
}

// Option configures an atlas source.
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

// New creates an atlas source reading from path.
func New(path string, opts ...Option) *Source {
	s := &Source{
		path:     path,
		id:       reconcile.SourceAtlas,
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

// Rows reads the TSV and maps recognized columns onto partial registry
// rows. Data rows must match the header width; rows without a cell-line
// value are skipped.
func (s *Source) Rows(ctx context.Context) ([]registry.Row, error) {
	log := logging.Ctx(ctx)

	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.WrapIO("open", s.path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), constants.MaxLineBuffer)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.WrapParse(formatName, s.path, err)
		}
		return nil, errors.NewParseError(formatName, s.path, 0, "empty input, header row required")
	}
	header := strings.Split(scanner.Text(), "\t")

	nameIdx := -1
	synIdx := -1
	setters := make(map[int]func(*registry.Row, string), len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = registry.Fold(strings.TrimSpace(name))
		if seen[name] {
			continue
		}
		seen[name] = true
		switch name {
		case columnCellLine:
			nameIdx = i
		case columnSynonyms:
			synIdx = i
		default:
			if set, ok := columns[name]; ok {
				setters[i] = set
			}
		}
	}
	if nameIdx < 0 {
		return nil, errors.NewParseError(formatName, s.path, 1,
			fmt.Sprintf("missing required column %q", columnCellLine))
	}

	var rows []registry.Row
	skipped := 0
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		cells := strings.Split(text, "\t")
		if len(cells) != len(header) {
			return nil, errors.NewParseError(formatName, s.path, line,
				fmt.Sprintf("expected %d columns, found %d", len(header), len(cells)))
		}

		name := strings.TrimSpace(cells[nameIdx])
		if name == "" {
			skipped++
			continue
		}

		row := registry.Row{
			CellLine: name,
			Synonyms: []string{name},
		}
		for i, set := range setters {
			if v := strings.TrimSpace(cells[i]); v != "" {
				set(&row, v)
			}
		}
		if synIdx >= 0 {
			for _, syn := range strings.Split(cells[synIdx], registry.SynonymSep) {
				if syn = strings.TrimSpace(syn); syn != "" {
					row.Synonyms = append(row.Synonyms, syn)
				}
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapParse(formatName, s.path, err)
	}

	log.Debug().
		Str("path", s.path).
		Int("rows", len(rows)).
		Int("skipped", skipped).
		Msg("atlas table loaded")

	return rows, nil
}
