// Package registry defines the canonical cell-line registry: the Row type,
// the tab-separated interchange format it round-trips through, and the
// normalization rules shared by the build and annotate pipelines.
package registry

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NoAvailable is the missing-value sentinel inside the registry file. The
// exact string matters: annotate copies matched row values verbatim, so the
// producer and consumer must agree on it.
const NoAvailable = "no available"

// SynonymSep joins and splits the synonyms column.
const SynonymSep = ";"

// Curation tags the provenance confidence of a registry row.
type Curation string

// Curation tag values.
const (
	NotCurated    Curation = "not curated"
	AICurated     Curation = "AI curated"
	ManualCurated Curation = "manual curated"
)

// Header is the exact column sequence of the registry file. The
// capitalization of "Material type" is part of the interchange format.
var Header = []string{
	"cell line",
	"cellosaurus name",
	"cellosaurus accession",
	"bto cell line",
	"organism",
	"organism part",
	"sampling site",
	"age",
	"developmental stage",
	"sex",
	"ancestry category",
	"disease",
	"cell type",
	"Material type",
	"synonyms",
	"curated",
}

// Row is one canonical cell line. CellLine is the normalized code and the
// unique key of the registry. Field values are stored verbatim as they
// appear in the file; empty means missing and is written as the sentinel.
type Row struct {
	CellLine             string
	CellosaurusName      string
	CellosaurusAccession string
	BTOCellLine          string
	Organism             string
	OrganismPart         string
	SamplingSite         string
	Age                  string
	DevelopmentalStage   string
	Sex                  string
	AncestryCategory     string
	Disease              string
	CellType             string
	MaterialType         string
	Synonyms             []string
	Curated              Curation
}

// Values returns the row as one record in Header order, substituting the
// missing-value sentinel for empty fields.
func (r *Row) Values() []string {
	curated := string(r.Curated)
	if curated == "" {
		curated = string(NotCurated)
	}
	return []string{
		orSentinel(r.CellLine),
		orSentinel(r.CellosaurusName),
		orSentinel(r.CellosaurusAccession),
		orSentinel(r.BTOCellLine),
		orSentinel(r.Organism),
		orSentinel(r.OrganismPart),
		orSentinel(r.SamplingSite),
		orSentinel(r.Age),
		orSentinel(r.DevelopmentalStage),
		orSentinel(r.Sex),
		orSentinel(r.AncestryCategory),
		orSentinel(r.Disease),
		orSentinel(r.CellType),
		orSentinel(r.MaterialType),
		orSentinel(strings.Join(r.Synonyms, SynonymSep)),
		curated,
	}
}

// rowFromValues builds a Row from one record in Header order.
func rowFromValues(vals []string) Row {
	r := Row{
		CellLine:             vals[0],
		CellosaurusName:      vals[1],
		CellosaurusAccession: vals[2],
		BTOCellLine:          vals[3],
		Organism:             vals[4],
		OrganismPart:         vals[5],
		SamplingSite:         vals[6],
		Age:                  vals[7],
		DevelopmentalStage:   vals[8],
		Sex:                  vals[9],
		AncestryCategory:     vals[10],
		Disease:              vals[11],
		CellType:             vals[12],
		MaterialType:         vals[13],
		Curated:              Curation(vals[15]),
	}
	if syn := vals[14]; syn != "" && syn != NoAvailable {
		for _, s := range strings.Split(syn, SynonymSep) {
			if s = strings.TrimSpace(s); s != "" {
				r.Synonyms = append(r.Synonyms, s)
			}
		}
	}
	return r
}

// orSentinel substitutes the sentinel for empty values.
func orSentinel(s string) string {
	if s == "" {
		return NoAvailable
	}
	return s
}

// IsMissing reports whether a field value carries no information, either
// because it is empty or because it holds the sentinel.
func IsMissing(s string) bool {
	return s == "" || s == NoAvailable
}

var (
	upperCaser = cases.Upper(language.Und)
	foldCaser  = cases.Fold()
)

// Normalize derives the cell-line code from a primary name: uppercase with
// every non-alphanumeric rune stripped. "HeLa S3" and "HELA-S3" both map to
// "HELAS3".
func Normalize(name string) string {
	upper := upperCaser.String(name)
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fold case-folds a string for case-insensitive comparison.
func Fold(s string) string {
	return foldCaser.String(s)
}
