package cellosaurus

import (
	"context"
	"regexp"
	"strings"

	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/obo"
)

// Comment categories the extraction rules recognize.
const (
	commentSite       = "Derived from site"
	commentCellType   = "Cell type"
	commentPopulation = "Population"
)

// dbBTO is the cross-reference database name for the tissue ontology.
const dbBTO = "BTO"

// Attributes are the structured fields derived from one entry's free-text
// and cross-reference data. Fields with no matching pattern stay empty.
type Attributes struct {
	Organism     string
	Age          string
	SamplingSite string
	CellType     string
	Ancestry     string
	Disease      string
	BTOCellLine  string
}

// Taxon is an organism name with its NCBI taxonomy id.
type Taxon struct {
	Name string
	ID   string
}

var (
	ageRangeRe = regexp.MustCompile(`^(\d+)-(\d+)\s*Y`)
	ageYearsRe = regexp.MustCompile(`^(\d+)(?:\.\d+)?\s*Y`)
	ageUnitRe  = regexp.MustCompile(`^(\d+)\s*(?:FW|M|W|D)\b`)
	ageBareRe  = regexp.MustCompile(`^\d+$`)

	// taxonParenRe matches the display form "Homo sapiens (NCBI taxon 9606)"
	// and the bare parenthesized id "Homo sapiens (9606)".
	taxonParenRe = regexp.MustCompile(`^(.*?)\s*\((?:NCBI taxon )?(\d+)\)$`)

	// markerRe matches an ontology cross-reference segment embedded in a
	// comment, such as "CL=CL_4033010" or "UBERON=UBERON_0000002".
	markerRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*=\S+$`)
)

// ExtractAge derives a normalized age from the free-text AG field: year
// ranges keep both bounds ("30-40Y" gives "30-40"), year values keep the
// integer part ("45 Y" and "45.5Y" give "45"), other numeric+unit forms and
// bare numbers keep the number. Text with no numeric pattern reports
// ok=false and is left for the caller's missing-value handling.
func ExtractAge(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if m := ageRangeRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + m[2], true
	}
	if m := ageYearsRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if m := ageUnitRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if ageBareRe.MatchString(s) {
		return s, true
	}
	return "", false
}

// ParseTaxon splits an organism value into name and NCBI taxon id. Both the
// catalog wire form ("NCBI_TaxID=9606; ! Homo sapiens") and the display form
// ("Homo sapiens (NCBI taxon 9606)") are recognized; text matching neither
// is kept whole as the name with the id left empty.
func ParseTaxon(s string) Taxon {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "NCBI_TaxID="); ok {
		id, name, _ := strings.Cut(rest, "!")
		return Taxon{
			Name: strings.TrimSpace(name),
			ID:   strings.TrimSuffix(strings.TrimSpace(id), ";"),
		}
	}
	if m := taxonParenRe.FindStringSubmatch(s); m != nil {
		return Taxon{Name: m[1], ID: m[2]}
	}
	return Taxon{Name: s}
}

// Extract applies the pattern rules to one entry. Cross-reference ids absent
// from the loaded ontologies resolve to empty values with a low-severity log
// line, never an error.
func Extract(ctx context.Context, e Entry, bto, cl *obo.Ontology) Attributes {
	log := logging.Ctx(ctx)

	var attrs Attributes

	organisms := make([]string, 0, len(e.Organisms))
	for _, raw := range e.Organisms {
		if t := ParseTaxon(raw); t.Name != "" {
			organisms = append(organisms, t.Name)
		}
	}
	attrs.Organism = strings.Join(organisms, "; ")

	if age, ok := ExtractAge(e.AgeText); ok {
		attrs.Age = age
	}

	if text, ok := e.CommentText(commentSite); ok {
		attrs.SamplingSite, _ = splitMarkers(text)
	}

	if text, ok := e.CommentText(commentCellType); ok {
		display, markers := splitMarkers(text)
		attrs.CellType = display
		for _, m := range markers {
			db, id, _ := strings.Cut(m, "=")
			if !strings.EqualFold(db, "CL") {
				continue
			}
			if name, ok := resolveTerm(cl, id); ok {
				attrs.CellType = name
			} else {
				log.Debug().
					Str("accession", e.Accession).
					Str("id", id).
					Msg("cell type term not in ontology")
			}
			break
		}
	}

	if text, ok := e.CommentText(commentPopulation); ok {
		attrs.Ancestry, _ = splitMarkers(text)
	}

	diseases := make([]string, 0, len(e.Diseases))
	for _, d := range e.Diseases {
		if d.Name != "" {
			diseases = append(diseases, d.Name)
		}
	}
	attrs.Disease = strings.Join(diseases, "; ")

	if x, ok := e.CrossRef(dbBTO); ok {
		if name, ok := resolveTerm(bto, x.ID); ok {
			attrs.BTOCellLine = name
		} else {
			log.Debug().
				Str("accession", e.Accession).
				Str("id", x.ID).
				Msg("tissue term not in ontology")
		}
	}

	return attrs
}

// splitMarkers separates a comment's display text from embedded
// ontology-marker segments, dropping the release's trailing period.
func splitMarkers(text string) (display string, markers []string) {
	text = strings.TrimSuffix(strings.TrimSpace(text), ".")
	var displayParts []string
	for _, p := range strings.Split(text, ";") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if markerRe.MatchString(p) {
			markers = append(markers, p)
			continue
		}
		displayParts = append(displayParts, p)
	}
	return strings.Join(displayParts, "; "), markers
}

// resolveTerm looks an ontology id up by its exact form, then with the first
// underscore replaced by a colon: cross-reference lines write CL_4033010
// where the ontology declares CL:4033010.
func resolveTerm(ont *obo.Ontology, id string) (string, bool) {
	if ont == nil || id == "" {
		return "", false
	}
	if name := ont.Name(id); name != "" {
		return name, true
	}
	if alt := strings.Replace(id, "_", ":", 1); alt != id {
		if name := ont.Name(alt); name != "" {
			return name, true
		}
	}
	return "", false
}
