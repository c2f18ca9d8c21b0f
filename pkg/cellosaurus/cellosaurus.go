// Package cellosaurus parses the Cellosaurus cell-line catalog text release
// and derives structured annotation attributes from its free-text fields.
//
// The catalog is a sequence of entry blocks terminated by "//" lines, each
// field carried on a line with a 2-character tag prefix:
//
//	ID   HeLa
//	AC   CVCL_0030
//	SY   Hela; He-La; HELA
//	DR   BTO; BTO:0000567
//	CC   Derived from site: In situ; Uterus, cervix; UBERON=UBERON_0000002.
//	OX   NCBI_TaxID=9606; ! Homo sapiens
//	SX   Female
//	AG   30Y
//	CA   Cancer cell line
//	//
//
// Parse keeps every comment line, including categories no extraction rule
// recognizes, so unmatched fields stay retrievable downstream.
package cellosaurus

import "strings"

// Entry is one parsed catalog block.
type Entry struct {
	Accession string   // AC, the stable primary key
	Secondary []string // AS
	Name      string   // ID
	Synonyms  []string // SY
	Organisms []string // OX, one raw value per line
	Sex       string   // SX
	AgeText   string   // AG, verbatim
	Category  string   // CA
	Diseases  []Disease
	CrossRefs []Xref
	Comments  []Comment
}

// Disease is one DI line: terminology, code, and display name.
type Disease struct {
	Terminology string
	Code        string
	Name        string
}

// Xref is one DR line: a cross-reference into an external database or
// ontology. Unrecognized database names are kept verbatim and left
// unresolved.
type Xref struct {
	Database string
	ID       string
}

// Comment is one CC category with its text. Continuation lines are folded
// into the text of the comment they extend.
type Comment struct {
	Category string
	Text     string
}

// CommentText returns the text of the first comment whose category matches,
// case-insensitively. Later comments of the same category are ignored.
func (e Entry) CommentText(category string) (string, bool) {
	for _, c := range e.Comments {
		if strings.EqualFold(c.Category, category) {
			return c.Text, true
		}
	}
	return "", false
}

// CrossRef returns the first cross-reference into the named database.
func (e Entry) CrossRef(database string) (Xref, bool) {
	for _, x := range e.CrossRefs {
		if strings.EqualFold(x.Database, database) {
			return x, true
		}
	}
	return Xref{}, false
}
