package obo

import (
	"bufio"
	"compress/gzip"
	stderrors "errors"
	"io"
	"os"
	"strings"

	"github.com/agentstation/cellmap/pkg/constants"
	"github.com/agentstation/cellmap/pkg/errors"
)

// initialTermCapacity sizes the term map up front. BTO carries ~6.5k terms,
// CL ~3k.
const initialTermCapacity = 8192

// Parse reads an OBO-format stream and returns the term graph. Only [Term]
// stanzas are materialized; other stanza types are skipped. A [Term] stanza
// without an id line makes the whole file malformed: the parse aborts and no
// partial ontology is returned.
func Parse(r io.Reader) (*Ontology, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, constants.MaxLineBuffer), constants.MaxLineBuffer)

	ont := &Ontology{terms: make(map[string]*Term, initialTermCapacity)}

	var (
		cur     *Term // term being accumulated, nil outside [Term] stanzas
		curLine int   // line where the current stanza opened
		line    int
	)

	flush := func() error {
		if cur == nil {
			return nil
		}
		if cur.ID == "" {
			return errors.NewParseError("obo", "", curLine, "term stanza missing id")
		}
		ont.terms[cur.ID] = cur
		cur = nil
		return nil
	}

	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), " \t\r")

		if text == "" {
			// Blank line closes the open stanza.
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		if text[0] == '[' {
			if err := flush(); err != nil {
				return nil, err
			}
			if text == "[Term]" {
				cur = &Term{}
				curLine = line
			}
			continue
		}

		if cur == nil {
			// Header lines and non-Term stanza bodies.
			continue
		}

		key, val, ok := strings.Cut(text, ": ")
		if !ok {
			continue
		}

		switch key {
		case "id":
			cur.ID = val
		case "name":
			cur.Name = val
		case "synonym":
			cur.Synonyms = append(cur.Synonyms, parseQuoted(val))
		case "is_a":
			id, _, _ := strings.Cut(val, " ! ")
			cur.Parents = append(cur.Parents, strings.TrimSpace(id))
		case "is_obsolete":
			cur.Obsolete = val == "true"
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.WrapParse("obo", "", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return ont, nil
}

// ParseFile opens and parses an OBO file. Files ending in .gz are
// transparently decompressed.
func ParseFile(path string) (*Ontology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.NewParseError("obo", path, 0, "not a valid gzip stream")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	ont, err := Parse(r)
	if err != nil {
		var perr *errors.ParseError
		if stderrors.As(err, &perr) && perr.File == "" {
			perr.File = path
		}
		return nil, err
	}
	return ont, nil
}

// parseQuoted extracts text between the first pair of double quotes,
// returning the input unchanged when it carries no quotes.
func parseQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return s
	}
	start++
	end := strings.IndexByte(s[start:], '"')
	if end < 0 {
		return s[start:]
	}
	return s[start : start+end]
}
