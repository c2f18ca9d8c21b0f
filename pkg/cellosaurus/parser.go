package cellosaurus

import (
	"bufio"
	"compress/gzip"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agentstation/cellmap/pkg/constants"
	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/logging"
)

const (
	formatName      = "cellosaurus"
	entryTerminator = "//"

	tagName      = "ID"
	tagAccession = "AC"
	tagSecondary = "AS"
	tagSynonyms  = "SY"
	tagOrganism  = "OX"
	tagSex       = "SX"
	tagAge       = "AG"
	tagCategory  = "CA"
	tagDisease   = "DI"
	tagXref      = "DR"
	tagComment   = "CC"
)

// initialEntryCapacity sizes the result slice up front. A full catalog
// release carries ~150k entries.
const initialEntryCapacity = 1 << 17

// Parse reads a decompressed catalog stream and returns its entries in file
// order. Entries without an organism line are skipped with a warning; an
// entry without an ID or AC line makes the whole stream malformed and aborts
// the parse. Lines before the first ID line (the release preamble) are
// ignored.
func Parse(ctx context.Context, r io.Reader) ([]Entry, error) {
	log := logging.Ctx(ctx)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, constants.MaxLineBuffer), constants.MaxLineBuffer)

	entries := make([]Entry, 0, initialEntryCapacity)

	var (
		cur       *Entry // entry being accumulated, nil between blocks
		blockLine int    // line where the current block opened
		line      int
		started   bool // first ID line seen, preamble over
		skipped   int
	)

	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), " \t\r")

		if text == entryTerminator {
			if cur == nil {
				continue
			}
			switch {
			case cur.Name == "":
				return nil, errors.NewParseError(formatName, "", blockLine, "entry missing ID line")
			case cur.Accession == "":
				return nil, errors.NewParseError(formatName, "", blockLine,
					fmt.Sprintf("entry %q missing AC line", cur.Name))
			case len(cur.Organisms) == 0:
				skipped++
				log.Warn().
					Str("accession", cur.Accession).
					Str("name", cur.Name).
					Msg("skipping entry without organism")
			default:
				entries = append(entries, *cur)
			}
			cur = nil
			continue
		}

		tag, value, ok := splitTag(text)
		if !ok {
			continue
		}
		if !started {
			if tag != tagName {
				continue
			}
			started = true
		}
		if cur == nil {
			cur = &Entry{}
			blockLine = line
		}

		switch tag {
		case tagName:
			cur.Name = appendText(cur.Name, value)
		case tagAccession:
			cur.Accession = appendText(cur.Accession, value)
		case tagSecondary:
			cur.Secondary = append(cur.Secondary, splitList(value)...)
		case tagSynonyms:
			cur.Synonyms = append(cur.Synonyms, splitList(value)...)
		case tagOrganism:
			cur.Organisms = append(cur.Organisms, value)
		case tagSex:
			cur.Sex = appendText(cur.Sex, value)
		case tagAge:
			cur.AgeText = appendText(cur.AgeText, value)
		case tagCategory:
			cur.Category = appendText(cur.Category, value)
		case tagDisease:
			cur.Diseases = append(cur.Diseases, parseDisease(value))
		case tagXref:
			cur.CrossRefs = append(cur.CrossRefs, parseXref(value))
		case tagComment:
			if category, rest, ok := strings.Cut(value, ": "); ok {
				cur.Comments = append(cur.Comments, Comment{Category: category, Text: rest})
				break
			}
			// Continuation of the previous comment, wrapped by the release.
			if n := len(cur.Comments); n > 0 {
				cur.Comments[n-1].Text += " " + value
				break
			}
			cur.Comments = append(cur.Comments, Comment{Text: value})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.WrapParse(formatName, "", err)
	}
	if cur != nil {
		return nil, errors.NewParseError(formatName, "", blockLine, "entry not terminated")
	}

	log.Debug().
		Int("entries", len(entries)).
		Int("skipped", skipped).
		Msg("parsed cell line catalog")

	return entries, nil
}

// ParseFile opens and parses a catalog file. Files ending in .gz are
// transparently decompressed.
func ParseFile(ctx context.Context, path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.NewParseError(formatName, path, 0, "not a valid gzip stream")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	entries, err := Parse(ctx, r)
	if err != nil {
		var perr *errors.ParseError
		if stderrors.As(err, &perr) && perr.File == "" {
			perr.File = path
		}
		return nil, err
	}
	return entries, nil
}

// splitTag splits a catalog line into its 2-character tag and value. Lines
// that do not carry the tag-plus-three-spaces prefix report ok=false.
func splitTag(line string) (tag, value string, ok bool) {
	if len(line) < 5 || line[2:5] != "   " {
		return "", "", false
	}
	tag = line[:2]
	if tag[0] < 'A' || tag[0] > 'Z' || tag[1] < 'A' || tag[1] > 'Z' {
		return "", "", false
	}
	return tag, strings.TrimSpace(line[5:]), true
}

// appendText accumulates repeated free-text tag values.
func appendText(cur, value string) string {
	if cur == "" {
		return value
	}
	return cur + "; " + value
}

// splitList splits a semicolon-separated tag value into its items.
func splitList(value string) []string {
	parts := strings.Split(value, ";")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// parseDisease splits a DI value ("Terminology; Code; Name"). Values with
// fewer parts keep the whole text as the display name.
func parseDisease(value string) Disease {
	parts := splitList(value)
	if len(parts) < 3 {
		return Disease{Name: value}
	}
	return Disease{
		Terminology: parts[0],
		Code:        parts[1],
		Name:        strings.Join(parts[2:], "; "),
	}
}

// parseXref splits a DR value ("Database; ID").
func parseXref(value string) Xref {
	db, id, ok := strings.Cut(value, ";")
	if !ok {
		return Xref{Database: strings.TrimSpace(value)}
	}
	return Xref{
		Database: strings.TrimSpace(db),
		ID:       strings.TrimSpace(id),
	}
}
