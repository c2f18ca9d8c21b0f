package annotate

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentstation/cellmap/pkg/constants"
	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/registry"
)

const formatName = "sdrf"

// Required input columns, discovered case-insensitively.
const (
	columnSourceName = "source name"
	columnCellLine   = "characteristics[cell line]"
)

// ruleColumn is the audit column recording which rule matched each row.
const ruleColumn = "match rule"

// annotationColumns are the output columns filled from the matched registry
// row, in output order. The registry header spells "Material type" with a
// capital M; annotated output uses the lowercase form.
var annotationColumns = []string{
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
	"material type",
}

// Stats summarizes one annotation run.
type Stats struct {
	Labels    int
	Matched   int
	Unmatched int
	Ambiguous int

	// UnmatchedLabels is the deduplicated, sorted list of labels no rule
	// resolved.
	UnmatchedLabels []string
}

// Annotator rewrites sample tables with registry annotations.
type Annotator struct {
	matcher *Matcher
}

// New creates an Annotator over a loaded registry table.
func New(table *registry.Table) *Annotator {
	return &Annotator{matcher: NewMatcher(table)}
}

// Match resolves a single label against the registry.
func (a *Annotator) Match(ctx context.Context, label string) Match {
	return a.matcher.Match(ctx, label)
}

// AnnotateTable reads a tab-separated sample table, resolves each row's
// cell-line label, and writes the table back out with every input column
// preserved, the annotation columns appended (or overwritten in place when
// the input already carries them), and a match-rule audit column last.
// Unmatched rows are annotated with the "not available" sentinel and
// emitted, never dropped.
func (a *Annotator) AnnotateTable(ctx context.Context, r io.Reader, w io.Writer) (*Stats, error) {
	log := logging.Ctx(ctx)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, constants.MaxLineBuffer), constants.MaxLineBuffer)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.WrapParse(formatName, "", err)
		}
		return nil, errors.NewParseError(formatName, "", 0, "empty input, header row required")
	}
	header := strings.Split(scanner.Text(), "\t")

	index := make(map[string]int, len(header))
	for i, name := range header {
		key := registry.Fold(strings.TrimSpace(name))
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}
	for _, required := range []string{columnSourceName, columnCellLine} {
		if _, ok := index[registry.Fold(required)]; !ok {
			return nil, errors.NewParseError(formatName, "", 1,
				fmt.Sprintf("missing required column %q", required))
		}
	}
	labelIdx := index[registry.Fold(columnCellLine)]

	// Column plan: reuse an input column when the header already carries an
	// annotation column's name, append the rest after the pass-through
	// columns, audit column last.
	outHeader := append([]string(nil), header...)
	targets := make([]int, 0, len(annotationColumns)+1)
	for _, name := range append(append([]string(nil), annotationColumns...), ruleColumn) {
		if i, ok := index[registry.Fold(name)]; ok {
			targets = append(targets, i)
			continue
		}
		targets = append(targets, len(outHeader))
		outHeader = append(outHeader, name)
	}

	bw := bufio.NewWriterSize(w, constants.WriteBufferSize)
	if _, err := bw.WriteString(strings.Join(outHeader, "\t") + "\n"); err != nil {
		return nil, errors.WrapIO("write", "", err)
	}

	stats := &Stats{}
	unmatched := make(map[string]bool)
	line := 1

	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		cells := strings.Split(text, "\t")
		if len(cells) != len(header) {
			return nil, errors.NewParseError(formatName, "", line,
				fmt.Sprintf("expected %d columns, found %d", len(header), len(cells)))
		}

		match := a.matcher.Match(ctx, cells[labelIdx])
		stats.Labels++
		switch {
		case match.Matched():
			stats.Matched++
		default:
			stats.Unmatched++
			unmatched[match.Label] = true
			log.Warn().
				Err(errors.NewUnmatchedLabelError(match.Label)).
				Str("label", match.Label).
				Msg("label not found in registry")
		}
		if match.Ambiguous {
			stats.Ambiguous++
		}

		out := make([]string, len(outHeader))
		copy(out, cells)
		values := annotationValues(match.Row)
		for i, target := range targets {
			if i < len(values) {
				out[target] = values[i]
			} else {
				out[target] = match.Rule.String()
			}
		}

		if _, err := bw.WriteString(strings.Join(out, "\t") + "\n"); err != nil {
			return nil, errors.WrapIO("write", "", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapParse(formatName, "", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, errors.WrapIO("write", "", err)
	}

	for label := range unmatched {
		stats.UnmatchedLabels = append(stats.UnmatchedLabels, label)
	}
	sort.Strings(stats.UnmatchedLabels)
	if len(stats.UnmatchedLabels) > 0 {
		log.Warn().
			Strs("labels", stats.UnmatchedLabels).
			Int("count", len(stats.UnmatchedLabels)).
			Msg("labels without a registry match")
	}

	return stats, nil
}

// AnnotateFile annotates inPath into outPath. The output file appears only
// after the whole input annotated cleanly.
func (a *Annotator) AnnotateFile(ctx context.Context, inPath, outPath string) (*Stats, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return nil, errors.WrapIO("open", inPath, err)
	}
	defer func() { _ = in.Close() }()

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("mkdir", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".annotated-*.tsv")
	if err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	tempPath := tmp.Name()

	stats, err := a.AnnotateTable(ctx, in, tmp)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tempPath)
		var perr *errors.ParseError
		if stderrors.As(err, &perr) && perr.File == "" {
			perr.File = inPath
		}
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, errors.WrapIO("close", tempPath, err)
	}
	if err := os.Chmod(tempPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tempPath)
		return nil, errors.WrapIO("chmod", tempPath, err)
	}
	if err := os.Rename(tempPath, outPath); err != nil {
		_ = os.Remove(tempPath)
		return nil, errors.WrapIO("rename", outPath, err)
	}

	return stats, nil
}

// annotationValues renders the annotation column values for one matched row,
// aligned with annotationColumns. A nil row annotates as unmatched.
func annotationValues(row *registry.Row) []string {
	values := make([]string, len(annotationColumns))
	if row == nil {
		for i := range values {
			values[i] = NotAvailable
		}
		return values
	}
	fields := []string{
		row.CellLine,
		row.CellosaurusName,
		row.CellosaurusAccession,
		row.BTOCellLine,
		row.Organism,
		row.OrganismPart,
		row.SamplingSite,
		row.Age,
		row.DevelopmentalStage,
		row.Sex,
		row.AncestryCategory,
		row.Disease,
		row.CellType,
		row.MaterialType,
	}
	for i, v := range fields {
		if v == "" {
			v = registry.NoAvailable
		}
		values[i] = v
	}
	return values
}
