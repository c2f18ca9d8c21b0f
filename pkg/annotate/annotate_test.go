package annotate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cellmap/pkg/annotate"
	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/registry"
)

// parseOutput splits annotated TSV output into header and rows keyed by
// column name (first occurrence wins).
func parseOutput(t *testing.T, s string) ([]string, []map[string]string) {
	t.Helper()
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	require.NotEmpty(t, lines)
	header := strings.Split(lines[0], "\t")

	rows := make([]map[string]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells := strings.Split(line, "\t")
		require.Len(t, cells, len(header))
		row := make(map[string]string, len(cells))
		for i, name := range header {
			if _, ok := row[name]; !ok {
				row[name] = cells[i]
			}
		}
		rows = append(rows, row)
	}
	return header, rows
}

func TestAnnotateTable(t *testing.T) {
	input := strings.Join([]string{
		"source name\tcharacteristics[cell line]\tassay",
		"sample 1\tHELA\trna-seq",
		"sample 2\tHela S3\trna-seq",
		"sample 3\tXYZ9999\trna-seq",
	}, "\n") + "\n"

	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	var out strings.Builder
	stats, err := annotate.New(testTable(t)).AnnotateTable(ctx, strings.NewReader(input), &out)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Labels)
	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, 1, stats.Unmatched)
	assert.Equal(t, []string{"XYZ9999"}, stats.UnmatchedLabels)

	header, rows := parseOutput(t, out.String())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"source name", "characteristics[cell line]", "assay"}, header[:3],
		"input columns pass through in place")
	assert.Equal(t, "match rule", header[len(header)-1])
	assert.Len(t, header, 3+14+1)

	exact := rows[0]
	assert.Equal(t, "sample 1", exact["source name"])
	assert.Equal(t, "rna-seq", exact["assay"])
	assert.Equal(t, "HELA", exact["cell line"])
	assert.Equal(t, "HeLa", exact["cellosaurus name"])
	assert.Equal(t, "CVCL_0030", exact["cellosaurus accession"])
	assert.Equal(t, "Homo sapiens", exact["organism"])
	assert.Equal(t, "30", exact["age"])
	assert.Equal(t, registry.NoAvailable, exact["organism part"],
		"fields the registry itself lacks keep the registry sentinel")
	assert.Equal(t, registry.NoAvailable, exact["material type"])
	assert.Equal(t, "cell line", exact["match rule"])

	synonym := rows[1]
	assert.Equal(t, "HELA", synonym["cell line"])
	assert.Equal(t, "synonym", synonym["match rule"])

	unmatched := rows[2]
	assert.Equal(t, "sample 3", unmatched["source name"], "unmatched rows are still emitted")
	assert.Equal(t, annotate.NotAvailable, unmatched["cell line"])
	assert.Equal(t, annotate.NotAvailable, unmatched["organism"])
	assert.Equal(t, annotate.NotAvailable, unmatched["material type"])
	assert.Equal(t, "none", unmatched["match rule"])

	assert.Equal(t, 1, strings.Count(tl.Output(), "label not found in registry"))
	assert.True(t, tl.Contains("labels without a registry match"))
}

func TestAnnotateTableOverwritesExistingColumns(t *testing.T) {
	input := strings.Join([]string{
		"source name\tcharacteristics[cell line]\tOrganism\tsex",
		"sample 1\tHELA\thuman\tunknown",
	}, "\n") + "\n"

	var out strings.Builder
	_, err := annotate.New(testTable(t)).AnnotateTable(testContext(t), strings.NewReader(input), &out)
	require.NoError(t, err)

	header, rows := parseOutput(t, out.String())
	assert.Len(t, header, 4+12+1, "existing annotation columns are reused, not duplicated")
	assert.Equal(t, "Organism", header[2], "input header casing is preserved")

	row := rows[0]
	assert.Equal(t, "Homo sapiens", row["Organism"], "stale value overwritten in place")
	assert.Equal(t, "Female", row["sex"])
}

func TestAnnotateTableMissingRequiredColumn(t *testing.T) {
	input := "source name\tassay\nsample 1\trna-seq\n"

	_, err := annotate.New(testTable(t)).AnnotateTable(testContext(t), strings.NewReader(input), &strings.Builder{})
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
	assert.Contains(t, err.Error(), "characteristics[cell line]")
}

func TestAnnotateTableEmptyInput(t *testing.T) {
	_, err := annotate.New(testTable(t)).AnnotateTable(testContext(t), strings.NewReader(""), &strings.Builder{})
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
}

func TestAnnotateTableHeaderOnly(t *testing.T) {
	input := "source name\tcharacteristics[cell line]\n"

	var out strings.Builder
	stats, err := annotate.New(testTable(t)).AnnotateTable(testContext(t), strings.NewReader(input), &out)
	require.NoError(t, err, "an empty label list is not an error")
	assert.Zero(t, stats.Labels)
	assert.Empty(t, stats.UnmatchedLabels)

	_, rows := parseOutput(t, out.String())
	assert.Empty(t, rows)
}

func TestAnnotateTableColumnCountMismatch(t *testing.T) {
	input := strings.Join([]string{
		"source name\tcharacteristics[cell line]\tassay",
		"sample 1\tHELA",
	}, "\n") + "\n"

	_, err := annotate.New(testTable(t)).AnnotateTable(testContext(t), strings.NewReader(input), &strings.Builder{})
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
	assert.Contains(t, err.Error(), "line 2")
}

func TestAnnotateTableSkipsBlankLines(t *testing.T) {
	input := "source name\tcharacteristics[cell line]\nsample 1\tHELA\n\n"

	var out strings.Builder
	stats, err := annotate.New(testTable(t)).AnnotateTable(testContext(t), strings.NewReader(input), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Labels)
}

func TestAnnotateFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "samples.tsv")
	outPath := filepath.Join(dir, "out", "annotated.tsv")

	input := "source name\tcharacteristics[cell line]\nsample 1\tHELA\n"
	require.NoError(t, os.WriteFile(inPath, []byte(input), 0o644))

	stats, err := annotate.New(testTable(t)).AnnotateFile(testContext(t), inPath, outPath)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Matched)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	_, rows := parseOutput(t, string(data))
	require.Len(t, rows, 1)
	assert.Equal(t, "HELA", rows[0]["cell line"])

	entries, err := os.ReadDir(filepath.Dir(outPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestAnnotateFileLeavesNoOutputOnError(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "samples.tsv")
	outPath := filepath.Join(dir, "annotated.tsv")

	require.NoError(t, os.WriteFile(inPath, []byte("source name\tassay\n"), 0o644))

	_, err := annotate.New(testTable(t)).AnnotateFile(testContext(t), inPath, outPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "samples.tsv", "parse errors carry the input path")

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "no partial output on malformed input")
}
