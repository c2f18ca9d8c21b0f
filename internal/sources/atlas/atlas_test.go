package atlas

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/reconcile"
	"github.com/agentstation/cellmap/pkg/registry"
)

const sampleTSV = "Cell Line\tORGANISM\torganism part\tage\tdevelopmental stage\tsex\tancestry category\tdisease\tstudy id\n" +
	"HeLa\tHomo sapiens\tuterine cervix\t31\tadult\tFemale\tAfrican\tcervical adenocarcinoma\tE-MTAB-2706\n" +
	"\n" +
	"A549\tHomo sapiens\tlung\t58\tadult\tMale\t\tlung adenocarcinoma\tE-MTAB-2706\n"

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logging.WithLogger(context.Background(), logging.NewNopLogger())
}

func writeTSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "atlas.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRows(t *testing.T) {
	src := New(writeTSV(t, sampleTSV))
	rows, err := src.Rows(testContext(t))
	require.NoError(t, err)
	require.Len(t, rows, 2, "blank lines are skipped")

	hela := rows[0]
	assert.Equal(t, "HeLa", hela.CellLine)
	assert.Equal(t, "Homo sapiens", hela.Organism, "headers match case-insensitively")
	assert.Equal(t, "uterine cervix", hela.OrganismPart)
	assert.Equal(t, "31", hela.Age)
	assert.Equal(t, "adult", hela.DevelopmentalStage)
	assert.Equal(t, "Female", hela.Sex)
	assert.Equal(t, "African", hela.AncestryCategory)
	assert.Equal(t, "cervical adenocarcinoma", hela.Disease)
	assert.Equal(t, []string{"HeLa"}, hela.Synonyms)

	a549 := rows[1]
	assert.Equal(t, "A549", a549.CellLine)
	assert.Empty(t, a549.AncestryCategory, "empty cells stay missing")
}

func TestRowsSynonymColumn(t *testing.T) {
	src := New(writeTSV(t, "cell line\tsynonyms\nHeLa\tHela; He-La\n"))
	rows, err := src.Rows(testContext(t))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"HeLa", "Hela", "He-La"}, rows[0].Synonyms)
}

func TestRowsSkipsNamelessRows(t *testing.T) {
	src := New(writeTSV(t, "cell line\torganism\n\tHomo sapiens\nHeLa\tHomo sapiens\n"))
	rows, err := src.Rows(testContext(t))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "HeLa", rows[0].CellLine)
}

func TestRowsMissingRequiredColumn(t *testing.T) {
	src := New(writeTSV(t, "organism\tdisease\nHomo sapiens\tcarcinoma\n"))
	_, err := src.Rows(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
	assert.Contains(t, err.Error(), "cell line")
}

func TestRowsEmptyInput(t *testing.T) {
	src := New(writeTSV(t, ""))
	_, err := src.Rows(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
	assert.Contains(t, err.Error(), "header row required")
}

func TestRowsColumnCountMismatch(t *testing.T) {
	src := New(writeTSV(t, "cell line\torganism\nHeLa\tHomo sapiens\tabc\n"))
	_, err := src.Rows(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
	assert.Contains(t, err.Error(), "atlas.tsv:2")
}

func TestRowsMissingFile(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "absent.tsv"))
	_, err := src.Rows(testContext(t))
	require.Error(t, err)
}

func TestOptions(t *testing.T) {
	src := New("atlas.tsv")
	assert.Equal(t, reconcile.SourceAtlas, src.ID())
	assert.Equal(t, registry.NotCurated, src.Curation())

	src = New("atlas.tsv",
		WithID("atlas-2024"),
		WithCuration(registry.AICurated))
	assert.Equal(t, reconcile.SourceID("atlas-2024"), src.ID())
	assert.Equal(t, registry.AICurated, src.Curation())
}
