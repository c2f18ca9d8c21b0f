package passports

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

const sampleCSV = `model_id,model_name,synonyms,tissue,cancer_type,sample_site,rrid,species,gender,age_at_sampling,ethnicity,model_type
SIDM00827,HeLa,Hela;He-La,Cervix,Cervical Carcinoma,"Cervix, uterine",CVCL_0030,Homo sapiens,Female,31,African,Cell Line
SIDM00001,,,,,,,,,,,
SIDM00042,A549,,Lung,Lung Carcinoma,,CVCL_0023,Homo sapiens,Male,58,,Cell Line
`

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logging.WithLogger(context.Background(), logging.NewNopLogger())
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model_list.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRows(t *testing.T) {
	src := New(writeCSV(t, sampleCSV))
	rows, err := src.Rows(testContext(t))
	require.NoError(t, err)
	require.Len(t, rows, 2, "the row without a model name is skipped")

	hela := rows[0]
	assert.Equal(t, "HeLa", hela.CellLine)
	assert.Empty(t, hela.CellosaurusName, "the model name is not a Cellosaurus name")
	assert.Equal(t, "CVCL_0030", hela.CellosaurusAccession)
	assert.Equal(t, "Homo sapiens", hela.Organism)
	assert.Equal(t, "Cervix", hela.OrganismPart)
	assert.Equal(t, "Cervix, uterine", hela.SamplingSite, "quoted comma survives")
	assert.Equal(t, "Cervical Carcinoma", hela.Disease)
	assert.Equal(t, "31", hela.Age)
	assert.Equal(t, "Female", hela.Sex)
	assert.Equal(t, "African", hela.AncestryCategory)
	assert.Equal(t, "Cell Line", hela.MaterialType)
	assert.Equal(t, []string{"HeLa", "Hela", "He-La"}, hela.Synonyms,
		"the model name leads the synonym set")

	a549 := rows[1]
	assert.Equal(t, "A549", a549.CellLine)
	assert.Equal(t, []string{"A549"}, a549.Synonyms)
	assert.Empty(t, a549.AncestryCategory)
}

func TestRowsHeaderCaseInsensitive(t *testing.T) {
	src := New(writeCSV(t, "Model_Name,SPECIES\nHeLa,Homo sapiens\n"))
	rows, err := src.Rows(testContext(t))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "HeLa", rows[0].CellLine)
	assert.Equal(t, "Homo sapiens", rows[0].Organism)
}

func TestRowsMissingRequiredColumn(t *testing.T) {
	src := New(writeCSV(t, "model_id,species\nSIDM00827,Homo sapiens\n"))
	_, err := src.Rows(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
	assert.Contains(t, err.Error(), "model_name")
}

func TestRowsEmptyInput(t *testing.T) {
	src := New(writeCSV(t, ""))
	_, err := src.Rows(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
	assert.Contains(t, err.Error(), "header row required")
}

func TestRowsColumnCountMismatch(t *testing.T) {
	src := New(writeCSV(t, "model_name,species\nHeLa,Homo sapiens,extra\n"))
	_, err := src.Rows(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
	assert.Contains(t, err.Error(), "wrong number of fields")
}

func TestRowsMissingFile(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "absent.csv"))
	_, err := src.Rows(testContext(t))
	require.Error(t, err)
}

func TestOptions(t *testing.T) {
	src := New("model_list.csv")
	assert.Equal(t, reconcile.SourcePassports, src.ID())
	assert.Equal(t, registry.NotCurated, src.Curation())

	src = New("model_list.csv",
		WithID("passports-2024"),
		WithCuration(registry.AICurated))
	assert.Equal(t, reconcile.SourceID("passports-2024"), src.ID())
	assert.Equal(t, registry.AICurated, src.Curation())
}
