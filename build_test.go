package cellmap

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/registry"
)

const buildCatalog = `ID   HeLa
AC   CVCL_0030
AS   CVCL_E164
SY   Hela; He La
OX   NCBI_TaxID=9606; ! Homo sapiens
SX   Female
AG   31Y
CA   Cancer cell line
DI   NCIt; C27677; Human papillomavirus-related cervical adenocarcinoma
DR   BTO; BTO:0000567
CC   Derived from site: In situ; Uterus, cervix; UBERON=UBERON_0012249.
//
ID   A549
AC   CVCL_0023
OX   NCBI_TaxID=9606; ! Homo sapiens
CA   Cancer cell line
//
ID   Orphan-1
AC   CVCL_8888
//
`

const buildBTO = `format-version: 1.2

[Term]
id: BTO:0000567
name: HeLa cell
`

const buildPassports = `model_id,model_name,synonyms,tissue,cancer_type,sample_site,rrid,species,gender,age_at_sampling,ethnicity,model_type
SIDM00827,HeLa,He-La,Cervix,Cervical Carcinoma,"Cervix, uterine",CVCL_0030,Homo sapiens,Female,31,African,Cell Line
SIDM00042,A549,,Lung,Lung Carcinoma,,CVCL_0023,Homo sapiens,Male,58,,Cell Line
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func buildFixtures(t *testing.T) (catalogPath, btoPath, manifestPath, outputPath string) {
	t.Helper()
	dir := t.TempDir()
	catalogPath = writeFile(t, dir, "cellosaurus.txt", buildCatalog)
	btoPath = writeFile(t, dir, "bto.obo", buildBTO)
	csvPath := writeFile(t, dir, "model_list.csv", buildPassports)
	manifest := fmt.Sprintf("sources:\n  - kind: passports\n    path: %q\n    curation: AI curated\n", csvPath)
	manifestPath = writeFile(t, dir, "sources.yaml", manifest)
	outputPath = filepath.Join(dir, "cell-lines.tsv")
	return catalogPath, btoPath, manifestPath, outputPath
}

func findRow(rows []registry.Row, code string) (registry.Row, bool) {
	for _, row := range rows {
		if row.CellLine == code {
			return row, true
		}
	}
	return registry.Row{}, false
}

func TestBuild(t *testing.T) {
	catalogPath, btoPath, manifestPath, outputPath := buildFixtures(t)

	cm, err := New(
		WithCatalog(catalogPath),
		WithOntologies(btoPath, ""),
		WithManifest(manifestPath),
		WithOutput(outputPath),
	)
	require.NoError(t, err)

	result, err := cm.Build(testContext(t))
	require.NoError(t, err)
	require.Len(t, result.Rows, 2, "the catalog entry without an organism never reaches the merge")
	assert.Empty(t, result.Dropped)

	a549, hela := result.Rows[0], result.Rows[1]
	assert.Equal(t, "A549", a549.CellLine)
	assert.Equal(t, "HELA", hela.CellLine, "rows sort by cell-line code")

	// Catalog values win conflicts; supplementary values fill the gaps.
	assert.Equal(t, "HeLa", hela.CellosaurusName)
	assert.Equal(t, "HeLa cell", hela.BTOCellLine)
	assert.Equal(t, "In situ; Uterus, cervix", hela.SamplingSite)
	assert.Equal(t, "African", hela.AncestryCategory)
	assert.Equal(t, registry.NotCurated, hela.Curated,
		"field conflicts demote the manifest's AI-curated flag")
	assert.Equal(t, []string{"HeLa", "CVCL_0030", "He La", "CVCL_E164", "He-La"}, hela.Synonyms)

	assert.Equal(t, "Male", a549.Sex)
	assert.Equal(t, "Cancer cell line", a549.MaterialType, "catalog wins the material type conflict")
	assert.True(t, result.HasConflicts())

	// The written registry round-trips.
	table, err := registry.Load(outputPath)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	// The built table serves lookups without reloading.
	match, err := cm.Lookup(testContext(t), "He-La")
	require.NoError(t, err)
	require.True(t, match.Matched())
	assert.Equal(t, "HELA", match.Row.CellLine)
}

func TestBuildMergeExisting(t *testing.T) {
	catalogPath, btoPath, manifestPath, outputPath := buildFixtures(t)

	existing := []registry.Row{
		{
			CellLine:             "HELA",
			CellosaurusName:      "HeLa",
			CellosaurusAccession: "CVCL_0030",
			Organism:             "Homo sapiens",
			Curated:              registry.ManualCurated,
		},
		{
			CellLine: "RETIRED1",
			Organism: "Homo sapiens",
			Synonyms: []string{"Retired-1"},
			Curated:  registry.ManualCurated,
		},
	}
	require.NoError(t, registry.Save(outputPath, existing))

	cm, err := New(
		WithCatalog(catalogPath),
		WithOntologies(btoPath, ""),
		WithManifest(manifestPath),
		WithOutput(outputPath),
		WithMergeExisting(true),
	)
	require.NoError(t, err)

	result, err := cm.Build(testContext(t))
	require.NoError(t, err)
	require.Len(t, result.Rows, 3, "rows only the old registry carries survive the rebuild")

	hela, ok := findRow(result.Rows, "HELA")
	require.True(t, ok)
	assert.Equal(t, registry.ManualCurated, hela.Curated, "manual curation survives the rebuild")
	assert.Equal(t, "African", hela.AncestryCategory, "fresh sources still fill the fields")

	retired, ok := findRow(result.Rows, "RETIRED1")
	require.True(t, ok)
	assert.Equal(t, registry.ManualCurated, retired.Curated)
	assert.Equal(t, []string{"Retired-1"}, retired.Synonyms)
}

func TestBuildMergeExistingFirstRun(t *testing.T) {
	catalogPath, btoPath, manifestPath, outputPath := buildFixtures(t)

	cm, err := New(
		WithCatalog(catalogPath),
		WithOntologies(btoPath, ""),
		WithManifest(manifestPath),
		WithOutput(outputPath),
		WithMergeExisting(true),
	)
	require.NoError(t, err)

	result, err := cm.Build(testContext(t))
	require.NoError(t, err, "a missing registry merges as empty on the first run")
	assert.Len(t, result.Rows, 2)
}

func TestBuildMergeExistingWithoutPath(t *testing.T) {
	catalogPath, _, _, _ := buildFixtures(t)

	cm, err := New(WithCatalog(catalogPath), WithMergeExisting(true))
	require.NoError(t, err)

	_, err = cm.Build(testContext(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merging requires a registry or output path")
}

func TestBuildNoSources(t *testing.T) {
	cm, err := New()
	require.NoError(t, err)

	_, err = cm.Build(testContext(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sources configured")
}

func TestBuildMalformedCatalogWritesNothing(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "cellosaurus.txt", "ID   Broken\nAC   CVCL_0001\n")
	outputPath := filepath.Join(dir, "cell-lines.tsv")

	cm, err := New(WithCatalog(catalogPath), WithOutput(outputPath))
	require.NoError(t, err)

	_, err = cm.Build(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))

	_, statErr := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(statErr), "no partial output on parse failure")
}

func TestBuildMalformedOntology(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "cellosaurus.txt", buildCatalog)
	btoPath := writeFile(t, dir, "bto.obo", "[Term]\nname: orphan stanza\n")

	cm, err := New(WithCatalog(catalogPath), WithOntologies(btoPath, ""))
	require.NoError(t, err)

	_, err = cm.Build(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
}

func TestBuildOverrides(t *testing.T) {
	catalogPath, btoPath, manifestPath, outputPath := buildFixtures(t)

	cm, err := New(
		WithCatalog(catalogPath),
		WithOntologies(btoPath, ""),
		WithManifest(manifestPath),
		WithOutput(outputPath),
		WithOverrides(map[string]registry.Curation{"A549": registry.ManualCurated}),
	)
	require.NoError(t, err)

	result, err := cm.Build(testContext(t))
	require.NoError(t, err)

	a549, ok := findRow(result.Rows, "A549")
	require.True(t, ok)
	assert.Equal(t, registry.ManualCurated, a549.Curated)
}
