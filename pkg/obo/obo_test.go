package obo_test

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/obo"
)

const sampleOBO = `format-version: 1.2
data-version: 2025-06-01
ontology: bto

[Term]
id: BTO:0000000
name: tissues, cell types and enzyme sources

[Term]
id: BTO:0000018
name: HeLa cell
synonym: "HELA cell" RELATED []
synonym: "HeLa" EXACT []
is_a: BTO:0000093 ! cervical carcinoma cell line
is_a: BTO:0000000 ! tissues, cell types and enzyme sources

[Typedef]
id: part_of
name: part of

[Term]
id: BTO:0000093
name: cervical carcinoma cell line
is_a: BTO:0000000 ! tissues, cell types and enzyme sources
`

func TestParse(t *testing.T) {
	ont, err := obo.Parse(strings.NewReader(sampleOBO))
	require.NoError(t, err)
	require.NotNil(t, ont)

	assert.Equal(t, 3, ont.Len(), "typedef stanzas must not become terms")

	hela, ok := ont.Term("BTO:0000018")
	require.True(t, ok)
	assert.Equal(t, "HeLa cell", hela.Name)
	assert.Equal(t, []string{"HELA cell", "HeLa"}, hela.Synonyms)
	assert.Equal(t, []string{"BTO:0000093", "BTO:0000000"}, hela.Parents)

	assert.Equal(t, "cervical carcinoma cell line", ont.Name("BTO:0000093"))
	assert.Equal(t, "", ont.Name("BTO:9999999"))
}

func TestParseObsoleteTermRetained(t *testing.T) {
	src := `[Term]
id: CL:0000001
name: obsolete primary cell line cell
is_obsolete: true
`
	ont, err := obo.Parse(strings.NewReader(src))
	require.NoError(t, err)

	term, ok := ont.Term("CL:0000001")
	require.True(t, ok, "obsolete terms stay resolvable")
	assert.True(t, term.Obsolete)
}

func TestParseMissingID(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "id-less stanza mid-file",
			src: `[Term]
name: orphan

[Term]
id: BTO:0000001
name: culture condition
`,
		},
		{
			name: "id-less stanza at EOF",
			src: `[Term]
id: BTO:0000001
name: culture condition

[Term]
name: trailing orphan
`,
		},
		{
			name: "empty term stanza",
			src: `[Term]

[Term]
id: BTO:0000001
name: culture condition
`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ont, err := obo.Parse(strings.NewReader(tc.src))
			require.Error(t, err)
			assert.Nil(t, ont, "no partial ontology on malformed input")
			assert.True(t, errors.IsMalformedInput(err))
		})
	}
}

func TestParseHeaderOnly(t *testing.T) {
	ont, err := obo.Parse(strings.NewReader("format-version: 1.2\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, ont.Len())
}

func TestAncestors(t *testing.T) {
	// Diamond: D -> B, C; B -> A; C -> A.
	src := `[Term]
id: T:A
name: a

[Term]
id: T:B
name: b
is_a: T:A ! a

[Term]
id: T:C
name: c
is_a: T:A ! a

[Term]
id: T:D
name: d
is_a: T:B ! b
is_a: T:C ! c
`
	ont, err := obo.Parse(strings.NewReader(src))
	require.NoError(t, err)

	got := ont.Ancestors("T:D")
	assert.Equal(t, []string{"T:B", "T:C", "T:A"}, got, "breadth-first, nearest parents first, no duplicates")

	assert.Nil(t, ont.Ancestors("T:MISSING"))
	assert.Empty(t, ont.Ancestors("T:A"))
}

func TestAncestorsCycleSafe(t *testing.T) {
	src := `[Term]
id: T:X
name: x
is_a: T:Y ! y

[Term]
id: T:Y
name: y
is_a: T:X ! x
`
	ont, err := obo.Parse(strings.NewReader(src))
	require.NoError(t, err)

	got := ont.Ancestors("T:X")
	assert.Equal(t, []string{"T:Y"}, got, "cycle must terminate, self excluded")
}

func TestParseFileGzip(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "mini.obo")
	require.NoError(t, os.WriteFile(plain, []byte(sampleOBO), 0o644))

	compressed := filepath.Join(dir, "mini.obo.gz")
	f, err := os.Create(compressed)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sampleOBO))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	for _, path := range []string{plain, compressed} {
		ont, err := obo.ParseFile(path)
		require.NoError(t, err, path)
		assert.Equal(t, 3, ont.Len())
	}
}

func TestParseFileErrorCarriesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.obo")
	require.NoError(t, os.WriteFile(path, []byte("[Term]\nname: no id\n"), 0o644))

	_, err := obo.ParseFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.obo")
}

// Declared synonym sets survive parsing for every declared identifier.
func TestParseSynonymRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "terms")

		type decl struct {
			id   string
			syns []string
		}
		decls := make([]decl, 0, n)
		seen := map[string]bool{}

		var sb strings.Builder
		sb.WriteString("format-version: 1.2\n\n")
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("T:%07d", rapid.IntRange(0, 999999).Draw(rt, "id"))
			if seen[id] {
				continue
			}
			seen[id] = true

			synCount := rapid.IntRange(0, 4).Draw(rt, "synCount")
			syns := make([]string, 0, synCount)
			for j := 0; j < synCount; j++ {
				syns = append(syns, rapid.StringMatching(`[A-Za-z][A-Za-z0-9 -]{0,12}`).Draw(rt, "syn"))
			}

			sb.WriteString("[Term]\n")
			sb.WriteString("id: " + id + "\n")
			sb.WriteString("name: term " + id + "\n")
			for _, s := range syns {
				sb.WriteString(fmt.Sprintf("synonym: %q RELATED []\n", s))
			}
			sb.WriteString("\n")
			decls = append(decls, decl{id: id, syns: syns})
		}

		ont, err := obo.Parse(strings.NewReader(sb.String()))
		require.NoError(rt, err)

		for _, d := range decls {
			term, ok := ont.Term(d.id)
			require.True(rt, ok, "declared id %s must be resolvable", d.id)

			want := append([]string(nil), d.syns...)
			got := append([]string(nil), term.Synonyms...)
			sort.Strings(want)
			sort.Strings(got)
			require.Equal(rt, want, got)
		}
	})
}
