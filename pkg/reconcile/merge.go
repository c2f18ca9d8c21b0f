package reconcile

import (
	"context"
	"sort"
	"time"

	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/registry"
)

// record is one source-contributed row tagged with its origin. curation
// folds the source-level flag into the row's own tag; recorded keeps the
// row-level tag alone, because only a recorded tag survives a conflict.
type record struct {
	row      registry.Row
	source   SourceID
	curation registry.Curation
	recorded registry.Curation
}

// fieldAccessors lists the merged output fields in header order, excluding
// the code, synonyms, and curation tag, which merge by their own rules.
var fieldAccessors = []struct {
	name string
	get  func(*registry.Row) string
	set  func(*registry.Row, string)
}{
	{"cellosaurus name",
		func(r *registry.Row) string { return r.CellosaurusName },
		func(r *registry.Row, v string) { r.CellosaurusName = v }},
	{"cellosaurus accession",
		func(r *registry.Row) string { return r.CellosaurusAccession },
		func(r *registry.Row, v string) { r.CellosaurusAccession = v }},
	{"bto cell line",
		func(r *registry.Row) string { return r.BTOCellLine },
		func(r *registry.Row, v string) { r.BTOCellLine = v }},
	{"organism",
		func(r *registry.Row) string { return r.Organism },
		func(r *registry.Row, v string) { r.Organism = v }},
	{"organism part",
		func(r *registry.Row) string { return r.OrganismPart },
		func(r *registry.Row, v string) { r.OrganismPart = v }},
	{"sampling site",
		func(r *registry.Row) string { return r.SamplingSite },
		func(r *registry.Row, v string) { r.SamplingSite = v }},
	{"age",
		func(r *registry.Row) string { return r.Age },
		func(r *registry.Row, v string) { r.Age = v }},
	{"developmental stage",
		func(r *registry.Row) string { return r.DevelopmentalStage },
		func(r *registry.Row, v string) { r.DevelopmentalStage = v }},
	{"sex",
		func(r *registry.Row) string { return r.Sex },
		func(r *registry.Row, v string) { r.Sex = v }},
	{"ancestry category",
		func(r *registry.Row) string { return r.AncestryCategory },
		func(r *registry.Row, v string) { r.AncestryCategory = v }},
	{"disease",
		func(r *registry.Row) string { return r.Disease },
		func(r *registry.Row, v string) { r.Disease = v }},
	{"cell type",
		func(r *registry.Row) string { return r.CellType },
		func(r *registry.Row, v string) { r.CellType = v }},
	{"Material type",
		func(r *registry.Row) string { return r.MaterialType },
		func(r *registry.Row, v string) { r.MaterialType = v }},
}

// fieldAccession is the conflict field logged at warning severity: the same
// code mapping to different accessions means two sources disagree on which
// cell line the name denotes.
const fieldAccession = "cellosaurus accession"

// merge groups the loaded rows by canonical code and builds one row per
// group.
func (r *reconciler) merge(ctx context.Context, sources []Source, rowsBySource [][]registry.Row) *Result {
	log := logging.Ctx(ctx)
	start := time.Now()

	result := &Result{
		Metadata: Metadata{StartTime: start},
	}
	stats := Statistics{Sources: len(sources)}
	for _, src := range sources {
		result.Metadata.Sources = append(result.Metadata.Sources, src.ID())
	}

	// Group records by code. Priority order is free: sources are walked in
	// argument order and rows keep their file order within a source.
	groups := make(map[string][]record)
	codes := make([]string, 0, len(rowsBySource[0]))
	for i, rows := range rowsBySource {
		src := sources[i]
		stats.Records += len(rows)
		for _, row := range rows {
			code := registry.Normalize(row.CellLine)
			if code == "" {
				log.Warn().
					Str("source", src.ID().String()).
					Str("accession", row.CellosaurusAccession).
					Msg("skipping record without cell line name")
				stats.Skipped++
				continue
			}
			if _, ok := groups[code]; !ok {
				codes = append(codes, code)
			}
			groups[code] = append(groups[code], record{
				row:      row,
				source:   src.ID(),
				curation: strongest(src.Curation(), row.Curated),
				recorded: row.Curated,
			})
		}
	}
	sort.Strings(codes)

	rows := make([]registry.Row, 0, len(codes))
	for _, code := range codes {
		group := groups[code]
		if len(group) > 1 {
			stats.Merged++
		}

		row, conflicts := mergeGroup(code, group)
		for _, c := range conflicts {
			event := log.Debug()
			if c.Field == fieldAccession {
				event = log.Warn()
			}
			event.
				Str("code", c.Code).
				Str("field", c.Field).
				Str("kept", c.Kept).
				Str("kept_by", c.KeptBy.String()).
				Str("dropped", c.Dropped).
				Str("dropped_by", c.DroppedBy.String()).
				Msg("field conflict resolved by source priority")
		}
		result.Conflicts = append(result.Conflicts, conflicts...)

		if registry.IsMissing(row.Organism) {
			log.Warn().Str("code", code).Msg("dropping cell line without organism")
			result.Dropped = append(result.Dropped, code)
			continue
		}

		if override, ok := r.overrides[code]; ok {
			row.Curated = override
		}
		rows = append(rows, row)
	}

	stats.Rows = len(rows)
	stats.Conflicts = len(result.Conflicts)
	stats.Dropped = len(result.Dropped)

	result.Rows = rows
	result.Metadata.EndTime = time.Now()
	result.Metadata.Duration = result.Metadata.EndTime.Sub(start)
	result.Metadata.Stats = stats
	return result
}

// mergeGroup builds the canonical row for one code: first non-missing value
// per field in priority order, synonym union, strongest curation tag. Field
// conflicts demote the tag to the strongest row-recorded curation.
func mergeGroup(code string, group []record) (registry.Row, []Conflict) {
	out := registry.Row{CellLine: code, Curated: registry.NotCurated}
	var conflicts []Conflict

	for _, f := range fieldAccessors {
		var wonBy SourceID
		for i := range group {
			v := f.get(&group[i].row)
			if registry.IsMissing(v) {
				continue
			}
			if kept := f.get(&out); !registry.IsMissing(kept) {
				if registry.Fold(kept) != registry.Fold(v) {
					conflicts = append(conflicts, Conflict{
						Code:      code,
						Field:     f.name,
						Kept:      kept,
						KeptBy:    wonBy,
						Dropped:   v,
						DroppedBy: group[i].source,
					})
				}
				continue
			}
			f.set(&out, v)
			wonBy = group[i].source
		}
	}

	seen := make(map[string]bool)
	addSynonym := func(s string) {
		if registry.IsMissing(s) {
			return
		}
		key := registry.Fold(s)
		if seen[key] {
			return
		}
		seen[key] = true
		out.Synonyms = append(out.Synonyms, s)
	}
	addSynonym(out.CellosaurusName)
	addSynonym(out.CellosaurusAccession)
	for i := range group {
		for _, s := range group[i].row.Synonyms {
			addSynonym(s)
		}
	}

	for i := range group {
		out.Curated = strongest(out.Curated, group[i].curation)
	}

	// A conflicted row loses curation claims inherited from source-level
	// flags. Row-recorded tags are explicit human or classifier decisions
	// and survive; per-code overrides are applied by the caller.
	if len(conflicts) > 0 {
		out.Curated = registry.NotCurated
		for i := range group {
			out.Curated = strongest(out.Curated, group[i].recorded)
		}
	}

	return out, conflicts
}

// curationRank orders curation tags by confidence.
func curationRank(c registry.Curation) int {
	switch c {
	case registry.ManualCurated:
		return 2
	case registry.AICurated:
		return 1
	default:
		return 0
	}
}

// strongest returns the higher-confidence of two curation tags.
func strongest(a, b registry.Curation) registry.Curation {
	if curationRank(b) > curationRank(a) {
		return b
	}
	return a
}
