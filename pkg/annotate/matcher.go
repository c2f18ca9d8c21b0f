// Package annotate resolves free-text cell-line labels against a canonical
// registry and rewrites SDRF-style sample tables with the matched
// annotations.
//
// A label resolves through four rules in strict priority order: exact
// cell-line code (case-sensitive), cellosaurus name, cellosaurus accession,
// then substring containment in a synonym. The first rule with any hit
// decides; several hits under the same rule are an ambiguity, resolved
// deterministically toward the lexicographically smallest code and logged
// for review. A label no rule resolves is annotated with the "not available"
// sentinel and logged, never dropped.
package annotate

import (
	"context"
	"sort"
	"strings"

	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/registry"
)

// NotAvailable is the sentinel written for every annotation field of an
// unmatched label.
const NotAvailable = "not available"

// Rule names the matching rule that resolved a label, written to the audit
// column.
type Rule string

// String returns the string representation of a rule.
func (r Rule) String() string {
	return string(r)
}

// Matching rules in priority order.
const (
	RuleCode      Rule = "cell line"
	RuleName      Rule = "cellosaurus name"
	RuleAccession Rule = "cellosaurus accession"
	RuleSynonym   Rule = "synonym"
	RuleNone      Rule = "none"
)

// Match pairs a label with at most one registry row and the rule that
// produced it. Row is nil when no rule matched.
type Match struct {
	Label     string
	Row       *registry.Row
	Rule      Rule
	Ambiguous bool
}

// Matched reports whether the label resolved to a row.
func (m Match) Matched() bool {
	return m.Row != nil
}

// Matcher resolves labels against one loaded registry. It is read-only
// after construction and safe for concurrent use.
type Matcher struct {
	table       *registry.Table
	byName      map[string][]*registry.Row
	byAccession map[string][]*registry.Row
}

// NewMatcher indexes a registry table for label matching.
func NewMatcher(table *registry.Table) *Matcher {
	m := &Matcher{
		table:       table,
		byName:      make(map[string][]*registry.Row, table.Len()),
		byAccession: make(map[string][]*registry.Row, table.Len()),
	}
	for i := range table.Rows {
		row := &table.Rows[i]
		if !registry.IsMissing(row.CellosaurusName) {
			key := registry.Fold(row.CellosaurusName)
			m.byName[key] = append(m.byName[key], row)
		}
		if !registry.IsMissing(row.CellosaurusAccession) {
			key := registry.Fold(row.CellosaurusAccession)
			m.byAccession[key] = append(m.byAccession[key], row)
		}
	}
	return m
}

// Match resolves one label. Ambiguities resolve to the lexicographically
// smallest cell-line code and log a warning.
func (m *Matcher) Match(ctx context.Context, label string) Match {
	label = strings.TrimSpace(label)
	if label == "" {
		return Match{Label: label, Rule: RuleNone}
	}

	if row, ok := m.table.Get(label); ok {
		return Match{Label: label, Row: row, Rule: RuleCode}
	}

	folded := registry.Fold(label)

	if rows := m.byName[folded]; len(rows) > 0 {
		return m.pick(ctx, label, RuleName, rows)
	}
	if rows := m.byAccession[folded]; len(rows) > 0 {
		return m.pick(ctx, label, RuleAccession, rows)
	}

	var candidates []*registry.Row
	for i := range m.table.Rows {
		row := &m.table.Rows[i]
		for _, syn := range row.Synonyms {
			if registry.IsMissing(syn) {
				continue
			}
			if strings.Contains(registry.Fold(syn), folded) {
				candidates = append(candidates, row)
				break
			}
		}
	}
	if len(candidates) > 0 {
		return m.pick(ctx, label, RuleSynonym, candidates)
	}

	return Match{Label: label, Rule: RuleNone}
}

// pick resolves same-rule candidates deterministically.
func (m *Matcher) pick(ctx context.Context, label string, rule Rule, rows []*registry.Row) Match {
	chosen := rows[0]
	for _, row := range rows[1:] {
		if row.CellLine < chosen.CellLine {
			chosen = row
		}
	}

	match := Match{Label: label, Row: chosen, Rule: rule}
	if len(rows) > 1 {
		match.Ambiguous = true
		codes := make([]string, len(rows))
		for i, row := range rows {
			codes[i] = row.CellLine
		}
		sort.Strings(codes)
		logging.Ctx(ctx).Warn().
			Err(errors.NewAmbiguousMatchError(label, rule.String(), codes, chosen.CellLine)).
			Str("label", label).
			Msg("ambiguous label match")
	}
	return match
}
