// Package obo parses OBO-format ontology files into an in-memory term graph.
// It supports the subset of the format the cellmap pipeline needs: term
// identifiers, names, synonyms and is_a parent links. The resulting Ontology
// is immutable after load and safe for concurrent readers.
package obo

import "sort"

// Term is a single ontology term. A term may have multiple parents; the
// ontology forms a directed graph, not a tree.
type Term struct {
	ID       string
	Name     string
	Synonyms []string
	Parents  []string
	Obsolete bool
}

// Ontology is a mapping from term identifier to term.
type Ontology struct {
	terms map[string]*Term
}

// Term returns the term with the given identifier.
func (o *Ontology) Term(id string) (*Term, bool) {
	t, ok := o.terms[id]
	return t, ok
}

// Name returns the display name for the given identifier, or "" when the
// identifier is not part of the ontology.
func (o *Ontology) Name(id string) string {
	if t, ok := o.terms[id]; ok {
		return t.Name
	}
	return ""
}

// Len returns the number of terms in the ontology.
func (o *Ontology) Len() int {
	return len(o.terms)
}

// IDs returns all term identifiers in lexicographic order.
func (o *Ontology) IDs() []string {
	ids := make([]string, 0, len(o.terms))
	for id := range o.terms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ancestors returns the transitive parents of the given term in breadth-first
// order, nearest first. The walk keeps a visited set, so a cyclic parent
// chain terminates rather than looping. Parent identifiers that do not
// resolve to a loaded term are still reported; they may reference terms the
// file never declares.
func (o *Ontology) Ancestors(id string) []string {
	t, ok := o.terms[id]
	if !ok {
		return nil
	}

	var out []string
	visited := map[string]bool{id: true}
	queue := append([]string(nil), t.Parents...)

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true
		out = append(out, next)

		if parent, ok := o.terms[next]; ok {
			queue = append(queue, parent.Parents...)
		}
	}
	return out
}
