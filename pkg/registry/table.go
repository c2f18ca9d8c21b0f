package registry

import "github.com/agentstation/cellmap/pkg/errors"

// Table is a loaded registry: rows in file order plus a code index.
type Table struct {
	Rows   []Row
	byCode map[string]int
}

// NewTable indexes rows by cell-line code. Duplicate codes violate the
// registry invariant and are rejected.
func NewTable(rows []Row) (*Table, error) {
	t := &Table{
		Rows:   rows,
		byCode: make(map[string]int, len(rows)),
	}
	for i := range rows {
		code := rows[i].CellLine
		if code == "" {
			return nil, errors.NewValidationError("cell line", code, "row without cell-line code")
		}
		if _, dup := t.byCode[code]; dup {
			return nil, errors.NewValidationError("cell line", code, "duplicate cell-line code")
		}
		t.byCode[code] = i
	}
	return t, nil
}

// Get returns the row with the given cell-line code.
func (t *Table) Get(code string) (*Row, bool) {
	i, ok := t.byCode[code]
	if !ok {
		return nil, false
	}
	return &t.Rows[i], true
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
