package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Cell is a single table value as decoded from JSON: string, json.Number,
// bool, or nil. Numbers keep their source text, so 3 and 3.0 are distinct
// cells even though they are numerically equal.
type Cell any

// Column is one named, ordered list of cells.
type Column struct {
	Name  string
	Cells []Cell
}

// Table is an ordered sequence of named columns. Column order is part of the
// table's identity: the same columns in a different order are a different
// table. The JSON form is a single object whose key order is authoritative,
// e.g. {"A": [1, 2], "B": ["x", "y"]}.
type Table struct {
	Columns []Column
}

// ParseTable decodes a table from its JSON object form.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := t.UnmarshalJSON(data); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Rectangular reports whether every column has the same length. A table with
// no columns is rectangular.
func (t Table) Rectangular() bool {
	if len(t.Columns) == 0 {
		return true
	}
	n := len(t.Columns[0].Cells)
	for _, col := range t.Columns[1:] {
		if len(col.Cells) != n {
			return false
		}
	}
	return true
}

// Equal reports exact structural equality: same column names in the same
// order, same lengths, and every cell identical. There is no numeric
// tolerance; 3 and 3.0 do not match.
func (t Table) Equal(other Table) bool {
	if len(t.Columns) != len(other.Columns) {
		return false
	}
	for i, col := range t.Columns {
		o := other.Columns[i]
		if col.Name != o.Name || len(col.Cells) != len(o.Cells) {
			return false
		}
		for j, cell := range col.Cells {
			if !cellEqual(cell, o.Cells[j]) {
				return false
			}
		}
	}
	return true
}

func cellEqual(a, b Cell) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case json.Number:
		bv, ok := b.(json.Number)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

// MarshalJSON writes the table as a single JSON object, preserving column
// order.
func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range t.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(col.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if col.Cells == nil {
			buf.WriteString("[]")
			continue
		}
		cells, err := json.Marshal(col.Cells)
		if err != nil {
			return nil, err
		}
		buf.Write(cells)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object form token by token so that column order
// survives the round trip; encoding/json maps would lose it.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("table: expected object, got %v", tok)
	}

	var cols []Column
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("table: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("table: expected column name, got %v", tok)
		}
		if seen[name] {
			return fmt.Errorf("table: duplicate column %q", name)
		}
		seen[name] = true

		var raw []any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("table: column %q: %w", name, err)
		}
		cells := make([]Cell, len(raw))
		for i, v := range raw {
			switch v.(type) {
			case string, json.Number, bool, nil:
				cells[i] = v
			default:
				return fmt.Errorf("table: column %q: cell %d is not a scalar", name, i)
			}
		}
		cols = append(cols, Column{Name: name, Cells: cells})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("table: %w", err)
	}

	t.Columns = cols
	return nil
}
