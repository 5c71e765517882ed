package tabular

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema is wrapped by every SchemaError.
var ErrSchema = errors.New("schema error")

// Table names used in schema errors.
const (
	TableBars  = "bars"
	TableFills = "fills"
)

// Required columns per table.
var (
	requiredBarColumns  = []string{"ts", "open", "high", "low", "close", "volume"}
	requiredFillColumns = []string{"ts", "qty"}
)

// SchemaError reports required columns missing from an input table.
type SchemaError struct {
	Table   string
	Missing []string // required columns not present, in canonical order
	Columns []string // lowercased header as read
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s missing: [%s] (have: [%s])",
		e.Table,
		strings.Join(e.Missing, ", "),
		strings.Join(e.Columns, ", "),
	)
}

// Unwrap lets errors.Is match ErrSchema.
func (e *SchemaError) Unwrap() error { return ErrSchema }

// header maps lowercased column names to their position.
// When a name repeats after lowercasing, the first position wins.
type header struct {
	names []string
	index map[string]int
}

func parseHeader(record []string) header {
	h := header{
		names: make([]string, len(record)),
		index: make(map[string]int, len(record)),
	}
	for i, name := range record {
		lower := strings.ToLower(name)
		if i == 0 {
			lower = strings.TrimPrefix(lower, "\ufeff")
		}
		h.names[i] = lower
		if _, ok := h.index[lower]; !ok {
			h.index[lower] = i
		}
	}
	return h
}

func (h header) has(name string) bool {
	_, ok := h.index[name]
	return ok
}

// require returns a SchemaError when any of the named columns is absent.
func (h header) require(table string, names []string) error {
	var missing []string
	for _, n := range names {
		if !h.has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &SchemaError{Table: table, Missing: missing, Columns: h.names}
}

// cell returns the named column of a record, or "" when the record is short.
func (h header) cell(record []string, name string) string {
	i, ok := h.index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
