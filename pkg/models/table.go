package models

import "strings"

// Table kinds accepted by the pipeline.
const (
	KindInventory   = "inventory"
	KindAgentStatus = "agent-status"
	KindActivityLog = "activity-log"
)

// Row is one spreadsheet row keyed by canonical column name.
type Row map[string]string

// Get returns a cell value with surrounding whitespace trimmed.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Table is an ordered sequence of rows parsed from one source file.
type Table struct {
	Source  string   `json:"source"`
	Kind    string   `json:"kind"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// HasColumn reports whether the table header contains the canonical column.
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// NormalizeIdentity folds a host or node name into the join key used across
// all sources: trimmed and lower-cased. Raw strings are never compared
// downstream.
func NormalizeIdentity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
