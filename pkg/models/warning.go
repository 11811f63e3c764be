package models

import "fmt"

// WarningKind classifies recoverable problems recorded during a run.
type WarningKind string

const (
	// WarnParse marks a row skipped because a cell failed to parse.
	WarnParse WarningKind = "parse"
	// WarnSchema marks a table excluded because required columns are missing.
	WarnSchema WarningKind = "schema"
	// WarnIntegrity marks an identity collision resolved by the documented
	// tie-break.
	WarnIntegrity WarningKind = "integrity"
	// WarnStatus marks an unrecognized agent status classified as active.
	WarnStatus WarningKind = "status"
)

// Warning is one recoverable problem with enough context to surface in the
// final report. Row is 1-based within the source table, 0 when the warning
// is not tied to a row.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Source  string      `json:"source"`
	Row     int         `json:"row,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Row > 0 {
		return fmt.Sprintf("[%s] %s row %d: %s", w.Kind, w.Source, w.Row, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Kind, w.Source, w.Message)
}
