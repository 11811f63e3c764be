// Package schema validates parsed tables before any aggregator consumes them.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"cmhealth/pkg/models"
)

// Canonical column names used by every aggregator. Ingestion resolves source
// headers to these keys; nothing downstream looks at raw header spellings.
const (
	ColUnitName     = "unit name"
	ColUnitType     = "unit type"
	ColHost         = "host"
	ColStatus       = "status"
	ColRevision     = "revision"
	ColActivityType = "activity type"
	ColDate         = "date"
)

// Error reports a table whose header is missing required columns. The table
// is excluded from aggregation; the run itself continues.
type Error struct {
	Source  string
	Kind    string
	Missing []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("table %s (%s): missing required columns: %s",
		e.Source, e.Kind, strings.Join(e.Missing, ", "))
}

// required columns per table kind.
var required = map[string][]string{
	models.KindInventory:   {ColUnitName, ColUnitType},
	models.KindAgentStatus: {ColHost, ColStatus, ColRevision},
	models.KindActivityLog: {ColActivityType, ColStatus, ColDate},
}

// aliases maps normalized source headers to canonical column names. The
// upstream exports are not consistent about header spelling across appliance
// versions.
var aliases = map[string]string{
	"software stap host": ColHost,
	"stap host":          ColHost,
	"s-tap host":         ColHost,
	"version":            ColRevision,
	"s-tap revision":     ColRevision,
	"stap revision":      ColRevision,
	"activity":           ColActivityType,
	"process":            ColActivityType,
	"execution status":   ColStatus,
	"start time":         ColDate,
	"run time":           ColDate,
	"timestamp":          ColDate,
}

// CanonicalColumn resolves a raw source header to its canonical column name.
// Matching trims whitespace and is case-insensitive.
func CanonicalColumn(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if canon, ok := aliases[h]; ok {
		return canon
	}
	return h
}

// Validate checks that the table carries the required columns for its kind.
// It returns the table unchanged on success and a *Error naming the missing
// columns otherwise.
func Validate(t *models.Table) (*models.Table, error) {
	if t == nil {
		return nil, fmt.Errorf("nil table")
	}
	req, ok := required[t.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown table kind: %s", t.Kind)
	}

	var missing []string
	for _, col := range req {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &Error{Source: t.Source, Kind: t.Kind, Missing: missing}
	}
	return t, nil
}
