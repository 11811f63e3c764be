package schema

import (
	"errors"
	"strings"
	"testing"

	"cmhealth/pkg/models"
)

func TestValidateAcceptsCompleteInventoryTable(t *testing.T) {
	tbl := &models.Table{
		Source:  "cm.csv",
		Kind:    models.KindInventory,
		Columns: []string{ColUnitName, ColUnitType},
	}

	got, err := Validate(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != tbl {
		t.Fatalf("expected table returned unchanged")
	}
}

func TestValidateReportsMissingColumns(t *testing.T) {
	tbl := &models.Table{
		Source:  "stap.xlsx",
		Kind:    models.KindAgentStatus,
		Columns: []string{ColHost},
	}

	_, err := Validate(tbl)
	if err == nil {
		t.Fatalf("expected schema error")
	}

	var schemaErr *Error
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if schemaErr.Source != "stap.xlsx" {
		t.Fatalf("unexpected source: %s", schemaErr.Source)
	}
	if len(schemaErr.Missing) != 2 {
		t.Fatalf("expected 2 missing columns, got %v", schemaErr.Missing)
	}
	if !strings.Contains(err.Error(), ColRevision) || !strings.Contains(err.Error(), ColStatus) {
		t.Fatalf("error should name missing columns: %v", err)
	}
}

func TestValidateRejectsUnknownKind(t *testing.T) {
	tbl := &models.Table{Source: "x.csv", Kind: "mystery"}
	if _, err := Validate(tbl); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestCanonicalColumnResolvesAliases(t *testing.T) {
	cases := map[string]string{
		"  Software STAP Host ": ColHost,
		"S-TAP Revision":        ColRevision,
		"Version":               ColRevision,
		"Execution Status":      ColStatus,
		"Start Time":            ColDate,
		"Activity":              ColActivityType,
		"Unit Name":             ColUnitName,
		"Unit Type":             ColUnitType,
	}
	for header, want := range cases {
		if got := CanonicalColumn(header); got != want {
			t.Fatalf("CanonicalColumn(%q) = %q, want %q", header, got, want)
		}
	}
}
