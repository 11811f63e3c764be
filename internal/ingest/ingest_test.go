package ingest

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	"cmhealth/internal/schema"
	"cmhealth/pkg/models"
)

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := afero.WriteFile(fsys, path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestReadTableCSVResolvesHeaderAliases(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "stap.csv",
		"Software STAP Host,Status,S-TAP Revision\n"+
			"db-prod-01,Active,11.4\n"+
			"db-prod-02,Inactive,11.3\n")

	tbl, err := ReadTable(fsys, "stap.csv", models.KindAgentStatus)
	if err != nil {
		t.Fatalf("read table: %v", err)
	}

	want := []string{schema.ColHost, schema.ColStatus, schema.ColRevision}
	if !reflect.DeepEqual(tbl.Columns, want) {
		t.Fatalf("columns = %v, want %v", tbl.Columns, want)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if got := tbl.Rows[1].Get(schema.ColHost); got != "db-prod-02" {
		t.Fatalf("unexpected host: %s", got)
	}
}

func TestReadTableSkipsBlankRowsAndLeadingEmptyLines(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "cm.csv",
		",\n"+
			"Unit Name,Unit Type\n"+
			"gcol01,Collector\n"+
			",\n"+
			"gcm01,Central Manager\n")

	tbl, err := ReadTable(fsys, "cm.csv", models.KindInventory)
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
}

func TestReadTableCSVAndXLSXAgree(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "cm.csv",
		"Unit Name,Unit Type\n"+
			"gcol01,Collector\n"+
			"gcm01,Central Manager\n")

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	cells := [][]interface{}{
		{"Unit Name", "Unit Type"},
		{"gcol01", "Collector"},
		{"gcm01", "Central Manager"},
	}
	for i, rec := range cells {
		for j, v := range rec {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := wb.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	out, err := fsys.Create("cm.xlsx")
	if err != nil {
		t.Fatalf("create xlsx: %v", err)
	}
	if err := wb.Write(out); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	out.Close()

	fromCSV, err := ReadTable(fsys, "cm.csv", models.KindInventory)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	fromXLSX, err := ReadTable(fsys, "cm.xlsx", models.KindInventory)
	if err != nil {
		t.Fatalf("read xlsx: %v", err)
	}

	if !reflect.DeepEqual(fromCSV.Columns, fromXLSX.Columns) {
		t.Fatalf("columns differ: %v vs %v", fromCSV.Columns, fromXLSX.Columns)
	}
	if !reflect.DeepEqual(fromCSV.Rows, fromXLSX.Rows) {
		t.Fatalf("rows differ: %v vs %v", fromCSV.Rows, fromXLSX.Rows)
	}
}

func TestReadTableRejectsUnsupportedFormat(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "notes.txt", "not a table")
	if _, err := ReadTable(fsys, "notes.txt", models.KindInventory); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestWorkspaceInitAndClean(t *testing.T) {
	fsys := afero.NewMemMapFs()
	ws := NewWorkspace(fsys, "CM")

	if err := ws.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := ws.InitCollectors([]string{"gcol01"}); err != nil {
		t.Fatalf("init collectors: %v", err)
	}

	writeFile(t, fsys, "CM/Central Management/old.csv", "a,b\n")
	writeFile(t, fsys, "CM/STAP status/old.csv", "a,b\n")
	writeFile(t, fsys, "CM/Aggregation Processes/gcol01/old.csv", "a,b\n")

	if err := ws.CleanPreviousRun(); err != nil {
		t.Fatalf("clean: %v", err)
	}

	for _, path := range []string{
		"CM/Central Management/old.csv",
		"CM/STAP status/old.csv",
		"CM/Aggregation Processes/gcol01/old.csv",
	} {
		if ok, _ := afero.Exists(fsys, path); ok {
			t.Fatalf("expected %s removed", path)
		}
	}

	// Collector folders survive cleanup, and init is idempotent.
	if ok, _ := afero.DirExists(fsys, "CM/Aggregation Processes/gcol01"); !ok {
		t.Fatalf("collector folder should survive cleanup")
	}
	if err := ws.Init(); err != nil {
		t.Fatalf("second init: %v", err)
	}
}

func TestWorkspaceDiscoveryFiltersUnsupportedFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	ws := NewWorkspace(fsys, "CM")

	writeFile(t, fsys, "CM/STAP status/stap1.csv", "Host,Status,Revision\n")
	writeFile(t, fsys, "CM/STAP status/readme.txt", "ignore me")
	writeFile(t, fsys, "CM/Aggregation Processes/gcol01/agg.csv", "Activity Type,Status,Date\n")

	stap, err := ws.AgentStatusFiles()
	if err != nil {
		t.Fatalf("agent status files: %v", err)
	}
	if len(stap) != 1 || filepath.Base(stap[0]) != "stap1.csv" {
		t.Fatalf("unexpected stap files: %v", stap)
	}

	act, err := ws.ActivityFiles("gcol01")
	if err != nil {
		t.Fatalf("activity files: %v", err)
	}
	if len(act) != 1 {
		t.Fatalf("unexpected activity files: %v", act)
	}

	// Missing collector folder means no logs, not an error.
	none, err := ws.ActivityFiles("gcol99")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty result for missing folder, got %v, %v", none, err)
	}
}
