// Package ingest reads operational spreadsheets from the workspace into
// parsed tables.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	"cmhealth/internal/schema"
	"cmhealth/pkg/models"
)

// SupportedTable reports whether the path has a readable table extension.
func SupportedTable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}

// ReadTable parses one spreadsheet file into a Table of the given kind.
// Headers are resolved to canonical column names (header-first assumption:
// columns are known before any row is consumed).
func ReadTable(fsys afero.Fs, path, kind string) (*models.Table, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", path, err)
	}
	defer f.Close()

	var records [][]string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		records, err = readCSV(f)
	case ".xlsx", ".xlsm":
		records, err = readXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported table format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}

	return buildTable(path, kind, records), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

func readXLSX(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return wb.GetRows(sheet)
}

// buildTable turns raw records into a Table. The first non-empty record is
// the header; blank header cells are dropped and fully empty rows skipped.
func buildTable(source, kind string, records [][]string) *models.Table {
	t := &models.Table{Source: source, Kind: kind}

	start := 0
	for start < len(records) && emptyRecord(records[start]) {
		start++
	}
	if start >= len(records) {
		return t
	}

	header := records[start]
	colByIndex := make(map[int]string, len(header))
	for i, h := range header {
		canon := schema.CanonicalColumn(h)
		if canon == "" {
			continue
		}
		colByIndex[i] = canon
		if !t.HasColumn(canon) {
			t.Columns = append(t.Columns, canon)
		}
	}

	for _, rec := range records[start+1:] {
		if emptyRecord(rec) {
			continue
		}
		row := make(models.Row, len(colByIndex))
		for i, cell := range rec {
			if col, ok := colByIndex[i]; ok {
				row[col] = cell
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func emptyRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
