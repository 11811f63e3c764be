// Package workbook renders the health summary as an XLSX workbook.
package workbook

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	"cmhealth/pkg/models"
)

const dateLayout = "2006-01-02 15:04:05"

// Write renders the workbook to path: a Summary sheet with the counts, the
// inactive-agent detail, the failure detail, and the warning ledger. Sheets
// are written even when empty so the artifact shape is stable run to run.
func Write(fsys afero.Fs, path string, s *models.HealthSummary, warnings []models.Warning) error {
	if s == nil {
		return fmt.Errorf("nil health summary")
	}

	wb := excelize.NewFile()
	defer wb.Close()

	summarySheet := wb.GetSheetName(0)
	if err := wb.SetSheetName(summarySheet, "Summary"); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	summaryRows := [][]interface{}{
		{"Total agents", s.Agents.Total},
		{"Active agents", s.Agents.Active},
		{"Inactive agents", s.Agents.Inactive},
		{"Monitored nodes", s.NodeCount},
		{"Collectors", s.CollectorCount},
		{"Process failures", len(s.Failures)},
		{"Warnings", len(warnings)},
	}
	if err := writeRows(wb, "Summary", nil, summaryRows); err != nil {
		return err
	}

	inactiveRows := make([][]interface{}, 0, len(s.InactiveAgents))
	for _, rec := range s.InactiveAgents {
		inactiveRows = append(inactiveRows, []interface{}{rec.Host, rec.Status, rec.Revision})
	}
	if err := addSheet(wb, "Inactive_Agents", []string{"Host", "Status", "Revision"}, inactiveRows); err != nil {
		return err
	}

	failureRows := make([][]interface{}, 0, len(s.Failures))
	for _, f := range s.Failures {
		failureRows = append(failureRows, []interface{}{
			f.Collector, f.ActivityType, f.Status, f.Date.Format(dateLayout),
		})
	}
	if err := addSheet(wb, "Aggregation_Errors", []string{"Collector", "Activity", "Status", "Date"}, failureRows); err != nil {
		return err
	}

	warningRows := make([][]interface{}, 0, len(warnings))
	for _, w := range warnings {
		warningRows = append(warningRows, []interface{}{string(w.Kind), w.Source, w.Row, w.Message})
	}
	if err := addSheet(wb, "Warnings", []string{"Kind", "Source", "Row", "Message"}, warningRows); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook file: %w", err)
	}
	defer f.Close()

	if err := wb.Write(f); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func addSheet(wb *excelize.File, name string, header []string, rows [][]interface{}) error {
	if _, err := wb.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return writeRows(wb, name, header, rows)
}

func writeRows(wb *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	rowIdx := 1
	if len(header) > 0 {
		cells := make([]interface{}, len(header))
		for i, h := range header {
			cells[i] = h
		}
		if err := writeRow(wb, sheet, rowIdx, cells); err != nil {
			return err
		}
		rowIdx++
	}
	for _, cells := range rows {
		if err := writeRow(wb, sheet, rowIdx, cells); err != nil {
			return err
		}
		rowIdx++
	}
	return nil
}

func writeRow(wb *excelize.File, sheet string, row int, cells []interface{}) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := wb.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
