package export

import (
	"fmt"
	"strings"

	"movebot/internal/session"
	"movebot/internal/stats"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	SheetCompletions = "Completions"
	SheetStats       = "Stats"
)

var (
	completionHeader = []interface{}{"User ID", "User", "Timestamp", "Difficulty", "Workout"}
	statsHeader      = []interface{}{"User", "Easy", "Medium", "Hard", "Total"}
)

// WriteWorkbook writes the completion log and per-user counts to an xlsx file at path.
func WriteWorkbook(path string, records []session.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SheetCompletions)
	if _, err := f.NewSheet(SheetStats); err != nil {
		return fmt.Errorf("create sheet %s: %w", SheetStats, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#ffffff"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#16213e"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeCompletions(f, records, headerStyle); err != nil {
		return err
	}
	if err := writeStats(f, records, headerStyle); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeCompletions(f *excelize.File, records []session.Record, headerStyle int) error {
	sheet := SheetCompletions
	if err := f.SetSheetRow(sheet, "A1", &completionHeader); err != nil {
		return err
	}
	f.SetCellStyle(sheet, "A1", "E1", headerStyle)
	for col, width := range map[string]float64{"A": 14, "B": 18, "C": 22, "D": 12, "E": 60} {
		f.SetColWidth(sheet, col, col, width)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.UserID, r.UserName, r.Timestamp.Format("2006-01-02 15:04:05"), r.Difficulty.String(), formatWorkout(r.Workout)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write completion row %d: %w", i+1, err)
		}
	}
	return nil
}

func writeStats(f *excelize.File, records []session.Record, headerStyle int) error {
	sheet := SheetStats
	if err := f.SetSheetRow(sheet, "A1", &statsHeader); err != nil {
		return err
	}
	f.SetCellStyle(sheet, "A1", "E1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 18)

	all := stats.AggregateAll(records)
	for i, name := range stats.Names(all) {
		c := all[name]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{name, c.Easy, c.Medium, c.Hard, c.Total}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write stats row %d: %w", i+1, err)
		}
	}
	return nil
}

func formatWorkout(entries []session.Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s x%d", e.Name, e.Reps)
	}
	return strings.Join(parts, ", ")
}
