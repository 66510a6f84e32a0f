// Package exchange handles moving care-event history in and out of the
// system: JSON, CSV and XLSX export, validated import with per-row error
// collection, and optional archival to object storage.
package exchange

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bedside-care/bedside/internal/models"
	"github.com/xuri/excelize/v2"
)

var csvHeader = []string{
	"id", "patient_id", "type", "occurred_at",
	"volume_ml", "meal_desc", "meal_percent",
	"med_name", "med_dose", "bathroom_type", "notes",
}

// WriteJSON exports events as a JSON array
func WriteJSON(w io.Writer, events []models.CareEvent) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if events == nil {
		events = []models.CareEvent{}
	}
	return enc.Encode(events)
}

// WriteCSV exports events as CSV with a header row
func WriteCSV(w io.Writer, events []models.CareEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range events {
		if err := cw.Write(eventRow(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX exports events as a single-sheet workbook
func WriteXLSX(w io.Writer, events []models.CareEvent) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Care Events"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for col, name := range csvHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	for row, e := range events {
		for col, value := range eventRow(e) {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func eventRow(e models.CareEvent) []string {
	return []string{
		e.ID,
		e.PatientID,
		string(e.Type),
		e.OccurredAt.Format(time.RFC3339),
		intField(e.VolumeMl),
		strField(e.MealDesc),
		intField(e.MealPercent),
		strField(e.MedName),
		strField(e.MedDose),
		strField(e.BathroomType),
		strField(e.Notes),
	}
}

func strField(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intField(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// ContentType returns the MIME type for an export format
func ContentType(format string) (string, error) {
	switch format {
	case "json":
		return "application/json", nil
	case "csv":
		return "text/csv", nil
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}
