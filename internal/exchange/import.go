package exchange

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bedside-care/bedside/internal/models"
	"go.uber.org/zap"
)

// EventStore is the slice of the event repository the importer needs
type EventStore interface {
	CreateEvent(e *models.CareEvent) error
	EventExists(id string) (bool, error)
}

// Importer validates and inserts exported event records. A bad row never
// aborts the batch; its error is collected into the result instead.
type Importer struct {
	events EventStore
	logger *zap.Logger
}

func NewImporter(events EventStore, logger *zap.Logger) *Importer {
	return &Importer{events: events, logger: logger}
}

// ImportJSON reads a JSON array of event records for one patient
func (im *Importer) ImportJSON(ctx context.Context, patientID string, r io.Reader) (*models.ImportResult, error) {
	var records []models.CareEvent
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	return im.importEvents(ctx, patientID, records, nil)
}

// ImportCSV reads CSV rows in the export layout for one patient
func (im *Importer) ImportCSV(ctx context.Context, patientID string, r io.Reader) (*models.ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV payload: %w", err)
	}
	if len(rows) == 0 {
		return &models.ImportResult{}, nil
	}

	// skip the header row when present
	start := 0
	if rows[0][0] == "id" {
		start = 1
	}

	var (
		records   []models.CareEvent
		rowErrors []models.ImportError
	)
	for i := start; i < len(rows); i++ {
		record, err := parseCSVRow(rows[i])
		if err != nil {
			rowErrors = append(rowErrors, models.ImportError{Row: i + 1, Reason: err.Error()})
			continue
		}
		records = append(records, *record)
	}
	return im.importEvents(ctx, patientID, records, rowErrors)
}

// importEvents validates each record, detects duplicates by ID, and inserts
// the rest. Records without an ID get a fresh one from the repository.
func (im *Importer) importEvents(ctx context.Context, patientID string, records []models.CareEvent, rowErrors []models.ImportError) (*models.ImportResult, error) {
	result := &models.ImportResult{Errors: rowErrors}

	for i := range records {
		e := &records[i]
		row := i + 1

		if err := validateEvent(e); err != nil {
			result.Errors = append(result.Errors, models.ImportError{Row: row, Reason: err.Error()})
			continue
		}
		e.PatientID = patientID

		if e.ID != "" {
			exists, err := im.events.EventExists(e.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				result.Duplicates = append(result.Duplicates, e.ID)
				continue
			}
		}

		if err := im.events.CreateEvent(e); err != nil {
			result.Errors = append(result.Errors, models.ImportError{Row: row, Reason: err.Error()})
			continue
		}
		result.Inserted++
	}

	im.logger.Info("import finished",
		zap.String("patient_id", patientID),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", len(result.Duplicates)),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func validateEvent(e *models.CareEvent) error {
	switch e.Type {
	case models.EventDrink, models.EventMeal, models.EventMed, models.EventBathroom, models.EventNote:
	case "":
		return fmt.Errorf("missing event type")
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("missing occurred_at")
	}
	if e.Type == models.EventDrink && e.VolumeMl == nil {
		return fmt.Errorf("drink event requires volume_ml")
	}
	if e.Type == models.EventMed && e.MedName == nil {
		return fmt.Errorf("med event requires med_name")
	}
	return nil
}

func parseCSVRow(row []string) (*models.CareEvent, error) {
	if len(row) != len(csvHeader) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(csvHeader), len(row))
	}

	occurredAt, err := time.Parse(time.RFC3339, row[3])
	if err != nil {
		return nil, fmt.Errorf("invalid occurred_at %q", row[3])
	}

	e := &models.CareEvent{
		ID:           row[0],
		PatientID:    row[1],
		Type:         models.EventType(row[2]),
		OccurredAt:   occurredAt,
		MealDesc:     optStr(row[5]),
		MedName:      optStr(row[7]),
		MedDose:      optStr(row[8]),
		BathroomType: optStr(row[9]),
		Notes:        optStr(row[10]),
	}
	if e.VolumeMl, err = optInt(row[4]); err != nil {
		return nil, fmt.Errorf("invalid volume_ml %q", row[4])
	}
	if e.MealPercent, err = optInt(row[6]); err != nil {
		return nil, fmt.Errorf("invalid meal_percent %q", row[6])
	}
	return e, nil
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
