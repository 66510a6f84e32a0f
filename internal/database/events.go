package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/bedside-care/bedside/internal/models"
	"github.com/google/uuid"
)

var ErrEventNotFound = errors.New("care event not found")

const eventColumns = "id, patient_id, type, occurred_at, volume_ml, meal_desc, meal_percent, med_name, med_dose, bathroom_type, notes, created_at"

// CreateEvent stores a new care event
func (d *Database) CreateEvent(e *models.CareEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	e.CreatedAt = time.Now()

	_, err := d.exec(
		"INSERT INTO care_events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.PatientID, e.Type, e.OccurredAt, e.VolumeMl, e.MealDesc, e.MealPercent,
		e.MedName, e.MedDose, e.BathroomType, e.Notes, e.CreatedAt,
	)
	return err
}

// GetEvent retrieves a care event by ID
func (d *Database) GetEvent(id string) (*models.CareEvent, error) {
	e := &models.CareEvent{}
	err := d.queryRow(
		"SELECT "+eventColumns+" FROM care_events WHERE id = ?",
		id,
	).Scan(&e.ID, &e.PatientID, &e.Type, &e.OccurredAt, &e.VolumeMl, &e.MealDesc, &e.MealPercent,
		&e.MedName, &e.MedDose, &e.BathroomType, &e.Notes, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEventsForPatient retrieves all care events for a patient, newest first
func (d *Database) ListEventsForPatient(patientID string) ([]models.CareEvent, error) {
	rows, err := d.query(
		"SELECT "+eventColumns+" FROM care_events WHERE patient_id = ? ORDER BY occurred_at DESC",
		patientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.CareEvent
	for rows.Next() {
		var e models.CareEvent
		err := rows.Scan(&e.ID, &e.PatientID, &e.Type, &e.OccurredAt, &e.VolumeMl, &e.MealDesc, &e.MealPercent,
			&e.MedName, &e.MedDose, &e.BathroomType, &e.Notes, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// EventExists reports whether an event with the given ID is already stored.
// Used by the import path for duplicate detection.
func (d *Database) EventExists(id string) (bool, error) {
	var n int
	err := d.queryRow("SELECT COUNT(1) FROM care_events WHERE id = ?", id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteEvent removes a care event
func (d *Database) DeleteEvent(id string) error {
	result, err := d.exec("DELETE FROM care_events WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEventNotFound
	}
	return nil
}
