package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/bedside-care/bedside/internal/models"
	"github.com/google/uuid"
)

var ErrPatientNotFound = errors.New("patient not found")

// CreatePatient stores a new patient
func (d *Database) CreatePatient(p *models.Patient) error {
	now := time.Now()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Admitted.IsZero() {
		p.Admitted = now
	}
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := d.exec(
		"INSERT INTO patients (id, name, bed, ward, diagnosis, active, admitted, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Bed, p.Ward, p.Diagnosis, p.Active, p.Admitted, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetPatient retrieves a patient by ID
func (d *Database) GetPatient(id string) (*models.Patient, error) {
	p := &models.Patient{}
	err := d.queryRow(
		"SELECT id, name, bed, ward, diagnosis, active, admitted, created_at, updated_at FROM patients WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &p.Bed, &p.Ward, &p.Diagnosis, &p.Active, &p.Admitted, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPatients retrieves all patients, active first, newest admissions first
func (d *Database) ListPatients() ([]*models.Patient, error) {
	rows, err := d.query(
		"SELECT id, name, bed, ward, diagnosis, active, admitted, created_at, updated_at FROM patients ORDER BY active DESC, admitted DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*models.Patient
	for rows.Next() {
		p := &models.Patient{}
		err := rows.Scan(&p.ID, &p.Name, &p.Bed, &p.Ward, &p.Diagnosis, &p.Active, &p.Admitted, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// UpdatePatient updates a patient's details
func (d *Database) UpdatePatient(p *models.Patient) error {
	p.UpdatedAt = time.Now()
	result, err := d.exec(
		"UPDATE patients SET name = ?, bed = ?, ward = ?, diagnosis = ?, active = ?, updated_at = ? WHERE id = ?",
		p.Name, p.Bed, p.Ward, p.Diagnosis, p.Active, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPatientNotFound
	}
	return nil
}

// DischargePatient marks a patient inactive. The record is kept so historical
// care events stay attributable.
func (d *Database) DischargePatient(id string) error {
	result, err := d.exec(
		"UPDATE patients SET active = ?, updated_at = ? WHERE id = ?",
		false, time.Now(), id,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPatientNotFound
	}
	return nil
}
