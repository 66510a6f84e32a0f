package database

import "fmt"

// Migrate creates the necessary tables if they don't exist
func (d *Database) Migrate() error {
	statements := []struct {
		name string
		sql  string
	}{
		{"patients", `
			CREATE TABLE IF NOT EXISTS patients (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				bed TEXT NOT NULL DEFAULT '',
				ward TEXT NOT NULL DEFAULT '',
				diagnosis TEXT NOT NULL DEFAULT '',
				active BOOLEAN NOT NULL DEFAULT TRUE,
				admitted TIMESTAMP NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)
		`},
		{"care_events", `
			CREATE TABLE IF NOT EXISTS care_events (
				id TEXT PRIMARY KEY,
				patient_id TEXT NOT NULL,
				type TEXT NOT NULL,
				occurred_at TIMESTAMP NOT NULL,
				volume_ml INTEGER,
				meal_desc TEXT,
				meal_percent INTEGER,
				med_name TEXT,
				med_dose TEXT,
				bathroom_type TEXT,
				notes TEXT,
				created_at TIMESTAMP NOT NULL
			)
		`},
		{"staff_users", `
			CREATE TABLE IF NOT EXISTS staff_users (
				id TEXT PRIMARY KEY,
				email TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				is_admin BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)
		`},
		{"demo_users", `
			CREATE TABLE IF NOT EXISTS demo_users (
				id TEXT PRIMARY KEY,
				email TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				demo_token TEXT UNIQUE NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP NOT NULL,
				expires_at TIMESTAMP NOT NULL
			)
		`},
		{"kv_blobs", `
			CREATE TABLE IF NOT EXISTS kv_blobs (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)
		`},
		{"indexes", `
			CREATE INDEX IF NOT EXISTS idx_care_events_patient_id ON care_events(patient_id);
			CREATE INDEX IF NOT EXISTS idx_care_events_occurred_at ON care_events(occurred_at);
			CREATE INDEX IF NOT EXISTS idx_staff_users_email ON staff_users(email);
			CREATE INDEX IF NOT EXISTS idx_demo_users_demo_token ON demo_users(demo_token);
		`},
	}

	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt.sql); err != nil {
			return fmt.Errorf("failed to create %s: %v", stmt.name, err)
		}
	}
	return nil
}
