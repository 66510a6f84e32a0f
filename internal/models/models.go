package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Patient represents an admitted patient being tracked
type Patient struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Bed       string      `json:"bed" db:"bed"`
	Ward      string      `json:"ward" db:"ward"`
	Diagnosis string      `json:"diagnosis" db:"diagnosis"`
	Active    bool        `json:"active" db:"active"`
	Admitted  time.Time   `json:"admitted" db:"admitted"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
	Events    []CareEvent `json:"events,omitempty"`
}

// EventType classifies a care event and determines which payload fields apply
type EventType string

const (
	EventDrink    EventType = "drink"
	EventMeal     EventType = "meal"
	EventMed      EventType = "med"
	EventBathroom EventType = "bathroom"
	EventNote     EventType = "note"
)

// CareEvent is one logged care action tied to a patient and timestamp.
// Type determines which of the optional payload fields are meaningful.
type CareEvent struct {
	ID           string    `json:"id" db:"id"`
	PatientID    string    `json:"patient_id" db:"patient_id"`
	Type         EventType `json:"type" db:"type"`
	OccurredAt   time.Time `json:"occurred_at" db:"occurred_at"`
	VolumeMl     *int      `json:"volume_ml,omitempty" db:"volume_ml"`
	MealDesc     *string   `json:"meal_desc,omitempty" db:"meal_desc"`
	MealPercent  *int      `json:"meal_percent,omitempty" db:"meal_percent"`
	MedName      *string   `json:"med_name,omitempty" db:"med_name"`
	MedDose      *string   `json:"med_dose,omitempty" db:"med_dose"`
	BathroomType *string   `json:"bathroom_type,omitempty" db:"bathroom_type"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Role is the capability preset attached to a family access token
type Role string

const (
	RoleEditor  Role = "editor"
	RoleViewer  Role = "viewer"
	RoleUnknown Role = "unknown"
)

// ParseRole maps a stored role string onto the tagged enum. Anything
// unrecognized becomes RoleUnknown rather than silently turning into a viewer.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleEditor:
		return RoleEditor
	case RoleViewer:
		return RoleViewer
	default:
		return RoleUnknown
	}
}

// AccessToken is a family-portal credential for one patient. Records are
// deactivated on revocation, never deleted.
type AccessToken struct {
	ID            string     `json:"id" db:"id"`
	PatientID     string     `json:"patient_id" db:"patient_id"`
	Token         string     `json:"token" db:"token"`
	Username      string     `json:"username" db:"username"`
	Password      string     `json:"password" db:"password"`
	Role          Role       `json:"role" db:"role"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
	RevokedReason *string    `json:"revoked_reason,omitempty" db:"revoked_reason"`
}

// Permissions is the capability set derived from a token's role
type Permissions struct {
	CanEdit                bool `json:"can_edit"`
	CanView                bool `json:"can_view"`
	CanRegisterLiquids     bool `json:"can_register_liquids"`
	CanRegisterMedications bool `json:"can_register_medications"`
	CanRegisterMeals       bool `json:"can_register_meals"`
	CanRegisterActivities  bool `json:"can_register_activities"`
}

// StaffUser represents a staff account in the database
type StaffUser struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ValidatePassword checks if the provided password matches the user's password
func (u *StaffUser) ValidatePassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// DemoUser represents a self-service trial account
type DemoUser struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	DemoToken string    `json:"demo_token" db:"demo_token"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// IsExpired checks if the demo trial window has passed
func (d *DemoUser) IsExpired() bool {
	return time.Now().After(d.ExpiresAt)
}

// ImportError records why a single import row was rejected
type ImportError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult summarizes an import batch: bad rows never abort the batch,
// they are collected here instead.
type ImportResult struct {
	Inserted   int           `json:"inserted"`
	Duplicates []string      `json:"duplicates,omitempty"`
	Errors     []ImportError `json:"errors,omitempty"`
}
