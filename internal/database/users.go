package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/bedside-care/bedside/internal/models"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDemoUserNotFound = errors.New("demo user not found")
)

// CreateStaffUser stores a new staff account. Password must already be hashed.
func (d *Database) CreateStaffUser(email, passwordHash string) (*models.StaffUser, error) {
	now := time.Now()
	user := &models.StaffUser{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  passwordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := d.exec(
		"INSERT INTO staff_users (id, email, password_hash, is_admin, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.Password, user.IsAdmin, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetStaffUserByEmail retrieves a staff account by email
func (d *Database) GetStaffUserByEmail(email string) (*models.StaffUser, error) {
	user := &models.StaffUser{}
	err := d.queryRow(
		"SELECT id, email, password_hash, is_admin, created_at, updated_at FROM staff_users WHERE email = ?",
		email,
	).Scan(&user.ID, &user.Email, &user.Password, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetStaffUserByID retrieves a staff account by ID
func (d *Database) GetStaffUserByID(id string) (*models.StaffUser, error) {
	user := &models.StaffUser{}
	err := d.queryRow(
		"SELECT id, email, password_hash, is_admin, created_at, updated_at FROM staff_users WHERE id = ?",
		id,
	).Scan(&user.ID, &user.Email, &user.Password, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateDemoUser stores a new trial account. Password must already be hashed.
func (d *Database) CreateDemoUser(u *models.DemoUser) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.IsActive = true
	u.CreatedAt = time.Now()
	_, err := d.exec(
		"INSERT INTO demo_users (id, email, password_hash, demo_token, is_active, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Email, u.Password, u.DemoToken, u.IsActive, u.CreatedAt, u.ExpiresAt,
	)
	return err
}

// GetDemoUserByID retrieves a trial account by ID
func (d *Database) GetDemoUserByID(id string) (*models.DemoUser, error) {
	u := &models.DemoUser{}
	err := d.queryRow(
		"SELECT id, email, password_hash, demo_token, is_active, created_at, expires_at FROM demo_users WHERE id = ?",
		id,
	).Scan(&u.ID, &u.Email, &u.Password, &u.DemoToken, &u.IsActive, &u.CreatedAt, &u.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrDemoUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// DeactivateDemoUser flips a trial account inactive once its window has passed
func (d *Database) DeactivateDemoUser(id string) error {
	_, err := d.exec("UPDATE demo_users SET is_active = ? WHERE id = ?", false, id)
	return err
}
