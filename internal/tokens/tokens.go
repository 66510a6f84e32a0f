// Package tokens implements the family access token lifecycle: minting,
// validation, credential authentication, and revocation. The whole collection
// is one JSON blob in the key-value store, wrapped in a versioned envelope so
// concurrent writers cannot silently drop each other's updates.
package tokens

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bedside-care/bedside/internal/kvstore"
	"github.com/bedside-care/bedside/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoreKey is the key-value store key holding the token collection
const StoreKey = "bedside_family_tokens"

// casRetries bounds re-reads when another writer bumps the envelope version
const casRetries = 3

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrConflict      = errors.New("token store version conflict")
)

// envelope wraps the serialized collection with a version counter. Every
// write must carry version = read version + 1.
type envelope struct {
	Version int64                `json:"version"`
	Tokens  []models.AccessToken `json:"tokens"`
}

// PatientGetter is the slice of the patient repository the manager needs
type PatientGetter interface {
	GetPatient(id string) (*models.Patient, error)
}

// ValidationResult reports the outcome of a family link check. An invalid
// token is a result, not an error.
type ValidationResult struct {
	IsValid bool                `json:"is_valid"`
	Token   *models.AccessToken `json:"token,omitempty"`
	Patient *models.Patient     `json:"patient,omitempty"`
}

// Manager handles all token operations over the key-value store
type Manager struct {
	kv       kvstore.Store
	patients PatientGetter
	logger   *zap.Logger

	// serializes this process's read-modify-write cycles; the version check
	// in mutate guards against other processes sharing the backend
	mu sync.Mutex
}

// NewManager creates a token lifecycle manager
func NewManager(kv kvstore.Store, patients PatientGetter, logger *zap.Logger) *Manager {
	return &Manager{kv: kv, patients: patients, logger: logger}
}

// Generate mints a new active token for a patient. Concurrent shares are
// additive: there is no per-patient uniqueness check. An empty role defaults
// to editor.
func (m *Manager) Generate(ctx context.Context, patientID string, role models.Role) (*models.AccessToken, error) {
	if role == "" {
		role = models.RoleEditor
	}

	tokenStr, err := randomToken(32)
	if err != nil {
		return nil, err
	}
	password, err := randomToken(9)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	record := models.AccessToken{
		ID:        id,
		PatientID: patientID,
		Token:     tokenStr,
		Username:  "family-" + id[:8],
		Password:  password,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	err = m.mutate(ctx, func(env *envelope) error {
		env.Tokens = append(env.Tokens, record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("family token generated",
		zap.String("token_id", record.ID),
		zap.String("patient_id", patientID),
		zap.String("role", string(role)),
	)
	return &record, nil
}

// Validate checks a patient-id + token pair against the active records. On a
// match the patient is fetched as well; a missing patient makes the link
// invalid, not an error.
func (m *Manager) Validate(ctx context.Context, patientID, token string) (*ValidationResult, error) {
	env, err := m.read(ctx)
	if err != nil {
		return nil, err
	}

	for i := range env.Tokens {
		t := &env.Tokens[i]
		if !t.IsActive || t.PatientID != patientID || t.Token != token {
			continue
		}
		patient, err := m.patients.GetPatient(patientID)
		if err != nil {
			m.logger.Warn("token matched but patient fetch failed",
				zap.String("patient_id", patientID), zap.Error(err))
			return &ValidationResult{IsValid: false}, nil
		}
		return &ValidationResult{IsValid: true, Token: t, Patient: patient}, nil
	}
	return &ValidationResult{IsValid: false}, nil
}

// Authenticate checks family credentials by exact match over active records.
// Returns nils (not an error) when no record matches.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (*models.AccessToken, *models.Patient, error) {
	env, err := m.read(ctx)
	if err != nil {
		return nil, nil, err
	}

	for i := range env.Tokens {
		t := &env.Tokens[i]
		if !t.IsActive || t.Username != username || t.Password != password {
			continue
		}
		patient, err := m.patients.GetPatient(t.PatientID)
		if err != nil {
			return nil, nil, nil
		}
		return t, patient, nil
	}
	return nil, nil, nil
}

// Revoke deactivates one token. Idempotent on already-revoked records.
func (m *Manager) Revoke(ctx context.Context, tokenID, reason string) error {
	return m.mutate(ctx, func(env *envelope) error {
		for i := range env.Tokens {
			t := &env.Tokens[i]
			if t.ID != tokenID {
				continue
			}
			if t.IsActive {
				revoke(t, reason)
			}
			return nil
		}
		return ErrTokenNotFound
	})
}

// RevokeAllForPatient deactivates every active token for one patient,
// leaving other patients' tokens untouched. Applied on discharge.
func (m *Manager) RevokeAllForPatient(ctx context.Context, patientID, reason string) error {
	return m.mutate(ctx, func(env *envelope) error {
		for i := range env.Tokens {
			t := &env.Tokens[i]
			if t.PatientID == patientID && t.IsActive {
				revoke(t, reason)
			}
		}
		return nil
	})
}

// ListActiveForPatient returns the active tokens for one patient
func (m *Manager) ListActiveForPatient(ctx context.Context, patientID string) ([]models.AccessToken, error) {
	env, err := m.read(ctx)
	if err != nil {
		return nil, err
	}

	var active []models.AccessToken
	for _, t := range env.Tokens {
		if t.IsActive && t.PatientID == patientID {
			active = append(active, t)
		}
	}
	return active, nil
}

func revoke(t *models.AccessToken, reason string) {
	now := time.Now()
	t.IsActive = false
	t.RevokedAt = &now
	t.RevokedReason = &reason
}

// read loads and decodes the envelope. A missing key is an empty collection.
func (m *Manager) read(ctx context.Context) (*envelope, error) {
	raw, err := m.kv.Get(ctx, StoreKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return &envelope{}, nil
		}
		return nil, fmt.Errorf("failed to read token store: %w", err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("failed to decode token store: %w", err)
	}
	return &env, nil
}

// mutate applies fn under a compare-and-swap over the whole collection: the
// write only lands if the stored version is still the one that was read.
// On conflict the cycle re-reads and retries up to casRetries times.
func (m *Manager) mutate(ctx context.Context, fn func(*envelope) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for attempt := 0; attempt <= casRetries; attempt++ {
		env, err := m.read(ctx)
		if err != nil {
			return err
		}
		readVersion := env.Version

		if err := fn(env); err != nil {
			return err
		}

		current, err := m.read(ctx)
		if err != nil {
			return err
		}
		if current.Version != readVersion {
			m.logger.Warn("token store version conflict, retrying",
				zap.Int64("read_version", readVersion),
				zap.Int64("current_version", current.Version),
			)
			continue
		}

		env.Version = readVersion + 1
		raw, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("failed to encode token store: %w", err)
		}
		return m.kv.Set(ctx, StoreKey, string(raw))
	}
	return ErrConflict
}

// randomToken returns n random bytes base64url-encoded
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
