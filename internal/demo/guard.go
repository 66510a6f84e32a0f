// Package demo implements the time-boxed trial session: a self-service
// account that lives for a fixed number of days and is purged once it
// expires. Session state lives in the key-value store under the same keys
// the original client used.
package demo

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"math"
	"time"

	"github.com/bedside-care/bedside/internal/kvstore"
	"github.com/bedside-care/bedside/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Key-value store keys for the current demo session
const (
	KeyToken     = "demo_token"
	KeyUserID    = "demo_user_id"
	KeyExpiresAt = "demo_expires_at"
)

// expiringSoonDays is the advisory threshold before expiry
const expiringSoonDays = 2

// State is the session classification
type State string

const (
	StateAnonymous    State = "anonymous"
	StateActive       State = "active"
	StateExpiringSoon State = "expiring_soon"
	StateExpired      State = "expired"
)

var ErrSessionActive = errors.New("a demo session is already active")

// Status is the evaluated session state plus what the banner needs
type Status struct {
	State         State     `json:"state"`
	UserID        string    `json:"user_id,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
	DaysRemaining int       `json:"days_remaining"`
}

// UserStore is the slice of the demo-user repository the guard needs
type UserStore interface {
	CreateDemoUser(u *models.DemoUser) error
	GetDemoUserByID(id string) (*models.DemoUser, error)
	DeactivateDemoUser(id string) error
}

// Guard tracks the demo session lifecycle
type Guard struct {
	kv        kvstore.Store
	users     UserStore
	trialDays int
	interval  time.Duration
	logger    *zap.Logger
}

// NewGuard creates a demo session guard
func NewGuard(kv kvstore.Store, users UserStore, trialDays int, checkInterval time.Duration, logger *zap.Logger) *Guard {
	return &Guard{
		kv:        kv,
		users:     users,
		trialDays: trialDays,
		interval:  checkInterval,
		logger:    logger,
	}
}

// Signup creates a fresh trial account and activates its session. There is
// no renewal: an expired trial means signing up again.
func (g *Guard) Signup(ctx context.Context, email, password string) (*models.DemoUser, error) {
	if status, err := g.Evaluate(ctx); err == nil && status.State != StateAnonymous && status.State != StateExpired {
		return nil, ErrSessionActive
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	token, err := randomToken()
	if err != nil {
		return nil, err
	}

	user := &models.DemoUser{
		Email:     email,
		Password:  string(hashed),
		DemoToken: token,
		ExpiresAt: time.Now().AddDate(0, 0, g.trialDays),
	}
	if err := g.users.CreateDemoUser(user); err != nil {
		return nil, err
	}

	if err := g.kv.Set(ctx, KeyToken, user.DemoToken); err != nil {
		return nil, err
	}
	if err := g.kv.Set(ctx, KeyUserID, user.ID); err != nil {
		return nil, err
	}
	if err := g.kv.Set(ctx, KeyExpiresAt, user.ExpiresAt.Format(time.RFC3339)); err != nil {
		return nil, err
	}

	g.logger.Info("demo session created",
		zap.String("user_id", user.ID),
		zap.Time("expires_at", user.ExpiresAt),
	)
	return user, nil
}

// Classify maps an expiry time onto the session state machine. Pure function
// over the clock: now past expiry is Expired, within the advisory window is
// ExpiringSoon, otherwise Active.
func Classify(expiresAt time.Time, now time.Time) State {
	if now.After(expiresAt) {
		return StateExpired
	}
	if daysRemaining(expiresAt, now) <= expiringSoonDays {
		return StateExpiringSoon
	}
	return StateActive
}

// Evaluate re-checks the stored session. On expiry the session keys are
// purged and the trial account is flipped inactive; Expired is terminal.
func (g *Guard) Evaluate(ctx context.Context) (*Status, error) {
	userID, err := g.kv.Get(ctx, KeyUserID)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return &Status{State: StateAnonymous}, nil
		}
		return nil, err
	}

	rawExpires, err := g.kv.Get(ctx, KeyExpiresAt)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return &Status{State: StateAnonymous}, nil
		}
		return nil, err
	}
	expiresAt, err := time.Parse(time.RFC3339, rawExpires)
	if err != nil {
		// unreadable session data: treat as no session
		g.purge(ctx)
		return &Status{State: StateAnonymous}, nil
	}

	now := time.Now()
	state := Classify(expiresAt, now)
	if state == StateExpired {
		g.purge(ctx)
		if err := g.users.DeactivateDemoUser(userID); err != nil {
			g.logger.Warn("failed to deactivate expired demo user",
				zap.String("user_id", userID), zap.Error(err))
		}
		g.logger.Info("demo session expired", zap.String("user_id", userID))
		return &Status{State: StateExpired, UserID: userID, ExpiresAt: expiresAt}, nil
	}

	return &Status{
		State:         state,
		UserID:        userID,
		ExpiresAt:     expiresAt,
		DaysRemaining: daysRemaining(expiresAt, now),
	}, nil
}

// Run re-evaluates the session on a fixed interval until ctx is done
func (g *Guard) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := g.Evaluate(ctx); err != nil {
				g.logger.Error("demo session re-evaluation failed", zap.Error(err))
			}
		}
	}
}

func (g *Guard) purge(ctx context.Context) {
	for _, key := range []string{KeyToken, KeyUserID, KeyExpiresAt} {
		if err := g.kv.Delete(ctx, key); err != nil {
			g.logger.Warn("failed to purge demo session key", zap.String("key", key), zap.Error(err))
		}
	}
}

func daysRemaining(expiresAt, now time.Time) int {
	remaining := expiresAt.Sub(now).Hours() / 24
	if remaining < 0 {
		return 0
	}
	return int(math.Ceil(remaining))
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
