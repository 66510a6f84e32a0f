package demo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bedside-care/bedside/internal/kvstore"
	"github.com/bedside-care/bedside/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	if !ok {
		return "", kvstore.ErrNotFound
	}
	return value, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

type fakeUsers struct {
	users map[string]*models.DemoUser
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*models.DemoUser)}
}

func (f *fakeUsers) CreateDemoUser(u *models.DemoUser) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.IsActive = true
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) GetDemoUserByID(id string) (*models.DemoUser, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("demo user not found")
	}
	return u, nil
}

func (f *fakeUsers) DeactivateDemoUser(id string) error {
	u, ok := f.users[id]
	if !ok {
		return errors.New("demo user not found")
	}
	u.IsActive = false
	return nil
}

func newTestGuard() (*Guard, *fakeKV, *fakeUsers) {
	kv := newFakeKV()
	users := newFakeUsers()
	return NewGuard(kv, users, 7, time.Minute, zap.NewNop()), kv, users
}

func TestClassify(t *testing.T) {
	now := time.Now()

	assert.Equal(t, StateActive, Classify(now.AddDate(0, 0, 10), now))
	assert.Equal(t, StateExpiringSoon, Classify(now.AddDate(0, 0, 2), now))
	assert.Equal(t, StateExpiringSoon, Classify(now.Add(25*time.Hour), now))
	assert.Equal(t, StateExpired, Classify(now.Add(-time.Minute), now))
}

func TestSignupActivatesSession(t *testing.T) {
	g, kv, users := newTestGuard()
	ctx := context.Background()

	user, err := g.Signup(ctx, "trial@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.DemoToken)
	assert.True(t, user.IsActive)

	stored, err := users.GetDemoUserByID(user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Pass", stored.Password)

	userID, err := kv.Get(ctx, KeyUserID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	rawExpires, err := kv.Get(ctx, KeyExpiresAt)
	require.NoError(t, err)
	expiresAt, err := time.Parse(time.RFC3339, rawExpires)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), expiresAt, time.Minute)
}

func TestSignupRejectsSecondSession(t *testing.T) {
	g, _, _ := newTestGuard()
	ctx := context.Background()

	_, err := g.Signup(ctx, "first@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	_, err = g.Signup(ctx, "second@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestEvaluateAnonymous(t *testing.T) {
	g, _, _ := newTestGuard()

	status, err := g.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, status.State)
}

func TestEvaluateActiveSession(t *testing.T) {
	g, _, _ := newTestGuard()
	ctx := context.Background()

	user, err := g.Signup(ctx, "trial@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	status, err := g.Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateActive, status.State)
	assert.Equal(t, user.ID, status.UserID)
	assert.Equal(t, 7, status.DaysRemaining)
}

func TestEvaluateExpiryPurgesSession(t *testing.T) {
	g, kv, users := newTestGuard()
	ctx := context.Background()

	user := &models.DemoUser{
		Email:     "old@example.com",
		Password:  "hash",
		DemoToken: "token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, users.CreateDemoUser(user))
	require.NoError(t, kv.Set(ctx, KeyToken, user.DemoToken))
	require.NoError(t, kv.Set(ctx, KeyUserID, user.ID))
	require.NoError(t, kv.Set(ctx, KeyExpiresAt, user.ExpiresAt.Format(time.RFC3339)))

	status, err := g.Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateExpired, status.State)

	for _, key := range []string{KeyToken, KeyUserID, KeyExpiresAt} {
		_, err := kv.Get(ctx, key)
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
	}

	stored, err := users.GetDemoUserByID(user.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	// expired is terminal: the next evaluation sees no session at all
	status, err = g.Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, status.State)
}

func TestEvaluateUnreadableExpiry(t *testing.T) {
	g, kv, _ := newTestGuard()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, KeyUserID, "u1"))
	require.NoError(t, kv.Set(ctx, KeyExpiresAt, "garbage"))

	status, err := g.Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, status.State)
}

func TestSignupAfterExpiry(t *testing.T) {
	g, kv, users := newTestGuard()
	ctx := context.Background()

	expired := &models.DemoUser{
		Email:     "old@example.com",
		Password:  "hash",
		DemoToken: "token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, users.CreateDemoUser(expired))
	require.NoError(t, kv.Set(ctx, KeyUserID, expired.ID))
	require.NoError(t, kv.Set(ctx, KeyExpiresAt, expired.ExpiresAt.Format(time.RFC3339)))

	user, err := g.Signup(ctx, "new@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEqual(t, expired.ID, user.ID)
}
