package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"knackhook/screening/internal/models"
	"knackhook/screening/internal/store"
)

var ErrUserNotFound = errors.New("user not found")

// AuthError blocks a login attempt: unknown identifier or wrong
// credential.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "auth error: " + e.Reason
}

// Manager owns the single session of the application: the registered
// user list, the currently authenticated user, and the per-user
// evaluation record, all persisted through an injected Store. The
// session is loaded from the store at construction and cleared by an
// explicit Logout.
type Manager struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *models.User
}

func NewManager(s store.Store, logger *zap.Logger) *Manager {
	m := &Manager{
		store:  s,
		logger: logger,
		now:    time.Now,
	}
	m.restoreSession()
	return m
}

// restoreSession loads the persisted session, if any. Corrupt session
// data is discarded, not surfaced.
func (m *Manager) restoreSession() {
	ctx := context.Background()
	raw, err := m.store.Get(ctx, store.KeyCurrentUser)
	if err != nil {
		return
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		m.logger.Warn("discarding corrupt session data", zap.Error(err))
		m.store.Delete(ctx, store.KeyCurrentUser)
		return
	}
	m.current = &user
}

// Register appends the user to the stored user list. Uniqueness is not
// enforced here; lookup at login resolves to the first match.
func (m *Manager) Register(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.loadUsers(ctx)
	users = append(users, user)

	raw, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, store.KeyUsers, raw)
}

// CheckUserExists returns the first stored user whose email or username
// equals identifier exactly.
func (m *Manager) CheckUserExists(ctx context.Context, identifier string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.loadUsers(ctx) {
		if user.Email == identifier || user.Username == identifier {
			found := user
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

// Login sets the session to user and persists it. The caller must have
// already verified the credential.
func (m *Manager) Login(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, store.KeyCurrentUser, raw); err != nil {
		return err
	}
	m.current = &user
	return nil
}

// Logout clears the session and any draft input state. The persisted
// evaluation record survives.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	m.store.Delete(ctx, store.KeyCurrentUser)
	m.clearDrafts(ctx)
}

// CurrentUser returns the authenticated user, or nil when no session is
// active.
func (m *Manager) CurrentUser() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil
	}
	user := *m.current
	return &user
}

// VerifyPassword compares the stored credential with the supplied one.
// Plaintext comparison is an accepted simplification of this system.
func VerifyPassword(user *models.User, password string) bool {
	return user != nil && user.Password == password
}

// SaveEvaluation stores the record for the current user, stamping
// EvaluatedAt and overwriting any prior record. No-op without a
// session.
func (m *Manager) SaveEvaluation(ctx context.Context, record models.EvaluationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	record.UserID = m.current.ID
	record.EvaluatedAt = m.now()

	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, store.EvaluationKey(m.current.ID), raw)
}

// GetUserEvaluation returns the stored record for the current user, or
// nil when there is none. Corrupt data reads as absence.
func (m *Manager) GetUserEvaluation(ctx context.Context) *models.EvaluationRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil
	}
	raw, err := m.store.Get(ctx, store.EvaluationKey(m.current.ID))
	if err != nil {
		return nil
	}
	var record models.EvaluationRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		m.logger.Warn("treating corrupt evaluation record as absent",
			zap.String("user_id", m.current.ID), zap.Error(err))
		return nil
	}
	return &record
}

// ClearUserEvaluation removes the current user's record and draft
// input state. No-op without a session.
func (m *Manager) ClearUserEvaluation(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return
	}
	m.store.Delete(ctx, store.EvaluationKey(m.current.ID))
	m.clearDrafts(ctx)
}

func (m *Manager) loadUsers(ctx context.Context) []models.User {
	raw, err := m.store.Get(ctx, store.KeyUsers)
	if err != nil {
		return nil
	}
	var users []models.User
	if err := json.Unmarshal(raw, &users); err != nil {
		m.logger.Warn("treating corrupt user list as empty", zap.Error(err))
		return nil
	}
	return users
}

func (m *Manager) clearDrafts(ctx context.Context) {
	m.store.Delete(ctx, store.KeyResume)
	m.store.Delete(ctx, store.KeyJobDesc)
	m.store.Delete(ctx, store.KeyAnswers)
}
