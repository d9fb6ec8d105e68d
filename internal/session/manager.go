// Package session tracks the process-wide authenticated admin.
//
// The Manager never changes its state on its own: LogIn and LogOut only ask
// the auth provider to act, and the provider's state notifications are the
// single source of truth for who is signed in. Start registers for those
// notifications and Stop cancels the registration.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"tailor-gallery-backend/internal/models"
)

var (
	// ErrInvalidCredentials is returned when the provider rejects a sign-in.
	ErrInvalidCredentials = errors.New("login failed")
	// ErrProviderUnavailable is returned when the provider could not be asked
	// at all, or failed without judging the credentials.
	ErrProviderUnavailable = errors.New("auth provider unavailable")
)

// Provider is the external authentication service. SignIn wraps
// ErrInvalidCredentials when the credentials themselves were refused.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*models.Admin, error)
	SignOut(ctx context.Context) error
	// OnAuthStateChange registers fn for state notifications and returns
	// the function that cancels the registration.
	OnAuthStateChange(fn func(*models.Admin)) func()
}

type Manager struct {
	provider Provider
	logger   *zap.Logger

	mu          sync.RWMutex
	current     *models.Admin
	unsubscribe func()
	nextID      int
	listeners   map[int]func(*models.Admin)
}

func NewManager(provider Provider, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		provider:  provider,
		logger:    logger,
		listeners: make(map[int]func(*models.Admin)),
	}
}

// Start registers for auth-state notifications. Calling it twice is a no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		return
	}
	m.unsubscribe = m.provider.OnAuthStateChange(m.apply)
}

// Stop cancels the registration made by Start.
func (m *Manager) Stop() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (m *Manager) Current() *models.Admin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) Authenticated() bool {
	return m.Current() != nil
}

// LogIn asks the provider to sign in. A failure leaves the session untouched
// and is reported as ErrInvalidCredentials when the provider refused the
// credentials, or ErrProviderUnavailable otherwise.
func (m *Manager) LogIn(ctx context.Context, email, password string) (*models.Admin, error) {
	admin, err := m.provider.SignIn(ctx, email, password)
	switch {
	case err == nil:
		return admin, nil
	case errors.Is(err, ErrInvalidCredentials):
		m.logger.Warn("admin login rejected", zap.String("email", email), zap.Error(err))
		return nil, err
	case errors.Is(err, ErrProviderUnavailable):
	default:
		err = fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	m.logger.Error("admin login failed", zap.String("email", email), zap.Error(err))
	return nil, err
}

// LogOut asks the provider to sign out. It always succeeds locally; a
// failure to revoke the remote session is only logged.
func (m *Manager) LogOut(ctx context.Context) {
	if err := m.provider.SignOut(ctx); err != nil {
		m.logger.Warn("admin logout incomplete", zap.Error(err))
	}
}

// Subscribe registers fn to be told about every session change and returns
// the function that removes it.
func (m *Manager) Subscribe(fn func(*models.Admin)) func() {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) apply(admin *models.Admin) {
	m.mu.Lock()
	m.current = admin
	listeners := make([]func(*models.Admin), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	if admin != nil {
		m.logger.Debug("session changed", zap.String("admin_id", admin.ID))
	} else {
		m.logger.Debug("session cleared")
	}
	for _, fn := range listeners {
		fn(admin)
	}
}
