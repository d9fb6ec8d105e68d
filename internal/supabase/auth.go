package supabase

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	gotrue "github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
	"go.uber.org/zap"
	"tailor-gallery-backend/internal/models"
	"tailor-gallery-backend/internal/session"
)

// gotrue-go reports non-2xx answers as "response status code <n>: <body>".
var statusCodePattern = regexp.MustCompile(`response status code (\d{3})`)

// GoTrueAPI is the part of Supabase Auth the service relies on.
type GoTrueAPI interface {
	SignInWithEmailPassword(email, password string) (*types.TokenResponse, error)
	Logout(accessToken string) error
}

type gotrueAPI struct {
	client gotrue.Client
}

// NewGoTrueAPI adapts the supabase-go auth client.
func NewGoTrueAPI(client gotrue.Client) GoTrueAPI {
	return gotrueAPI{client: client}
}

func (g gotrueAPI) SignInWithEmailPassword(email, password string) (*types.TokenResponse, error) {
	return g.client.SignInWithEmailPassword(email, password)
}

func (g gotrueAPI) Logout(accessToken string) error {
	return g.client.WithToken(accessToken).Logout()
}

// AuthClient signs the admin in and out against Supabase Auth and publishes
// every resulting state change, including token expiry, on its AuthStream.
type AuthClient struct {
	api    GoTrueAPI
	stream *AuthStream
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *models.Admin
	expiry  *time.Timer
}

func NewAuthClient(api GoTrueAPI, logger *zap.Logger) *AuthClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthClient{
		api:    api,
		stream: NewAuthStream(),
		logger: logger,
		now:    time.Now,
	}
}

func (a *AuthClient) SignIn(ctx context.Context, email, password string) (*models.Admin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := a.api.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, classifySignInError(err)
	}

	ttl := time.Duration(resp.ExpiresIn) * time.Second
	admin := &models.Admin{
		ID:          resp.User.ID.String(),
		Email:       resp.User.Email,
		AccessToken: resp.AccessToken,
	}
	if ttl > 0 {
		admin.ExpiresAt = a.now().Add(ttl)
	}

	a.mu.Lock()
	a.stopExpiryLocked()
	a.current = admin
	if ttl > 0 {
		a.expiry = time.AfterFunc(ttl, func() { a.expire(admin) })
	}
	a.mu.Unlock()

	a.logger.Info("admin signed in", zap.String("admin_id", admin.ID))
	a.stream.Publish(admin)
	return admin, nil
}

// SignOut always clears the local session and publishes a nil admin. The
// error, if any, comes from revoking the token remotely.
func (a *AuthClient) SignOut(ctx context.Context) error {
	a.mu.Lock()
	a.stopExpiryLocked()
	current := a.current
	a.current = nil
	a.mu.Unlock()

	var err error
	if current != nil && current.AccessToken != "" {
		if logoutErr := a.api.Logout(current.AccessToken); logoutErr != nil {
			err = fmt.Errorf("failed to revoke session: %w", logoutErr)
		}
	}

	a.logger.Info("admin signed out")
	a.stream.Publish(nil)
	return err
}

// OnAuthStateChange registers fn for every future state change.
func (a *AuthClient) OnAuthStateChange(fn func(*models.Admin)) func() {
	return a.stream.Subscribe(fn)
}

// Close stops the pending expiry timer, if any.
func (a *AuthClient) Close() {
	a.mu.Lock()
	a.stopExpiryLocked()
	a.mu.Unlock()
}

func (a *AuthClient) expire(admin *models.Admin) {
	a.mu.Lock()
	if a.current != admin {
		a.mu.Unlock()
		return
	}
	a.current = nil
	a.expiry = nil
	a.mu.Unlock()

	a.logger.Info("admin session expired", zap.String("admin_id", admin.ID))
	a.stream.Publish(nil)
}

// classifySignInError separates credentials GoTrue refused (400, 401) from
// outages and other failures.
func classifySignInError(err error) error {
	if m := statusCodePattern.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		if code == http.StatusBadRequest || code == http.StatusUnauthorized {
			return fmt.Errorf("%w: %v", session.ErrInvalidCredentials, err)
		}
	}
	return fmt.Errorf("%w: %v", session.ErrProviderUnavailable, err)
}

func (a *AuthClient) stopExpiryLocked() {
	if a.expiry != nil {
		a.expiry.Stop()
		a.expiry = nil
	}
}
