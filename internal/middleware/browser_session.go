package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"tailor-gallery-backend/internal/config"
	"tailor-gallery-backend/internal/models"
)

const (
	// SessionCookieName holds the admin's Supabase access token in the
	// browser that logged in.
	SessionCookieName = "tailor_admin_session"
	// CSRFField is the form field, and CSRFHeader the header, that must echo
	// the CSRF token on every state-changing request.
	CSRFField  = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
	// CSRFTokenKey is the context key of the token to render into forms.
	CSRFTokenKey = "csrf_token"
)

var (
	ErrNoBrowserSession = errors.New("no admin session in this browser")
	ErrSessionEnded     = errors.New("admin session has ended")
	ErrInvalidCSRFToken = errors.New("invalid csrf token")
)

// BrowserSession ties the process-wide admin session to the browser that
// signed in. That browser holds the access token in an HttpOnly cookie, and
// a request counts as the admin's only while the token verifies and is still
// the current session's token.
type BrowserSession struct {
	secret  []byte
	secure  bool
	current func() *models.Admin
	now     func() time.Time
}

func NewBrowserSession(cfg *config.Config, current func() *models.Admin) *BrowserSession {
	return &BrowserSession{
		secret:  []byte(cfg.SupabaseJWTSecret),
		secure:  cfg.IsProduction(),
		current: current,
		now:     time.Now,
	}
}

// Issue stores admin's access token in the session cookie. The cookie lives
// as long as the token, or for the browser session when no expiry is known.
func (s *BrowserSession) Issue(c *gin.Context, admin *models.Admin) {
	maxAge := 0
	if !admin.ExpiresAt.IsZero() {
		maxAge = int(admin.ExpiresAt.Sub(s.now()).Seconds())
		if maxAge <= 0 {
			maxAge = -1
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, admin.AccessToken, maxAge, "/", "", s.secure, true)
}

func (s *BrowserSession) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", s.secure, true)
}

// Authenticate returns the admin whose session this request's cookie
// carries and stores the admin's id, email and CSRF token in the context.
func (s *BrowserSession) Authenticate(c *gin.Context) (*models.Admin, error) {
	token, err := c.Cookie(SessionCookieName)
	if err != nil || token == "" {
		return nil, ErrNoBrowserSession
	}
	if _, err := ParseAccessToken(string(s.secret), token); err != nil {
		return nil, errors.Join(ErrNoBrowserSession, err)
	}

	admin := s.current()
	if admin == nil || subtle.ConstantTimeCompare([]byte(token), []byte(admin.AccessToken)) != 1 {
		return nil, ErrSessionEnded
	}

	c.Set(UserIDKey, admin.ID)
	c.Set(UserEmailKey, admin.Email)
	c.Set(CSRFTokenKey, s.CSRFToken(token))
	return admin, nil
}

// CSRFToken derives the form token for an access token.
func (s *BrowserSession) CSRFToken(accessToken string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte("csrf:"))
	mac.Write([]byte(accessToken))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Require admits only requests from the browser holding the current admin
// session. Unsafe methods must also echo the CSRF token in CSRFHeader or the
// CSRFField form field. Rejected requests are handed to reject and aborted.
func (s *BrowserSession) Require(reject func(c *gin.Context, err error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := s.Authenticate(c); err != nil {
			reject(c, err)
			c.Abort()
			return
		}

		if !safeMethod(c.Request.Method) {
			sent := c.GetHeader(CSRFHeader)
			if sent == "" {
				sent = c.PostForm(CSRFField)
			}
			if !hmac.Equal([]byte(sent), []byte(c.GetString(CSRFTokenKey))) {
				reject(c, ErrInvalidCSRFToken)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// LimitBody caps request bodies at maxBytes. It runs before anything that
// parses a form.
func LimitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
