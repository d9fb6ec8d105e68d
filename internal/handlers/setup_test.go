package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/gotrue-go/types"
	"tailor-gallery-backend/internal/assets"
	"tailor-gallery-backend/internal/config"
	"tailor-gallery-backend/internal/customers"
	"tailor-gallery-backend/internal/export"
	"tailor-gallery-backend/internal/gallery"
	"tailor-gallery-backend/internal/handlers"
	"tailor-gallery-backend/internal/middleware"
	"tailor-gallery-backend/internal/models"
	"tailor-gallery-backend/internal/session"
	"tailor-gallery-backend/internal/supabase"
)

const (
	adminEmail    = "admin@beitadna.ng"
	adminPassword = "correct horse"
	jwtSecret     = "test-secret-key-for-jwt-signing-must-be-long-enough"
)

// stubGoTrue issues HS256 access tokens signed with jwtSecret, like a
// Supabase project would.
type stubGoTrue struct {
	signInErr error
}

func (s stubGoTrue) SignInWithEmailPassword(email, password string) (*types.TokenResponse, error) {
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	if email != adminEmail || password != adminPassword {
		return nil, errors.New(`response status code 400: {"error":"invalid_grant","error_description":"Invalid login credentials"}`)
	}
	id := uuid.New()
	token, err := signToken(jwtSecret, id.String(), email, time.Hour)
	if err != nil {
		return nil, err
	}
	return &types.TokenResponse{Session: types.Session{
		AccessToken: token,
		ExpiresIn:   3600,
		User:        types.User{ID: id, Email: email},
	}}, nil
}

func signToken(secret, sub, email string, ttl time.Duration) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"role":  "authenticated",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}).SignedString([]byte(secret))
}

func (stubGoTrue) Logout(accessToken string) error { return nil }

type memStore struct {
	mu     sync.Mutex
	nextID int
	docs   []models.Customer
	err    error
}

func (s *memStore) List(ctx context.Context) ([]models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]models.Customer(nil), s.docs...), nil
}

func (s *memStore) Create(ctx context.Context, c models.Customer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.nextID++
	c.ID = fmt.Sprintf("doc-%d", s.nextID)
	s.docs = append(s.docs, c)
	return c.ID, nil
}

func (s *memStore) Update(ctx context.Context, id string, c models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID == id {
			c.ID = id
			s.docs[i] = c
			return nil
		}
	}
	return customers.ErrNotFound
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			break
		}
	}
	return nil
}

type memObjects struct {
	mu           sync.Mutex
	contentTypes map[string]string
}

func (o *memObjects) PutObject(ctx context.Context, key string, body io.Reader, contentType string) error {
	if _, err := io.ReadAll(body); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.contentTypes == nil {
		o.contentTypes = map[string]string{}
	}
	o.contentTypes[key] = contentType
	return nil
}

func (o *memObjects) PublicURL(key string) string {
	return "https://cdn.example/" + key
}

type env struct {
	router  *gin.Engine
	store   *memStore
	objects *memObjects
	manager *session.Manager
	gallery *gallery.Gallery
	browser *middleware.BrowserSession
}

func newEnv(t *testing.T) *env {
	return newEnvWith(t, stubGoTrue{})
}

// newEnvWith mounts the production routes over in-memory backends.
func newEnvWith(t *testing.T, api supabase.GoTrueAPI) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e := &env{store: &memStore{}, objects: &memObjects{}}
	cfg := &config.Config{
		SupabaseJWTSecret: jwtSecret,
		MaxUploadMB:       8,
		Environment:       "test",
	}

	auth := supabase.NewAuthClient(api, nil)
	t.Cleanup(auth.Close)
	e.manager = session.NewManager(auth, nil)
	e.manager.Start()
	t.Cleanup(e.manager.Stop)

	clock := func() time.Time { return time.UnixMilli(1704067200000) }
	repo := customers.NewRepository(e.store)
	uploader := assets.NewUploader(e.objects, "clients", assets.WithClock(clock))
	exporter := export.NewPDFExporter("BEIT ADNA FASHION GALLERY", "₦")

	e.gallery = gallery.New(e.manager, repo, uploader, exporter, nil)
	e.gallery.Mount(context.Background())
	t.Cleanup(e.gallery.Unmount)

	e.browser = middleware.NewBrowserSession(cfg, e.manager.Current)
	maxUploadBytes := cfg.MaxUploadMB << 20

	router := gin.New()
	router.MaxMultipartMemory = maxUploadBytes
	router.SetHTMLTemplate(handlers.GalleryTemplates())
	handlers.RegisterRoutes(router, cfg, handlers.Routes{
		Health:    handlers.NewHealthHandler(nil),
		Auth:      handlers.NewAuthHandler(e.manager),
		Customers: handlers.NewCustomersHandler(repo, uploader, exporter, maxUploadBytes),
		Gallery:   handlers.NewGalleryHandler(e.gallery, e.manager, e.browser, exporter, "BEIT ADNA FASHION GALLERY", maxUploadBytes),
		Browser:   e.browser,
	})

	e.router = router
	return e
}

// logIn signs the admin in without any browser, the way an API client does,
// and returns the bearer token.
func (e *env) logIn(t *testing.T) string {
	t.Helper()
	admin, err := e.manager.LogIn(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	return admin.AccessToken
}

// browserAuth is what the browser that logged in through /login holds.
type browserAuth struct {
	cookie *http.Cookie
	csrf   string
}

// attach sends the session cookie and the CSRF header with req.
func (b browserAuth) attach(req *http.Request) *http.Request {
	req.AddCookie(b.cookie)
	req.Header.Set(middleware.CSRFHeader, b.csrf)
	return req
}

func (e *env) browserLogIn(t *testing.T) browserAuth {
	t.Helper()
	w := e.do(formRequest("/login", map[string]string{"email": adminEmail, "password": adminPassword}))
	require.Equal(t, http.StatusSeeOther, w.Code)

	cookie := sessionCookie(w)
	require.NotNil(t, cookie, "login should set the session cookie")
	require.NotEmpty(t, cookie.Value)
	return browserAuth{cookie: cookie, csrf: e.browser.CSRFToken(cookie.Value)}
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (e *env) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, path, body string) *http.Request {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(path string, values map[string]string) *http.Request {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

type upload struct {
	name    string
	content []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, _ := http.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
