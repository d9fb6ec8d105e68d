// Package gallery holds the admin dashboard state: which admin is signed in,
// the customer list as last fetched, and the orchestration of save, delete
// and export on top of the repository, uploader and exporter.
package gallery

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"tailor-gallery-backend/internal/assets"
	"tailor-gallery-backend/internal/customers"
	"tailor-gallery-backend/internal/models"
)

var ErrNotAuthenticated = errors.New("admin login required")

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session is the observable current-admin value.
type Session interface {
	Current() *models.Admin
	Subscribe(fn func(*models.Admin)) func()
}

type Repository interface {
	List(ctx context.Context) ([]models.Customer, error)
	Save(ctx context.Context, record models.Customer, uploadedImageURLs []string) ([]models.Customer, error)
	Delete(ctx context.Context, id string) ([]models.Customer, error)
}

type Uploader interface {
	Upload(ctx context.Context, files []assets.File) ([]string, error)
}

type Exporter interface {
	Export(c models.Customer) ([]byte, error)
}

type Gallery struct {
	session  Session
	repo     Repository
	uploader Uploader
	exporter Exporter
	logger   *zap.Logger

	mu          sync.RWMutex
	ctx         context.Context
	state       State
	admin       *models.Admin
	customers   []models.Customer
	unsubscribe func()
}

func New(session Session, repo Repository, uploader Uploader, exporter Exporter, logger *zap.Logger) *Gallery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gallery{
		session:   session,
		repo:      repo,
		uploader:  uploader,
		exporter:  exporter,
		logger:    logger,
		customers: []models.Customer{},
	}
}

// Mount subscribes to session changes and takes the current session as the
// starting state. ctx bounds the list refreshes triggered by a login.
func (g *Gallery) Mount(ctx context.Context) {
	g.mu.Lock()
	if g.unsubscribe != nil {
		g.mu.Unlock()
		return
	}
	g.ctx = ctx
	g.unsubscribe = g.session.Subscribe(g.onSession)
	g.mu.Unlock()

	g.onSession(g.session.Current())
}

// Unmount cancels the session subscription. Later session changes are not
// observed.
func (g *Gallery) Unmount() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (g *Gallery) onSession(admin *models.Admin) {
	g.mu.Lock()
	ctx := g.ctx
	if admin == nil {
		g.state = Unauthenticated
		g.admin = nil
		g.customers = []models.Customer{}
		g.mu.Unlock()
		return
	}
	g.state = Authenticated
	g.admin = admin
	g.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	if err := g.Refresh(ctx); err != nil {
		g.logger.Error("failed to load customers after login", zap.Error(err))
	}
}

func (g *Gallery) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Gallery) Admin() *models.Admin {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.admin
}

// Customers returns a copy of the in-memory list.
func (g *Gallery) Customers() []models.Customer {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]models.Customer(nil), g.customers...)
}

// Search filters the in-memory list by name.
func (g *Gallery) Search(query string) []models.Customer {
	return FilterByName(g.Customers(), query)
}

// Find looks a customer up in the in-memory list.
func (g *Gallery) Find(id string) (models.Customer, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return FindByID(g.customers, id)
}

// Refresh replaces the in-memory list with a fresh List from the store. On
// failure the previous list is kept.
func (g *Gallery) Refresh(ctx context.Context) error {
	list, err := g.repo.List(ctx)
	if err != nil {
		return err
	}
	g.replace(list)
	return nil
}

// SaveCustomer uploads files in order, then creates or updates record with
// the resulting URLs. Nothing is written when an upload fails.
func (g *Gallery) SaveCustomer(ctx context.Context, record models.Customer, files []assets.File) error {
	if g.State() != Authenticated {
		return ErrNotAuthenticated
	}

	urls, err := g.uploader.Upload(ctx, files)
	if err != nil {
		return err
	}
	list, err := g.repo.Save(ctx, record, urls)
	if err != nil {
		return err
	}
	g.replace(list)
	return nil
}

// DeleteCustomer removes the customer. An empty id leaves the list as it is.
func (g *Gallery) DeleteCustomer(ctx context.Context, id string) error {
	if g.State() != Authenticated {
		return ErrNotAuthenticated
	}

	list, err := g.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	g.replace(list)
	return nil
}

// ExportPDF renders the in-memory record with the given id.
func (g *Gallery) ExportPDF(id string) (models.Customer, []byte, error) {
	c, ok := g.Find(id)
	if !ok {
		return models.Customer{}, nil, customers.ErrNotFound
	}
	data, err := g.exporter.Export(c)
	if err != nil {
		return models.Customer{}, nil, err
	}
	return c, data, nil
}

func (g *Gallery) replace(list []models.Customer) {
	if list == nil {
		list = []models.Customer{}
	}
	g.mu.Lock()
	g.customers = list
	g.mu.Unlock()
}

// FilterByName keeps the customers whose name contains query, ignoring case.
// An empty query keeps everything.
func FilterByName(list []models.Customer, query string) []models.Customer {
	q := strings.ToLower(query)
	out := make([]models.Customer, 0, len(list))
	for _, c := range list {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

// FindByID returns the first customer in list with the given id.
func FindByID(list []models.Customer, id string) (models.Customer, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return models.Customer{}, false
}
