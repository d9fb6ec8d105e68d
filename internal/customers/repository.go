// Package customers holds the customer record lifecycle: listing, saving
// (create or update) and deleting records in a document store. Every mutation
// is followed by a full re-list; callers replace their state with the result.
package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"tailor-gallery-backend/internal/models"
)

var (
	ErrMissingID    = errors.New("customer id is required")
	ErrNameRequired = errors.New("customer name is required")
	ErrNotFound     = errors.New("customer not found")
)

// Store is the document-store boundary: one collection of customer documents
// keyed by store-assigned ids.
type Store interface {
	List(ctx context.Context) ([]models.Customer, error)
	// Create inserts a new document and returns the id the store assigned.
	Create(ctx context.Context, c models.Customer) (string, error)
	Update(ctx context.Context, id string, c models.Customer) error
	Delete(ctx context.Context, id string) error
}

// StoreError wraps a failure reported by the Store.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s customer %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s customers: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ImagePolicy decides how freshly uploaded URLs combine with the ones a
// record already has.
type ImagePolicy int

const (
	// ReplaceImages overwrites the stored images whenever new files were uploaded.
	ReplaceImages ImagePolicy = iota
	// AppendImages keeps the stored images and adds the new ones after them.
	AppendImages
)

// ParseImagePolicy maps "replace" and "append" to their policies.
func ParseImagePolicy(s string) (ImagePolicy, error) {
	switch strings.ToLower(s) {
	case "", "replace":
		return ReplaceImages, nil
	case "append":
		return AppendImages, nil
	}
	return ReplaceImages, fmt.Errorf("unknown image policy %q", s)
}

type Repository struct {
	store  Store
	policy ImagePolicy
	logger *zap.Logger
}

type Option func(*Repository)

func WithImagePolicy(p ImagePolicy) Option {
	return func(r *Repository) {
		r.policy = p
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

func NewRepository(store Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		policy: ReplaceImages,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns every customer in the order the store yields them.
func (r *Repository) List(ctx context.Context) ([]models.Customer, error) {
	list, err := r.store.List(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	if list == nil {
		list = []models.Customer{}
	}
	for i := range list {
		if list[i].Images == nil {
			list[i].Images = []string{}
		}
	}
	return list, nil
}

// Save writes the whole form. A record without an id is created and the
// store assigns one; a record with an id is updated in place. The returned
// slice is a fresh List taken after the write.
func (r *Repository) Save(ctx context.Context, record models.Customer, uploadedImageURLs []string) ([]models.Customer, error) {
	if strings.TrimSpace(record.Name) == "" {
		return nil, ErrNameRequired
	}

	doc := record
	doc.Images = r.mergeImages(record.Images, uploadedImageURLs)
	invoice := record.InvoiceOrDefault()
	doc.Invoice = &invoice

	if record.Persisted() {
		if err := r.store.Update(ctx, record.ID, doc); err != nil {
			return nil, &StoreError{Op: "update", ID: record.ID, Err: err}
		}
		r.logger.Info("customer updated", zap.String("customer_id", record.ID), zap.Int("images", len(doc.Images)))
	} else {
		id, err := r.store.Create(ctx, doc)
		if err != nil {
			return nil, &StoreError{Op: "create", Err: err}
		}
		r.logger.Info("customer created", zap.String("customer_id", id), zap.Int("images", len(doc.Images)))
	}

	return r.List(ctx)
}

// Delete removes the customer permanently. An empty id is rejected before
// the store is touched and nothing is re-listed.
func (r *Repository) Delete(ctx context.Context, id string) ([]models.Customer, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return nil, &StoreError{Op: "delete", ID: id, Err: err}
	}
	r.logger.Info("customer deleted", zap.String("customer_id", id))

	return r.List(ctx)
}

func (r *Repository) mergeImages(existing, uploaded []string) []string {
	if len(uploaded) == 0 {
		if existing == nil {
			return []string{}
		}
		return append([]string(nil), existing...)
	}
	if r.policy == AppendImages {
		merged := make([]string, 0, len(existing)+len(uploaded))
		merged = append(merged, existing...)
		return append(merged, uploaded...)
	}
	return append([]string(nil), uploaded...)
}
