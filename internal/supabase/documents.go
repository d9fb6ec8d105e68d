package supabase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
	"tailor-gallery-backend/internal/customers"
	"tailor-gallery-backend/internal/models"
)

const customerColumns = "id,name,measurements,outfit_name,fabric,date,images,invoice"

// customerRow is the PostgREST representation of a customer document.
type customerRow struct {
	ID           string         `json:"id,omitempty"`
	Name         string         `json:"name"`
	Measurements string         `json:"measurements"`
	OutfitName   string         `json:"outfit_name"`
	Fabric       string         `json:"fabric"`
	Date         string         `json:"date"`
	Images       []string       `json:"images"`
	Invoice      models.Invoice `json:"invoice"`
}

func rowFromCustomer(c models.Customer) customerRow {
	images := c.Images
	if images == nil {
		images = []string{}
	}
	return customerRow{
		Name:         c.Name,
		Measurements: c.Measurements,
		OutfitName:   c.OutfitName,
		Fabric:       c.Fabric,
		Date:         c.Date,
		Images:       images,
		Invoice:      c.InvoiceOrDefault(),
	}
}

func (r customerRow) customer() models.Customer {
	images := r.Images
	if images == nil {
		images = []string{}
	}
	invoice := r.Invoice
	return models.Customer{
		ID:           r.ID,
		Name:         r.Name,
		Measurements: r.Measurements,
		OutfitName:   r.OutfitName,
		Fabric:       r.Fabric,
		Date:         r.Date,
		Images:       images,
		Invoice:      &invoice,
	}
}

// DocumentStore keeps customers in a Supabase table through PostgREST.
type DocumentStore struct {
	client *supabase.Client
	table  string
}

var _ customers.Store = (*DocumentStore)(nil)

func NewDocumentStore(client *supabase.Client) *DocumentStore {
	return &DocumentStore{
		client: client,
		table:  CustomersTable,
	}
}

func (s *DocumentStore) List(ctx context.Context) ([]models.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []customerRow
	if _, err := s.client.From(s.table).Select(customerColumns, "", false).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	list := make([]models.Customer, len(rows))
	for i, row := range rows {
		list[i] = row.customer()
	}
	return list, nil
}

func (s *DocumentStore) Create(ctx context.Context, c models.Customer) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var created []customerRow
	_, err := s.client.From(s.table).
		Insert(rowFromCustomer(c), false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	if len(created) == 0 || created[0].ID == "" {
		return "", fmt.Errorf("failed to create customer: no id returned")
	}
	return created[0].ID, nil
}

func (s *DocumentStore) Update(ctx context.Context, id string, c models.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return customers.ErrNotFound
	}

	var updated []customerRow
	_, err := s.client.From(s.table).
		Update(rowFromCustomer(c), "representation", "").
		Eq("id", id).
		ExecuteTo(&updated)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if len(updated) == 0 {
		return customers.ErrNotFound
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return customers.ErrNotFound
	}

	if _, _, err := s.client.From(s.table).Delete("minimal", "").Eq("id", id).Execute(); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}
