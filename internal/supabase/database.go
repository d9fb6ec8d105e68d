package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"tailor-gallery-backend/internal/customers"
	"tailor-gallery-backend/internal/models"
)

// DatabaseClient keeps customers in the Supabase Postgres database directly.
// It is used instead of PostgREST when DATABASE_URL is configured.
type DatabaseClient struct {
	db    *sql.DB
	table string
}

var _ customers.Store = (*DatabaseClient)(nil)

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return WrapDB(db), nil
}

// WrapDB builds a DatabaseClient on an already opened connection pool.
func WrapDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db, table: pq.QuoteIdentifier(CustomersTable)}
}

func (d *DatabaseClient) List(ctx context.Context) ([]models.Customer, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, measurements, outfit_name, fabric, date, images, invoice
		FROM `+d.table)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	list := make([]models.Customer, 0)
	for rows.Next() {
		var (
			c           models.Customer
			invoiceJSON []byte
		)
		err := rows.Scan(
			&c.ID, &c.Name, &c.Measurements, &c.OutfitName,
			&c.Fabric, &c.Date, pq.Array(&c.Images), &invoiceJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		var invoice models.Invoice
		if len(invoiceJSON) > 0 {
			if err := json.Unmarshal(invoiceJSON, &invoice); err != nil {
				return nil, fmt.Errorf("failed to decode invoice of customer %s: %w", c.ID, err)
			}
		}
		c.Invoice = &invoice
		if c.Images == nil {
			c.Images = []string{}
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	return list, nil
}

func (d *DatabaseClient) Create(ctx context.Context, c models.Customer) (string, error) {
	invoiceJSON, err := json.Marshal(c.InvoiceOrDefault())
	if err != nil {
		return "", fmt.Errorf("failed to encode invoice: %w", err)
	}

	var id string
	err = d.db.QueryRowContext(ctx, `
		INSERT INTO `+d.table+` (name, measurements, outfit_name, fabric, date, images, invoice)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, c.Name, c.Measurements, c.OutfitName, c.Fabric, c.Date, pq.Array(nonNil(c.Images)), invoiceJSON).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}

	return id, nil
}

func (d *DatabaseClient) Update(ctx context.Context, id string, c models.Customer) error {
	if _, err := uuid.Parse(id); err != nil {
		return customers.ErrNotFound
	}

	invoiceJSON, err := json.Marshal(c.InvoiceOrDefault())
	if err != nil {
		return fmt.Errorf("failed to encode invoice: %w", err)
	}

	res, err := d.db.ExecContext(ctx, `
		UPDATE `+d.table+`
		SET name = $1, measurements = $2, outfit_name = $3, fabric = $4,
		    date = $5, images = $6, invoice = $7, updated_at = NOW()
		WHERE id = $8
	`, c.Name, c.Measurements, c.OutfitName, c.Fabric, c.Date, pq.Array(nonNil(c.Images)), invoiceJSON, id)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if n == 0 {
		return customers.ErrNotFound
	}
	return nil
}

func (d *DatabaseClient) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return customers.ErrNotFound
	}

	_, err := d.db.ExecContext(ctx, `DELETE FROM `+d.table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// DB exposes the connection pool, for running migrations.
func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
