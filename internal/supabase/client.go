package supabase

import (
	"github.com/supabase-community/supabase-go"
	"tailor-gallery-backend/internal/config"
)

// CustomersTable is the collection holding one document per customer.
const CustomersTable = "customers"

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}
