package models

import "time"

// Invoice is stored embedded in its customer document. Amount is free text.
type Invoice struct {
	Amount string `json:"amount"`
	Paid   bool   `json:"paid"`
}

// Customer is one client record. ID is empty until the record is first saved.
type Customer struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Measurements string   `json:"measurements"`
	OutfitName   string   `json:"outfitName"`
	Fabric       string   `json:"fabric"`
	Date         string   `json:"date"`
	Images       []string `json:"images"`
	Invoice      *Invoice `json:"invoice,omitempty"`
}

// Persisted reports whether the record has been stored before.
func (c Customer) Persisted() bool {
	return c.ID != ""
}

// InvoiceOrDefault returns the invoice written with the document; a missing
// invoice is written as the empty, unpaid form default.
func (c Customer) InvoiceOrDefault() Invoice {
	if c.Invoice == nil {
		return Invoice{}
	}
	return *c.Invoice
}

// Admin is the authenticated identity published by the auth provider.
type Admin struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
}
