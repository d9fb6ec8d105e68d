// Package export renders a customer record as a one-page PDF summary. It
// works purely on the record it is given and never touches the network.
package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"tailor-gallery-backend/internal/models"
)

// Line is one piece of text at a fixed position, in millimetres from the
// top-left corner of an A4 page.
type Line struct {
	X, Y float64
	Text string
}

// DejaVu Sans Condensed covers the currency signs (₦, ₵, €) the core PDF
// fonts cannot encode.
//
//go:embed fonts/DejaVuSansCondensed.ttf
var defaultFont []byte

const (
	fontFamily = "body"
	fontSize   = 16
)

type PDFExporter struct {
	title    string
	currency string
	fontPath string
	compress bool
	created  func() time.Time
}

type Option func(*PDFExporter)

// WithUTF8Font renders text with the TrueType font at path instead of the
// embedded DejaVu Sans Condensed.
func WithUTF8Font(path string) Option {
	return func(e *PDFExporter) {
		e.fontPath = path
	}
}

// WithCompression toggles stream compression (on by default).
func WithCompression(on bool) Option {
	return func(e *PDFExporter) {
		e.compress = on
	}
}

func WithCreationTime(now func() time.Time) Option {
	return func(e *PDFExporter) {
		e.created = now
	}
}

func NewPDFExporter(title, currency string, opts ...Option) *PDFExporter {
	e := &PDFExporter{
		title:    title,
		currency: currency,
		compress: true,
		created:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InvoiceLine reads "Invoice: <currency><amount> | PAID" or "| UNPAID". A
// missing invoice counts as unpaid with an empty amount.
func (e *PDFExporter) InvoiceLine(c models.Customer) string {
	inv := c.InvoiceOrDefault()
	status := "UNPAID"
	if inv.Paid {
		status = "PAID"
	}
	return fmt.Sprintf("Invoice: %s%s | %s", e.currency, inv.Amount, status)
}

// Lines lays out the summary. Long values run off the page; nothing wraps.
func (e *PDFExporter) Lines(c models.Customer) []Line {
	return []Line{
		{X: 10, Y: 10, Text: e.title},
		{X: 10, Y: 25, Text: "Name: " + c.Name},
		{X: 10, Y: 35, Text: "Measurements: " + c.Measurements},
		{X: 10, Y: 45, Text: "Outfit: " + c.OutfitName},
		{X: 10, Y: 55, Text: "Fabric: " + c.Fabric},
		{X: 10, Y: 65, Text: e.InvoiceLine(c)},
	}
}

func (e *PDFExporter) Export(c models.Customer) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetCreationDate(e.created())
	pdf.SetTitle(c.Name, true)

	if e.fontPath != "" {
		pdf.AddUTF8Font(fontFamily, "", e.fontPath)
	} else {
		pdf.AddUTF8FontFromBytes(fontFamily, "", defaultFont)
	}
	pdf.SetFont(fontFamily, "", fontSize)

	pdf.AddPage()
	for _, line := range e.Lines(c) {
		pdf.Text(line.X, line.Y, line.Text)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the download name offered for the customer's PDF.
func Filename(c models.Customer) string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "customer"
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\r', '\n':
			return '_'
		}
		return r
	}, name)
	return name + ".pdf"
}
