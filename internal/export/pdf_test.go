package export_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tailor-gallery-backend/internal/export"
	"tailor-gallery-backend/internal/models"
)

func amaka() models.Customer {
	return models.Customer{
		ID:           "c-1",
		Name:         "Amaka",
		Measurements: "34-28-36",
		OutfitName:   "Gown",
		Fabric:       "Lace",
		Date:         "2024-01-01",
		Images:       []string{},
		Invoice:      &models.Invoice{Amount: "5000", Paid: false},
	}
}

func newExporter(opts ...export.Option) *export.PDFExporter {
	return export.NewPDFExporter("BEIT ADNA FASHION GALLERY", "₦", opts...)
}

func TestInvoiceLine(t *testing.T) {
	e := newExporter()

	assert.Equal(t, "Invoice: ₦5000 | UNPAID", e.InvoiceLine(amaka()))

	paid := amaka()
	paid.Invoice = &models.Invoice{Amount: "5,000.50 (deposit)", Paid: true}
	assert.Equal(t, "Invoice: ₦5,000.50 (deposit) | PAID", e.InvoiceLine(paid))

	none := amaka()
	none.Invoice = nil
	assert.Equal(t, "Invoice: ₦ | UNPAID", e.InvoiceLine(none))
}

func TestLines_FixedLayout(t *testing.T) {
	lines := newExporter().Lines(amaka())

	require.Len(t, lines, 6)
	assert.Equal(t, export.Line{X: 10, Y: 10, Text: "BEIT ADNA FASHION GALLERY"}, lines[0])
	assert.Equal(t, export.Line{X: 10, Y: 25, Text: "Name: Amaka"}, lines[1])
	assert.Equal(t, export.Line{X: 10, Y: 35, Text: "Measurements: 34-28-36"}, lines[2])
	assert.Equal(t, export.Line{X: 10, Y: 45, Text: "Outfit: Gown"}, lines[3])
	assert.Equal(t, export.Line{X: 10, Y: 55, Text: "Fabric: Lace"}, lines[4])
	assert.Equal(t, export.Line{X: 10, Y: 65, Text: "Invoice: ₦5000 | UNPAID"}, lines[5])
}

// utf16be is how text drawn with an Identity-H font appears in an
// uncompressed content stream.
func utf16be(s string) []byte {
	var out []byte
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u>>8), byte(u))
	}
	return out
}

func TestExport_RendersPDF(t *testing.T) {
	e := newExporter(
		export.WithCompression(false),
		export.WithCreationTime(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
	)

	data, err := e.Export(amaka())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data), "/BaseFont /utf8body")
	assert.Contains(t, string(data), "/Encoding /Identity-H")
	assert.Contains(t, string(data), "/FontFile2")
	assert.NotContains(t, string(data), "/Helvetica")

	assert.True(t, bytes.Contains(data, utf16be("Name: Amaka")))
	assert.True(t, bytes.Contains(data, utf16be("Invoice: ₦5000 | UNPAID")), "invoice line should keep the naira sign")
	assert.False(t, bytes.Contains(data, utf16be("NGN")))
}

func TestExport_FontOverride(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("fonts", "DejaVuSansCondensed.ttf"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "custom.ttf")
	require.NoError(t, os.WriteFile(path, src, 0o600))

	data, err := newExporter(export.WithUTF8Font(path), export.WithCompression(false)).Export(amaka())
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, utf16be("Invoice: ₦5000 | UNPAID")))
}

func TestExport_IsDeterministic(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	e := newExporter(export.WithCreationTime(clock))

	first, err := e.Export(amaka())
	require.NoError(t, err)
	second, err := e.Export(amaka())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExport_MissingFontFails(t *testing.T) {
	_, err := newExporter(export.WithUTF8Font("/nonexistent/font.ttf")).Export(amaka())
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Amaka.pdf", export.Filename(amaka()))
	assert.Equal(t, "customer.pdf", export.Filename(models.Customer{}))
	assert.Equal(t, "A_B_C.pdf", export.Filename(models.Customer{Name: `A/B"C`}))
}
