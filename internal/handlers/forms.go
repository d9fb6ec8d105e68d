package handlers

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"tailor-gallery-backend/internal/assets"
	"tailor-gallery-backend/internal/export"
	"tailor-gallery-backend/internal/models"
)

// filesField is the multipart field carrying newly selected photos.
const filesField = "files"

// bindCustomerForm reads the customer form from a JSON body or from a
// (multipart) form, together with any attached files in selection order.
func bindCustomerForm(c *gin.Context, maxBytes int64) (models.CustomerForm, []assets.File, error) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}

	var form models.CustomerForm
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&form); err != nil {
			return form, nil, fmt.Errorf("invalid customer: %w", err)
		}
		return form, nil, nil
	}

	if err := c.ShouldBind(&form); err != nil {
		return form, nil, fmt.Errorf("invalid customer form: %w", err)
	}
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return form, nil, nil
	}

	multipartForm, err := c.MultipartForm()
	if err != nil {
		return form, nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	return form, uploadFiles(multipartForm.File[filesField]), nil
}

func uploadFiles(headers []*multipart.FileHeader) []assets.File {
	files := make([]assets.File, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		files = append(files, assets.File{
			Name: fh.Filename,
			Size: fh.Size,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return files
}

// sendPDF offers data as a download named after the customer.
func sendPDF(c *gin.Context, customer models.Customer, data []byte) {
	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": export.Filename(customer),
	})
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, "application/pdf", data)
}
