// Package httperr maps domain errors onto HTTP statuses and the JSON error
// body shared by every handler.
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"tailor-gallery-backend/internal/assets"
	"tailor-gallery-backend/internal/customers"
	"tailor-gallery-backend/internal/gallery"
	"tailor-gallery-backend/internal/models"
	"tailor-gallery-backend/internal/session"
)

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

// Classify returns the status and body for err. Sentinels are checked before
// the wrapping types so a store reporting a missing row still yields 404.
func Classify(err error) (int, models.ErrorResponse) {
	var (
		storeErr  *customers.StoreError
		uploadErr *assets.UploadError
	)

	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized, models.ErrorResponse{Error: "login failed"}
	case errors.Is(err, session.ErrProviderUnavailable):
		return http.StatusBadGateway, models.ErrorResponse{Error: "auth unavailable", Message: err.Error()}
	case errors.Is(err, gallery.ErrNotAuthenticated):
		return http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()}
	case errors.Is(err, customers.ErrNameRequired), errors.Is(err, customers.ErrMissingID):
		return http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()}
	case errors.Is(err, customers.ErrNotFound):
		return http.StatusNotFound, models.ErrorResponse{Error: "not found", Message: err.Error()}
	case errors.Is(err, gallery.ErrEmptyImageSet), errors.Is(err, gallery.ErrImageOutOfRange):
		return http.StatusNotFound, models.ErrorResponse{Error: "image not found", Message: err.Error()}
	case errors.As(err, &uploadErr):
		return http.StatusBadGateway, models.ErrorResponse{Error: "upload failed", Message: err.Error()}
	case errors.As(err, &storeErr):
		return http.StatusBadGateway, models.ErrorResponse{Error: "store unavailable", Message: err.Error()}
	}
	return http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Message: err.Error()}
}

// Respond writes err as JSON and records it on the context for the request
// logger.
func Respond(c *gin.Context, err error) {
	status, body := Classify(err)
	_ = c.Error(err)
	c.JSON(status, body)
}
