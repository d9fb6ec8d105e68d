package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tailor-gallery-backend/internal/customers"
	"tailor-gallery-backend/internal/gallery"
	"tailor-gallery-backend/internal/httperr"
	"tailor-gallery-backend/internal/models"
)

type CustomersHandler struct {
	repo           gallery.Repository
	uploader       gallery.Uploader
	exporter       gallery.Exporter
	maxUploadBytes int64
}

func NewCustomersHandler(repo gallery.Repository, uploader gallery.Uploader, exporter gallery.Exporter, maxUploadBytes int64) *CustomersHandler {
	return &CustomersHandler{
		repo:           repo,
		uploader:       uploader,
		exporter:       exporter,
		maxUploadBytes: maxUploadBytes,
	}
}

// ListCustomers godoc
// @Summary     List customers
// @Description Returns every customer in store order. search keeps the customers whose name contains it, ignoring case.
// @Tags        customers
// @Produce     json
// @Param       search query string false "Name filter"
// @Success     200 {object} models.CustomerListResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /customers [get]
func (h *CustomersHandler) ListCustomers(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CustomerListResponse{
		Customers: gallery.FilterByName(list, c.Query("search")),
	})
}

// CreateCustomer godoc
// @Summary     Create customer
// @Description Uploads the attached photos one at a time, then stores the customer with their URLs. Accepts JSON or multipart/form-data (photos in "files").
// @Tags        customers
// @Accept      json,mpfd
// @Produce     json
// @Security    Bearer
// @Param       request body models.CustomerForm true "Customer"
// @Success     201 {object} models.CustomerListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /customers [post]
func (h *CustomersHandler) CreateCustomer(c *gin.Context) {
	h.save(c, "", http.StatusCreated)
}

// UpdateCustomer godoc
// @Summary     Update customer
// @Description Overwrites every form field of the customer. Newly attached photos replace the stored ones unless IMAGE_POLICY=append.
// @Tags        customers
// @Accept      json,mpfd
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Customer ID"
// @Param       request body models.CustomerForm true "Customer"
// @Success     200 {object} models.CustomerListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /customers/{id} [put]
func (h *CustomersHandler) UpdateCustomer(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		httperr.Respond(c, customers.ErrMissingID)
		return
	}
	h.save(c, id, http.StatusOK)
}

func (h *CustomersHandler) save(c *gin.Context, id string, status int) {
	form, files, err := bindCustomerForm(c, h.maxUploadBytes)
	if err != nil {
		httperr.BadRequest(c, "invalid request", err.Error())
		return
	}

	ctx := c.Request.Context()
	urls, err := h.uploader.Upload(ctx, files)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	list, err := h.repo.Save(ctx, form.Customer(id), urls)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(status, models.CustomerListResponse{Customers: list})
}

// DeleteCustomer godoc
// @Summary     Delete customer
// @Description Permanently removes the customer. Uploaded photos stay in storage.
// @Tags        customers
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Customer ID"
// @Success     200 {object} models.CustomerListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /customers/{id} [delete]
func (h *CustomersHandler) DeleteCustomer(c *gin.Context) {
	list, err := h.repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CustomerListResponse{Customers: list})
}

// ExportCustomer godoc
// @Summary     Export customer as PDF
// @Description Downloads a one-page PDF summary named after the customer
// @Tags        customers
// @Produce     application/pdf
// @Param       id path string true "Customer ID"
// @Success     200 {file} binary
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /customers/{id}/export [get]
func (h *CustomersHandler) ExportCustomer(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	customer, ok := gallery.FindByID(list, c.Param("id"))
	if !ok {
		httperr.Respond(c, customers.ErrNotFound)
		return
	}

	data, err := h.exporter.Export(customer)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	sendPDF(c, customer, data)
}
