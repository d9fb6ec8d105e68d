package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"tailor-gallery-backend/internal/customers"
	"tailor-gallery-backend/internal/gallery"
	"tailor-gallery-backend/internal/httperr"
	"tailor-gallery-backend/internal/logger"
	"tailor-gallery-backend/internal/middleware"
	"tailor-gallery-backend/internal/models"
	"tailor-gallery-backend/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// GalleryTemplates parses the server-rendered pages, for gin's SetHTMLTemplate.
func GalleryTemplates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

type InvoiceFormatter interface {
	InvoiceLine(c models.Customer) string
}

// GalleryHandler serves the admin dashboard as HTML. Only the browser that
// logged in, holding the session cookie, sees the dashboard and may change
// anything.
type GalleryHandler struct {
	gallery        *gallery.Gallery
	session        SessionService
	browser        *middleware.BrowserSession
	invoices       InvoiceFormatter
	title          string
	maxUploadBytes int64
}

func NewGalleryHandler(g *gallery.Gallery, session SessionService, browser *middleware.BrowserSession, invoices InvoiceFormatter, title string, maxUploadBytes int64) *GalleryHandler {
	return &GalleryHandler{
		gallery:        g,
		session:        session,
		browser:        browser,
		invoices:       invoices,
		title:          title,
		maxUploadBytes: maxUploadBytes,
	}
}

type card struct {
	Customer    models.Customer
	InvoiceLine string
}

type pageData struct {
	Title string
	Error string
	Email string
	CSRF  string
	Admin *models.Admin
	Query string
	Edit  *models.Customer
	Form  models.CustomerForm
	Cards []card
}

type lightboxData struct {
	Title      string
	CustomerID string
	Image      string
	Index      int
	Previous   int
	Next       int
}

// Index renders the login form, or the dashboard for the browser holding the
// admin session. q filters the grid by name and edit=<id> prefills the form.
func (h *GalleryHandler) Index(c *gin.Context) {
	if _, err := h.browser.Authenticate(c); err != nil {
		c.HTML(http.StatusOK, "login", pageData{Title: h.title})
		return
	}

	data := pageData{Title: h.title}
	if err := h.gallery.Refresh(c.Request.Context()); err != nil {
		_ = c.Error(err)
		data.Error = bannerMessage(err)
	}
	if id := c.Query("edit"); id != "" {
		if customer, ok := h.gallery.Find(id); ok {
			data.Edit = &customer
			data.Form = models.FormFromCustomer(customer)
		}
	}
	h.renderDashboard(c, http.StatusOK, data)
}

// Login signs the admin in and hands this browser the session cookie.
func (h *GalleryHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	admin, err := h.session.LogIn(c.Request.Context(), email, c.PostForm("password"))
	if err != nil {
		_ = c.Error(err)
		status, _ := httperr.Classify(err)
		message := "Login failed"
		if !errors.Is(err, session.ErrInvalidCredentials) {
			message = "Login is unavailable, try again shortly"
		}
		c.HTML(status, "login", pageData{Title: h.title, Error: message, Email: email})
		return
	}
	h.browser.Issue(c, admin)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *GalleryHandler) Logout(c *gin.Context) {
	h.browser.Clear(c)
	h.session.LogOut(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

// RejectBrowser answers requests that failed the browser session check.
func (h *GalleryHandler) RejectBrowser(c *gin.Context, err error) {
	if errors.Is(err, middleware.ErrInvalidCSRFToken) {
		_ = c.Error(err)
		c.HTML(http.StatusForbidden, "error", pageData{Title: h.title, Error: "This form has expired. Reload the page and try again."})
		return
	}
	if errors.Is(err, middleware.ErrSessionEnded) {
		h.browser.Clear(c)
	}
	_ = c.Error(err)
	h.renderError(c, gallery.ErrNotAuthenticated)
}

// SaveCustomer creates the customer, or updates it when the form carries an id.
func (h *GalleryHandler) SaveCustomer(c *gin.Context) {
	form, files, err := bindCustomerForm(c, h.maxUploadBytes)
	if err != nil {
		h.renderDashboard(c, http.StatusBadRequest, pageData{Title: h.title, Error: err.Error(), Form: form})
		return
	}

	record := form.Customer(c.PostForm("id"))
	if err := h.gallery.SaveCustomer(c.Request.Context(), record, files); err != nil {
		_ = c.Error(err)
		status, _ := httperr.Classify(err)
		data := pageData{Title: h.title, Error: bannerMessage(err), Form: form}
		if record.Persisted() {
			data.Edit = &record
		}
		h.renderDashboard(c, status, data)
		return
	}
	logger.FromGin(c).Info("customer saved", zap.Int("files", len(files)))
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *GalleryHandler) DeleteCustomer(c *gin.Context) {
	if err := h.gallery.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ExportCustomer downloads the PDF of a customer already on the dashboard.
func (h *GalleryHandler) ExportCustomer(c *gin.Context) {
	customer, data, err := h.gallery.ExportPDF(c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	sendPDF(c, customer, data)
}

// Lightbox shows one of a customer's photos full size with wraparound
// previous/next links.
func (h *GalleryHandler) Lightbox(c *gin.Context) {
	customer, ok := h.gallery.Find(c.Param("id"))
	if !ok {
		h.renderError(c, customers.ErrNotFound)
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.renderError(c, gallery.ErrImageOutOfRange)
		return
	}

	var lb gallery.Lightbox
	if err := lb.Open(customer.Images, index); err != nil {
		h.renderError(c, err)
		return
	}
	image := lb.Current()
	next := lb.Next()
	lb.Previous()
	previous := lb.Previous()

	c.HTML(http.StatusOK, "lightbox", lightboxData{
		Title:      h.title,
		CustomerID: customer.ID,
		Image:      image,
		Index:      index,
		Previous:   previous,
		Next:       next,
	})
}

func (h *GalleryHandler) renderDashboard(c *gin.Context, status int, data pageData) {
	data.Admin = h.gallery.Admin()
	data.CSRF = c.GetString(middleware.CSRFTokenKey)
	data.Query = c.Query("q")
	for _, customer := range h.gallery.Search(data.Query) {
		data.Cards = append(data.Cards, card{Customer: customer, InvoiceLine: h.invoices.InvoiceLine(customer)})
	}
	c.HTML(status, "dashboard", data)
}

func (h *GalleryHandler) renderError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, _ := httperr.Classify(err)
	c.HTML(status, "error", pageData{Title: h.title, Error: bannerMessage(err)})
}

func bannerMessage(err error) string {
	_, body := httperr.Classify(err)
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
