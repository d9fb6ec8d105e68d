package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"tailor-gallery-backend/internal/httperr"
	"tailor-gallery-backend/internal/logger"
	"tailor-gallery-backend/internal/models"
)

// SessionService is the process-wide admin session.
type SessionService interface {
	Current() *models.Admin
	LogIn(ctx context.Context, email, password string) (*models.Admin, error)
	LogOut(ctx context.Context)
}

type AuthHandler struct {
	session SessionService
}

func NewAuthHandler(session SessionService) *AuthHandler {
	return &AuthHandler{session: session}
}

// Login godoc
// @Summary     Admin login
// @Description Signs the admin in with Supabase Auth. The returned access token authorizes the customer write endpoints.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.LoginRequest true "Credentials"
// @Success     200 {object} models.LoginResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid request", err.Error())
		return
	}

	admin, err := h.session.LogIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	logger.FromGin(c).Info("admin logged in")
	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken: admin.AccessToken,
		Admin:       *admin,
	})
}

// Logout godoc
// @Summary     Admin logout
// @Description Ends the admin session. Succeeds for any valid access token; a failure to revoke the remote session is only logged.
// @Tags        auth
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.SessionResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.session.LogOut(c.Request.Context())
	c.JSON(http.StatusOK, sessionResponse(h.session.Current()))
}

// Session godoc
// @Summary     Current session
// @Description Reports whether an admin is signed in
// @Tags        auth
// @Produce     json
// @Success     200 {object} models.SessionResponse
// @Router      /session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, sessionResponse(h.session.Current()))
}

func sessionResponse(admin *models.Admin) models.SessionResponse {
	return models.SessionResponse{
		Authenticated: admin != nil,
		Admin:         admin,
	}
}
