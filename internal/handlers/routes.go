package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "tailor-gallery-backend/docs"
	"tailor-gallery-backend/internal/config"
	"tailor-gallery-backend/internal/middleware"
)

// Routes are the handlers RegisterRoutes mounts.
type Routes struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Customers *CustomersHandler
	Gallery   *GalleryHandler
	Browser   *middleware.BrowserSession
}

// RegisterRoutes mounts the server-rendered gallery, the JSON API under
// /api/v1 and its Swagger UI.
func RegisterRoutes(router *gin.Engine, cfg *config.Config, r Routes) {
	maxUploadBytes := cfg.MaxUploadMB << 20

	router.GET("/health", r.Health.Health)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Server-rendered gallery
	router.GET("/", r.Gallery.Index)
	router.POST("/login", r.Gallery.Login)

	admin := router.Group("/")
	admin.Use(middleware.LimitBody(maxUploadBytes), r.Browser.Require(r.Gallery.RejectBrowser))
	{
		admin.POST("/logout", r.Gallery.Logout)
		admin.POST("/customers", r.Gallery.SaveCustomer)
		admin.POST("/customers/:id/delete", r.Gallery.DeleteCustomer)
		admin.GET("/customers/:id/export", r.Gallery.ExportCustomer)
		admin.GET("/customers/:id/images/:index", r.Gallery.Lightbox)
	}

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", r.Auth.Login)
		api.GET("/session", r.Auth.Session)
		api.GET("/customers", r.Customers.ListCustomers)
		api.GET("/customers/:id/export", r.Customers.ExportCustomer)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/auth/logout", r.Auth.Logout)
			protected.POST("/customers", r.Customers.CreateCustomer)
			protected.PUT("/customers/:id", r.Customers.UpdateCustomer)
			protected.DELETE("/customers/:id", r.Customers.DeleteCustomer)
		}
	}
}
