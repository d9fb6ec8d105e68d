// @title           Tailor Gallery API
// @version         1.0.0
// @description     Admin backend for a tailoring business: customer records with measurements, outfit photos and invoices, a server-rendered gallery, and PDF export.

// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the Supabase access token.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"tailor-gallery-backend/docs"
	"tailor-gallery-backend/internal/assets"
	"tailor-gallery-backend/internal/config"
	"tailor-gallery-backend/internal/customers"
	"tailor-gallery-backend/internal/database"
	"tailor-gallery-backend/internal/export"
	"tailor-gallery-backend/internal/gallery"
	"tailor-gallery-backend/internal/handlers"
	"tailor-gallery-backend/internal/logger"
	"tailor-gallery-backend/internal/middleware"
	"tailor-gallery-backend/internal/s3store"
	"tailor-gallery-backend/internal/session"
	"tailor-gallery-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.Environment)
	defer appLogger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Point Swagger at the public base URL
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		appLogger.Fatal("failed to create Supabase client", zap.Error(err))
	}

	// Session
	authClient := supabase.NewAuthClient(supabase.NewGoTrueAPI(supabaseClient.Supabase.Auth), appLogger.Named("auth"))
	defer authClient.Close()
	sessionManager := session.NewManager(authClient, appLogger.Named("session"))
	sessionManager.Start()
	defer sessionManager.Stop()

	// Customer documents
	healthChecks := map[string]handlers.Pinger{}
	var store customers.Store
	if cfg.DatabaseURL != "" {
		dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			appLogger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer dbClient.Close()

		if err := database.NewMigrator(dbClient.DB(), appLogger.Named("migrations")).Run(ctx); err != nil {
			appLogger.Fatal("failed to run migrations", zap.Error(err))
		}
		store = dbClient
		healthChecks["database"] = dbClient
	} else {
		appLogger.Info("DATABASE_URL not set, storing customers through PostgREST")
		store = supabase.NewDocumentStore(supabaseClient.Supabase)
	}

	// Photos
	var objects assets.ObjectStore
	switch cfg.StorageDriver {
	case config.StorageDriverS3:
		objects, err = s3store.New(ctx, s3store.Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
		}, appLogger.Named("s3"))
	default:
		objects, err = supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	}
	if err != nil {
		appLogger.Fatal("failed to create object storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}

	repo := customers.NewRepository(store,
		customers.WithImagePolicy(cfg.ImagePolicy),
		customers.WithLogger(appLogger.Named("customers")),
	)
	uploader := assets.NewUploader(objects, cfg.UploadPrefix, assets.WithLogger(appLogger.Named("assets")))

	exporterOpts := []export.Option{}
	if cfg.PDFFontPath != "" {
		exporterOpts = append(exporterOpts, export.WithUTF8Font(cfg.PDFFontPath))
	}
	exporter := export.NewPDFExporter(cfg.GalleryTitle, cfg.CurrencySymbol, exporterOpts...)

	dashboard := gallery.New(sessionManager, repo, uploader, exporter, appLogger.Named("gallery"))
	dashboard.Mount(ctx)
	defer dashboard.Unmount()

	// Handlers
	maxUploadBytes := cfg.MaxUploadMB << 20
	browser := middleware.NewBrowserSession(cfg, sessionManager.Current)
	routes := handlers.Routes{
		Health:    handlers.NewHealthHandler(healthChecks),
		Auth:      handlers.NewAuthHandler(sessionManager),
		Customers: handlers.NewCustomersHandler(repo, uploader, exporter, maxUploadBytes),
		Gallery:   handlers.NewGalleryHandler(dashboard, sessionManager, browser, exporter, cfg.GalleryTitle, maxUploadBytes),
		Browser:   browser,
	}

	router := gin.New()
	router.Use(logger.GinMiddleware(appLogger), gin.Recovery())
	router.MaxMultipartMemory = maxUploadBytes
	router.SetHTMLTemplate(handlers.GalleryTemplates())
	handlers.RegisterRoutes(router, cfg, routes)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("server starting", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
