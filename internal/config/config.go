package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"tailor-gallery-backend/internal/customers"
)

const (
	StorageDriverSupabase = "supabase"
	StorageDriverS3       = "s3"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database (optional, enables direct Postgres access and migrations)
	DatabaseURL string

	// Object storage
	StorageDriver   string
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
	S3UsePathStyle  bool

	// Gallery
	UploadPrefix   string
	ImagePolicy    customers.ImagePolicy
	MaxUploadMB    int64
	GalleryTitle   string
	CurrencySymbol string
	PDFFontPath    string

	// Server
	BaseURL     string
	Port        string
	Environment string
	LogLevel    string
	LogFormat   string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	imagePolicy, err := customers.ParseImagePolicy(getEnv("IMAGE_POLICY", "replace"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: IMAGE_POLICY: %w", err)
	}

	cfg := &Config{
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "gallery"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		StorageDriver:   strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverSupabase)),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		S3UsePathStyle:  getEnvBool("S3_USE_PATH_STYLE", true),

		UploadPrefix:   getEnv("UPLOAD_PREFIX", "clients"),
		ImagePolicy:    imagePolicy,
		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", 32),
		GalleryTitle:   getEnv("GALLERY_TITLE", "BEIT ADNA FASHION GALLERY"),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₦"),
		PDFFontPath:    getEnv("PDF_FONT_PATH", ""),

		BaseURL:     getEnv("BASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	switch c.StorageDriver {
	case StorageDriverSupabase:
	case StorageDriverS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
		if c.S3AccessKey == "" || c.S3SecretKey == "" {
			return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
