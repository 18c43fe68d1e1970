package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds the application configuration.
type Config struct {
	Environment string
	Port        string

	// Database
	PostgresDSN string
	UseMemoryDB bool

	// JWT
	JWTSecret string

	// File storage
	StorageBackend string // "disk" or "minio"
	UploadDir      string
	BaseURL        string

	// MinIO (S3-compatible) storage
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Pexels image search
	PexelsAPIKey  string
	PexelsBaseURL string

	// Outbound mail
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	// CORS
	AllowedOrigins []string

	Debug bool
}

// LoadConfig reads configuration from the environment, loading a .env file
// matching the current environment first.
func LoadConfig() *Config {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	config := &Config{
		Environment:    getEnvWithDefault("ENVIRONMENT", "development"),
		Port:           getEnvWithDefault("PORT", "3000"),
		UseMemoryDB:    getEnvBool("USE_MEMORY_DB", false),
		JWTSecret:      getEnvWithDefault("JWT_SECRET", "your-secret-key-change-in-production"),
		StorageBackend: getEnvWithDefault("STORAGE_BACKEND", "disk"),
		UploadDir:      getEnvWithDefault("UPLOAD_DIR", "./storage/public"),
		Debug:          getEnvBool("DEBUG", false),
	}

	// Trim whitespace to avoid trailing spaces/newlines from env sources
	config.PostgresDSN = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	config.BaseURL = strings.TrimSpace(getEnvWithDefault("BASE_URL", "http://localhost:"+config.Port))

	config.MinioEndpoint = strings.TrimSpace(os.Getenv("MINIO_ENDPOINT"))
	config.MinioAccessKey = strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY"))
	config.MinioSecretKey = strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY"))
	config.MinioBucket = getEnvWithDefault("MINIO_BUCKET", "soundlicense")
	config.MinioUseSSL = getEnvBool("MINIO_USE_SSL", false)

	config.PexelsAPIKey = strings.TrimSpace(os.Getenv("PEXELS_API_KEY"))
	config.PexelsBaseURL = getEnvWithDefault("PEXELS_BASE_URL", "https://api.pexels.com/v1")

	config.SMTPHost = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	config.SMTPPort = getEnvInt("SMTP_PORT", 587)
	config.SMTPUsername = os.Getenv("SMTP_USERNAME")
	config.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	config.MailFrom = getEnvWithDefault("MAIL_FROM", "no-reply@soundlicense.local")

	allowedOrigins := getEnvWithDefault("ALLOWED_ORIGINS", "*")
	if allowedOrigins == "*" {
		config.AllowedOrigins = []string{"*"}
	} else {
		config.AllowedOrigins = strings.Split(allowedOrigins, ",")
	}

	if config.Environment == "production" {
		if config.PostgresDSN == "" && !config.UseMemoryDB {
			fmt.Println("⚠️  WARNING: Production environment without POSTGRES_DSN")
		}
		config.Debug = false
	}

	return config
}

// Cached config (initialized once per process)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config, loading it on first use.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate checks the configuration for fatal gaps.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.JWTSecret == "" || c.JWTSecret == "your-secret-key-change-in-production" {
		if c.Environment == "production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Environment == "development" {
			fmt.Println("⚠️  Using default JWT secret (not recommended for production)")
		}
	}

	if c.PostgresDSN == "" && !c.UseMemoryDB {
		return fmt.Errorf("database configuration incomplete: set POSTGRES_DSN or USE_MEMORY_DB=true")
	}

	if c.StorageBackend == "minio" {
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("minio storage selected but MINIO_ENDPOINT/MINIO_ACCESS_KEY/MINIO_SECRET_KEY not set")
		}
	}

	return nil
}

// IsProduction reports whether this is the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether this is the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// helpers

// getEnvWithDefault returns the env value or a default when unset.
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool parses a boolean env value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt parses an integer env value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// loadEnvFile loads KEY=VALUE pairs from a .env file into the environment.
func loadEnvFile(filename string) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return
	}

	file, err := os.Open(filename)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if len(value) >= 2 {
			if (strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")) ||
				(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
				value = value[1 : len(value)-1]
			}
		}

		// Real environment always wins over file values
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
