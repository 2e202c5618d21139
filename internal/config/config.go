package config

import (
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Artifact storage backends
const (
	StorageLocal = "local"
	StorageS3    = "s3"
	StorageMinIO = "minio"
)

// Mail modes
const (
	MailModeSimulated = "simulated"
	MailModeSMTP      = "smtp"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL   string
	RunMigrations bool

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Reports
	Report ReportConfig

	// Artifact storage
	ArtifactStorage string
	S3              S3Config
	MinIO           MinIOConfig

	// Distribution
	Mail MailConfig

	// Rate limiting on render endpoints
	RateLimitPerMinute int
	RateLimitBurst     int
}

// ReportConfig controls how artifacts are rendered and named
type ReportConfig struct {
	OrganizationName string
	Format           string
	Dir              string
	FilenameSuffix   bool
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for LocalStack local dev
}

// MinIOConfig holds MinIO configuration
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Prefix          string
	UseSSL          bool
}

// MailConfig holds e-mail distribution settings
type MailConfig struct {
	Mode     string
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	perMinute, err := getEnvInt("RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return nil, err
	}
	burst, err := getEnvInt("RATE_LIMIT_BURST", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:           getEnv("ENV", "development"),
		Report: ReportConfig{
			OrganizationName: getEnv("HOA_NAME", "Homeowners Association"),
			Format:           strings.ToLower(getEnv("REPORT_FORMAT", "pdf")),
			Dir:              getEnv("REPORTS_DIR", "reports"),
			FilenameSuffix:   getEnvBool("REPORT_FILENAME_SUFFIX", false),
		},
		ArtifactStorage: strings.ToLower(getEnv("ARTIFACT_STORAGE", StorageLocal)),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", "hoa-reports"),
			Prefix:          getEnv("S3_PREFIX", "reports/"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("MINIO_SECRET_KEY", ""),
			BucketName:      getEnv("MINIO_BUCKET", "hoa-reports"),
			Prefix:          getEnv("MINIO_PREFIX", "reports/"),
			UseSSL:          getEnvBool("MINIO_USE_SSL", false),
		},
		Mail: MailConfig{
			Mode:     strings.ToLower(getEnv("MAIL_MODE", MailModeSimulated)),
			Host:     getEnv("SMTP_HOST", ""),
			Port:     smtpPort,
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "reports@hoa.local"),
		},
		RateLimitPerMinute: perMinute,
		RateLimitBurst:     burst,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.Report.Format {
	case "pdf", "json":
	default:
		return fmt.Errorf("REPORT_FORMAT must be pdf or json, got %q", c.Report.Format)
	}
	switch c.ArtifactStorage {
	case StorageLocal:
		if c.Report.Dir == "" {
			return fmt.Errorf("REPORTS_DIR is required for local storage")
		}
	case StorageS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 storage")
		}
	case StorageMinIO:
		if c.MinIO.AccessKeyID == "" || c.MinIO.SecretAccessKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for minio storage")
		}
	default:
		return fmt.Errorf("ARTIFACT_STORAGE must be local, s3 or minio, got %q", c.ArtifactStorage)
	}
	switch c.Mail.Mode {
	case MailModeSimulated:
	case MailModeSMTP:
		if c.Mail.Host == "" {
			return fmt.Errorf("SMTP_HOST is required when MAIL_MODE=smtp")
		}
		if _, err := mail.ParseAddress(c.Mail.From); err != nil {
			return fmt.Errorf("MAIL_FROM is not a valid address: %w", err)
		}
	default:
		return fmt.Errorf("MAIL_MODE must be simulated or smtp, got %q", c.Mail.Mode)
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
