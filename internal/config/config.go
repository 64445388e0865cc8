package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string

	// Media
	MediaDriver       string
	UploadDir         string
	MediaBaseURL      string
	MaxUploadMB       int64
	S3Bucket          string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicURL       string

	// Moderation
	AccessRequestCooldown time.Duration
	LogRetentionDays      int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "sosusa"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),

		MediaDriver:       getEnv("MEDIA_DRIVER", "local"),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		MediaBaseURL:      strings.TrimRight(getEnv("MEDIA_BASE_URL", "/uploads"), "/"),
		MaxUploadMB:       parseInt(getEnv("MAX_UPLOAD_MB", "200"), 200),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicURL:       strings.TrimRight(getEnv("S3_PUBLIC_URL", ""), "/"),

		AccessRequestCooldown: parseDuration(getEnv("ACCESS_REQUEST_COOLDOWN", "168h"), 7*24*time.Hour),
		LogRetentionDays:      int(parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30)),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
