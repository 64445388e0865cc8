package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ACCESS_REQUEST_COOLDOWN", "")
	t.Setenv("MAX_UPLOAD_MB", "")
	t.Setenv("MEDIA_BASE_URL", "")

	cfg := Load()

	assert.Equal(t, 7*24*time.Hour, cfg.AccessRequestCooldown)
	assert.Equal(t, int64(200), cfg.MaxUploadMB)
	assert.Equal(t, int64(200*1024*1024), cfg.MaxUploadBytes())
	assert.Equal(t, "/uploads", cfg.MediaBaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ACCESS_REQUEST_COOLDOWN", "48h")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")
	t.Setenv("MEDIA_BASE_URL", "https://cdn.example.com/")
	t.Setenv("LOG_RETENTION_DAYS", "7")

	cfg := Load()

	assert.Equal(t, 48*time.Hour, cfg.AccessRequestCooldown)
	assert.Equal(t, int64(200), cfg.MaxUploadMB)
	assert.Equal(t, "https://cdn.example.com", cfg.MediaBaseURL)
	assert.Equal(t, 7, cfg.LogRetentionDays)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5433", DBSSLMode: "require"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=require TimeZone=UTC", cfg.DSN())
}
