package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SMTP_ENABLED", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.False(t, cfg.Email.SMTPEnabled)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("SMTP_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("GCS_BUCKET", "hub-media")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.True(t, cfg.Email.SMTPEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "hub-media", cfg.Storage.Bucket)
}
