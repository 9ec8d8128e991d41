package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "STORE_DRIVER", "SENDGRID_API_KEY", "NOTIFIER", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := fromEnv()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, NotifierLog, cfg.Notifier)
	assert.Nil(t, cfg.CORSAllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("SENDGRID_API_KEY", "SG.key")
	t.Setenv("NOTIFIER", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "tasks")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := fromEnv()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, NotifierSendGrid, cfg.Notifier)
	assert.Contains(t, cfg.DBURL, "@db:5432/tasks?")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.OTelEnabled)
}

func TestGetEnvInt_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("PORT", "abc")
	assert.Equal(t, 3000, getEnvInt("PORT", 3000))
}
