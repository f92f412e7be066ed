package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"ENV", "LOG_LEVEL", "PORT", "FRIDGE_DATABASE_URL", "MONGODB_URI", "FRIDGE_RECIPE_BACKEND", "OPENAI_MODEL"} {
		t.Setenv(key, "")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
environment: production
log_level: debug
server:
  port: 8081
  allowed_origins: ["https://fridge.example"]
database:
  url: mongodb://db:27017
  name: kitchen
recipes:
  backend: openai
  timeout: 5s
  openai:
    api_key: sk-test
    model: gpt-4o
metrics:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, []string{"https://fridge.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "kitchen", cfg.Database.Name)
	assert.Equal(t, "openai", cfg.Recipes.Backend)
	assert.Equal(t, 5*time.Second, cfg.Recipes.Timeout)
	assert.Equal(t, "gpt-4o", cfg.Recipes.OpenAI.Model)
	assert.False(t, cfg.Metrics.Enabled)
	// Defaults survive for keys the file omits.
	assert.Equal(t, "uploads", cfg.Receipts.UploadDir)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mealdb", cfg.Recipes.Backend)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MONGODB_URI":            "mongodb://fallback",
		"FRIDGE_DATABASE_URL":    "sqlite://fridge.db",
		"OPENAI_API_KEY":         "sk-env",
		"PORT":                   "5000",
		"FRIDGE_RECIPE_BACKEND":  "azure",
		"FRIDGE_ALLOWED_ORIGINS": "http://a,http://b",
	}
	cfg := Default()
	cfg.applyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	assert.Equal(t, "sqlite://fridge.db", cfg.Database.URL)
	assert.Equal(t, "sk-env", cfg.Recipes.OpenAI.APIKey)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "azure", cfg.Recipes.Backend)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Server.AllowedOrigins)
}

func TestValidate_RequiresDatabaseURL(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.Validate(), ErrNoDatabaseURL)
}
