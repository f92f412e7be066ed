package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Environment string         `yaml:"environment"`
	LogLevel    string         `yaml:"log_level"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Recipes     RecipesConfig  `yaml:"recipes"`
	Receipts    ReceiptsConfig `yaml:"receipts"`
	Auth        AuthConfig     `yaml:"auth"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the API listener
type ServerConfig struct {
	Port            int           `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig names the inventory store. URL is required.
type DatabaseConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// RecipesConfig selects and configures the recipe backend
type RecipesConfig struct {
	Backend string        `yaml:"backend"`
	Timeout time.Duration `yaml:"timeout"`
	MealDB  struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"mealdb"`
	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"openai"`
	Azure struct {
		Endpoint       string `yaml:"endpoint"`
		APIKey         string `yaml:"api_key"`
		DeploymentName string `yaml:"deployment_name"`
	} `yaml:"azure"`
}

// ReceiptsConfig configures receipt uploads and text recognition
type ReceiptsConfig struct {
	UploadDir     string `yaml:"upload_dir"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
	AWSRegion     string `yaml:"aws_region"`
}

// AuthConfig enables bearer-token checks on mutating routes when JWTSecret is set
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// ErrNoDatabaseURL is returned by Validate when the store is not configured
var ErrNoDatabaseURL = errors.New("database url is required (set database.url or FRIDGE_DATABASE_URL)")

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	cfg := &Config{
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            4000,
			AllowedOrigins:  []string{"http://localhost:3000"},
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{Name: "fridgechef"},
		Receipts: ReceiptsConfig{
			UploadDir:     "uploads",
			MaxUploadSize: 10 << 20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}
	cfg.Recipes.Backend = "mealdb"
	cfg.Recipes.Timeout = 15 * time.Second
	cfg.Recipes.OpenAI.Model = "gpt-4o-mini"
	return cfg
}

// Load reads .env (if present), then the YAML file at path (if present), then
// applies environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	str(&c.Environment, "ENV")
	str(&c.LogLevel, "LOG_LEVEL")
	str(&c.Database.URL, "FRIDGE_DATABASE_URL", "MONGODB_URI")
	str(&c.Database.Name, "FRIDGE_DATABASE_NAME")
	str(&c.Recipes.Backend, "FRIDGE_RECIPE_BACKEND")
	str(&c.Recipes.MealDB.BaseURL, "MEALDB_BASE_URL")
	str(&c.Recipes.OpenAI.APIKey, "OPENAI_API_KEY")
	str(&c.Recipes.OpenAI.Model, "OPENAI_MODEL")
	str(&c.Recipes.OpenAI.BaseURL, "OPENAI_BASE_URL")
	str(&c.Recipes.Azure.Endpoint, "AZURE_OPENAI_ENDPOINT")
	str(&c.Recipes.Azure.APIKey, "AZURE_OPENAI_API_KEY")
	str(&c.Recipes.Azure.DeploymentName, "AZURE_OPENAI_DEPLOYMENT_NAME")
	str(&c.Receipts.AWSRegion, "AWS_REGION")
	str(&c.Receipts.UploadDir, "FRIDGE_UPLOAD_DIR")
	str(&c.Auth.JWTSecret, "FRIDGE_JWT_SECRET")

	if v, ok := lookup("PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v, ok := lookup("FRIDGE_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
}

// Validate reports configuration that makes startup impossible
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return ErrNoDatabaseURL
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
