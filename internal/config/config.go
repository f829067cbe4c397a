package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Note providers.
const (
	NoteProviderNone   = ""
	NoteProviderGemini = "gemini"
	NoteProviderLocal  = "local"
)

// Config represents the application configuration.
type Config struct {
	SpoonacularAPIKey string   `json:"spoonacular_api_key"`
	SpoonacularURL    string   `json:"spoonacular_url"`
	DatabaseURL       string   `json:"DATABASE_URL"`
	GeminiAPIKey      string   `json:"gemini_api_key"`
	LocalLLMURL       string   `json:"local_llm_url"`
	LocalLLMModel     string   `json:"local_llm_model"`
	NoteProvider      string   `json:"note_provider"`
	Port              string   `json:"port"`
	AllowedOrigins    []string `json:"allowed_origins"`
	ImageDir          string   `json:"image_dir"`
	Env               string   `json:"env"`
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the configuration used before any file or environment is applied.
func Default() *Config {
	return &Config{
		Port:           "8080",
		AllowedOrigins: []string{"http://localhost:8081"},
		ImageDir:       "images",
		Env:            "development",
	}
}

// Load reads path (a missing file is not an error), then a .env file in the
// working directory, then environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	configData, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(configData, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	setString(&cfg.SpoonacularAPIKey, "SPOONACULAR_API_KEY")
	setString(&cfg.SpoonacularURL, "SPOONACULAR_URL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.LocalLLMURL, "LOCAL_LLM_URL")
	setString(&cfg.LocalLLMModel, "LOCAL_LLM_MODEL")
	setString(&cfg.NoteProvider, "NOTE_PROVIDER")
	setString(&cfg.Port, "PORT")
	setString(&cfg.ImageDir, "IMAGE_DIR")
	setString(&cfg.Env, "ENV")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}
}

// Validate checks that the configuration can start the server.
func (c *Config) Validate() error {
	if c.SpoonacularAPIKey == "" {
		return ValidationError{Field: "spoonacular_api_key", Message: "is required (set SPOONACULAR_API_KEY)"}
	}
	if c.Port == "" {
		return ValidationError{Field: "port", Message: "must not be empty"}
	}

	switch c.NoteProvider {
	case NoteProviderNone, NoteProviderLocal:
	case NoteProviderGemini:
		if c.GeminiAPIKey == "" {
			return ValidationError{Field: "gemini_api_key", Message: "is required when note_provider is gemini"}
		}
	default:
		return ValidationError{Field: "note_provider", Message: fmt.Sprintf("unknown provider %q", c.NoteProvider)}
	}

	return nil
}

// IsProduction reports whether the server runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
