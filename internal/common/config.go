package common

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/joseph-ayodele/receipt-engine/constants"
)

// Config holds all application configuration
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Server   ServerConfig
	Database DatabaseConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds receipt store configuration
type DatabaseConfig struct {
	Driver          string        `envconfig:"DB_DRIVER" default:"sqlite"`
	DSN             string        `envconfig:"DB_DSN" default:"file:receipts.db"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// OCRConfig holds tesseract adapter configuration
type OCRConfig struct {
	TesseractPath string `envconfig:"TESSERACT_PATH" default:"tesseract"`
	Languages     string `envconfig:"TESSERACT_LANGS" default:"eng"`
	TessdataDir   string `envconfig:"TESSDATA_PREFIX"`
}

// LLMConfig holds structured-extraction backend configuration
type LLMConfig struct {
	APIKey       string        `envconfig:"LLM_API_KEY"`
	BaseURL      string        `envconfig:"LLM_BASE_URL" default:"https://api.groq.com/openai/v1"`
	Model        string        `envconfig:"LLM_MODEL" default:"llama-3.3-70b-versatile"`
	Temperature  float32       `envconfig:"LLM_TEMPERATURE" default:"0"`
	Timeout      time.Duration `envconfig:"LLM_TIMEOUT" default:"45s"`
	GeminiAPIKey string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
}

// PipelineConfig selects the extraction path and the enabled checks
type PipelineConfig struct {
	Backend string   `envconfig:"EXTRACTOR_BACKEND" default:"rules"`
	Checks  []string `envconfig:"VALIDATION_CHECKS" default:"math,dup,tax_rate,fields,reconciliation"`
}

// LoadConfig loads configuration from the environment, reading a .env file
// first when one exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}

// Backend returns the configured extraction backend.
func (c *Config) Backend() constants.Backend {
	b, _ := constants.ParseBackend(c.Pipeline.Backend)
	return b
}

// Rules returns the configured validation checks in evaluation order.
func (c *Config) Rules() []constants.Rule {
	out := make([]constants.Rule, 0, len(c.Pipeline.Checks))
	for _, name := range c.Pipeline.Checks {
		if r, ok := constants.ParseRule(name); ok {
			out = append(out, r)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.Driver != "sqlite" && c.Database.Driver != "pgx" {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown DB_DRIVER %q", c.Database.Driver), ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_DSN is required", ErrInvalidInput)
	}
	backend, ok := constants.ParseBackend(c.Pipeline.Backend)
	if !ok {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown EXTRACTOR_BACKEND %q", c.Pipeline.Backend), ErrInvalidInput)
	}
	if backend == constants.BackendOpenAI && c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "LLM_API_KEY is required for the openai backend", ErrInvalidInput)
	}
	if backend == constants.BackendGemini && c.LLM.GeminiAPIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required for the gemini backend", ErrInvalidInput)
	}
	for _, name := range c.Pipeline.Checks {
		if _, ok := constants.ParseRule(name); !ok {
			return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown validation check %q", name), ErrInvalidInput)
		}
	}
	return nil
}
