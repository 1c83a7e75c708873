package openai

import (
	"net/http"
	"time"
)

// Config for the OpenAI-compatible client. The defaults target Groq's
// OpenAI-compatible endpoint; any chat-completions server works by setting
// BaseURL.
type Config struct {
	APIKey      string
	BaseURL     string // default https://api.groq.com/openai/v1
	Model       string // e.g. "llama-3.3-70b-versatile"
	Temperature float32
	Timeout     time.Duration // http client timeout
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Model == "" {
		c.Model = "llama-3.3-70b-versatile"
	}
	if c.Timeout <= 0 {
		c.Timeout = 45 * time.Second
	}
	return c
}

func newHTTPClient(cfg Config) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}
