package constants

import "strings"

// Backend selects the extraction path for an upload.
type Backend string

// Stable values (store these exact strings in config).
const (
	BackendRules  Backend = "rules"  // regex heuristics, no external calls
	BackendOpenAI Backend = "openai" // OpenAI-compatible chat completions
	BackendGemini Backend = "gemini" // Google Gemini
)

var allBackends = []Backend{BackendRules, BackendOpenAI, BackendGemini}

// ParseBackend resolves a user-supplied backend name, case-insensitively.
func ParseBackend(input string) (Backend, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, b := range allBackends {
		if normalized == string(b) {
			return b, true
		}
	}
	return "", false
}
