package llm

import (
	"fmt"
	"strings"
)

// ExtractJSON trims a model response down to the JSON object it contains.
// Models wrap output in ```json fences or lead with prose despite the
// instructions, so the parse is bounded to the outermost {…} pair.
func ExtractJSON(response string) (string, error) {
	text := strings.TrimSpace(response)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object in response (%d bytes)", len(response))
	}
	return text[start : end+1], nil
}
