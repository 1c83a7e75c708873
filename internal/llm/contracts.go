package llm

import "context"

// Client is one structured-extraction transport. Implementations deliver the
// prompts to an external model and return its raw text response verbatim;
// everything that interprets the response (fence stripping, schema
// validation, coercion) is shared and lives in this package.
type Client interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
