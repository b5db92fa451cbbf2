package llm

import "context"

// Tier selects the model class for a completion: deep for full pattern
// mining, fast for interactive similarity and insight generation.
type Tier string

const (
	TierFast Tier = "fast"
	TierDeep Tier = "deep"
)

// Request carries one completion call. All prompt and response JSON
// contracts live with the callers, not here.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Tier         Tier
}

// CompletionService abstracts the vendor LLM client. Callers must treat
// any error as "no result" for their component; a failed completion is
// never fatal to the surrounding workflow.
type CompletionService interface {
	Complete(ctx context.Context, req Request) (string, error)
}
