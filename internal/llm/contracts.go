package llm

import "context"

// PaperFields is the normalized shape we want from the LLM.
type PaperFields struct {
	DOIISSN string `json:"doi_issn"` // optional, "" when the paper carries none
	Title   string `json:"title"`
	Authors string `json:"authors"` // comma-joined
	Summary string `json:"summary"` // 3-5 sentences
}

// CompletionRequest is one system+user exchange with a chat model.
type CompletionRequest struct {
	Model  string
	System string
	User   string
	// JSON asks the provider for a JSON object response when it supports that mode.
	JSON bool
}

// Completer is implemented by each provider client.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// FieldExtractor is the interface our pipeline depends on.
type FieldExtractor interface {
	ExtractMetadata(ctx context.Context, text, model string) (PaperFields, error)
}
