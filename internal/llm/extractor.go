package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
)

// DefaultMaxInputChars bounds the document text sent to the model.
const DefaultMaxInputChars = 5000

// Extractor turns document text into validated PaperFields through a Completer.
type Extractor struct {
	completer     Completer
	maxInputChars int
	schema        map[string]any
	logger        *slog.Logger
}

func NewExtractor(completer Completer, maxInputChars int, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}
	return &Extractor{
		completer:     completer,
		maxInputChars: maxInputChars,
		schema:        BuildPaperJSONSchema(),
		logger:        logger,
	}
}

// ExtractMetadata implements FieldExtractor. Every failure is a SummarizationError.
func (e *Extractor) ExtractMetadata(ctx context.Context, text, model string) (PaperFields, error) {
	rid := uuid.New().String()
	start := time.Now()
	log := e.logger.With(common.LogAttrs(ctx)...).With("req_id", rid, "model", model)

	input := Truncate(text, e.maxInputChars)
	log.Info("llm.extract.start", "text_len", len(text), "sent_len", len(input))

	content, err := e.completer.Complete(common.WithRequestID(ctx, rid), CompletionRequest{
		Model:  model,
		System: ExtractionSystemPrompt,
		User:   input,
		JSON:   true,
	})
	if err != nil {
		log.Error("llm.extract.completion_failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return PaperFields{}, common.Summarization("model request failed", err)
	}

	raw, err := ExtractJSONObject(content)
	if err != nil {
		log.Error("llm.extract.no_json", "error", err, "content_len", len(content))
		return PaperFields{}, err
	}

	cleaned, _, err := NormalizeAndSanitizeJSON(raw, log)
	if err != nil {
		return PaperFields{}, common.Summarization("malformed model response", err)
	}
	if err := ValidateJSONAgainstSchema(e.schema, cleaned); err != nil {
		log.Error("llm.extract.schema_validation_failed", "error", err, "content", string(cleaned))
		return PaperFields{}, common.Summarization("JSON validation failed", err)
	}

	var out PaperFields
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return PaperFields{}, common.Summarization("unmarshal fields", err)
	}

	log.Info("llm.extract.ok",
		"title", out.Title,
		"has_doi_issn", out.DOIISSN != "",
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// Summarize asks the model for a plain 3-5 sentence summary of text.
func (e *Extractor) Summarize(ctx context.Context, text, model string) (string, error) {
	start := time.Now()
	content, err := e.completer.Complete(ctx, CompletionRequest{
		Model:  model,
		System: SummarySystemPrompt,
		User:   BuildSummaryUserPrompt(Truncate(text, e.maxInputChars)),
	})
	if err != nil {
		e.logger.Error("llm.summarize.failed", "model", model, "error", err)
		return "", common.Summarization("summarization failed", err)
	}
	summary := strings.TrimSpace(content)
	if summary == "" {
		return "", common.Summarization("model returned an empty summary", nil)
	}
	e.logger.Info("llm.summarize.ok", "model", model, "chars", len(summary), "elapsed_ms", time.Since(start).Milliseconds())
	return summary, nil
}
