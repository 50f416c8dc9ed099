package llm

// BuildPaperJSONSchema returns the JSON-Schema (draft 2020-12 subset) used to validate
// model output after sanitizing.
func BuildPaperJSONSchema() map[string]any {
	nonEmpty := func() map[string]any {
		return map[string]any{"type": "string", "minLength": 1}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"doi_issn": map[string]any{"type": "string"},
			"title":    nonEmpty(),
			"authors":  nonEmpty(),
			"summary":  nonEmpty(),
		},
		"required": []string{"title", "authors", "summary"},
	}
}
