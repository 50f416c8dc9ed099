package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

var allowedKeys = map[string]struct{}{
	"doi_issn": {}, "title": {}, "authors": {}, "summary": {},
}

// NormalizeAndSanitizeJSON prepares a decoded model object for schema validation.
// Only optional or cosmetic problems are repaired:
//   - null or non-string doi_issn is dropped
//   - an authors array is joined with ", "
//   - strings are trimmed
//   - unknown keys are removed
//
// Missing or null required fields are left alone so validation rejects them.
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string

	if v, ok := m["doi_issn"]; ok {
		switch t := v.(type) {
		case string:
			m["doi_issn"] = strings.TrimSpace(t)
		default:
			delete(m, "doi_issn")
			dropped = append(dropped, "doi_issn(type)")
		}
	}

	if arr, ok := m["authors"].([]any); ok {
		names := make([]string, 0, len(arr))
		for _, a := range arr {
			if s, ok := a.(string); ok && strings.TrimSpace(s) != "" {
				names = append(names, strings.TrimSpace(s))
			}
		}
		m["authors"] = strings.Join(names, ", ")
		dropped = append(dropped, "authors(array->string)")
	}

	for k := range maps.Clone(m) {
		if _, ok := allowedKeys[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	for _, k := range []string{"title", "authors", "summary"} {
		if v, ok := m[k].(string); ok {
			m[k] = strings.TrimSpace(v)
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}
