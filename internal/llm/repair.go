package llm

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
)

// ExtractJSONObject pulls a JSON object out of a model response. It tries, in order:
// the trimmed response as-is, the span from the first '{' to the last '}' after
// removing code fences, and the largest balanced-brace substring.
func ExtractJSONObject(content string) ([]byte, error) {
	s := strings.TrimSpace(content)
	if isJSONObject(s) {
		return []byte(s), nil
	}

	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return nil, common.Summarization("could not locate JSON payload in model response", nil)
	}
	if cand := s[start : end+1]; isJSONObject(cand) {
		return []byte(cand), nil
	}

	if cand := largestBalancedObject(s); cand != "" {
		return []byte(cand), nil
	}
	return nil, common.Summarization("model response is not valid JSON", nil)
}

func isJSONObject(s string) bool {
	if !strings.HasPrefix(s, "{") {
		return false
	}
	var m map[string]any
	return json.Unmarshal([]byte(s), &m) == nil
}

// largestBalancedObject returns the longest matched {...} span that parses as an object.
// Unmatched braces around the payload are skipped. Braces inside string literals are ignored.
func largestBalancedObject(s string) string {
	best := ""
	var starts []int
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if len(starts) > 0 {
				inString = true
			}
		case '{':
			starts = append(starts, i)
		case '}':
			if len(starts) == 0 {
				continue
			}
			start := starts[len(starts)-1]
			starts = starts[:len(starts)-1]
			cand := s[start : i+1]
			if len(cand) > len(best) && isJSONObject(cand) {
				best = cand
			}
		}
	}
	return best
}
