package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
)

func TestExtractJSONObject(t *testing.T) {
	bare := `{"title":"T","authors":"A, B","summary":"S"}`
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bare", bare, bare},
		{"padded", "\n  " + bare + "  \n", bare},
		{"fenced", "```json\n" + bare + "\n```", bare},
		{"plain fence", "```\n" + bare + "\n```", bare},
		{"prose around", "Sure! Here it is: " + bare + " Hope that helps.", bare},
		{"trailing brace in prose", "Result: " + bare + " (note: use {braces} carefully}", bare},
		{"unmatched brace before payload", "Note {see below:\n" + bare, bare},
		{"unmatched brace and nested payload", "Draft {\n" + `{"title":"T","authors":"A","summary":"S","extra":{"k":1}}` + " done", `{"title":"T","authors":"A","summary":"S","extra":{"k":1}}`},
		{"braces in strings",`noise {"title":"a {b}","authors":"x","summary":"y"} tail }`, `{"title":"a {b}","authors":"x","summary":"y"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.content)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestExtractJSONObjectFencedEqualsBare(t *testing.T) {
	bare := `{"doi_issn":"10.1/x","title":"T","authors":"A","summary":"S"}`
	a, err := ExtractJSONObject(bare)
	require.NoError(t, err)
	b, err := ExtractJSONObject("```json\n" + bare + "\n```")
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestExtractJSONObjectFailures(t *testing.T) {
	for _, content := range []string{
		"",
		"no json here",
		"} backwards {",
		`{"title": "unterminated`,
		`{not: valid, json}`,
	} {
		_, err := ExtractJSONObject(content)
		require.Error(t, err, content)
		assert.Equal(t, common.KindSummarization, common.KindOf(err))
	}
}
