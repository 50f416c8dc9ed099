package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAndSanitizeJSON(t *testing.T) {
	out, dropped, err := NormalizeAndSanitizeJSON([]byte(`{
		"doi_issn": null,
		"title": "  Title  ",
		"authors": ["Ada Lovelace", " Alan Turing ", ""],
		"summary": "Sum.",
		"keywords": ["x"]
	}`), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Title","authors":"Ada Lovelace, Alan Turing","summary":"Sum."}`, string(out))
	assert.ElementsMatch(t, []string{"doi_issn(type)", "authors(array->string)", "keywords(unknown)"}, dropped)
}

func TestNormalizeAndSanitizeJSONLeavesRequiredNulls(t *testing.T) {
	out, _, err := NormalizeAndSanitizeJSON([]byte(`{"title":null,"authors":"A","summary":"S"}`), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":null,"authors":"A","summary":"S"}`, string(out))
	assert.Error(t, ValidateJSONAgainstSchema(BuildPaperJSONSchema(), out))
}

func TestSchema(t *testing.T) {
	schema := BuildPaperJSONSchema()
	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"title":"T","authors":"A","summary":"S"}`)))
	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"doi_issn":"","title":"T","authors":"A","summary":"S"}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"authors":"A","summary":"S"}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"title":"","authors":"A","summary":"S"}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"title":"T","authors":"A","summary":"S","x":1}`)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "héé", Truncate("hééllo", 3))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
}
