package llm

import "strings"

// ExtractionSystemPrompt instructs the model to return the four fields as a JSON object.
const ExtractionSystemPrompt = "You are an expert research assistant. " +
	"Extract the following from the paper text and return valid JSON:\n" +
	"- doi_issn: the paper's DOI or ISSN, or an empty string if not found\n" +
	"- title: the full paper title\n" +
	"- authors: comma-separated list of author names\n" +
	"- summary: a concise 3-5 sentence summary of objective, methods, key results, and significance\n" +
	"Return ONLY the JSON object. Never output null."

// SummarySystemPrompt asks for a plain paragraph summary.
const SummarySystemPrompt = "You are an expert research assistant. " +
	"When given the text of a research paper, output only a concise 3-5 sentence paragraph " +
	"summarizing the paper's objective, methods, key results, and significance. " +
	"Do not include leading phrases like \"Here is a summary\" or repeat the prompt."

// Truncate returns at most max runes of text. max <= 0 disables truncation.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i]
		}
		n++
	}
	return text
}

// BuildSummaryUserPrompt appends the summary instruction to the paper text.
func BuildSummaryUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\nSummarize the paper in 3-5 sentences:")
	return b.String()
}
