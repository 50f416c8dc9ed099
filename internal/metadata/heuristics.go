// Package metadata holds the cheap regex and line heuristics used to pull an
// identifier, title and author line out of plain document text.
package metadata

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
)

var (
	doiRe  = regexp.MustCompile(`(?i)\b10\.\d{4,9}/[-._;()/:A-Z0-9]+\b`)
	issnRe = regexp.MustCompile(`\b\d{4}-\d{3}[\dX]\b`)
)

// authorWindow is how many lines after the title are searched for an author line.
const authorWindow = 5

// Heuristic is the combined result of ExtractAll.
type Heuristic struct {
	DOIISSN string `json:"doi_issn"`
	Title   string `json:"title"`
	Authors string `json:"authors"`
}

// FindIdentifier returns the first DOI and the first ISSN found in text.
// Either may be empty, but not both.
func FindIdentifier(text string) (doi, issn string, err error) {
	doi = doiRe.FindString(text)
	issn = issnRe.FindString(text)
	if doi == "" && issn == "" {
		return "", "", common.DOIParsing("no DOI or ISSN found")
	}
	return doi, issn, nil
}

// ExtractTitleAuthors takes the first non-empty line as the title and the first
// of the next five non-empty lines containing "," or " and " as the authors.
func ExtractTitleAuthors(text string) (title, authors string, err error) {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return "", "", common.TitleAuthorParsing("empty text; no title or authors")
	}
	title = lines[0]
	end := min(len(lines), 1+authorWindow)
	for _, ln := range lines[1:end] {
		if strings.Contains(ln, ",") || strings.Contains(ln, " and ") {
			return title, ln, nil
		}
	}
	return "", "", common.TitleAuthorParsing("could not locate authors line")
}

// ExtractAll runs both heuristics. The identifier is the DOI when present, else the ISSN.
func ExtractAll(text string) (Heuristic, error) {
	doi, issn, err := FindIdentifier(text)
	if err != nil {
		return Heuristic{}, err
	}
	title, authors, err := ExtractTitleAuthors(text)
	if err != nil {
		return Heuristic{}, err
	}
	id := doi
	if id == "" {
		id = issn
	}
	return Heuristic{DOIISSN: id, Title: title, Authors: authors}, nil
}

// Identifier returns the DOI or ISSN in text, or "" when neither is present.
func Identifier(text string) string {
	doi, issn, err := FindIdentifier(text)
	if err != nil {
		return ""
	}
	if doi != "" {
		return doi
	}
	return issn
}

func nonEmptyLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}
