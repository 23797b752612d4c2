package triple

import (
	"regexp"
	"strings"

	"newsgraph/backend/go/internal/models"
)

// DefaultMaxEntityWords caps subject and object length; longer spans are rarely entities.
const DefaultMaxEntityWords = 4

// enumerated matches a numbered-list marker such as "1." or "12.".
var enumerated = regexp.MustCompile(`^\d+\.`)

// Parser extracts bracketed triples from model output.
type Parser struct {
	MaxEntityWords int
}

// Parse runs a Parser with default settings.
func Parse(text string) []models.Candidate {
	return Parser{}.Parse(text)
}

// Parse returns candidates in document order. Malformed lines are dropped
// silently; duplicates are kept.
func (p Parser) Parse(text string) []models.Candidate {
	maxWords := p.MaxEntityWords
	if maxWords <= 0 {
		maxWords = DefaultMaxEntityWords
	}

	var out []models.Candidate
	for _, line := range strings.Split(text, "\n") {
		if c, ok := parseLine(strings.TrimSpace(line), maxWords); ok {
			out = append(out, c)
		}
	}
	return out
}

func parseLine(line string, maxWords int) (models.Candidate, bool) {
	if enumerated.MatchString(line) {
		return models.Candidate{}, false
	}
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return models.Candidate{}, false
	}

	parts := strings.Split(strings.Trim(line, "[]"), ",")
	if len(parts) != 3 {
		return models.Candidate{}, false
	}
	for i, part := range parts {
		part = strings.TrimSpace(strings.Trim(strings.TrimSpace(part), `"'`))
		// Leftover brackets mean an unresolved placeholder like "[technology or financial]".
		if part == "" || strings.ContainsAny(part, "[]") {
			return models.Candidate{}, false
		}
		parts[i] = part
	}

	subject, predicate, object := parts[0], parts[1], parts[2]
	if len(strings.Fields(subject)) > maxWords || len(strings.Fields(object)) > maxWords {
		return models.Candidate{}, false
	}
	return models.Candidate{Subject: subject, Predicate: predicate, Object: object}, true
}
