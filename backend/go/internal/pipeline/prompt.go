package pipeline

import "strings"

// completionMarker ends every prompt; the model's triples follow it.
const completionMarker = "Triples:"

const promptHeader = `You are a precise assistant helping build a structured knowledge graph for financial and business news.

Your task is to extract only factual and high-value [subject, predicate, object] triples from the following news. The triples must be directly supported by the input text.

Only include information about companies, brands, CEOs, acquisitions, subsidiaries, sectors, and founders.

---

IMPORTANT RULES:
- Only use these predicates:
* founded_by
* acquired
* has_CEO
* owns_subsidiary
* operates_in_sector
* has_brand

- If **no allowed predicate** is applicable, return nothing.
- If the news contains **places (countries, cities, states, etc.)** in the subject or object, **exclude those triples**.
- Do **not guess or hallucinate entities** not present in the text.
- Do not generate triples where the subject or object is 'unknown', 'unspecified', 'n/a', or any word with similar meaning.
- Output format: One triple per line, exactly like:
[subject, predicate, object]
- DO NOT output any explanations, enumerations, lists, or additional text.
- DO NOT output placeholders or bracketed options inside the triple elements.
- If no triples, output nothing (empty).

---

Example of wrong output (do NOT do this):

1. NSDL, operates_in_sector, [technology or financial sector]
2. NSE, operates_in_sector, [technology or financial sector]

Example of correct output:

[NSDL, operates_in_sector, Technology]
[NSE, operates_in_sector, Financial Sector]

---

Now extract triples from this news:

`

// BuildPrompt embeds the article title and description in the fixed
// extraction template.
func BuildPrompt(title, description string) string {
	var sb strings.Builder
	sb.Grow(len(promptHeader) + len(title) + len(description) + 32)
	sb.WriteString(promptHeader)
	sb.WriteString(`"""`)
	sb.WriteString(strings.TrimSpace(title))
	sb.WriteString(". ")
	sb.WriteString(strings.TrimSpace(description))
	sb.WriteString(`"""`)
	sb.WriteString("\n\n")
	sb.WriteString(completionMarker)
	sb.WriteString("\n")
	return sb.String()
}

// CompletionBody removes an echoed prompt from a completion. Some backends
// return the prompt followed by the generated text, and the prompt's own
// example lines must never reach the parser. A marker written after the
// model's own triples is left alone.
func CompletionBody(prompt, completion string) string {
	if strings.HasPrefix(completion, prompt) {
		return completion[len(prompt):]
	}
	if strings.Contains(completion, promptLead) {
		if i := strings.LastIndex(completion, completionMarker); i >= 0 {
			return completion[i+len(completionMarker):]
		}
		return completion
	}
	head := completion
	if i := firstTripleLine(completion); i >= 0 {
		head = completion[:i]
	}
	if i := strings.LastIndex(head, completionMarker); i >= 0 {
		return completion[i+len(completionMarker):]
	}
	return completion
}

// promptLead identifies an echo that was reformatted by the backend.
var promptLead = promptHeader[:strings.Index(promptHeader, "\n")]

// firstTripleLine returns the offset of the first line starting with '[', or -1.
func firstTripleLine(s string) int {
	off := 0
	for _, line := range strings.SplitAfter(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "[") {
			return off
		}
		off += len(line)
	}
	return -1
}
