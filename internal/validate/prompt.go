package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/jobparse/internal/doctree"
)

// MaxPromptRunes caps how much posting text is sent per request.
const MaxPromptRunes = 12000

const SuggestionPrompt = `You review job postings that an automatic parser could not fully structure. Return a JSON array of suggestions for the requested fields. Each suggestion object must have these fields:

- "field": one of "title", "company", "location", "salary", "date", "requisition_id", "job_type", "experience_level", "department", "industry"
- "value": the value exactly as stated in the posting (string, max 200 chars)
- "confidence": how sure you are, from 0.0 to 1.0 (float)
- "evidence": the sentence or line the value came from (string, max 300 chars)

Rules:
- Only use information present in the posting. Never guess.
- Suggest at most one value per field.
- Leave a field out entirely when the posting does not state it.
- If a current value is listed and it is wrong, suggest the correct one.
- Return an empty array [] if nothing can be found.

Respond with ONLY the JSON array, no other text.`

// BuildPrompt creates the full prompt for one request.
func BuildPrompt(req Request) string {
	fields := req.Missing
	if len(fields) == 0 {
		fields = doctree.MetadataFields
	}

	var sb strings.Builder
	sb.WriteString(SuggestionPrompt)
	sb.WriteString("\n\n---\n")
	sb.WriteString("Requested fields: ")
	sb.WriteString(strings.Join(fields, ", "))
	sb.WriteString("\n")

	current := req.Current
	var known []string
	for _, f := range doctree.MetadataFields {
		if v := current.Field(f); v != nil {
			known = append(known, fmt.Sprintf("%s=%q", f, *v))
		}
	}
	if len(known) > 0 {
		sb.WriteString("Current values: ")
		sb.WriteString(strings.Join(known, ", "))
		sb.WriteString("\n")
	}
	sb.WriteString("---\n")
	sb.WriteString(clip(req.Text, MaxPromptRunes))
	return sb.String()
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
