// Package validate asks a language model to fill in or confirm job metadata
// fields the heuristic parser missed. Suggestions are stored beside the
// document and never overwrite it.
package validate

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/jobparse/internal/doctree"
	"github.com/dgallion1/jobparse/internal/score"
)

// Request describes one document that needs a second opinion.
type Request struct {
	DocumentID string
	Text       string
	// Missing names the fields the parser could not find. Empty means
	// every field.
	Missing []string
	Current doctree.JobMetadata
}

// Suggestion is a proposed value for one metadata field.
type Suggestion struct {
	Field      string  `json:"field"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence,omitempty"`
}

// Suggestions is the validator output for one document.
type Suggestions struct {
	DocumentID  string       `json:"document_id"`
	Provider    string       `json:"provider"`
	Model       string       `json:"model"`
	Fields      []Suggestion `json:"fields"`
	GeneratedAt time.Time    `json:"generated_at"`
	DurationMs  int64        `json:"duration_ms"`
}

// Validator proposes metadata values for a parsed document.
type Validator interface {
	SuggestFields(ctx context.Context, req Request) (Suggestions, error)
	Close()
}

const (
	maxValueRunes    = 200
	maxEvidenceRunes = 300
)

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|override|` +
		`new\s+instructions)`,
)

var knownFields = func() map[string]bool {
	m := make(map[string]bool, len(doctree.MetadataFields))
	for _, f := range doctree.MetadataFields {
		m[f] = true
	}
	return m
}()

// Sanitize drops suggestions for unknown fields, empty or oversized values
// and anything that reads like an instruction. Confidence is clamped to
// [0,1] and only the most confident suggestion per field survives, in
// first-seen order.
func Sanitize(in []Suggestion) []Suggestion {
	out := make([]Suggestion, 0, len(in))
	index := make(map[string]int)
	for _, s := range in {
		s.Field = strings.ToLower(strings.TrimSpace(s.Field))
		s.Value = strings.Join(strings.Fields(s.Value), " ")
		s.Evidence = strings.TrimSpace(s.Evidence)
		if !knownFields[s.Field] || s.Value == "" {
			continue
		}
		if utf8.RuneCountInString(s.Value) > maxValueRunes {
			continue
		}
		if injectionPattern.MatchString(s.Value) {
			continue
		}
		if utf8.RuneCountInString(s.Evidence) > maxEvidenceRunes {
			s.Evidence = string([]rune(s.Evidence)[:maxEvidenceRunes])
		}
		s.Confidence = score.Clamp01(s.Confidence)

		if i, ok := index[s.Field]; ok {
			if s.Confidence > out[i].Confidence {
				out[i] = s
			}
			continue
		}
		index[s.Field] = len(out)
		out = append(out, s)
	}
	return out
}
