// Package bullets extracts label/description line items from section content.
package bullets

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/jobparse/internal/doctree"
	"github.com/dgallion1/jobparse/internal/score"
)

// Config controls line filtering and nesting.
type Config struct {
	// MinLineLength drops unmarked lines shorter than this many runes.
	MinLineLength int `json:"min_line_length" yaml:"min_line_length"`
	// FallbackMinLength is the length an unmatched line needs to become an
	// unlabeled bullet.
	FallbackMinLength int `json:"fallback_min_length" yaml:"fallback_min_length"`
	// IndentWidth is the number of leading spaces per nesting level.
	IndentWidth int `json:"indent_width" yaml:"indent_width"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinLineLength:     10,
		FallbackMinLength: 30,
		IndentWidth:       4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinLineLength <= 0 {
		c.MinLineLength = d.MinLineLength
	}
	if c.FallbackMinLength <= 0 {
		c.FallbackMinLength = d.FallbackMinLength
	}
	if c.IndentWidth <= 0 {
		c.IndentWidth = d.IndentWidth
	}
	return c
}

var (
	markerRe     = regexp.MustCompile(`^(?:[•·▪◦‣●○■□➢➤►\-*–—+]|\(?\d{1,3}[.)]|[a-z]\))\s+(.*)$`)
	labelRe      = regexp.MustCompile(`^([^:]{3,44}):[*_]*\s+(.+)$`)
	actionVerbRe = regexp.MustCompile(`(?i)\b(manag|lead|develop|ensur|collaborat)\w*`)
)

const baseConfidence = 0.6

// Contributions are the named confidence terms added to the 0.6 base.
var Contributions = []score.Contribution[doctree.Bullet]{
	{Name: "concise_label", Value: func(b doctree.Bullet) float64 {
		if b.Label != "" {
			return 0.2
		}
		return 0
	}},
	{Name: "descriptive", Value: func(b doctree.Bullet) float64 {
		if utf8.RuneCountInString(b.Description) > 20 {
			return 0.1
		}
		return 0
	}},
	{Name: "action_verb", Value: func(b doctree.Bullet) float64 {
		if actionVerbRe.MatchString(b.Description) {
			return 0.1
		}
		return 0
	}},
}

// SplitLabel splits "Label: Description" where the label is 3 to 40 runes
// with no colon. Bold or underscore decoration around the label is dropped.
func SplitLabel(s string) (label, desc string, ok bool) {
	m := labelRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	label = strings.Trim(m[1], "*_ ")
	n := utf8.RuneCountInString(label)
	if n < 3 || n > 40 {
		return "", "", false
	}
	desc = strings.TrimSpace(m[2])
	if desc == "" {
		return "", "", false
	}
	return label, desc, true
}

// Extract returns the bullets found in content, in line order. Lines that
// match nothing are dropped.
func Extract(sectionID, content string, cfg Config) []doctree.Bullet {
	cfg = cfg.withDefaults()
	out := []doctree.Bullet{}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		b, ok := parseLine(trimmed, cfg)
		if !ok {
			continue
		}
		b.ID = fmt.Sprintf("%s-b%d", sectionID, len(out)+1)
		b.Level = level(line, cfg.IndentWidth)
		b.OriginalText = strings.TrimRight(line, " ")
		b.Confidence = score.Sum(baseConfidence, b, Contributions)
		out = append(out, b)
	}
	return out
}

func parseLine(trimmed string, cfg Config) (doctree.Bullet, bool) {
	if m := markerRe.FindStringSubmatch(trimmed); m != nil {
		rest := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(rest) < 3 {
			return doctree.Bullet{}, false
		}
		if label, desc, ok := SplitLabel(rest); ok {
			return doctree.Bullet{Label: label, Description: desc}, true
		}
		return doctree.Bullet{Description: rest}, true
	}

	n := utf8.RuneCountInString(trimmed)
	if n < cfg.MinLineLength {
		return doctree.Bullet{}, false
	}
	if label, desc, ok := SplitLabel(trimmed); ok {
		return doctree.Bullet{Label: label, Description: desc}, true
	}
	if n > cfg.FallbackMinLength {
		return doctree.Bullet{Description: trimmed}, true
	}
	return doctree.Bullet{}, false
}

func level(line string, width int) int {
	spaces := len(line) - len(strings.TrimLeft(line, " "))
	return spaces / width
}

// Attach extracts bullets for every classified section, preserving order.
func Attach(sections []doctree.ClassifiedSection, cfg Config) []doctree.ProcessedSection {
	out := make([]doctree.ProcessedSection, len(sections))
	for i, s := range sections {
		out[i] = doctree.ProcessedSection{
			ClassifiedSection: s,
			Bullets:           Extract(s.ID, s.Content, cfg),
		}
	}
	return out
}
