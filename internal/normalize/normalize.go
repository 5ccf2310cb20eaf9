// Package normalize strips scraping noise from job-posting text while keeping
// its line and paragraph structure intact.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Config controls normalization.
type Config struct {
	// ContentLossRatio flags a parse when the cleaned text is shorter than
	// this fraction of the original.
	ContentLossRatio float64 `json:"content_loss_ratio" yaml:"content_loss_ratio"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{ContentLossRatio: 0.5}
}

// Result is the cleaned text plus the bookkeeping the assembler reports.
type Result struct {
	Text                string
	OriginalLength      int // runes
	CleanedLength       int // runes
	RemovedLines        int
	ContentLossDetected bool
}

// boilerplatePatterns match whole trimmed lines that carry no posting content.
var boilerplatePatterns = []*regexp.Regexp{
	// Cookie and privacy banners.
	regexp.MustCompile(`(?i)\b(we use cookies|this (web)?site uses cookies|cookie (policy|settings|preferences|notice)|accept (all )?cookies|manage cookies)\b`),
	regexp.MustCompile(`(?i)^(privacy policy|privacy notice|terms of (use|service)|terms (and|&) conditions)(\s*[|•·-]\s*.*)?$`),
	// Copyright lines.
	regexp.MustCompile(`(?i)^(©|\(c\)\s*\d{4}|copyright\b)`),
	regexp.MustCompile(`(?i)\ball rights reserved\b`),
	// Pagination.
	regexp.MustCompile(`(?i)^page\s+\d+(\s+of\s+\d+)?$`),
	regexp.MustCompile(`^\d+\s*/\s*\d+$`),
	regexp.MustCompile(`^[-–]\s*\d+\s*[-–]$`),
	// Relative and clock timestamps.
	regexp.MustCompile(`(?i)^((posted|updated|last updated|reposted)\s*:?\s*)?(\d+\+?|an?)\s+(seconds?|minutes?|mins?|hours?|hrs?|days?|weeks?|months?)\s+ago$`),
	regexp.MustCompile(`(?i)^(posted|updated)\s+(today|yesterday|just now)$`),
	regexp.MustCompile(`(?i)^\d{1,2}:\d{2}(:\d{2})?\s*(am|pm)?$`),
	// Navigation chrome.
	regexp.MustCompile(`(?i)^(skip to (main )?content|back to (search|jobs|results|job search)|sign in|log in|share (this )?(job|posting|role)|save (this )?job|report (this )?job|show more|show less|see more|read more)$`),
}

var spaceRunRe = regexp.MustCompile(`[ \f\v]{2,}`)

// IsBoilerplate reports whether a trimmed line matches a boilerplate pattern.
func IsBoilerplate(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	for _, re := range boilerplatePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Clean normalizes raw text. It never fails; empty input yields an empty Result.
func Clean(text string, cfg Config) Result {
	if cfg.ContentLossRatio <= 0 {
		cfg.ContentLossRatio = 0.5
	}

	res := Result{OriginalLength: utf8.RuneCountInString(text)}
	if text == "" {
		return res
	}

	text = strings.ToValidUTF8(text, "\uFFFD")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	text = stripInvisible(text)

	var out []string
	blank := false
	for _, line := range strings.Split(text, "\n") {
		line = cleanLine(line)
		if strings.TrimSpace(line) == "" {
			// Collapse runs of blank lines to one paragraph break.
			if len(out) > 0 && !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		if IsBoilerplate(line) {
			res.RemovedLines++
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	res.Text = strings.Join(out, "\n")
	res.CleanedLength = utf8.RuneCountInString(res.Text)
	if res.OriginalLength > 0 &&
		float64(res.CleanedLength) < cfg.ContentLossRatio*float64(res.OriginalLength) {
		res.ContentLossDetected = true
	}
	return res
}

// cleanLine keeps leading indentation, collapses interior whitespace runs and
// drops trailing whitespace.
func cleanLine(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(trimmed)]
	trimmed = strings.TrimRight(trimmed, " \f\v")
	if trimmed == "" {
		return ""
	}
	return indent + spaceRunRe.ReplaceAllString(trimmed, " ")
}

func stripInvisible(text string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u00a0', '\u2007', '\u202f':
			return ' '
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			return -1
		}
		return r
	}, text)
}
