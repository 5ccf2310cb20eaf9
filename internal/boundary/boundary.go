// Package boundary splits normalized posting text into ordered raw sections
// using header heuristics.
package boundary

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/jobparse/internal/doctree"
)

// HeaderPhrases are domain headers recognized regardless of casing.
var HeaderPhrases = []string{
	"about the role", "about this role", "about the job", "about the position",
	"role overview", "position overview", "job summary", "position summary",
	"job description", "the opportunity", "overview", "summary", "your role",
	"key responsibilities", "responsibilities", "main responsibilities",
	"duties and responsibilities", "what you'll do", "what you will do",
	"your responsibilities", "day to day", "day-to-day", "key accountabilities",
	"qualifications", "qualifications and skills", "required qualifications",
	"preferred qualifications", "minimum qualifications", "requirements",
	"skills and experience", "what you'll bring", "what you will bring",
	"what we're looking for", "what we are looking for", "who you are",
	"about you", "nice to have", "nice to haves", "bonus points",
	"what we offer", "benefits", "compensation", "compensation and benefits",
	"salary and benefits", "perks", "perks and benefits", "why join us",
	"about us", "about the company", "who we are", "our company", "our mission",
	"company overview", "our culture",
	"equal opportunity", "equal employment opportunity", "eeo statement",
	"diversity and inclusion", "legal", "disclaimer",
	"how to apply", "application process", "next steps", "interview process",
	"job details", "position details", "job information", "additional information",
}

// headerPrefixes open short headers that name the company, as in "About Acme".
var headerPrefixes = []string{"about ", "life at ", "why join "}

// MaxHeaderLength bounds what can be considered a short header line.
const MaxHeaderLength = 150

var (
	bulletMarkerRe = regexp.MustCompile(`^(?:[•·▪◦‣●○■□➢➤►\-*–—+]|\(?\d{1,3}[.)]|[a-z]\))\s+`)
	keyValueRe     = regexp.MustCompile(`^[^:]{1,60}:\s*\S`)
	decorationRe   = regexp.MustCompile(`^[#*_\s]+|[*_\s]+$`)
)

// smallWords may stay lowercase in Title-Case headers.
var smallWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "by": true,
	"for": true, "in": true, "of": true, "on": true, "or": true, "the": true,
	"to": true, "with": true, "&": true,
}

// IsBullet reports whether a trimmed line starts with a bullet marker.
func IsBullet(line string) bool {
	return bulletMarkerRe.MatchString(strings.TrimSpace(line))
}

// HeaderTitle strips markdown decoration and a trailing colon from a header line.
func HeaderTitle(line string) string {
	t := decorationRe.ReplaceAllString(strings.TrimSpace(line), "")
	t = strings.TrimSpace(strings.TrimSuffix(t, ":"))
	return decorationRe.ReplaceAllString(t, "")
}

// IsHeader decides whether line is a section header given its neighbours.
// prev and next may be empty.
func IsHeader(prev, line, next string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || IsBullet(trimmed) {
		return false
	}
	if len([]rune(trimmed)) >= MaxHeaderLength {
		return false
	}
	// "Location: London" is a field, not a header.
	if keyValueRe.MatchString(decorationRe.ReplaceAllString(trimmed, "")) {
		return false
	}
	title := HeaderTitle(trimmed)
	if title == "" {
		return false
	}
	if matchesPhrase(title) {
		return true
	}
	if strings.ContainsAny(title[len(title)-1:], ".!?,;") {
		return false
	}
	if structuralScore(trimmed, title) >= 2 {
		return true
	}
	return contextualScore(prev, title, next) >= 2
}

func matchesPhrase(title string) bool {
	lower := strings.ToLower(title)
	for _, p := range HeaderPhrases {
		if lower == p {
			return true
		}
	}
	if wordCount(lower) > 5 {
		return false
	}
	for _, p := range headerPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func structuralScore(trimmed, title string) int {
	n := 0
	if strings.HasSuffix(trimmed, ":") {
		n++
	}
	if isAllCaps(title) || isTitleCase(title) {
		n++
	}
	if wordCount(title) <= 8 && everyWordCapitalized(title) {
		n++
	}
	return n
}

func contextualScore(prev, title, next string) int {
	if wordCount(title) > 8 {
		return 0
	}
	n := 0
	p := strings.TrimSpace(prev)
	if p == "" || len([]rune(p)) < 40 {
		n++
	}
	nx := strings.TrimSpace(next)
	if IsBullet(nx) || len([]rune(nx)) > 80 {
		n++
	}
	return n
}

// Detect splits text into raw sections. Content before the first header
// becomes an untitled leading section; text with no headers is one section.
func Detect(text string) []doctree.RawSection {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := strings.Split(text, "\n")

	var sections []doctree.RawSection
	var title string
	var body []string
	open := false

	seal := func() {
		content := strings.Trim(strings.Join(body, "\n"), "\n")
		if open || strings.TrimSpace(content) != "" {
			sections = append(sections, doctree.RawSection{
				ID:            fmt.Sprintf("section-%d", len(sections)+1),
				Title:         title,
				Content:       content,
				OriginalOrder: len(sections),
			})
		}
		body = body[:0]
	}

	for i, line := range lines {
		var prev, next string
		if i > 0 {
			prev = lines[i-1]
		}
		if i+1 < len(lines) {
			next = lines[i+1]
		}
		if IsHeader(prev, line, next) {
			seal()
			title = HeaderTitle(line)
			open = true
			continue
		}
		body = append(body, line)
	}
	seal()
	return sections
}

// CountHeaders returns the number of titled sections.
func CountHeaders(sections []doctree.RawSection) int {
	n := 0
	for _, s := range sections {
		if s.Title != "" {
			n++
		}
	}
	return n
}

func words(s string) []string {
	return strings.Fields(s)
}

func wordCount(s string) int {
	return len(words(s))
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isTitleCase(s string) bool {
	ws := words(s)
	if len(ws) == 0 {
		return false
	}
	for i, w := range ws {
		r := firstLetter(w)
		if r == 0 {
			continue
		}
		if unicode.IsUpper(r) {
			continue
		}
		if i > 0 && smallWords[strings.ToLower(strings.Trim(w, ",:"))] {
			continue
		}
		return false
	}
	return firstLetter(ws[0]) != 0
}

func everyWordCapitalized(s string) bool {
	ws := words(s)
	if len(ws) == 0 {
		return false
	}
	seen := false
	for _, w := range ws {
		r := firstLetter(w)
		if r == 0 {
			continue
		}
		seen = true
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return seen
}

func firstLetter(w string) rune {
	for _, r := range w {
		if unicode.IsLetter(r) {
			return r
		}
		if unicode.IsDigit(r) {
			return 0
		}
	}
	return 0
}
