// Package classify assigns a semantic type and confidence to raw sections
// using an ordered, data-driven rule table.
package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/jobparse/internal/doctree"
	"github.com/dgallion1/jobparse/internal/score"
)

// Rule maps keyword evidence to one section type. Rules are evaluated in
// slice order; the first that matches wins.
type Rule struct {
	Type          doctree.SectionType
	TitleKeywords []string
	BodyKeywords  []string
	// MinBodyHits is the number of distinct body keywords needed to match
	// on content alone.
	MinBodyHits int
}

// DefaultRules returns the rule table in classification priority order.
// Legal is tried before application, so a notice about accommodating
// applicants stays legal.
func DefaultRules() []Rule {
	return []Rule{
		{
			Type:          doctree.SectionMetadata,
			TitleKeywords: []string{"job details", "position details", "job information", "job info", "key details", "at a glance", "details"},
			BodyKeywords:  []string{"location:", "salary:", "job type:", "employment type", "requisition", "req id", "job id", "department:", "posted:", "reference:"},
			MinBodyHits:   2,
		},
		{
			Type:          doctree.SectionRoleOverview,
			TitleKeywords: []string{"about the role", "about this role", "about the job", "about the position", "role overview", "position overview", "overview", "summary", "the opportunity", "job description", "your role", "the role", "position"},
			BodyKeywords:  []string{"this role", "the role", "we are looking for", "we're looking for", "we are seeking", "opportunity", "this position", "you will join"},
			MinBodyHits:   2,
		},
		{
			Type:          doctree.SectionResponsibilities,
			TitleKeywords: []string{"responsibilities", "responsibility", "duties", "what you'll do", "what you will do", "day to day", "day-to-day", "accountabilities", "your impact", "the work"},
			BodyKeywords:  []string{"you will", "you'll", "responsible for", "manage", "develop", "lead", "collaborate", "ensure", "own", "build", "design", "drive"},
			MinBodyHits:   3,
		},
		{
			Type:          doctree.SectionQualifications,
			TitleKeywords: []string{"qualifications", "requirements", "skills", "experience", "what you'll bring", "what you will bring", "what we're looking for", "what we are looking for", "who you are", "about you", "nice to have", "must have", "bonus points", "preferred"},
			BodyKeywords:  []string{"years of experience", "experience with", "experience in", "degree", "bachelor", "proficiency", "proficient", "knowledge of", "familiarity", "required", "preferred", "ability to", "strong"},
			MinBodyHits:   2,
		},
		{
			Type:          doctree.SectionCompensation,
			TitleKeywords: []string{"compensation", "salary", "benefits", "perks", "what we offer", "pay", "total rewards", "rewards", "package"},
			BodyKeywords:  []string{"salary", "bonus", "equity", "401k", "401(k)", "health insurance", "dental", "vision", "paid time off", "pto", "vacation", "stock options", "per year", "per hour", "pension"},
			MinBodyHits:   2,
		},
		{
			Type:          doctree.SectionCompanyInfo,
			TitleKeywords: []string{"about us", "about the company", "who we are", "our company", "our mission", "our culture", "our story", "company overview", "life at", "why join", "about"},
			BodyKeywords:  []string{"founded", "our mission", "we are a", "we're a", "headquartered", "our customers", "our values", "our team", "startup", "industry"},
			MinBodyHits:   2,
		},
		{
			Type:          doctree.SectionLegal,
			TitleKeywords: []string{"equal opportunity", "equal employment", "eeo", "diversity", "inclusion", "disclaimer", "legal", "accommodation", "e-verify"},
			BodyKeywords:  []string{"equal opportunity", "without regard", "race", "religion", "gender", "disability", "veteran", "national origin", "sexual orientation", "e-verify", "accommodation"},
			MinBodyHits:   2,
		},
		{
			Type:          doctree.SectionApplication,
			TitleKeywords: []string{"how to apply", "to apply", "apply", "application", "next steps", "interview process", "hiring process"},
			BodyKeywords:  []string{"apply", "resume", "cv", "cover letter", "submit", "application", "interview"},
			MinBodyHits:   2,
		},
	}
}

// Reorder returns rules with the given types moved to the front in the
// given order. Types not named keep their relative order after them.
func Reorder(rules []Rule, order []doctree.SectionType) []Rule {
	out := make([]Rule, 0, len(rules))
	used := make([]bool, len(rules))
	for _, t := range order {
		for i, r := range rules {
			if !used[i] && r.Type == t {
				out = append(out, r)
				used[i] = true
			}
		}
	}
	for i, r := range rules {
		if !used[i] {
			out = append(out, r)
		}
	}
	return out
}

type compiledRule struct {
	typ         doctree.SectionType
	title       []keyword
	body        []keyword
	minBodyHits int
}

// Evidence is the keyword tally a confidence is computed from.
type Evidence struct {
	TitleHits int
	BodyHits  int
}

// Contributions are the named confidence terms added to the 0.5 base.
var Contributions = []score.Contribution[Evidence]{
	{Name: "title_keywords", Value: func(e Evidence) float64 { return score.Capped(e.TitleHits, 0.15, 0.3) }},
	{Name: "body_keywords", Value: func(e Evidence) float64 { return score.Capped(e.BodyHits, 0.05, 0.2) }},
}

const baseConfidence = 0.5

// Classifier is immutable after New and safe for concurrent use.
type Classifier struct {
	rules []compiledRule
}

// New compiles rules. Rules with a type outside the closed set are skipped.
func New(rules []Rule) *Classifier {
	c := &Classifier{}
	for _, r := range rules {
		if !r.Type.Valid() || r.Type == doctree.SectionUnknown {
			continue
		}
		minHits := r.MinBodyHits
		if minHits < 1 {
			minHits = 1
		}
		c.rules = append(c.rules, compiledRule{
			typ:         r.Type,
			title:       compileKeywords(r.TitleKeywords),
			body:        compileKeywords(r.BodyKeywords),
			minBodyHits: minHits,
		})
	}
	return c
}

// Default returns a classifier over DefaultRules.
func Default() *Classifier {
	return New(DefaultRules())
}

// Order returns the section types in evaluation order.
func (c *Classifier) Order() []doctree.SectionType {
	out := make([]doctree.SectionType, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.typ
	}
	return out
}

// Classify types one section. Title keywords are tried across every rule
// before any body evidence is considered.
func (c *Classifier) Classify(s doctree.RawSection) doctree.ClassifiedSection {
	title := strings.ToLower(s.Title)
	body := strings.ToLower(s.Content)

	if title != "" {
		for _, r := range c.rules {
			if th := countHits(r.title, title); th > 0 {
				return classified(s, r.typ, Evidence{TitleHits: th, BodyHits: countHits(r.body, body)})
			}
		}
	}
	overviewHits := 0
	for _, r := range c.rules {
		bh := countHits(r.body, body)
		if bh >= r.minBodyHits {
			return classified(s, r.typ, Evidence{BodyHits: bh})
		}
		if r.typ == doctree.SectionRoleOverview {
			overviewHits = bh
		}
	}
	// Untitled text ahead of the first header is the posting's introduction.
	if isLead(s) {
		return classified(s, doctree.SectionRoleOverview, Evidence{BodyHits: overviewHits})
	}
	return classified(s, doctree.SectionUnknown, Evidence{})
}

func isLead(s doctree.RawSection) bool {
	return s.OriginalOrder == 0 && strings.TrimSpace(s.Title) == "" && strings.TrimSpace(s.Content) != ""
}

// ClassifyAll types every section, preserving order.
func (c *Classifier) ClassifyAll(sections []doctree.RawSection) []doctree.ClassifiedSection {
	out := make([]doctree.ClassifiedSection, len(sections))
	for i, s := range sections {
		out[i] = c.Classify(s)
	}
	return out
}

func classified(s doctree.RawSection, t doctree.SectionType, e Evidence) doctree.ClassifiedSection {
	return doctree.ClassifiedSection{
		RawSection: s,
		Type:       t,
		Confidence: score.Sum(baseConfidence, e, Contributions),
	}
}

// keyword is a lowercase literal with the word-boundary checks its edges need.
type keyword struct {
	text        string
	left, right bool
}

// in reports whether k occurs in text with word boundaries on its word
// edges. text must already be lowercase.
func (k keyword) in(text string) bool {
	for off := 0; off < len(text); {
		i := strings.Index(text[off:], k.text)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(k.text)
		if (!k.left || !wordBefore(text, start)) && (!k.right || !wordAfter(text, end)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		off = start + size
	}
	return false
}

func countHits(kws []keyword, text string) int {
	if text == "" {
		return 0
	}
	n := 0
	for _, k := range kws {
		if k.in(text) {
			n++
		}
	}
	return n
}

// compileKeywords lowercases keywords and records which edges need a word
// boundary: only those that are word characters.
func compileKeywords(kws []string) []keyword {
	out := make([]keyword, 0, len(kws))
	for _, kw := range kws {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(kw)
		last, _ := utf8.DecodeLastRuneInString(kw)
		out = append(out, keyword{text: kw, left: isWordRune(first), right: isWordRune(last)})
	}
	return out
}

func wordBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWordRune(r)
}

func wordAfter(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
