// Package metadata pulls structured job fields out of posting text with
// ordered per-field patterns. Unmatched fields stay nil.
package metadata

import (
	"iter"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/jobparse/internal/doctree"
)

// MaxValueLength rejects captures longer than this many runes.
const MaxValueLength = 120

// matcher yields candidate values from text in order. Callers stop pulling
// once a value is accepted.
type matcher func(text string) iter.Seq[string]

type field struct {
	name     string
	matchers []matcher
	// reject filters captures that are syntactically fine but meaningless.
	reject func(v string) bool
	// canon rewrites an accepted value.
	canon func(v string) string
}

// stopValues are generic captures no field should accept.
var stopValues = map[string]bool{
	"n/a": true, "na": true, "none": true, "tbd": true, "tba": true, "-": true,
	"us": true, "you": true, "the role": true, "this role": true, "the team": true,
	"our team": true, "the company": true, "the position": true,
}

// leadingStopWords disqualify a company capture that starts with them.
var leadingStopWords = map[string]bool{
	"the": true, "our": true, "us": true, "you": true, "your": true, "this": true,
	"a": true, "an": true, "my": true, "we": true, "them": true,
}

var departmentStopWords = map[string]bool{
	"growing": true, "amazing": true, "talented": true, "great": true, "awesome": true,
	"world-class": true, "dynamic": true, "fast-growing": true, "small": true,
	"global": true, "diverse": true, "passionate": true, "friendly": true,
}

var (
	// separatorRe splits "Role at Company", "Role - Company" and "Role | Company".
	separatorRe = regexp.MustCompile(`(?i)^(.+?)\s+(?:at|@|[-–—|])\s+(.+)$`)
	fieldLineRe = regexp.MustCompile(`^[^:]{1,40}:`)

	hiringRe = regexp.MustCompile(`(?i:we(?:'re| are)\s+(?:hiring|looking for|seeking|recruiting))(?:\s+an?)?\s+(?P<v>[A-Z][A-Za-z0-9/&+#.-]*(?:[ \t]+[A-Z][A-Za-z0-9/&+#.-]*){0,6})`)
	joinRe   = regexp.MustCompile(`\b(?:Join|About|Life at)\s+(?P<v>[A-Z][A-Za-z0-9&.'-]*(?:[ \t]+[A-Z][A-Za-z0-9&.'-]*){0,3})`)
	basedRe  = regexp.MustCompile(`(?i:based in|located in|office in)\s+(?P<v>[A-Z][\w'-]*(?:,?[ \t]+[A-Z][\w'-]*){0,4})`)
	remoteRe = regexp.MustCompile(`(?i)\b(?P<v>fully remote|remote[- ]first|remote|hybrid|on[- ]?site|in[- ]office)\b`)
	salaryRe = regexp.MustCompile(`(?i)(?P<v>(?:[$£€]|\b(?:usd|gbp|eur)\s?)\d[\d,]*(?:\.\d+)?(?:\s?k\b)?(?:\s*(?:-|–|—|to)\s*(?:[$£€]|(?:usd|gbp|eur)\s?)?\d[\d,]*(?:\.\d+)?(?:\s?k\b)?)?(?:\s*(?:per|/|an?)\s*(?:year|yr|annum|hour|hr|month|week)\b)?)`)

	monthNames  = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?`
	monthDateRe = regexp.MustCompile(`(?i)\b(?P<v>` + monthNames + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})\b`)
	dayMonthRe  = regexp.MustCompile(`(?i)\b(?P<v>\d{1,2}(?:st|nd|rd|th)?\s+` + monthNames + `,?\s+\d{4})\b`)
	isoDateRe   = regexp.MustCompile(`\b(?P<v>\d{4}-\d{2}-\d{2})\b`)
	numDateRe   = regexp.MustCompile(`\b(?P<v>\d{1,2}/\d{1,2}/(?:\d{4}|\d{2}))\b`)

	reqNearRe = regexp.MustCompile(`(?i)\b(?:requisition|reference|req|ref)\.?(?:\s*(?:id|no\.?|number|code|#))?\s*[:#]?\s*(?P<v>[A-Za-z0-9_/-]*\d[A-Za-z0-9_/-]*)`)
	reqTokRe  = regexp.MustCompile(`^[A-Za-z0-9_/#-]*\d[A-Za-z0-9_/#-]*`)

	jobTypeRe = regexp.MustCompile(`(?i)\b(?P<v>full[- ]time|part[- ]time|contractor|contract|temporary|internship|freelance|permanent|seasonal)\b`)
	yearsRe   = regexp.MustCompile(`(?i)(?P<v>\d{1,2}(?:\s*(?:-|–|to)\s*\d{1,2})?\+?\s*years?)(?:\s+of)?(?:\s+[\w+#.-]+){0,3}?\s+experience`)
	seniorRe  = regexp.MustCompile(`(?i)\b(?P<v>entry[- ]level|junior|mid[- ]level|mid[- ]senior|senior|principal|executive)\b`)
	teamRe    = regexp.MustCompile(`(?i:join (?:our|the))\s+(?P<v>[A-Za-z][\w&/-]*(?:\s+[A-Za-z][\w&/-]*){0,3}?)\s+(?i:team|department|group|org)\b`)
)

// labeled builds a "Label: value" line matcher for the given labels.
func labeled(labels ...string) matcher {
	sorted := append([]string(nil), labels...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, l := range sorted {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(l), " ", `\s+`)
	}
	re := regexp.MustCompile(`(?im)^[\t *_#•·-]*(?:` + strings.Join(quoted, "|") + `)[*_]*[ \t]*:[*_]*[ \t]*(?P<v>[^\n]+?)[ \t]*$`)
	return pattern(re)
}

// pattern wraps a regexp whose "v" group holds the value. The first match
// is found alone; the full scan only runs when it is rejected.
func pattern(re *regexp.Regexp) matcher {
	idx := re.SubexpIndex("v")
	return func(text string) iter.Seq[string] {
		return func(yield func(string) bool) {
			first := re.FindStringSubmatch(text)
			if first == nil || !yield(first[idx]) {
				return
			}
			for _, m := range re.FindAllStringSubmatch(text, -1)[1:] {
				if !yield(m[idx]) {
					return
				}
			}
		}
	}
}

// firstLine splits the first non-empty line on a role/company separator and
// returns the requested side.
func firstLine(part int) matcher {
	return func(text string) iter.Seq[string] {
		return func(yield func(string) bool) {
			line := leadLine(text)
			if line == "" || utf8.RuneCountInString(line) > 100 {
				return
			}
			if fieldLineRe.MatchString(line) || strings.HasSuffix(line, ".") || strings.HasSuffix(line, ":") {
				return
			}
			if m := separatorRe.FindStringSubmatch(line); m != nil {
				yield(m[part])
			}
		}
	}
}

// requisitionLabeled keeps only the leading token of a labeled ID.
func requisitionLabeled() matcher {
	base := labeled("requisition id", "requisition number", "requisition", "req id", "req #", "req",
		"job id", "job number", "job ref", "job reference", "reference", "reference number",
		"ref", "posting id", "vacancy id")
	return func(text string) iter.Seq[string] {
		return func(yield func(string) bool) {
			for v := range base(text) {
				tok := reqTokRe.FindString(strings.TrimSpace(v))
				if tok != "" && !yield(strings.TrimLeft(tok, "#")) {
					return
				}
			}
		}
	}
}

var fields = []field{
	{
		name: "title",
		matchers: []matcher{
			labeled("job title", "position title", "role title", "title", "position", "role"),
			firstLine(1),
			pattern(hiringRe),
		},
	},
	{
		name: "company",
		matchers: []matcher{
			labeled("company", "company name", "employer", "organization", "organisation", "hiring company"),
			firstLine(2),
			pattern(joinRe),
		},
		reject: func(v string) bool {
			first := strings.ToLower(strings.Fields(v)[0])
			return leadingStopWords[first]
		},
	},
	{
		name: "location",
		matchers: []matcher{
			labeled("location", "locations", "job location", "work location", "office location", "office", "city", "based in"),
			pattern(basedRe),
			pattern(remoteRe),
		},
		canon: capitalize,
	},
	{
		name: "salary",
		matchers: []matcher{
			labeled("salary", "salary range", "base salary", "pay", "pay range", "compensation", "wage", "rate"),
			pattern(salaryRe),
		},
	},
	{
		name: "date",
		matchers: []matcher{
			labeled("date posted", "posting date", "posted on", "posted", "published", "date"),
			pattern(monthDateRe),
			pattern(dayMonthRe),
			pattern(isoDateRe),
			pattern(numDateRe),
		},
	},
	{
		name: "requisition_id",
		matchers: []matcher{
			requisitionLabeled(),
			pattern(reqNearRe),
		},
	},
	{
		name: "job_type",
		matchers: []matcher{
			labeled("job type", "employment type", "contract type", "type", "schedule"),
			pattern(jobTypeRe),
		},
		canon: func(v string) string {
			return capitalize(strings.Replace(strings.ToLower(v), " time", "-time", 1))
		},
	},
	{
		name: "experience_level",
		matchers: []matcher{
			labeled("experience level", "seniority level", "seniority", "career level", "level", "years of experience", "experience required"),
			pattern(yearsRe),
			pattern(seniorRe),
		},
	},
	{
		name: "department",
		matchers: []matcher{
			labeled("department", "team", "division", "business unit", "function"),
			pattern(teamRe),
		},
		reject: func(v string) bool {
			return departmentStopWords[strings.ToLower(strings.Fields(v)[0])]
		},
	},
	{
		name: "industry",
		matchers: []matcher{
			labeled("industry", "sector"),
		},
	},
}

// Extract fills JobMetadata from the metadata-classified sections first and
// the full cleaned text second, independently per field.
func Extract(sections []doctree.ClassifiedSection, cleaned string) doctree.JobMetadata {
	var meta []string
	for _, s := range sections {
		if s.Type == doctree.SectionMetadata && strings.TrimSpace(s.Content) != "" {
			meta = append(meta, s.Content)
		}
	}
	scopes := []string{strings.Join(meta, "\n"), cleaned}

	var m doctree.JobMetadata
	for _, f := range fields {
		if v, ok := f.find(scopes); ok {
			m.SetField(f.name, v)
		}
	}
	return m
}

// ExtractText runs extraction over plain text with no section context.
func ExtractText(text string) doctree.JobMetadata {
	return Extract(nil, text)
}

func (f field) find(scopes []string) (string, bool) {
	for _, text := range scopes {
		if strings.TrimSpace(text) == "" {
			continue
		}
		for _, match := range f.matchers {
			for raw := range match(text) {
				v := clean(raw)
				if v == "" || stopValues[strings.ToLower(v)] {
					continue
				}
				if f.reject != nil && f.reject(v) {
					continue
				}
				if f.canon != nil {
					v = f.canon(v)
				}
				return v, true
			}
		}
	}
	return "", false
}

// clean trims decoration and trailing punctuation and collapses whitespace.
// Over-long values come back empty.
func clean(v string) string {
	v = strings.Join(strings.Fields(v), " ")
	v = strings.Trim(v, "*_#`\"' ")
	v = strings.TrimRight(v, ".,;:!|-– ")
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) > MaxValueLength {
		return ""
	}
	return v
}

func capitalize(v string) string {
	r, size := utf8.DecodeRuneInString(v)
	if r == utf8.RuneError {
		return v
	}
	return string(unicode.ToUpper(r)) + v[size:]
}

func leadLine(text string) string {
	for line := range strings.Lines(text) {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
