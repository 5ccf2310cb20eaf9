package assemble

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/jobparse/internal/doctree"
	"github.com/dgallion1/jobparse/internal/quality"
)

const posting = `Senior Backend Engineer at Acme Robotics

Location: Berlin, Germany
Job Type: Full-time
Salary: €70,000 - €90,000 per year
Requisition ID: ACME-2291

About the Role
We are looking for a backend engineer to join the platform team. In this role you will own core services that power our fleet of warehouse robots.

Key Responsibilities:
- Service design: Design and build resilient Go services for fleet telemetry
- Reliability: Ensure uptime targets are met across all regions
- Collaboration: Collaborate with hardware and data teams on new features

Qualifications
- 5+ years of experience with backend development
- Strong knowledge of distributed systems and PostgreSQL
- Degree in computer science or equivalent experience

What We Offer
- Competitive salary and annual bonus
- 30 days of paid vacation

Equal Opportunity
Acme Robotics is an equal opportunity employer and hires without regard to race, religion or disability.

© 2024 Acme Robotics. All rights reserved.`

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func newTestParser(opts ...Option) *Parser {
	base := []Option{WithClock(fixedClock(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))}
	return New(DefaultConfig(), append(base, opts...)...)
}

func deref(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestParse_FullPosting(t *testing.T) {
	doc := newTestParser().Parse(posting, "https://jobs.example.com/acme/2291")

	wantTypes := []doctree.SectionType{
		doctree.SectionMetadata,
		doctree.SectionRoleOverview,
		doctree.SectionResponsibilities,
		doctree.SectionQualifications,
		doctree.SectionCompensation,
		doctree.SectionLegal,
	}
	if len(doc.Sections) != len(wantTypes) {
		t.Fatalf("expected %d sections, got %d", len(wantTypes), len(doc.Sections))
	}
	for i, w := range wantTypes {
		if doc.Sections[i].Type != w {
			t.Errorf("section[%d]: expected %s, got %s", i, w, doc.Sections[i].Type)
		}
	}

	m := doc.JobMetadata
	checks := map[string]string{
		"title":          "Senior Backend Engineer",
		"company":        "Acme Robotics",
		"location":       "Berlin, Germany",
		"salary":         "€70,000 - €90,000 per year",
		"requisition_id": "ACME-2291",
		"job_type":       "Full-time",
	}
	for field, want := range checks {
		if got := deref(m.Field(field)); got != want {
			t.Errorf("%s: expected %q, got %q", field, want, got)
		}
	}

	if doc.StructureQuality.SectionCompleteness != 1 {
		t.Errorf("expected full completeness, got %v", doc.StructureQuality.SectionCompleteness)
	}
	if !doc.ProcessingInfo.ValidationPassed {
		t.Errorf("expected validation to pass, score %v", doc.StructureQuality.OverallStructureScore)
	}
	if doc.ProcessingInfo.RemovedLines != 1 {
		t.Errorf("expected 1 removed line, got %d", doc.ProcessingInfo.RemovedLines)
	}
	if strings.Contains(doc.CleanedContent, "All rights reserved") {
		t.Error("expected copyright line removed from cleaned content")
	}
	if doc.OriginalContent != posting {
		t.Error("expected original content preserved verbatim")
	}
	if doc.OriginalURL != "https://jobs.example.com/acme/2291" {
		t.Errorf("unexpected original url %q", doc.OriginalURL)
	}
	if doc.ProcessingInfo.ParserVersion != Version {
		t.Errorf("expected parser version %q, got %q", Version, doc.ProcessingInfo.ParserVersion)
	}
	if doc.ProcessingInfo.BulletCount != doc.BulletCount() {
		t.Errorf("bullet count mismatch: info %d, sections %d", doc.ProcessingInfo.BulletCount, doc.BulletCount())
	}
	if len(doc.ProcessingInfo.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", doc.ProcessingInfo.Warnings)
	}
}

func TestParse_ScenarioA_LabeledResponsibilities(t *testing.T) {
	input := "Key Responsibilities:\n" +
		"- Strategy: Define the product roadmap with stakeholders\n" +
		"- Delivery: Ship features on a predictable cadence\n" +
		"- Quality: Keep the defect rate low across releases"
	doc := newTestParser().Parse(input, "scenario-a")

	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}
	s := doc.Sections[0]
	if s.Type != doctree.SectionResponsibilities {
		t.Errorf("expected responsibilities, got %s", s.Type)
	}
	if len(s.Bullets) != 3 {
		t.Fatalf("expected 3 bullets, got %d", len(s.Bullets))
	}
	for i, b := range s.Bullets {
		if b.Label == "" {
			t.Errorf("bullet[%d]: expected a label", i)
		}
	}
}

func TestParse_ScenarioB_LabeledMetadata(t *testing.T) {
	doc := newTestParser().Parse("Location: London\nSalary: Competitive\nRequisition ID: 1609771", "scenario-b")
	m := doc.JobMetadata
	if got := deref(m.Location); got != "London" {
		t.Errorf("expected location %q, got %q", "London", got)
	}
	if got := deref(m.Salary); got != "Competitive" {
		t.Errorf("expected salary %q, got %q", "Competitive", got)
	}
	if got := deref(m.RequisitionID); got != "1609771" {
		t.Errorf("expected requisition id %q, got %q", "1609771", got)
	}
}

func TestParse_ScenarioC_NoHeaders(t *testing.T) {
	input := "We are a small group building tools for logistics companies across Europe and beyond.\n" +
		"The work spans backend services, data pipelines and a little frontend when needed."
	doc := newTestParser().Parse(input, "scenario-c")
	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}
	if doc.StructureQuality.SectionCompleteness >= 1.0 {
		t.Errorf("expected completeness below 1, got %v", doc.StructureQuality.SectionCompleteness)
	}
	if doc.ProcessingInfo.HeadersDetected != 0 {
		t.Errorf("expected 0 headers, got %d", doc.ProcessingInfo.HeadersDetected)
	}
}

func TestParse_ScenarioD_FidelityHighBand(t *testing.T) {
	var body []string
	for i := 0; i < 10; i++ {
		body = append(body, fmt.Sprintf("Line %02d %s.", i, strings.TrimSpace(strings.Repeat("lorem ", 14))))
	}
	var noise []string
	for i := 0; i < 8; i++ {
		noise = append(noise, "Page 1 of 10")
	}
	input := strings.Join(body, "\n") + "\n" + strings.Join(noise, "\n")

	doc := newTestParser().Parse(input, "scenario-d")
	info := doc.ProcessingInfo
	ratio := float64(info.CleanedLength) / float64(info.OriginalLength)
	if ratio < 0.85 || ratio > 0.95 {
		t.Fatalf("fixture ratio drifted: %v", ratio)
	}
	f := doc.StructureQuality.ContentFidelity
	if f < 0.8 || f > 0.9 {
		t.Errorf("expected fidelity in [0.8, 0.9], got %v", f)
	}
}

func TestParse_Idempotent(t *testing.T) {
	p1 := New(DefaultConfig(), WithClock(fixedClock(time.Unix(100, 0))))
	p2 := New(DefaultConfig(), WithClock(fixedClock(time.Unix(200, 0))))
	a := p1.Parse(posting, "src")
	b := p2.Parse(posting, "src")

	if !reflect.DeepEqual(a.Sections, b.Sections) {
		t.Error("expected identical sections")
	}
	if !reflect.DeepEqual(a.JobMetadata, b.JobMetadata) {
		t.Error("expected identical metadata")
	}
	if a.StructureQuality != b.StructureQuality {
		t.Errorf("expected identical quality, got %+v and %+v", a.StructureQuality, b.StructureQuality)
	}
	if a.DocumentID == b.DocumentID {
		t.Error("expected a new document id for a parse at a different time")
	}
}

func TestParse_CompletenessMonotonic(t *testing.T) {
	sections := "\n\nResponsibilities\n- Build reliable ingestion services in Go\n- Review code and mentor other engineers\n" +
		"\nQualifications\n- 5+ years of professional Go experience\n- Experience operating distributed systems\n"
	tests := []struct {
		name    string
		without string
		with    string
	}{
		{
			name:    "single paragraph",
			without: "You will design services, build APIs and collaborate with product to drive delivery across teams.",
			with:    "Key Responsibilities:\nYou will design services, build APIs and collaborate with product to drive delivery across teams.",
		},
		{
			name: "header splits the introduction",
			without: "We are looking for a backend engineer to join our platform group in Berlin.\n\n" +
				"This is a rare opportunity where you will manage the ingestion services end to end." + sections,
			with: "We are looking for a backend engineer to join our platform group in Berlin.\n\n" +
				"Key Responsibilities:\nThis is a rare opportunity where you will manage the ingestion services end to end." + sections,
		},
	}
	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			without := p.Parse(tt.without, "x").StructureQuality.SectionCompleteness
			with := p.Parse(tt.with, "x").StructureQuality.SectionCompleteness
			if with < without {
				t.Errorf("completeness decreased: %v -> %v", without, with)
			}
		})
	}
}

func TestParse_ApplicationBeforeLegal(t *testing.T) {
	input := "How to Apply\nSend your resume and a short cover letter to jobs@example.com.\n\n" +
		"Equal Opportunity\nWe are an equal opportunity employer and hire without regard to race or disability.\n"
	doc := newTestParser().Parse(input, "apply-legal")
	var got []doctree.SectionType
	for _, s := range doc.Sections {
		got = append(got, s.Type)
	}
	want := []doctree.SectionType{doctree.SectionApplication, doctree.SectionLegal}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParse_ZeroConfigDoesNotPassEmptyScore(t *testing.T) {
	doc := New(Config{}).Parse("Lorem ipsum dolor sit amet.", "zero")
	q := doc.StructureQuality
	if q.OverallStructureScore == 0 {
		t.Error("expected a weighted overall score with a zero config")
	}
	if doc.ProcessingInfo.ValidationPassed && q.OverallStructureScore < quality.DefaultConfig().ValidationThreshold {
		t.Errorf("expected validation to fail at score %v", q.OverallStructureScore)
	}
}

var adversarial = []string{
	"",
	"   \n\n\t  ",
	"!!!! ???? #### $$$$",
	"\x00\xff\xfe binary \x01",
	strings.Repeat("A", 5000),
	strings.Repeat("- \n", 200),
	strings.Repeat("HEADER\n", 50),
	"Key: value\n:::\n: :\n- : -",
	posting,
}

func TestParse_BoundInvariants(t *testing.T) {
	p := newTestParser()
	for i, in := range adversarial {
		doc := p.Parse(in, "bounds")
		sq := doc.StructureQuality
		for name, v := range map[string]float64{
			"completeness": sq.SectionCompleteness,
			"bullets":      sq.BulletPointQuality,
			"consistency":  sq.HierarchicalConsistency,
			"fidelity":     sq.ContentFidelity,
			"overall":      sq.OverallStructureScore,
		} {
			if v < 0 || v > 1 {
				t.Errorf("input %d: %s out of bounds: %v", i, name, v)
			}
		}
		for _, s := range doc.Sections {
			if s.Confidence < 0 || s.Confidence > 1 {
				t.Errorf("input %d: section %s confidence %v", i, s.ID, s.Confidence)
			}
			if !s.Type.Valid() {
				t.Errorf("input %d: section %s has invalid type %q", i, s.ID, s.Type)
			}
			for _, b := range s.Bullets {
				if b.Confidence < 0 || b.Confidence > 1 {
					t.Errorf("input %d: bullet %s confidence %v", i, b.ID, b.Confidence)
				}
				if b.Level < 0 {
					t.Errorf("input %d: bullet %s negative level", i, b.ID)
				}
			}
		}
	}
}

func TestParse_OrderingInvariant(t *testing.T) {
	p := newTestParser()
	for i, in := range adversarial {
		doc := p.Parse(in, "order")
		for j := 1; j < len(doc.Sections); j++ {
			prev, cur := doc.Sections[j-1], doc.Sections[j]
			if prev.Type.Priority() > cur.Type.Priority() {
				t.Errorf("input %d: %s before %s", i, prev.Type, cur.Type)
			}
			if prev.Type.Priority() == cur.Type.Priority() && prev.OriginalOrder > cur.OriginalOrder {
				t.Errorf("input %d: tie not broken by original order", i)
			}
		}
	}
}

func TestParse_NoCrashOnLargeInput(t *testing.T) {
	var b strings.Builder
	per := utf8.RuneCountInString(posting) + 2
	for runes := 0; runes <= 1<<20; runes += per {
		b.WriteString(posting)
		b.WriteString("\n\n")
	}
	doc := newTestParser().Parse(b.String(), "large")
	if doc == nil {
		t.Fatal("expected a document")
	}
	if doc.ProcessingInfo.OriginalLength <= 1<<20 {
		t.Errorf("expected >1MB input, got %d runes", doc.ProcessingInfo.OriginalLength)
	}
	if len(doc.Sections) == 0 {
		t.Error("expected sections for large input")
	}
}

func TestParse_EmptyInput(t *testing.T) {
	doc := newTestParser().Parse("", "empty")
	if doc == nil {
		t.Fatal("expected a document")
	}
	if len(doc.Sections) != 0 {
		t.Errorf("expected 0 sections, got %d", len(doc.Sections))
	}
	sq := doc.StructureQuality
	if sq.SectionCompleteness != 0 || sq.ContentFidelity != 0 {
		t.Errorf("expected zero completeness and fidelity, got %+v", sq)
	}
	if doc.ProcessingInfo.ValidationPassed {
		t.Error("expected validation to fail for empty input")
	}
	want := []string{WarnNoSections, WarnNoBullets}
	if !reflect.DeepEqual(doc.ProcessingInfo.Warnings, want) {
		t.Errorf("expected warnings %v, got %v", want, doc.ProcessingInfo.Warnings)
	}
	if doc.Sections == nil {
		t.Error("expected empty, non-nil sections slice")
	}
}

func TestParse_ContentLossWarning(t *testing.T) {
	input := "Real content line that survives cleaning.\n" + strings.Repeat("We use cookies to improve your experience\n", 10)
	doc := newTestParser().Parse(input, "loss")
	if !doc.ProcessingInfo.ContentLossDetected {
		t.Fatal("expected content loss detected")
	}
	found := false
	for _, w := range doc.ProcessingInfo.Warnings {
		if w == WarnContentLoss {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s warning, got %v", WarnContentLoss, doc.ProcessingInfo.Warnings)
	}
}

type stubDetector struct{ lang string }

func (s stubDetector) Detect(string) (string, bool) { return s.lang, s.lang != "" }

func TestParse_LanguageDetector(t *testing.T) {
	doc := newTestParser(WithLanguageDetector(stubDetector{lang: "fr"})).Parse(posting, "lang")
	if doc.ProcessingInfo.Language != "fr" {
		t.Errorf("expected language fr, got %q", doc.ProcessingInfo.Language)
	}
	if !reflect.DeepEqual(doc.ProcessingInfo.Warnings, []string{WarnNonEnglish}) {
		t.Errorf("expected non-English warning, got %v", doc.ProcessingInfo.Warnings)
	}

	en := newTestParser(WithLanguageDetector(stubDetector{lang: "en"})).Parse(posting, "lang")
	if len(en.ProcessingInfo.Warnings) != 0 {
		t.Errorf("expected no warnings for English, got %v", en.ProcessingInfo.Warnings)
	}

	unsure := newTestParser(WithLanguageDetector(stubDetector{})).Parse(posting, "lang")
	if unsure.ProcessingInfo.Language != "" {
		t.Errorf("expected empty language, got %q", unsure.ProcessingInfo.Language)
	}
}

func TestParse_ClassificationOrderConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClassificationOrder = []doctree.SectionType{doctree.SectionCompanyInfo}
	p := New(cfg)
	doc := p.Parse("About the Role\nWe make robots for warehouses and need help building them.", "order")
	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Type != doctree.SectionCompanyInfo {
		t.Errorf("expected company_info with reordered rules, got %s", doc.Sections[0].Type)
	}
}

func TestParse_Concurrent(t *testing.T) {
	p := newTestParser()
	want := p.Parse(posting, "concurrent")

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := p.Parse(posting, "concurrent")
			if !reflect.DeepEqual(got.Sections, want.Sections) {
				errs <- "sections differ"
			}
			if got.DocumentID != want.DocumentID {
				errs <- "document id differs"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestDocumentID(t *testing.T) {
	ts := time.Date(2025, 5, 6, 7, 8, 9, 10, time.UTC)
	a := DocumentID("https://example.com/job/1", ts)
	b := DocumentID("https://example.com/job/1", ts)
	if a != b {
		t.Errorf("expected deterministic id, got %s and %s", a, b)
	}
	if c := DocumentID("https://example.com/job/1", ts.Add(time.Nanosecond)); c == a {
		t.Error("expected a different id for a different creation time")
	}
	if d := DocumentID("https://example.com/job/2", ts); d == a {
		t.Error("expected a different id for a different source")
	}
	if len(a) != 36 {
		t.Errorf("expected UUID string, got %q", a)
	}
}

func TestParse_TimestampsAndTiming(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * 25 * time.Millisecond)
	}
	doc := New(DefaultConfig(), WithClock(clock)).Parse(posting, "timing")
	if !doc.Timestamps.CreatedAt.Equal(start) {
		t.Errorf("expected created at %v, got %v", start, doc.Timestamps.CreatedAt)
	}
	if doc.ProcessingInfo.ProcessingTimeMs != 25 {
		t.Errorf("expected 25ms processing time, got %d", doc.ProcessingInfo.ProcessingTimeMs)
	}
}
