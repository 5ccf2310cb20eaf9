package parser

import (
	"strings"
	"testing"
)

func TestMarkdownExtractor_HeadingsAndLists(t *testing.T) {
	input := `# Senior Backend Engineer

**Location:** Remote

## Responsibilities

- Design and build APIs
- Own services in production
  - On-call rotation
  - Incident reviews

## Benefits
1. Health insurance
2. Stock options
`
	p := &MarkdownExtractor{}
	got, err := p.Extract(strings.NewReader(input), "job.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Senior Backend Engineer\n" +
		"Location: Remote\n\n" +
		"Responsibilities\n" +
		"- Design and build APIs\n" +
		"- Own services in production\n" +
		"    - On-call rotation\n" +
		"    - Incident reviews\n\n" +
		"Benefits\n" +
		"- Health insurance\n" +
		"- Stock options"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestMarkdownExtractor_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	got, err := (&MarkdownExtractor{}).Extract(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Just some plain text.\n\nAnother paragraph here." {
		t.Errorf("unexpected output %q", got)
	}
}

func TestMarkdownExtractor_CodeBlocks(t *testing.T) {
	input := "## How to Apply\n\nSend this:\n\n```\nGET /api/jobs\nPOST /api/apply\n```\n\nMore text after code.\n"

	got, err := (&MarkdownExtractor{}).Extract(strings.NewReader(input), "apply.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "GET /api/jobs\nPOST /api/apply") {
		t.Errorf("expected code block lines kept, got %q", got)
	}
	if !strings.HasPrefix(got, "How to Apply\nSend this:") {
		t.Errorf("expected heading followed by its content, got %q", got)
	}
	if !strings.HasSuffix(got, "More text after code.") {
		t.Errorf("expected post-code text, got %q", got)
	}
}

func TestMarkdownExtractor_SetextHeading(t *testing.T) {
	got, err := (&MarkdownExtractor{}).Extract(strings.NewReader("Benefits\n========\n\n+ Dental\n+ Vision\n"), "b.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Benefits\n- Dental\n- Vision" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestMarkdownExtractor_EmptyInput(t *testing.T) {
	got, err := (&MarkdownExtractor{}).Extract(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
