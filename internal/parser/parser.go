// Package parser linearizes uploaded files into the plain text the job
// posting parser consumes: headings on their own lines, list items as "- "
// bullets indented four spaces per level, blocks separated by blank lines.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// Extractor converts raw file bytes into posting text.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

type options struct {
	pdftotext bool
}

// Option tunes the extractor returned by ForFile.
type Option func(*options)

// WithPdftotext lets the PDF extractor shell out to pdftotext when the Go
// reader fails.
func WithPdftotext(enabled bool) Option {
	return func(o *options) { o.pdftotext = enabled }
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, opts ...Option) (Extractor, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: o.pdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Formats returns the supported extensions, sorted.
func Formats() []string {
	out := make([]string, 0, len(SupportedExtensions))
	for ext := range SupportedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// textBuilder accumulates linearized output. A heading is preceded by a
// blank line and directly followed by its content; consecutive list items
// share no blank line.
type textBuilder struct {
	b    strings.Builder
	last int
}

const (
	lastNone = iota
	lastHeading
	lastBlock
	lastItem
)

func (t *textBuilder) sep(kind int) {
	if t.b.Len() == 0 {
		return
	}
	if kind == lastHeading || t.last == lastBlock || (t.last == lastItem && kind != lastItem) {
		t.b.WriteString("\n\n")
		return
	}
	t.b.WriteString("\n")
}

func (t *textBuilder) heading(s string) {
	s = collapse(s)
	if s == "" {
		return
	}
	t.sep(lastHeading)
	t.b.WriteString(s)
	t.last = lastHeading
}

// block writes a paragraph. Interior line breaks are kept.
func (t *textBuilder) block(s string) {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimRight(l, " \t\r"); strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return
	}
	t.sep(lastBlock)
	t.b.WriteString(strings.Join(lines, "\n"))
	t.last = lastBlock
}

func (t *textBuilder) item(level int, s string) {
	s = collapse(s)
	if s == "" {
		return
	}
	t.sep(lastItem)
	t.b.WriteString(strings.Repeat("    ", level))
	t.b.WriteString("- ")
	t.b.WriteString(s)
	t.last = lastItem
}

func (t *textBuilder) String() string {
	return t.b.String()
}

// collapse joins whitespace runs, newlines included, into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
