// Package assemble runs the parsing stages in order and produces the final
// immutable Document. A Parser holds only read-only state and may be shared
// across goroutines.
package assemble

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/jobparse/internal/boundary"
	"github.com/dgallion1/jobparse/internal/bullets"
	"github.com/dgallion1/jobparse/internal/classify"
	"github.com/dgallion1/jobparse/internal/doctree"
	"github.com/dgallion1/jobparse/internal/metadata"
	"github.com/dgallion1/jobparse/internal/normalize"
	"github.com/dgallion1/jobparse/internal/organize"
	"github.com/dgallion1/jobparse/internal/quality"
)

// Version is stamped into every Document.
const Version = "1.0.0"

// Warning codes reported in ProcessingInfo.Warnings.
const (
	WarnContentLoss  = "content_loss_detected"
	WarnNoSections   = "no_sections_detected"
	WarnNoBullets    = "no_bullets_extracted"
	WarnNonEnglish   = "non_english_content"
	englishISO639One = "en"
)

// LanguageDetector guesses the language of cleaned text. ok is false when no
// confident guess exists.
type LanguageDetector interface {
	Detect(text string) (iso639 string, ok bool)
}

// Option customizes a Parser.
type Option func(*Parser)

// WithClock replaces time.Now, mainly for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithLanguageDetector enables the non-English warning.
func WithLanguageDetector(d LanguageDetector) Option {
	return func(p *Parser) { p.lang = d }
}

type Parser struct {
	cfg        Config
	classifier *classify.Classifier
	now        func() time.Time
	lang       LanguageDetector
}

// New builds a Parser. cfg is assumed validated; see Config.Validate.
func New(cfg Config, opts ...Option) *Parser {
	rules := classify.DefaultRules()
	if len(cfg.ClassificationOrder) > 0 {
		rules = classify.Reorder(rules, cfg.ClassificationOrder)
	}
	p := &Parser{
		cfg:        cfg,
		classifier: classify.New(rules),
		now:        time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Config returns the parser's tuning.
func (p *Parser) Config() Config {
	return p.cfg
}

// Parse converts sourceText into a Document. sourceIdentifier is opaque and
// only feeds DocumentID and OriginalURL. Parse never fails on string input;
// poor input shows up in StructureQuality and Warnings.
func (p *Parser) Parse(sourceText, sourceIdentifier string) *doctree.Document {
	createdAt := p.now().UTC()

	norm := normalize.Clean(sourceText, p.cfg.Normalize)
	raw := boundary.Detect(norm.Text)
	classified := p.classifier.ClassifyAll(raw)
	processed := bullets.Attach(classified, p.cfg.Bullets)
	meta := metadata.Extract(classified, norm.Text)
	sq := quality.Assess(processed, norm.OriginalLength, norm.CleanedLength, p.cfg.Quality)
	sections := organize.Sort(processed)

	info := doctree.ProcessingInfo{
		ParserVersion:       Version,
		OriginalLength:      norm.OriginalLength,
		CleanedLength:       norm.CleanedLength,
		RemovedLines:        norm.RemovedLines,
		HeadersDetected:     boundary.CountHeaders(raw),
		SectionCount:        len(sections),
		ContentLossDetected: norm.ContentLossDetected,
		ValidationPassed:    quality.Passed(sq, p.cfg.Quality),
		Warnings:            []string{},
	}
	for _, s := range sections {
		info.BulletCount += len(s.Bullets)
	}

	if info.ContentLossDetected {
		info.Warnings = append(info.Warnings, WarnContentLoss)
	}
	if info.SectionCount == 0 {
		info.Warnings = append(info.Warnings, WarnNoSections)
	}
	if info.BulletCount == 0 {
		info.Warnings = append(info.Warnings, WarnNoBullets)
	}
	if p.lang != nil && strings.TrimSpace(norm.Text) != "" {
		if lang, ok := p.lang.Detect(norm.Text); ok {
			info.Language = lang
			if lang != englishISO639One {
				info.Warnings = append(info.Warnings, WarnNonEnglish)
			}
		}
	}

	processedAt := p.now().UTC()
	info.ProcessingTimeMs = processedAt.Sub(createdAt).Milliseconds()

	return &doctree.Document{
		DocumentID:  DocumentID(sourceIdentifier, createdAt),
		OriginalURL: sourceIdentifier,
		Timestamps: doctree.Timestamps{
			CreatedAt:   createdAt,
			ProcessedAt: processedAt,
		},
		OriginalContent:  sourceText,
		CleanedContent:   norm.Text,
		Sections:         sections,
		JobMetadata:      meta,
		StructureQuality: sq,
		ProcessingInfo:   info,
	}
}

// ParseRequest parses a decoded request envelope.
func (p *Parser) ParseRequest(req Request) *doctree.Document {
	return p.Parse(req.Text, req.SourceIdentifier)
}

// DocumentID derives a name-based UUID from the source and creation time, so
// the same inputs at the same instant always produce the same ID.
func DocumentID(sourceIdentifier string, createdAt time.Time) string {
	name := sourceIdentifier + "\x00" + createdAt.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
