package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/jobparse/internal/doctree"
	"github.com/dgallion1/jobparse/internal/parser"
	"github.com/dgallion1/jobparse/internal/pathstore"
	"github.com/dgallion1/jobparse/internal/validate"
)

// Worker processes a single posting job.
type Worker struct {
	o   *Orchestrator
	log *slog.Logger
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Extract plain text from the upload.
	job.SetStatus(StatusExtracting, "extracting")
	ex, err := parser.ForFile(job.Filename, parser.WithPdftotext(w.o.cfg.PDFFallbackPdftotext))
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	text, err := ex.Extract(bytes.NewReader(job.TakeFileData()), job.Filename)
	if err != nil {
		log.Error("extract failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	if strings.TrimSpace(text) == "" {
		job.AddError("no extractable text")
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	hash := pathstore.ContentHash(text)
	job.SetContentHash(hash)

	// Phase 1.5: Dedup against postings already stored.
	if existing, found, err := w.o.ps.FindByHash(ctx, hash); err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if found {
		log.Info("duplicate posting, skipping", "existing_doc_id", existing)
		job.SetDocID(existing)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Parse.
	job.SetStatus(StatusParsing, "parsing")
	source := job.Source
	if source == "" {
		source = job.Filename
	}
	doc, cached := w.o.ParseText(ctx, text, source)
	job.SetParseResult(doc, cached)
	log = log.With("doc_id", doc.DocumentID)
	log.Info("parsed posting",
		"sections", doc.ProcessingInfo.SectionCount,
		"bullets", doc.ProcessingInfo.BulletCount,
		"score", doc.StructureQuality.OverallStructureScore,
		"cached", cached,
	)

	hadErrors := false

	// Phase 3: Optional second opinion on metadata.
	var suggestions *validate.Suggestions
	if w.needsValidation(doc) {
		job.SetStatus(StatusValidating, "validating")
		s, err := w.validate(ctx, log, doc)
		if err != nil {
			log.Error("validation failed", "error", err)
			job.AddError(fmt.Sprintf("validate: %s", err))
			hadErrors = true
		} else {
			suggestions = &s
			job.SetFieldsSuggested(len(s.Fields))
		}
	}

	// Phase 4: Store.
	job.SetStatus(StatusStoring, "storing")
	sum := pathstore.SummaryOf(doc, job.Filename, job.Platform, hash)
	if err := w.o.ps.PutDocument(ctx, doc, sum); err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}
	if suggestions != nil {
		if err := w.o.ps.PutSuggestions(ctx, doc.DocumentID, suggestions); err != nil {
			log.Error("suggestions write failed", "error", err)
			job.AddError(fmt.Sprintf("suggestions: %s", err))
			hadErrors = true
		}
	}

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
		return
	}
	log.Info("posting stored")
	job.SetStatus(StatusCompleted, "done")
}

// needsValidation reports whether the validator should look at doc. Clean
// parses with every required field present are left alone.
func (w *Worker) needsValidation(doc *doctree.Document) bool {
	if w.o.validator == nil {
		return false
	}
	return !doc.ProcessingInfo.ValidationPassed || len(doc.JobMetadata.MissingRequired()) > 0
}

func (w *Worker) validate(ctx context.Context, log *slog.Logger, doc *doctree.Document) (validate.Suggestions, error) {
	req := validate.Request{
		DocumentID: doc.DocumentID,
		Text:       doc.CleanedContent,
		Missing:    missingFields(doc.JobMetadata),
		Current:    doc.JobMetadata,
	}

	select {
	case w.o.validateSem <- struct{}{}:
	case <-ctx.Done():
		return validate.Suggestions{}, ctx.Err()
	}
	defer func() { <-w.o.validateSem }()

	var out validate.Suggestions
	start := time.Now()
	err := withRetry(ctx, w.o.backoff, func(attempt int, err error) {
		log.Warn("retryable validator error", "attempt", attempt, "error", err)
	}, func() error {
		var err error
		out, err = w.o.validator.SuggestFields(ctx, req)
		return err
	})
	w.o.stats.Record(time.Since(start), len(out.Fields), err)
	return out, err
}

func missingFields(m doctree.JobMetadata) []string {
	var missing []string
	for _, name := range doctree.MetadataFields {
		if m.Field(name) == nil {
			missing = append(missing, name)
		}
	}
	return missing
}
