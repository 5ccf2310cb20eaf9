package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/jobparse/internal/assemble"
	"github.com/dgallion1/jobparse/internal/langdetect"
	"github.com/dgallion1/jobparse/internal/parser"
)

func parseAction(c *cli.Context, log *slog.Logger) error {
	format := c.String("format")
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
	if c.NArg() > 1 {
		return fmt.Errorf("expected at most one file, got %d", c.NArg())
	}

	cfg := assemble.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = assemble.LoadConfig(path); err != nil {
			return err
		}
	}
	var opts []assemble.Option
	if c.Bool("detect-language") {
		opts = append(opts, assemble.WithLanguageDetector(langdetect.New()))
	}
	p := assemble.New(cfg, opts...)

	text, source, err := readInput(c)
	if err != nil {
		return err
	}
	if s := c.String("source"); s != "" {
		source = s
	}

	doc := p.Parse(text, source)
	log.Debug("parsed posting",
		"doc_id", doc.DocumentID,
		"sections", doc.ProcessingInfo.SectionCount,
		"score", doc.StructureQuality.OverallStructureScore,
	)
	for _, w := range doc.ProcessingInfo.Warnings {
		log.Warn("parse warning", "doc_id", doc.DocumentID, "warning", w)
	}

	out := c.App.Writer
	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// readInput returns the posting text and a default source identifier. Files
// go through the extractor for their extension; stdin is taken as plain text.
func readInput(c *cli.Context) (string, string, error) {
	if c.NArg() == 0 {
		in := c.App.Reader
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "", nil
	}

	path := c.Args().First()
	ex, err := parser.ForFile(path, parser.WithPdftotext(c.Bool("pdftotext")))
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	text, err := ex.Extract(bytes.NewReader(data), filepath.Base(path))
	if err != nil {
		return "", "", fmt.Errorf("extract %s: %w", path, err)
	}
	return text, path, nil
}

func formatsAction(c *cli.Context) error {
	for _, ext := range parser.Formats() {
		fmt.Fprintln(c.App.Writer, ext)
	}
	return nil
}
