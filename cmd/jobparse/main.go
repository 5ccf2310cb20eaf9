// Command jobparse parses a job posting file into its structured document.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if err := newApp(log).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "jobparse:", err)
		os.Exit(1)
	}
}

func newApp(log *slog.Logger) *cli.App {
	return &cli.App{
		Name:  "jobparse",
		Usage: "parse job postings into hierarchical documents",
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "parse a posting file, or stdin when no file is given",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "source identifier recorded in the document"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "output format: json or yaml"},
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "parser tuning file (YAML)"},
					&cli.BoolFlag{Name: "detect-language", Usage: "warn on non-English postings"},
					&cli.BoolFlag{Name: "pdftotext", Usage: "fall back to pdftotext for PDFs"},
				},
				Action: func(c *cli.Context) error {
					return parseAction(c, log)
				},
			},
			{
				Name:   "formats",
				Usage:  "list supported input file extensions",
				Action: formatsAction,
			},
		},
	}
}
