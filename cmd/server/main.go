package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/jobparse/internal/api"
	"github.com/dgallion1/jobparse/internal/assemble"
	"github.com/dgallion1/jobparse/internal/cache"
	"github.com/dgallion1/jobparse/internal/config"
	"github.com/dgallion1/jobparse/internal/langdetect"
	"github.com/dgallion1/jobparse/internal/pathstore"
	"github.com/dgallion1/jobparse/internal/pipeline"
	"github.com/dgallion1/jobparse/internal/validate"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadEnvFile(".env"); err != nil {
		log.Error("invalid .env file", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	parser, err := newParser(cfg)
	if err != nil {
		log.Error("invalid parser config", "path", cfg.ParserConfig, "error", err)
		os.Exit(1)
	}

	var opts []pipeline.Option
	if cfg.CachePath != "" {
		c, err := cache.Open(cfg.CachePath, cfg.CacheTTL)
		if err != nil {
			log.Error("failed to open parse cache", "path", cfg.CachePath, "error", err)
			os.Exit(1)
		}
		defer c.Close()
		opts = append(opts, pipeline.WithCache(c))
	}

	validator, err := newValidator(ctx, cfg)
	if err != nil {
		log.Error("failed to create validator", "provider", cfg.ValidatorProvider, "error", err)
		os.Exit(1)
	}
	if validator != nil {
		opts = append(opts, pipeline.WithValidator(validator))
	}

	// Initialize clients.
	ps := pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, parser, ps, log, opts...)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if validator != nil {
			validator.Close()
		}
		ps.Close()
	}()

	log.Info("starting jobparse",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"validator", cfg.ValidatorProvider,
		"cache", cfg.CachePath != "",
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}

func newParser(cfg config.Config) (*assemble.Parser, error) {
	pcfg := assemble.DefaultConfig()
	if cfg.ParserConfig != "" {
		var err error
		if pcfg, err = assemble.LoadConfig(cfg.ParserConfig); err != nil {
			return nil, err
		}
	}
	var opts []assemble.Option
	if cfg.DetectLanguage {
		opts = append(opts, assemble.WithLanguageDetector(langdetect.New()))
	}
	return assemble.New(pcfg, opts...), nil
}

func newValidator(ctx context.Context, cfg config.Config) (validate.Validator, error) {
	switch cfg.ValidatorProvider {
	case config.ProviderClaude:
		return validate.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	case config.ProviderGemini:
		return validate.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case config.ProviderNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown validator provider %q", cfg.ValidatorProvider)
}
