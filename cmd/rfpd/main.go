package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentic-rfp/rfp-engine/internal/catalog"
	"github.com/agentic-rfp/rfp-engine/internal/common"
	"github.com/agentic-rfp/rfp-engine/internal/document"
	"github.com/agentic-rfp/rfp-engine/internal/embed"
	"github.com/agentic-rfp/rfp-engine/internal/extract"
	"github.com/agentic-rfp/rfp-engine/internal/llm"
	"github.com/agentic-rfp/rfp-engine/internal/match"
	"github.com/agentic-rfp/rfp-engine/internal/pipeline"
	"github.com/agentic-rfp/rfp-engine/internal/priority"
	"github.com/agentic-rfp/rfp-engine/internal/repository"
	"github.com/agentic-rfp/rfp-engine/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("daemon.db_open_failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := repository.InitSchema(ctx, db); err != nil {
		logger.Error("daemon.schema_init_failed", "error", err)
		os.Exit(1)
	}
	store := repository.NewStore(db, cfg.Database.Driver, logger)

	gen := llm.NewClient(llm.ClientConfig{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout.Std(),
	}, logger)
	if err := gen.Ping(ctx); err != nil {
		// The daemon still serves reads when the model is down; runs
		// degrade to Not Found fields and placeholder items.
		logger.Warn("daemon.llm_unavailable", "base_url", cfg.LLM.BaseURL, "error", err)
	}

	embedder := embed.NewClient(embed.ClientConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Timeout:    cfg.Embedding.Timeout.Std(),
		Dimensions: cfg.Embedding.Dimensions,
	}, logger)

	orch := pipeline.NewOrchestrator(
		document.NewLocalSource(cfg.Documents.Dir, logger),
		gen,
		catalogSource(cfg, embedder, logger),
		match.NewMatcher(match.NewWeightedStrategy(), match.NewEmbeddingStrategy(embedder, logger), logger),
		priority.NewSelector(logger),
		store,
		pipeline.Config{
			Extraction: extract.CoordinatorConfig{
				ChunkSize:     cfg.Extraction.ChunkSize,
				Workers:       cfg.Extraction.Workers,
				MaxTokens:     cfg.Extraction.FieldMaxTokens,
				RateLimitRPS:  cfg.Extraction.RateLimitRPS,
				Deterministic: cfg.LLM.Deterministic,
			},
			ItemMaxTokens: cfg.Extraction.ItemMaxTokens,
			Deterministic: cfg.LLM.Deterministic,
			SourceTag:     cfg.Documents.SourceTag,
			FilterPages:   true,
		},
		logger,
	)

	runs := pipeline.NewRunManager(orch, logger)
	srv := server.New(cfg.Server.Addr, runs, store, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("daemon.server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("daemon.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("daemon.shutdown_failed", "error", err)
	}
	logger.Info("daemon.stopped")
}

func catalogSource(cfg *common.Config, embedder embed.Embedder, logger *slog.Logger) catalog.Source {
	var src catalog.Source
	if cfg.Catalog.Source == "xlsx" {
		src = catalog.NewXLSXSource(cfg.Catalog.Path, logger)
	} else {
		src = catalog.NewJSONSource(cfg.Catalog.Path, logger)
	}
	return catalog.WithEmbeddings(src, embedder, logger)
}
