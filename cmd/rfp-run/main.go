package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

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
)

// rfp-run executes one pipeline run from the command line and prints
// the resulting state as JSON.
func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		override   = flag.Int("select", -1, "zero-based index into the deadline-ranked candidates; -1 picks the most urgent")
	)
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
	ctx := context.Background()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("run.db_open_failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := repository.InitSchema(ctx, db); err != nil {
		logger.Error("run.schema_init_failed", "error", err)
		os.Exit(1)
	}

	gen := llm.NewClient(llm.ClientConfig{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout.Std(),
	}, logger)
	embedder := embed.NewClient(embed.ClientConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Timeout:    cfg.Embedding.Timeout.Std(),
		Dimensions: cfg.Embedding.Dimensions,
	}, logger)

	var catSrc catalog.Source
	if cfg.Catalog.Source == "xlsx" {
		catSrc = catalog.NewXLSXSource(cfg.Catalog.Path, logger)
	} else {
		catSrc = catalog.NewJSONSource(cfg.Catalog.Path, logger)
	}

	orch := pipeline.NewOrchestrator(
		document.NewLocalSource(cfg.Documents.Dir, logger),
		gen,
		catalog.WithEmbeddings(catSrc, embedder, logger),
		match.NewMatcher(match.NewWeightedStrategy(), match.NewEmbeddingStrategy(embedder, logger), logger),
		priority.NewSelector(logger),
		repository.NewStore(db, cfg.Database.Driver, logger),
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

	var sel *int
	if *override >= 0 {
		sel = override
	}
	state, err := orch.Execute(ctx, sel)
	if err != nil {
		logger.Error("run.failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		logger.Error("run.encode_failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
