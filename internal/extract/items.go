package extract

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/agentic-rfp/rfp-engine/internal/entity"
	"github.com/agentic-rfp/rfp-engine/internal/llm"
)

// PlaceholderSpecText tags fallback items generated from expected
// categories when the model returns nothing usable.
const PlaceholderSpecText = "Refer to source document technical specifications"

// ItemExtractorConfig tunes the single-call line-item extraction.
type ItemExtractorConfig struct {
	MaxTokens     int
	Deterministic bool
}

// ItemExtractor asks the generation service for the document's line
// items in one call over the full text. Malformed output degrades to
// placeholders derived from the routing summary, never to an error.
type ItemExtractor struct {
	gen    llm.Generator
	cfg    ItemExtractorConfig
	logger *slog.Logger
}

func NewItemExtractor(gen llm.Generator, cfg ItemExtractorConfig, logger *slog.Logger) *ItemExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 700
	}
	return &ItemExtractor{gen: gen, cfg: cfg, logger: logger}
}

// Extract returns the document's line items. When the service fails or
// the response cannot be parsed and validated, it falls back to one
// placeholder item per expected category so downstream matching always
// has the expected shape to report against.
func (e *ItemExtractor) Extract(ctx context.Context, text string, summary entity.TechnicalSummary) []entity.LineItem {
	excluded := []string{"RF, coaxial, signal, communication, antenna, or connector assemblies"}
	prompt := llm.BuildItemsPrompt(summary.Scope.MaterialType, excluded, text)

	resp, err := e.gen.Generate(ctx, llm.GenerateRequest{
		Prompt:        prompt,
		MaxTokens:     e.cfg.MaxTokens,
		Deterministic: e.cfg.Deterministic,
	})
	if err != nil || llm.IsErrorEnvelope(resp) {
		e.logger.Warn("extract.items.service_failed", "rfp_id", summary.RFP.ID, "error", err)
		return e.fallback(summary)
	}

	items, perr := parseLineItems(resp)
	if perr != nil {
		e.logger.Warn("extract.items.parse_failed", "rfp_id", summary.RFP.ID, "error", perr)
		return e.fallback(summary)
	}
	if len(items) == 0 {
		e.logger.Warn("extract.items.empty", "rfp_id", summary.RFP.ID)
		return e.fallback(summary)
	}

	e.logger.Info("extract.items.done", "rfp_id", summary.RFP.ID, "count", len(items))
	return items
}

// parseLineItems recovers the response array and validates it against
// the line-items schema before decoding.
func parseLineItems(resp string) ([]entity.LineItem, error) {
	var raw json.RawMessage
	if err := llm.RecoverJSONArray(resp, &raw); err != nil {
		return nil, err
	}
	if err := llm.ValidateJSONAgainstSchema(llm.BuildLineItemsSchema(), raw); err != nil {
		return nil, err
	}
	var items []entity.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (e *ItemExtractor) fallback(summary entity.TechnicalSummary) []entity.LineItem {
	cats := summary.Scope.ExpectedCategories
	if len(cats) == 0 {
		return nil
	}
	e.logger.Info("extract.items.category_fallback", "rfp_id", summary.RFP.ID, "categories", len(cats))
	items := make([]entity.LineItem, 0, len(cats))
	for _, c := range cats {
		items = append(items, entity.LineItem{
			Name:             c,
			RequiredSpecText: PlaceholderSpecText,
		})
	}
	return items
}
