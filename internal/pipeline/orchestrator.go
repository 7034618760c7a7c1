package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/agentic-rfp/rfp-engine/constants"
	"github.com/agentic-rfp/rfp-engine/internal/catalog"
	"github.com/agentic-rfp/rfp-engine/internal/common"
	"github.com/agentic-rfp/rfp-engine/internal/document"
	"github.com/agentic-rfp/rfp-engine/internal/entity"
	"github.com/agentic-rfp/rfp-engine/internal/extract"
	"github.com/agentic-rfp/rfp-engine/internal/llm"
	"github.com/agentic-rfp/rfp-engine/internal/match"
	"github.com/agentic-rfp/rfp-engine/internal/priority"
	"github.com/agentic-rfp/rfp-engine/internal/repository"
)

// Config tunes one orchestrator instance.
type Config struct {
	Extraction    extract.CoordinatorConfig
	ItemMaxTokens int
	Deterministic bool
	SourceTag     string
	// FilterPages pre-filters the selected document's text by domain
	// keywords before item extraction.
	FilterPages bool
}

// Orchestrator executes one full pipeline run. Stage components that
// talk to the generation service are rebuilt per run around a fresh
// prompt cache, so cached error payloads never leak across runs.
type Orchestrator struct {
	source   document.Source
	gen      llm.Generator
	catalog  catalog.Source
	matcher  *match.Matcher
	selector *priority.Selector
	store    repository.Store
	cfg      Config
	logger   *slog.Logger
}

func NewOrchestrator(
	source document.Source,
	gen llm.Generator,
	cat catalog.Source,
	matcher *match.Matcher,
	selector *priority.Selector,
	store repository.Store,
	cfg Config,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		source:   source,
		gen:      gen,
		catalog:  cat,
		matcher:  matcher,
		selector: selector,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// Execute runs the pipeline to completion and persists its output,
// replacing whatever a previous run stored. override, when non-nil,
// picks that index of the deadline-ranked candidates instead of the
// most urgent one.
func (o *Orchestrator) Execute(ctx context.Context, override *int) (*entity.PipelineState, error) {
	start := time.Now()
	state := &entity.PipelineState{ManualOverride: override}
	stage := StageAcquire

	docs, err := o.source.List(ctx)
	if err != nil {
		return nil, err
	}
	o.logger.Info("pipeline.acquire.done", "documents", len(docs))

	if len(docs) == 0 {
		if stage, err = advance(stage, StageFinalize); err != nil {
			return nil, err
		}
		if err := o.finalize(ctx, state); err != nil {
			return nil, err
		}
		o.logger.Info("pipeline.done", "stage", string(stage), "elapsed_ms", time.Since(start).Milliseconds())
		return state, nil
	}

	if stage, err = advance(stage, StageExtract); err != nil {
		return nil, err
	}
	cache := llm.NewMemoryCache()
	gen := llm.NewCachedGenerator(o.gen, cache, o.logger)
	coordinator := extract.NewCoordinator(gen, o.cfg.Extraction, o.logger)

	for _, doc := range docs {
		fields := coordinator.ExtractFields(ctx, doc.Text, extract.DefaultSchema())
		state.Candidates = append(state.Candidates, entity.Candidate{
			WorkItem:    workItemFromFields(fields, o.cfg.SourceTag, doc.Ref),
			DocumentRef: doc.Ref,
		})
	}
	o.logger.Info("pipeline.extract.done",
		"candidates", len(state.Candidates),
		"prompt_cache_entries", cache.Len())

	if stage, err = advance(stage, StageSelect); err != nil {
		return nil, err
	}
	state.Candidates, state.Selected = o.selector.Select(state.Candidates, state.ManualOverride)

	if stage, err = advance(stage, StageRoute); err != nil {
		return nil, err
	}
	routing := BuildRoutingSummary(*state.Selected)
	state.Routing = &routing

	if stage, err = advance(stage, StageMatch); err != nil {
		return nil, err
	}
	if err := o.matchStage(ctx, gen, state); err != nil {
		return nil, err
	}

	if stage, err = advance(stage, StageFinalize); err != nil {
		return nil, err
	}
	if err := o.finalize(ctx, state); err != nil {
		return nil, err
	}
	if stage, err = advance(stage, StageDone); err != nil {
		return nil, err
	}

	o.logger.Info("pipeline.done",
		"stage", string(stage),
		"rfp_id", state.Selected.WorkItem.ID,
		"items_matched", len(state.ItemOutputs),
		"elapsed_ms", time.Since(start).Milliseconds())
	return state, nil
}

func (o *Orchestrator) matchStage(ctx context.Context, gen llm.Generator, state *entity.PipelineState) error {
	text, err := o.source.Fetch(ctx, state.Selected.DocumentRef)
	if err != nil {
		// A document that vanished between acquisition and matching
		// skips this stage; the extracted candidates still persist.
		if errors.Is(err, common.ErrMissingDocument) {
			o.logger.Warn("pipeline.match.document_missing",
				"rfp_id", state.Selected.WorkItem.ID,
				"document_ref", state.Selected.DocumentRef)
			state.ItemOutputs = []entity.MatchResult{}
			return nil
		}
		return err
	}
	if o.cfg.FilterPages {
		text = extract.FilterRelevantText(text)
	}

	itemExtractor := extract.NewItemExtractor(gen, extract.ItemExtractorConfig{
		MaxTokens:     o.cfg.ItemMaxTokens,
		Deterministic: o.cfg.Deterministic,
	}, o.logger)
	items := itemExtractor.Extract(ctx, text, state.Routing.Technical)

	entries, err := o.catalog.Load(ctx)
	if err != nil {
		return err
	}
	results, err := o.matcher.Match(ctx, items, entries)
	if err != nil {
		return err
	}
	state.ItemOutputs = results
	state.Selected.WorkItem.Status = constants.WorkItemMatched
	state.PricingOutput = map[string]any{
		"status":   "not_implemented",
		"currency": pricingCurrency,
	}
	return nil
}

// finalize replaces the store's contents with this run's output. Every
// candidate is persisted; the selected one additionally carries its
// routing summary and match results.
func (o *Orchestrator) finalize(ctx context.Context, state *entity.PipelineState) error {
	if err := o.store.Clear(ctx); err != nil {
		return err
	}
	for _, c := range state.Candidates {
		item := c
		if state.Selected != nil && c.WorkItem.ID == state.Selected.WorkItem.ID {
			item = *state.Selected
		}
		if err := o.store.SaveWorkItem(ctx, repository.StoredWorkItem{
			WorkItem:    item.WorkItem,
			DocumentRef: item.DocumentRef,
		}); err != nil {
			return err
		}
	}
	if state.Selected != nil && state.Routing != nil {
		if err := o.store.SaveRoutingSummary(ctx, state.Selected.WorkItem.ID, *state.Routing); err != nil {
			return err
		}
		if err := o.store.SaveMatchResults(ctx, state.Selected.WorkItem.ID, state.ItemOutputs); err != nil {
			return err
		}
	}
	return nil
}

func workItemFromFields(fields extract.FieldMap, sourceTag, docRef string) entity.WorkItem {
	scopeItems := 0
	if n, err := strconv.Atoi(fields.Get(extract.FieldScopeItems)); err == nil {
		scopeItems = n
	}
	id := fields.Get(extract.FieldID)
	if id == extract.NotFound || id == "" {
		// The document ref keeps degraded extractions distinct; a
		// shared sentinel ID would collapse them into one stored row.
		id = docRef
	}
	return entity.WorkItem{
		ID:             id,
		Title:          fields.Get(extract.FieldTitle),
		Buyer:          fields.Get(extract.FieldBuyer),
		Deadline:       fields.Get(extract.FieldDeadline),
		EstimatedValue: fields.Get(extract.FieldEstimatedValue),
		ScopeItemCount: scopeItems,
		Status:         constants.WorkItemExtracted,
		SourceTag:      sourceTag,
	}
}
