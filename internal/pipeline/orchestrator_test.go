package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentic-rfp/rfp-engine/constants"
	"github.com/agentic-rfp/rfp-engine/internal/common"
	"github.com/agentic-rfp/rfp-engine/internal/document"
	"github.com/agentic-rfp/rfp-engine/internal/entity"
	"github.com/agentic-rfp/rfp-engine/internal/extract"
	"github.com/agentic-rfp/rfp-engine/internal/llm"
	"github.com/agentic-rfp/rfp-engine/internal/match"
	"github.com/agentic-rfp/rfp-engine/internal/priority"
	"github.com/agentic-rfp/rfp-engine/internal/repository"
)

type stubSource struct {
	docs []document.Document
	// fetchErr, when set, fails every Fetch after a successful List.
	fetchErr error
}

func (s *stubSource) List(context.Context) ([]document.Document, error) {
	return s.docs, nil
}

func (s *stubSource) Fetch(_ context.Context, ref string) (string, error) {
	if s.fetchErr != nil {
		return "", s.fetchErr
	}
	for _, d := range s.docs {
		if d.Ref == ref {
			return d.Text, nil
		}
	}
	return "", fmt.Errorf("unknown ref %q", ref)
}

type stubCatalog struct {
	entries []entity.CatalogEntry
}

func (s *stubCatalog) Load(context.Context) ([]entity.CatalogEntry, error) {
	return s.entries, nil
}

// scriptedGen answers extraction prompts for the two fixture documents.
type scriptedGen struct {
	mu    sync.Mutex
	calls int
	// noID makes every rfp_id extraction come back empty-handed.
	noID bool
}

func (g *scriptedGen) Generate(_ context.Context, req llm.GenerateRequest) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	p := req.Prompt
	doc := "ALPHA"
	if strings.Contains(p, "DOC-BETA") {
		doc = "BETA"
	}
	if g.noID && strings.Contains(p, `{"rfp_id"`) {
		return `{"unused": "Not Found"}`, nil
	}

	switch {
	case strings.Contains(p, "JSON ARRAY ONLY"):
		return `[{"item_name": "XLPE Power Cable 11kV",
			"required_technical_specs": "Voltage: 11kV, Conductor: Aluminium, 3 Core, 240 sqmm, Insulation: XLPE, Standard: IS 7098"}]`, nil
	case strings.Contains(p, `{"rfp_id"`):
		return fmt.Sprintf(`{"rfp_id": "RFP-%s"}`, doc), nil
	case strings.Contains(p, `{"submission_deadline"`):
		if doc == "ALPHA" {
			return `{"submission_deadline": "2025-01-05"}`, nil
		}
		return `{"submission_deadline": "2025-03-10"}`, nil
	case strings.Contains(p, `{"buyer"`):
		return `{"buyer": "State Power Corp"}`, nil
	case strings.Contains(p, `{"scope_items"`):
		return `{"scope_items": 1}`, nil
	default:
		return `{"unused": "Not Found"}`, nil
	}
}

// memStore is an in-memory Store that records call order.
type memStore struct {
	mu        sync.Mutex
	cleared   int
	workItems map[string]repository.StoredWorkItem
	summaries map[string]entity.RoutingSummary
	matches   map[string][]entity.MatchResult
}

func newMemStore() *memStore {
	return &memStore{
		workItems: map[string]repository.StoredWorkItem{},
		summaries: map[string]entity.RoutingSummary{},
		matches:   map[string][]entity.MatchResult{},
	}
}

func (m *memStore) SaveWorkItem(_ context.Context, item repository.StoredWorkItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workItems[item.ID] = item
	return nil
}

func (m *memStore) GetWorkItem(_ context.Context, id string) (*repository.StoredWorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.workItems[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return &item, nil
}

func (m *memStore) ListWorkItems(context.Context) ([]repository.StoredWorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]repository.StoredWorkItem, 0, len(m.workItems))
	for _, item := range m.workItems {
		out = append(out, item)
	}
	return out, nil
}

func (m *memStore) SaveRoutingSummary(_ context.Context, id string, s entity.RoutingSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[id] = s
	return nil
}

func (m *memStore) GetRoutingSummary(_ context.Context, id string) (*entity.RoutingSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return &s, nil
}

func (m *memStore) SaveMatchResults(_ context.Context, id string, rs []entity.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[id] = rs
	return nil
}

func (m *memStore) ListMatchResults(_ context.Context, id string) ([]entity.MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matches[id], nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	m.workItems = map[string]repository.StoredWorkItem{}
	m.summaries = map[string]entity.RoutingSummary{}
	m.matches = map[string][]entity.MatchResult{}
	return nil
}

func fixtureOrchestrator(store repository.Store, docs []document.Document, entries []entity.CatalogEntry) *Orchestrator {
	return fixtureOrchestratorWith(store, &stubSource{docs: docs}, &scriptedGen{}, entries)
}

func fixtureOrchestratorWith(store repository.Store, source *stubSource, gen *scriptedGen, entries []entity.CatalogEntry) *Orchestrator {
	return NewOrchestrator(
		source,
		gen,
		&stubCatalog{entries: entries},
		match.NewMatcher(match.NewWeightedStrategy(), nil, nil),
		priority.NewSelector(nil),
		store,
		Config{
			Extraction: extract.CoordinatorConfig{Workers: 2},
			SourceTag:  "Test Portal",
		},
		nil,
	)
}

func fixtureCatalog() []entity.CatalogEntry {
	return []entity.CatalogEntry{
		{
			Code:     "AL240-11KV",
			Category: "XLPE Power Cables",
			Specifications: map[string]string{
				match.AttrVoltage:    "11 kV",
				match.AttrConductor:  "Aluminium",
				match.AttrCoreConfig: "3 Core",
				match.AttrSizeSqmm:   "240 sqmm",
				match.AttrInsulation: "XLPE",
				match.AttrStandards:  "IS 7098",
			},
		},
	}
}

func TestExecuteFullRun(t *testing.T) {
	store := newMemStore()
	docs := []document.Document{
		{Ref: "beta.txt", Text: "DOC-BETA tender for cables"},
		{Ref: "alpha.txt", Text: "DOC-ALPHA tender for cables"},
	}

	orch := fixtureOrchestrator(store, docs, fixtureCatalog())
	state, err := orch.Execute(context.Background(), nil)
	require.NoError(t, err)

	// Both documents extracted; the earlier deadline wins.
	require.Len(t, state.Candidates, 2)
	require.NotNil(t, state.Selected)
	require.Equal(t, "RFP-ALPHA", state.Selected.WorkItem.ID)
	require.Equal(t, "alpha.txt", state.Selected.DocumentRef)
	require.Equal(t, constants.WorkItemMatched, state.Selected.WorkItem.Status)
	require.Equal(t, "Test Portal", state.Selected.WorkItem.SourceTag)

	require.NotNil(t, state.Routing)
	require.Equal(t, "RFP-ALPHA", state.Routing.Technical.RFP.ID)
	require.Equal(t, "Electrical Cables", state.Routing.Technical.Scope.MaterialType)
	require.Equal(t, "INR", state.Routing.Pricing.Rules.Currency)

	require.Len(t, state.ItemOutputs, 1)
	require.Equal(t, constants.MatchMatched, state.ItemOutputs[0].Status)
	require.Equal(t, "AL240-11KV", state.ItemOutputs[0].BestMatchCode)

	// Persistence: full replace, both candidates stored, selected one
	// carries the summary and results.
	require.Equal(t, 1, store.cleared)
	require.Len(t, store.workItems, 2)
	require.Equal(t, constants.WorkItemMatched, store.workItems["RFP-ALPHA"].Status)
	require.Equal(t, constants.WorkItemExtracted, store.workItems["RFP-BETA"].Status)
	require.Contains(t, store.summaries, "RFP-ALPHA")
	require.Len(t, store.matches["RFP-ALPHA"], 1)

	// Non-selected candidates keep the tier assigned during ranking.
	require.NotEmpty(t, store.workItems["RFP-ALPHA"].PriorityTier)
	require.NotEmpty(t, store.workItems["RFP-BETA"].PriorityTier)
}

func TestExecuteMissingSelectedDocumentSkipsMatching(t *testing.T) {
	store := newMemStore()
	source := &stubSource{
		docs: []document.Document{
			{Ref: "alpha.txt", Text: "DOC-ALPHA tender"},
			{Ref: "beta.txt", Text: "DOC-BETA tender"},
		},
		fetchErr: fmt.Errorf("%w: document \"alpha.txt\"", common.ErrMissingDocument),
	}

	orch := fixtureOrchestratorWith(store, source, &scriptedGen{}, fixtureCatalog())
	state, err := orch.Execute(context.Background(), nil)
	require.NoError(t, err)

	// Matching is skipped, not the whole run: extraction output and the
	// routing summary still land in the store.
	require.Empty(t, state.ItemOutputs)
	require.Equal(t, constants.WorkItemSelected, state.Selected.WorkItem.Status)
	require.Equal(t, 1, store.cleared)
	require.Len(t, store.workItems, 2)
	require.Contains(t, store.summaries, "RFP-ALPHA")
	require.Empty(t, store.matches["RFP-ALPHA"])
}

func TestExecuteDegradedExtractionKeepsDocumentsDistinct(t *testing.T) {
	store := newMemStore()
	docs := []document.Document{
		{Ref: "alpha.txt", Text: "DOC-ALPHA tender"},
		{Ref: "beta.txt", Text: "DOC-BETA tender"},
	}

	orch := fixtureOrchestratorWith(store, &stubSource{docs: docs}, &scriptedGen{noID: true}, fixtureCatalog())
	state, err := orch.Execute(context.Background(), nil)
	require.NoError(t, err)

	// Without an extractable ID each candidate falls back to its
	// document ref, so two degraded documents stay two stored rows.
	ids := map[string]bool{}
	for _, c := range state.Candidates {
		ids[c.WorkItem.ID] = true
	}
	require.Equal(t, map[string]bool{"alpha.txt": true, "beta.txt": true}, ids)
	require.Len(t, store.workItems, 2)
}

func TestExecuteManualOverride(t *testing.T) {
	store := newMemStore()
	docs := []document.Document{
		{Ref: "alpha.txt", Text: "DOC-ALPHA tender"},
		{Ref: "beta.txt", Text: "DOC-BETA tender"},
	}

	idx := 1
	state, err := fixtureOrchestrator(store, docs, fixtureCatalog()).Execute(context.Background(), &idx)
	require.NoError(t, err)
	// Ranked order is ALPHA (Jan) then BETA (Mar); override picks BETA.
	require.Equal(t, "RFP-BETA", state.Selected.WorkItem.ID)
}

func TestExecuteEmptyAcquisitionShortCircuits(t *testing.T) {
	store := newMemStore()
	state, err := fixtureOrchestrator(store, nil, fixtureCatalog()).Execute(context.Background(), nil)
	require.NoError(t, err)

	require.Empty(t, state.Candidates)
	require.Nil(t, state.Selected)
	require.Nil(t, state.Routing)
	require.Empty(t, state.ItemOutputs)

	// The run still replaces previous results.
	require.Equal(t, 1, store.cleared)
	require.Empty(t, store.workItems)
}

func TestAdvanceGuardsTransitions(t *testing.T) {
	next, err := advance(StageAcquire, StageExtract)
	require.NoError(t, err)
	require.Equal(t, StageExtract, next)

	next, err = advance(StageAcquire, StageFinalize)
	require.NoError(t, err)
	require.Equal(t, StageFinalize, next)

	_, err = advance(StageAcquire, StageMatch)
	require.Error(t, err)

	_, err = advance(StageMatch, StageExtract)
	require.Error(t, err)
}

func TestBuildRoutingSummaryContents(t *testing.T) {
	c := entity.Candidate{
		WorkItem: entity.WorkItem{
			ID:             "RFP-7",
			Title:          "Supply of HT cables",
			Buyer:          "Metro Rail",
			Deadline:       "2025-02-01",
			EstimatedValue: "Rs. 3 Cr",
			ScopeItemCount: 4,
			PriorityTier:   constants.PriorityHigh,
			SourceTag:      "GeM",
		},
		DocumentRef: "rfp7.txt",
	}

	rs := BuildRoutingSummary(c)
	require.Equal(t, "RFP-7", rs.Technical.RFP.ID)
	require.Equal(t, "GeM", rs.Technical.RFP.Source)
	require.Equal(t, 4, rs.Technical.Scope.ScopeSize)
	require.Equal(t, match.SpecPriority(), rs.Technical.SpecPriority)
	require.Equal(t, 3, rs.Technical.Rules.TopN)
	require.Equal(t, 90.0, rs.Technical.Rules.GreenThreshold)
	require.Equal(t, 75.0, rs.Technical.Rules.WarningThreshold)
	require.Equal(t, "rfp7.txt", rs.Technical.DocumentRef)

	require.Equal(t, "RFP-7", rs.Pricing.RFP.ID)
	require.Contains(t, rs.Pricing.TestingStandards, "IS 7098")
	require.Contains(t, rs.Pricing.TestingStandards, "IEC 60331")
	require.Equal(t, 70, rs.Pricing.Rules.RiskThresholdPercent)
}
