package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentic-rfp/rfp-engine/constants"
	"github.com/agentic-rfp/rfp-engine/internal/common"
	"github.com/agentic-rfp/rfp-engine/internal/entity"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	db, err := Open(context.Background(), common.DatabaseConfig{
		Driver:      "sqlite",
		DSN:         ":memory:",
		DialTimeout: common.Duration(time.Second),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, InitSchema(context.Background(), db))
	return NewStore(db, "sqlite", nil)
}

func sampleItem() StoredWorkItem {
	return StoredWorkItem{
		WorkItem: entity.WorkItem{
			ID:             "RFP-1",
			Title:          "Supply of 11kV XLPE cables",
			Buyer:          "State Power Corp",
			Deadline:       "2025-01-05",
			EstimatedValue: "Rs. 3 Cr",
			ScopeItemCount: 2,
			PriorityTier:   constants.PriorityCritical,
			Status:         constants.WorkItemExtracted,
			SourceTag:      "GeM",
		},
		DocumentRef: "rfp1.txt",
	}
}

func TestWorkItemRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWorkItem(ctx, sampleItem()))

	got, err := store.GetWorkItem(ctx, "RFP-1")
	require.NoError(t, err)
	require.Equal(t, "Supply of 11kV XLPE cables", got.Title)
	require.Equal(t, constants.PriorityCritical, got.PriorityTier)
	require.Equal(t, constants.WorkItemExtracted, got.Status)
	require.Equal(t, "rfp1.txt", got.DocumentRef)
	require.False(t, got.CreatedAt.IsZero())
}

func TestWorkItemUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item := sampleItem()
	require.NoError(t, store.SaveWorkItem(ctx, item))

	item.Status = constants.WorkItemMatched
	item.Title = "Supply of 11kV XLPE cables (rev 2)"
	require.NoError(t, store.SaveWorkItem(ctx, item))

	items, err := store.ListWorkItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, constants.WorkItemMatched, items[0].Status)
	require.Equal(t, "Supply of 11kV XLPE cables (rev 2)", items[0].Title)
}

func TestGetWorkItemNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetWorkItem(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListWorkItemsOrderedByDeadline(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	late := sampleItem()
	late.ID = "RFP-LATE"
	late.Deadline = "2025-03-10"
	soon := sampleItem()
	soon.ID = "RFP-SOON"
	soon.Deadline = "2025-01-05"

	require.NoError(t, store.SaveWorkItem(ctx, late))
	require.NoError(t, store.SaveWorkItem(ctx, soon))

	items, err := store.ListWorkItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "RFP-SOON", items[0].ID)
	require.Equal(t, "RFP-LATE", items[1].ID)
}

func TestRoutingSummaryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	summary := entity.RoutingSummary{
		Technical: entity.TechnicalSummary{
			RFP:          entity.RFPContext{ID: "RFP-1", Title: "Cables"},
			Scope:        entity.ScopeContext{MaterialType: "Electrical Cables", ScopeSize: 2},
			SpecPriority: []string{"voltage", "conductor_material"},
			Rules:        entity.MatchingRules{TopN: 3, GreenThreshold: 90, WarningThreshold: 75},
		},
		Pricing: entity.PricingSummary{
			RFP:              entity.RFPContext{ID: "RFP-1"},
			TestingStandards: []string{"IS 7098"},
			Rules:            entity.PricingRules{Currency: "INR", RiskThresholdPercent: 70},
			Status:           "Ready for pricing",
		},
	}
	require.NoError(t, store.SaveRoutingSummary(ctx, "RFP-1", summary))

	got, err := store.GetRoutingSummary(ctx, "RFP-1")
	require.NoError(t, err)
	require.Equal(t, summary, *got)

	_, err = store.GetRoutingSummary(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestMatchResultsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	results := []entity.MatchResult{
		{
			Item:          entity.LineItem{Name: "XLPE Power Cable 11kV", RequiredSpecText: "11kV, AL, 3C"},
			BestMatchCode: "AL240-11KV",
			Score:         92.5,
			Status:        constants.MatchMatched,
			Alternatives: []entity.MatchCandidate{
				{Code: "AL185-11KV", Score: 85, PricePerUnit: 980},
			},
		},
		{
			Item:         entity.LineItem{Name: "Unknown widget"},
			Status:       constants.MatchNotMatched,
			Alternatives: []entity.MatchCandidate{},
		},
	}
	require.NoError(t, store.SaveMatchResults(ctx, "RFP-1", results))

	got, err := store.ListMatchResults(ctx, "RFP-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byName := map[string]entity.MatchResult{}
	for _, r := range got {
		byName[r.Item.Name] = r
	}
	best := byName["XLPE Power Cable 11kV"]
	require.Equal(t, "AL240-11KV", best.BestMatchCode)
	require.Equal(t, 92.5, best.Score)
	require.Len(t, best.Alternatives, 1)
	require.Equal(t, 980, best.Alternatives[0].PricePerUnit)
	require.Equal(t, constants.MatchNotMatched, byName["Unknown widget"].Status)

	// Saving again replaces, not appends.
	require.NoError(t, store.SaveMatchResults(ctx, "RFP-1", results[:1]))
	got, err = store.ListMatchResults(ctx, "RFP-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestClearRemovesEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWorkItem(ctx, sampleItem()))
	require.NoError(t, store.SaveRoutingSummary(ctx, "RFP-1", entity.RoutingSummary{}))
	require.NoError(t, store.SaveMatchResults(ctx, "RFP-1", []entity.MatchResult{
		{Item: entity.LineItem{Name: "x"}, Alternatives: []entity.MatchCandidate{}},
	}))

	require.NoError(t, store.Clear(ctx))

	items, err := store.ListWorkItems(ctx)
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = store.GetRoutingSummary(ctx, "RFP-1")
	require.ErrorIs(t, err, common.ErrNotFound)

	results, err := store.ListMatchResults(ctx, "RFP-1")
	require.NoError(t, err)
	require.Empty(t, results)
}
