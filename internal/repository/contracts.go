package repository

import (
	"context"

	"github.com/agentic-rfp/rfp-engine/internal/entity"
)

// StoredWorkItem is a work item together with the reference to the
// document it came from, as persisted.
type StoredWorkItem struct {
	entity.WorkItem
	DocumentRef string `json:"document_ref,omitempty"`
}

// Store is the record store for pipeline output. A pipeline run fully
// replaces the stored records: Clear is called before the run's
// results are written.
type Store interface {
	SaveWorkItem(ctx context.Context, item StoredWorkItem) error
	GetWorkItem(ctx context.Context, id string) (*StoredWorkItem, error)
	ListWorkItems(ctx context.Context) ([]StoredWorkItem, error)

	SaveRoutingSummary(ctx context.Context, workItemID string, summary entity.RoutingSummary) error
	GetRoutingSummary(ctx context.Context, workItemID string) (*entity.RoutingSummary, error)

	SaveMatchResults(ctx context.Context, workItemID string, results []entity.MatchResult) error
	ListMatchResults(ctx context.Context, workItemID string) ([]entity.MatchResult, error)

	// Clear removes every stored record across all tables.
	Clear(ctx context.Context) error
}
