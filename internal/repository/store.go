package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/agentic-rfp/rfp-engine/constants"
	"github.com/agentic-rfp/rfp-engine/internal/common"
	"github.com/agentic-rfp/rfp-engine/internal/entity"
)

type sqlStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	logger  *slog.Logger
	now     func() time.Time
}

var _ Store = (*sqlStore)(nil)

// NewStore wraps an open connection. driver selects the SQL
// placeholder style and must match what Open was called with.
func NewStore(db *sql.DB, driver string, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlStore{
		db:      db,
		builder: builderFor(driver).RunWith(db),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *sqlStore) SaveWorkItem(ctx context.Context, item StoredWorkItem) error {
	now := s.now().UTC().Format(time.RFC3339)
	created := now
	if !item.CreatedAt.IsZero() {
		created = item.CreatedAt.UTC().Format(time.RFC3339)
	}

	_, err := s.builder.
		Insert("work_items").
		Columns("id", "title", "buyer", "deadline", "estimated_value",
			"scope_item_count", "priority", "status", "source_tag",
			"document_ref", "created_at", "updated_at").
		Values(item.ID, item.Title, item.Buyer, item.Deadline, item.EstimatedValue,
			item.ScopeItemCount, string(item.PriorityTier), string(item.Status),
			item.SourceTag, item.DocumentRef, created, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			buyer = EXCLUDED.buyer,
			deadline = EXCLUDED.deadline,
			estimated_value = EXCLUDED.estimated_value,
			scope_item_count = EXCLUDED.scope_item_count,
			priority = EXCLUDED.priority,
			status = EXCLUDED.status,
			source_tag = EXCLUDED.source_tag,
			document_ref = EXCLUDED.document_ref,
			updated_at = EXCLUDED.updated_at`).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("save work item %s: %w", item.ID, err)
	}
	s.logger.Debug("repository.work_item_saved", "rfp_id", item.ID, "status", string(item.Status))
	return nil
}

func (s *sqlStore) GetWorkItem(ctx context.Context, id string) (*StoredWorkItem, error) {
	row := s.builder.
		Select(workItemColumns...).
		From("work_items").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	item, err := scanWorkItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: work item %q", common.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get work item %s: %w", id, err)
	}
	return item, nil
}

func (s *sqlStore) ListWorkItems(ctx context.Context) ([]StoredWorkItem, error) {
	rows, err := s.builder.
		Select(workItemColumns...).
		From("work_items").
		OrderBy("deadline ASC", "id ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	defer rows.Close()

	items := []StoredWorkItem{}
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work items: %w", err)
	}
	return items, nil
}

func (s *sqlStore) SaveRoutingSummary(ctx context.Context, workItemID string, summary entity.RoutingSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode routing summary: %w", err)
	}

	_, err = s.builder.
		Insert("routing_summaries").
		Columns("work_item_id", "payload", "created_at").
		Values(workItemID, string(payload), s.now().UTC().Format(time.RFC3339)).
		Suffix(`ON CONFLICT (work_item_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			created_at = EXCLUDED.created_at`).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("save routing summary for %s: %w", workItemID, err)
	}
	return nil
}

func (s *sqlStore) GetRoutingSummary(ctx context.Context, workItemID string) (*entity.RoutingSummary, error) {
	var payload string
	err := s.builder.
		Select("payload").
		From("routing_summaries").
		Where(sq.Eq{"work_item_id": workItemID}).
		QueryRowContext(ctx).
		Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: routing summary for %q", common.ErrNotFound, workItemID)
		}
		return nil, fmt.Errorf("get routing summary for %s: %w", workItemID, err)
	}

	var summary entity.RoutingSummary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return nil, fmt.Errorf("decode routing summary for %s: %w", workItemID, err)
	}
	return &summary, nil
}

func (s *sqlStore) SaveMatchResults(ctx context.Context, workItemID string, results []entity.MatchResult) error {
	now := s.now().UTC().Format(time.RFC3339)

	// Replace this item's results wholesale.
	if _, err := s.builder.
		Delete("match_results").
		Where(sq.Eq{"work_item_id": workItemID}).
		ExecContext(ctx); err != nil {
		return fmt.Errorf("clear match results for %s: %w", workItemID, err)
	}

	for _, res := range results {
		alts, err := json.Marshal(res.Alternatives)
		if err != nil {
			return fmt.Errorf("encode alternatives for %q: %w", res.Item.Name, err)
		}
		if _, err := s.builder.
			Insert("match_results").
			Columns("id", "work_item_id", "item_name", "spec_text",
				"best_match_code", "score", "status", "alternatives", "created_at").
			Values(uuid.New().String(), workItemID, res.Item.Name, res.Item.RequiredSpecText,
				res.BestMatchCode, res.Score, string(res.Status), string(alts), now).
			ExecContext(ctx); err != nil {
			return fmt.Errorf("save match result for %q: %w", res.Item.Name, err)
		}
	}
	s.logger.Debug("repository.match_results_saved", "rfp_id", workItemID, "results", len(results))
	return nil
}

func (s *sqlStore) ListMatchResults(ctx context.Context, workItemID string) ([]entity.MatchResult, error) {
	rows, err := s.builder.
		Select("item_name", "spec_text", "best_match_code", "score", "status", "alternatives").
		From("match_results").
		Where(sq.Eq{"work_item_id": workItemID}).
		OrderBy("item_name ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list match results for %s: %w", workItemID, err)
	}
	defer rows.Close()

	results := []entity.MatchResult{}
	for rows.Next() {
		var (
			res    entity.MatchResult
			status string
			alts   string
		)
		if err := rows.Scan(&res.Item.Name, &res.Item.RequiredSpecText,
			&res.BestMatchCode, &res.Score, &status, &alts); err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		res.Status = constants.MatchStatus(status)
		if err := json.Unmarshal([]byte(alts), &res.Alternatives); err != nil {
			return nil, fmt.Errorf("decode alternatives: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match results: %w", err)
	}
	return results, nil
}

func (s *sqlStore) Clear(ctx context.Context) error {
	for _, table := range []string{"match_results", "routing_summaries", "work_items"} {
		if _, err := s.builder.Delete(table).ExecContext(ctx); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	s.logger.Info("repository.cleared")
	return nil
}

var workItemColumns = []string{
	"id", "title", "buyer", "deadline", "estimated_value",
	"scope_item_count", "priority", "status", "source_tag",
	"document_ref", "created_at", "updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkItem(row rowScanner) (*StoredWorkItem, error) {
	var (
		item               StoredWorkItem
		priority, status   string
		createdAt, updated string
	)
	if err := row.Scan(&item.ID, &item.Title, &item.Buyer, &item.Deadline,
		&item.EstimatedValue, &item.ScopeItemCount, &priority, &status,
		&item.SourceTag, &item.DocumentRef, &createdAt, &updated); err != nil {
		return nil, err
	}
	item.PriorityTier = constants.PriorityTier(priority)
	item.Status = constants.WorkItemStatus(status)
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		item.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		item.UpdatedAt = t
	}
	return &item, nil
}
