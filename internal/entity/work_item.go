package entity

import (
	"time"

	"github.com/agentic-rfp/rfp-engine/constants"
)

// WorkItem represents one solicitation document and its extracted
// metadata for data transfer between layers.
type WorkItem struct {
	ID             string                   `json:"rfp_id"`
	Title          string                   `json:"title"`
	Buyer          string                   `json:"buyer"`
	Deadline       string                   `json:"submission_deadline"` // free text, may be unparseable
	EstimatedValue string                   `json:"estimated_value"`     // free text, currency-tagged
	ScopeItemCount int                      `json:"scope_items"`
	PriorityTier   constants.PriorityTier   `json:"priority"`
	Status         constants.WorkItemStatus `json:"status"`
	SourceTag      string                   `json:"tender_source"`
	CreatedAt      time.Time                `json:"created_at,omitempty"`
	UpdatedAt      time.Time                `json:"updated_at,omitempty"`
}

// DeadlineDate parses the deadline as an ISO date. The second return
// is false when the deadline is missing or unparseable.
func (w WorkItem) DeadlineDate() (time.Time, bool) {
	t, err := time.Parse("2006-01-02", w.Deadline)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysRemaining counts whole days from now until the deadline.
// Unparseable deadlines report false.
func (w WorkItem) DaysRemaining(now time.Time) (int, bool) {
	d, ok := w.DeadlineDate()
	if !ok {
		return 0, false
	}
	return int(d.Sub(now).Hours() / 24), true
}
