// Package priority ranks extracted candidates by submission deadline
// and collapses the run to the single item that proceeds downstream.
package priority

import (
	"log/slog"
	"sort"
	"time"

	"github.com/agentic-rfp/rfp-engine/constants"
	"github.com/agentic-rfp/rfp-engine/internal/entity"
)

// Selector orders candidates by urgency and picks one. now is
// injectable for deterministic tier assignment in tests.
type Selector struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewSelector(logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{logger: logger, now: time.Now}
}

// WithClock overrides the time source.
func (s *Selector) WithClock(now func() time.Time) *Selector {
	s.now = now
	return s
}

// Rank returns the candidates ordered by deadline ascending. Items
// with unparseable deadlines sort after every dated item, keeping
// their relative order. Each ranked item gets its urgency tier set.
func (s *Selector) Rank(candidates []entity.Candidate) []entity.Candidate {
	ranked := make([]entity.Candidate, len(candidates))
	copy(ranked, candidates)

	now := s.now()
	sort.SliceStable(ranked, func(i, j int) bool {
		di, iok := ranked[i].WorkItem.DeadlineDate()
		dj, jok := ranked[j].WorkItem.DeadlineDate()
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		return di.Before(dj)
	})

	for i := range ranked {
		days, ok := ranked[i].WorkItem.DaysRemaining(now)
		if !ok {
			ranked[i].WorkItem.PriorityTier = constants.PriorityMedium
			continue
		}
		ranked[i].WorkItem.PriorityTier = constants.TierForDaysRemaining(days)
	}
	return ranked
}

// Select ranks the candidates and picks the most urgent, or the one at
// the override index into the ranked order when the override is in
// bounds. Out-of-bounds overrides are ignored with a warning rather
// than failing the run. The ranked slice is returned alongside the
// pick so callers keep every candidate's assigned tier; the selection
// is nil when there are no candidates.
func (s *Selector) Select(candidates []entity.Candidate, override *int) ([]entity.Candidate, *entity.Candidate) {
	if len(candidates) == 0 {
		return nil, nil
	}

	ranked := s.Rank(candidates)
	idx := 0
	if override != nil {
		if *override >= 0 && *override < len(ranked) {
			idx = *override
			s.logger.Info("priority.override_applied", "index", idx)
		} else {
			s.logger.Warn("priority.override_out_of_bounds",
				"index", *override,
				"candidates", len(ranked))
		}
	}

	chosen := ranked[idx]
	chosen.WorkItem.Status = constants.WorkItemSelected
	s.logger.Info("priority.selected",
		"rfp_id", chosen.WorkItem.ID,
		"deadline", chosen.WorkItem.Deadline,
		"tier", string(chosen.WorkItem.PriorityTier),
		"candidates", len(ranked))
	return ranked, &chosen
}
