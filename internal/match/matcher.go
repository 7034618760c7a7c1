package match

import (
	"context"
	"log/slog"
	"sort"

	"github.com/agentic-rfp/rfp-engine/constants"
	"github.com/agentic-rfp/rfp-engine/internal/entity"
)

// Matcher runs the full per-item pipeline: domain filter, strategy
// scoring, ranking, alternative selection and status classification.
type Matcher struct {
	weighted  *WeightedStrategy
	embedding *EmbeddingStrategy
	logger    *slog.Logger
}

func NewMatcher(weighted *WeightedStrategy, embedding *EmbeddingStrategy, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	if weighted == nil {
		weighted = NewWeightedStrategy()
	}
	return &Matcher{weighted: weighted, embedding: embedding, logger: logger}
}

// Match scores every line item against the catalog. An empty catalog
// yields no results at all; an item whose domain filter or strategy
// removes every candidate still yields a Not Matched result so the
// item stays visible downstream.
func (m *Matcher) Match(ctx context.Context, items []entity.LineItem, catalog []entity.CatalogEntry) ([]entity.MatchResult, error) {
	if len(catalog) == 0 {
		m.logger.Warn("match.catalog_empty", "items", len(items))
		return []entity.MatchResult{}, nil
	}

	strategy := StrategyFor(catalog, m.weighted, m.embedding)
	if err := strategy.Prepare(ctx, catalog); err != nil {
		return nil, err
	}
	m.logger.Info("match.start",
		"strategy", strategy.Name(),
		"items", len(items),
		"catalog_entries", len(catalog))

	results := make([]entity.MatchResult, 0, len(items))
	for _, item := range items {
		res, err := m.matchOne(ctx, strategy, item, catalog)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (m *Matcher) matchOne(ctx context.Context, strategy Strategy, item entity.LineItem, catalog []entity.CatalogEntry) (entity.MatchResult, error) {
	domain := DetectDomain(item.SearchText())

	relevant := catalog
	if domain != DomainNeutral {
		relevant = relevant[:0:0]
		for _, e := range catalog {
			if CategoryRelevant(domain, e.Category) {
				relevant = append(relevant, e)
			}
		}
		if len(relevant) == 0 {
			m.logger.Info("match.item.out_of_domain",
				"item", item.Name,
				"domain", domain.String())
			return entity.MatchResult{
				Item:         item,
				Status:       constants.MatchOutOfDomain,
				Alternatives: []entity.MatchCandidate{},
			}, nil
		}
	}

	candidates, err := strategy.Score(ctx, item, relevant)
	if err != nil {
		return entity.MatchResult{}, err
	}
	if len(candidates) == 0 {
		m.logger.Info("match.item.no_candidates", "item", item.Name)
		return entity.MatchResult{
			Item:         item,
			Status:       constants.MatchNotMatched,
			Alternatives: []entity.MatchCandidate{},
		}, nil
	}

	// Stable so equal scores keep the strategy's catalog order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	best := candidates[0]
	best.PricePerUnit = PriceFor(best.Code)

	alternatives := make([]entity.MatchCandidate, 0, constants.MaxAlternatives)
	for _, c := range candidates[1:] {
		if len(alternatives) == constants.MaxAlternatives {
			break
		}
		c.PricePerUnit = PriceFor(c.Code)
		alternatives = append(alternatives, c)
	}

	status := constants.ClassifyScore(best.Score)
	m.logger.Info("match.item.scored",
		"item", item.Name,
		"best", best.Code,
		"score", best.Score,
		"status", string(status),
		"alternatives", len(alternatives))

	return entity.MatchResult{
		Item:          item,
		BestMatchCode: best.Code,
		Score:         best.Score,
		Status:        status,
		Alternatives:  alternatives,
	}, nil
}
