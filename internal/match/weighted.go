package match

import (
	"context"

	"github.com/agentic-rfp/rfp-engine/internal/entity"
)

// attrWeights follows the routing summary's spec priority: voltage
// dominates, standards and insulation matter least. Unknown attributes
// get a small default weight.
var attrWeights = map[string]float64{
	AttrVoltage:    30,
	AttrConductor:  20,
	AttrCoreConfig: 15,
	AttrSizeSqmm:   15,
	AttrInsulation: 10,
	AttrStandards:  10,
}

const defaultAttrWeight = 5

// WeightedStrategy compares the item's canonicalized attributes
// against each catalog entry's specification map and scores the
// weighted fraction of the item's requirements the entry satisfies.
type WeightedStrategy struct{}

var _ Strategy = (*WeightedStrategy)(nil)

func NewWeightedStrategy() *WeightedStrategy {
	return &WeightedStrategy{}
}

func (s *WeightedStrategy) Name() string { return "weighted-attribute" }

func (s *WeightedStrategy) Prepare(context.Context, []entity.CatalogEntry) error { return nil }

// Score omits entries with no attribute overlap entirely; an entry
// sharing attributes but disagreeing on every value scores zero.
func (s *WeightedStrategy) Score(_ context.Context, item entity.LineItem, entries []entity.CatalogEntry) ([]entity.MatchCandidate, error) {
	specs := item.CanonicalSpecs
	if len(specs) == 0 {
		specs = CanonicalizeSpecs(item.RequiredSpecText)
	}
	if len(specs) == 0 {
		return nil, nil
	}

	var total float64
	for k := range specs {
		total += weightOf(k)
	}

	var out []entity.MatchCandidate
	for _, e := range entries {
		if len(e.Specifications) == 0 {
			continue
		}
		var overlap bool
		var matched float64
		for k, want := range specs {
			have, ok := e.Specifications[k]
			if !ok {
				continue
			}
			overlap = true
			if NormalizeSpecValue(k, have) == want {
				matched += weightOf(k)
			}
		}
		if !overlap {
			continue
		}
		out = append(out, entity.MatchCandidate{
			Code:        e.Code,
			Score:       round2(100 * matched / total),
			Description: e.Description,
			Category:    e.Category,
		})
	}
	return out, nil
}

func weightOf(attr string) float64 {
	if w, ok := attrWeights[attr]; ok {
		return w
	}
	return defaultAttrWeight
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
