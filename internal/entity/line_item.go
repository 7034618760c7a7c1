package entity

import (
	"strings"

	"github.com/agentic-rfp/rfp-engine/constants"
)

// LineItem is one requested material item extracted from a document:
// a name plus the free-text specification the buyer asked for.
// CanonicalSpecs is derived from RequiredSpecText by the matcher.
type LineItem struct {
	Name             string            `json:"item_name"`
	RequiredSpecText string            `json:"required_technical_specs"`
	CanonicalSpecs   map[string]string `json:"canonical_specs,omitempty"`
}

// SearchText is the combined text used for domain filtering and
// embedding lookups.
func (li LineItem) SearchText() string {
	return strings.TrimSpace(li.Name + " " + li.RequiredSpecText)
}

// MatchCandidate is one scored catalog entry for a line item.
type MatchCandidate struct {
	Code         string  `json:"sku_code"`
	Score        float64 `json:"spec_match_percent"`
	PricePerUnit int     `json:"price_per_unit"`
	Description  string  `json:"sku_description,omitempty"`
	Category     string  `json:"sku_category,omitempty"`
}

// MatchResult is the scored recommendation for one line item.
// Alternatives holds up to three runner-up entries in descending
// score order and never includes the best match itself.
type MatchResult struct {
	Item          LineItem              `json:"item"`
	BestMatchCode string                `json:"best_match_sku"`
	Score         float64               `json:"spec_match_percent"`
	Status        constants.MatchStatus `json:"status"`
	Alternatives  []MatchCandidate      `json:"alternative_skus"`
}
