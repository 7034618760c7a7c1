package entity

import "github.com/agentic-rfp/rfp-engine/constants"

// RFPContext is the slice of work-item metadata both downstream
// summaries carry.
type RFPContext struct {
	ID             string                 `json:"rfp_id"`
	Title          string                 `json:"title"`
	Buyer          string                 `json:"buyer"`
	Source         string                 `json:"source,omitempty"`
	Deadline       string                 `json:"deadline,omitempty"`
	Priority       constants.PriorityTier `json:"priority"`
	EstimatedValue string                 `json:"estimated_value,omitempty"`
}

// ScopeContext declares what kind of material the matcher should
// expect and which categories a degraded extraction falls back to.
type ScopeContext struct {
	MaterialType       string   `json:"material_type"`
	ExpectedCategories []string `json:"expected_item_categories"`
	ScopeSize          int      `json:"scope_size"`
}

// MatchingRules carries the thresholds the technical stage applies.
type MatchingRules struct {
	TopN              int     `json:"top_n"`
	MinMatchThreshold float64 `json:"min_match_threshold"`
	GreenThreshold    float64 `json:"green_threshold"`
	WarningThreshold  float64 `json:"warning_threshold"`
}

// TechnicalSummary is the routing context handed to the item matcher.
type TechnicalSummary struct {
	RFP          RFPContext    `json:"rfp_context"`
	Scope        ScopeContext  `json:"scope_context"`
	SpecPriority []string      `json:"spec_priority"`
	Rules        MatchingRules `json:"sku_matching_rules"`
	DocumentRef  string        `json:"document_ref,omitempty"`
}

// PricingRules carries the (currently stubbed) pricing parameters.
type PricingRules struct {
	Currency             string `json:"currency"`
	MaterialPriceSource  string `json:"material_price_source"`
	TestingPriceSource   string `json:"testing_price_source"`
	RiskThresholdPercent int    `json:"risk_threshold_percent"`
}

// PricingSummary is the routing context handed to the pricing stage.
type PricingSummary struct {
	RFP              RFPContext   `json:"rfp_context"`
	MaterialType     string       `json:"material_type"`
	Categories       []string     `json:"expected_categories"`
	TestingStandards []string     `json:"testing_standards"`
	Rules            PricingRules `json:"pricing_rules"`
	Status           string       `json:"status"`
}

// RoutingSummary is the pair of sibling summaries the route stage
// forks for the downstream matching and pricing stages.
type RoutingSummary struct {
	Technical TechnicalSummary `json:"technical_summary"`
	Pricing   PricingSummary   `json:"pricing_summary"`
}
