package pipeline

import (
	"github.com/agentic-rfp/rfp-engine/constants"
	"github.com/agentic-rfp/rfp-engine/internal/entity"
	"github.com/agentic-rfp/rfp-engine/internal/match"
)

// Domain constants for the routing summaries. The engine works
// solicitations for one material vertical.
const (
	materialType = "Electrical Cables"

	pricingStatusReady = "Ready for pricing"
	pricingCurrency    = "INR"
)

var expectedCategories = []string{
	"XLPE Power Cables",
	"Control Cables",
	"Instrumentation Cables",
	"HT Cables",
	"Fire Survival Cables",
	"Flexible Cables",
}

var testingStandards = []string{
	"IS 7098",
	"IEC 60502",
	"IEC 60331",
	"IEC 61034",
}

// BuildRoutingSummary forks the selected candidate into the sibling
// technical and pricing summaries handed to the downstream stages.
func BuildRoutingSummary(c entity.Candidate) entity.RoutingSummary {
	rfp := entity.RFPContext{
		ID:             c.WorkItem.ID,
		Title:          c.WorkItem.Title,
		Buyer:          c.WorkItem.Buyer,
		Source:         c.WorkItem.SourceTag,
		Deadline:       c.WorkItem.Deadline,
		Priority:       c.WorkItem.PriorityTier,
		EstimatedValue: c.WorkItem.EstimatedValue,
	}

	return entity.RoutingSummary{
		Technical: entity.TechnicalSummary{
			RFP: rfp,
			Scope: entity.ScopeContext{
				MaterialType:       materialType,
				ExpectedCategories: expectedCategories,
				ScopeSize:          c.WorkItem.ScopeItemCount,
			},
			SpecPriority: match.SpecPriority(),
			Rules: entity.MatchingRules{
				TopN:              constants.MaxAlternatives,
				MinMatchThreshold: 70,
				GreenThreshold:    constants.MatchedThreshold,
				WarningThreshold:  constants.WarningThreshold,
			},
			DocumentRef: c.DocumentRef,
		},
		Pricing: entity.PricingSummary{
			RFP:              rfp,
			MaterialType:     materialType,
			Categories:       expectedCategories,
			TestingStandards: testingStandards,
			Rules: entity.PricingRules{
				Currency:             pricingCurrency,
				MaterialPriceSource:  "product_catalog",
				TestingPriceSource:   "test_data",
				RiskThresholdPercent: 70,
			},
			Status: pricingStatusReady,
		},
	}
}
