package constants

// PriorityTier buckets a work item by urgency of its deadline.
type PriorityTier string

const (
	PriorityCritical PriorityTier = "Critical"
	PriorityHigh     PriorityTier = "High"
	PriorityMedium   PriorityTier = "Medium"
)

// Urgency cutoffs in days until the submission deadline.
const (
	CriticalWithinDays = 3
	HighWithinDays     = 10
)

// TierForDaysRemaining derives a priority tier from the number of days
// left until the deadline. Negative values (past deadline) are Critical.
func TierForDaysRemaining(days int) PriorityTier {
	switch {
	case days <= CriticalWithinDays:
		return PriorityCritical
	case days <= HighWithinDays:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

var allTiers = []PriorityTier{PriorityCritical, PriorityHigh, PriorityMedium}

// TierRank orders tiers for sorting, lower is more urgent. Unknown
// labels rank after Medium.
func TierRank(t PriorityTier) int {
	for i, tier := range allTiers {
		if tier == t {
			return i
		}
	}
	return len(allTiers)
}
