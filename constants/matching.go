package constants

// Match classification thresholds on the 0-100 score scale. A best
// score of exactly 90 is Matched and exactly 75 is Warning.
const (
	MatchedThreshold = 90.0
	WarningThreshold = 75.0
)

// MaxAlternatives bounds how many runner-up catalog entries a match
// result carries besides the best match.
const MaxAlternatives = 3

// ClassifyScore maps a best-match score to its status bucket.
func ClassifyScore(score float64) MatchStatus {
	switch {
	case score >= MatchedThreshold:
		return MatchMatched
	case score >= WarningThreshold:
		return MatchWarning
	default:
		return MatchNotMatched
	}
}
