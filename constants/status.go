package constants

// WorkItemStatus is the canonical status for a work item as it moves
// through the pipeline.
type WorkItemStatus string

// Stable values (store these exact strings in the DB).
const (
	WorkItemExtracted WorkItemStatus = "Extracted" // fields pulled from the document
	WorkItemSelected  WorkItemStatus = "Selected"  // chosen by the priority selector
	WorkItemMatched   WorkItemStatus = "Matched"   // catalog matching completed
)

// RunStatus is the observable lifecycle of one pipeline run.
type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Terminal reports whether a run status cannot change anymore.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}

// MatchStatus classifies the quality of an item's best catalog match.
type MatchStatus string

const (
	MatchMatched     MatchStatus = "Matched"       // best score >= 90
	MatchWarning     MatchStatus = "Warning"       // best score >= 75, < 90
	MatchNotMatched  MatchStatus = "Not Matched"   // best score < 75, or filter left nothing
	MatchOutOfDomain MatchStatus = "Out of Domain" // item vocabulary foreign to the whole catalog
)
