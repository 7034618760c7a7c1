package entity

// Candidate pairs a work item with the reference to the document it
// was extracted from, so the two can never drift out of alignment.
type Candidate struct {
	WorkItem    WorkItem `json:"work_item"`
	DocumentRef string   `json:"document_ref"`
}

// PipelineState is the single carrier threaded through the pipeline
// stages. It is created empty at run start, never shared between runs,
// and discarded once results are persisted.
type PipelineState struct {
	Candidates     []Candidate     `json:"candidates"`
	Selected       *Candidate      `json:"selected,omitempty"`
	Routing        *RoutingSummary `json:"routing,omitempty"`
	ItemOutputs    []MatchResult   `json:"item_outputs,omitempty"`
	PricingOutput  map[string]any  `json:"pricing_output,omitempty"`
	ManualOverride *int            `json:"manual_override,omitempty"` // index into the ranked candidate order
}
