// Package pipeline orchestrates the five-stage run over a document
// set: acquire, extract, select, route, match, finalize.
package pipeline

import (
	"fmt"

	"github.com/agentic-rfp/rfp-engine/internal/common"
)

// Stage is a named pipeline state. The run advances only along the
// declared transitions; an empty acquisition jumps straight to
// finalize.
type Stage string

const (
	StageAcquire  Stage = "acquire"
	StageExtract  Stage = "extract"
	StageSelect   Stage = "select"
	StageRoute    Stage = "route"
	StageMatch    Stage = "match"
	StageFinalize Stage = "finalize"
	StageDone     Stage = "done"
)

var transitions = map[Stage][]Stage{
	StageAcquire:  {StageExtract, StageFinalize},
	StageExtract:  {StageSelect},
	StageSelect:   {StageRoute},
	StageRoute:    {StageMatch},
	StageMatch:    {StageFinalize},
	StageFinalize: {StageDone},
}

func advance(from, to Stage) (Stage, error) {
	for _, next := range transitions[from] {
		if next == to {
			return to, nil
		}
	}
	return from, common.NewAppError("PIPELINE_ERROR",
		fmt.Sprintf("illegal stage transition %s -> %s", from, to),
		common.ErrInternal)
}
