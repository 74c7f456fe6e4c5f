// Package funnel defines the recruiting funnel stage model for candidate
// applications.
//
// Stage graph:
//
//	SOURCING ──► SHORTLIST ──► TERNA ──► INTERVIEW ──► OFFER ──► HIRED
//	    │            │           │            │          │
//	    └────────────┴───────────┴────────────┴──────────┴──► REJECTED
//
// HIRED and REJECTED are terminal. Forward moves may skip stages but never
// go backwards; REJECTED is reachable from every non-terminal stage.
package funnel

import "fmt"

// Stage values mirror the pipeline_stage enum in PostgreSQL.
type Stage string

const (
	StageSourcing  Stage = "sourcing"
	StageShortlist Stage = "shortlist"
	StageTerna     Stage = "terna"
	StageInterview Stage = "interview"
	StageOffer     Stage = "offer"
	StageHired     Stage = "hired"
	StageRejected  Stage = "rejected"
)

// stageOrder positions each non-rejected stage in the funnel. REJECTED has
// no order: it sits outside the funnel and is rendered separately.
var stageOrder = map[Stage]int{
	StageSourcing:  0,
	StageShortlist: 1,
	StageTerna:     2,
	StageInterview: 3,
	StageOffer:     4,
	StageHired:     5,
}

// ParseStage converts a raw string to a Stage, returning an error for
// unknown values.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	switch st {
	case StageSourcing, StageShortlist, StageTerna, StageInterview,
		StageOffer, StageHired, StageRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown pipeline stage %q", s)
}

// OrderOf returns the funnel position of a stage. Passing an unknown or
// rejected stage is a programming error and panics: callers hold values from
// the closed Stage enum, never raw input.
func OrderOf(s Stage) int {
	order, ok := stageOrder[s]
	if !ok {
		panic(fmt.Sprintf("funnel: stage %q has no funnel order", s))
	}
	return order
}

// IsTerminal returns true for stages with no outgoing transitions.
func IsTerminal(s Stage) bool {
	return s == StageHired || s == StageRejected
}

// StagesInFunnelOrder returns the funnel stages in pipeline order.
// REJECTED is excluded; timelines render it as a separate lane.
func StagesInFunnelOrder() []Stage {
	return []Stage{
		StageSourcing, StageShortlist, StageTerna,
		StageInterview, StageOffer, StageHired,
	}
}

// IsCompleted returns true when stage sits strictly before relativeTo in the
// funnel, i.e. a timeline rendering relativeTo shows stage as done.
func IsCompleted(stage, relativeTo Stage) bool {
	return OrderOf(stage) < OrderOf(relativeTo)
}

// IsMoveAllowed returns true when an application may move from → to.
// Moves must strictly advance the funnel order; REJECTED is allowed from any
// non-terminal stage. Terminal stages have no outgoing moves.
func IsMoveAllowed(from, to Stage) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StageRejected {
		return true
	}
	return OrderOf(to) > OrderOf(from)
}
