package engine

import (
	"strings"

	"techpanel/internal/types"
)

// NextStep is the router's verdict for the current point in the turn cycle.
type NextStep string

const (
	// StepFinalize ends the session: synthesize the final evaluation.
	StepFinalize NextStep = "FINALIZE"
	// StepDispatchExperts drains the pending expert role queue, then the
	// router is consulted again.
	StepDispatchExperts NextStep = "DISPATCH_EXPERTS"
	// StepAdjustDifficulty proceeds down the normal tail of the turn:
	// difficulty adjustment followed by question generation.
	StepAdjustDifficulty NextStep = "ADJUST_DIFFICULTY"
)

// Route selects the next node. It is a pure function of the state snapshot,
// the report, and the decision: calling it twice without intervening
// mutation yields the same step. Rules apply in order:
//
//  1. stop requested, or plan exhausted with a wrap-up/advance signal -> FINALIZE
//  2. undrained expert roles pending -> DISPATCH_EXPERTS
//  3. otherwise -> ADJUST_DIFFICULTY (then question generation)
func Route(s *State, report types.ObserverReport, decision types.ObserverDecision) NextStep {
	if shouldFinalize(s, report) {
		return StepFinalize
	}
	if len(decision.ExpertRoles) > 0 && len(s.PendingExpertRoles) > 0 {
		return StepDispatchExperts
	}
	return StepAdjustDifficulty
}

// shouldFinalize is the termination policy, evaluated once per turn.
func shouldFinalize(s *State, report types.ObserverReport) bool {
	if s.StopRequested {
		return true
	}
	if !s.PlanExhausted() {
		return false
	}
	switch report.RecommendedNextAction {
	case types.ActionWrapUp, types.ActionChangeTopic:
		return true
	}
	return false
}

// stopPhrases are the CLI-level tokens meaning "end the interview now".
var stopPhrases = map[string]struct{}{
	"stop":          {},
	"стоп":          {},
	"стоп интервью": {},
}

// IsStopCommand reports whether a candidate message is a stop token.
// Matching is case-insensitive on the trimmed message.
func IsStopCommand(message string) bool {
	_, ok := stopPhrases[strings.ToLower(strings.TrimSpace(message))]
	return ok
}
