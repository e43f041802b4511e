package engine

import (
	"fmt"
	"strings"

	"techpanel/internal/types"
)

// Hidden reflection is recorded in the turn log but never shown to the
// candidate. It is rendered from structured fragments in a fixed, parseable
// tagged format: `[Source]: content.` segments joined by single spaces, so
// tooling can extract individual sources without NLP.

// fragment is one hidden-reflection segment attributed to its source.
type fragment struct {
	source  string
	content string
}

// renderThoughts formats fragments into the fixed internal_thoughts text.
func renderThoughts(fragments []fragment) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		content := strings.TrimSuffix(strings.TrimSpace(f.content), ".")
		parts = append(parts, fmt.Sprintf("[%s]: %s.", f.source, content))
	}
	return strings.Join(parts, " ")
}

// observerFragment summarizes the per-turn report.
func observerFragment(report types.ObserverReport) fragment {
	return fragment{
		source: "Observer",
		content: fmt.Sprintf("topic=%s, next_action=%s, %s",
			report.DetectedTopic, report.RecommendedNextAction, report.Flags),
	}
}

// expertFragment records one expert note in drain order.
func expertFragment(eval types.ExpertEvaluation) fragment {
	return fragment{
		source:  fmt.Sprintf("Expert:%s", eval.Role),
		content: eval.Note(),
	}
}

// interviewerFragment records the chosen question strategy.
func interviewerFragment(strategy string) fragment {
	return fragment{
		source:  "Interviewer",
		content: fmt.Sprintf("strategy=%s", strategy),
	}
}

// selectStrategy maps the observer report onto a question strategy. Flags
// take priority over the recommended action, first match wins:
// role_reversal > off_topic > hallucination.
func selectStrategy(report types.ObserverReport) string {
	flags := report.Flags
	if flags.RoleReversal {
		return "answer_candidate_question"
	}
	if flags.OffTopic {
		return "return_to_topic"
	}
	if flags.Hallucination {
		return "handle_hallucination"
	}

	switch report.RecommendedNextAction {
	case types.ActionAskDeeper:
		return "deepen"
	case types.ActionAskEasier:
		return "simplify"
	case types.ActionChangeTopic:
		return "change_topic"
	case types.ActionHandleOfftopic:
		return "return_to_topic"
	case types.ActionHandleHallucination:
		return "handle_hallucination"
	case types.ActionHandleRoleReversal:
		return "answer_candidate_question"
	case types.ActionWrapUp:
		return "wrap_up"
	default:
		return "ask_standard"
	}
}
