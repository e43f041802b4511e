package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"techpanel/internal/types"
)

// Context payloads sent to the models. Long free-text fields are truncated
// so one rambling answer cannot crowd the rest of the context out of the
// prompt window.

type compactIntake struct {
	ParticipantName   string            `json:"participant_name"`
	Position          string            `json:"position"`
	GradeTarget       types.GradeTarget `json:"grade_target"`
	ExperienceSummary string            `json:"experience_summary"`
}

type compactTurn struct {
	TurnID              int    `json:"turn_id"`
	AgentVisibleMessage string `json:"agent_visible_message"`
	UserMessage         string `json:"user_message"`
}

func truncateText(s string, limit int) string {
	if limit <= 0 || len([]rune(s)) <= limit {
		return s
	}
	return strings.TrimRight(string([]rune(s)[:limit]), " \t\n") + "..."
}

func intakeContext(intake types.Intake, limit int) compactIntake {
	return compactIntake{
		ParticipantName:   intake.ParticipantName,
		Position:          intake.Position,
		GradeTarget:       intake.GradeTarget,
		ExperienceSummary: truncateText(intake.ExperienceSummary, limit),
	}
}

func turnContext(turns []types.TurnRecord, limit int) []compactTurn {
	out := make([]compactTurn, 0, len(turns))
	for _, t := range turns {
		out = append(out, compactTurn{
			TurnID:              t.TurnID,
			AgentVisibleMessage: truncateText(t.AgentVisibleMessage, limit),
			UserMessage:         truncateText(t.UserMessage, limit),
		})
	}
	return out
}

// marshalContext renders a payload as the human-turn JSON body.
func marshalContext(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal agent context: %w", err)
	}
	return "Context (JSON):\n" + string(data), nil
}
