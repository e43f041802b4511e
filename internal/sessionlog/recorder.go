// Package sessionlog persists finished interview sessions: a strict-schema
// JSON log per run for downstream graders, and a SQLite archive for the
// history listing.
package sessionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"techpanel/internal/types"
)

// Recorder accumulates one session and writes it as a JSON run log.
type Recorder struct {
	intake        types.Intake
	turns         []types.TurnRecord
	finalFeedback string
}

// NewRecorder starts recording a session for the given intake.
func NewRecorder(intake types.Intake) *Recorder {
	return &Recorder{intake: intake}
}

// AppendTurn records one sealed turn.
func (r *Recorder) AppendTurn(turn types.TurnRecord) {
	r.turns = append(r.turns, turn)
}

// SetFinalFeedback stores the final evaluation as pretty-printed JSON text.
// The log schema keeps final_feedback a string so graders of any structure
// can consume it.
func (r *Recorder) SetFinalFeedback(fb types.FinalFeedback) error {
	data, err := json.MarshalIndent(fb, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal final feedback: %w", err)
	}
	r.finalFeedback = string(data)
	return nil
}

// Payload builds the run-log document.
func (r *Recorder) Payload() Log {
	turns := make([]TurnEntry, 0, len(r.turns))
	for _, t := range r.turns {
		turns = append(turns, TurnEntry{
			TurnID:              t.TurnID,
			AgentVisibleMessage: t.AgentVisibleMessage,
			UserMessage:         t.UserMessage,
			InternalThoughts:    t.InternalThoughts,
		})
	}
	return Log{
		ParticipantName: r.intake.ParticipantName,
		Turns:           turns,
		FinalFeedback:   r.finalFeedback,
	}
}

// Save validates the document against the log schema and writes it to path.
func (r *Recorder) Save(path string) error {
	data, err := json.MarshalIndent(r.Payload(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session log: %w", err)
	}
	if err := ValidateSchema(data); err != nil {
		return fmt.Errorf("refusing to write invalid session log: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session log: %w", err)
	}
	return nil
}

// RunLogPath builds the conventional per-run log filename.
func RunLogPath(runsDir, label string, now time.Time) string {
	return filepath.Join(runsDir, fmt.Sprintf("interview_log_%s_%s.json", label, now.Format("20060102_150405")))
}
