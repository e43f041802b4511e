// Package engine implements the turn orchestration core: the per-turn state
// machine that decides, after each candidate answer, whether to probe deeper,
// dispatch expert reviewers, adjust difficulty, advance the topic plan, or
// terminate and synthesize the final evaluation.
package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"techpanel/internal/difficulty"
	"techpanel/internal/types"
)

// State is the single-owner session record threaded through every turn.
// Only the Engine mutates it; collaborators receive copies or views and
// return deltas the engine applies.
type State struct {
	SessionID string

	// Immutable after session start.
	Intake        types.Intake
	PlannedTopics []string // exactly types.PlannedTopicCount entries

	// Monotonically non-decreasing, bounded [0, len(PlannedTopics)].
	CurrentTopicIndex int

	Difficulty difficulty.Level

	// Append-only; TurnLog[i].TurnID == i+1 always holds.
	TurnLog []types.TurnRecord

	// Transient per-turn work queue. Empty before and after every complete
	// turn; populated from the observer decision and cleared by the drain.
	PendingExpertRoles []types.ExpertRole

	// Monotonic true-once, set by the stop command.
	StopRequested bool

	// Prompt-context trails.
	AskedQuestions []string
	TopicsCovered  []string
	LastQuestion   string
	LastAnswer     string
}

// NewState validates the topic plan and builds the initial session state.
// A plan with the wrong topic count is fatal to session start.
func NewState(intake types.Intake, plannedTopics []string, initial difficulty.Level) (*State, error) {
	if len(plannedTopics) != types.PlannedTopicCount {
		return nil, fmt.Errorf("planner produced %d topics, need exactly %d", len(plannedTopics), types.PlannedTopicCount)
	}
	for i, topic := range plannedTopics {
		if strings.TrimSpace(topic) == "" {
			return nil, fmt.Errorf("planner produced empty topic at position %d", i)
		}
	}
	topics := make([]string, len(plannedTopics))
	copy(topics, plannedTopics)

	return &State{
		SessionID:     uuid.NewString(),
		Intake:        intake,
		PlannedTopics: topics,
		Difficulty:    difficulty.Clamp(initial),
	}, nil
}

// CurrentTopic returns the plan topic at the current index, or "" when the
// plan is exhausted.
func (s *State) CurrentTopic() string {
	if s.CurrentTopicIndex < 0 || s.CurrentTopicIndex >= len(s.PlannedTopics) {
		return ""
	}
	return s.PlannedTopics[s.CurrentTopicIndex]
}

// PlanExhausted reports whether the topic index has reached the end of the plan.
func (s *State) PlanExhausted() bool {
	return s.CurrentTopicIndex >= len(s.PlannedTopics)
}

// AdvanceTopic moves to the next planned topic. The index never exceeds the
// plan length and never moves backwards.
func (s *State) AdvanceTopic() {
	if s.CurrentTopicIndex < len(s.PlannedTopics) {
		s.CurrentTopicIndex++
	}
}

// RequestStop raises the stop flag. It takes effect at the top of the next
// turn cycle, never mid-turn.
func (s *State) RequestStop() {
	s.StopRequested = true
}

// NextTurnID is the id the next sealed turn will carry.
func (s *State) NextTurnID() int {
	return len(s.TurnLog) + 1
}

// appendTurn seals one completed turn. Exactly one record per cycle through
// AWAIT_INPUT; dispatch sub-steps never append.
func (s *State) appendTurn(rec types.TurnRecord) error {
	if rec.TurnID != len(s.TurnLog)+1 {
		return fmt.Errorf("turn id %d out of sequence, want %d", rec.TurnID, len(s.TurnLog)+1)
	}
	s.TurnLog = append(s.TurnLog, rec)
	return nil
}

// RecentTurns returns up to window trailing turns for prompt context.
func (s *State) RecentTurns(window int) []types.TurnRecord {
	if window <= 0 || len(s.TurnLog) == 0 {
		return nil
	}
	start := len(s.TurnLog) - window
	if start < 0 {
		start = 0
	}
	out := make([]types.TurnRecord, len(s.TurnLog)-start)
	copy(out, s.TurnLog[start:])
	return out
}

// noteQuestion records an asked question once for prompt context.
func (s *State) noteQuestion(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	for _, seen := range s.AskedQuestions {
		if seen == q {
			return
		}
	}
	s.AskedQuestions = append(s.AskedQuestions, q)
}

// noteTopic records a detected topic once for prompt context.
func (s *State) noteTopic(topic string) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return
	}
	for _, seen := range s.TopicsCovered {
		if seen == topic {
			return
		}
	}
	s.TopicsCovered = append(s.TopicsCovered, topic)
}
