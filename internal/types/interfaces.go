package types

import (
	"context"
)

// PlannedTopicCount is the exact number of topics a plan must contain.
// Planner output with any other length is fatal to session start.
const PlannedTopicCount = 10

// ObserverContext is the input view handed to the Observer collaborator.
// Kickoff is true on the very first turn, before any candidate answer exists;
// the observer must still return a report in that case.
type ObserverContext struct {
	Intake            Intake
	PlannedTopics     []string
	CurrentTopicIndex int
	CurrentTopic      string
	Difficulty        int
	RecentTurns       []TurnRecord
	LastQuestion      string
	LastAnswer        string
	Kickoff           bool
}

// ExpertContext is the input view handed to an Expert collaborator.
type ExpertContext struct {
	LastAnswer   string
	CurrentTopic string
}

// QuestionContext is the input view handed to the QuestionGenerator.
type QuestionContext struct {
	Intake       Intake
	Report       ObserverReport
	Strategy     string
	Difficulty   int
	CurrentTopic string
	RecentTurns  []TurnRecord
	LastAnswer   string
	LastQuestion string
	ExpertNotes  []string // drain order
	AskedSoFar   []string
	TopicsSoFar  []string
}

// SkillSnapshot is the ledger view handed to the ReportWriter at finalize.
type SkillSnapshot struct {
	Scores    map[string]float64      `json:"scores"`
	Confirmed []string                `json:"confirmed"`
	Gaps      []string                `json:"gaps"`
	Evidence  map[string][]SkillProof `json:"evidence"`
}

// SkillProof is one audited evidence record: the raw (unclamped) delta a turn
// contributed to a skill.
type SkillProof struct {
	TurnID int     `json:"turn_id"`
	Delta  float64 `json:"delta"`
	Note   string  `json:"note,omitempty"`
}

// Planner produces the ordered topic plan from the intake.
type Planner interface {
	Plan(ctx context.Context, intake Intake) ([]string, error)
}

// Observer assesses the latest answer and emits a routing decision plus a
// structured report. It must never omit the report, even on kickoff.
type Observer interface {
	Observe(ctx context.Context, oc ObserverContext) (ObserverDecision, ObserverReport, error)
}

// Expert produces one internal evaluation note for a given role. A failed
// call degrades to an omitted evaluation; it never aborts the turn.
type Expert interface {
	Evaluate(ctx context.Context, role ExpertRole, ec ExpertContext) (ExpertEvaluation, error)
}

// QuestionGenerator produces the next candidate-visible message: exactly one
// question, no sub-questions, within a fixed character budget.
type QuestionGenerator interface {
	Generate(ctx context.Context, qc QuestionContext) (string, error)
}

// ReportWriter folds the turn log and the skill snapshot into the final
// evaluation. Invoked at most once per session.
type ReportWriter interface {
	Write(ctx context.Context, snapshot SkillSnapshot, turns []TurnRecord) (FinalFeedback, error)
}
