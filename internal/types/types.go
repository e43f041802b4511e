// Package types provides shared type definitions used across techpanel packages.
// This package exists to break import cycles between engine, agents, and report.
// Types in this package should be foundational data structures with no complex dependencies.
package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// INTAKE
// =============================================================================

// GradeTarget is the seniority level the candidate is interviewing for.
type GradeTarget string

const (
	GradeIntern    GradeTarget = "intern"
	GradeJunior    GradeTarget = "junior"
	GradeMiddle    GradeTarget = "middle"
	GradeSenior    GradeTarget = "senior"
	GradeStaff     GradeTarget = "staff"
	GradePrincipal GradeTarget = "principal"
)

// ParseGradeTarget normalizes raw user input into a GradeTarget.
func ParseGradeTarget(raw string) (GradeTarget, error) {
	g := GradeTarget(strings.ToLower(strings.TrimSpace(raw)))
	switch g {
	case GradeIntern, GradeJunior, GradeMiddle, GradeSenior, GradeStaff, GradePrincipal:
		return g, nil
	default:
		return "", fmt.Errorf("unknown grade target: %q", raw)
	}
}

// Intake is the candidate/vacancy context collected before the session starts.
// Immutable after creation.
type Intake struct {
	ParticipantName   string      `json:"participant_name" yaml:"participant_name"`
	Position          string      `json:"position" yaml:"position"`
	GradeTarget       GradeTarget `json:"grade_target" yaml:"grade_target"`
	ExperienceSummary string      `json:"experience_summary" yaml:"experience_summary"`
}

// =============================================================================
// OBSERVER OUTPUT
// =============================================================================

// NextAction is the observer's recommendation for the next interviewer move.
type NextAction string

const (
	ActionAskDeeper           NextAction = "ASK_DEEPER"
	ActionAskEasier           NextAction = "ASK_EASIER"
	ActionChangeTopic         NextAction = "CHANGE_TOPIC"
	ActionHandleOfftopic      NextAction = "HANDLE_OFFTOPIC"
	ActionHandleHallucination NextAction = "HANDLE_HALLUCINATION"
	ActionHandleRoleReversal  NextAction = "HANDLE_ROLE_REVERSAL"
	ActionWrapUp              NextAction = "WRAP_UP"
)

// Valid reports whether a is a member of the closed NextAction set.
func (a NextAction) Valid() bool {
	switch a {
	case ActionAskDeeper, ActionAskEasier, ActionChangeTopic, ActionHandleOfftopic,
		ActionHandleHallucination, ActionHandleRoleReversal, ActionWrapUp:
		return true
	}
	return false
}

// Flags are per-turn anomaly signals derived from the latest answer only.
// A fresh value is constructed for every observer invocation; flags never
// carry over between turns.
type Flags struct {
	OffTopic      bool `json:"off_topic"`
	Hallucination bool `json:"hallucination"`
	Contradiction bool `json:"contradiction"`
	RoleReversal  bool `json:"role_reversal"`
}

// Any reports whether at least one flag is raised.
func (f Flags) Any() bool {
	return f.OffTopic || f.Hallucination || f.Contradiction || f.RoleReversal
}

// String renders the fixed textual form embedded in hidden reflection.
func (f Flags) String() string {
	return fmt.Sprintf("off_topic=%v, hallucination=%v, contradiction=%v, role_reversal=%v",
		f.OffTopic, f.Hallucination, f.Contradiction, f.RoleReversal)
}

// ExpertRole identifies a domain expert collaborator. Closed set; anything
// else is rejected at the collaborator boundary.
type ExpertRole string

const (
	RoleTechLead ExpertRole = "tech_lead"
	RoleTeamLead ExpertRole = "team_lead"
	RoleQA       ExpertRole = "qa"
	RoleDesigner ExpertRole = "designer"
	RoleAnalyst  ExpertRole = "analyst"
)

// Valid reports whether r is a member of the closed role set.
func (r ExpertRole) Valid() bool {
	switch r {
	case RoleTechLead, RoleTeamLead, RoleQA, RoleDesigner, RoleAnalyst:
		return true
	}
	return false
}

// ObserverDecision is the per-turn routing decision. AskDeeper and
// AdvanceTopic are mutually exclusive in effect; AdvanceTopic wins when a
// malformed decision sets both.
type ObserverDecision struct {
	AskDeeper      bool         `json:"ask_deeper"`
	AdvanceTopic   bool         `json:"advance_topic"`
	ExpertRoles    []ExpertRole `json:"expert_roles,omitempty"`
	ReasoningNotes string       `json:"reasoning_notes,omitempty"`
}

// ObserverReport is the per-turn structured assessment of the latest answer.
type ObserverReport struct {
	DetectedTopic            string             `json:"detected_topic"`
	AnswerQuality            float64            `json:"answer_quality"` // 0..5
	Confidence               float64            `json:"confidence"`     // 0..1
	Flags                    Flags              `json:"flags"`
	RecommendedNextAction    NextAction         `json:"recommended_next_action"`
	RecommendedQuestionStyle string             `json:"recommended_question_style"`
	FactCheckNotes           string             `json:"fact_check_notes,omitempty"`
	SkillsDelta              map[string]float64 `json:"skills_delta,omitempty"` // 1-3 entries, each in [-0.4, +0.4]
}

// =============================================================================
// EXPERTS
// =============================================================================

// ExpertEvaluation is one expert's note on the latest answer.
type ExpertEvaluation struct {
	Role     ExpertRole `json:"role"`
	Comment  string     `json:"comment"`
	Question string     `json:"question,omitempty"` // optional single clarifying question
}

// Note renders the evaluation in the fixed textual form folded into hidden
// reflection and into the question-generation context.
func (e ExpertEvaluation) Note() string {
	comment := strings.TrimSpace(e.Comment)
	question := strings.TrimSpace(e.Question)
	if question == "" {
		return comment
	}
	return fmt.Sprintf("%s Уточняющий вопрос: %s", comment, question)
}

// =============================================================================
// TURN LOG
// =============================================================================

// TurnRecord is one sealed interaction turn. Immutable once appended.
type TurnRecord struct {
	TurnID              int                `json:"turn_id"` // 1-based, sequential
	AgentVisibleMessage string             `json:"agent_visible_message"`
	UserMessage         string             `json:"user_message"`
	InternalThoughts    string             `json:"internal_thoughts"`
	Topic               string             `json:"topic,omitempty"`
	DifficultyBefore    int                `json:"difficulty_before,omitempty"`
	DifficultyAfter     int                `json:"difficulty_after,omitempty"`
	Flags               Flags              `json:"flags"`
	SkillsDelta         map[string]float64 `json:"skills_delta,omitempty"`
}

// =============================================================================
// FINAL FEEDBACK
// =============================================================================

// Decision is the categorical hiring recommendation.
type Decision struct {
	Grade           GradeTarget `json:"grade"`
	Recommendation  string      `json:"recommendation"`
	ConfidenceScore float64     `json:"confidence_score"` // 0..1
}

// TurnCitation ties a strength or growth statement to a concrete turn so the
// report stays auditable against the turn log.
type TurnCitation struct {
	TurnID    int    `json:"turn_id"`
	Statement string `json:"statement"`
	// CorrectiveNote pairs a gap with the answer the candidate missed.
	// Required for growth areas, empty for strengths.
	CorrectiveNote string `json:"corrective_note,omitempty"`
}

// HardSkillsFeedback lists confirmed skills and gaps with correct answers.
type HardSkillsFeedback struct {
	Confirmed              []string          `json:"confirmed"`
	GapsWithCorrectAnswers map[string]string `json:"gaps_with_correct_answers"`
}

// SoftSkillsFeedback describes communication qualities with cited examples.
type SoftSkillsFeedback struct {
	Clarity    string   `json:"clarity"`
	Honesty    string   `json:"honesty"`
	Engagement string   `json:"engagement"`
	Examples   []string `json:"examples"`
}

// Roadmap recommends concrete next steps for the candidate.
type Roadmap struct {
	NextSteps []string `json:"next_steps"`
	Links     []string `json:"links,omitempty"`
}

// FinalFeedback is the structured final evaluation, produced exactly once per
// session. Strengths and GrowthAreas each carry 3-5 turn-cited statements.
type FinalFeedback struct {
	Decision    Decision           `json:"decision"`
	HardSkills  HardSkillsFeedback `json:"hard_skills"`
	SoftSkills  SoftSkillsFeedback `json:"soft_skills"`
	Roadmap     Roadmap            `json:"roadmap"`
	Strengths   []TurnCitation     `json:"strengths"`
	GrowthAreas []TurnCitation     `json:"growth_areas"`
}
