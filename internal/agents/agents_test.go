package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techpanel/internal/config"
	"techpanel/internal/types"
)

// fakeModel returns a canned response and captures the request.
type fakeModel struct {
	response string
	err      error
	lastReq  Request
}

func (m *fakeModel) Generate(_ context.Context, _ config.AgentProfile, req Request) (string, error) {
	m.lastReq = req
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func testProfile() config.AgentProfile {
	return config.AgentProfile{Model: "gemini-2.5-flash", Temperature: 0.2, MaxRetries: 2, MaxOutputTokens: 4096}
}

func topicsJSON(n int) string {
	topics := make([]string, n)
	for i := range topics {
		topics[i] = fmt.Sprintf("тема %d", i+1)
	}
	data, _ := json.Marshal(map[string]any{"topics": topics})
	return string(data)
}

// -----------------------------------------------------------------------------
// planner
// -----------------------------------------------------------------------------

func TestPlannerParsesTopics(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: topicsJSON(10)}
	p := NewPlanner(model, testProfile(), 800, nil)

	topics, err := p.Plan(context.Background(), types.Intake{ParticipantName: "Анна", GradeTarget: types.GradeMiddle})
	require.NoError(t, err)
	assert.Len(t, topics, types.PlannedTopicCount)
	assert.True(t, model.lastReq.JSON)
	assert.Contains(t, model.lastReq.User, "intake_data")
}

func TestPlannerStripsMarkdownFence(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: "```json\n" + topicsJSON(10) + "\n```"}
	p := NewPlanner(model, testProfile(), 800, nil)

	topics, err := p.Plan(context.Background(), types.Intake{})
	require.NoError(t, err)
	assert.Len(t, topics, types.PlannedTopicCount)
}

func TestPlannerRejectsWrongTopicCount(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 3, 9, 11} {
		model := &fakeModel{response: topicsJSON(n)}
		p := NewPlanner(model, testProfile(), 800, nil)
		_, err := p.Plan(context.Background(), types.Intake{})
		assert.Error(t, err, "topic count %d must be rejected", n)
	}
}

func TestPlannerDropsBlankTopics(t *testing.T) {
	t.Parallel()

	topics := []string{"a", "  ", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	data, _ := json.Marshal(map[string]any{"topics": topics})
	model := &fakeModel{response: string(data)}
	p := NewPlanner(model, testProfile(), 800, nil)

	got, err := p.Plan(context.Background(), types.Intake{})
	require.NoError(t, err, "blank entry plus ten usable topics is a valid plan")
	assert.NotContains(t, got, "  ")
	assert.Len(t, got, 10)
}

// -----------------------------------------------------------------------------
// observer
// -----------------------------------------------------------------------------

func observerJSON() string {
	return `{
		"decision": {"ask_deeper": true, "advance_topic": false, "expert_roles": ["tech_lead"]},
		"report": {
			"detected_topic": "асинхронность",
			"answer_quality": 4.2,
			"confidence": 0.85,
			"flags": {"off_topic": false, "hallucination": false, "contradiction": false, "role_reversal": false},
			"recommended_next_action": "ASK_DEEPER",
			"recommended_question_style": "уточняющий",
			"skills_delta": {"async": 0.25}
		}
	}`
}

func TestObserverDecodesEnvelope(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: observerJSON()}
	o := NewObserver(model, testProfile(), 800, nil)

	decision, report, err := o.Observe(context.Background(), types.ObserverContext{
		CurrentTopic: "асинхронность",
		LastAnswer:   "ответ про event loop",
	})
	require.NoError(t, err)
	assert.True(t, decision.AskDeeper)
	assert.Equal(t, []types.ExpertRole{types.RoleTechLead}, decision.ExpertRoles)
	assert.Equal(t, "асинхронность", report.DetectedTopic)
	assert.Equal(t, 4.2, report.AnswerQuality)
	assert.Equal(t, types.ActionAskDeeper, report.RecommendedNextAction)
	assert.Equal(t, map[string]float64{"async": 0.25}, report.SkillsDelta)
}

func TestObserverContextCarriesKickoffFlag(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: observerJSON()}
	o := NewObserver(model, testProfile(), 800, nil)

	_, _, err := o.Observe(context.Background(), types.ObserverContext{Kickoff: true})
	require.NoError(t, err)
	assert.Contains(t, model.lastReq.User, `"kickoff": true`)
}

func TestObserverTruncatesLongAnswer(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: observerJSON()}
	o := NewObserver(model, testProfile(), 50, nil)

	long := strings.Repeat("о", 500)
	_, _, err := o.Observe(context.Background(), types.ObserverContext{LastAnswer: long})
	require.NoError(t, err)
	assert.NotContains(t, model.lastReq.User, long, "raw long answer must not reach the prompt")
	assert.Contains(t, model.lastReq.User, strings.Repeat("о", 50)+"...")
}

func TestObserverUnparseableOutputIsAnError(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: "Отличный ответ, продолжаем!"}
	o := NewObserver(model, testProfile(), 800, nil)

	_, _, err := o.Observe(context.Background(), types.ObserverContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unparseable")
}

// -----------------------------------------------------------------------------
// expert
// -----------------------------------------------------------------------------

func TestExpertEvaluate(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: `{"comment": "Глубины не хватает.", "question": "А что под капотом?"}`}
	e := NewExpert(model, testProfile(), 800, nil)

	eval, err := e.Evaluate(context.Background(), types.RoleQA, types.ExpertContext{
		LastAnswer:   "ответ",
		CurrentTopic: "тестирование",
	})
	require.NoError(t, err)
	assert.Equal(t, types.RoleQA, eval.Role)
	assert.Equal(t, "Глубины не хватает. Уточняющий вопрос: А что под капотом?", eval.Note())
}

func TestExpertRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	e := NewExpert(&fakeModel{}, testProfile(), 800, nil)
	_, err := e.Evaluate(context.Background(), "lawyer", types.ExpertContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no prompt configured")
}

func TestExpertRejectsEmptyComment(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: `{"comment": "   ", "question": ""}`}
	e := NewExpert(model, testProfile(), 800, nil)
	_, err := e.Evaluate(context.Background(), types.RoleTechLead, types.ExpertContext{})
	assert.Error(t, err)
}

func TestEveryRoleHasAPrompt(t *testing.T) {
	t.Parallel()

	roles := []types.ExpertRole{
		types.RoleTechLead, types.RoleTeamLead, types.RoleQA, types.RoleDesigner, types.RoleAnalyst,
	}
	for _, role := range roles {
		name, ok := expertPromptByRole[role]
		require.True(t, ok, "role %s has no prompt", role)
		assert.NotEmpty(t, loadPrompt(name))
	}
}

// -----------------------------------------------------------------------------
// interviewer
// -----------------------------------------------------------------------------

func TestInterviewerReturnsPlainQuestion(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: "  Как устроен asyncio event loop?  "}
	i := NewInterviewer(model, testProfile(), 800, nil)

	q, err := i.Generate(context.Background(), types.QuestionContext{
		Strategy:     "deepen",
		CurrentTopic: "асинхронность",
	})
	require.NoError(t, err)
	assert.Equal(t, "Как устроен asyncio event loop?", q)
	assert.False(t, model.lastReq.JSON, "the interviewer speaks plain text")
	assert.Contains(t, model.lastReq.User, `"strategy": "deepen"`)
}

func TestInterviewerEmptyOutputIsAnError(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: "   "}
	i := NewInterviewer(model, testProfile(), 800, nil)
	_, err := i.Generate(context.Background(), types.QuestionContext{})
	assert.Error(t, err)
}

func TestInterviewerPropagatesModelError(t *testing.T) {
	t.Parallel()

	model := &fakeModel{err: errors.New("quota exceeded")}
	i := NewInterviewer(model, testProfile(), 800, nil)
	_, err := i.Generate(context.Background(), types.QuestionContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

// -----------------------------------------------------------------------------
// report writer
// -----------------------------------------------------------------------------

func TestReportWriterDecodesDraft(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: `{
		"decision": {"grade": "middle", "recommendation": "lean_hire", "confidence_score": 0.7},
		"hard_skills": {"confirmed": ["async"], "gaps_with_correct_answers": {"queues": "дочитать про ack"}},
		"soft_skills": {"clarity": "ясно", "honesty": "честно", "engagement": "вовлеченно", "examples": []},
		"roadmap": {"next_steps": ["практика system design"]},
		"strengths": [{"turn_id": 2, "statement": "уверенный разбор"}],
		"growth_areas": [{"turn_id": 3, "statement": "пробел в очередях", "corrective_note": "at-least-once требует идемпотентности"}]
	}`}
	w := NewReportWriter(model, testProfile(), 800, nil)

	fb, err := w.Write(context.Background(), types.SkillSnapshot{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "lean_hire", fb.Decision.Recommendation)
	assert.Equal(t, types.GradeMiddle, fb.Decision.Grade)
	require.Len(t, fb.GrowthAreas, 1)
	assert.Equal(t, 3, fb.GrowthAreas[0].TurnID)
}

func TestReportWriterUnparseableDraft(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: "Кандидат молодец."}
	w := NewReportWriter(model, testProfile(), 800, nil)
	_, err := w.Write(context.Background(), types.SkillSnapshot{}, nil)
	assert.Error(t, err)
}
