package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"techpanel/internal/config"
	"techpanel/internal/types"
)

// Interviewer generates the next candidate-visible question. Unlike the
// other agents it returns plain text: exactly one question, no JSON.
type Interviewer struct {
	model   TextModel
	profile config.AgentProfile
	limit   int
	log     *zap.Logger
}

func NewInterviewer(model TextModel, profile config.AgentProfile, contextLimit int, log *zap.Logger) *Interviewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interviewer{model: model, profile: profile, limit: contextLimit, log: log}
}

// Generate produces the next question for the given strategy and context.
func (i *Interviewer) Generate(ctx context.Context, qc types.QuestionContext) (string, error) {
	user, err := marshalContext(map[string]any{
		"intake":                   intakeContext(qc.Intake, i.limit),
		"observer_report":          qc.Report,
		"strategy":                 qc.Strategy,
		"difficulty":               qc.Difficulty,
		"current_topic":            qc.CurrentTopic,
		"recent_turns":             turnContext(qc.RecentTurns, i.limit),
		"last_user_message":        truncateText(qc.LastAnswer, i.limit),
		"last_interviewer_message": truncateText(qc.LastQuestion, i.limit),
		"expert_notes":             qc.ExpertNotes,
		"asked_questions":          qc.AskedSoFar,
		"topics_covered":           qc.TopicsSoFar,
	})
	if err != nil {
		return "", err
	}

	raw, err := i.model.Generate(ctx, i.profile, Request{
		System: loadPrompt("interviewer_system"),
		User:   user,
	})
	if err != nil {
		return "", fmt.Errorf("interviewer call failed: %w", err)
	}

	question := strings.TrimSpace(raw)
	if question == "" {
		return "", fmt.Errorf("interviewer returned an empty question")
	}
	return question, nil
}
