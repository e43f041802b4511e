package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"techpanel/internal/config"
	"techpanel/internal/types"
)

// Expert answers evaluation requests for any of the closed role set. Each
// role carries its own system prompt; the request payload is the same.
type Expert struct {
	model   TextModel
	profile config.AgentProfile
	limit   int
	log     *zap.Logger
}

func NewExpert(model TextModel, profile config.AgentProfile, contextLimit int, log *zap.Logger) *Expert {
	if log == nil {
		log = zap.NewNop()
	}
	return &Expert{model: model, profile: profile, limit: contextLimit, log: log}
}

// Evaluate produces one expert note on the latest answer.
func (e *Expert) Evaluate(ctx context.Context, role types.ExpertRole, ec types.ExpertContext) (types.ExpertEvaluation, error) {
	promptName, ok := expertPromptByRole[role]
	if !ok {
		return types.ExpertEvaluation{}, fmt.Errorf("no prompt configured for expert role %q", role)
	}

	user, err := marshalContext(map[string]any{
		"last_user_message": truncateText(ec.LastAnswer, e.limit),
		"current_topic":     ec.CurrentTopic,
	})
	if err != nil {
		return types.ExpertEvaluation{}, err
	}

	raw, err := e.model.Generate(ctx, e.profile, Request{
		System: loadPrompt(promptName),
		User:   user,
		JSON:   true,
	})
	if err != nil {
		return types.ExpertEvaluation{}, fmt.Errorf("expert %s call failed: %w", role, err)
	}

	var eval types.ExpertEvaluation
	if err := types.DecodeJSON(raw, &eval); err != nil {
		return types.ExpertEvaluation{}, fmt.Errorf("expert %s returned unparseable output: %w", role, err)
	}
	eval.Role = role
	eval.Comment = strings.TrimSpace(eval.Comment)
	eval.Question = strings.TrimSpace(eval.Question)
	if eval.Comment == "" {
		return types.ExpertEvaluation{}, fmt.Errorf("expert %s returned an empty comment", role)
	}
	return eval, nil
}
