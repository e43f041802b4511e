package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"techpanel/internal/config"
	"techpanel/internal/types"
)

// Planner builds the ordered topic plan from the intake. It runs once per
// session; a malformed plan is fatal upstream, so it is rejected here with
// an error rather than repaired.
type Planner struct {
	model   TextModel
	profile config.AgentProfile
	limit   int
	log     *zap.Logger
}

func NewPlanner(model TextModel, profile config.AgentProfile, contextLimit int, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{model: model, profile: profile, limit: contextLimit, log: log}
}

// Plan generates exactly types.PlannedTopicCount interview topics.
func (p *Planner) Plan(ctx context.Context, intake types.Intake) ([]string, error) {
	user, err := marshalContext(map[string]any{
		"intake_data": intakeContext(intake, p.limit),
	})
	if err != nil {
		return nil, err
	}

	raw, err := p.model.Generate(ctx, p.profile, Request{
		System: loadPrompt("planner_system"),
		User:   user,
		JSON:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("planner call failed: %w", err)
	}

	var out struct {
		Topics []string `json:"topics"`
	}
	if err := types.DecodeJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("planner returned unparseable output: %w", err)
	}

	topics := make([]string, 0, len(out.Topics))
	for _, topic := range out.Topics {
		if t := strings.TrimSpace(topic); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) != types.PlannedTopicCount {
		return nil, fmt.Errorf("planner produced %d usable topics, need exactly %d", len(topics), types.PlannedTopicCount)
	}

	p.log.Info("topic plan generated", zap.Strings("topics", topics))
	return topics, nil
}
