package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"techpanel/internal/config"
	"techpanel/internal/types"
)

// Observer runs the hidden per-turn assessment. It returns the raw decoded
// decision and report; structural repair (role limits, clamps, action
// fallbacks) lives in the engine's boundary layer, not here.
type Observer struct {
	model   TextModel
	profile config.AgentProfile
	limit   int
	log     *zap.Logger
}

func NewObserver(model TextModel, profile config.AgentProfile, contextLimit int, log *zap.Logger) *Observer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Observer{model: model, profile: profile, limit: contextLimit, log: log}
}

// observerOutput is the combined JSON envelope the model returns.
type observerOutput struct {
	Decision types.ObserverDecision `json:"decision"`
	Report   types.ObserverReport   `json:"report"`
}

// Observe assesses the latest answer against the session context.
func (o *Observer) Observe(ctx context.Context, oc types.ObserverContext) (types.ObserverDecision, types.ObserverReport, error) {
	user, err := marshalContext(map[string]any{
		"intake":                intakeContext(oc.Intake, o.limit),
		"planned_topics":        oc.PlannedTopics,
		"current_topic_index":   oc.CurrentTopicIndex,
		"current_topic":         oc.CurrentTopic,
		"difficulty":            oc.Difficulty,
		"recent_turns":          turnContext(oc.RecentTurns, o.limit),
		"agent_visible_message": truncateText(oc.LastQuestion, o.limit),
		"user_message":          truncateText(oc.LastAnswer, o.limit),
		"kickoff":               oc.Kickoff,
	})
	if err != nil {
		return types.ObserverDecision{}, types.ObserverReport{}, err
	}

	raw, err := o.model.Generate(ctx, o.profile, Request{
		System: loadPrompt("observer_system"),
		User:   user,
		JSON:   true,
	})
	if err != nil {
		return types.ObserverDecision{}, types.ObserverReport{}, fmt.Errorf("observer call failed: %w", err)
	}

	var out observerOutput
	if err := types.DecodeJSON(raw, &out); err != nil {
		return types.ObserverDecision{}, types.ObserverReport{}, fmt.Errorf("observer returned unparseable output: %w", err)
	}

	o.log.Debug("observer assessed turn",
		zap.String("detected_topic", out.Report.DetectedTopic),
		zap.Float64("answer_quality", out.Report.AnswerQuality),
		zap.String("next_action", string(out.Report.RecommendedNextAction)))
	return out.Decision, out.Report, nil
}
