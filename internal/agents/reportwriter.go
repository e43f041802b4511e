package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"techpanel/internal/config"
	"techpanel/internal/types"
)

// ReportWriter drafts the final narrative evaluation. The draft is validated
// against the turn log by the report synthesizer; this agent only decodes.
type ReportWriter struct {
	model   TextModel
	profile config.AgentProfile
	limit   int
	log     *zap.Logger
}

func NewReportWriter(model TextModel, profile config.AgentProfile, contextLimit int, log *zap.Logger) *ReportWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportWriter{model: model, profile: profile, limit: contextLimit, log: log}
}

// Write drafts the final feedback from the ledger snapshot and the turn log.
func (w *ReportWriter) Write(ctx context.Context, snapshot types.SkillSnapshot, turns []types.TurnRecord) (types.FinalFeedback, error) {
	user, err := marshalContext(map[string]any{
		"skill_matrix": snapshot,
		"turns":        turnContext(turns, w.limit),
	})
	if err != nil {
		return types.FinalFeedback{}, err
	}

	raw, err := w.model.Generate(ctx, w.profile, Request{
		System: loadPrompt("report_writer_system"),
		User:   user,
		JSON:   true,
	})
	if err != nil {
		return types.FinalFeedback{}, fmt.Errorf("report writer call failed: %w", err)
	}

	var fb types.FinalFeedback
	if err := types.DecodeJSON(raw, &fb); err != nil {
		return types.FinalFeedback{}, fmt.Errorf("report writer returned unparseable output: %w", err)
	}

	w.log.Debug("report drafted",
		zap.String("recommendation", fb.Decision.Recommendation),
		zap.Int("strengths", len(fb.Strengths)),
		zap.Int("growth_areas", len(fb.GrowthAreas)))
	return fb, nil
}
