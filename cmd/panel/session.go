package main

import (
	"context"
	"fmt"
	"time"

	"techpanel/internal/agents"
	"techpanel/internal/config"
	"techpanel/internal/engine"
	"techpanel/internal/report"
	"techpanel/internal/sessionlog"
	"techpanel/internal/types"
)

// buildEngine wires the production collaborators into a fresh engine.
func buildEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, error) {
	model, err := agents.NewGemini(ctx, cfg.LLM.APIKey, logger)
	if err != nil {
		return nil, err
	}

	limit := cfg.Interview.ContextStringLimit
	collab := engine.Collaborators{
		Planner:   agents.NewPlanner(model, cfg.Agents.Planner, limit, logger),
		Observer:  agents.NewObserver(model, cfg.Agents.Observer, limit, logger),
		Expert:    agents.NewExpert(model, cfg.Agents.Expert, limit, logger),
		Questions: agents.NewInterviewer(model, cfg.Agents.Interviewer, limit, logger),
	}
	writer := agents.NewReportWriter(model, cfg.Agents.Report, limit, logger)
	synth := report.NewSynthesizer(writer, logger)

	return engine.New(cfg.Interview, collab, synth, logger), nil
}

// persistSession writes the JSON run log and records the session in the
// archive. The archive is best-effort: a failure there never loses the log.
func persistSession(ctx context.Context, cfg *config.Config, eng *engine.Engine, intake types.Intake, fb types.FinalFeedback, label string, startedAt time.Time) (string, error) {
	rec := sessionlog.NewRecorder(intake)
	for _, turn := range eng.Turns() {
		rec.AppendTurn(turn)
	}
	if err := rec.SetFinalFeedback(fb); err != nil {
		return "", err
	}

	logPath := sessionlog.RunLogPath(cfg.Sessions.RunsDir, label, time.Now())
	if err := rec.Save(logPath); err != nil {
		return "", err
	}

	archive, err := sessionlog.OpenArchive(cfg.Sessions.ArchivePath)
	if err != nil {
		logger.Warn("archive unavailable, run log saved anyway")
		return logPath, nil
	}
	defer archive.Close()

	err = archive.Record(ctx, sessionlog.Session{
		ID:             eng.SessionID(),
		Participant:    intake.ParticipantName,
		Position:       intake.Position,
		Grade:          intake.GradeTarget,
		StartedAt:      startedAt,
		Turns:          len(eng.Turns()),
		Recommendation: fb.Decision.Recommendation,
		LogPath:        logPath,
	})
	if err != nil {
		logger.Warn(fmt.Sprintf("failed to archive session: %v", err))
	}
	return logPath, nil
}
