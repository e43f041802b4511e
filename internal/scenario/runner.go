package scenario

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"techpanel/internal/engine"
	"techpanel/internal/types"
)

// Result is the outcome of a scripted run.
type Result struct {
	SessionID string
	Turns     []types.TurnRecord
	Final     types.FinalFeedback
	// ScriptExhausted is true when the engine was still waiting for input
	// after the last scripted message, and the runner stopped the session.
	ScriptExhausted bool
}

// Runner drives one engine through a scenario script.
type Runner struct {
	eng *engine.Engine
	log *zap.Logger
}

func NewRunner(eng *engine.Engine, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{eng: eng, log: log}
}

// Run executes the scenario. The session always ends with a final report:
// if the script runs out before the engine terminates on its own, the runner
// requests a stop and lets the next cycle finalize.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Result, error) {
	out, err := r.eng.Begin(ctx, sc.Intake)
	if err != nil {
		return Result{}, fmt.Errorf("scenario start failed: %w", err)
	}
	r.log.Info("scenario started",
		zap.String("session_id", r.eng.SessionID()),
		zap.Int("scripted_messages", len(sc.ScriptedUserMessages)))

	for _, message := range sc.ScriptedUserMessages {
		out, err = r.eng.Submit(ctx, message)
		if err != nil {
			return Result{}, fmt.Errorf("scenario turn failed: %w", err)
		}
		if out.Finished {
			return r.result(out, false), nil
		}
	}

	// Script exhausted mid-session: stop and collect the report.
	r.eng.RequestStop()
	out, err = r.eng.Submit(ctx, "")
	if err != nil {
		return Result{}, fmt.Errorf("scenario shutdown failed: %w", err)
	}
	if !out.Finished {
		return Result{}, fmt.Errorf("session did not finalize after stop request")
	}
	return r.result(out, true), nil
}

func (r *Runner) result(out engine.Outcome, exhausted bool) Result {
	return Result{
		SessionID:       r.eng.SessionID(),
		Turns:           r.eng.Turns(),
		Final:           *out.Final,
		ScriptExhausted: exhausted,
	}
}
