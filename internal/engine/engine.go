package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"techpanel/internal/config"
	"techpanel/internal/difficulty"
	"techpanel/internal/ledger"
	"techpanel/internal/report"
	"techpanel/internal/types"
)

var (
	// ErrNotStarted is returned when a turn arrives before Begin.
	ErrNotStarted = errors.New("interview session not started")
	// ErrFinished is returned when a turn arrives after finalization.
	ErrFinished = errors.New("interview already finalized")
)

// Collaborators are the opaque content generators the core calls through
// fixed contracts. The engine treats them as functions returning structured
// data; it never parses their prose.
type Collaborators struct {
	Planner   types.Planner
	Observer  types.Observer
	Expert    types.Expert
	Questions types.QuestionGenerator
}

// Outcome is what one processed turn hands back to the caller. Either
// Question is set (engine suspended at AWAIT_INPUT) or Final is set
// (session over); never both.
type Outcome struct {
	Question string
	Record   types.TurnRecord
	Final    *types.FinalFeedback
	Finished bool
}

// Engine owns one interview session: the InterviewState, the skill ledger,
// and the turn cycle. One turn runs to completion synchronously; the engine
// then suspends until the caller feeds the next candidate message.
// Not safe for concurrent use.
type Engine struct {
	cfg     config.InterviewConfig
	log     *zap.Logger
	collab  Collaborators
	synth   *report.Synthesizer
	experts *expertDispatcher

	state     *State
	ledger    *ledger.Ledger
	finalized bool
}

// New builds an engine for a single session.
func New(cfg config.InterviewConfig, collab Collaborators, synth *report.Synthesizer, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		log:     log,
		collab:  collab,
		synth:   synth,
		experts: newExpertDispatcher(collab.Expert, log),
	}
}

// Begin plans the session and runs the kickoff turn. The observer contract
// executes even though no answer exists yet, so hidden reflection is on
// record before the first visible question. A plan without exactly
// types.PlannedTopicCount topics aborts session start.
func (e *Engine) Begin(ctx context.Context, intake types.Intake) (Outcome, error) {
	if e.state != nil {
		return Outcome{}, errors.New("session already started")
	}

	topics, err := e.collab.Planner.Plan(ctx, intake)
	if err != nil {
		return Outcome{}, fmt.Errorf("topic planning failed: %w", err)
	}
	state, err := NewState(intake, topics, difficulty.Level(e.cfg.InitialDifficulty))
	if err != nil {
		return Outcome{}, err
	}
	e.state = state
	e.ledger = ledger.New(ledger.BaselineSkills)

	e.log.Info("session started",
		zap.String("session_id", state.SessionID),
		zap.String("participant", intake.ParticipantName),
		zap.Int("topics", len(topics)))

	return e.processTurn(ctx, "", true)
}

// Submit feeds the next candidate message and runs one full turn cycle.
// A stop token raises the stop flag, which the termination policy honors at
// the top of this same cycle.
func (e *Engine) Submit(ctx context.Context, answer string) (Outcome, error) {
	if e.state == nil {
		return Outcome{}, ErrNotStarted
	}
	if e.finalized {
		return Outcome{}, ErrFinished
	}
	if IsStopCommand(answer) {
		e.state.RequestStop()
	}
	return e.processTurn(ctx, answer, false)
}

// RequestStop raises the stop flag out-of-band. It never interrupts an
// in-flight turn; it takes effect at the start of the next cycle.
func (e *Engine) RequestStop() {
	if e.state != nil {
		e.state.RequestStop()
	}
}

// Turns returns a copy of the sealed turn log.
func (e *Engine) Turns() []types.TurnRecord {
	if e.state == nil {
		return nil
	}
	out := make([]types.TurnRecord, len(e.state.TurnLog))
	copy(out, e.state.TurnLog)
	return out
}

// SessionID returns the session identifier, or "" before Begin.
func (e *Engine) SessionID() string {
	if e.state == nil {
		return ""
	}
	return e.state.SessionID
}

// Finalized reports whether the final evaluation has been produced.
func (e *Engine) Finalized() bool { return e.finalized }

// processTurn runs one full cycle:
// termination check -> observer -> route -> expert drain (loop) ->
// topic advance -> difficulty -> question generation -> seal turn record.
func (e *Engine) processTurn(ctx context.Context, answer string, kickoff bool) (Outcome, error) {
	s := e.state
	s.LastAnswer = answer

	// Stop flag is honored only here, at the top of the cycle.
	if s.StopRequested {
		return e.finalize(ctx), nil
	}

	decision, rpt := e.observe(ctx, answer, kickoff)
	turnID := s.NextTurnID()

	// Evidence lands before routing: a report that triggers finalization
	// still counts its closing answer in the final snapshot.
	if len(rpt.SkillsDelta) > 0 {
		e.ledger.Apply(rpt.SkillsDelta, turnID, evidenceNote(rpt))
	}

	// The expert queue exists only while this turn is in flight. Kickoff
	// and blank messages leave nothing for an expert to evaluate.
	if !kickoff && strings.TrimSpace(answer) != "" {
		s.PendingExpertRoles = decision.ExpertRoles
	}

	step := Route(s, rpt, decision)
	if step == StepFinalize {
		s.PendingExpertRoles = nil
		return e.finalize(ctx), nil
	}

	var evals []types.ExpertEvaluation
	if step == StepDispatchExperts {
		evals = e.experts.drain(ctx, s.PendingExpertRoles, types.ExpertContext{
			LastAnswer:   answer,
			CurrentTopic: s.CurrentTopic(),
		})
		s.PendingExpertRoles = nil
	}

	// Anomalous turns hold position: the plan advances only on clean signal.
	if (decision.AdvanceTopic || rpt.RecommendedNextAction == types.ActionChangeTopic) && !rpt.Flags.Any() {
		s.AdvanceTopic()
	}

	// Difficulty adjusts exactly once per completed turn, after the expert
	// drain, so the generated question reflects the fresh level.
	before := s.Difficulty
	s.Difficulty = difficulty.Adjust(before, rpt.AnswerQuality, rpt.Flags, e.cfg.RaiseQuality, e.cfg.LowerQuality)

	strategy := selectStrategy(rpt)
	question := e.generateQuestion(ctx, s, rpt, strategy, evals, answer)

	fragments := make([]fragment, 0, len(evals)+2)
	fragments = append(fragments, observerFragment(rpt))
	for _, eval := range evals {
		fragments = append(fragments, expertFragment(eval))
	}
	fragments = append(fragments, interviewerFragment(strategy))

	rec := types.TurnRecord{
		TurnID:              turnID,
		AgentVisibleMessage: question,
		UserMessage:         answer,
		InternalThoughts:    renderThoughts(fragments),
		Topic:               rpt.DetectedTopic,
		DifficultyBefore:    int(before),
		DifficultyAfter:     int(s.Difficulty),
		Flags:               rpt.Flags,
		SkillsDelta:         rpt.SkillsDelta,
	}
	if err := s.appendTurn(rec); err != nil {
		return Outcome{}, err
	}
	s.LastQuestion = question
	s.noteQuestion(question)
	s.noteTopic(rpt.DetectedTopic)

	e.log.Debug("turn sealed",
		zap.Int("turn_id", turnID),
		zap.String("topic", rpt.DetectedTopic),
		zap.String("strategy", strategy),
		zap.Int("difficulty", int(s.Difficulty)))

	return Outcome{Question: question, Record: rec}, nil
}

// observe executes the Observer contract. The report is never omitted: a
// failed call degrades to a synthetic one, and the kickoff turn gets the
// prescribed degenerate-case defaults.
func (e *Engine) observe(ctx context.Context, answer string, kickoff bool) (types.ObserverDecision, types.ObserverReport) {
	s := e.state
	oc := types.ObserverContext{
		Intake:            s.Intake,
		PlannedTopics:     s.PlannedTopics,
		CurrentTopicIndex: s.CurrentTopicIndex,
		CurrentTopic:      s.CurrentTopic(),
		Difficulty:        int(s.Difficulty),
		RecentTurns:       s.RecentTurns(e.cfg.RecentTurnWindow),
		LastQuestion:      s.LastQuestion,
		LastAnswer:        answer,
		Kickoff:           kickoff,
	}

	decision, rpt, err := e.collab.Observer.Observe(ctx, oc)
	if err != nil {
		e.log.Warn("observer failed, using synthetic report", zap.Error(err))
		if kickoff {
			return kickoffDefaults(s.CurrentTopic())
		}
		return syntheticReport(s.CurrentTopic())
	}

	decision = sanitizeDecision(decision, e.log)
	rpt = sanitizeReport(rpt, s.CurrentTopic(), e.cfg.MaxSkillDelta, e.log)

	if kickoff {
		// No answer exists yet; only the detected topic and question style
		// survive from the live report.
		kd, kr := kickoffDefaults(s.CurrentTopic())
		if rpt.DetectedTopic != "" {
			kr.DetectedTopic = rpt.DetectedTopic
		}
		if rpt.RecommendedQuestionStyle != "" {
			kr.RecommendedQuestionStyle = rpt.RecommendedQuestionStyle
		}
		return kd, kr
	}
	return decision, rpt
}

// generateQuestion calls the QuestionGenerator and repairs its output: the
// candidate never sees an internal error, at worst a generic clarifying
// question on the current topic.
func (e *Engine) generateQuestion(ctx context.Context, s *State, rpt types.ObserverReport, strategy string, evals []types.ExpertEvaluation, answer string) string {
	notes := make([]string, 0, len(evals))
	for _, eval := range evals {
		notes = append(notes, eval.Note())
	}

	qc := types.QuestionContext{
		Intake:       s.Intake,
		Report:       rpt,
		Strategy:     strategy,
		Difficulty:   int(s.Difficulty),
		CurrentTopic: s.CurrentTopic(),
		RecentTurns:  s.RecentTurns(e.cfg.RecentTurnWindow),
		LastAnswer:   answer,
		LastQuestion: s.LastQuestion,
		ExpertNotes:  notes,
		AskedSoFar:   s.AskedQuestions,
		TopicsSoFar:  s.TopicsCovered,
	}

	question, err := e.collab.Questions.Generate(ctx, qc)
	if err != nil || strings.TrimSpace(question) == "" {
		e.log.Warn("question generation degraded", zap.Error(err))
		question = fallbackQuestion(s.CurrentTopic())
	}
	return truncateRunes(strings.TrimSpace(question), e.cfg.QuestionCharBudget)
}

// finalize synthesizes the final evaluation exactly once. No turn record is
// appended at or after this point.
func (e *Engine) finalize(ctx context.Context) Outcome {
	e.finalized = true
	snapshot := e.ledger.Snapshot(e.cfg.ConfirmThreshold, e.cfg.GapThreshold)
	fb := e.synth.Synthesize(ctx, e.state.Intake, e.state.TurnLog, snapshot)

	e.log.Info("session finalized",
		zap.String("session_id", e.state.SessionID),
		zap.Int("turns", len(e.state.TurnLog)),
		zap.String("recommendation", fb.Decision.Recommendation))

	return Outcome{Final: &fb, Finished: true}
}

func evidenceNote(rpt types.ObserverReport) string {
	if rpt.FactCheckNotes != "" {
		return rpt.FactCheckNotes
	}
	return rpt.DetectedTopic
}

func fallbackQuestion(topic string) string {
	if topic == "" {
		return "Расскажите, пожалуйста, подробнее о вашем последнем проекте."
	}
	return fmt.Sprintf("Расскажите подробнее про %s: какой подход вы бы выбрали и почему?", topic)
}

// truncateRunes enforces the visible-question character budget.
func truncateRunes(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return strings.TrimSpace(string(runes[:budget-1])) + "…"
}
