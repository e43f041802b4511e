// Package report folds the turn log and the skill ledger snapshot into the
// final structured evaluation. The ReportWriter collaborator drafts the
// narrative; this package validates the draft against the log and falls back
// to a deterministic ledger-derived report when the draft is unusable.
package report

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"techpanel/internal/types"
)

const (
	minCitations = 3
	maxCitations = 5
)

// Synthesizer produces the final feedback exactly once per session.
type Synthesizer struct {
	writer types.ReportWriter
	log    *zap.Logger
}

// NewSynthesizer wires the writer collaborator. writer may be nil, in which
// case synthesis is fully deterministic.
func NewSynthesizer(writer types.ReportWriter, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{writer: writer, log: log}
}

// Synthesize builds the final evaluation from the sealed turn log and the
// ledger snapshot. A writer failure or an invalid draft degrades to the
// deterministic fallback; the candidate always gets a report.
func (s *Synthesizer) Synthesize(ctx context.Context, intake types.Intake, turns []types.TurnRecord, snapshot types.SkillSnapshot) types.FinalFeedback {
	if s.writer != nil {
		draft, err := s.writer.Write(ctx, snapshot, turns)
		if err != nil {
			s.log.Warn("report writer failed, using fallback", zap.Error(err))
		} else if verr := Validate(draft, turns); verr != nil {
			s.log.Warn("report draft failed validation, using fallback", zap.Error(verr))
		} else {
			return draft
		}
	}
	return s.fallback(intake, turns, snapshot)
}

// Validate checks the auditability contract: 3-5 strengths and 3-5 growth
// areas, every statement citing a turn_id present in the log, and every
// growth area paired with a corrective note.
func Validate(fb types.FinalFeedback, turns []types.TurnRecord) error {
	if n := len(fb.Strengths); n < minCitations || n > maxCitations {
		return fmt.Errorf("report has %d strengths, need %d-%d", n, minCitations, maxCitations)
	}
	if n := len(fb.GrowthAreas); n < minCitations || n > maxCitations {
		return fmt.Errorf("report has %d growth areas, need %d-%d", n, minCitations, maxCitations)
	}
	for i, c := range fb.Strengths {
		if err := validateCitation(c, turns, false); err != nil {
			return fmt.Errorf("strength %d: %w", i, err)
		}
	}
	for i, c := range fb.GrowthAreas {
		if err := validateCitation(c, turns, true); err != nil {
			return fmt.Errorf("growth area %d: %w", i, err)
		}
	}
	return nil
}

func validateCitation(c types.TurnCitation, turns []types.TurnRecord, needCorrective bool) error {
	if c.Statement == "" {
		return fmt.Errorf("empty statement")
	}
	if c.TurnID < 1 || c.TurnID > len(turns) {
		return fmt.Errorf("cites turn %d outside log of %d turns", c.TurnID, len(turns))
	}
	if needCorrective && c.CorrectiveNote == "" {
		return fmt.Errorf("gap lacks corrective note")
	}
	return nil
}

// fallback derives the report mechanically from the evidence trail.
func (s *Synthesizer) fallback(intake types.Intake, turns []types.TurnRecord, snapshot types.SkillSnapshot) types.FinalFeedback {
	strengths := evidenceCitations(snapshot, turns, true)
	growth := evidenceCitations(snapshot, turns, false)

	lastTurn := len(turns)
	if lastTurn < 1 {
		lastTurn = 1
	}
	strengths = padCitations(strengths, turns, lastTurn, false)
	growth = padCitations(growth, turns, lastTurn, true)

	gaps := make(map[string]string, len(snapshot.Gaps))
	nextSteps := make([]string, 0, len(snapshot.Gaps))
	for _, skill := range snapshot.Gaps {
		gaps[skill] = correctiveFor(snapshot, skill)
		nextSteps = append(nextSteps, fmt.Sprintf("Close the %s gap: %s", skill, gaps[skill]))
	}
	if len(nextSteps) == 0 {
		nextSteps = append(nextSteps, "Keep practicing system design interviews at the next difficulty rank.")
	}

	return types.FinalFeedback{
		Decision: types.Decision{
			Grade:           intake.GradeTarget,
			Recommendation:  recommendation(snapshot),
			ConfidenceScore: decisionConfidence(snapshot),
		},
		HardSkills: types.HardSkillsFeedback{
			Confirmed:              snapshot.Confirmed,
			GapsWithCorrectAnswers: gaps,
		},
		SoftSkills:  softSkills(turns),
		Roadmap:     types.Roadmap{NextSteps: nextSteps},
		Strengths:   strengths,
		GrowthAreas: growth,
	}
}

// evidenceCitations builds turn-cited statements from the raw evidence trail,
// strongest movements first, one citation per skill.
func evidenceCitations(snapshot types.SkillSnapshot, turns []types.TurnRecord, positive bool) []types.TurnCitation {
	type pick struct {
		skill string
		proof types.SkillProof
	}
	var picks []pick
	for skill, proofs := range snapshot.Evidence {
		best := types.SkillProof{}
		found := false
		for _, p := range proofs {
			if positive && p.Delta <= 0 {
				continue
			}
			if !positive && p.Delta >= 0 {
				continue
			}
			if !found || abs(p.Delta) > abs(best.Delta) {
				best, found = p, true
			}
		}
		if found {
			picks = append(picks, pick{skill: skill, proof: best})
		}
	}
	sort.Slice(picks, func(i, j int) bool {
		di, dj := abs(picks[i].proof.Delta), abs(picks[j].proof.Delta)
		if di != dj {
			return di > dj
		}
		return picks[i].skill < picks[j].skill
	})
	if len(picks) > maxCitations {
		picks = picks[:maxCitations]
	}

	out := make([]types.TurnCitation, 0, len(picks))
	for _, p := range picks {
		turnID := p.proof.TurnID
		if turnID < 1 || turnID > len(turns) {
			continue
		}
		c := types.TurnCitation{TurnID: turnID}
		if positive {
			c.Statement = fmt.Sprintf("Demonstrated %s (score %.2f) on turn %d", p.skill, snapshot.Scores[p.skill], turnID)
		} else {
			c.Statement = fmt.Sprintf("Struggled with %s on turn %d", p.skill, turnID)
			c.CorrectiveNote = correctiveNote(p.proof, p.skill)
		}
		out = append(out, c)
	}
	return out
}

// padCitations tops the list up to the minimum using clean (for strengths)
// or flagged (for growth) turns, falling back to the last turn id.
func padCitations(cs []types.TurnCitation, turns []types.TurnRecord, lastTurn int, corrective bool) []types.TurnCitation {
	for _, t := range turns {
		if len(cs) >= minCitations {
			break
		}
		if corrective != t.Flags.Any() {
			continue
		}
		c := types.TurnCitation{TurnID: t.TurnID}
		if corrective {
			c.Statement = fmt.Sprintf("Answer on %q raised flags on turn %d", t.Topic, t.TurnID)
			c.CorrectiveNote = "Stay on the asked topic and flag uncertainty instead of guessing."
		} else {
			c.Statement = fmt.Sprintf("Engaged constructively on %q on turn %d", t.Topic, t.TurnID)
		}
		cs = append(cs, c)
	}
	for len(cs) < minCitations {
		c := types.TurnCitation{
			TurnID:    lastTurn,
			Statement: fmt.Sprintf("Limited evidence gathered by turn %d", lastTurn),
		}
		if corrective {
			c.CorrectiveNote = "A longer session is needed to separate gaps from unknowns."
		}
		cs = append(cs, c)
	}
	if len(cs) > maxCitations {
		cs = cs[:maxCitations]
	}
	return cs
}

func correctiveNote(proof types.SkillProof, skill string) string {
	if proof.Note != "" {
		return proof.Note
	}
	return fmt.Sprintf("Review %s fundamentals before the next round.", skill)
}

func correctiveFor(snapshot types.SkillSnapshot, skill string) string {
	for _, p := range snapshot.Evidence[skill] {
		if p.Delta < 0 && p.Note != "" {
			return p.Note
		}
	}
	return fmt.Sprintf("Review %s fundamentals before the next round.", skill)
}

func recommendation(snapshot types.SkillSnapshot) string {
	switch {
	case len(snapshot.Confirmed) >= 3 && len(snapshot.Gaps) == 0:
		return "hire"
	case len(snapshot.Confirmed) > len(snapshot.Gaps):
		return "lean_hire"
	case len(snapshot.Confirmed) == len(snapshot.Gaps):
		return "borderline"
	default:
		return "no_hire"
	}
}

func decisionConfidence(snapshot types.SkillSnapshot) float64 {
	assessed := len(snapshot.Evidence)
	if assessed == 0 {
		return 0.1
	}
	conf := 0.4 + 0.1*float64(assessed)
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}

func softSkills(turns []types.TurnRecord) types.SoftSkillsFeedback {
	flagged := 0
	reversals := 0
	examples := []string{}
	for _, t := range turns {
		if t.Flags.Any() {
			flagged++
		}
		if t.Flags.RoleReversal {
			reversals++
			examples = append(examples, fmt.Sprintf("Asked about the team on turn %d", t.TurnID))
		}
	}

	clarity := "Answers stayed on topic and parseable."
	if flagged > 0 {
		clarity = fmt.Sprintf("%d of %d turns raised anomaly flags.", flagged, len(turns))
	}
	honesty := "No hallucinated claims detected."
	for _, t := range turns {
		if t.Flags.Hallucination {
			honesty = fmt.Sprintf("Unverified claims surfaced on turn %d.", t.TurnID)
			break
		}
	}
	engagement := "Held the interview rhythm throughout."
	if reversals > 0 {
		engagement = "Showed curiosity about the team and the role."
	}

	return types.SoftSkillsFeedback{
		Clarity:    clarity,
		Honesty:    honesty,
		Engagement: engagement,
		Examples:   examples,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
