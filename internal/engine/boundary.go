package engine

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"techpanel/internal/types"
)

// Boundary repair for collaborator output. Malformed structures are repaired
// to safe defaults here, at the edge, so the router and the controllers only
// ever see well-formed values. The one fatal boundary violation — a topic
// plan of the wrong length — is rejected in NewState instead.

// maxExpertRoles is the per-turn expert selection limit.
const maxExpertRoles = 2

// maxSkillDeltaEntries caps how many skills one report may move.
const maxSkillDeltaEntries = 3

// sanitizeDecision validates the routing decision. Unknown roles are dropped,
// duplicates collapse, and a selection larger than the limit is malformed as
// a whole and degrades to the safe default: no experts this turn. When a
// contradictory decision sets both ask_deeper and advance_topic, advancing
// wins.
func sanitizeDecision(d types.ObserverDecision, log *zap.Logger) types.ObserverDecision {
	valid := make([]types.ExpertRole, 0, len(d.ExpertRoles))
	for _, role := range dedupeRoles(d.ExpertRoles) {
		if role.Valid() {
			valid = append(valid, role)
			continue
		}
		log.Warn("dropping unknown expert role", zap.String("role", string(role)))
	}
	if len(valid) > maxExpertRoles {
		log.Warn("expert selection exceeds limit, dropping all",
			zap.Int("selected", len(valid)), zap.Int("limit", maxExpertRoles))
		valid = nil
	}
	d.ExpertRoles = valid

	if d.AskDeeper && d.AdvanceTopic {
		d.AskDeeper = false
	}
	return d
}

// sanitizeReport clamps numeric fields, repairs the recommended action, and
// bounds the skills delta. maxDelta caps each entry's magnitude.
func sanitizeReport(r types.ObserverReport, currentTopic string, maxDelta float64, log *zap.Logger) types.ObserverReport {
	r.AnswerQuality = clampFloat(r.AnswerQuality, 0, 5)
	r.Confidence = clampFloat(r.Confidence, 0, 1)

	if r.DetectedTopic == "" {
		r.DetectedTopic = currentTopic
	}

	if !r.RecommendedNextAction.Valid() {
		log.Warn("repairing unknown next action",
			zap.String("action", string(r.RecommendedNextAction)))
		r.RecommendedNextAction = actionFromFlags(r.Flags)
	}

	r.SkillsDelta = boundSkillsDelta(r.SkillsDelta, maxDelta)
	return r
}

// actionFromFlags picks a replacement action honoring flag priority.
func actionFromFlags(flags types.Flags) types.NextAction {
	switch {
	case flags.RoleReversal:
		return types.ActionHandleRoleReversal
	case flags.OffTopic:
		return types.ActionHandleOfftopic
	case flags.Hallucination:
		return types.ActionHandleHallucination
	default:
		return types.ActionAskDeeper
	}
}

// boundSkillsDelta clamps each delta into [-maxDelta, +maxDelta] and keeps at
// most maxSkillDeltaEntries entries, preferring the largest movements.
func boundSkillsDelta(deltas map[string]float64, maxDelta float64) map[string]float64 {
	if len(deltas) == 0 {
		return nil
	}
	bounded := make(map[string]float64, len(deltas))
	for skill, delta := range deltas {
		bounded[skill] = clampFloat(delta, -maxDelta, maxDelta)
	}
	if len(bounded) <= maxSkillDeltaEntries {
		return bounded
	}

	skills := make([]string, 0, len(bounded))
	for skill := range bounded {
		skills = append(skills, skill)
	}
	sort.Slice(skills, func(i, j int) bool {
		di, dj := math.Abs(bounded[skills[i]]), math.Abs(bounded[skills[j]])
		if di != dj {
			return di > dj
		}
		return skills[i] < skills[j]
	})
	trimmed := make(map[string]float64, maxSkillDeltaEntries)
	for _, skill := range skills[:maxSkillDeltaEntries] {
		trimmed[skill] = bounded[skill]
	}
	return trimmed
}

// kickoffDefaults returns the prescribed decision and report for the first
// turn, before any candidate answer exists: probe the opening topic, no
// experts, no flags, neutral quality so the difficulty controller holds.
func kickoffDefaults(topic string) (types.ObserverDecision, types.ObserverReport) {
	decision := types.ObserverDecision{AskDeeper: true}
	report := types.ObserverReport{
		DetectedTopic:            topic,
		AnswerQuality:            3.0,
		Confidence:               1.0,
		Flags:                    types.Flags{},
		RecommendedNextAction:    types.ActionAskDeeper,
		RecommendedQuestionStyle: "opening",
	}
	return decision, report
}

// syntheticReport is the degraded fallback when the observer call itself
// fails mid-session: keep the interview moving on the current topic without
// touching difficulty or the ledger.
func syntheticReport(topic string) (types.ObserverDecision, types.ObserverReport) {
	decision := types.ObserverDecision{AskDeeper: true}
	report := types.ObserverReport{
		DetectedTopic:            topic,
		AnswerQuality:            3.0,
		Confidence:               0.0,
		RecommendedNextAction:    types.ActionAskDeeper,
		RecommendedQuestionStyle: "clarifying",
	}
	return decision, report
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
