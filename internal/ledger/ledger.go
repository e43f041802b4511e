// Package ledger tracks per-skill confidence scores across an interview
// session. Scores move by signed evidence deltas and stay clamped to [0,1];
// the raw delta is always preserved in the evidence trail so the record stays
// auditable even when clamping absorbed part of the movement.
package ledger

import (
	"sort"

	"techpanel/internal/types"
)

// BaselineSkills is the seed vocabulary for a backend interview session.
// Observer reports may introduce further skills at any time.
var BaselineSkills = []string{
	"python_basics",
	"async",
	"db_modeling",
	"queues",
	"observability",
	"architecture",
	"testing",
	"rag_langchain",
}

// Entry is the running state for one skill.
type Entry struct {
	Score    float64
	Evidence []types.SkillProof
}

// Ledger owns the per-skill entries for a single session. It is not safe for
// concurrent use; the orchestration engine is its sole owner.
type Ledger struct {
	entries map[string]*Entry
}

// New returns a ledger seeded with the given skills at score 0.0.
func New(baseline []string) *Ledger {
	l := &Ledger{entries: make(map[string]*Entry, len(baseline))}
	for _, skill := range baseline {
		l.entries[skill] = &Entry{}
	}
	return l
}

// Apply folds a turn's skills_delta into the ledger. Each new score is
// clamped to [0,1]; the evidence record keeps the raw delta regardless.
// Skills not mentioned keep their last score untouched.
func (l *Ledger) Apply(deltas map[string]float64, turnID int, note string) {
	for skill, delta := range deltas {
		entry, ok := l.entries[skill]
		if !ok {
			entry = &Entry{}
			l.entries[skill] = entry
		}
		entry.Score = clamp(entry.Score+delta, 0.0, 1.0)
		entry.Evidence = append(entry.Evidence, types.SkillProof{
			TurnID: turnID,
			Delta:  delta,
			Note:   note,
		})
	}
}

// Score returns the current clamped score for a skill.
func (l *Ledger) Score(skill string) (float64, bool) {
	entry, ok := l.entries[skill]
	if !ok {
		return 0, false
	}
	return entry.Score, true
}

// Confirmed returns all skills with score >= threshold, sorted by name.
func (l *Ledger) Confirmed(threshold float64) []string {
	var out []string
	for skill, entry := range l.entries {
		if entry.Score >= threshold {
			out = append(out, skill)
		}
	}
	sort.Strings(out)
	return out
}

// Gaps returns all skills with score <= threshold, sorted by name. Only
// skills with at least one evidence record count: an untouched baseline skill
// is unknown, not a demonstrated gap.
func (l *Ledger) Gaps(threshold float64) []string {
	var out []string
	for skill, entry := range l.entries {
		if len(entry.Evidence) > 0 && entry.Score <= threshold {
			out = append(out, skill)
		}
	}
	sort.Strings(out)
	return out
}

// Snapshot builds the immutable view handed to the report writer.
func (l *Ledger) Snapshot(confirmThreshold, gapThreshold float64) types.SkillSnapshot {
	snap := types.SkillSnapshot{
		Scores:    make(map[string]float64, len(l.entries)),
		Confirmed: l.Confirmed(confirmThreshold),
		Gaps:      l.Gaps(gapThreshold),
		Evidence:  make(map[string][]types.SkillProof),
	}
	for skill, entry := range l.entries {
		snap.Scores[skill] = entry.Score
		if len(entry.Evidence) > 0 {
			proofs := make([]types.SkillProof, len(entry.Evidence))
			copy(proofs, entry.Evidence)
			snap.Evidence[skill] = proofs
		}
	}
	return snap
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
