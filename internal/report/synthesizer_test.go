package report

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techpanel/internal/types"
)

type writerFunc func(ctx context.Context, snapshot types.SkillSnapshot, turns []types.TurnRecord) (types.FinalFeedback, error)

func (f writerFunc) Write(ctx context.Context, snapshot types.SkillSnapshot, turns []types.TurnRecord) (types.FinalFeedback, error) {
	return f(ctx, snapshot, turns)
}

func sampleTurns(n int) []types.TurnRecord {
	turns := make([]types.TurnRecord, n)
	for i := range turns {
		turns[i] = types.TurnRecord{
			TurnID:              i + 1,
			AgentVisibleMessage: fmt.Sprintf("Вопрос %d", i+1),
			UserMessage:         fmt.Sprintf("Ответ %d", i+1),
			Topic:               fmt.Sprintf("тема %d", i+1),
		}
	}
	return turns
}

func citations(n int, corrective bool) []types.TurnCitation {
	cs := make([]types.TurnCitation, n)
	for i := range cs {
		cs[i] = types.TurnCitation{TurnID: i + 1, Statement: fmt.Sprintf("утверждение %d", i+1)}
		if corrective {
			cs[i].CorrectiveNote = "правильный ответ"
		}
	}
	return cs
}

func validDraft() types.FinalFeedback {
	return types.FinalFeedback{
		Decision:    types.Decision{Recommendation: "hire", ConfidenceScore: 0.8},
		Strengths:   citations(3, false),
		GrowthAreas: citations(3, true),
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	turns := sampleTurns(5)

	cases := []struct {
		name    string
		mutate  func(*types.FinalFeedback)
		wantErr string
	}{
		{"valid draft passes", func(fb *types.FinalFeedback) {}, ""},
		{
			"too few strengths",
			func(fb *types.FinalFeedback) { fb.Strengths = fb.Strengths[:2] },
			"strengths",
		},
		{
			"too many growth areas",
			func(fb *types.FinalFeedback) { fb.GrowthAreas = citations(6, true) },
			"growth areas",
		},
		{
			"citation outside the log",
			func(fb *types.FinalFeedback) { fb.Strengths[0].TurnID = 99 },
			"outside log",
		},
		{
			"zero turn id rejected",
			func(fb *types.FinalFeedback) { fb.GrowthAreas[1].TurnID = 0 },
			"outside log",
		},
		{
			"growth area without corrective note",
			func(fb *types.FinalFeedback) { fb.GrowthAreas[0].CorrectiveNote = "" },
			"corrective note",
		},
		{
			"empty statement",
			func(fb *types.FinalFeedback) { fb.Strengths[2].Statement = "" },
			"empty statement",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fb := validDraft()
			tc.mutate(&fb)
			err := Validate(fb, turns)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSynthesizeAcceptsValidDraft(t *testing.T) {
	t.Parallel()

	turns := sampleTurns(5)
	draft := validDraft()
	writer := writerFunc(func(context.Context, types.SkillSnapshot, []types.TurnRecord) (types.FinalFeedback, error) {
		return draft, nil
	})
	s := NewSynthesizer(writer, nil)

	got := s.Synthesize(context.Background(), types.Intake{}, turns, types.SkillSnapshot{})
	assert.Equal(t, "hire", got.Decision.Recommendation)
	assert.Equal(t, draft.Strengths, got.Strengths)
}

func TestSynthesizeFallsBackOnWriterError(t *testing.T) {
	t.Parallel()

	writer := writerFunc(func(context.Context, types.SkillSnapshot, []types.TurnRecord) (types.FinalFeedback, error) {
		return types.FinalFeedback{}, errors.New("model unavailable")
	})
	s := NewSynthesizer(writer, nil)

	got := s.Synthesize(context.Background(), types.Intake{GradeTarget: types.GradeMiddle}, sampleTurns(4), types.SkillSnapshot{})
	require.NoError(t, Validate(got, sampleTurns(4)), "fallback must satisfy its own contract")
	assert.Equal(t, types.GradeMiddle, got.Decision.Grade)
}

func TestSynthesizeFallsBackOnInvalidDraft(t *testing.T) {
	t.Parallel()

	writer := writerFunc(func(context.Context, types.SkillSnapshot, []types.TurnRecord) (types.FinalFeedback, error) {
		fb := validDraft()
		fb.Strengths[0].TurnID = 42 // cites a turn that never happened
		return fb, nil
	})
	s := NewSynthesizer(writer, nil)

	turns := sampleTurns(3)
	got := s.Synthesize(context.Background(), types.Intake{}, turns, types.SkillSnapshot{})
	require.NoError(t, Validate(got, turns))
	for _, c := range got.Strengths {
		assert.LessOrEqual(t, c.TurnID, len(turns))
	}
}

func TestFallbackCitesEvidenceTurns(t *testing.T) {
	t.Parallel()

	turns := sampleTurns(6)
	snapshot := types.SkillSnapshot{
		Scores:    map[string]float64{"async": 0.85, "queues": 0.1},
		Confirmed: []string{"async"},
		Gaps:      []string{"queues"},
		Evidence: map[string][]types.SkillProof{
			"async": {
				{TurnID: 2, Delta: 0.2},
				{TurnID: 4, Delta: 0.35, Note: "уверенный разбор event loop"},
			},
			"queues": {
				{TurnID: 5, Delta: -0.3, Note: "путает at-least-once и exactly-once"},
			},
		},
	}
	s := NewSynthesizer(nil, nil)

	got := s.Synthesize(context.Background(), types.Intake{}, turns, snapshot)
	require.NoError(t, Validate(got, turns))

	// Strongest positive movement is cited first.
	assert.Equal(t, 4, got.Strengths[0].TurnID)
	assert.Contains(t, got.Strengths[0].Statement, "async")

	assert.Equal(t, 5, got.GrowthAreas[0].TurnID)
	assert.Equal(t, "путает at-least-once и exactly-once", got.GrowthAreas[0].CorrectiveNote)

	assert.Equal(t, []string{"async"}, got.HardSkills.Confirmed)
	assert.Contains(t, got.HardSkills.GapsWithCorrectAnswers, "queues")
	assert.Contains(t, got.Roadmap.NextSteps[0], "queues")
}

func TestFallbackAlwaysProducesReport(t *testing.T) {
	t.Parallel()

	// Single kickoff turn, empty ledger: the minimum citation count still holds.
	s := NewSynthesizer(nil, nil)
	turns := sampleTurns(1)

	got := s.Synthesize(context.Background(), types.Intake{}, turns, types.SkillSnapshot{})
	require.NoError(t, Validate(got, turns))
	assert.Equal(t, 0.1, got.Decision.ConfidenceScore, "no evidence means minimal confidence")
	assert.NotEmpty(t, got.Roadmap.NextSteps)
}

func TestRecommendationBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		confirmed []string
		gaps      []string
		want      string
	}{
		{"strong pass", []string{"a", "b", "c"}, nil, "hire"},
		{"more confirmed than gaps", []string{"a", "b"}, []string{"c"}, "lean_hire"},
		{"even split", []string{"a"}, []string{"b"}, "borderline"},
		{"gaps dominate", []string{"a"}, []string{"b", "c"}, "no_hire"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := recommendation(types.SkillSnapshot{Confirmed: tc.confirmed, Gaps: tc.gaps})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSoftSkillsReflectFlags(t *testing.T) {
	t.Parallel()

	turns := sampleTurns(3)
	turns[1].Flags = types.Flags{Hallucination: true}
	turns[2].Flags = types.Flags{RoleReversal: true}

	got := softSkills(turns)
	assert.Contains(t, got.Clarity, "2 of 3")
	assert.Contains(t, got.Honesty, "turn 2")
	assert.Contains(t, got.Engagement, "curiosity")
	require.Len(t, got.Examples, 1)
	assert.Contains(t, got.Examples[0], "turn 3")
}
