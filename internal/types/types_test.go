package types

import (
	"encoding/json"
	"testing"
)

func TestParseGradeTarget(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		want    GradeTarget
		wantErr bool
	}{
		{"middle", GradeMiddle, false},
		{"  Senior ", GradeSenior, false},
		{"PRINCIPAL", GradePrincipal, false},
		{"architect", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseGradeTarget(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseGradeTarget(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGradeTarget(%q): %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseGradeTarget(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNextAction_Valid(t *testing.T) {
	t.Parallel()

	valid := []NextAction{
		ActionAskDeeper, ActionAskEasier, ActionChangeTopic, ActionHandleOfftopic,
		ActionHandleHallucination, ActionHandleRoleReversal, ActionWrapUp,
	}
	for _, a := range valid {
		if !a.Valid() {
			t.Errorf("%q should be valid", a)
		}
	}
	if NextAction("ASK_HARDER").Valid() {
		t.Error("ASK_HARDER should not be valid")
	}
}

func TestExpertRole_Valid(t *testing.T) {
	t.Parallel()

	for _, r := range []ExpertRole{RoleTechLead, RoleTeamLead, RoleQA, RoleDesigner, RoleAnalyst} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if ExpertRole("cto").Valid() {
		t.Error("cto should not be valid")
	}
}

func TestFlags_String(t *testing.T) {
	t.Parallel()

	f := Flags{Hallucination: true, RoleReversal: true}
	got := f.String()
	want := "off_topic=false, hallucination=true, contradiction=false, role_reversal=true"
	if got != want {
		t.Errorf("Flags.String() = %q, want %q", got, want)
	}
	if !f.Any() {
		t.Error("Any() should be true")
	}
	if (Flags{}).Any() {
		t.Error("zero Flags should report Any()==false")
	}
}

func TestExpertEvaluation_Note(t *testing.T) {
	t.Parallel()

	e := ExpertEvaluation{Role: RoleQA, Comment: "Coverage claim is shaky.", Question: "Какой у вас процент покрытия?"}
	want := "Coverage claim is shaky. Уточняющий вопрос: Какой у вас процент покрытия?"
	if got := e.Note(); got != want {
		t.Errorf("Note() = %q, want %q", got, want)
	}

	e = ExpertEvaluation{Role: RoleQA, Comment: "  Solid answer.  "}
	if got := e.Note(); got != "Solid answer." {
		t.Errorf("Note() without question = %q", got)
	}
}

func TestObserverReport_JSONRoundtrip(t *testing.T) {
	t.Parallel()

	report := ObserverReport{
		DetectedTopic:            "goroutines",
		AnswerQuality:            4.5,
		Confidence:               0.8,
		Flags:                    Flags{OffTopic: true},
		RecommendedNextAction:    ActionChangeTopic,
		RecommendedQuestionStyle: "scenario",
		SkillsDelta:              map[string]float64{"async": 0.3},
	}
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back ObserverReport
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.RecommendedNextAction != ActionChangeTopic || !back.Flags.OffTopic {
		t.Errorf("roundtrip mismatch: %+v", back)
	}
}
