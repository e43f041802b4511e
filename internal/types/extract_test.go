package types

import (
	"testing"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "fenced json",
			input: "```json\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "anonymous fence",
			input: "```\n[1, 2]\n```",
			want:  `[1, 2]`,
		},
		{
			name:  "leading prose",
			input: "Here is the report:\n{\"topic\": \"db\", \"nested\": {\"x\": 2}} trailing",
			want:  `{"topic": "db", "nested": {"x": 2}}`,
		},
		{
			name:  "braces inside strings",
			input: `{"comment": "use {} literals", "q": "why?"}`,
			want:  `{"comment": "use {} literals", "q": "why?"}`,
		},
		{
			name:    "no payload",
			input:   "I cannot answer that.",
			wantErr: true,
		},
		{
			name:    "unbalanced",
			input:   `{"a": {"b": 1}`,
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "   ",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ExtractJSON(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSON: %v", err)
			}
			if got != tc.want {
				t.Errorf("ExtractJSON = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	var decision ObserverDecision
	raw := "```json\n{\"ask_deeper\": true, \"expert_roles\": [\"qa\", \"tech_lead\"]}\n```"
	if err := DecodeJSON(raw, &decision); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if !decision.AskDeeper || len(decision.ExpertRoles) != 2 {
		t.Errorf("decoded decision mismatch: %+v", decision)
	}
	if decision.ExpertRoles[0] != RoleQA {
		t.Errorf("role order not preserved: %+v", decision.ExpertRoles)
	}

	if err := DecodeJSON("{不正}", &decision); err == nil {
		t.Error("expected decode error for malformed payload")
	}
}
