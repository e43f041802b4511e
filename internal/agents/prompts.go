package agents

import (
	"embed"
	"fmt"

	"techpanel/internal/types"
)

// System prompts are baked into the binary so a deployed panel has no
// filesystem dependency on a prompts directory.
//
//go:embed prompts
var promptFS embed.FS

// loadPrompt reads an embedded system prompt. The prompt set is fixed at
// compile time, so a missing file is a programming error.
func loadPrompt(name string) string {
	data, err := promptFS.ReadFile("prompts/" + name + ".md")
	if err != nil {
		panic(fmt.Sprintf("embedded prompt %q missing: %v", name, err))
	}
	return string(data)
}

var expertPromptByRole = map[types.ExpertRole]string{
	types.RoleTechLead: "expert_tech_lead_system",
	types.RoleTeamLead: "expert_team_lead_system",
	types.RoleQA:       "expert_qa_system",
	types.RoleDesigner: "expert_designer_system",
	types.RoleAnalyst:  "expert_analyst_system",
}
