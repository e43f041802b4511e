// Package scenario runs scripted interview simulations: a YAML file supplies
// the intake and the candidate's messages, and the runner drives the engine
// through them exactly as a live session would, stop tokens included.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"techpanel/internal/types"
)

// Scenario is one scripted simulation.
type Scenario struct {
	Intake               types.Intake `yaml:"intake"`
	ScriptedUserMessages []string     `yaml:"scripted_user_messages"`
}

// Load reads and validates a scenario file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to read scenario file: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if err := sc.validate(); err != nil {
		return Scenario{}, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return sc, nil
}

func (s Scenario) validate() error {
	if strings.TrimSpace(s.Intake.ParticipantName) == "" {
		return fmt.Errorf("intake.participant_name is required")
	}
	if strings.TrimSpace(s.Intake.Position) == "" {
		return fmt.Errorf("intake.position is required")
	}
	if _, err := types.ParseGradeTarget(string(s.Intake.GradeTarget)); err != nil {
		return err
	}
	return nil
}
