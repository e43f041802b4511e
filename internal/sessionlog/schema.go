package sessionlog

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Log is the run-log document. The schema is closed: exactly these keys,
// exactly these types. Downstream graders parse it mechanically, so an extra
// or missing key is an error, not a warning.
type Log struct {
	ParticipantName string      `json:"participant_name"`
	Turns           []TurnEntry `json:"turns"`
	FinalFeedback   string      `json:"final_feedback"`
}

// TurnEntry is the per-turn projection written to the run log.
type TurnEntry struct {
	TurnID              int    `json:"turn_id"`
	AgentVisibleMessage string `json:"agent_visible_message"`
	UserMessage         string `json:"user_message"`
	InternalThoughts    string `json:"internal_thoughts"`
}

var topLevelKeys = []string{"participant_name", "turns", "final_feedback"}
var turnKeys = []string{"turn_id", "agent_visible_message", "user_message", "internal_thoughts"}

// ValidateSchema checks a serialized run log against the closed schema.
func ValidateSchema(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return fmt.Errorf("log is not a JSON object: %w", err)
	}
	if err := exactKeys(top, topLevelKeys, "top-level"); err != nil {
		return err
	}

	var name string
	if err := json.Unmarshal(top["participant_name"], &name); err != nil {
		return fmt.Errorf("participant_name must be a string: %w", err)
	}
	var feedback string
	if err := json.Unmarshal(top["final_feedback"], &feedback); err != nil {
		return fmt.Errorf("final_feedback must be a string: %w", err)
	}

	var turns []map[string]json.RawMessage
	if err := json.Unmarshal(top["turns"], &turns); err != nil {
		return fmt.Errorf("turns must be a list of objects: %w", err)
	}
	for i, turn := range turns {
		if err := exactKeys(turn, turnKeys, fmt.Sprintf("turn %d", i)); err != nil {
			return err
		}
		var id int
		if err := json.Unmarshal(turn["turn_id"], &id); err != nil {
			return fmt.Errorf("turn %d: turn_id must be an integer: %w", i, err)
		}
		for _, key := range []string{"agent_visible_message", "user_message", "internal_thoughts"} {
			var s string
			if err := json.Unmarshal(turn[key], &s); err != nil {
				return fmt.Errorf("turn %d: %s must be a string: %w", i, key, err)
			}
		}
	}
	return nil
}

// exactKeys rejects both missing and extra keys.
func exactKeys(obj map[string]json.RawMessage, want []string, where string) error {
	var missing, extra []string
	for _, key := range want {
		if _, ok := obj[key]; !ok {
			missing = append(missing, key)
		}
	}
	allowed := make(map[string]struct{}, len(want))
	for _, key := range want {
		allowed[key] = struct{}{}
	}
	for key := range obj {
		if _, ok := allowed[key]; !ok {
			extra = append(extra, key)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(missing)
		sort.Strings(extra)
		return fmt.Errorf("invalid log schema (%s keys): missing %v, extra %v", where, missing, extra)
	}
	return nil
}
