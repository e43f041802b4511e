// Package config provides YAML-backed configuration for techpanel.
// Defaults cover a full run with no config file; a file at panel.yaml (or the
// --config path) overrides individual fields, and GEMINI_API_KEY wins over
// any configured key.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all techpanel configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM connection shared by all agent profiles
	LLM LLMConfig `yaml:"llm"`

	// Per-agent model profiles
	Agents AgentsConfig `yaml:"agents"`

	// Interview tuning knobs
	Interview InterviewConfig `yaml:"interview"`

	// Session log and archive locations
	Sessions SessionsConfig `yaml:"sessions"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the Gemini connection.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// AgentsConfig holds one profile per collaborator.
type AgentsConfig struct {
	Planner     AgentProfile `yaml:"planner"`
	Observer    AgentProfile `yaml:"observer"`
	Expert      AgentProfile `yaml:"expert"`
	Interviewer AgentProfile `yaml:"interviewer"`
	Report      AgentProfile `yaml:"report"`
}

// AgentProfile defines per-agent model settings.
type AgentProfile struct {
	Model           string  `yaml:"model" json:"model"`
	Temperature     float64 `yaml:"temperature" json:"temperature"` // 0.0-1.0
	MaxRetries      int     `yaml:"max_retries" json:"max_retries"`
	MaxOutputTokens int     `yaml:"max_output_tokens" json:"max_output_tokens"`
}

// InterviewConfig holds the orchestration tuning constants.
//
// RaiseQuality/LowerQuality (difficulty control) and ConfirmThreshold/
// GapThreshold (skill ledger snapshots) are deliberately independent knobs;
// they come from different parts of the source policy and share no rationale.
type InterviewConfig struct {
	InitialDifficulty int `yaml:"initial_difficulty"` // 1..5

	// Difficulty controller cutoffs on answer_quality (0..5).
	RaiseQuality float64 `yaml:"raise_quality"`
	LowerQuality float64 `yaml:"lower_quality"`

	// Skill ledger snapshot thresholds on clamped scores (0..1).
	ConfirmThreshold float64 `yaml:"confirm_threshold"`
	GapThreshold     float64 `yaml:"gap_threshold"`

	// Per-turn skills_delta magnitude cap.
	MaxSkillDelta float64 `yaml:"max_skill_delta"`

	// Question generation budget (characters) and prompt context limits.
	QuestionCharBudget int `yaml:"question_char_budget"`
	RecentTurnWindow   int `yaml:"recent_turn_window"`
	ContextStringLimit int `yaml:"context_string_limit"`
}

// SessionsConfig configures where run logs and the archive live.
type SessionsConfig struct {
	RunsDir     string `yaml:"runs_dir"`
	ArchivePath string `yaml:"archive_path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "techpanel",
		Version: "0.3.0",

		LLM: LLMConfig{
			Timeout: "120s",
		},

		Agents: AgentsConfig{
			Planner:     applyAgentDefaults(AgentProfile{}),
			Observer:    applyAgentDefaults(AgentProfile{Temperature: 0.2}),
			Expert:      applyAgentDefaults(AgentProfile{}),
			Interviewer: applyAgentDefaults(AgentProfile{Temperature: 0.4}),
			Report:      applyAgentDefaults(AgentProfile{}),
		},

		Interview: InterviewConfig{
			InitialDifficulty:  3,
			RaiseQuality:       4.0,
			LowerQuality:       2.0,
			ConfirmThreshold:   0.6,
			GapThreshold:       0.2,
			MaxSkillDelta:      0.4,
			QuestionCharBudget: 600,
			RecentTurnWindow:   5,
			ContextStringLimit: 800,
		},

		Sessions: SessionsConfig{
			RunsDir:     "runs",
			ArchivePath: "runs/archive.db",
		},

		Logging: LoggingConfig{
			Level: "info",
			File:  "techpanel.log",
		},
	}
}

// applyAgentDefaults fills in zero values with defaults.
func applyAgentDefaults(p AgentProfile) AgentProfile {
	if p.Model == "" {
		p.Model = "gemini-2.5-flash"
	}
	if p.Temperature == 0 {
		p.Temperature = 0.2
	}
	if p.MaxRetries == 0 {
		p.MaxRetries = 2
	}
	if p.MaxOutputTokens == 0 {
		p.MaxOutputTokens = 4096
	}
	return p
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.normalize()
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// normalize re-applies defaults to any field a config file zeroed out.
func (c *Config) normalize() {
	def := DefaultConfig()

	c.Agents.Planner = applyAgentDefaults(c.Agents.Planner)
	c.Agents.Observer = applyAgentDefaults(c.Agents.Observer)
	c.Agents.Expert = applyAgentDefaults(c.Agents.Expert)
	c.Agents.Interviewer = applyAgentDefaults(c.Agents.Interviewer)
	c.Agents.Report = applyAgentDefaults(c.Agents.Report)

	iv := &c.Interview
	if iv.InitialDifficulty < 1 || iv.InitialDifficulty > 5 {
		iv.InitialDifficulty = def.Interview.InitialDifficulty
	}
	if iv.RaiseQuality == 0 {
		iv.RaiseQuality = def.Interview.RaiseQuality
	}
	if iv.LowerQuality == 0 {
		iv.LowerQuality = def.Interview.LowerQuality
	}
	if iv.ConfirmThreshold == 0 {
		iv.ConfirmThreshold = def.Interview.ConfirmThreshold
	}
	if iv.GapThreshold == 0 {
		iv.GapThreshold = def.Interview.GapThreshold
	}
	if iv.MaxSkillDelta == 0 {
		iv.MaxSkillDelta = def.Interview.MaxSkillDelta
	}
	if iv.QuestionCharBudget == 0 {
		iv.QuestionCharBudget = def.Interview.QuestionCharBudget
	}
	if iv.RecentTurnWindow == 0 {
		iv.RecentTurnWindow = def.Interview.RecentTurnWindow
	}
	if iv.ContextStringLimit == 0 {
		iv.ContextStringLimit = def.Interview.ContextStringLimit
	}

	if c.Sessions.RunsDir == "" {
		c.Sessions.RunsDir = def.Sessions.RunsDir
	}
	if c.Sessions.ArchivePath == "" {
		c.Sessions.ArchivePath = def.Sessions.ArchivePath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}

// applyEnvOverrides lets environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
	}
	if dir := os.Getenv("TECHPANEL_RUNS_DIR"); dir != "" {
		c.Sessions.RunsDir = dir
	}
	if path := os.Getenv("TECHPANEL_ARCHIVE"); path != "" {
		c.Sessions.ArchivePath = path
	}
}
