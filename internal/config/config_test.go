package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "techpanel", cfg.Name)
	assert.Equal(t, 3, cfg.Interview.InitialDifficulty)
	assert.Equal(t, 4.0, cfg.Interview.RaiseQuality)
	assert.Equal(t, 2.0, cfg.Interview.LowerQuality)
	assert.Equal(t, 0.6, cfg.Interview.ConfirmThreshold)
	assert.Equal(t, 0.2, cfg.Interview.GapThreshold)
	assert.Equal(t, "gemini-2.5-flash", cfg.Agents.Observer.Model)
	assert.Equal(t, 2, cfg.Agents.Planner.MaxRetries)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Interview, cfg.Interview)
}

func TestLoad_FileOverridesAndNormalize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panel.yaml")
	body := `
interview:
  initial_difficulty: 2
  confirm_threshold: 0.7
agents:
  observer:
    model: gemini-2.5-pro
    temperature: 0.1
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Interview.InitialDifficulty)
	assert.Equal(t, 0.7, cfg.Interview.ConfirmThreshold)
	// Unspecified fields fall back to defaults.
	assert.Equal(t, 0.2, cfg.Interview.GapThreshold)
	assert.Equal(t, 600, cfg.Interview.QuestionCharBudget)
	assert.Equal(t, "gemini-2.5-pro", cfg.Agents.Observer.Model)
	assert.Equal(t, 0.1, cfg.Agents.Observer.Temperature)
	assert.Equal(t, "gemini-2.5-flash", cfg.Agents.Planner.Model)
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key-123")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "test-key-123", cfg.LLM.APIKey)
}

func TestSaveRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "panel.yaml")

	cfg := DefaultConfig()
	cfg.Interview.InitialDifficulty = 4
	require.NoError(t, cfg.Save(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, back.Interview.InitialDifficulty)
}
