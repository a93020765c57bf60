package director

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kestrelworks/director/internal/director/focus"
)

// populatedWireConfig returns a wireConfig with every section set to a
// non-default value, so a round trip through YAML can't pass by accident
// via zero values matching zero values.
func populatedWireConfig() wireConfig {
	var w wireConfig
	w.EventWeights.BaseScores = map[string]float64{"betrayal": 0.95, "movement": 0.05}
	w.EventWeights.SubtypeModifiers = map[string]float64{"public": 1.2}
	w.EventWeights.DramaTagScores = map[string]float64{"leader_involved": 0.8}

	w.Focus.MinTensionSeverity = 0.4
	w.Focus.MaxConcurrentThreads = 2
	w.Focus.ThreadFatigueThresholdTicks = 4000
	w.Focus.FatigueMultiplier = 0.6
	w.Focus.MinEventScore = 0.2
	w.Focus.FocusContinuityBoost = 0.15

	w.Commentary.MaxQueueSize = 8
	w.Commentary.MinDramaForCaption = 0.45
	w.Commentary.BaseDisplayDurationTicks = 150
	w.Commentary.TicksPerCharacter = 2.5
	w.Commentary.CommentaryCooldownTicks = 300
	w.Commentary.EnableDramaticIrony = true
	w.Commentary.EnableTensionTeasers = true
	w.Commentary.EnableContextReminders = true

	w.Threads.MinSeverityForThread = 0.35
	w.Threads.DormantThresholdTicks = 2500
	w.Threads.MaxThreads = 6

	w.Director.ForesightTicks = 800
	w.Director.EnableHighlights = true
	w.Director.MinHighlightScore = 0.6
	w.Director.DefaultCameraMode = "high_activity"
	return w
}

// TestWireConfigYAMLRoundTrip exercises the wire shape config.go actually
// (de)serializes: marshal it to YAML and parse it back, every section
// populated, and expect an identical value (spec §8's "Config round-trip",
// mirroring the original DirectorConfig's to_toml/from_str round trip).
func TestWireConfigYAMLRoundTrip(t *testing.T) {
	original := populatedWireConfig()

	data, err := yaml.Marshal(original)
	require.NoError(t, err)

	var roundTripped wireConfig
	require.NoError(t, yaml.Unmarshal(data, &roundTripped))

	require.Equal(t, original, roundTripped)
}

// TestLoadParsesYAMLFileIntoConfig exercises the full path a deployed
// director_config.yaml takes: wireConfig -> YAML bytes -> file -> Load ->
// resolved Config, checking values from every section land correctly.
func TestLoadParsesYAMLFileIntoConfig(t *testing.T) {
	data, err := yaml.Marshal(populatedWireConfig())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "director.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 0.95, cfg.EventWeights.BaseScores["betrayal"])
	require.Equal(t, map[string]float64{"public": 1.2}, cfg.EventWeights.SubtypeModifiers)
	require.Equal(t, map[string]float64{"leader_involved": 0.8}, cfg.EventWeights.DramaTagScores)

	require.Equal(t, 0.4, cfg.Focus.MinTensionSeverity)
	require.Equal(t, 2, cfg.Focus.MaxConcurrentThreads)
	require.Equal(t, int64(4000), cfg.Thread.FatigueThresholdTicks)
	require.Equal(t, 0.6, cfg.Focus.FatigueMultiplier)
	require.Equal(t, 0.2, cfg.Focus.MinEventScore)
	require.Equal(t, 0.15, cfg.Focus.FocusContinuityBoost)

	require.Equal(t, 8, cfg.Commentary.MaxQueueSize)
	require.Equal(t, 0.45, cfg.Commentary.MinDramaForCaption)
	require.Equal(t, int64(150), cfg.Commentary.BaseDisplayDurationTicks)
	require.Equal(t, 2.5, cfg.Commentary.TicksPerCharacter)
	require.Equal(t, int64(300), cfg.Commentary.CooldownTicks)
	require.True(t, cfg.Commentary.EnableDramaticIrony)
	require.True(t, cfg.Commentary.EnableTensionTeasers)
	require.True(t, cfg.Commentary.EnableContextReminders)

	require.Equal(t, 0.35, cfg.Thread.MinSeverityForThread)
	require.Equal(t, int64(2500), cfg.Thread.DormantThresholdTicks)
	require.Equal(t, 6, cfg.Thread.MaxThreads)

	require.Equal(t, int64(800), cfg.ForesightTicks)
	require.True(t, cfg.EnableHighlights)
	require.Equal(t, 0.6, cfg.MinHighlightScore)
	require.Equal(t, focus.DefaultModeHighActivity, cfg.Focus.DefaultCameraMode)

	require.NoError(t, cfg.Validate())
}

// TestDefaultConfigValidates ensures DefaultConfig (the zero-file Load path)
// always satisfies its own Validate, the same invariant
// test_general_config_default checked in the original implementation.
func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}
