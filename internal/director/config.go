package director

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kestrelworks/director/internal/director/commentary"
	"github.com/kestrelworks/director/internal/director/event"
	"github.com/kestrelworks/director/internal/director/focus"
	"github.com/kestrelworks/director/internal/director/scoring"
	"github.com/kestrelworks/director/internal/director/thread"
)

// wireConfig mirrors spec §6's configuration section names exactly, for
// YAML (de)serialization. The Director's own Config (below) is built from
// this plus cross-cutting defaults, the way the teacher's config.Config
// separates wire shape from the values callers actually use.
type wireConfig struct {
	EventWeights struct {
		BaseScores       map[string]float64 `yaml:"base_scores"`
		SubtypeModifiers map[string]float64 `yaml:"subtype_modifiers"`
		DramaTagScores   map[string]float64 `yaml:"drama_tag_scores"`
	} `yaml:"event_weights"`

	Focus struct {
		MinTensionSeverity       float64 `yaml:"min_tension_severity"`
		MaxConcurrentThreads     int     `yaml:"max_concurrent_threads"`
		ThreadFatigueThresholdTicks int64 `yaml:"thread_fatigue_threshold_ticks"`
		FatigueMultiplier        float64 `yaml:"fatigue_multiplier"`
		MinEventScore            float64 `yaml:"min_event_score"`
		FocusContinuityBoost     float64 `yaml:"focus_continuity_boost"`
	} `yaml:"focus"`

	Commentary struct {
		MaxQueueSize             int     `yaml:"max_queue_size"`
		MinDramaForCaption       float64 `yaml:"min_drama_for_caption"`
		BaseDisplayDurationTicks int64   `yaml:"base_display_duration_ticks"`
		TicksPerCharacter        float64 `yaml:"ticks_per_character"`
		CommentaryCooldownTicks  int64   `yaml:"commentary_cooldown_ticks"`
		EnableDramaticIrony      bool    `yaml:"enable_dramatic_irony"`
		EnableTensionTeasers     bool    `yaml:"enable_tension_teasers"`
		EnableContextReminders   bool    `yaml:"enable_context_reminders"`
	} `yaml:"commentary"`

	Threads struct {
		MinSeverityForThread  float64 `yaml:"min_severity_for_thread"`
		DormantThresholdTicks int64   `yaml:"dormant_threshold_ticks"`
		MaxThreads            int     `yaml:"max_threads"`
	} `yaml:"threads"`

	Director struct {
		ForesightTicks    int64   `yaml:"foresight_ticks"`
		EnableHighlights  bool    `yaml:"enable_highlights"`
		MinHighlightScore float64 `yaml:"min_highlight_score"`
		DefaultCameraMode string  `yaml:"default_camera_mode"`
	} `yaml:"director"`
}

// Config is the Director's fully-resolved, immutable-after-construction
// configuration: one sub-config per component plus the orchestrator's own
// general settings.
type Config struct {
	EventWeights      scoring.Weights
	Thread            thread.Config
	Focus             focus.Config
	Commentary        commentary.Config
	ForesightTicks    int64
	EnableHighlights  bool
	MinHighlightScore float64
}

// DefaultConfig reproduces every default named in spec §6.
func DefaultConfig() Config {
	return Config{
		EventWeights:      scoring.DefaultWeights(),
		Thread:            thread.DefaultConfig(),
		Focus:             focus.DefaultConfig(),
		Commentary:        commentary.DefaultConfig(),
		ForesightTicks:    1000,
		EnableHighlights:  true,
		MinHighlightScore: 0.7,
	}
}

// Load builds a Config following the teacher's own precedence: built-in
// defaults, then an optional YAML file (path from DIRECTOR_CONFIG_PATH or
// the explicit argument), then environment variable overrides.
func Load(explicitPath string) (Config, error) {
	cfg := DefaultConfig()

	path := explicitPath
	if path == "" {
		path = os.Getenv("DIRECTOR_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if v := os.Getenv("DIRECTOR_FORESIGHT_TICKS"); v != "" {
		ticks, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DIRECTOR_FORESIGHT_TICKS: %w", err)
		}
		cfg.ForesightTicks = ticks
	}
	if v := os.Getenv("DIRECTOR_MIN_HIGHLIGHT_SCORE"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DIRECTOR_MIN_HIGHLIGHT_SCORE: %w", err)
		}
		cfg.MinHighlightScore = score
	}
	if v := os.Getenv("DIRECTOR_ENABLE_HIGHLIGHTS"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DIRECTOR_ENABLE_HIGHLIGHTS: %w", err)
		}
		cfg.EnableHighlights = enabled
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read director config file: %w", err)
	}

	var w wireConfig
	// Booleans can't be told apart from an explicit false once decoded, so
	// seed them with the current values; keys the file omits keep them.
	w.Commentary.EnableDramaticIrony = cfg.Commentary.EnableDramaticIrony
	w.Commentary.EnableTensionTeasers = cfg.Commentary.EnableTensionTeasers
	w.Commentary.EnableContextReminders = cfg.Commentary.EnableContextReminders
	w.Director.EnableHighlights = cfg.EnableHighlights
	if err := yaml.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("parse director config file: %w", err)
	}
	applyWireConfig(w, cfg)
	return nil
}

// applyWireConfig copies only the fields the YAML document actually set
// (non-zero) into cfg, so an absent section leaves the matching default in
// place. Booleans are copied as they stand; loadFromFile seeds them from cfg
// before decoding.
func applyWireConfig(w wireConfig, cfg *Config) {
	if len(w.EventWeights.BaseScores) > 0 {
		cfg.EventWeights.BaseScores = mergeBaseScores(cfg.EventWeights.BaseScores, w.EventWeights.BaseScores)
	}
	if len(w.EventWeights.SubtypeModifiers) > 0 {
		cfg.EventWeights.SubtypeModifiers = w.EventWeights.SubtypeModifiers
	}
	if len(w.EventWeights.DramaTagScores) > 0 {
		cfg.EventWeights.DramaTagScores = w.EventWeights.DramaTagScores
	}

	if w.Focus.MinTensionSeverity > 0 {
		cfg.Focus.MinTensionSeverity = w.Focus.MinTensionSeverity
	}
	if w.Focus.MaxConcurrentThreads > 0 {
		cfg.Focus.MaxConcurrentThreads = w.Focus.MaxConcurrentThreads
	}
	if w.Focus.ThreadFatigueThresholdTicks > 0 {
		cfg.Thread.FatigueThresholdTicks = w.Focus.ThreadFatigueThresholdTicks
	}
	if w.Focus.FatigueMultiplier > 0 {
		cfg.Focus.FatigueMultiplier = w.Focus.FatigueMultiplier
	}
	if w.Focus.MinEventScore > 0 {
		cfg.Focus.MinEventScore = w.Focus.MinEventScore
	}
	if w.Focus.FocusContinuityBoost > 0 {
		cfg.Focus.FocusContinuityBoost = w.Focus.FocusContinuityBoost
	}

	if w.Commentary.MaxQueueSize > 0 {
		cfg.Commentary.MaxQueueSize = w.Commentary.MaxQueueSize
	}
	if w.Commentary.MinDramaForCaption > 0 {
		cfg.Commentary.MinDramaForCaption = w.Commentary.MinDramaForCaption
	}
	if w.Commentary.BaseDisplayDurationTicks > 0 {
		cfg.Commentary.BaseDisplayDurationTicks = w.Commentary.BaseDisplayDurationTicks
	}
	if w.Commentary.TicksPerCharacter > 0 {
		cfg.Commentary.TicksPerCharacter = w.Commentary.TicksPerCharacter
	}
	if w.Commentary.CommentaryCooldownTicks > 0 {
		cfg.Commentary.CooldownTicks = w.Commentary.CommentaryCooldownTicks
	}
	cfg.Commentary.EnableDramaticIrony = w.Commentary.EnableDramaticIrony
	cfg.Commentary.EnableTensionTeasers = w.Commentary.EnableTensionTeasers
	cfg.Commentary.EnableContextReminders = w.Commentary.EnableContextReminders

	if w.Threads.MinSeverityForThread > 0 {
		cfg.Thread.MinSeverityForThread = w.Threads.MinSeverityForThread
	}
	if w.Threads.DormantThresholdTicks > 0 {
		cfg.Thread.DormantThresholdTicks = w.Threads.DormantThresholdTicks
	}
	if w.Threads.MaxThreads > 0 {
		cfg.Thread.MaxThreads = w.Threads.MaxThreads
	}

	if w.Director.ForesightTicks > 0 {
		cfg.ForesightTicks = w.Director.ForesightTicks
	}
	cfg.EnableHighlights = w.Director.EnableHighlights
	if w.Director.MinHighlightScore > 0 {
		cfg.MinHighlightScore = w.Director.MinHighlightScore
	}
	if w.Director.DefaultCameraMode != "" {
		cfg.Focus.DefaultCameraMode = focus.DefaultCameraMode(w.Director.DefaultCameraMode)
	}
}

// mergeBaseScores overlays a YAML-provided base-score table (keyed by the
// bare event kind string, per spec §6) onto the default table, keeping
// defaults for any kind the file doesn't mention.
func mergeBaseScores(base map[event.Type]float64, raw map[string]float64) map[event.Type]float64 {
	out := make(map[event.Type]float64, len(base)+len(raw))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range raw {
		out[event.Type(k)] = v
	}
	return out
}

// Validate enforces spec §4.6's construction-time checks: weights
// non-negative, thresholds strictly positive where a scale requires one.
func (cfg Config) Validate() error {
	for kind, v := range cfg.EventWeights.BaseScores {
		if v < 0 {
			return fmt.Errorf("%w: base score for %q is negative", ErrInvalidConfig, kind)
		}
	}
	for tag, v := range cfg.EventWeights.DramaTagScores {
		if v < 0 {
			return fmt.Errorf("%w: drama tag score for %q is negative", ErrInvalidConfig, tag)
		}
	}
	if cfg.EventWeights.TrackedAgentBoost < 0 || cfg.EventWeights.TensionEventBoost < 0 {
		return fmt.Errorf("%w: boost multipliers must be non-negative", ErrInvalidConfig)
	}

	if cfg.Thread.FatigueThresholdTicks <= 0 || cfg.Thread.DormantThresholdTicks <= 0 {
		return fmt.Errorf("%w: thread thresholds must be strictly positive", ErrInvalidConfig)
	}
	if cfg.Thread.MaxThreads <= 0 {
		return fmt.Errorf("%w: max_threads must be strictly positive", ErrInvalidConfig)
	}
	if cfg.Focus.MinTensionSeverity < 0 || cfg.Focus.MinEventScore < 0 {
		return fmt.Errorf("%w: minimum severity/score thresholds must be non-negative", ErrInvalidConfig)
	}
	if cfg.Focus.FocusContinuityBoost < 0 || cfg.Focus.FatigueMultiplier < 0 {
		return fmt.Errorf("%w: focus multipliers must be non-negative", ErrInvalidConfig)
	}

	if cfg.Commentary.MaxQueueSize <= 0 {
		return fmt.Errorf("%w: commentary max_queue_size must be strictly positive", ErrInvalidConfig)
	}
	if cfg.Commentary.CooldownTicks < 0 {
		return fmt.Errorf("%w: commentary_cooldown_ticks must be non-negative", ErrInvalidConfig)
	}
	if cfg.ForesightTicks <= 0 {
		return fmt.Errorf("%w: foresight_ticks must be strictly positive", ErrInvalidConfig)
	}
	if cfg.MinHighlightScore < 0 {
		return fmt.Errorf("%w: min_highlight_score must be non-negative", ErrInvalidConfig)
	}
	return nil
}
