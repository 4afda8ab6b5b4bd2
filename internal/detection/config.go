package detection

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable constant of the scoring pipeline. Defaults
// match the observed production behavior; any field can be overridden via
// a YAML file (see Load).
type Config struct {
	// Fusion weights, must sum to 1.0.
	VisualWeight   float64 `yaml:"visual_weight"`
	PPGWeight      float64 `yaml:"ppg_weight"`
	TemporalWeight float64 `yaml:"temporal_weight"`

	// Classification thresholds. Scores below SafeMax are "real",
	// scores at or above DangerMin are "fake".
	SafeMax   float64 `yaml:"safe_max"`
	DangerMin float64 `yaml:"danger_min"`

	// rPPG parameters.
	BufferCapacity int     `yaml:"buffer_capacity"` // color samples kept per session
	MinSamples     int     `yaml:"min_samples"`     // samples required before scoring
	SampleRateHz   float64 `yaml:"sample_rate_hz"`  // assumed capture rate
	CardiacLowHz   float64 `yaml:"cardiac_low_hz"`  // 40 BPM
	CardiacHighHz  float64 `yaml:"cardiac_high_hz"` // 200 BPM

	// Temporal consistency parameters.
	WindowSize int `yaml:"window_size"`

	// DeltaFullScale is the mean absolute frame-to-frame confidence delta
	// that maps to a temporal score of 1.0.
	DeltaFullScale float64 `yaml:"delta_full_scale"`
}

func DefaultConfig() Config {
	return Config{
		VisualWeight:   0.60,
		PPGWeight:      0.20,
		TemporalWeight: 0.20,
		SafeMax:        0.30,
		DangerMin:      0.70,
		BufferCapacity: 300,
		MinSamples:     60,
		SampleRateHz:   30,
		CardiacLowHz:   0.67,
		CardiacHighHz:  3.33,
		WindowSize:     30,
		DeltaFullScale: 0.25,
	}
}

// Load reads a YAML override file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read detector config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse detector config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid detector config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	sum := c.VisualWeight + c.PPGWeight + c.TemporalWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("fusion weights must sum to 1.0, got %.4f", sum)
	}
	if c.SafeMax <= 0 || c.DangerMin <= c.SafeMax || c.DangerMin > 1 {
		return fmt.Errorf("thresholds must satisfy 0 < safe_max < danger_min <= 1")
	}
	if c.BufferCapacity <= 0 || c.MinSamples <= 0 || c.MinSamples > c.BufferCapacity {
		return fmt.Errorf("buffer capacity %d and min samples %d are inconsistent", c.BufferCapacity, c.MinSamples)
	}
	if c.SampleRateHz <= 0 {
		return fmt.Errorf("sample rate must be positive")
	}
	if c.CardiacLowHz <= 0 || c.CardiacHighHz <= c.CardiacLowHz {
		return fmt.Errorf("cardiac band [%.2f, %.2f] is invalid", c.CardiacLowHz, c.CardiacHighHz)
	}
	if c.WindowSize < 2 {
		return fmt.Errorf("window size must be at least 2")
	}
	if c.DeltaFullScale <= 0 {
		return fmt.Errorf("delta full scale must be positive")
	}
	return nil
}
