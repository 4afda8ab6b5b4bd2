package detection

import (
	"errors"
	"math"
)

// Classification labels and threat levels, from least to most severe.
const (
	ClassReal       = "real"
	ClassSuspicious = "suspicious"
	ClassFake       = "fake"

	ThreatSafe    = "safe"
	ThreatWarning = "warning"
	ThreatDanger  = "danger"
)

// ErrNoUsableFrames is returned when a batch produced no per-frame result
// to aggregate.
var ErrNoUsableFrames = errors.New("no usable frames in batch")

// Fuser combines the independent per-frame signals into one risk verdict.
type Fuser struct {
	cfg Config
}

func NewFuser(cfg Config) *Fuser {
	return &Fuser{cfg: cfg}
}

// Combine returns the weighted fusion of the three signals. Inputs are
// clamped on ingest, and the weights form a convex combination, so the
// result stays in [0, 1].
func (f *Fuser) Combine(visual, ppg, temporal float64) float64 {
	visual = clamp(visual, 0.0, 1.0)
	ppg = clamp(ppg, 0.0, 1.0)
	temporal = clamp(temporal, 0.0, 1.0)
	return f.cfg.VisualWeight*visual + f.cfg.PPGWeight*ppg + f.cfg.TemporalWeight*temporal
}

// Classify maps a combined score to a label and threat level. Interval
// lower bounds are inclusive: exactly SafeMax is suspicious, exactly
// DangerMin is fake.
func (f *Fuser) Classify(combined float64) (label, threat string) {
	switch {
	case combined < f.cfg.SafeMax:
		return ClassReal, ThreatSafe
	case combined < f.cfg.DangerMin:
		return ClassSuspicious, ThreatWarning
	default:
		return ClassFake, ThreatDanger
	}
}

// AggregateBatch averages combined scores over the frames that produced a
// result. Frames with no usable face are excluded, not zero-filled; a
// batch where every frame was excluded fails with ErrNoUsableFrames.
func (f *Fuser) AggregateBatch(combinedScores []float64) (float64, error) {
	if len(combinedScores) == 0 {
		return 0, ErrNoUsableFrames
	}
	var sum float64
	for _, s := range combinedScores {
		sum += s
	}
	return sum / float64(len(combinedScores)), nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
