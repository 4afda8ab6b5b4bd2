package detection

import "math"

// TemporalTracker judges whether a stream of visual-model confidences
// evolves the way a continuous recording would. Genuine footage changes
// smoothly frame to frame; per-frame forgeries produce abrupt jumps.
//
// The score is the mean absolute frame-to-frame confidence delta over the
// window, normalized so a mean delta of DeltaFullScale (or more) maps to
// 1.0. Constant confidences score 0; alternating extremes score 1.
type TemporalTracker struct {
	cfg Config
}

func NewTemporalTracker(cfg Config) *TemporalTracker {
	return &TemporalTracker{cfg: cfg}
}

// Update appends (frameNumber, confidence) to the session window and
// returns the current inconsistency score. Fewer than two samples carry
// no variability evidence and score 0.
func (t *TemporalTracker) Update(sess *Session, confidence float64, frameNumber int) float64 {
	confidence = clamp(confidence, 0.0, 1.0)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.window.Append(ConfidenceSample{FrameNumber: frameNumber, Confidence: confidence})

	samples := sess.window.Values()
	if len(samples) < 2 {
		return 0.0
	}

	var deltaSum float64
	for i := 1; i < len(samples); i++ {
		deltaSum += math.Abs(samples[i].Confidence - samples[i-1].Confidence)
	}
	meanDelta := deltaSum / float64(len(samples)-1)

	return clamp(meanDelta/t.cfg.DeltaFullScale, 0.0, 1.0)
}
