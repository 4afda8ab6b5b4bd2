package detection

import (
	"errors"
	"math"
	"testing"
)

func TestCombineWeightedSum(t *testing.T) {
	f := NewFuser(DefaultConfig())

	tests := []struct {
		visual, ppg, temporal float64
		want                  float64
		wantClass             string
		wantThreat            string
	}{
		{0.1, 0.1, 0.1, 0.1, ClassReal, ThreatSafe},
		{0.5, 0.5, 0.5, 0.5, ClassSuspicious, ThreatWarning},
		{0.9, 0.9, 0.9, 0.9, ClassFake, ThreatDanger},
		{1.0, 0.0, 0.0, 0.6, ClassSuspicious, ThreatWarning},
	}
	for _, tt := range tests {
		combined := f.Combine(tt.visual, tt.ppg, tt.temporal)
		if math.Abs(combined-tt.want) > 1e-9 {
			t.Errorf("Combine(%v, %v, %v) = %v, want %v", tt.visual, tt.ppg, tt.temporal, combined, tt.want)
		}
		label, threat := f.Classify(combined)
		if label != tt.wantClass || threat != tt.wantThreat {
			t.Errorf("Classify(%v) = (%s, %s), want (%s, %s)", combined, label, threat, tt.wantClass, tt.wantThreat)
		}
	}
}

func TestClassifyBoundariesInclusive(t *testing.T) {
	f := NewFuser(DefaultConfig())

	if label, threat := f.Classify(0.30); label != ClassSuspicious || threat != ThreatWarning {
		t.Errorf("Classify(0.30) = (%s, %s), want (suspicious, warning)", label, threat)
	}
	if label, threat := f.Classify(0.70); label != ClassFake || threat != ThreatDanger {
		t.Errorf("Classify(0.70) = (%s, %s), want (fake, danger)", label, threat)
	}
	if label, _ := f.Classify(0.2999); label != ClassReal {
		t.Errorf("Classify(0.2999) = %s, want real", label)
	}
}

func TestCombineClampsInputs(t *testing.T) {
	f := NewFuser(DefaultConfig())

	combined := f.Combine(5.0, -2.0, math.NaN())
	if combined < 0 || combined > 1 || math.IsNaN(combined) {
		t.Errorf("Expected combined in [0,1] for degenerate inputs, got %v", combined)
	}
	if combined != 0.6 {
		t.Errorf("Expected 0.6 (visual clamped to 1, others to 0), got %v", combined)
	}
}

func TestAggregateBatchExcludesMissingFrames(t *testing.T) {
	f := NewFuser(DefaultConfig())

	// 3 usable frames of a 5-frame batch: only those count.
	avg, err := f.AggregateBatch([]float64{0.2, 0.4, 0.6})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(avg-0.4) > 1e-9 {
		t.Errorf("Expected average 0.4, got %v", avg)
	}
}

func TestAggregateBatchNoUsableFrames(t *testing.T) {
	f := NewFuser(DefaultConfig())

	_, err := f.AggregateBatch(nil)
	if !errors.Is(err, ErrNoUsableFrames) {
		t.Errorf("Expected ErrNoUsableFrames, got %v", err)
	}
}
