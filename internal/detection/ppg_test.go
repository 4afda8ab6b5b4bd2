package detection

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/kdimtricp/veriframe/internal/models"
)

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newTestSession(cfg Config) *Session {
	return NewSessionStore(cfg).GetOrCreate("test")
}

func TestForeheadSampleUniformColor(t *testing.T) {
	a := NewPPGAnalyzer(DefaultConfig())
	img := uniformImage(100, 100, color.RGBA{R: 200, G: 150, B: 100, A: 255})

	sample, ok := a.ForeheadSample(img, &models.BoundingBox{X: 10, Y: 10, W: 60, H: 60})
	if !ok {
		t.Fatal("Expected a sample from a valid ROI")
	}
	if sample.R != 200 || sample.G != 150 || sample.B != 100 {
		t.Errorf("Expected (200, 150, 100), got (%v, %v, %v)", sample.R, sample.G, sample.B)
	}
}

func TestForeheadSampleDegenerateROI(t *testing.T) {
	a := NewPPGAnalyzer(DefaultConfig())
	img := uniformImage(100, 100, color.RGBA{R: 128, G: 128, B: 128, A: 255})

	tests := []struct {
		name string
		bbox models.BoundingBox
	}{
		{"zero width", models.BoundingBox{X: 10, Y: 10, W: 0, H: 60}},
		{"fully outside", models.BoundingBox{X: 500, Y: 500, W: 50, H: 50}},
		{"negative origin clipped away", models.BoundingBox{X: -100, Y: -100, W: 20, H: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := a.ForeheadSample(img, &tt.bbox); ok {
				t.Error("Expected extraction to fail")
			}
		})
	}
}

func TestUpdateNeutralOnFailedExtraction(t *testing.T) {
	cfg := DefaultConfig()
	a := NewPPGAnalyzer(cfg)
	sess := newTestSession(cfg)
	img := uniformImage(100, 100, color.RGBA{R: 128, G: 128, B: 128, A: 255})

	score := a.Update(sess, img, &models.BoundingBox{X: 500, Y: 500, W: 10, H: 10})
	if score != NeutralScore {
		t.Errorf("Expected neutral score %v, got %v", NeutralScore, score)
	}
	if sess.colors.Len() != 0 {
		t.Errorf("Failed extraction must not mutate the buffer, got %d samples", sess.colors.Len())
	}
}

func TestUpdateInsufficientHistory(t *testing.T) {
	cfg := DefaultConfig()
	a := NewPPGAnalyzer(cfg)
	sess := newTestSession(cfg)
	img := uniformImage(64, 64, color.RGBA{R: 180, G: 140, B: 120, A: 255})
	bbox := &models.BoundingBox{X: 0, Y: 0, W: 64, H: 64}

	for i := 0; i < cfg.MinSamples-1; i++ {
		if score := a.Update(sess, img, bbox); score != 0.0 {
			t.Fatalf("Expected 0.0 with %d buffered samples, got %v", i+1, score)
		}
	}
	if sess.colors.Len() != cfg.MinSamples-1 {
		t.Errorf("Expected %d buffered samples, got %d", cfg.MinSamples-1, sess.colors.Len())
	}
}

// pulseSamples synthesizes a color series carrying a clean 72 BPM
// (1.2 Hz) cardiac waveform at the assumed 30 Hz capture rate.
func pulseSamples(n int) []ColorSample {
	const (
		mean = 128.0
		amp  = 0.02
		freq = 1.2
		fs   = 30.0
	)
	samples := make([]ColorSample, n)
	for i := 0; i < n; i++ {
		phase := 2 * math.Pi * freq * float64(i) / fs
		s := math.Sin(phase)
		c := math.Cos(phase)
		samples[i] = ColorSample{
			R: mean * (1 + amp*s),
			G: mean * (1 + amp*s),
			B: mean * (1 + amp*(5.0/3.0)*s - amp*(2.0/3.0)*c),
		}
	}
	return samples
}

func TestScoreSyntheticPulse(t *testing.T) {
	cfg := DefaultConfig()
	a := NewPPGAnalyzer(cfg)
	sess := newTestSession(cfg)

	// 150 samples = 5 s, an integer number of 1.2 Hz cycles.
	for _, s := range pulseSamples(150) {
		sess.colors.Append(s)
	}

	score := a.score(sess.colors)
	if score >= 0.34 {
		t.Errorf("Expected anomaly < 0.34 for a clean cardiac signal, got %v", score)
	}
}

func TestScoreBroadbandNoise(t *testing.T) {
	cfg := DefaultConfig()
	a := NewPPGAnalyzer(cfg)
	sess := newTestSession(cfg)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < cfg.BufferCapacity; i++ {
		sess.colors.Append(ColorSample{
			R: 128 + rng.Float64() - 0.5,
			G: 128 + rng.Float64() - 0.5,
			B: 128 + rng.Float64() - 0.5,
		})
	}

	score := a.score(sess.colors)
	if score <= 0.75 {
		t.Errorf("Expected anomaly approaching 1.0 for broadband noise, got %v", score)
	}
}

func TestScoreConstantColor(t *testing.T) {
	cfg := DefaultConfig()
	a := NewPPGAnalyzer(cfg)
	sess := newTestSession(cfg)

	for i := 0; i < 120; i++ {
		sess.colors.Append(ColorSample{R: 128, G: 128, B: 128})
	}

	score := a.score(sess.colors)
	if score <= 0.95 {
		t.Errorf("Expected anomaly near 1.0 for a static color, got %v", score)
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	cfg := DefaultConfig()
	a := NewPPGAnalyzer(cfg)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		sess := newTestSession(cfg)
		n := cfg.MinSamples + rng.Intn(cfg.BufferCapacity-cfg.MinSamples)
		for i := 0; i < n; i++ {
			sess.colors.Append(ColorSample{
				R: rng.Float64() * 255,
				G: rng.Float64() * 255,
				B: rng.Float64() * 255,
			})
		}
		score := a.score(sess.colors)
		if score < 0 || score > 1 || math.IsNaN(score) {
			t.Fatalf("Score out of range: %v (trial %d, n=%d)", score, trial, n)
		}
	}
}
