package detection

import (
	"image"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/kdimtricp/veriframe/internal/models"
)

// Real faces carry a faint cardiac pulse in skin color. PPGAnalyzer runs
// CHROM rPPG (de Haan & Jeanne, 2013) over the forehead region of each
// frame and scores how much spectral energy falls in the plausible
// heart-rate band. Generated faces tend to have no such rhythm.
//
// Scores: 0 = strong physiological signal (real), 1 = absent or anomalous.

const (
	// NeutralScore is returned when no forehead region could be sampled.
	NeutralScore = 0.5

	foreheadFracY  = 0.15 // top 15% of the face bbox
	foreheadFracX1 = 0.25 // middle 50% horizontally
	foreheadFracX2 = 0.75

	meanEps  = 1e-6
	powerEps = 1e-9
)

type PPGAnalyzer struct {
	cfg Config
}

func NewPPGAnalyzer(cfg Config) *PPGAnalyzer {
	return &PPGAnalyzer{cfg: cfg}
}

// Update appends this frame's forehead sample to the session buffer and
// returns the current anomaly score. A frame the forehead cannot be
// sampled from contaminates nothing and scores neutral.
func (a *PPGAnalyzer) Update(sess *Session, frame image.Image, bbox *models.BoundingBox) float64 {
	sample, ok := a.ForeheadSample(frame, bbox)
	if !ok {
		return NeutralScore
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.colors.Append(sample)
	if sess.colors.Len() < a.cfg.MinSamples {
		return 0.0
	}
	return a.score(sess.colors)
}

// ForeheadSample returns the mean (R, G, B) over the forehead region of
// the face, or ok=false when the clamped region is empty. A nil bbox
// falls back to the whole frame.
func (a *PPGAnalyzer) ForeheadSample(frame image.Image, bbox *models.BoundingBox) (ColorSample, bool) {
	if frame == nil {
		return ColorSample{}, false
	}
	bounds := frame.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()

	fx, fy, fw, fh := 0, 0, imgW, imgH
	if bbox != nil {
		fx, fy, fw, fh = bbox.X, bbox.Y, bbox.W, bbox.H
	}

	y1 := fy
	y2 := fy + max(1, int(float64(fh)*foreheadFracY))
	x1 := fx + int(float64(fw)*foreheadFracX1)
	x2 := fx + int(float64(fw)*foreheadFracX2)

	y1 = max(0, y1)
	y2 = min(imgH, y2)
	x1 = max(0, x1)
	x2 = min(imgW, x2)

	if y2 <= y1 || x2 <= x1 {
		return ColorSample{}, false
	}

	var sumR, sumG, sumB float64
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			r, g, b, _ := frame.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			sumR += float64(r >> 8)
			sumG += float64(g >> 8)
			sumB += float64(b >> 8)
		}
	}
	n := float64((y2 - y1) * (x2 - x1))
	return ColorSample{R: sumR / n, G: sumG / n, B: sumB / n}, true
}

// score applies the CHROM projection to the buffered color series and
// measures how concentrated the pulse spectrum is in the cardiac band.
func (a *PPGAnalyzer) score(colors *ColorBuffer) float64 {
	r := colors.R.Values()
	g := colors.G.Values()
	b := colors.B.Values()
	n := len(r)

	rMean := stat.Mean(r, nil) + meanEps
	gMean := stat.Mean(g, nil) + meanEps
	bMean := stat.Mean(b, nil) + meanEps

	// Chrominance projection: X = 3R - 2G, Y = 1.5R + G - 1.5B on
	// brightness-normalized channels.
	chromX := make([]float64, n)
	chromY := make([]float64, n)
	for i := 0; i < n; i++ {
		rn := r[i] / rMean
		gn := g[i] / gMean
		bn := b[i] / bMean
		chromX[i] = 3*rn - 2*gn
		chromY[i] = 1.5*rn + gn - 1.5*bn
	}

	alpha := stat.PopStdDev(chromX, nil) / (stat.PopStdDev(chromY, nil) + powerEps)
	pulse := make([]float64, n)
	for i := 0; i < n; i++ {
		pulse[i] = chromX[i] - alpha*chromY[i]
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, pulse)

	var bandPower, totalPower float64
	for i, c := range coeffs {
		hz := fft.Freq(i) * a.cfg.SampleRateHz
		mag := cmplx.Abs(c)
		totalPower += mag
		if hz >= a.cfg.CardiacLowHz && hz <= a.cfg.CardiacHighHz {
			bandPower += mag
		}
	}

	snr := bandPower / (totalPower + powerEps)

	// High band concentration means a plausible heart rate, so low anomaly.
	return clamp(1.0-3.0*snr, 0.0, 1.0)
}
