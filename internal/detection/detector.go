package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/kdimtricp/veriframe/internal/ai"
	"github.com/kdimtricp/veriframe/internal/models"
)

// ErrNoFace marks frames the face locator found nothing in. Such frames
// produce no per-frame result and are excluded from batch aggregates.
var ErrNoFace = errors.New("no face detected in frame")

// Detector runs the full per-frame pipeline: locate face, classify the
// crop, update the session's rPPG and temporal state, fuse the three
// signals into a verdict. One Detector is constructed at startup and
// shared by all handlers; per-session state lives in the SessionStore.
type Detector struct {
	cfg        Config
	sessions   *SessionStore
	ppg        *PPGAnalyzer
	temporal   *TemporalTracker
	fuser      *Fuser
	locator    ai.FaceLocator
	classifier ai.Classifier
}

func NewDetector(cfg Config, locator ai.FaceLocator, classifier ai.Classifier) *Detector {
	return &Detector{
		cfg:        cfg,
		sessions:   NewSessionStore(cfg),
		ppg:        NewPPGAnalyzer(cfg),
		temporal:   NewTemporalTracker(cfg),
		fuser:      NewFuser(cfg),
		locator:    locator,
		classifier: classifier,
	}
}

func (d *Detector) Sessions() *SessionStore {
	return d.sessions
}

func (d *Detector) Fuser() *Fuser {
	return d.fuser
}

// FrameInput is one decoded frame plus its stream coordinates.
type FrameInput struct {
	SessionID   string
	FrameNumber int
	Frame       image.Image
}

// AnalyzeFrame scores one frame. Returns ErrNoFace when the locator
// found no face; every other outcome is a complete FrameResult.
func (d *Detector) AnalyzeFrame(ctx context.Context, in FrameInput) (*models.FrameResult, error) {
	start := time.Now()

	bbox, found, err := d.locator.Locate(ctx, in.Frame)
	if err != nil {
		return nil, fmt.Errorf("face location failed: %w", err)
	}
	if !found {
		return nil, ErrNoFace
	}

	crop := ai.CropFace(in.Frame, bbox)
	if crop == nil {
		return nil, ErrNoFace
	}
	cropJPEG, err := ai.EncodeJPEG(crop)
	if err != nil {
		return nil, err
	}

	deepConf, err := d.classifier.Predict(ctx, cropJPEG)
	if err != nil {
		return nil, fmt.Errorf("visual classification failed: %w", err)
	}
	deepConf = clamp(deepConf, 0.0, 1.0)

	sess := d.sessions.GetOrCreate(in.SessionID)
	sess.Touch(time.Now())

	ppgScore := d.ppg.Update(sess, in.Frame, &bbox)
	temporalScore := d.temporal.Update(sess, deepConf, in.FrameNumber)

	combined := d.fuser.Combine(deepConf, ppgScore, temporalScore)
	label, threat := d.fuser.Classify(combined)

	return &models.FrameResult{
		FrameNumber:         in.FrameNumber,
		DeepfakeConfidence:  deepConf,
		PPGScore:            ppgScore,
		TemporalScore:       temporalScore,
		CombinedScore:       combined,
		Classification:      label,
		ThreatLevel:         threat,
		InferenceTimeMillis: float64(time.Since(start).Microseconds()) / 1000.0,
		Detail: models.ResultDetail{
			FaceBBox:  &bbox,
			ModelName: d.classifier.Name(),
		},
	}, nil
}

// AnalyzeBatch scores a frame sequence, excluding frames that fail, and
// aggregates the rest. Fails with ErrNoUsableFrames when every frame was
// excluded.
func (d *Detector) AnalyzeBatch(ctx context.Context, sessionID string, frames []FrameInput) (*models.BatchResult, error) {
	results := make([]models.FrameResult, 0, len(frames))
	for _, in := range frames {
		in.SessionID = sessionID
		result, err := d.AnalyzeFrame(ctx, in)
		if err != nil {
			if !errors.Is(err, ErrNoFace) {
				log.Printf("[DETECT] Skipping frame %d: %v", in.FrameNumber, err)
			}
			continue
		}
		results = append(results, *result)
	}

	combined := make([]float64, len(results))
	for i, r := range results {
		combined[i] = r.CombinedScore
	}
	avg, err := d.fuser.AggregateBatch(combined)
	if err != nil {
		return nil, err
	}
	_, verdict := d.fuser.Classify(avg)

	return &models.BatchResult{
		Results:          results,
		SessionID:        sessionID,
		AvgCombinedScore: avg,
		OverallVerdict:   verdict,
	}, nil
}
