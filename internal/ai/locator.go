package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/kdimtricp/veriframe/internal/models"
)

// FaceLocator finds the dominant face in a frame. Returns found=false
// when no face is present; that case never reaches the scoring core.
type FaceLocator interface {
	Locate(ctx context.Context, frame image.Image) (bbox models.BoundingBox, found bool, err error)
}

// RemoteLocator calls an external face-detection endpoint.
type RemoteLocator struct {
	endpoint   string
	httpClient *http.Client
}

func NewRemoteLocator(endpoint string) *RemoteLocator {
	return &RemoteLocator{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type locateRequest struct {
	ImageB64 string `json:"image_b64"`
}

type locateResponse struct {
	Found bool   `json:"found"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	W     int    `json:"w"`
	H     int    `json:"h"`
	Error string `json:"error,omitempty"`
}

func (l *RemoteLocator) Locate(ctx context.Context, frame image.Image) (models.BoundingBox, bool, error) {
	frameJPEG, err := EncodeJPEG(frame)
	if err != nil {
		return models.BoundingBox{}, false, err
	}

	payload, err := json.Marshal(locateRequest{
		ImageB64: base64.StdEncoding.EncodeToString(frameJPEG),
	})
	if err != nil {
		return models.BoundingBox{}, false, fmt.Errorf("failed to marshal locate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(payload))
	if err != nil {
		return models.BoundingBox{}, false, fmt.Errorf("failed to create locate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return models.BoundingBox{}, false, fmt.Errorf("face locator request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.BoundingBox{}, false, fmt.Errorf("failed to read locator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.BoundingBox{}, false, fmt.Errorf("face locator returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed locateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.BoundingBox{}, false, fmt.Errorf("failed to parse locator response: %w", err)
	}
	if parsed.Error != "" {
		return models.BoundingBox{}, false, fmt.Errorf("face locator error: %s", parsed.Error)
	}
	if !parsed.Found {
		return models.BoundingBox{}, false, nil
	}

	return models.BoundingBox{X: parsed.X, Y: parsed.Y, W: parsed.W, H: parsed.H}, true, nil
}

// FullFrameLocator treats the whole frame as the face. Used when no
// detector endpoint is configured and clients send pre-cropped frames.
type FullFrameLocator struct{}

func (FullFrameLocator) Locate(_ context.Context, frame image.Image) (models.BoundingBox, bool, error) {
	bounds := frame.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return models.BoundingBox{}, false, nil
	}
	return models.BoundingBox{X: 0, Y: 0, W: bounds.Dx(), H: bounds.Dy()}, true, nil
}
