package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Classifier is the opaque visual deepfake model: face crop in, fake
// probability out. The model itself runs behind a separate inference
// service; this package only speaks to its boundary.
type Classifier interface {
	Predict(ctx context.Context, faceJPEG []byte) (float64, error)
	Name() string
}

// RemoteClassifier calls a self-hosted inference endpoint over HTTP.
type RemoteClassifier struct {
	endpoint   string
	modelName  string
	httpClient *http.Client
}

func NewRemoteClassifier(endpoint string) *RemoteClassifier {
	return &RemoteClassifier{
		endpoint:  endpoint,
		modelName: "remote",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type predictRequest struct {
	ImageB64 string `json:"image_b64"`
}

type predictResponse struct {
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model"`
	Error      string  `json:"error,omitempty"`
}

func (c *RemoteClassifier) Predict(ctx context.Context, faceJPEG []byte) (float64, error) {
	reqBody := predictRequest{
		ImageB64: base64.StdEncoding.EncodeToString(faceJPEG),
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read inference response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("inference endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed predictResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("failed to parse inference response: %w", err)
	}
	if parsed.Error != "" {
		return 0, fmt.Errorf("inference error: %s", parsed.Error)
	}
	if parsed.Model != "" {
		c.modelName = parsed.Model
	}

	return parsed.Confidence, nil
}

func (c *RemoteClassifier) Name() string {
	return c.modelName
}
