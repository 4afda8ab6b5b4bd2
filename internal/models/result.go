package models

// BoundingBox is a face location in frame pixel coordinates.
type BoundingBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// FrameResult is the verdict for a single analyzed frame.
type FrameResult struct {
	FrameNumber         int     `json:"frame_number"`
	DeepfakeConfidence  float64 `json:"deepfake_confidence"` // 0 = real, 1 = fake
	PPGScore            float64 `json:"ppg_score"`           // 0 = normal pulse, 1 = anomalous
	TemporalScore       float64 `json:"temporal_score"`      // 0 = consistent, 1 = inconsistent
	CombinedScore       float64 `json:"combined_score"`
	Classification      string  `json:"classification"` // "real" | "suspicious" | "fake"
	ThreatLevel         string  `json:"threat_level"`   // "safe" | "warning" | "danger"
	InferenceTimeMillis float64 `json:"inference_time_ms"`

	Detail ResultDetail `json:"detail"`
}

type ResultDetail struct {
	FaceBBox  *BoundingBox `json:"face_bbox,omitempty"`
	ModelName string       `json:"model_name,omitempty"`
}

// BatchResult aggregates the verdicts of a frame sequence. Frames that
// yielded no usable face are absent from Results and excluded from the
// average.
type BatchResult struct {
	Results          []FrameResult `json:"results"`
	SessionID        string        `json:"session_id"`
	AvgCombinedScore float64       `json:"avg_combined_score"`
	OverallVerdict   string        `json:"overall_verdict"`
}
