package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kdimtricp/veriframe/internal/ai"
	"github.com/kdimtricp/veriframe/internal/database"
	"github.com/kdimtricp/veriframe/internal/detection"
	"github.com/kdimtricp/veriframe/internal/models"
	"github.com/kdimtricp/veriframe/internal/storage"
)

// VerdictPublisher fans per-frame verdicts out to downstream consumers.
// Satisfied by emitter.Emitter.
type VerdictPublisher interface {
	Publish(sessionID string, result *models.FrameResult)
}

// FrameExtractor samples decoded frames out of a stored video file.
// Satisfied by ai.FrameExtractor.
type FrameExtractor interface {
	ExtractFrames(videoPath string, count, size int) ([]image.Image, error)
}

type App struct {
	Detector       *detection.Detector
	VideoRepo      *database.VideoRepository
	ResultRepo     *database.FrameResultRepo
	Storage        storage.Storage
	FrameExtractor FrameExtractor
	Emitter        VerdictPublisher
	MaxUploadSize  int64
	ModelName      string
	StartTime      time.Time

	// Offline analysis defaults.
	FramesPerVideo int
	FrameSize      int
}

func (app *App) publish(sessionID string, result *models.FrameResult) {
	if app.Emitter != nil {
		app.Emitter.Publish(sessionID, result)
	}
}

// FrameRequest is one frame as sent by the browser client.
type FrameRequest struct {
	FrameB64    string `json:"frame_b64"`
	FrameNumber int    `json:"frame_number"`
	TimestampMS int64  `json:"timestamp_ms"`
	SessionID   string `json:"session_id"`
}

type BatchFrameRequest struct {
	Frames    []FrameRequest `json:"frames"`
	SessionID string         `json:"session_id"`
}

type HealthResponse struct {
	Status  string  `json:"status"`
	Model   string  `json:"model"`
	UptimeS float64 `json:"uptime_s"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (app *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Model:   app.ModelName,
		UptimeS: time.Since(app.StartTime).Round(100 * time.Millisecond).Seconds(),
	})
}

// AnalyzeHandler scores a single frame: visual model + PPG anomaly +
// temporal consistency, fused into one verdict.
func (app *App) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req FrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	result, err := app.analyzeOne(r, req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, detection.ErrNoFace):
		writeError(w, http.StatusUnprocessableEntity, "no face detected in frame")
	case errors.Is(err, errBadFrame):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[API] Frame analysis failed: %v", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
	}
}

var errBadFrame = errors.New("invalid image data")

func (app *App) analyzeOne(r *http.Request, req FrameRequest) (*models.FrameResult, error) {
	img, err := ai.DecodeFrame(req.FrameB64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadFrame, err)
	}

	result, err := app.Detector.AnalyzeFrame(r.Context(), detection.FrameInput{
		SessionID:   req.SessionID,
		FrameNumber: req.FrameNumber,
		Frame:       img,
	})
	if err != nil {
		return nil, err
	}

	if app.ResultRepo != nil {
		if err := app.ResultRepo.Create(r.Context(), req.SessionID, result); err != nil {
			log.Printf("[API] Failed to persist frame result: %v", err)
		}
	}
	app.publish(req.SessionID, result)

	return result, nil
}

// AnalyzeBatchHandler scores a frame sequence with temporal context.
// Frames without a usable face are skipped; a batch where every frame
// was skipped is a 422.
func (app *App) AnalyzeBatchHandler(w http.ResponseWriter, r *http.Request) {
	var req BatchFrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	frames := make([]detection.FrameInput, 0, len(req.Frames))
	for _, fr := range req.Frames {
		img, err := ai.DecodeFrame(fr.FrameB64)
		if err != nil {
			log.Printf("[API] Skipping undecodable frame %d: %v", fr.FrameNumber, err)
			continue
		}
		frames = append(frames, detection.FrameInput{
			FrameNumber: fr.FrameNumber,
			Frame:       img,
		})
	}

	batch, err := app.Detector.AnalyzeBatch(r.Context(), req.SessionID, frames)
	if err != nil {
		if errors.Is(err, detection.ErrNoUsableFrames) {
			writeError(w, http.StatusUnprocessableEntity, "no faces detected in any frame")
			return
		}
		log.Printf("[API] Batch analysis failed: %v", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	for i := range batch.Results {
		if app.ResultRepo != nil {
			if err := app.ResultRepo.Create(r.Context(), req.SessionID, &batch.Results[i]); err != nil {
				log.Printf("[API] Failed to persist frame result: %v", err)
			}
		}
		app.publish(req.SessionID, &batch.Results[i])
	}

	writeJSON(w, http.StatusOK, batch)
}

type sessionResponse struct {
	SessionID         string               `json:"session_id"`
	ColorSamples      int                  `json:"color_samples"`
	ConfidenceSamples int                  `json:"confidence_samples"`
	LastSeen          time.Time            `json:"last_seen"`
	Results           []models.FrameResult `json:"results"`
}

func (app *App) SessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	summary, exists := app.Detector.Sessions().Summary(sessionID)
	if !exists {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var results []models.FrameResult
	if app.ResultRepo != nil {
		var err error
		results, err = app.ResultRepo.ListBySession(r.Context(), sessionID)
		if err != nil {
			log.Printf("[API] Failed to load session results: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:         sessionID,
		ColorSamples:      summary.ColorSamples,
		ConfidenceSamples: summary.ConfidenceSamples,
		LastSeen:          summary.LastSeen,
		Results:           results,
	})
}

func (app *App) UploadVideoHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to get file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") && contentType != "application/octet-stream" {
		if strings.ToLower(filepath.Ext(header.Filename)) != ".mp4" {
			writeError(w, http.StatusBadRequest, "only MP4 video files are allowed")
			return
		}
		contentType = "video/mp4"
	}

	title := r.FormValue("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	filename, err := app.Storage.SaveUpload(file, storage.UploadInfo{
		OriginalName: header.Filename,
		ContentType:  contentType,
		Size:         header.Size,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save file")
		return
	}

	video := models.NewVideo(title, r.FormValue("description"), filename, contentType, header.Size)
	if err := app.VideoRepo.InsertVideo(video); err != nil {
		app.Storage.Remove(filename)
		writeError(w, http.StatusInternalServerError, "failed to save video information")
		return
	}

	writeJSON(w, http.StatusCreated, video)
}

func (app *App) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	videos, err := app.VideoRepo.ListVideos()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list videos")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	writeJSON(w, http.StatusOK, videos)
}

// AnalyzeVideoHandler runs the detector offline over frames extracted
// from a stored upload.
func (app *App) AnalyzeVideoHandler(w http.ResponseWriter, r *http.Request) {
	if app.FrameExtractor == nil {
		writeError(w, http.StatusServiceUnavailable, "frame extraction not available")
		return
	}

	videoID := chi.URLParam(r, "id")
	video, err := app.VideoRepo.GetVideoByID(videoID)
	if err != nil {
		if errors.Is(err, database.ErrVideoNotFound) {
			writeError(w, http.StatusNotFound, "video not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load video")
		return
	}

	count := app.FramesPerVideo
	if v := r.URL.Query().Get("frames"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			count = parsed
		}
	}

	videoPath, err := app.Storage.Path(video.Filename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve video file")
		return
	}
	extracted, err := app.FrameExtractor.ExtractFrames(videoPath, count, app.FrameSize)
	if err != nil {
		log.Printf("[API] Frame extraction failed for video %s: %v", videoID, err)
		writeError(w, http.StatusUnprocessableEntity, "failed to extract frames from video")
		return
	}

	sessionID := "video:" + videoID
	frames := make([]detection.FrameInput, len(extracted))
	for i, img := range extracted {
		frames[i] = detection.FrameInput{FrameNumber: i, Frame: img}
	}

	batch, err := app.Detector.AnalyzeBatch(r.Context(), sessionID, frames)
	if err != nil {
		if errors.Is(err, detection.ErrNoUsableFrames) {
			writeError(w, http.StatusUnprocessableEntity, "no faces detected in any frame")
			return
		}
		log.Printf("[API] Video analysis failed: %v", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	for i := range batch.Results {
		if app.ResultRepo != nil {
			if err := app.ResultRepo.Create(r.Context(), sessionID, &batch.Results[i]); err != nil {
				log.Printf("[API] Failed to persist frame result: %v", err)
			}
		}
		app.publish(sessionID, &batch.Results[i])
	}

	writeJSON(w, http.StatusOK, batch)
}
