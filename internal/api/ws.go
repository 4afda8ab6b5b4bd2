package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kdimtricp/veriframe/internal/ai"
	"github.com/kdimtricp/veriframe/internal/detection"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 2 * time.Second

// wsError is sent in place of a verdict for frames that could not be
// scored; the stream stays open.
type wsError struct {
	FrameNumber int    `json:"frame_number"`
	Error       string `json:"error"`
}

// AnalyzeStreamHandler scores frames over a websocket: the client sends
// FrameRequest messages, the server answers each with a verdict. One
// connection typically maps to one session id.
func (app *App) AnalyzeStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req FrameRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read failed: %v", err)
			}
			return
		}
		if req.SessionID == "" {
			req.SessionID = "default"
		}

		var reply any
		frame, err := ai.DecodeFrame(req.FrameB64)
		if err != nil {
			reply = wsError{FrameNumber: req.FrameNumber, Error: "invalid image data"}
		} else {
			result, err := app.Detector.AnalyzeFrame(r.Context(), detection.FrameInput{
				SessionID:   req.SessionID,
				FrameNumber: req.FrameNumber,
				Frame:       frame,
			})
			switch {
			case err == nil:
				if app.ResultRepo != nil {
					if err := app.ResultRepo.Create(r.Context(), req.SessionID, result); err != nil {
						log.Printf("[WS] Failed to persist frame result: %v", err)
					}
				}
				app.publish(req.SessionID, result)
				reply = result
			case errors.Is(err, detection.ErrNoFace):
				reply = wsError{FrameNumber: req.FrameNumber, Error: "no face detected in frame"}
			default:
				log.Printf("[WS] Frame analysis failed: %v", err)
				reply = wsError{FrameNumber: req.FrameNumber, Error: "analysis failed"}
			}
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			log.Printf("[WS] Write failed: %v", err)
			return
		}
	}
}
