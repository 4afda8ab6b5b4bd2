// Package emitter publishes per-frame verdicts to a NATS subject so that
// downstream consumers (dashboards, alerting) can follow live analysis
// without polling the API.
package emitter

import (
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/kdimtricp/veriframe/internal/models"
)

const defaultSubject = "veriframe.verdicts"

// VerdictMessage is the compact wire form of a per-frame verdict.
type VerdictMessage struct {
	SessionID      string  `msgpack:"session_id"`
	FrameNumber    int     `msgpack:"frame_number"`
	CombinedScore  float64 `msgpack:"combined_score"`
	Classification string  `msgpack:"classification"`
	ThreatLevel    string  `msgpack:"threat_level"`
	Ts             int64   `msgpack:"ts"`
}

type Emitter struct {
	nc      *nats.Conn
	subject string
}

// Connect dials the NATS server. Verdict emission is best-effort; the
// scoring pipeline never blocks on it.
func Connect(url, subject string) (*Emitter, error) {
	if subject == "" {
		subject = defaultSubject
	}

	nc, err := nats.Connect(
		url,
		nats.Name("veriframe"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Emitter{nc: nc, subject: subject}, nil
}

// Publish sends one verdict. Safe to call on a nil Emitter, so callers
// need no wiring-dependent branching.
func (e *Emitter) Publish(sessionID string, result *models.FrameResult) {
	if e == nil {
		return
	}

	msg := VerdictMessage{
		SessionID:      sessionID,
		FrameNumber:    result.FrameNumber,
		CombinedScore:  result.CombinedScore,
		Classification: result.Classification,
		ThreatLevel:    result.ThreatLevel,
		Ts:             time.Now().UnixMilli(),
	}

	payload, err := msgpack.Marshal(msg)
	if err != nil {
		log.Printf("[EMIT] Failed to marshal verdict: %v", err)
		return
	}
	if err := e.nc.Publish(e.subject, payload); err != nil {
		log.Printf("[EMIT] Failed to publish verdict: %v", err)
	}
}

func (e *Emitter) Close() {
	if e == nil {
		return
	}
	e.nc.Drain()
}
