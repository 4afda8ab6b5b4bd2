package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kdimtricp/veriframe/internal/models"
)

// FrameResultRepo persists per-frame verdicts for audit and later review.
type FrameResultRepo struct {
	db *DB
}

func NewFrameResultRepo(db *DB) *FrameResultRepo {
	return &FrameResultRepo{db: db}
}

func (r *FrameResultRepo) Create(ctx context.Context, sessionID string, result *models.FrameResult) error {
	query := `
		INSERT INTO frame_results (
			id, session_id, frame_number, deepfake_confidence, ppg_score,
			temporal_score, combined_score, classification, threat_level, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if r.db.dbType == "postgres" {
		query = `
		INSERT INTO frame_results (
			id, session_id, frame_number, deepfake_confidence, ppg_score,
			temporal_score, combined_score, classification, threat_level, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	}

	_, err := r.db.conn.ExecContext(ctx, query,
		uuid.New().String(),
		sessionID,
		result.FrameNumber,
		result.DeepfakeConfidence,
		result.PPGScore,
		result.TemporalScore,
		result.CombinedScore,
		result.Classification,
		result.ThreatLevel,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert frame result: %w", err)
	}
	return nil
}

func (r *FrameResultRepo) ListBySession(ctx context.Context, sessionID string) ([]models.FrameResult, error) {
	query := `
		SELECT frame_number, deepfake_confidence, ppg_score, temporal_score,
		       combined_score, classification, threat_level
		FROM frame_results WHERE session_id = ? ORDER BY frame_number`
	if r.db.dbType == "postgres" {
		query = `
		SELECT frame_number, deepfake_confidence, ppg_score, temporal_score,
		       combined_score, classification, threat_level
		FROM frame_results WHERE session_id = $1 ORDER BY frame_number`
	}

	rows, err := r.db.conn.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query frame results: %w", err)
	}
	defer rows.Close()

	var results []models.FrameResult
	for rows.Next() {
		var result models.FrameResult
		if err := rows.Scan(
			&result.FrameNumber,
			&result.DeepfakeConfidence,
			&result.PPGScore,
			&result.TemporalScore,
			&result.CombinedScore,
			&result.Classification,
			&result.ThreatLevel,
		); err != nil {
			return nil, fmt.Errorf("failed to scan frame result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
