package database

import (
	"context"
	"testing"

	"github.com/kdimtricp/veriframe/internal/models"
)

func TestFrameResultRepo_CreateAndList(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewFrameResultRepo(db)
	ctx := context.Background()

	results := []models.FrameResult{
		{
			FrameNumber:        2,
			DeepfakeConfidence: 0.8,
			PPGScore:           0.7,
			TemporalScore:      0.6,
			CombinedScore:      0.74,
			Classification:     "fake",
			ThreatLevel:        "danger",
		},
		{
			FrameNumber:        1,
			DeepfakeConfidence: 0.1,
			PPGScore:           0.0,
			TemporalScore:      0.0,
			CombinedScore:      0.06,
			Classification:     "real",
			ThreatLevel:        "safe",
		},
	}

	for i := range results {
		if err := repo.Create(ctx, "session-a", &results[i]); err != nil {
			t.Fatalf("Failed to insert frame result: %v", err)
		}
	}
	if err := repo.Create(ctx, "session-b", &models.FrameResult{
		FrameNumber:    5,
		CombinedScore:  0.5,
		Classification: "suspicious",
		ThreatLevel:    "warning",
	}); err != nil {
		t.Fatalf("Failed to insert frame result: %v", err)
	}

	listed, err := repo.ListBySession(ctx, "session-a")
	if err != nil {
		t.Fatalf("Failed to list frame results: %v", err)
	}

	if len(listed) != 2 {
		t.Fatalf("Expected 2 results for session-a, got %d", len(listed))
	}
	if listed[0].FrameNumber != 1 || listed[1].FrameNumber != 2 {
		t.Errorf("Expected results ordered by frame number, got %d then %d",
			listed[0].FrameNumber, listed[1].FrameNumber)
	}
	if listed[1].Classification != "fake" || listed[1].ThreatLevel != "danger" {
		t.Errorf("Expected fake/danger for frame 2, got %s/%s",
			listed[1].Classification, listed[1].ThreatLevel)
	}
}

func TestFrameResultRepo_Postgres(t *testing.T) {
	db, cleanup := setupPostgresTestDB(t)
	defer cleanup()

	repo := NewFrameResultRepo(db)
	ctx := context.Background()

	result := models.FrameResult{
		FrameNumber:        7,
		DeepfakeConfidence: 0.42,
		PPGScore:           0.5,
		TemporalScore:      0.1,
		CombinedScore:      0.372,
		Classification:     "suspicious",
		ThreatLevel:        "warning",
	}
	if err := repo.Create(ctx, "pg-session", &result); err != nil {
		t.Fatalf("Failed to insert frame result: %v", err)
	}

	listed, err := repo.ListBySession(ctx, "pg-session")
	if err != nil {
		t.Fatalf("Failed to list frame results: %v", err)
	}
	if len(listed) != 1 || listed[0].FrameNumber != 7 {
		t.Fatalf("Expected the inserted result back, got %+v", listed)
	}
}
