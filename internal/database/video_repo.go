package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/kdimtricp/veriframe/internal/models"
)

// ErrVideoNotFound is returned when no stored video matches the id.
var ErrVideoNotFound = errors.New("video not found")

type VideoRepository struct {
	db *DB
}

func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) InsertVideo(video *models.Video) error {
	query := `
		INSERT INTO videos (id, title, description, filename, content_type, size, upload_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if r.db.dbType == "postgres" {
		query = `
		INSERT INTO videos (id, title, description, filename, content_type, size, upload_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	}

	_, err := r.db.conn.Exec(query,
		video.ID, video.Title, video.Description, video.Filename,
		video.ContentType, video.Size, video.UploadTime)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetVideoByID(id string) (*models.Video, error) {
	query := `
		SELECT id, title, description, filename, content_type, size, upload_time
		FROM videos WHERE id = ?`
	if r.db.dbType == "postgres" {
		query = `
		SELECT id, title, description, filename, content_type, size, upload_time
		FROM videos WHERE id = $1`
	}

	var video models.Video
	err := r.db.conn.QueryRow(query, id).Scan(
		&video.ID, &video.Title, &video.Description, &video.Filename,
		&video.ContentType, &video.Size, &video.UploadTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) ListVideos() ([]models.Video, error) {
	rows, err := r.db.conn.Query(`
		SELECT id, title, description, filename, content_type, size, upload_time
		FROM videos ORDER BY upload_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(
			&video.ID, &video.Title, &video.Description, &video.Filename,
			&video.ContentType, &video.Size, &video.UploadTime); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}
