package database

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	conn   *sql.DB
	dbType string
}

type Config struct {
	Type       string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SQLitePath string
}

func NewDB(config Config) (*DB, error) {
	var conn *sql.DB
	var err error

	switch config.Type {
	case "sqlite":
		conn, err = sql.Open("sqlite3", config.SQLitePath)
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			config.Host, config.Port, config.User, config.Password, config.Name)
		conn, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, dbType: config.Type}

	if err := db.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

func (db *DB) createTables() error {
	sizeType := "INTEGER"
	timeType := "DATETIME"
	if db.dbType == "postgres" {
		sizeType = "BIGINT"
		timeType = "TIMESTAMPTZ"
	}

	queries := []string{
		fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		filename TEXT NOT NULL,
		content_type TEXT NOT NULL,
		size %s NOT NULL,
		upload_time %s NOT NULL
	);`, sizeType, timeType),
		fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS frame_results (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		frame_number INTEGER NOT NULL,
		deepfake_confidence REAL NOT NULL,
		ppg_score REAL NOT NULL,
		temporal_score REAL NOT NULL,
		combined_score REAL NOT NULL,
		classification TEXT NOT NULL,
		threat_level TEXT NOT NULL,
		created_at %s NOT NULL
	);`, timeType),
		`CREATE INDEX IF NOT EXISTS idx_frame_results_session ON frame_results (session_id, frame_number);`,
	}

	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}
