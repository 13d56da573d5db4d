package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database
// directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists interview records in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store. The DSN is a file path; its
// directory is created if missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore ready", "path", cfg.DSN)
	return &SQLiteStore{db: db}, nil
}

// SaveInterview inserts a completed screening record.
func (s *SQLiteStore) SaveInterview(rec InterviewRecord) error {
	ensureID(&rec)
	profileJSON, questionsJSON, answersJSON, err := marshalRecord(rec)
	if err != nil {
		slog.Error("SQLiteStore SaveInterview marshal failed", "error", err, "id", rec.ID)
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO interviews (id, profile, questions, answers, final_phase, message_count, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, profileJSON, questionsJSON, answersJSON, string(rec.FinalPhase), rec.MessageCount, rec.StartedAt, rec.CompletedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveInterview failed", "error", err, "id", rec.ID)
		return fmt.Errorf("failed to insert interview %s: %w", rec.ID, err)
	}
	slog.Debug("SQLiteStore SaveInterview succeeded", "id", rec.ID)
	return nil
}

// GetInterviews returns all saved screening records.
func (s *SQLiteStore) GetInterviews() ([]InterviewRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, profile, questions, answers, final_phase, message_count, started_at, completed_at FROM interviews`)
	if err != nil {
		slog.Error("SQLiteStore GetInterviews query failed", "error", err)
		return nil, fmt.Errorf("failed to query interviews: %w", err)
	}
	defer rows.Close()

	var records []InterviewRecord
	for rows.Next() {
		rec, err := scanInterview(rows)
		if err != nil {
			slog.Error("SQLiteStore GetInterviews scan failed", "error", err)
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore GetInterviews rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate interview rows: %w", err)
	}
	slog.Debug("SQLiteStore GetInterviews succeeded", "count", len(records))
	return records, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// marshalRecord serializes the JSON columns of an interview record.
func marshalRecord(rec InterviewRecord) (profile, questions, answers string, err error) {
	p, err := json.Marshal(rec.Profile)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal profile: %w", err)
	}
	q, err := json.Marshal(rec.Questions)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal questions: %w", err)
	}
	a, err := json.Marshal(rec.Answers)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal answers: %w", err)
	}
	return string(p), string(q), string(a), nil
}
