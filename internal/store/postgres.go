package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "embed"

	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists interview records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store from a connection
// string DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run PostgreSQL migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore ready")
	return &PostgresStore{db: db}, nil
}

// SaveInterview inserts a completed screening record.
func (s *PostgresStore) SaveInterview(rec InterviewRecord) error {
	ensureID(&rec)
	profileJSON, questionsJSON, answersJSON, err := marshalRecord(rec)
	if err != nil {
		slog.Error("PostgresStore SaveInterview marshal failed", "error", err, "id", rec.ID)
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO interviews (id, profile, questions, answers, final_phase, message_count, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, profileJSON, questionsJSON, answersJSON, string(rec.FinalPhase), rec.MessageCount, rec.StartedAt, rec.CompletedAt)
	if err != nil {
		slog.Error("PostgresStore SaveInterview failed", "error", err, "id", rec.ID)
		return fmt.Errorf("failed to insert interview %s: %w", rec.ID, err)
	}
	slog.Debug("PostgresStore SaveInterview succeeded", "id", rec.ID)
	return nil
}

// GetInterviews returns all saved screening records.
func (s *PostgresStore) GetInterviews() ([]InterviewRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, profile, questions, answers, final_phase, message_count, started_at, completed_at FROM interviews`)
	if err != nil {
		slog.Error("PostgresStore GetInterviews query failed", "error", err)
		return nil, fmt.Errorf("failed to query interviews: %w", err)
	}
	defer rows.Close()

	var records []InterviewRecord
	for rows.Next() {
		rec, err := scanInterview(rows)
		if err != nil {
			slog.Error("PostgresStore GetInterviews scan failed", "error", err)
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore GetInterviews rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate interview rows: %w", err)
	}
	slog.Debug("PostgresStore GetInterviews succeeded", "count", len(records))
	return records, nil
}

// Close closes the PostgreSQL connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
