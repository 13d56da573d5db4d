// Package store provides storage backends for completed screening
// sessions.
//
// It includes an in-memory store plus SQLite and PostgreSQL
// implementations behind a common interface. Recording is best-effort
// bookkeeping for recruiters; the live conversation never depends on it.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentscout/maya/internal/models"
)

// InterviewRecord is one completed (or abandoned) screening session as
// persisted for recruiter review.
type InterviewRecord struct {
	ID           string                  `json:"id"`
	Profile      models.CandidateProfile `json:"profile"`
	Questions    []string                `json:"questions"`
	Answers      []string                `json:"answers"`
	FinalPhase   models.Phase            `json:"final_phase"`
	MessageCount int                     `json:"message_count"`
	StartedAt    time.Time               `json:"started_at"`
	CompletedAt  time.Time               `json:"completed_at"`
}

// Store defines the persistence interface for interview records.
type Store interface {
	SaveInterview(rec InterviewRecord) error
	GetInterviews() ([]InterviewRecord, error)
	Close() error
}

// Opts holds configuration options for store implementations.
type Opts struct {
	DSN string
}

// Option configures a store.
type Option func(*Opts)

// WithSQLiteDSN sets a SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports "postgres" for PostgreSQL connection strings and
// "sqlite" for anything else (treated as a file path).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// ensureID fills in a generated record ID when the caller left it empty.
func ensureID(rec *InterviewRecord) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
}

// InMemoryStore keeps interview records in memory. Used when no DSN is
// configured and as the test double for the persistent stores.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []InterviewRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// SaveInterview appends a record, assigning an ID if needed.
func (s *InMemoryStore) SaveInterview(rec InterviewRecord) error {
	ensureID(&rec)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// GetInterviews returns a copy of all saved records.
func (s *InMemoryStore) GetInterviews() ([]InterviewRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]InterviewRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
