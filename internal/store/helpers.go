package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/talentscout/maya/internal/models"
)

// scanInterview scans an InterviewRecord from sql.Rows shared by the
// SQLite and PostgreSQL stores (identical column order).
func scanInterview(rows *sql.Rows) (InterviewRecord, error) {
	var rec InterviewRecord
	var profileJSON string
	var questionsJSON, answersJSON sql.NullString
	var finalPhase string

	err := rows.Scan(&rec.ID, &profileJSON, &questionsJSON, &answersJSON,
		&finalPhase, &rec.MessageCount, &rec.StartedAt, &rec.CompletedAt)
	if err != nil {
		return rec, fmt.Errorf("scan interview failed: %w", err)
	}

	rec.FinalPhase = models.Phase(finalPhase)
	if err := json.Unmarshal([]byte(profileJSON), &rec.Profile); err != nil {
		return rec, fmt.Errorf("unmarshal profile for %s: %w", rec.ID, err)
	}
	if questionsJSON.Valid && questionsJSON.String != "" {
		if err := json.Unmarshal([]byte(questionsJSON.String), &rec.Questions); err != nil {
			return rec, fmt.Errorf("unmarshal questions for %s: %w", rec.ID, err)
		}
	}
	if answersJSON.Valid && answersJSON.String != "" {
		if err := json.Unmarshal([]byte(answersJSON.String), &rec.Answers); err != nil {
			return rec, fmt.Errorf("unmarshal answers for %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}
