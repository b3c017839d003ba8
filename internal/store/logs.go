package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// GetLog fetches the record for one date. A missing record returns (nil, nil):
// absence is data ("no record"), not an error.
func (s *Store) GetLog(date string) (*DayLog, error) {
	row := s.db.QueryRow(
		`SELECT date, updated_at, habit_status, mood, note FROM day_logs WHERE date = ?`, date,
	)
	log, err := scanLog(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get log %s: %w", date, err)
	}
	return log, nil
}

// GetLogsInRange returns the logs with start <= date <= end, ordered by date.
// Dates without a record are simply absent from the result.
func (s *Store) GetLogsInRange(start, end string) ([]DayLog, error) {
	rows, err := s.db.Query(
		`SELECT date, updated_at, habit_status, mood, note
		 FROM day_logs WHERE date >= ? AND date <= ? ORDER BY date`, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("logs in range %s..%s: %w", start, end, err)
	}
	defer rows.Close()

	var logs []DayLog
	for rows.Next() {
		log, err := scanLog(rows.Scan)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

// UpsertLog writes the record for log.Date. The habit status map is
// rewritten wholesale; mood and note left empty in the write preserve
// whatever the existing record holds.
func (s *Store) UpsertLog(log DayLog) error {
	status := log.HabitStatus
	if status == nil {
		status = map[string]RawEntry{}
	}
	blob, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal habit status: %w", err)
	}

	updatedAt := log.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = s.db.Exec(
		`INSERT INTO day_logs (date, updated_at, habit_status, mood, note) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			updated_at   = excluded.updated_at,
			habit_status = excluded.habit_status,
			mood = CASE WHEN excluded.mood = '' THEN day_logs.mood ELSE excluded.mood END,
			note = CASE WHEN excluded.note = '' THEN day_logs.note ELSE excluded.note END`,
		log.Date, updatedAt.Format(time.RFC3339), string(blob), log.Mood, log.Note,
	)
	if err != nil {
		return fmt.Errorf("upsert log %s: %w", log.Date, err)
	}
	return nil
}

func scanLog(scan func(...any) error) (*DayLog, error) {
	var log DayLog
	var updatedAt, statusBlob string
	if err := scan(&log.Date, &updatedAt, &statusBlob, &log.Mood, &log.Note); err != nil {
		return nil, err
	}
	log.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	// Tolerate malformed blobs: a log whose status column cannot be parsed
	// reads as a day with no per-habit data rather than a failed fetch.
	if err := json.Unmarshal([]byte(statusBlob), &log.HabitStatus); err != nil {
		log.HabitStatus = map[string]RawEntry{}
	}
	if log.HabitStatus == nil {
		log.HabitStatus = map[string]RawEntry{}
	}
	return &log, nil
}
