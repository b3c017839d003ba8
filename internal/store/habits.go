package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateHabit(title, category, targetType string, targetValue float64) (*Habit, error) {
	if targetValue <= 0 {
		return nil, fmt.Errorf("target value must be positive, got %v", targetValue)
	}

	var maxPos int
	s.db.QueryRow(`SELECT COALESCE(MAX(position), -1) FROM habits`).Scan(&maxPos)

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO habits (id, title, category, target_type, target_value, active, position, created_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		id, title, category, targetType, targetValue, maxPos+1, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	return s.GetHabit(id)
}

func (s *Store) GetHabit(id string) (*Habit, error) {
	h := &Habit{}
	var active int
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, title, category, target_type, target_value, active, position, created_at
		 FROM habits WHERE id = ?`, id,
	).Scan(&h.ID, &h.Title, &h.Category, &h.TargetType, &h.TargetValue, &active, &h.Position, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get habit %s: %w", id, err)
	}
	h.Active = active == 1
	h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return h, nil
}

// ListHabits returns habits in their stable user-defined order. Paused
// habits are skipped unless includeInactive is set; retired habits keep
// their rows so old log entries stay resolvable.
func (s *Store) ListHabits(includeInactive bool) ([]Habit, error) {
	query := `SELECT id, title, category, target_type, target_value, active, position, created_at FROM habits`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY position, created_at`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []Habit
	for rows.Next() {
		var h Habit
		var active int
		var createdAt string
		if err := rows.Scan(&h.ID, &h.Title, &h.Category, &h.TargetType, &h.TargetValue, &active, &h.Position, &createdAt); err != nil {
			return nil, err
		}
		h.Active = active == 1
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) UpdateHabit(id, title string, targetValue float64) error {
	if targetValue <= 0 {
		return fmt.Errorf("target value must be positive, got %v", targetValue)
	}
	_, err := s.db.Exec(
		`UPDATE habits SET title = ?, target_value = ? WHERE id = ?`,
		title, targetValue, id,
	)
	return err
}

// SetHabitActive pauses or resumes a habit. If the row does not exist yet
// (the record was never persisted), it falls back to a full create so the
// toggle still lands.
func (s *Store) SetHabitActive(h Habit, active bool) error {
	val := 0
	if active {
		val = 1
	}
	res, err := s.db.Exec(`UPDATE habits SET active = ? WHERE id = ?`, val, h.ID)
	if err != nil {
		return fmt.Errorf("toggle habit %s: %w", h.ID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO habits (id, title, category, target_type, target_value, active, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Title, h.Category, h.TargetType, h.TargetValue, val, h.Position, now,
	)
	if err != nil {
		return fmt.Errorf("toggle habit %s: fallback create: %w", h.ID, err)
	}
	return nil
}

func (s *Store) DeleteHabit(id string) error {
	res, err := s.db.Exec(`DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete habit %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("habit %s not found", id)
	}
	return nil
}

var defaultHabits = []struct {
	title       string
	targetType  string
	targetValue float64
}{
	{"Drink water", TargetDaily, 8},
	{"Exercise", TargetDaily, 1},
	{"Read", TargetDaily, 1},
	{"Sleep before midnight", TargetDaily, 1},
}

// SeedDefaultHabitsIfEmpty installs the starter habit set on first run.
// A store that already has any habit row (active or not) is left alone.
func (s *Store) SeedDefaultHabitsIfEmpty() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM habits`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count habits: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	for _, d := range defaultHabits {
		if _, err := s.CreateHabit(d.title, CategoryCommon, d.targetType, d.targetValue); err != nil {
			return 0, fmt.Errorf("seed %q: %w", d.title, err)
		}
	}
	return len(defaultHabits), nil
}
