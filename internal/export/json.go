package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cadence/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Start      string      `json:"start"`
	End        string      `json:"end"`
	Days       int         `json:"days"`
	Habits     []jsonHabit `json:"habits"`
	Entries    []jsonDay   `json:"entries"`
}

type jsonHabit struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	TargetType  string  `json:"target_type"`
	TargetValue float64 `json:"target_value"`
}

type jsonDay struct {
	Date     string            `json:"date"`
	Done     int               `json:"done"`
	Skipped  int               `json:"skipped"`
	Unmarked int               `json:"unmarked"`
	Percent  float64           `json:"completion_percent"`
	Statuses map[string]string `json:"statuses,omitempty"` // habit title -> status
	Mood     string            `json:"mood,omitempty"`
	Note     string            `json:"note,omitempty"`
}

// ToJSON writes the range as a structured document: the habit set once,
// then one entry per day.
func ToJSON(habits []store.Habit, logs map[string]store.DayLog, start, end, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Start:      start,
		End:        end,
	}
	for _, h := range habits {
		export.Habits = append(export.Habits, jsonHabit{
			ID:          h.ID,
			Title:       h.Title,
			Category:    h.Category,
			TargetType:  h.TargetType,
			TargetValue: h.TargetValue,
		})
	}

	rows := buildRows(habits, logs, start, end)
	export.Days = len(rows)
	for _, row := range rows {
		day := jsonDay{
			Date:     row.date,
			Done:     row.done,
			Skipped:  row.skipped,
			Unmarked: row.unmarked,
			Percent:  row.percent,
			Mood:     row.mood,
			Note:     row.note,
		}
		if len(habits) > 0 {
			day.Statuses = make(map[string]string, len(habits))
			for i, h := range habits {
				day.Statuses[h.Title] = string(row.statuses[i])
			}
		}
		export.Entries = append(export.Entries, day)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
