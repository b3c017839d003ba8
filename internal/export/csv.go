package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"cadence/internal/analytics"
	"cadence/internal/store"
)

// ToCSV writes one row per day of the range: the day's counters followed by
// one status column per habit. Unmarked habits export as empty cells.
func ToCSV(habits []store.Habit, logs map[string]store.DayLog, start, end, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Date", "Done", "Skipped", "Unmarked", "Completion %", "Mood", "Note"}
	for _, h := range habits {
		header = append(header, h.Title)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range buildRows(habits, logs, start, end) {
		record := []string{
			row.date,
			fmt.Sprintf("%d", row.done),
			fmt.Sprintf("%d", row.skipped),
			fmt.Sprintf("%d", row.unmarked),
			formatPercent(row.percent),
			row.mood,
			row.note,
		}
		for _, st := range row.statuses {
			cell := string(st)
			if st == analytics.StatusNone {
				cell = ""
			}
			record = append(record, cell)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}
