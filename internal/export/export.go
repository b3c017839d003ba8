// Package export renders a date range of habit data into files: CSV for
// spreadsheets, JSON for machines, and a printable text report.
package export

import (
	"fmt"

	"cadence/internal/analytics"
	"cadence/internal/dateutil"
	"cadence/internal/store"
)

// maxExportDays caps the range walk at a year plus a leap day.
const maxExportDays = 366

// dayRow is one exported day: per-habit statuses in habit order plus the
// day's counters.
type dayRow struct {
	date     string
	statuses []analytics.Status
	done     int
	skipped  int
	unmarked int
	percent  float64
	mood     string
	note     string
}

// buildRows enumerates every day of the range, including days with no
// record, which export as fully unmarked.
func buildRows(habits []store.Habit, logs map[string]store.DayLog, start, end string) []dayRow {
	days := dateutil.Enumerate(start, end, maxExportDays)
	rows := make([]dayRow, 0, len(days))
	for _, d := range days {
		row := dayRow{date: d, statuses: make([]analytics.Status, 0, len(habits))}
		var log *store.DayLog
		if l, ok := logs[d]; ok {
			log = &l
			row.mood = l.Mood
			row.note = l.Note
		}
		for _, h := range habits {
			st := analytics.StatusNone
			if log != nil {
				if e, ok := log.HabitStatus[h.ID]; ok {
					st = analytics.Resolve(&e)
				}
			}
			row.statuses = append(row.statuses, st)
			switch st {
			case analytics.StatusDone:
				row.done++
			case analytics.StatusSkip:
				row.skipped++
			default:
				row.unmarked++
			}
		}
		if len(habits) > 0 {
			row.percent = 100 * float64(row.done) / float64(len(habits))
		}
		rows = append(rows, row)
	}
	return rows
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f", p)
}
