package export

import (
	"fmt"
	"os"
	"strings"

	"cadence/internal/analytics"
	"cadence/internal/store"
)

// Report renders a printable text summary of the range: per-day lines plus
// the aggregates the dashboard shows.
func Report(habits []store.Habit, logs map[string]store.DayLog, start, end string, window int) string {
	var b strings.Builder
	rows := buildRows(habits, logs, start, end)

	fmt.Fprintf(&b, "Habit report  %s .. %s\n", start, end)
	fmt.Fprintf(&b, "%d habits, %d days\n\n", len(habits), len(rows))

	total := 0.0
	for _, row := range rows {
		marker := " "
		if len(habits) > 0 && row.done == len(habits) {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s  done %2d  skipped %2d  unmarked %2d  %5s%%\n",
			marker, row.date, row.done, row.skipped, row.unmarked, formatPercent(row.percent))
		total += row.percent
	}
	if len(rows) > 0 {
		fmt.Fprintf(&b, "\nAverage completion: %s%%\n", formatPercent(total/float64(len(rows))))
	}

	if len(habits) > 0 {
		logMap := logs
		if logMap == nil {
			logMap = map[string]store.DayLog{}
		}
		fmt.Fprintf(&b, "\nHabit streaks (last %d days)\n", window)
		for _, st := range analytics.AllHabitStats(habits, logMap, end, window) {
			fmt.Fprintf(&b, "  %-24s current %2d  longest %2d  missed %2d  %3d%%\n",
				st.Title, st.Current, st.Longest, st.MissedDays, st.CompletionPercent)
		}

		weekdays := analytics.WeekdayAverages(habits, logMap, end)
		if len(weekdays) > 0 {
			fmt.Fprintf(&b, "\nBest weekday:  %s (%s%%)\n", weekdays[0].Weekday, formatPercent(weekdays[0].Average))
			last := weekdays[len(weekdays)-1]
			fmt.Fprintf(&b, "Worst weekday: %s (%s%%)\n", last.Weekday, formatPercent(last.Average))
		}
		if best, ok := analytics.MostConsistent(habits, logMap, end, window); ok {
			fmt.Fprintf(&b, "Most consistent habit: %s (%d%%)\n", best.Title, best.CompletionPercent)
		}
	}

	return b.String()
}

// ToReport writes the text report to a file.
func ToReport(habits []store.Habit, logs map[string]store.DayLog, start, end string, window int, path string) error {
	if err := os.WriteFile(path, []byte(Report(habits, logs, start, end, window)), 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}
