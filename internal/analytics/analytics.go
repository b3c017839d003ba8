// Package analytics derives calendar views and statistics from a habit set
// and a sparse map of day logs. Every function here is pure: it takes an
// immutable snapshot of fetched data plus a reference date and returns a
// value, so callers can recompute on every render without locking.
package analytics

import (
	"math"
	"sort"
	"time"

	"cadence/internal/dateutil"
	"cadence/internal/store"
)

// maxWindowDays is the hard cap on any rolling-window walk. Corrupted date
// strings must truncate the loop, never hang it.
const maxWindowDays = 40

// DayStatus is the aggregate status of a whole day.
type DayStatus string

const (
	DayDone   DayStatus = "done"
	DayMissed DayStatus = "missed"
	DayNone   DayStatus = "none"
)

// HabitStats is the rolling-window statistics for a single habit.
type HabitStats struct {
	HabitID           string
	Title             string
	Current           int // consecutive done days ending at the reference date
	Longest           int
	DoneDays          int
	MissedDays        int
	CompletionPercent int // rounded, 0..100
}

// WeekdayAverage is the mean day-completion percentage for one civil weekday.
type WeekdayAverage struct {
	Weekday string
	Average float64
	Days    int
}

// DayCell is one rendered calendar day.
type DayCell struct {
	Date    string
	Percent float64
	Status  DayStatus
}

// Overview bundles everything the dashboard shows for one reference date.
type Overview struct {
	Date           string
	TodayPercent   float64
	TodayStatus    DayStatus
	WeeklyAverage  float64
	MonthBuckets   [4]float64
	Weekdays       []WeekdayAverage
	BestWeekday    string
	WorstWeekday   string
	Habits         []HabitStats
	MostConsistent string // habit title, empty when there are no habits
}

// LogMap keys a slice of logs by date string for sparse lookup.
func LogMap(logs []store.DayLog) map[string]store.DayLog {
	m := make(map[string]store.DayLog, len(logs))
	for _, l := range logs {
		m[l.Date] = l
	}
	return m
}

// logFor looks up the log for a date. Dates inside an enumerated range that
// have no record read as an empty log, not as an absent one: an unmarked
// day inside the calendar counts against the user.
func logFor(logs map[string]store.DayLog, date string) *store.DayLog {
	if l, ok := logs[date]; ok {
		return &l
	}
	return &store.DayLog{Date: date, HabitStatus: map[string]store.RawEntry{}}
}

// DayCompletionPercent is 100 * doneHabits / totalHabits for one day.
// An empty habit set yields 0, never NaN.
func DayCompletionPercent(habits []store.Habit, log *store.DayLog) float64 {
	if len(habits) == 0 {
		return 0
	}
	done := 0
	for _, h := range habits {
		if resolveFor(log, h.ID) == StatusDone {
			done++
		}
	}
	return 100 * float64(done) / float64(len(habits))
}

// DayAggregateStatus folds a day down to done/missed/none. Done means every
// habit resolved done. An absent log (nil) is none; anything else with
// habits present is missed, including a day where nothing was ever marked.
func DayAggregateStatus(habits []store.Habit, log *store.DayLog) DayStatus {
	if log == nil || len(habits) == 0 {
		return DayNone
	}
	for _, h := range habits {
		if resolveFor(log, h.ID) != StatusDone {
			return DayMissed
		}
	}
	return DayDone
}

// StreakStats computes rolling-window streak statistics for one habit over
// the window ending at referenceDate inclusive. The walk runs oldest to
// newest and is capped at maxWindowDays regardless of the requested window.
func StreakStats(h store.Habit, logs map[string]store.DayLog, referenceDate string, window int) HabitStats {
	stats := HabitStats{HabitID: h.ID, Title: h.Title}
	if window <= 0 {
		return stats
	}
	if window > maxWindowDays {
		window = maxWindowDays
	}
	start, err := dateutil.AddDays(referenceDate, -(window - 1))
	if err != nil {
		return stats
	}
	days := dateutil.Enumerate(start, referenceDate, maxWindowDays)

	current := 0
	for _, d := range days {
		if resolveFor(logFor(logs, d), h.ID) == StatusDone {
			current++
			stats.DoneDays++
			if current > stats.Longest {
				stats.Longest = current
			}
		} else {
			current = 0
		}
	}
	stats.Current = current
	stats.MissedDays = len(days) - stats.DoneDays
	if len(days) > 0 {
		stats.CompletionPercent = int(math.Round(100 * float64(stats.DoneDays) / float64(len(days))))
	}
	return stats
}

// AllHabitStats computes streak statistics for every habit, preserving the
// habit set's order.
func AllHabitStats(habits []store.Habit, logs map[string]store.DayLog, referenceDate string, window int) []HabitStats {
	out := make([]HabitStats, 0, len(habits))
	for _, h := range habits {
		out = append(out, StreakStats(h, logs, referenceDate, window))
	}
	return out
}

// WeeklyAverage is the mean day-completion percentage over the last 7 days
// ending at referenceDate.
func WeeklyAverage(habits []store.Habit, logs map[string]store.DayLog, referenceDate string) float64 {
	start, err := dateutil.AddDays(referenceDate, -6)
	if err != nil {
		return 0
	}
	days := dateutil.Enumerate(start, referenceDate, maxWindowDays)
	return averagePercent(habits, logs, days)
}

// MonthBuckets splits referenceDate's calendar month into four buckets by
// day-of-month/7 capped at the last bucket, and averages day completion in
// each. A bucket no day falls into reads 0.
func MonthBuckets(habits []store.Habit, logs map[string]store.DayLog, referenceDate string) [4]float64 {
	var buckets [4]float64
	year, month, _, err := dateutil.Parse(referenceDate)
	if err != nil {
		return buckets
	}
	var sums, counts [4]float64
	last := dateutil.DaysInMonth(year, month)
	for day := 1; day <= last; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dateutil.Layout)
		idx := day / 7
		if idx > 3 {
			idx = 3
		}
		sums[idx] += DayCompletionPercent(habits, logFor(logs, date))
		counts[idx]++
	}
	for i := range buckets {
		if counts[i] > 0 {
			buckets[i] = sums[i] / counts[i]
		}
	}
	return buckets
}

// WeekdayAverages groups the last 30 days by civil weekday, averages day
// completion per group, and ranks the groups best-first. Ties keep the
// Monday-first grouping order.
func WeekdayAverages(habits []store.Habit, logs map[string]store.DayLog, referenceDate string) []WeekdayAverage {
	start, err := dateutil.AddDays(referenceDate, -29)
	if err != nil {
		return nil
	}
	days := dateutil.Enumerate(start, referenceDate, maxWindowDays)

	var sums [7]float64
	var counts [7]int
	for _, d := range days {
		idx, err := dateutil.WeekdayIndex(d)
		if err != nil {
			continue
		}
		sums[idx] += DayCompletionPercent(habits, logFor(logs, d))
		counts[idx]++
	}

	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	out := make([]WeekdayAverage, 0, 7)
	for i, name := range names {
		avg := 0.0
		if counts[i] > 0 {
			avg = sums[i] / float64(counts[i])
		}
		out = append(out, WeekdayAverage{Weekday: name, Average: avg, Days: counts[i]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Average > out[j].Average })
	return out
}

// MostConsistent returns the habit with the highest rolling completion
// percentage. Ties go to the earlier habit in the set's order.
func MostConsistent(habits []store.Habit, logs map[string]store.DayLog, referenceDate string, window int) (HabitStats, bool) {
	if len(habits) == 0 {
		return HabitStats{}, false
	}
	stats := AllHabitStats(habits, logs, referenceDate, window)
	ranked := make([]HabitStats, len(stats))
	copy(ranked, stats)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CompletionPercent > ranked[j].CompletionPercent
	})
	return ranked[0], true
}

// MonthCalendar renders every day of a month as a cell. Days with no record
// read as unmarked days, so a month with no data at all is a month of
// missed days.
func MonthCalendar(habits []store.Habit, logs map[string]store.DayLog, year int, month time.Month) []DayCell {
	last := dateutil.DaysInMonth(year, month)
	cells := make([]DayCell, 0, last)
	for day := 1; day <= last; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dateutil.Layout)
		log := logFor(logs, date)
		cells = append(cells, DayCell{
			Date:    date,
			Percent: DayCompletionPercent(habits, log),
			Status:  DayAggregateStatus(habits, log),
		})
	}
	return cells
}

// BuildOverview assembles the full dashboard view model for one reference
// date from a single data snapshot.
func BuildOverview(habits []store.Habit, logs map[string]store.DayLog, referenceDate string, window int) Overview {
	o := Overview{
		Date:          referenceDate,
		TodayPercent:  DayCompletionPercent(habits, logFor(logs, referenceDate)),
		WeeklyAverage: WeeklyAverage(habits, logs, referenceDate),
		MonthBuckets:  MonthBuckets(habits, logs, referenceDate),
		Weekdays:      WeekdayAverages(habits, logs, referenceDate),
		Habits:        AllHabitStats(habits, logs, referenceDate, window),
	}

	var todayLog *store.DayLog
	if l, ok := logs[referenceDate]; ok {
		todayLog = &l
	}
	o.TodayStatus = DayAggregateStatus(habits, todayLog)

	if len(o.Weekdays) > 0 {
		o.BestWeekday = o.Weekdays[0].Weekday
		o.WorstWeekday = o.Weekdays[len(o.Weekdays)-1].Weekday
	}
	if best, ok := MostConsistent(habits, logs, referenceDate, window); ok {
		o.MostConsistent = best.Title
	}
	return o
}

func averagePercent(habits []store.Habit, logs map[string]store.DayLog, days []string) float64 {
	if len(days) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range days {
		sum += DayCompletionPercent(habits, logFor(logs, d))
	}
	return sum / float64(len(days))
}
