package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cadence/internal/store"
)

func sampleData() ([]store.Habit, map[string]store.DayLog) {
	habits := []store.Habit{
		{ID: "h1", Title: "Drink water", Category: store.CategoryCommon, TargetType: store.TargetDaily, TargetValue: 8, Active: true},
		{ID: "h2", Title: "Exercise", Category: store.CategoryCommon, TargetType: store.TargetDaily, TargetValue: 1, Active: true},
	}
	logs := map[string]store.DayLog{
		"2024-01-01": {
			Date: "2024-01-01",
			HabitStatus: map[string]store.RawEntry{
				"h1": {Status: "done", Count: 8},
				"h2": {Status: "skip"},
			},
			Mood: "happy",
			Note: "fresh start",
		},
		"2024-01-03": {
			Date: "2024-01-03",
			HabitStatus: map[string]store.RawEntry{
				"h1": {Status: "done", Count: 9},
				"h2": {Status: "done", Count: 1},
			},
		},
		// 2024-01-02 deliberately absent
	}
	return habits, logs
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	habits, logs := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(habits, logs, "2024-01-01", "2024-01-03", path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 days
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 days), got %d", len(records))
	}

	header := records[0]
	expectedHeader := []string{"Date", "Done", "Skipped", "Unmarked", "Completion %", "Mood", "Note", "Drink water", "Exercise"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	// Day with one done and one skip
	row := records[1]
	if row[0] != "2024-01-01" {
		t.Fatalf("Date = %q", row[0])
	}
	if row[1] != "1" || row[2] != "1" || row[3] != "0" {
		t.Fatalf("counters = %s/%s/%s, want 1/1/0", row[1], row[2], row[3])
	}
	if row[4] != "50.0" {
		t.Fatalf("completion = %q, want 50.0", row[4])
	}
	if row[5] != "happy" || row[6] != "fresh start" {
		t.Fatalf("mood/note = %q/%q", row[5], row[6])
	}
	if row[7] != "done" || row[8] != "skip" {
		t.Fatalf("statuses = %q/%q", row[7], row[8])
	}

	// The absent day exports fully unmarked with empty status cells.
	gap := records[2]
	if gap[0] != "2024-01-02" {
		t.Fatalf("gap date = %q", gap[0])
	}
	if gap[3] != "2" {
		t.Fatalf("gap unmarked = %q, want 2", gap[3])
	}
	if gap[7] != "" || gap[8] != "" {
		t.Fatalf("gap statuses should be empty, got %q/%q", gap[7], gap[8])
	}
}

func TestToCSVEmptyRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	// Reversed bounds enumerate no days: header only.
	if err := ToCSV(nil, nil, "2024-01-05", "2024-01-01", path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	records, _ := r.ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, nil, "2024-01-01", "2024-01-01", "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	habits := []store.Habit{
		{ID: "h1", Title: `Read "real" books, daily`, TargetValue: 1, Active: true},
	}
	logs := map[string]store.DayLog{
		"2024-01-01": {
			Date:        "2024-01-01",
			HabitStatus: map[string]store.RawEntry{"h1": {Status: "done"}},
			Note:        `notes with "quotes" and, commas`,
		},
	}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(habits, logs, "2024-01-01", "2024-01-01", path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("CSV should be valid even with special chars: %v", err)
	}
	if records[0][7] != `Read "real" books, daily` {
		t.Fatalf("habit title mangled: %q", records[0][7])
	}
	if records[1][6] != `notes with "quotes" and, commas` {
		t.Fatalf("note mangled: %q", records[1][6])
	}
}

func TestToCSVRangeCapped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capped.csv")
	if err := ToCSV(nil, nil, "2020-01-01", "2030-01-01", path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	records, _ := r.ReadAll()
	if len(records)-1 > maxExportDays {
		t.Fatalf("range walked %d days, cap is %d", len(records)-1, maxExportDays)
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	habits, logs := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(habits, logs, "2024-01-01", "2024-01-03", path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Days != 3 {
		t.Fatalf("days = %d, want 3", result.Days)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(result.Entries))
	}
	if len(result.Habits) != 2 {
		t.Fatalf("habits = %d, want 2", len(result.Habits))
	}
	if result.Start != "2024-01-01" || result.End != "2024-01-03" {
		t.Fatalf("range = %s..%s", result.Start, result.End)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	e := result.Entries[0]
	if e.Date != "2024-01-01" || e.Done != 1 || e.Skipped != 1 {
		t.Fatalf("first entry: %+v", e)
	}
	if e.Statuses["Drink water"] != "done" || e.Statuses["Exercise"] != "skip" {
		t.Fatalf("statuses: %+v", e.Statuses)
	}
	if e.Mood != "happy" {
		t.Fatalf("mood = %q", e.Mood)
	}

	gap := result.Entries[1]
	if gap.Date != "2024-01-02" || gap.Unmarked != 2 {
		t.Fatalf("gap entry: %+v", gap)
	}
	if gap.Statuses["Drink water"] != "none" {
		t.Fatalf("gap status = %q, want none", gap.Statuses["Drink water"])
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, nil, "2024-01-05", "2024-01-01", path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Days != 0 {
		t.Fatalf("days = %d, want 0", result.Days)
	}
	if result.Entries != nil {
		t.Fatal("entries should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, nil, "2024-01-01", "2024-01-01", "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, nil, "2024-01-01", "2024-01-01", path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(string(data), "  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

// ============================================================
// Report
// ============================================================

func TestReport(t *testing.T) {
	habits, logs := sampleData()
	text := Report(habits, logs, "2024-01-01", "2024-01-03", 30)

	for _, want := range []string{
		"2024-01-01", "2024-01-02", "2024-01-03",
		"Drink water", "Exercise",
		"Average completion",
		"Best weekday", "Worst weekday",
		"Most consistent habit",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing %q:\n%s", want, text)
		}
	}

	// The fully-done day carries the marker.
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "2024-01-03") && !strings.HasPrefix(line, "*") {
			t.Fatalf("fully-done day should be starred: %q", line)
		}
	}
}

func TestReportNoHabits(t *testing.T) {
	text := Report(nil, nil, "2024-01-01", "2024-01-02", 30)
	if !strings.Contains(text, "0 habits, 2 days") {
		t.Fatalf("unexpected report:\n%s", text)
	}
	if strings.Contains(text, "Most consistent") {
		t.Fatal("no-habit report should omit habit aggregates")
	}
}

func TestToReportWritesFile(t *testing.T) {
	habits, logs := sampleData()
	path := filepath.Join(t.TempDir(), "report.txt")
	if err := ToReport(habits, logs, "2024-01-01", "2024-01-03", 30, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("report file is empty")
	}
}
