package store

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/cadence.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Habits
// ============================================================

func TestCreateAndGetHabit(t *testing.T) {
	s := newTestStore(t)
	h, err := s.CreateHabit("Meditate", CategoryCustom, TargetDaily, 1)
	if err != nil {
		t.Fatal(err)
	}
	if h.Title != "Meditate" || h.Category != CategoryCustom || h.TargetType != TargetDaily {
		t.Fatalf("unexpected habit: %+v", h)
	}
	if h.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if !h.Active {
		t.Fatal("new habit should be active")
	}
	if h.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}
	if !h.Checkbox() {
		t.Fatal("target 1 should be a checkbox habit")
	}
}

func TestCreateHabitInvalidTarget(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateHabit("Bad", CategoryCustom, TargetDaily, 0); err == nil {
		t.Fatal("expected error for zero target value")
	}
	if _, err := s.CreateHabit("Bad", CategoryCustom, TargetDaily, -2); err == nil {
		t.Fatal("expected error for negative target value")
	}
}

func TestGetHabitNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetHabit("missing"); err == nil {
		t.Fatal("expected error for missing habit")
	}
}

func TestListHabitsStableOrder(t *testing.T) {
	s := newTestStore(t)
	s.CreateHabit("First", CategoryCustom, TargetDaily, 1)
	s.CreateHabit("Second", CategoryCustom, TargetDaily, 1)
	s.CreateHabit("Third", CategoryCustom, TargetWeekly, 3)

	habits, err := s.ListHabits(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 3 {
		t.Fatalf("expected 3 habits, got %d", len(habits))
	}
	// Creation order, not alphabetical: position is the stable user order.
	if habits[0].Title != "First" || habits[1].Title != "Second" || habits[2].Title != "Third" {
		t.Fatalf("wrong order: %s, %s, %s", habits[0].Title, habits[1].Title, habits[2].Title)
	}
	for i, h := range habits {
		if h.Position != i {
			t.Fatalf("habit %d has position %d", i, h.Position)
		}
	}
}

func TestListHabitsExcludesPaused(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Paused", CategoryCustom, TargetDaily, 1)
	s.CreateHabit("Running", CategoryCustom, TargetDaily, 1)

	if err := s.SetHabitActive(*h, false); err != nil {
		t.Fatal(err)
	}

	active, _ := s.ListHabits(false)
	if len(active) != 1 || active[0].Title != "Running" {
		t.Fatalf("expected only the running habit, got %d", len(active))
	}
	all, _ := s.ListHabits(true)
	if len(all) != 2 {
		t.Fatalf("expected 2 habits including paused, got %d", len(all))
	}
}

func TestUpdateHabit(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Old", CategoryCustom, TargetDaily, 1)

	if err := s.UpdateHabit(h.ID, "New", 5); err != nil {
		t.Fatal(err)
	}
	updated, _ := s.GetHabit(h.ID)
	if updated.Title != "New" || updated.TargetValue != 5 {
		t.Fatalf("update failed: %+v", updated)
	}
	if updated.Checkbox() {
		t.Fatal("target 5 should not be a checkbox habit")
	}
}

func TestSetHabitActiveFallbackCreate(t *testing.T) {
	s := newTestStore(t)

	// The habit exists only in memory: the toggle must fall back to a
	// full create instead of failing on the missing row.
	ghost := Habit{ID: "ghost-id", Title: "Ghost", Category: CategoryCustom, TargetType: TargetDaily, TargetValue: 1}
	if err := s.SetHabitActive(ghost, false); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetHabit("ghost-id")
	if err != nil {
		t.Fatalf("fallback create did not persist the habit: %v", err)
	}
	if got.Active {
		t.Fatal("habit should have been created paused")
	}
	if got.Title != "Ghost" {
		t.Fatalf("fallback create lost fields: %+v", got)
	}
}

func TestDeleteHabit(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Doomed", CategoryCustom, TargetDaily, 1)
	if err := s.DeleteHabit(h.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetHabit(h.ID); err == nil {
		t.Fatal("habit should be gone")
	}
	if err := s.DeleteHabit(h.ID); err == nil {
		t.Fatal("second delete should error")
	}
}

func TestSeedDefaultHabits(t *testing.T) {
	s := newTestStore(t)
	n, err := s.SeedDefaultHabitsIfEmpty()
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("empty store should be seeded")
	}
	habits, _ := s.ListHabits(false)
	if len(habits) != n {
		t.Fatalf("expected %d seeded habits, got %d", n, len(habits))
	}
	for _, h := range habits {
		if h.Category != CategoryCommon {
			t.Fatalf("seeded habit %q should be common", h.Title)
		}
	}

	// Second seed is a no-op.
	n2, err := s.SeedDefaultHabitsIfEmpty()
	if err != nil {
		t.Fatal(err)
	}
	if n2 != 0 {
		t.Fatal("non-empty store should not be re-seeded")
	}
}

// ============================================================
// Day logs
// ============================================================

func TestGetLogAbsent(t *testing.T) {
	s := newTestStore(t)
	log, err := s.GetLog("2024-01-15")
	if err != nil {
		t.Fatal(err)
	}
	if log != nil {
		t.Fatal("absent date should return nil, not an empty record")
	}
}

func TestUpsertAndGetLog(t *testing.T) {
	s := newTestStore(t)
	err := s.UpsertLog(DayLog{
		Date:        "2024-01-15",
		HabitStatus: map[string]RawEntry{"h1": {Status: "done", Count: 1}},
		Mood:        "happy",
		Note:        "good day",
	})
	if err != nil {
		t.Fatal(err)
	}

	log, err := s.GetLog("2024-01-15")
	if err != nil {
		t.Fatal(err)
	}
	if log == nil {
		t.Fatal("expected a record")
	}
	if log.Date != "2024-01-15" || log.Mood != "happy" || log.Note != "good day" {
		t.Fatalf("unexpected log: %+v", log)
	}
	if e := log.HabitStatus["h1"]; e.Status != "done" || e.Count != 1 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if log.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt should be set")
	}
}

func TestUpsertLogMergeSemantics(t *testing.T) {
	s := newTestStore(t)
	s.UpsertLog(DayLog{
		Date:        "2024-01-15",
		HabitStatus: map[string]RawEntry{"h1": {Status: "done"}, "h2": {Status: "skip"}},
		Mood:        "rest",
		Note:        "keep me",
	})

	// A write with empty mood/note rewrites habit status wholesale but
	// preserves the existing mood and note.
	s.UpsertLog(DayLog{
		Date:        "2024-01-15",
		HabitStatus: map[string]RawEntry{"h1": {Status: "skip"}},
	})

	log, _ := s.GetLog("2024-01-15")
	if log.Mood != "rest" || log.Note != "keep me" {
		t.Fatalf("mood/note should be preserved: %+v", log)
	}
	if len(log.HabitStatus) != 1 {
		t.Fatalf("habit status should be rewritten wholesale, got %d entries", len(log.HabitStatus))
	}
	if log.HabitStatus["h1"].Status != "skip" {
		t.Fatalf("unexpected status: %+v", log.HabitStatus["h1"])
	}

	// A write with mood set replaces it.
	s.UpsertLog(DayLog{Date: "2024-01-15", Mood: "angry"})
	log, _ = s.GetLog("2024-01-15")
	if log.Mood != "angry" {
		t.Fatalf("mood should be replaced, got %q", log.Mood)
	}
}

func TestUpsertLogLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	for i, status := range []string{"skip", "done", "none"} {
		s.UpsertLog(DayLog{
			Date:        "2024-01-15",
			UpdatedAt:   time.Now().UTC().Add(time.Duration(i) * time.Second),
			HabitStatus: map[string]RawEntry{"h1": {Status: status}},
		})
	}
	log, _ := s.GetLog("2024-01-15")
	if log.HabitStatus["h1"].Status != "none" {
		t.Fatalf("last write should win, got %q", log.HabitStatus["h1"].Status)
	}
}

func TestGetLogsInRangeInclusiveSparse(t *testing.T) {
	s := newTestStore(t)
	for _, d := range []string{"2024-01-01", "2024-01-03", "2024-01-05", "2024-02-01"} {
		s.UpsertLog(DayLog{Date: d, HabitStatus: map[string]RawEntry{}})
	}

	logs, err := s.GetLogsInRange("2024-01-01", "2024-01-05")
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 logs (inclusive bounds, sparse), got %d", len(logs))
	}
	// Ordered by date string.
	for i := 1; i < len(logs); i++ {
		if logs[i-1].Date >= logs[i].Date {
			t.Fatalf("range not ordered: %s >= %s", logs[i-1].Date, logs[i].Date)
		}
	}
	if logs[0].Date != "2024-01-01" || logs[2].Date != "2024-01-05" {
		t.Fatal("inclusive bounds not honored")
	}
}

func TestGetLogsInRangeEmpty(t *testing.T) {
	s := newTestStore(t)
	logs, err := s.GetLogsInRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatal(err)
	}
	if logs != nil {
		t.Fatal("expected nil slice for empty range")
	}
}

func TestLogLegacyBooleanEntrySurvivesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	// Simulate a record written by an old client: legacy {done: bool} shape.
	_, err := s.db.Exec(
		`INSERT INTO day_logs (date, updated_at, habit_status) VALUES (?, ?, ?)`,
		"2024-01-15", time.Now().UTC().Format(time.RFC3339),
		`{"h1":{"done":true},"h2":{"done":false}}`,
	)
	if err != nil {
		t.Fatal(err)
	}

	log, err := s.GetLog("2024-01-15")
	if err != nil {
		t.Fatal(err)
	}
	e1 := log.HabitStatus["h1"]
	if e1.Done == nil || !*e1.Done {
		t.Fatalf("legacy done flag lost: %+v", e1)
	}
	if e1.Status != "" {
		t.Fatalf("legacy entry should have no status field, got %q", e1.Status)
	}
	e2 := log.HabitStatus["h2"]
	if e2.Done == nil || *e2.Done {
		t.Fatalf("legacy done=false lost: %+v", e2)
	}
}

func TestLogMalformedStatusBlobTolerated(t *testing.T) {
	s := newTestStore(t)
	s.db.Exec(
		`INSERT INTO day_logs (date, updated_at, habit_status) VALUES (?, ?, ?)`,
		"2024-01-15", time.Now().UTC().Format(time.RFC3339), `not json at all`,
	)

	log, err := s.GetLog("2024-01-15")
	if err != nil {
		t.Fatalf("malformed blob should not fail the read: %v", err)
	}
	if log == nil || len(log.HabitStatus) != 0 {
		t.Fatal("malformed blob should read as empty status map")
	}
}

// ============================================================
// Settings / profile
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"timezone":       "UTC",
		"rolling_window": "30",
		"week_start":     "monday",
	}
	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestLookupSetting(t *testing.T) {
	s := newTestStore(t)

	if _, ok, err := s.LookupSetting("nope"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	s.SetSetting("k", "v")
	val, ok, err := s.LookupSetting("k")
	if err != nil || !ok || val != "v" {
		t.Fatalf("present key: val=%q ok=%v err=%v", val, ok, err)
	}
}

func TestDeleteSetting(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("k", "v")
	if err := s.DeleteSetting("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.LookupSetting("k"); ok {
		t.Fatal("setting should be gone")
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("aaa", "first")

	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	// Seeded defaults plus the one we wrote, ordered by key.
	if len(settings) != 4 {
		t.Fatalf("got %d settings, want 4", len(settings))
	}
	if settings[0].Key != "aaa" || settings[0].Value != "first" {
		t.Fatalf("settings[0] = %+v, want aaa=first", settings[0])
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSetting("nonexistent"); err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestProfileDefaults(t *testing.T) {
	s := newTestStore(t)
	p := s.GetProfile()
	if p.Timezone != "UTC" {
		t.Fatalf("default timezone = %q, want UTC", p.Timezone)
	}
	if p.Name != "" {
		t.Fatalf("default name should be empty, got %q", p.Name)
	}
}

func TestUpsertProfile(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertProfile(Profile{Name: "Ada", Timezone: "Europe/Berlin"}); err != nil {
		t.Fatal(err)
	}
	p := s.GetProfile()
	if p.Name != "Ada" || p.Timezone != "Europe/Berlin" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestProfileLocationFallback(t *testing.T) {
	p := Profile{Timezone: "Not/AZone"}
	if p.Location() != time.UTC {
		t.Fatal("bad zone name should fall back to UTC")
	}
	p = Profile{Timezone: "UTC"}
	if p.Location() != time.UTC {
		t.Fatal("UTC should resolve to UTC")
	}
}

func TestRollingWindow(t *testing.T) {
	s := newTestStore(t)
	if w := s.RollingWindow(); w != 30 {
		t.Fatalf("default window = %d, want 30", w)
	}
	s.SetSetting("rolling_window", "7")
	if w := s.RollingWindow(); w != 7 {
		t.Fatalf("window = %d, want 7", w)
	}
	s.SetSetting("rolling_window", "garbage")
	if w := s.RollingWindow(); w != 30 {
		t.Fatalf("garbage window should fall back to 30, got %d", w)
	}
}
