package gamification

import (
	"testing"
	"time"

	"github.com/a1score/backend/internal/models"
)

// date builds a UTC calendar date for streak tests.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStreakHealthy(t *testing.T) {
	tests := []struct {
		pattern [7]bool
		want    bool
	}{
		{[7]bool{}, false},
		{[7]bool{false, true, true, true, false, false, false}, false}, // 3 active
		{[7]bool{false, true, true, true, true, false, false}, true},   // 4 active
		{[7]bool{true, true, true, true, true, true, true}, true},
	}

	for _, tt := range tests {
		got := StreakHealthy(tt.pattern)
		if got != tt.want {
			t.Errorf("StreakHealthy(%v) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestApplyActivityConsecutiveDays(t *testing.T) {
	s := &models.Streak{}

	// Mon, Tue, Wed of the same week
	for i, day := range []time.Time{
		date(2026, time.March, 2),
		date(2026, time.March, 3),
		date(2026, time.March, 4),
	} {
		if !applyActivity(s, day) {
			t.Fatalf("day %d: applyActivity returned false", i)
		}
	}

	if s.CurrentStreak != 3 {
		t.Errorf("CurrentStreak = %d, want 3", s.CurrentStreak)
	}
	if s.LongestStreak != 3 {
		t.Errorf("LongestStreak = %d, want 3", s.LongestStreak)
	}
	// Weekday slots 1-3 (Mon-Wed) active, rest clear
	want := [7]bool{false, true, true, true, false, false, false}
	if s.WeeklyPattern != want {
		t.Errorf("WeeklyPattern = %v, want %v", s.WeeklyPattern, want)
	}
}

func TestApplyActivitySameDayNoOp(t *testing.T) {
	s := &models.Streak{}
	day := date(2026, time.March, 2)

	applyActivity(s, day)
	if applyActivity(s, day) {
		t.Error("second activity on the same day should be a no-op")
	}
	if s.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", s.CurrentStreak)
	}
}

func TestApplyActivityGapResets(t *testing.T) {
	s := &models.Streak{}

	applyActivity(s, date(2026, time.March, 2)) // Mon
	applyActivity(s, date(2026, time.March, 3)) // Tue
	applyActivity(s, date(2026, time.March, 4)) // Wed
	applyActivity(s, date(2026, time.March, 7)) // Sat, two missed days

	if s.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1 after gap", s.CurrentStreak)
	}
	if s.LongestStreak != 3 {
		t.Errorf("LongestStreak = %d, want 3 preserved", s.LongestStreak)
	}
	// Same week, so earlier slots stay marked
	want := [7]bool{false, true, true, true, false, false, true}
	if s.WeeklyPattern != want {
		t.Errorf("WeeklyPattern = %v, want %v", s.WeeklyPattern, want)
	}
}

func TestApplyActivityNewWeekClearsPattern(t *testing.T) {
	s := &models.Streak{}

	applyActivity(s, date(2026, time.March, 6)) // Fri
	applyActivity(s, date(2026, time.March, 7)) // Sat
	applyActivity(s, date(2026, time.March, 8)) // Sun, new week

	if s.CurrentStreak != 3 {
		t.Errorf("CurrentStreak = %d, want 3 across week boundary", s.CurrentStreak)
	}
	// Pattern reset at the week boundary; only Sunday marked
	want := [7]bool{true, false, false, false, false, false, false}
	if s.WeeklyPattern != want {
		t.Errorf("WeeklyPattern = %v, want %v", s.WeeklyPattern, want)
	}
}

func TestApplyRepairClosesOneDayGap(t *testing.T) {
	s := &models.Streak{}

	applyActivity(s, date(2026, time.March, 2)) // Mon
	applyActivity(s, date(2026, time.March, 3)) // Tue

	// Missed Wed, repairing on Thu closes the gap
	applyRepair(s, date(2026, time.March, 5))

	if s.CurrentStreak != 3 {
		t.Errorf("CurrentStreak = %d, want 3 after repair", s.CurrentStreak)
	}
	if s.LastActiveDate == nil || !s.LastActiveDate.Equal(date(2026, time.March, 4)) {
		t.Errorf("LastActiveDate = %v, want the repaired Wednesday", s.LastActiveDate)
	}
	if !s.WeeklyPattern[time.Wednesday] {
		t.Error("Wednesday slot should be marked by the repair")
	}
}

func TestApplyRepairAfterLongGapRestarts(t *testing.T) {
	s := &models.Streak{}

	applyActivity(s, date(2026, time.March, 2))
	applyActivity(s, date(2026, time.March, 3))

	// Three days missed; a single repair only recovers yesterday
	applyRepair(s, date(2026, time.March, 7))

	if s.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1 after repairing across a long gap", s.CurrentStreak)
	}
	if s.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, want 2", s.LongestStreak)
	}
}

func TestCanRepair(t *testing.T) {
	newStreak := func(lastActive *time.Time) *models.Streak {
		return &models.Streak{LastActiveDate: lastActive}
	}
	wed := date(2026, time.March, 4)
	thu := date(2026, time.March, 5)
	mon := date(2026, time.March, 2)

	// Active Wednesday, checking Thursday: yesterday is already
	// recorded, so spending a repair would change nothing.
	if canRepair(newStreak(&wed), thu) {
		t.Error("canRepair should be false when yesterday is the last active day")
	}
	// Already resumed today
	if canRepair(newStreak(&thu), thu) {
		t.Error("canRepair should be false when activity already resumed today")
	}
	// Missed Wednesday, checking Thursday: repairable
	if !canRepair(newStreak(&mon), thu) {
		t.Error("canRepair should be true with a missed yesterday")
	}
	// No history at all: yesterday is unrecorded
	if !canRepair(newStreak(nil), thu) {
		t.Error("canRepair should be true with no recorded activity")
	}
}

func TestStreakInfoStaleWeekReadsEmpty(t *testing.T) {
	s := &models.Streak{}
	applyActivity(s, date(2026, time.March, 2)) // Mon
	applyActivity(s, date(2026, time.March, 3)) // Tue
	applyActivity(s, date(2026, time.March, 4)) // Wed
	applyActivity(s, date(2026, time.March, 5)) // Thu

	// Read in the same week: pattern as written, 4 active days = healthy
	info := streakInfo(s, date(2026, time.March, 6))
	want := [7]bool{false, true, true, true, true, false, false}
	if info.WeeklyPattern != want {
		t.Errorf("same-week pattern = %v, want %v", info.WeeklyPattern, want)
	}
	if !info.Healthy {
		t.Error("4 active days in the current week should read as healthy")
	}

	// Read a week later with no writes in between: the stored pattern
	// belongs to a past week and must not be shown as current
	info = streakInfo(s, date(2026, time.March, 11))
	if info.WeeklyPattern != ([7]bool{}) {
		t.Errorf("stale-week pattern = %v, want empty", info.WeeklyPattern)
	}
	if info.Healthy {
		t.Error("a pattern from a past week should not read as healthy")
	}
	if info.Current != 4 || info.Longest != 4 {
		t.Errorf("streak counters changed on read: current %d longest %d", info.Current, info.Longest)
	}
}

func TestApplyRepairWithNoGapIsNoOp(t *testing.T) {
	s := &models.Streak{}

	applyActivity(s, date(2026, time.March, 4))

	// Yesterday is already the last active day
	applyRepair(s, date(2026, time.March, 5))

	if s.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", s.CurrentStreak)
	}
	if !s.LastActiveDate.Equal(date(2026, time.March, 4)) {
		t.Errorf("LastActiveDate = %v, want unchanged", s.LastActiveDate)
	}
}
