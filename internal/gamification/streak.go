package gamification

import (
	"time"

	"github.com/a1score/backend/internal/models"
)

// healthyDayMinimum is how many of the 7 weekly slots must be active
// for a streak to be judged healthy.
const healthyDayMinimum = 4

// dateOnly truncates a time to its UTC calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole calendar days from a to b (both truncated).
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// weekStart returns the Sunday beginning the week containing t.
func weekStart(t time.Time) time.Time {
	d := dateOnly(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// sameWeek reports whether two dates fall in the same Sun-Sat week.
func sameWeek(a, b time.Time) bool {
	return weekStart(a).Equal(weekStart(b))
}

// StreakHealthy reports whether at least 4 of the 7 weekly slots are
// active. Derived on read, never stored.
func StreakHealthy(pattern [7]bool) bool {
	active := 0
	for _, on := range pattern {
		if on {
			active++
		}
	}
	return active >= healthyDayMinimum
}

// applyActivity marks day active on the streak and advances the run.
// It returns false when the day is already recorded (or predates the
// last recorded activity), in which case the streak is unchanged.
func applyActivity(s *models.Streak, day time.Time) bool {
	day = dateOnly(day)

	if s.LastActiveDate != nil {
		last := dateOnly(*s.LastActiveDate)
		if !day.After(last) {
			return false
		}
		if !sameWeek(last, day) {
			s.WeeklyPattern = [7]bool{}
		}
		if daysBetween(last, day) == 1 {
			s.CurrentStreak++
		} else {
			s.CurrentStreak = 1
		}
	} else {
		s.CurrentStreak = 1
	}

	s.WeeklyPattern[day.Weekday()] = true
	s.LastActiveDate = &day
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	return true
}

// canRepair reports whether a repair would change anything: yesterday
// relative to today must not already be recorded as active. When this
// is false a repair unit must not be consumed.
func canRepair(s *models.Streak, today time.Time) bool {
	missed := dateOnly(today).AddDate(0, 0, -1)
	return s.LastActiveDate == nil || missed.After(dateOnly(*s.LastActiveDate))
}

// applyRepair marks the most recent missed day (yesterday relative to
// today) active. When that closes the gap to the previous run, the
// current streak extends; repairing across a longer gap restarts it.
// Consuming a repair unit is the caller's responsibility.
func applyRepair(s *models.Streak, today time.Time) {
	missed := dateOnly(today).AddDate(0, 0, -1)

	if s.LastActiveDate != nil {
		last := dateOnly(*s.LastActiveDate)
		if !missed.After(last) {
			// Yesterday was already active; nothing to close.
			return
		}
		if !sameWeek(last, missed) {
			s.WeeklyPattern = [7]bool{}
		}
		if daysBetween(last, missed) == 1 {
			s.CurrentStreak++
		} else {
			s.CurrentStreak = 1
		}
	} else {
		s.CurrentStreak = 1
	}

	s.WeeklyPattern[missed.Weekday()] = true
	s.LastActiveDate = &missed
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
}

// streakInfo packages the derived view the API returns. The weekly
// pattern is shown against the week containing now; a pattern left over
// from an earlier week reads as empty, not stale.
func streakInfo(s *models.Streak, now time.Time) models.StreakInfo {
	pattern := s.WeeklyPattern
	if s.LastActiveDate != nil && !sameWeek(*s.LastActiveDate, now) {
		pattern = [7]bool{}
	}
	return models.StreakInfo{
		Current:          s.CurrentStreak,
		Longest:          s.LongestStreak,
		WeeklyPattern:    pattern,
		Healthy:          StreakHealthy(pattern),
		RepairsAvailable: s.RepairsAvailable,
	}
}
