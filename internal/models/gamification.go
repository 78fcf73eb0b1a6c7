package models

import "time"

// ── Activity Types ────────────────────────────────────────

const (
	ActivityQuestionAsked       = "question_asked"
	ActivityTestCompleted       = "test_completed"
	ActivityConceptMastered     = "concept_mastered"
	ActivityAchievementUnlocked = "achievement_unlocked"
)

// ValidActivityType reports whether t is one of the known activity types.
func ValidActivityType(t string) bool {
	switch t {
	case ActivityQuestionAsked, ActivityTestCompleted, ActivityConceptMastered, ActivityAchievementUnlocked:
		return true
	}
	return false
}

// ── Core Gamification Structs ─────────────────────────────

// PointTransaction is one append-only entry in the points ledger.
// Rows are never mutated or deleted; totals are always derived by summing.
type PointTransaction struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	ActivityType string    `json:"activity_type"`
	Points       int       `json:"points"`
	Subject      string    `json:"subject,omitempty"`
	Reason       string    `json:"reason"`
	EarnedAt     time.Time `json:"earned_at"`
}

// Streak tracks per-user engagement. WeeklyPattern holds one slot per
// calendar day, Sunday through Saturday.
type Streak struct {
	UserID           int64      `json:"user_id"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	WeeklyPattern    [7]bool    `json:"weekly_pattern"`
	LastActiveDate   *time.Time `json:"last_active_date"`
	RepairsAvailable int        `json:"repairs_available"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SubjectLevel is a user's mastery tier in one subject.
type SubjectLevel struct {
	UserID             int64      `json:"user_id"`
	Subject            string     `json:"subject"`
	LevelName          string     `json:"level_name"`
	ConceptsMastered   int        `json:"concepts_mastered"`
	ConceptsRequired   int        `json:"concepts_required"`
	ProgressPercentage int        `json:"progress_percentage"`
	AchievedAt         *time.Time `json:"achieved_at,omitempty"`
}

// UnlockedAchievement records a one-way achievement unlock.
// At most one row exists per (user, achievement) pair.
type UnlockedAchievement struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	AchievementType string    `json:"achievement_type"`
	EarnedAt        time.Time `json:"earned_at"`
}

// LeaderboardPreference controls whether and how a user appears in rankings.
type LeaderboardPreference struct {
	UserID        int64 `json:"user_id"`
	IsVisible     bool  `json:"is_visible"`
	AnonymousMode bool  `json:"anonymous_mode"`
}

// LeaderboardEntry is derived on every read, never persisted.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        int64  `json:"user_id"`
	DisplayName   string `json:"display_name"`
	TotalPoints   int64  `json:"total_points"`
	IsCurrentUser bool   `json:"is_current_user,omitempty"`
}

// UserStats aggregates the counters the achievement matcher reads.
type UserStats struct {
	UserID              int64     `json:"user_id"`
	QuestionsAskedTotal int       `json:"questions_asked_total"`
	TestsCompletedTotal int       `json:"tests_completed_total"`
	TutorSessionsTotal  int       `json:"tutor_sessions_total"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ── Request Types ─────────────────────────────────────────

type RecordEventRequest struct {
	ActivityType string `json:"activity_type"`
	Subject      string `json:"subject,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

type RepairStreakRequest struct {
	Method string `json:"method"` // "quiz" or "video"
}

type UpdatePreferencesRequest struct {
	IsVisible     *bool `json:"is_visible,omitempty"`
	AnonymousMode *bool `json:"anonymous_mode,omitempty"`
}

// ── Response Types ────────────────────────────────────────

// EventResult summarizes everything a single recorded event changed.
type EventResult struct {
	Transaction          *PointTransaction `json:"transaction"`
	TotalPoints          int64             `json:"total_points"`
	Streak               *StreakInfo       `json:"streak,omitempty"`
	Level                *SubjectLevel     `json:"level,omitempty"`
	LeveledUp            bool              `json:"leveled_up"`
	AchievementsUnlocked []string          `json:"achievements_unlocked"`
	PointsFromUnlocks    int               `json:"points_from_unlocks"`
}

type StreakInfo struct {
	Current          int     `json:"current"`
	Longest          int     `json:"longest"`
	WeeklyPattern    [7]bool `json:"weekly_pattern"`
	Healthy          bool    `json:"healthy"`
	RepairsAvailable int     `json:"repairs_available"`
}

type GamificationResponse struct {
	TotalPoints  int64              `json:"total_points"`
	Streak       StreakInfo         `json:"streak"`
	Levels       []SubjectLevel     `json:"levels"`
	Achievements []string           `json:"achievements"`
	Recent       []PointTransaction `json:"recent_activity"`
}

type RepairStreakResponse struct {
	Streak           StreakInfo `json:"streak"`
	RepairsRemaining int        `json:"repairs_remaining"`
	Method           string     `json:"method"`
}

type LeaderboardResponse struct {
	Entries     []LeaderboardEntry `json:"entries"`
	CurrentUser *LeaderboardEntry  `json:"current_user,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
