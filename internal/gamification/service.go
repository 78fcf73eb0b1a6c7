package gamification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/a1score/backend/internal/models"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// ── Points Ledger ───────────────────────────────────────

// RecordPoints appends a validated transaction to the ledger.
// Non-positive points or an unknown activity type are rejected before
// anything is persisted.
func (s *Service) RecordPoints(userID int64, activityType string, points int, reason, subject string) (*models.PointTransaction, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive, got %d", ErrInvalidTransaction, points)
	}
	if !models.ValidActivityType(activityType) {
		return nil, fmt.Errorf("%w: unknown activity type %q", ErrInvalidTransaction, activityType)
	}

	tx := &models.PointTransaction{
		UserID:       userID,
		ActivityType: activityType,
		Points:       points,
		Subject:      subject,
		Reason:       reason,
	}
	if err := s.store.InsertTransaction(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Service) TotalPoints(userID int64) (int64, error) {
	return s.store.TotalPoints(userID)
}

func (s *Service) RecentActivity(userID int64, limit int) ([]models.PointTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.RecentTransactions(userID, limit)
}

// ── Activity Recorder ───────────────────────────────────

// RecordEvent converts one learning event into its ledger transaction
// and fans out to the streak tracker, level evaluator and achievement
// matcher. Achievement bonuses land as extra ledger transactions.
func (s *Service) RecordEvent(userID int64, req models.RecordEventRequest) (*models.EventResult, error) {
	points, ok := RewardFor(req.ActivityType)
	if !ok {
		return nil, fmt.Errorf("%w: activity type %q cannot be recorded directly", ErrInvalidTransaction, req.ActivityType)
	}

	reason := req.Reason
	if reason == "" {
		reason = defaultReason(req.ActivityType, req.Subject)
	}

	tx, err := s.RecordPoints(userID, req.ActivityType, points, reason, req.Subject)
	if err != nil {
		return nil, err
	}

	result := &models.EventResult{
		Transaction:          tx,
		AchievementsUnlocked: []string{},
	}

	// Counters feeding the achievement matcher
	if _, err := s.store.GetOrCreateStats(userID); err != nil {
		return nil, err
	}
	switch req.ActivityType {
	case models.ActivityQuestionAsked:
		if err := s.store.IncrementQuestionsAsked(userID); err != nil {
			return nil, err
		}
	case models.ActivityTestCompleted:
		if err := s.store.IncrementTestsCompleted(userID); err != nil {
			return nil, err
		}
	}

	// Level evaluation on concept mastery
	if req.ActivityType == models.ActivityConceptMastered && req.Subject != "" {
		count, err := s.store.IncrementConceptCount(userID, req.Subject)
		if err != nil {
			return nil, err
		}
		lvl, leveledUp, err := s.recomputeLevel(userID, req.Subject, count)
		if err != nil {
			return nil, err
		}
		result.Level = lvl
		result.LeveledUp = leveledUp
	}

	// Streak update on qualifying activity
	if QualifiesForStreak(req.ActivityType) {
		st, err := s.RecordActivityDay(userID, time.Now())
		if err != nil {
			return nil, err
		}
		info := streakInfo(st, time.Now())
		result.Streak = &info
	}

	// Achievement matching — may append bonus transactions. Store
	// failures surface to the caller; nothing here retries.
	newly, bonus, err := s.Evaluate(userID)
	if err != nil {
		return nil, err
	}
	for _, d := range newly {
		result.AchievementsUnlocked = append(result.AchievementsUnlocked, d.ID)
	}
	result.PointsFromUnlocks = bonus

	total, err := s.store.TotalPoints(userID)
	if err != nil {
		return nil, err
	}
	result.TotalPoints = total

	return result, nil
}

func defaultReason(activityType, subject string) string {
	switch activityType {
	case models.ActivityQuestionAsked:
		return "Asked a question"
	case models.ActivityTestCompleted:
		return "Completed a test"
	case models.ActivityConceptMastered:
		if subject != "" {
			return "Mastered a concept in " + subject
		}
		return "Mastered a concept"
	}
	return "Learning activity"
}

// ── Streak Tracker ──────────────────────────────────────

// RecordActivityDay marks day as active for the user and advances the
// streak. Called for qualifying activity only — never for logins.
func (s *Service) RecordActivityDay(userID int64, day time.Time) (*models.Streak, error) {
	st, err := s.store.GetOrCreateStreak(userID)
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	if !applyActivity(st, day) {
		return st, nil
	}
	if err := s.store.UpdateStreak(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) GetStreak(userID int64) (*models.StreakInfo, error) {
	st, err := s.store.GetOrCreateStreak(userID)
	if err != nil {
		return nil, err
	}
	info := streakInfo(st, time.Now())
	return &info, nil
}

// RepairStreak consumes one repair unit and marks the most recent
// missed day active. When yesterday is already recorded there is
// nothing to repair and no unit is spent. The guarded decrement runs
// before the streak mutation, so a failed repair leaves the streak
// untouched.
func (s *Service) RepairStreak(userID int64, method string) (*models.RepairStreakResponse, error) {
	if method != "quiz" && method != "video" {
		return nil, fmt.Errorf("repair method must be 'quiz' or 'video'")
	}

	st, err := s.store.GetOrCreateStreak(userID)
	if err != nil {
		return nil, err
	}
	if !canRepair(st, time.Now()) {
		return nil, ErrNothingToRepair
	}

	if err := s.store.ConsumeRepair(userID); err != nil {
		return nil, err
	}

	applyRepair(st, time.Now())
	st.RepairsAvailable--
	if err := s.store.UpdateStreak(st); err != nil {
		return nil, err
	}

	log.Printf("[gamification] user %d repaired streak via %s (now %d days)", userID, method, st.CurrentStreak)

	return &models.RepairStreakResponse{
		Streak:           streakInfo(st, time.Now()),
		RepairsRemaining: st.RepairsAvailable,
		Method:           method,
	}, nil
}

// GrantRepairs adds repair units to a user. Replenishment cadence is an
// external concern; this is the entry point collaborators call.
func (s *Service) GrantRepairs(userID int64, n int) error {
	if n <= 0 {
		return fmt.Errorf("grant must be positive")
	}
	return s.store.GrantRepairs(userID, n)
}

// ── Level Evaluator ─────────────────────────────────────

// RecomputeLevel recomputes a subject tier from a concept count.
// The tier is always derived from scratch, never patched.
func (s *Service) RecomputeLevel(userID int64, subject string, conceptsMastered int) (*models.SubjectLevel, error) {
	lvl, _, err := s.recomputeLevel(userID, subject, conceptsMastered)
	return lvl, err
}

func (s *Service) recomputeLevel(userID int64, subject string, conceptsMastered int) (*models.SubjectLevel, bool, error) {
	prev, err := s.store.GetSubjectLevel(userID, subject)
	if err != nil {
		return nil, false, err
	}

	lvl := ComputeSubjectLevel(userID, subject, conceptsMastered)

	prevName := LevelBeginner
	if prev != nil {
		prevName = prev.LevelName
		lvl.AchievedAt = prev.AchievedAt
	}

	leveledUp := lvl.LevelName != prevName
	var achievedAt *time.Time
	if leveledUp {
		now := time.Now().UTC()
		lvl.AchievedAt = &now
		achievedAt = &now
		log.Printf("[gamification] user %d reached %s in %s (%d concepts)", userID, lvl.LevelName, subject, conceptsMastered)
	}
	if err := s.store.SetLevel(userID, subject, lvl.LevelName, conceptsMastered, achievedAt); err != nil {
		return nil, false, err
	}

	return &lvl, leveledUp, nil
}

// SubjectLevels returns the user's tiers with derived progress filled in.
func (s *Service) SubjectLevels(userID int64) ([]models.SubjectLevel, error) {
	stored, err := s.store.ListSubjectLevels(userID)
	if err != nil {
		return nil, err
	}
	levels := make([]models.SubjectLevel, 0, len(stored))
	for _, row := range stored {
		lvl := ComputeSubjectLevel(userID, row.Subject, row.ConceptsMastered)
		lvl.AchievedAt = row.AchievedAt
		levels = append(levels, lvl)
	}
	return levels, nil
}

// ── Achievement Matcher ─────────────────────────────────

// Evaluate tests every not-yet-unlocked catalog entry against the
// user's aggregated stats, unlocks the matches and awards their point
// bonuses. Re-evaluating with no new qualifying activity returns
// nothing, and the conditional insert keeps unlocks at-most-once even
// under concurrent calls.
func (s *Service) Evaluate(userID int64) ([]AchievementDefinition, int, error) {
	conceptsTotal, bySubject, err := s.store.TotalConceptsMastered(userID)
	if err != nil {
		return nil, 0, err
	}
	stats, err := s.store.GetOrCreateStats(userID)
	if err != nil {
		return nil, 0, err
	}
	st, err := s.store.GetOrCreateStreak(userID)
	if err != nil {
		return nil, 0, err
	}

	snapshot := StatsSnapshot{
		ConceptsMasteredTotal: conceptsTotal,
		ConceptsBySubject:     bySubject,
		TestsCompleted:        stats.TestsCompletedTotal,
		CurrentStreak:         st.CurrentStreak,
	}

	already, err := s.store.UnlockedAchievements(userID)
	if err != nil {
		return nil, 0, err
	}
	unlockedSet := make(map[string]bool, len(already))
	for _, id := range already {
		unlockedSet[id] = true
	}

	var newly []AchievementDefinition
	bonus := 0
	for _, d := range MatchNew(snapshot, unlockedSet) {
		inserted, err := s.store.UnlockAchievement(userID, d.ID)
		if err != nil {
			return newly, bonus, err
		}
		if !inserted {
			// Lost the race to a concurrent evaluation — not ours to award.
			continue
		}
		newly = append(newly, d)
		if _, err := s.RecordPoints(userID, models.ActivityAchievementUnlocked, d.Points, "Unlocked achievement: "+d.Title, ""); err != nil {
			// The unlock row persisted but its bonus did not land.
			// Surface the failure with the unlocks made so far.
			return newly, bonus, fmt.Errorf("award bonus for %s: %w", d.ID, err)
		}
		bonus += d.Points
	}

	return newly, bonus, nil
}

// NoteTutorSession counts a tutoring session that crossed the exchange
// threshold as a qualifying streak activity.
func (s *Service) NoteTutorSession(userID int64) error {
	if _, err := s.RecordActivityDay(userID, time.Now()); err != nil {
		return err
	}
	if _, err := s.store.GetOrCreateStats(userID); err != nil {
		return err
	}
	return s.store.IncrementTutorSessions(userID)
}

// ── Gamification State ──────────────────────────────────

func (s *Service) GetGamification(userID int64) (*models.GamificationResponse, error) {
	total, err := s.store.TotalPoints(userID)
	if err != nil {
		return nil, err
	}
	st, err := s.store.GetOrCreateStreak(userID)
	if err != nil {
		return nil, err
	}
	levels, err := s.SubjectLevels(userID)
	if err != nil {
		return nil, err
	}
	achievements, err := s.store.UnlockedAchievements(userID)
	if err != nil {
		achievements = []string{}
	}
	recent, err := s.store.RecentTransactions(userID, 10)
	if err != nil {
		recent = []models.PointTransaction{}
	}

	return &models.GamificationResponse{
		TotalPoints:  total,
		Streak:       streakInfo(st, time.Now()),
		Levels:       levels,
		Achievements: achievements,
		Recent:       recent,
	}, nil
}

// ── Leaderboard Aggregator ──────────────────────────────

// Leaderboard recomputes the full ranking from the ledger on every
// read and truncates to topN. Eventually consistent with concurrent
// writes — it is a display surface, not a financial ledger.
func (s *Service) Leaderboard(userID int64, topN int) (*models.LeaderboardResponse, error) {
	if topN <= 0 {
		topN = 20
	}

	ranked, err := s.fullRanking()
	if err != nil {
		return nil, err
	}

	entries := ranked
	if len(entries) > topN {
		entries = entries[:topN]
	}

	var currentUser *models.LeaderboardEntry
	inTop := false
	for i := range entries {
		if entries[i].UserID == userID {
			entries[i].IsCurrentUser = true
			inTop = true
		}
	}
	if !inTop {
		for i := range ranked {
			if ranked[i].UserID == userID {
				e := ranked[i]
				e.IsCurrentUser = true
				currentUser = &e
				break
			}
		}
	}

	return &models.LeaderboardResponse{
		Entries:     entries,
		CurrentUser: currentUser,
	}, nil
}

// UserRank finds the user's entry in the same full ranking the
// leaderboard uses, so the two can never disagree. Invisible users and
// users with no transactions are not ranked.
func (s *Service) UserRank(userID int64) (*models.LeaderboardEntry, error) {
	ranked, err := s.fullRanking()
	if err != nil {
		return nil, err
	}
	for i := range ranked {
		if ranked[i].UserID == userID {
			return &ranked[i], nil
		}
	}
	return nil, ErrNotRanked
}

func (s *Service) fullRanking() ([]models.LeaderboardEntry, error) {
	totals, err := s.store.UserTotals()
	if err != nil {
		return nil, err
	}
	prefs, err := s.store.AllPreferences()
	if err != nil {
		return nil, err
	}
	return rankAll(totals, prefs), nil
}

func (s *Service) GetPreferences(userID int64) (models.LeaderboardPreference, error) {
	return s.store.GetPreferences(userID)
}

func (s *Service) UpdatePreferences(userID int64, req models.UpdatePreferencesRequest) (models.LeaderboardPreference, error) {
	p, err := s.store.GetPreferences(userID)
	if err != nil {
		return p, err
	}
	if req.IsVisible != nil {
		p.IsVisible = *req.IsVisible
	}
	if req.AnonymousMode != nil {
		p.AnonymousMode = *req.AnonymousMode
	}
	// Hiding from the leaderboard makes anonymity moot; drop it so a
	// later re-show starts from a clean state.
	if !p.IsVisible {
		p.AnonymousMode = false
	}
	if err := s.store.UpsertPreferences(p); err != nil {
		return p, err
	}
	return p, nil
}

// ── Background Workers ──────────────────────────────────

// StartRepairReplenishWorker tops every user's streak repairs back up
// once a week (Monday 00:xx UTC).
func (s *Service) StartRepairReplenishWorker(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	log.Println("[gamification] Repair replenish worker started")

	for {
		select {
		case <-ctx.Done():
			log.Println("[gamification] Repair replenish worker shutting down")
			return
		case t := <-ticker.C:
			utc := t.UTC()
			if utc.Weekday() == time.Monday && utc.Hour() == 0 {
				log.Println("[gamification] Replenishing streak repairs")
				if err := s.store.TopUpRepairs(WeeklyRepairGrant); err != nil {
					log.Printf("[gamification] repair replenish failed: %v", err)
				}
			}
		}
	}
}
