package gamification

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/a1score/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Points Ledger ───────────────────────────────────────

// InsertTransaction appends one row to the ledger and fills in the
// generated id and timestamp. Rows are never updated or deleted.
func (s *Store) InsertTransaction(tx *models.PointTransaction) error {
	var subject *string
	if tx.Subject != "" {
		subject = &tx.Subject
	}
	err := s.db.QueryRow(
		`INSERT INTO point_transactions (user_id, activity_type, points, subject, reason)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, earned_at`,
		tx.UserID, tx.ActivityType, tx.Points, subject, tx.Reason,
	).Scan(&tx.ID, &tx.EarnedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// TotalPoints sums the user's ledger. The total is always derived, never
// stored, so it cannot drift.
func (s *Store) TotalPoints(userID int64) (int64, error) {
	var total int64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(points), 0) FROM point_transactions WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total points: %w", err)
	}
	return total, nil
}

func (s *Store) RecentTransactions(userID int64, limit int) ([]models.PointTransaction, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, activity_type, points, COALESCE(subject, ''), reason, earned_at
		 FROM point_transactions
		 WHERE user_id = $1
		 ORDER BY earned_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.PointTransaction
	for rows.Next() {
		var t models.PointTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.ActivityType, &t.Points, &t.Subject, &t.Reason, &t.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if txs == nil {
		txs = []models.PointTransaction{}
	}
	return txs, rows.Err()
}

// ── Streaks ─────────────────────────────────────────────

func (s *Store) GetOrCreateStreak(userID int64) (*models.Streak, error) {
	_, err := s.db.Exec(
		`INSERT INTO streaks (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert streak: %w", err)
	}

	var st models.Streak
	var pattern pq.BoolArray
	err = s.db.QueryRow(
		`SELECT user_id, current_streak, longest_streak, weekly_pattern,
		        last_active_date, repairs_available, updated_at
		 FROM streaks WHERE user_id = $1`,
		userID,
	).Scan(&st.UserID, &st.CurrentStreak, &st.LongestStreak, &pattern,
		&st.LastActiveDate, &st.RepairsAvailable, &st.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	for i := 0; i < len(pattern) && i < 7; i++ {
		st.WeeklyPattern[i] = pattern[i]
	}
	return &st, nil
}

func (s *Store) UpdateStreak(st *models.Streak) error {
	_, err := s.db.Exec(
		`UPDATE streaks SET
		    current_streak = $2, longest_streak = $3, weekly_pattern = $4,
		    last_active_date = $5, updated_at = NOW()
		 WHERE user_id = $1`,
		st.UserID, st.CurrentStreak, st.LongestStreak,
		pq.BoolArray(st.WeeklyPattern[:]), st.LastActiveDate,
	)
	if err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	return nil
}

// ConsumeRepair decrements repairs_available, guarded so two concurrent
// repairs cannot spend the same unit or push the count below zero.
func (s *Store) ConsumeRepair(userID int64) error {
	result, err := s.db.Exec(
		`UPDATE streaks
		 SET repairs_available = repairs_available - 1, updated_at = NOW()
		 WHERE user_id = $1 AND repairs_available > 0`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("consume repair: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNoRepairsAvailable
	}
	return nil
}

// TopUpRepairs raises every user's repair balance to at least n.
// Balances above n are left alone.
func (s *Store) TopUpRepairs(n int) error {
	_, err := s.db.Exec(
		`UPDATE streaks SET repairs_available = GREATEST(repairs_available, $1), updated_at = NOW()`,
		n,
	)
	return err
}

// GrantRepairs adds n repair units to one user's balance.
func (s *Store) GrantRepairs(userID int64, n int) error {
	result, err := s.db.Exec(
		`UPDATE streaks SET repairs_available = repairs_available + $2, updated_at = NOW()
		 WHERE user_id = $1`,
		userID, n,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// No streak row yet — create one with the balance.
		_, err = s.db.Exec(
			`INSERT INTO streaks (user_id, repairs_available) VALUES ($1, $2)
			 ON CONFLICT (user_id) DO UPDATE SET repairs_available = streaks.repairs_available + $2`,
			userID, n,
		)
	}
	return err
}

// ── Subject Levels ──────────────────────────────────────

// IncrementConceptCount bumps the mastered-concept count for a
// (user, subject) pair, creating the row on first mastery, and returns
// the new count.
func (s *Store) IncrementConceptCount(userID int64, subject string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`INSERT INTO subject_levels (user_id, subject, concepts_mastered)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (user_id, subject)
		 DO UPDATE SET concepts_mastered = subject_levels.concepts_mastered + 1, updated_at = NOW()
		 RETURNING concepts_mastered`,
		userID, subject,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment concept count: %w", err)
	}
	return count, nil
}

func (s *Store) GetSubjectLevel(userID int64, subject string) (*models.SubjectLevel, error) {
	var lvl models.SubjectLevel
	err := s.db.QueryRow(
		`SELECT user_id, subject, level_name, concepts_mastered, achieved_at
		 FROM subject_levels WHERE user_id = $1 AND subject = $2`,
		userID, subject,
	).Scan(&lvl.UserID, &lvl.Subject, &lvl.LevelName, &lvl.ConceptsMastered, &lvl.AchievedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subject level: %w", err)
	}
	return &lvl, nil
}

// SetLevel stores a recomputed tier, creating the (user, subject) row
// when it does not exist yet. achievedAt is only written on a tier
// transition; once set it is never cleared.
func (s *Store) SetLevel(userID int64, subject, levelName string, conceptsMastered int, achievedAt *time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO subject_levels (user_id, subject, level_name, concepts_mastered, achieved_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, subject)
		 DO UPDATE SET level_name = $3,
		               concepts_mastered = $4,
		               achieved_at = COALESCE($5, subject_levels.achieved_at),
		               updated_at = NOW()`,
		userID, subject, levelName, conceptsMastered, achievedAt,
	)
	if err != nil {
		return fmt.Errorf("set level: %w", err)
	}
	return nil
}

func (s *Store) ListSubjectLevels(userID int64) ([]models.SubjectLevel, error) {
	rows, err := s.db.Query(
		`SELECT user_id, subject, level_name, concepts_mastered, achieved_at
		 FROM subject_levels WHERE user_id = $1 ORDER BY subject`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subject levels: %w", err)
	}
	defer rows.Close()

	var levels []models.SubjectLevel
	for rows.Next() {
		var lvl models.SubjectLevel
		if err := rows.Scan(&lvl.UserID, &lvl.Subject, &lvl.LevelName, &lvl.ConceptsMastered, &lvl.AchievedAt); err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}
	if levels == nil {
		levels = []models.SubjectLevel{}
	}
	return levels, rows.Err()
}

// ── Achievements ────────────────────────────────────────

func (s *Store) UnlockedAchievements(userID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT achievement_type FROM achievements WHERE user_id = $1 ORDER BY earned_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get achievements: %w", err)
	}
	defer rows.Close()

	var unlocked []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		unlocked = append(unlocked, a)
	}
	if unlocked == nil {
		unlocked = []string{}
	}
	return unlocked, rows.Err()
}

// UnlockAchievement inserts the unlock row if absent and reports whether
// this call created it. The conditional insert is what guarantees
// at-most-once unlock under concurrent evaluation.
func (s *Store) UnlockAchievement(userID int64, achievementType string) (bool, error) {
	result, err := s.db.Exec(
		`INSERT INTO achievements (user_id, achievement_type) VALUES ($1, $2)
		 ON CONFLICT (user_id, achievement_type) DO NOTHING`,
		userID, achievementType,
	)
	if err != nil {
		return false, fmt.Errorf("unlock achievement: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// ── Leaderboard Preferences ─────────────────────────────

func (s *Store) GetPreferences(userID int64) (models.LeaderboardPreference, error) {
	p := models.LeaderboardPreference{UserID: userID, IsVisible: true}
	err := s.db.QueryRow(
		`SELECT user_id, is_visible, anonymous_mode FROM leaderboard_prefs WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.IsVisible, &p.AnonymousMode)
	if err == sql.ErrNoRows {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

func (s *Store) UpsertPreferences(p models.LeaderboardPreference) error {
	_, err := s.db.Exec(
		`INSERT INTO leaderboard_prefs (user_id, is_visible, anonymous_mode)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id)
		 DO UPDATE SET is_visible = $2, anonymous_mode = $3, updated_at = NOW()`,
		p.UserID, p.IsVisible, p.AnonymousMode,
	)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

func (s *Store) AllPreferences() (map[int64]models.LeaderboardPreference, error) {
	rows, err := s.db.Query(`SELECT user_id, is_visible, anonymous_mode FROM leaderboard_prefs`)
	if err != nil {
		return nil, fmt.Errorf("all preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[int64]models.LeaderboardPreference)
	for rows.Next() {
		var p models.LeaderboardPreference
		if err := rows.Scan(&p.UserID, &p.IsVisible, &p.AnonymousMode); err != nil {
			return nil, err
		}
		prefs[p.UserID] = p
	}
	return prefs, rows.Err()
}

// ── User Stats ──────────────────────────────────────────

func (s *Store) GetOrCreateStats(userID int64) (*models.UserStats, error) {
	_, err := s.db.Exec(
		`INSERT INTO user_stats (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert stats: %w", err)
	}

	var st models.UserStats
	err = s.db.QueryRow(
		`SELECT user_id, questions_asked_total, tests_completed_total, tutor_sessions_total, updated_at
		 FROM user_stats WHERE user_id = $1`,
		userID,
	).Scan(&st.UserID, &st.QuestionsAskedTotal, &st.TestsCompletedTotal, &st.TutorSessionsTotal, &st.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &st, nil
}

func (s *Store) IncrementTestsCompleted(userID int64) error {
	_, err := s.db.Exec(
		`UPDATE user_stats SET tests_completed_total = tests_completed_total + 1, updated_at = NOW()
		 WHERE user_id = $1`,
		userID,
	)
	return err
}

func (s *Store) IncrementQuestionsAsked(userID int64) error {
	_, err := s.db.Exec(
		`UPDATE user_stats SET questions_asked_total = questions_asked_total + 1, updated_at = NOW()
		 WHERE user_id = $1`,
		userID,
	)
	return err
}

func (s *Store) IncrementTutorSessions(userID int64) error {
	_, err := s.db.Exec(
		`UPDATE user_stats SET tutor_sessions_total = tutor_sessions_total + 1, updated_at = NOW()
		 WHERE user_id = $1`,
		userID,
	)
	return err
}

// TotalConceptsMastered sums mastered concepts across subjects and
// returns the per-subject breakdown the matcher needs.
func (s *Store) TotalConceptsMastered(userID int64) (int, map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT subject, concepts_mastered FROM subject_levels WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("concepts mastered: %w", err)
	}
	defer rows.Close()

	total := 0
	bySubject := make(map[string]int)
	for rows.Next() {
		var subject string
		var count int
		if err := rows.Scan(&subject, &count); err != nil {
			return 0, nil, err
		}
		bySubject[subject] = count
		total += count
	}
	return total, bySubject, rows.Err()
}

// ── Leaderboard Source ──────────────────────────────────

// UserTotals group-sums the whole ledger. Users with zero transactions
// have no rows here and therefore never rank.
func (s *Store) UserTotals() ([]userTotal, error) {
	rows, err := s.db.Query(
		`SELECT t.user_id, u.name, SUM(t.points)
		 FROM point_transactions t
		 JOIN users u ON u.id = t.user_id
		 GROUP BY t.user_id, u.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("user totals: %w", err)
	}
	defer rows.Close()

	var totals []userTotal
	for rows.Next() {
		var t userTotal
		var fullName string
		if err := rows.Scan(&t.UserID, &fullName, &t.Total); err != nil {
			return nil, fmt.Errorf("scan user total: %w", err)
		}
		t.DisplayName = models.User{Name: fullName}.DisplayName()
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
