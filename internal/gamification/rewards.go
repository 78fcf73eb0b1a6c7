package gamification

import "github.com/a1score/backend/internal/models"

// Fixed reward schedule. Achievement unlock bonuses are defined per
// achievement in the catalog, not here.
const (
	PointsQuestionAsked   = 5
	PointsConceptMastered = 15
	PointsTestCompleted   = 25
)

// RewardFor returns the points a directly-recorded activity earns.
// Achievement unlocks are awarded internally with per-definition values,
// so they have no entry in the schedule.
func RewardFor(activityType string) (int, bool) {
	switch activityType {
	case models.ActivityQuestionAsked:
		return PointsQuestionAsked, true
	case models.ActivityConceptMastered:
		return PointsConceptMastered, true
	case models.ActivityTestCompleted:
		return PointsTestCompleted, true
	}
	return 0, false
}

// QualifiesForStreak reports whether an activity type counts toward the
// daily streak. Asking a single question earns points but does not keep
// a streak alive; logins never count.
func QualifiesForStreak(activityType string) bool {
	switch activityType {
	case models.ActivityTestCompleted, models.ActivityConceptMastered:
		return true
	}
	return false
}

// TutorSessionStreakThreshold is the number of exchanges a tutoring
// session needs before it counts as a qualifying streak activity.
const TutorSessionStreakThreshold = 5

// WeeklyRepairGrant is how many streak repairs the replenishment worker
// tops users up to each week.
const WeeklyRepairGrant = 2
