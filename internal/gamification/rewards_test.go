package gamification

import (
	"testing"

	"github.com/a1score/backend/internal/models"
)

func TestRewardFor(t *testing.T) {
	tests := []struct {
		activity string
		want     int
		known    bool
	}{
		{models.ActivityQuestionAsked, 5, true},
		{models.ActivityConceptMastered, 15, true},
		{models.ActivityTestCompleted, 25, true},
		{models.ActivityAchievementUnlocked, 0, false}, // awarded per definition, not scheduled
		{"login", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, known := RewardFor(tt.activity)
		if got != tt.want || known != tt.known {
			t.Errorf("RewardFor(%q) = (%d, %v), want (%d, %v)", tt.activity, got, known, tt.want, tt.known)
		}
	}
}

func TestQualifiesForStreak(t *testing.T) {
	if !QualifiesForStreak(models.ActivityTestCompleted) {
		t.Error("test completion should keep a streak alive")
	}
	if !QualifiesForStreak(models.ActivityConceptMastered) {
		t.Error("concept mastery should keep a streak alive")
	}
	if QualifiesForStreak(models.ActivityQuestionAsked) {
		t.Error("a lone question should not keep a streak alive")
	}
	if QualifiesForStreak("login") {
		t.Error("logins never count toward streaks")
	}
}
