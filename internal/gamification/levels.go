package gamification

import (
	"math"

	"github.com/a1score/backend/internal/models"
)

// ── Mastery Levels ────────────────────────────────────────

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelExpert       = "expert"
)

// Concept-count thresholds for each tier. A tier covers [min, next min);
// expert has no upper bound. Keep these in sync with anything the UI
// displays — they are the single source of truth.
const (
	ThresholdIntermediate = 10
	ThresholdAdvanced     = 25
	ThresholdExpert       = 50
)

// LevelFor maps a mastered-concept count to its tier name.
func LevelFor(conceptsMastered int) string {
	switch {
	case conceptsMastered >= ThresholdExpert:
		return LevelExpert
	case conceptsMastered >= ThresholdAdvanced:
		return LevelAdvanced
	case conceptsMastered >= ThresholdIntermediate:
		return LevelIntermediate
	}
	return LevelBeginner
}

// levelBounds returns the [min, max) concept range for a tier.
// Expert has no finite max; ok is false for it.
func levelBounds(level string) (min, max int, ok bool) {
	switch level {
	case LevelBeginner:
		return 0, ThresholdIntermediate, true
	case LevelIntermediate:
		return ThresholdIntermediate, ThresholdAdvanced, true
	case LevelAdvanced:
		return ThresholdAdvanced, ThresholdExpert, true
	}
	return ThresholdExpert, 0, false
}

// ProgressPercentage returns how far through the current tier a concept
// count is, 0-100. Expert is always 100.
func ProgressPercentage(conceptsMastered int) int {
	level := LevelFor(conceptsMastered)
	min, max, ok := levelBounds(level)
	if !ok {
		return 100
	}
	pct := int(math.Round(100 * float64(conceptsMastered-min) / float64(max-min)))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ConceptsRequired returns the count needed to leave the current tier.
// For expert it returns the expert threshold itself.
func ConceptsRequired(conceptsMastered int) int {
	_, max, ok := levelBounds(LevelFor(conceptsMastered))
	if !ok {
		return ThresholdExpert
	}
	return max
}

// ComputeSubjectLevel builds the derived SubjectLevel fields from a
// concept count. AchievedAt is managed by the caller on tier changes.
func ComputeSubjectLevel(userID int64, subject string, conceptsMastered int) models.SubjectLevel {
	return models.SubjectLevel{
		UserID:             userID,
		Subject:            subject,
		LevelName:          LevelFor(conceptsMastered),
		ConceptsMastered:   conceptsMastered,
		ConceptsRequired:   ConceptsRequired(conceptsMastered),
		ProgressPercentage: ProgressPercentage(conceptsMastered),
	}
}
