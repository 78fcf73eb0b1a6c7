package gamification

import "sort"

// ── Achievement Catalog ───────────────────────────────────

// CriteriaType discriminates the achievement criteria union.
type CriteriaType string

const (
	CriteriaConceptMastery CriteriaType = "concept_mastery"
	CriteriaTestCompletion CriteriaType = "test_completion"
	CriteriaStreak         CriteriaType = "streak"
)

// Criteria is the tagged union an achievement is tested against.
// Count applies to every variant; Subject only to concept_mastery
// (empty means any subject).
type Criteria struct {
	Type    CriteriaType `json:"type"`
	Count   int          `json:"count"`
	Subject string       `json:"subject,omitempty"`
}

const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// AchievementDefinition is one static catalog entry. Icon is an
// identifier the UI resolves to an asset; the engine never renders it.
type AchievementDefinition struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Rarity      string   `json:"rarity"`
	Points      int      `json:"points"`
	Criteria    Criteria `json:"criteria"`
}

// Catalog is the static, version-controlled achievement list.
var Catalog = []AchievementDefinition{
	{ID: "first_concept", Title: "First Steps", Description: "Master your first concept", Icon: "footprints", Rarity: RarityCommon, Points: 10,
		Criteria: Criteria{Type: CriteriaConceptMastery, Count: 1}},
	{ID: "concepts_10", Title: "Quick Learner", Description: "Master 10 concepts", Icon: "brain", Rarity: RarityCommon, Points: 25,
		Criteria: Criteria{Type: CriteriaConceptMastery, Count: 10}},
	{ID: "concepts_50", Title: "Knowledge Seeker", Description: "Master 50 concepts", Icon: "book-open", Rarity: RarityRare, Points: 100,
		Criteria: Criteria{Type: CriteriaConceptMastery, Count: 50}},
	{ID: "concepts_100", Title: "Scholar", Description: "Master 100 concepts", Icon: "graduation-cap", Rarity: RarityEpic, Points: 250,
		Criteria: Criteria{Type: CriteriaConceptMastery, Count: 100}},
	{ID: "maths_25", Title: "Number Cruncher", Description: "Master 25 Mathematics concepts", Icon: "calculator", Rarity: RarityRare, Points: 75,
		Criteria: Criteria{Type: CriteriaConceptMastery, Count: 25, Subject: "Mathematics"}},
	{ID: "english_25", Title: "Wordsmith", Description: "Master 25 English concepts", Icon: "pen", Rarity: RarityRare, Points: 75,
		Criteria: Criteria{Type: CriteriaConceptMastery, Count: 25, Subject: "English"}},
	{ID: "first_test", Title: "Test Taker", Description: "Complete your first test", Icon: "clipboard-check", Rarity: RarityCommon, Points: 15,
		Criteria: Criteria{Type: CriteriaTestCompletion, Count: 1}},
	{ID: "tests_5", Title: "Examiner's Delight", Description: "Complete 5 tests", Icon: "clipboard-list", Rarity: RarityCommon, Points: 50,
		Criteria: Criteria{Type: CriteriaTestCompletion, Count: 5}},
	{ID: "tests_20", Title: "Test Veteran", Description: "Complete 20 tests", Icon: "medal", Rarity: RarityRare, Points: 120,
		Criteria: Criteria{Type: CriteriaTestCompletion, Count: 20}},
	{ID: "tests_50", Title: "WAEC Ready", Description: "Complete 50 tests", Icon: "trophy", Rarity: RarityEpic, Points: 300,
		Criteria: Criteria{Type: CriteriaTestCompletion, Count: 50}},
	{ID: "streak_3", Title: "Warming Up", Description: "Keep a 3-day streak", Icon: "flame", Rarity: RarityCommon, Points: 20,
		Criteria: Criteria{Type: CriteriaStreak, Count: 3}},
	{ID: "streak_7", Title: "Week Warrior", Description: "Keep a 7-day streak", Icon: "fire", Rarity: RarityRare, Points: 60,
		Criteria: Criteria{Type: CriteriaStreak, Count: 7}},
	{ID: "streak_30", Title: "Unstoppable", Description: "Keep a 30-day streak", Icon: "rocket", Rarity: RarityEpic, Points: 200,
		Criteria: Criteria{Type: CriteriaStreak, Count: 30}},
	{ID: "streak_100", Title: "Centurion", Description: "Keep a 100-day streak", Icon: "crown", Rarity: RarityLegendary, Points: 500,
		Criteria: Criteria{Type: CriteriaStreak, Count: 100}},
}

// DefinitionByID looks up a catalog entry.
func DefinitionByID(id string) (AchievementDefinition, bool) {
	for _, d := range Catalog {
		if d.ID == id {
			return d, true
		}
	}
	return AchievementDefinition{}, false
}

// StatsSnapshot is the aggregated state achievement criteria are tested
// against.
type StatsSnapshot struct {
	ConceptsMasteredTotal int
	ConceptsBySubject     map[string]int
	TestsCompleted        int
	CurrentStreak         int
}

// Satisfied tests the definition's criteria against a stats snapshot.
func (d AchievementDefinition) Satisfied(stats StatsSnapshot) bool {
	switch d.Criteria.Type {
	case CriteriaConceptMastery:
		if d.Criteria.Subject != "" {
			return stats.ConceptsBySubject[d.Criteria.Subject] >= d.Criteria.Count
		}
		return stats.ConceptsMasteredTotal >= d.Criteria.Count
	case CriteriaTestCompletion:
		return stats.TestsCompleted >= d.Criteria.Count
	case CriteriaStreak:
		return stats.CurrentStreak >= d.Criteria.Count
	}
	return false
}

// MatchNew returns catalog entries whose criteria the stats now satisfy
// and that are not already unlocked, ordered by ascending points (ties
// by id) so smaller rewards surface first.
func MatchNew(stats StatsSnapshot, unlocked map[string]bool) []AchievementDefinition {
	var matched []AchievementDefinition
	for _, d := range Catalog {
		if unlocked[d.ID] {
			continue
		}
		if d.Satisfied(stats) {
			matched = append(matched, d)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Points != matched[j].Points {
			return matched[i].Points < matched[j].Points
		}
		return matched[i].ID < matched[j].ID
	})
	return matched
}
