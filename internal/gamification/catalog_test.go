package gamification

import (
	"sort"
	"testing"
)

func TestCatalogIntegrity(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range Catalog {
		if d.ID == "" {
			t.Errorf("catalog entry %q has no id", d.Title)
		}
		if seen[d.ID] {
			t.Errorf("duplicate catalog id %q", d.ID)
		}
		seen[d.ID] = true
		if d.Points <= 0 {
			t.Errorf("%s: bonus points must be positive, got %d", d.ID, d.Points)
		}
		if d.Criteria.Count <= 0 {
			t.Errorf("%s: criteria count must be positive, got %d", d.ID, d.Criteria.Count)
		}
		switch d.Criteria.Type {
		case CriteriaConceptMastery, CriteriaTestCompletion, CriteriaStreak:
		default:
			t.Errorf("%s: unknown criteria type %q", d.ID, d.Criteria.Type)
		}
		if d.Criteria.Subject != "" && d.Criteria.Type != CriteriaConceptMastery {
			t.Errorf("%s: subject filter only applies to concept mastery", d.ID)
		}
	}
}

func TestDefinitionByID(t *testing.T) {
	d, ok := DefinitionByID("tests_5")
	if !ok {
		t.Fatal("tests_5 missing from catalog")
	}
	if d.Points != 50 {
		t.Errorf("tests_5 points = %d, want 50", d.Points)
	}

	if _, ok := DefinitionByID("no_such_badge"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestSatisfied(t *testing.T) {
	stats := StatsSnapshot{
		ConceptsMasteredTotal: 30,
		ConceptsBySubject:     map[string]int{"Mathematics": 25, "English": 5},
		TestsCompleted:        5,
		CurrentStreak:         3,
	}

	tests := []struct {
		id   string
		want bool
	}{
		{"first_concept", true},
		{"concepts_10", true},
		{"concepts_50", false}, // total is 30
		{"maths_25", true},
		{"english_25", false}, // only 5 in English
		{"tests_5", true},
		{"tests_20", false},
		{"streak_3", true},
		{"streak_7", false},
	}

	for _, tt := range tests {
		d, ok := DefinitionByID(tt.id)
		if !ok {
			t.Fatalf("%s missing from catalog", tt.id)
		}
		if got := d.Satisfied(stats); got != tt.want {
			t.Errorf("%s.Satisfied = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestMatchNewSkipsUnlocked(t *testing.T) {
	stats := StatsSnapshot{TestsCompleted: 5}
	unlocked := map[string]bool{"first_test": true}

	matched := MatchNew(stats, unlocked)
	if len(matched) != 1 {
		t.Fatalf("matched %d definitions, want 1", len(matched))
	}
	if matched[0].ID != "tests_5" {
		t.Errorf("matched %q, want tests_5", matched[0].ID)
	}
}

func TestMatchNewOrderedByPoints(t *testing.T) {
	// A brand-new user who binged: several badges fire at once
	stats := StatsSnapshot{
		ConceptsMasteredTotal: 12,
		TestsCompleted:        1,
		CurrentStreak:         3,
	}

	matched := MatchNew(stats, nil)
	if len(matched) < 3 {
		t.Fatalf("matched %d definitions, want at least 3", len(matched))
	}
	if !sort.SliceIsSorted(matched, func(i, j int) bool {
		if matched[i].Points != matched[j].Points {
			return matched[i].Points < matched[j].Points
		}
		return matched[i].ID < matched[j].ID
	}) {
		t.Errorf("matches not in ascending point order: %+v", matched)
	}
	// first_concept (10) surfaces before concepts_10 (25)
	if matched[0].ID != "first_concept" {
		t.Errorf("first match = %q, want first_concept", matched[0].ID)
	}
}
