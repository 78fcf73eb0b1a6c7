package gamification

import "testing"

func TestLevelFor(t *testing.T) {
	tests := []struct {
		concepts int
		want     string
	}{
		{0, LevelBeginner},
		{9, LevelBeginner},
		{10, LevelIntermediate},
		{24, LevelIntermediate},
		{25, LevelAdvanced},
		{49, LevelAdvanced},
		{50, LevelExpert},
		{500, LevelExpert},
	}

	for _, tt := range tests {
		got := LevelFor(tt.concepts)
		if got != tt.want {
			t.Errorf("LevelFor(%d) = %q, want %q", tt.concepts, got, tt.want)
		}
	}
}

func TestProgressPercentage(t *testing.T) {
	tests := []struct {
		concepts int
		want     int
	}{
		{0, 0},
		{5, 50},
		{9, 90},
		{10, 0},   // just entered intermediate
		{17, 47},  // round(100*7/15)
		{24, 93},  // round(100*14/15)
		{25, 0},   // just entered advanced
		{40, 60},  // round(100*15/25)
		{50, 100}, // expert is always full
		{999, 100},
	}

	for _, tt := range tests {
		got := ProgressPercentage(tt.concepts)
		if got != tt.want {
			t.Errorf("ProgressPercentage(%d) = %d, want %d", tt.concepts, got, tt.want)
		}
	}
}

func TestConceptsRequired(t *testing.T) {
	tests := []struct {
		concepts int
		want     int
	}{
		{0, ThresholdIntermediate},
		{10, ThresholdAdvanced},
		{25, ThresholdExpert},
		{50, ThresholdExpert},
	}

	for _, tt := range tests {
		got := ConceptsRequired(tt.concepts)
		if got != tt.want {
			t.Errorf("ConceptsRequired(%d) = %d, want %d", tt.concepts, got, tt.want)
		}
	}
}

func TestComputeSubjectLevel(t *testing.T) {
	// Exactly at the advanced threshold: new tier, zero progress
	lvl := ComputeSubjectLevel(7, "Mathematics", 25)
	if lvl.LevelName != LevelAdvanced {
		t.Errorf("LevelName = %q, want %q", lvl.LevelName, LevelAdvanced)
	}
	if lvl.ProgressPercentage != 0 {
		t.Errorf("ProgressPercentage = %d, want 0", lvl.ProgressPercentage)
	}
	if lvl.ConceptsRequired != ThresholdExpert {
		t.Errorf("ConceptsRequired = %d, want %d", lvl.ConceptsRequired, ThresholdExpert)
	}
	if lvl.UserID != 7 || lvl.Subject != "Mathematics" {
		t.Errorf("identity fields not carried through: %+v", lvl)
	}
}
