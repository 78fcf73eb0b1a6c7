package gamification

import (
	"testing"

	"github.com/a1score/backend/internal/models"
)

func TestRankAllOrderingAndDenseRanks(t *testing.T) {
	totals := []userTotal{
		{UserID: 1, DisplayName: "Amina B.", Total: 120},
		{UserID: 2, DisplayName: "Chidi O.", Total: 300},
		{UserID: 3, DisplayName: "Funke A.", Total: 120},
		{UserID: 4, DisplayName: "Tunde K.", Total: 80},
	}

	entries := rankAll(totals, nil)
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	wantOrder := []int64{2, 1, 3, 4}
	wantRanks := []int{1, 2, 2, 3}
	for i, e := range entries {
		if e.UserID != wantOrder[i] {
			t.Errorf("entry %d: user %d, want %d", i, e.UserID, wantOrder[i])
		}
		if e.Rank != wantRanks[i] {
			t.Errorf("entry %d: rank %d, want %d", i, e.Rank, wantRanks[i])
		}
	}
}

func TestRankAllTieBreakIsDeterministic(t *testing.T) {
	totals := []userTotal{
		{UserID: 9, DisplayName: "B", Total: 50},
		{UserID: 3, DisplayName: "A", Total: 50},
	}

	entries := rankAll(totals, nil)
	// Equal totals share a rank; lower user id lists first
	if entries[0].UserID != 3 || entries[1].UserID != 9 {
		t.Errorf("tie order = %d, %d; want 3, 9", entries[0].UserID, entries[1].UserID)
	}
	if entries[0].Rank != 1 || entries[1].Rank != 1 {
		t.Errorf("tied ranks = %d, %d; want 1, 1", entries[0].Rank, entries[1].Rank)
	}
}

func TestRankAllFiltersInvisibleBeforeRanking(t *testing.T) {
	totals := []userTotal{
		{UserID: 1, DisplayName: "Amina B.", Total: 300},
		{UserID: 2, DisplayName: "Chidi O.", Total: 200},
		{UserID: 3, DisplayName: "Funke A.", Total: 100},
	}
	prefs := map[int64]models.LeaderboardPreference{
		1: {UserID: 1, IsVisible: false},
	}

	entries := rankAll(totals, prefs)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// The hidden top scorer leaves no gap in the ranks
	if entries[0].UserID != 2 || entries[0].Rank != 1 {
		t.Errorf("first entry = user %d rank %d, want user 2 rank 1", entries[0].UserID, entries[0].Rank)
	}
	if entries[1].UserID != 3 || entries[1].Rank != 2 {
		t.Errorf("second entry = user %d rank %d, want user 3 rank 2", entries[1].UserID, entries[1].Rank)
	}
}

func TestRankAllAnonymousKeepsRankAndPoints(t *testing.T) {
	totals := []userTotal{
		{UserID: 1, DisplayName: "Amina B.", Total: 300},
		{UserID: 2, DisplayName: "Chidi O.", Total: 200},
	}
	prefs := map[int64]models.LeaderboardPreference{
		1: {UserID: 1, IsVisible: true, AnonymousMode: true},
	}

	entries := rankAll(totals, prefs)
	if entries[0].DisplayName != AnonymousDisplayName {
		t.Errorf("display name = %q, want %q", entries[0].DisplayName, AnonymousDisplayName)
	}
	if entries[0].Rank != 1 || entries[0].TotalPoints != 300 {
		t.Errorf("anonymous entry lost rank or points: %+v", entries[0])
	}
	if entries[1].DisplayName != "Chidi O." {
		t.Errorf("visible name = %q, want Chidi O.", entries[1].DisplayName)
	}
}

func TestRankAllEmpty(t *testing.T) {
	entries := rankAll(nil, nil)
	if len(entries) != 0 {
		t.Errorf("got %d entries from empty input, want 0", len(entries))
	}
}
