package gamification

import (
	"sort"

	"github.com/a1score/backend/internal/models"
)

// AnonymousDisplayName replaces the real name of users ranking with
// anonymous_mode enabled.
const AnonymousDisplayName = "Anonymous User"

// userTotal is one user's group-summed ledger total plus the profile
// name the leaderboard would display.
type userTotal struct {
	UserID      int64
	DisplayName string
	Total       int64
}

// rankAll filters, orders and ranks the full set of user totals.
// Users with a preference row marked invisible are dropped before
// ranking. Ordering is points descending with user id as the
// deterministic tie-break; ranks are dense and 1-based. Anonymous users
// keep their points and rank but lose their name.
func rankAll(totals []userTotal, prefs map[int64]models.LeaderboardPreference) []models.LeaderboardEntry {
	visible := make([]userTotal, 0, len(totals))
	for _, t := range totals {
		if p, ok := prefs[t.UserID]; ok && !p.IsVisible {
			continue
		}
		visible = append(visible, t)
	}

	sort.Slice(visible, func(i, j int) bool {
		if visible[i].Total != visible[j].Total {
			return visible[i].Total > visible[j].Total
		}
		return visible[i].UserID < visible[j].UserID
	})

	entries := make([]models.LeaderboardEntry, 0, len(visible))
	rank := 0
	var prevTotal int64 = -1
	for _, t := range visible {
		if t.Total != prevTotal {
			rank++
			prevTotal = t.Total
		}
		name := t.DisplayName
		if p, ok := prefs[t.UserID]; ok && p.AnonymousMode {
			name = AnonymousDisplayName
		}
		entries = append(entries, models.LeaderboardEntry{
			Rank:        rank,
			UserID:      t.UserID,
			DisplayName: name,
			TotalPoints: t.Total,
		})
	}
	return entries
}
