package gamification

import "errors"

var (
	// ErrInvalidTransaction rejects a ledger write with non-positive points
	// or an unknown activity type. Nothing is persisted.
	ErrInvalidTransaction = errors.New("invalid point transaction")

	// ErrNoRepairsAvailable is returned when a streak repair is requested
	// with zero repairs remaining. No state is mutated.
	ErrNoRepairsAvailable = errors.New("no streak repairs available")

	// ErrNothingToRepair is returned when yesterday is already recorded
	// as active. No repair unit is consumed.
	ErrNothingToRepair = errors.New("no missed day to repair")

	// ErrNotRanked is the expected negative result for a rank query on a
	// user who is invisible or has no transactions.
	ErrNotRanked = errors.New("user not on leaderboard")
)
