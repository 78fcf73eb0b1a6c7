package gamification

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/a1score/backend/internal/models"
)

// unreachableService builds a service over a connection that can never
// be established, for asserting that storage failures surface to the
// caller instead of being swallowed.
func unreachableService(t *testing.T) *Service {
	t.Helper()
	db, err := sql.Open("postgres", "host=127.0.0.1 port=1 user=none dbname=none sslmode=disable connect_timeout=1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewService(NewStore(db))
}

func TestRecordEventSurfacesStoreFailure(t *testing.T) {
	svc := unreachableService(t)

	result, err := svc.RecordEvent(1, models.RecordEventRequest{ActivityType: models.ActivityTestCompleted})
	if err == nil {
		t.Fatal("expected a storage error, got success")
	}
	if result != nil {
		t.Errorf("got partial result %+v alongside error", result)
	}
}

func TestEvaluateSurfacesStoreFailure(t *testing.T) {
	svc := unreachableService(t)

	if _, _, err := svc.Evaluate(1); err == nil {
		t.Fatal("expected a storage error, got success")
	}
}

func TestRepairStreakSurfacesStoreFailure(t *testing.T) {
	svc := unreachableService(t)

	if _, err := svc.RepairStreak(1, "quiz"); err == nil {
		t.Fatal("expected a storage error, got success")
	}
}

func TestRecordEventRejectsUnknownActivity(t *testing.T) {
	svc := unreachableService(t)

	// Validation failures are rejected locally; the store is never hit.
	_, err := svc.RecordEvent(1, models.RecordEventRequest{ActivityType: "login"})
	if !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("err = %v, want ErrInvalidTransaction", err)
	}
}

func TestRecordPointsRejectsNonPositive(t *testing.T) {
	svc := unreachableService(t)

	for _, points := range []int{0, -5} {
		_, err := svc.RecordPoints(1, models.ActivityQuestionAsked, points, "r", "")
		if !errors.Is(err, ErrInvalidTransaction) {
			t.Errorf("points %d: err = %v, want ErrInvalidTransaction", points, err)
		}
	}
}

func TestRepairStreakRejectsUnknownMethod(t *testing.T) {
	svc := unreachableService(t)

	if _, err := svc.RepairStreak(1, "bribe"); err == nil {
		t.Error("expected rejection of unknown repair method")
	}
}
