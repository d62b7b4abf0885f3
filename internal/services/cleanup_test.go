package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/clientsync/internal/models"
)

const day = 24 * time.Hour

func TestCleanupInactiveClients_AgeGate(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	recent := mustClient(t, s, "user-a", "recent", models.ClientInactive)
	stale := mustClient(t, s, "user-a", "stale", models.ClientInactive)
	active := mustClient(t, s, "user-a", "active", models.ClientActive)
	mustTask(t, s, "user-a", stale.ID, "orphan-to-be", "2025-01-01", "")
	mustTask(t, s, "user-a", recent.ID, "kept", "2025-01-01", "")
	setUpdatedAt(t, db, &models.Client{}, recent.ID, testNow.Add(-10*day))
	setUpdatedAt(t, db, &models.Client{}, stale.ID, testNow.Add(-31*day))
	setUpdatedAt(t, db, &models.Client{}, active.ID, testNow.Add(-90*day))

	n, err := s.CleanupInactiveClients(ctx, "user-a")
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed %d clients, want 1", n)
	}
	if countRows(t, db, &models.Client{}, "id = ?", stale.ID) != 0 {
		t.Error("stale inactive client survived")
	}
	if countRows(t, db, &models.Task{}, "client_id = ?", stale.ID) != 0 {
		t.Error("tasks of removed client survived")
	}
	if countRows(t, db, &models.Client{}, "id IN ?", []string{recent.ID, active.ID}) != 2 {
		t.Error("recent or active client removed")
	}

	again, err := s.CleanupInactiveClients(ctx, "user-a")
	if err != nil || again != 0 {
		t.Fatalf("second run removed %d, err %v", again, err)
	}
}

func TestCleanupInactiveClients_OtherUsersUntouched(t *testing.T) {
	s, db := newTestService(t)
	theirs := mustClient(t, s, "user-b", "theirs", models.ClientInactive)
	setUpdatedAt(t, db, &models.Client{}, theirs.ID, testNow.Add(-60*day))

	n, err := s.CleanupInactiveClients(context.Background(), "user-a")
	if err != nil || n != 0 {
		t.Fatalf("removed %d, err %v", n, err)
	}
	if countRows(t, db, &models.Client{}, "id = ?", theirs.ID) != 1 {
		t.Error("another user's client was removed")
	}
}

func TestTriggerCleanup(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	res := s.TriggerCleanup(ctx, "user-a")
	if !res.Success || res.DeletedCount != 0 || res.Message != "No inactive clients found for cleanup" {
		t.Fatalf("empty cleanup: %+v", res)
	}

	a := mustClient(t, s, "user-a", "a", models.ClientInactive)
	mustClient(t, s, "user-a", "b", models.ClientInactive)
	mustClient(t, s, "user-a", "c", models.ClientActive)
	mustTask(t, s, "user-a", a.ID, "t", "2025-03-01", "")

	res = s.TriggerCleanup(ctx, "user-a")
	want := CleanupResult{Success: true, Message: "Successfully cleaned up 2 inactive clients and their related tasks", DeletedCount: 2}
	if res != want {
		t.Fatalf("got %+v, want %+v", res, want)
	}
	if countRows(t, db, &models.Task{}, "user_id = ?", "user-a") != 0 {
		t.Error("tasks of cleaned clients survived")
	}

	again := s.TriggerCleanup(ctx, "user-a")
	if !again.Success || again.DeletedCount != 0 {
		t.Fatalf("second cleanup: %+v", again)
	}
	if countRows(t, db, &models.Client{}, "user_id = ?", "user-a") != 1 {
		t.Error("active client was removed")
	}

	if res := s.TriggerCleanup(ctx, ""); res.Success {
		t.Fatalf("anonymous cleanup succeeded: %+v", res)
	}
}

func TestTriggerCleanup_FetchFailure(t *testing.T) {
	s, db := newTestService(t)
	sqlDB, _ := db.DB()
	_ = sqlDB.Close()

	res := s.TriggerCleanup(context.Background(), "user-a")
	if res.Success || res.Message != "Error fetching inactive clients" {
		t.Fatalf("got %+v", res)
	}
}

func TestTriggerCleanup_TaskDeleteFailureKeepsClients(t *testing.T) {
	s, db := newTestService(t)
	c := mustClient(t, s, "user-a", "gone", models.ClientInactive)
	mustTask(t, s, "user-a", c.ID, "t", "2025-03-01", "")

	err := db.Callback().Delete().Before("gorm:delete").Register("test:fail_task_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "tasks" {
			_ = tx.AddError(errors.New("tasks table locked"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	res := s.TriggerCleanup(context.Background(), "user-a")
	if res.Success || res.Message != "Error deleting related tasks" {
		t.Fatalf("got %+v", res)
	}
	if countRows(t, db, &models.Client{}, "id = ?", c.ID) != 1 {
		t.Error("client deleted although its tasks were not")
	}
	if countRows(t, db, &models.Task{}, "client_id = ?", c.ID) != 1 {
		t.Error("task deleted by a failed cleanup")
	}
}

func TestCleanupAllUsers(t *testing.T) {
	s, db := newTestService(t, WithRetention(7*day))
	for _, uid := range []string{"user-a", "user-b"} {
		c := mustClient(t, s, uid, "old-"+uid, models.ClientInactive)
		setUpdatedAt(t, db, &models.Client{}, c.ID, testNow.Add(-8*day))
	}
	fresh := mustClient(t, s, "user-a", "fresh", models.ClientInactive)
	setUpdatedAt(t, db, &models.Client{}, fresh.ID, testNow.Add(-6*day))

	n, err := s.CleanupAllUsers(context.Background())
	if err != nil {
		t.Fatalf("cleanup all: %v", err)
	}
	if n != 2 {
		t.Fatalf("removed %d, want 2", n)
	}
	if countRows(t, db, &models.Client{}, "1 = 1") != 1 {
		t.Error("expected only the fresh client to remain")
	}
}
