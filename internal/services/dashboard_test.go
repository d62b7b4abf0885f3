package services

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/diewo77/clientsync/internal/models"
	"github.com/diewo77/clientsync/internal/stats"
)

// A user adds a client and a task due today, sees it on the dashboard,
// deactivates the client and triggers cleanup.
func TestDashboard_ClientLifecycle(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	acme, err := s.CreateClient(ctx, ClientInput{Name: "Acme", Email: "ops@acme.com", Company: "Acme Inc"}, "user-a")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	mustTask(t, s, "user-a", acme.ID, "Kick-off call", "12/03/2025", "")

	got, err := s.DashboardStats(ctx, "user-a")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := stats.DashboardStats{TotalClients: 1, ActiveClients: 1, PendingTasks: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}

	inactive := models.ClientInactive
	if _, err := s.UpdateClient(ctx, acme.ID, ClientPatch{Status: &inactive}, "user-a"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	res := s.TriggerCleanup(ctx, "user-a")
	if !res.Success || res.DeletedCount != 1 {
		t.Fatalf("cleanup: %+v", res)
	}
	if countRows(t, db, &models.Task{}, "user_id = ?", "user-a") != 0 {
		t.Fatal("task survived client cleanup")
	}
	got, err = s.DashboardStats(ctx, "user-a")
	if err != nil {
		t.Fatalf("stats after cleanup: %v", err)
	}
	if diff := cmp.Diff(stats.DashboardStats{}, got); diff != "" {
		t.Fatalf("expected zero stats (-want +got):\n%s", diff)
	}
}

func TestDashboardStats_CleanupOnRead(t *testing.T) {
	s, db := newTestService(t, WithCleanupOnRead(true))
	c := mustClient(t, s, "user-a", "stale", models.ClientInactive)
	setUpdatedAt(t, db, &models.Client{}, c.ID, testNow.Add(-31*day))

	got, err := s.DashboardStats(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got.TotalClients != 0 {
		t.Fatalf("stale client counted: %+v", got)
	}
}

func TestDashboardStats_NoCleanupByDefault(t *testing.T) {
	s, db := newTestService(t)
	c := mustClient(t, s, "user-a", "stale", models.ClientInactive)
	setUpdatedAt(t, db, &models.Client{}, c.ID, testNow.Add(-31*day))

	got, err := s.DashboardStats(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got.TotalClients != 1 {
		t.Fatalf("read path removed data: %+v", got)
	}
}

func TestOverview(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		c := mustClient(t, s, "user-a", name, "")
		mustTask(t, s, "user-a", c.ID, "follow up "+name, "2025-03-11", "")
		mustTask(t, s, "user-a", c.ID, "wrap up "+name, "2025-03-20", "")
	}

	ov, err := s.Overview(ctx, "user-a")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(ov.RecentClients) != 5 {
		t.Errorf("recent clients = %d, want 5", len(ov.RecentClients))
	}
	if len(ov.DueTasks) != 8 {
		t.Errorf("due tasks = %d, want 8", len(ov.DueTasks))
	}
	want := stats.DashboardStats{TotalClients: 6, ActiveClients: 6, PendingTasks: 6, OverdueTasks: 6}
	if diff := cmp.Diff(want, ov.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	empty, err := s.Overview(ctx, "")
	if err != nil || len(empty.RecentClients) != 0 || len(empty.DueTasks) != 0 {
		t.Fatalf("anonymous overview: %+v, %v", empty, err)
	}
}

func TestOverview_CleanupOnReadIsConsistent(t *testing.T) {
	s, db := newTestService(t, WithCleanupOnRead(true))
	stale := mustClient(t, s, "user-a", "stale", models.ClientInactive)
	mustTask(t, s, "user-a", stale.ID, "chase invoice", "2025-03-10", "")
	setUpdatedAt(t, db, &models.Client{}, stale.ID, testNow.Add(-40*day))
	kept := mustClient(t, s, "user-a", "kept", "")
	mustTask(t, s, "user-a", kept.ID, "send proposal", "2025-03-12", "")

	ov, err := s.Overview(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	want := stats.DashboardStats{TotalClients: 1, ActiveClients: 1, PendingTasks: 1}
	if diff := cmp.Diff(want, ov.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	if len(ov.RecentClients) != 1 || ov.RecentClients[0].ID != kept.ID {
		t.Errorf("recent clients = %+v, want only %s", ov.RecentClients, kept.ID)
	}
	if len(ov.DueTasks) != 1 || ov.DueTasks[0].ClientID != kept.ID {
		t.Errorf("due tasks = %+v, want only the task of %s", ov.DueTasks, kept.ID)
	}
}

func TestAccountStatistics(t *testing.T) {
	s, _ := newTestService(t)
	c := mustClient(t, s, "user-a", "acme", "")
	mustClient(t, s, "user-a", "old", models.ClientInactive)
	mustTask(t, s, "user-a", c.ID, "a", "2025-03-01", models.TaskCompleted)
	mustTask(t, s, "user-a", c.ID, "b", "2025-03-01", models.TaskPending)
	mustTask(t, s, "user-a", c.ID, "c", "2025-03-01", models.TaskInProgress)
	mustTask(t, s, "user-a", c.ID, "d", "2025-03-01", models.TaskCompleted)

	got, err := s.AccountStatistics(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("account stats: %v", err)
	}
	want := stats.AccountStatistics{TotalClients: 2, ActiveClients: 1, TotalTasks: 4, CompletedTasks: 2, ActiveTasks: 2, CompletionRate: 50}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
