package stats_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/diewo77/clientsync/internal/models"
	"github.com/diewo77/clientsync/internal/stats"
)

var now = time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)

func TestCompute_DueBoundary(t *testing.T) {
	tasks := []models.Task{
		{Status: models.TaskPending, DueDate: "2025-03-12"},
		{Status: models.TaskInProgress, DueDate: "2025-03-11"},
		{Status: models.TaskPending, DueDate: "2025-03-13"},
	}
	got := stats.Compute(nil, tasks, now)
	want := stats.DashboardStats{PendingTasks: 2, OverdueTasks: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compute mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_Full(t *testing.T) {
	clients := []models.Client{
		{Status: models.ClientActive},
		{Status: models.ClientActive},
		{Status: models.ClientInactive},
	}
	tasks := []models.Task{
		{Status: models.TaskCompleted, DueDate: "2025-01-01", UpdatedAt: now.Add(-2 * 24 * time.Hour)},
		{Status: models.TaskCompleted, DueDate: "2025-01-01", UpdatedAt: now.Add(-8 * 24 * time.Hour)},
		{Status: models.TaskCompleted, DueDate: "2025-01-01", UpdatedAt: now.Add(-stats.CompletedWindow)},
		{Status: models.TaskPending, DueDate: "2025-03-01"},
		{Status: models.TaskPending, DueDate: "01/03/2025"},
	}
	got := stats.Compute(clients, tasks, now)
	want := stats.DashboardStats{
		TotalClients:           3,
		ActiveClients:          2,
		PendingTasks:           1,
		OverdueTasks:           1,
		CompletedTasksThisWeek: 2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compute mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_Empty(t *testing.T) {
	if diff := cmp.Diff(stats.DashboardStats{}, stats.Compute(nil, nil, now)); diff != "" {
		t.Errorf("expected zero stats:\n%s", diff)
	}
}

func TestToday_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	late := time.Date(2025, 3, 13, 7, 0, 0, 0, loc) // 2025-03-12 21:00 UTC
	if got := stats.Today(late); got != "2025-03-12" {
		t.Errorf("Today = %q", got)
	}
}

func TestAccount(t *testing.T) {
	clients := []models.Client{{Status: models.ClientActive}, {Status: models.ClientInactive}}
	tasks := []models.Task{
		{Status: models.TaskCompleted},
		{Status: models.TaskCompleted},
		{Status: models.TaskPending},
	}
	want := stats.AccountStatistics{
		TotalClients:   2,
		ActiveClients:  1,
		TotalTasks:     3,
		CompletedTasks: 2,
		ActiveTasks:    1,
		CompletionRate: 67,
	}
	if diff := cmp.Diff(want, stats.Account(clients, tasks)); diff != "" {
		t.Errorf("Account mismatch (-want +got):\n%s", diff)
	}
	if got := stats.Account(nil, nil).CompletionRate; got != 0 {
		t.Errorf("empty completion rate = %d", got)
	}
}
