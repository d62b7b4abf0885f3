// Package stats derives dashboard and account counters from already-loaded
// clients and tasks. Nothing here touches storage.
package stats

import (
	"math"
	"time"

	"github.com/diewo77/clientsync/internal/dates"
	"github.com/diewo77/clientsync/internal/models"
)

// CompletedWindow is how far back a completed task still counts as "this week".
const CompletedWindow = 7 * 24 * time.Hour

// DashboardStats are the counters shown on the dashboard cards.
type DashboardStats struct {
	TotalClients           int `json:"totalClients"`
	ActiveClients          int `json:"activeClients"`
	PendingTasks           int `json:"pendingTasks"`
	OverdueTasks           int `json:"overdueTasks"`
	CompletedTasksThisWeek int `json:"completedTasksThisWeek"`
}

// AccountStatistics summarise a user's whole account.
type AccountStatistics struct {
	TotalClients   int `json:"total_clients"`
	ActiveClients  int `json:"active_clients"`
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	ActiveTasks    int `json:"active_tasks"`
	CompletionRate int `json:"completion_rate"`
}

// Today returns the UTC calendar date of now in storage form.
func Today(now time.Time) string {
	return now.UTC().Format(dates.StorageLayout)
}

// Compute counts clients and tasks relative to now.
//
// PendingTasks counts open tasks due today or earlier; OverdueTasks counts
// open tasks due strictly before today, so an overdue task is also pending.
// Tasks whose due date is not in storage form are ignored by both.
func Compute(clients []models.Client, tasks []models.Task, now time.Time) DashboardStats {
	out := DashboardStats{TotalClients: len(clients)}
	for i := range clients {
		if clients[i].Status == models.ClientActive {
			out.ActiveClients++
		}
	}

	today := Today(now)
	weekAgo := now.Add(-CompletedWindow)
	for i := range tasks {
		t := &tasks[i]
		switch {
		case t.Status.Open():
			if !dates.IsStorageFormat(t.DueDate) {
				continue
			}
			if t.DueDate <= today {
				out.PendingTasks++
			}
			if t.DueDate < today {
				out.OverdueTasks++
			}
		case t.Status == models.TaskCompleted:
			if !t.UpdatedAt.Before(weekAgo) {
				out.CompletedTasksThisWeek++
			}
		}
	}
	return out
}

// Account computes account-wide totals and the rounded completion rate.
func Account(clients []models.Client, tasks []models.Task) AccountStatistics {
	out := AccountStatistics{TotalClients: len(clients), TotalTasks: len(tasks)}
	for i := range clients {
		if clients[i].Status == models.ClientActive {
			out.ActiveClients++
		}
	}
	for i := range tasks {
		switch tasks[i].Status {
		case models.TaskCompleted:
			out.CompletedTasks++
		default:
			out.ActiveTasks++
		}
	}
	if out.TotalTasks > 0 {
		out.CompletionRate = int(math.Round(float64(out.CompletedTasks) / float64(out.TotalTasks) * 100))
	}
	return out
}
