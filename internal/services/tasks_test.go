package services

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/clientsync/internal/dates"
	"github.com/diewo77/clientsync/internal/models"
)

func TestCreateTask_DateNormalisation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	c := mustClient(t, s, "user-a", "acme", "")

	task := mustTask(t, s, "user-a", c.ID, "Send proposal", "25/12/2025", "")
	if task.DueDate != "2025-12-25" {
		t.Errorf("due date stored as %q", task.DueDate)
	}
	if task.Status != models.TaskPending {
		t.Errorf("status = %q, want pending", task.Status)
	}
	if task.Client == nil || task.Client.Name != "acme" || task.Client.ID != c.ID {
		t.Errorf("client summary not attached: %+v", task.Client)
	}

	_, err := s.CreateTask(ctx, TaskInput{Title: "x", ClientID: c.ID, DueDate: "12-25-2025"}, "user-a")
	if !errors.Is(err, dates.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestCreateTask_ClientMustBeOwned(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	theirs := mustClient(t, s, "user-b", "globex", "")

	for _, id := range []string{theirs.ID, "missing"} {
		_, err := s.CreateTask(ctx, TaskInput{Title: "x", ClientID: id, DueDate: "2025-04-01"}, "user-a")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("client %s: expected ErrNotFound, got %v", id, err)
		}
	}
	if n := countRows(t, db, &models.Task{}, "client_id = ?", theirs.ID); n != 0 {
		t.Fatalf("task attached to another user's client: %d rows", n)
	}
}

func TestTaskLists(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	c := mustClient(t, s, "user-a", "acme", "")
	mustTask(t, s, "user-a", c.ID, "overdue", "2025-03-10", models.TaskPending)
	mustTask(t, s, "user-a", c.ID, "today", "12/03/2025", models.TaskInProgress)
	mustTask(t, s, "user-a", c.ID, "next week", "2025-03-19", models.TaskPending)
	mustTask(t, s, "user-a", c.ID, "later", "2025-04-30", models.TaskPending)
	mustTask(t, s, "user-a", c.ID, "done", "2025-03-01", models.TaskCompleted)

	titles := func(tasks []models.Task) []string {
		out := make([]string, len(tasks))
		for i := range tasks {
			out[i] = tasks[i].Title
		}
		return out
	}
	check := func(name string, tasks []models.Task, err error, want ...string) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		got := titles(tasks)
		if len(got) != len(want) {
			t.Fatalf("%s: got %v, want %v", name, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: got %v, want %v", name, got, want)
			}
		}
	}

	tasks, err := s.ListDueTasks(ctx, "user-a", 2)
	check("due", tasks, err, "overdue", "today")
	tasks, err = s.ListOverdueTasks(ctx, "user-a")
	check("overdue", tasks, err, "overdue")
	tasks, err = s.ListPendingTasks(ctx, "user-a", 3)
	check("pending", tasks, err, "overdue", "next week", "later")
	tasks, err = s.ListTasksDueToday(ctx, "user-a")
	check("today", tasks, err, "today")
	tasks, err = s.ListTasksDueThisWeek(ctx, "user-a")
	check("week", tasks, err, "today", "next week")
	tasks, err = s.ListTasksByStatus(ctx, "user-a", models.TaskCompleted)
	check("completed", tasks, err, "done")
	tasks, err = s.SearchTasks(ctx, "WEEK", "user-a")
	check("search", tasks, err, "next week")
	tasks, err = s.ListAllTasks(ctx, "user-b")
	check("other user", tasks, err)
}

func TestUpdateTask(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	c := mustClient(t, s, "user-a", "acme", "")
	theirs := mustClient(t, s, "user-b", "globex", "")
	task := mustTask(t, s, "user-a", c.ID, "call", "2025-03-20", "")

	done := models.TaskCompleted
	due := "01/04/2025"
	got, err := s.UpdateTask(ctx, task.ID, TaskPatch{Status: &done, DueDate: &due}, "user-a")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != models.TaskCompleted || got.DueDate != "2025-04-01" || got.Title != "call" {
		t.Fatalf("unexpected task: %+v", got)
	}

	if _, err := s.UpdateTask(ctx, task.ID, TaskPatch{ClientID: &theirs.ID}, "user-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("moving task to foreign client: expected ErrNotFound, got %v", err)
	}
	if _, err := s.UpdateTask(ctx, task.ID, TaskPatch{Status: &done}, "user-b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user update: expected ErrNotFound, got %v", err)
	}
	bad := "tomorrow"
	if _, err := s.UpdateTask(ctx, task.ID, TaskPatch{DueDate: &bad}, "user-a"); !errors.Is(err, dates.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
	if err := s.DeleteTask(ctx, task.ID, "user-a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTask(ctx, task.ID, "user-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestClearCompletedTasks(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	c := mustClient(t, s, "user-a", "acme", "")
	mustTask(t, s, "user-a", c.ID, "a", "2025-03-01", models.TaskCompleted)
	mustTask(t, s, "user-a", c.ID, "b", "2025-03-02", models.TaskCompleted)
	mustTask(t, s, "user-a", c.ID, "c", "2025-03-03", models.TaskPending)

	n, err := s.ClearCompletedTasks(ctx, "user-a")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 2 {
		t.Errorf("cleared %d, want 2", n)
	}
	if left := countRows(t, db, &models.Task{}, "user_id = ?", "user-a"); left != 1 {
		t.Errorf("%d tasks left, want 1", left)
	}
}
