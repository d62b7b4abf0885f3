package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/clientsync/gate"
	"github.com/diewo77/clientsync/internal/dates"
	"github.com/diewo77/clientsync/internal/models"
	"github.com/diewo77/clientsync/internal/stats"
	"github.com/diewo77/clientsync/validation"
)

// TaskInput is the payload for creating a task. DueDate accepts
// DD/MM/YYYY or YYYY-MM-DD.
type TaskInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	ClientID    string            `json:"client_id"`
	DueDate     string            `json:"due_date"`
	Status      models.TaskStatus `json:"status"`
}

// TaskPatch is a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	ClientID    *string            `json:"client_id"`
	DueDate     *string            `json:"due_date"`
	Status      *models.TaskStatus `json:"status"`
}

var taskStatuses = []string{string(models.TaskPending), string(models.TaskInProgress), string(models.TaskCompleted)}

const dueThisWeek = 7 * 24 * time.Hour

// listTasks runs a user-scoped task query and attaches client summaries.
func (s *DashboardService) listTasks(ctx context.Context, op, userID string, scope func(*gorm.DB) *gorm.DB) ([]models.Task, error) {
	out := []models.Task{}
	if userID == "" {
		return out, nil
	}
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if err := scope(q).Find(&out).Error; err != nil {
		return []models.Task{}, s.storageErr(op, userID, err)
	}
	if err := s.attachClients(ctx, out); err != nil {
		return []models.Task{}, s.storageErr(op+": clients", userID, err)
	}
	return out, nil
}

// attachClients fills Task.Client with the id/name/email/company of each
// referenced client.
func (s *DashboardService) attachClients(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tasks))
	ids := make([]string, 0, len(tasks))
	for i := range tasks {
		if id := tasks[i].ClientID; !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	var summaries []models.ClientSummary
	err := s.db.WithContext(ctx).Model(&models.Client{}).
		Select("id", "name", "email", "company").
		Where("id IN ?", ids).
		Find(&summaries).Error
	if err != nil {
		return err
	}
	byID := make(map[string]*models.ClientSummary, len(summaries))
	for i := range summaries {
		byID[summaries[i].ID] = &summaries[i]
	}
	for i := range tasks {
		tasks[i].Client = byID[tasks[i].ClientID]
	}
	return nil
}

// ListAllTasks returns every task of the user, earliest due first.
func (s *DashboardService) ListAllTasks(ctx context.Context, userID string) ([]models.Task, error) {
	return s.listTasks(ctx, "list tasks", userID, func(q *gorm.DB) *gorm.DB {
		return q.Order("due_date ASC")
	})
}

// ListDueTasks returns up to limit tasks that are not completed, earliest
// due first.
func (s *DashboardService) ListDueTasks(ctx context.Context, userID string, limit int) ([]models.Task, error) {
	return s.listTasks(ctx, "list due tasks", userID, func(q *gorm.DB) *gorm.DB {
		q = q.Where("status <> ?", models.TaskCompleted).Order("due_date ASC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q
	})
}

// ListOverdueTasks returns open tasks due before today.
func (s *DashboardService) ListOverdueTasks(ctx context.Context, userID string) ([]models.Task, error) {
	today := stats.Today(s.clock())
	return s.listTasks(ctx, "list overdue tasks", userID, func(q *gorm.DB) *gorm.DB {
		return q.Where("status <> ? AND due_date < ?", models.TaskCompleted, today).Order("due_date ASC")
	})
}

// ListPendingTasks returns up to limit tasks with status pending.
func (s *DashboardService) ListPendingTasks(ctx context.Context, userID string, limit int) ([]models.Task, error) {
	return s.listTasks(ctx, "list pending tasks", userID, func(q *gorm.DB) *gorm.DB {
		q = q.Where("status = ?", models.TaskPending).Order("due_date ASC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q
	})
}

// ListTasksByStatus returns tasks with the given status.
func (s *DashboardService) ListTasksByStatus(ctx context.Context, userID string, status models.TaskStatus) ([]models.Task, error) {
	return s.listTasks(ctx, "list tasks by status", userID, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", status).Order("due_date ASC")
	})
}

// ListTasksDueToday returns tasks due on the current UTC date.
func (s *DashboardService) ListTasksDueToday(ctx context.Context, userID string) ([]models.Task, error) {
	today := stats.Today(s.clock())
	return s.listTasks(ctx, "list tasks due today", userID, func(q *gorm.DB) *gorm.DB {
		return q.Where("due_date = ?", today).Order("created_at ASC")
	})
}

// ListTasksDueThisWeek returns tasks due between today and seven days ahead.
func (s *DashboardService) ListTasksDueThisWeek(ctx context.Context, userID string) ([]models.Task, error) {
	now := s.clock()
	from, to := stats.Today(now), stats.Today(now.Add(dueThisWeek))
	return s.listTasks(ctx, "list tasks due this week", userID, func(q *gorm.DB) *gorm.DB {
		return q.Where("due_date >= ? AND due_date <= ?", from, to).Order("due_date ASC")
	})
}

// SearchTasks matches term case-insensitively against title and description.
func (s *DashboardService) SearchTasks(ctx context.Context, term, userID string) ([]models.Task, error) {
	p := likePattern(term)
	return s.listTasks(ctx, "search tasks", userID, func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(title) LIKE ?"+likeEscape+" OR LOWER(COALESCE(description, '')) LIKE ?"+likeEscape, p, p).
			Order("due_date ASC")
	})
}

// authorizeClient checks that clientID belongs to userID. Another user's
// client is reported as ErrNotFound, like an unknown id.
func (s *DashboardService) authorizeClient(ctx context.Context, clientID, userID string) error {
	var c models.Client
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", clientID, userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("client %s: %w", clientID, ErrNotFound)
	}
	if err != nil {
		return s.storageErr("load task client", userID, err)
	}
	if err := s.gate.Authorize(ctx, userID, gate.ActionUpdate, gate.ResourceClient, &c); err != nil {
		return fmt.Errorf("client %s: %w", clientID, ErrForbidden)
	}
	return nil
}

// CreateTask stores a task for one of the user's clients. An unparseable
// due date fails with dates.ErrInvalidFormat.
func (s *DashboardService) CreateTask(ctx context.Context, in TaskInput, userID string) (*models.Task, error) {
	if userID == "" {
		return nil, ErrNoSession
	}
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.Required("client_id", in.ClientID, v)
	validation.Required("due_date", in.DueDate, v)
	validation.OneOf("status", string(in.Status), taskStatuses, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	due, err := dates.ToStorageFormat(strings.TrimSpace(in.DueDate))
	if err != nil {
		return nil, fmt.Errorf("due_date: %w", err)
	}
	if err := s.authorizeClient(ctx, in.ClientID, userID); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.TaskPending
	}
	now := s.clock()
	t := &models.Task{
		UserID:      userID,
		ClientID:    in.ClientID,
		Title:       strings.TrimSpace(in.Title),
		Description: nullIfEmpty(in.Description),
		Status:      status,
		DueDate:     due,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, s.storageErr("create task", userID, err)
	}
	return s.GetTask(ctx, t.ID, userID)
}

// GetTask loads one task owned by userID with its client summary.
func (s *DashboardService) GetTask(ctx context.Context, id, userID string) (*models.Task, error) {
	if userID == "" {
		return nil, ErrNotFound
	}
	var t models.Task
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, s.storageErr("get task", userID, err)
	}
	tasks := []models.Task{t}
	if err := s.attachClients(ctx, tasks); err != nil {
		return nil, s.storageErr("get task: clients", userID, err)
	}
	return &tasks[0], nil
}

// UpdateTask applies patch to a task owned by userID and stamps updated_at.
func (s *DashboardService) UpdateTask(ctx context.Context, id string, patch TaskPatch, userID string) (*models.Task, error) {
	if userID == "" {
		return nil, ErrNoSession
	}
	v := validation.Violations{}
	updates := map[string]any{"updated_at": s.clock()}
	if patch.Title != nil {
		validation.Required("title", *patch.Title, v)
		updates["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		updates["description"] = nullIfEmpty(*patch.Description)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			v["status"] = "invalid_value"
		}
		updates["status"] = *patch.Status
	}
	if patch.ClientID != nil {
		validation.Required("client_id", *patch.ClientID, v)
		updates["client_id"] = *patch.ClientID
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	if patch.DueDate != nil {
		due, err := dates.ToStorageFormat(strings.TrimSpace(*patch.DueDate))
		if err != nil {
			return nil, fmt.Errorf("due_date: %w", err)
		}
		updates["due_date"] = due
	}
	if patch.ClientID != nil {
		if err := s.authorizeClient(ctx, *patch.ClientID, userID); err != nil {
			return nil, err
		}
	}

	res := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, s.storageErr("update task", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetTask(ctx, id, userID)
}

// DeleteTask removes one task owned by userID.
func (s *DashboardService) DeleteTask(ctx context.Context, id, userID string) error {
	if userID == "" {
		return ErrNoSession
	}
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Task{})
	if res.Error != nil {
		return s.storageErr("delete task", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCompletedTasks deletes all completed tasks of the user and returns
// how many were removed.
func (s *DashboardService) ClearCompletedTasks(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.TaskCompleted).
		Delete(&models.Task{})
	if res.Error != nil {
		return 0, s.storageErr("clear completed tasks", userID, res.Error)
	}
	return res.RowsAffected, nil
}
