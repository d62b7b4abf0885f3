package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/clientsync/internal/models"
	"github.com/diewo77/clientsync/validation"
)

// ClientInput is the payload for creating a client. Company is required;
// empty Phone and Notes are stored as NULL.
type ClientInput struct {
	Name    string              `json:"name"`
	Email   string              `json:"email"`
	Company string              `json:"company"`
	Phone   string              `json:"phone"`
	Notes   string              `json:"notes"`
	Status  models.ClientStatus `json:"status"`
}

// ClientPatch is a partial update; nil fields are left unchanged.
type ClientPatch struct {
	Name    *string              `json:"name"`
	Email   *string              `json:"email"`
	Company *string              `json:"company"`
	Phone   *string              `json:"phone"`
	Notes   *string              `json:"notes"`
	Status  *models.ClientStatus `json:"status"`
}

var clientStatuses = []string{string(models.ClientActive), string(models.ClientInactive)}

const likeEscape = ` ESCAPE '\'`

// ListClients returns the user's clients, newest first. limit <= 0 means all.
func (s *DashboardService) ListClients(ctx context.Context, userID string, limit int) ([]models.Client, error) {
	out := []models.Client{}
	if userID == "" {
		return out, nil
	}
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return []models.Client{}, s.storageErr("list clients", userID, err)
	}
	return out, nil
}

// ListActiveClients returns only clients with status active.
func (s *DashboardService) ListActiveClients(ctx context.Context, userID string) ([]models.Client, error) {
	out := []models.Client{}
	if userID == "" {
		return out, nil
	}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.ClientActive).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return []models.Client{}, s.storageErr("list active clients", userID, err)
	}
	return out, nil
}

// GetClient loads one client owned by userID.
func (s *DashboardService) GetClient(ctx context.Context, id, userID string) (*models.Client, error) {
	if userID == "" {
		return nil, ErrNotFound
	}
	var c models.Client
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, s.storageErr("get client", userID, err)
	}
	return &c, nil
}

// SearchClients matches term case-insensitively against name, email and company.
func (s *DashboardService) SearchClients(ctx context.Context, term, userID string) ([]models.Client, error) {
	out := []models.Client{}
	if userID == "" {
		return out, nil
	}
	p := likePattern(term)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("LOWER(name) LIKE ?"+likeEscape+" OR LOWER(email) LIKE ?"+likeEscape+" OR LOWER(COALESCE(company, '')) LIKE ?"+likeEscape, p, p, p).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return []models.Client{}, s.storageErr("search clients", userID, err)
	}
	return out, nil
}

// CreateClient stores a new client for userID.
func (s *DashboardService) CreateClient(ctx context.Context, in ClientInput, userID string) (*models.Client, error) {
	if userID == "" {
		return nil, ErrNoSession
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("company", in.Company, v)
	validation.OneOf("status", string(in.Status), clientStatuses, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	status := in.Status
	if status == "" {
		status = models.ClientActive
	}
	now := s.clock()
	c := &models.Client{
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Company:   nullIfEmpty(in.Company),
		Phone:     nullIfEmpty(in.Phone),
		Notes:     nullIfEmpty(in.Notes),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, s.storageErr("create client", userID, err)
	}
	return c, nil
}

// UpdateClient applies patch to a client owned by userID and stamps updated_at.
func (s *DashboardService) UpdateClient(ctx context.Context, id string, patch ClientPatch, userID string) (*models.Client, error) {
	if userID == "" {
		return nil, ErrNoSession
	}
	v := validation.Violations{}
	updates := map[string]any{"updated_at": s.clock()}
	if patch.Name != nil {
		validation.Required("name", *patch.Name, v)
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		validation.Required("email", *patch.Email, v)
		validation.Email("email", *patch.Email, v)
		updates["email"] = strings.TrimSpace(*patch.Email)
	}
	if patch.Company != nil {
		validation.Required("company", *patch.Company, v)
		updates["company"] = nullIfEmpty(*patch.Company)
	}
	if patch.Phone != nil {
		updates["phone"] = nullIfEmpty(*patch.Phone)
	}
	if patch.Notes != nil {
		updates["notes"] = nullIfEmpty(*patch.Notes)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			v["status"] = "invalid_value"
		}
		updates["status"] = *patch.Status
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	res := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, s.storageErr("update client", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetClient(ctx, id, userID)
}

// DeleteClient removes the client row only. Callers deleting a client that
// may have tasks should use DeleteClientWithTasks.
func (s *DashboardService) DeleteClient(ctx context.Context, id, userID string) error {
	if userID == "" {
		return ErrNoSession
	}
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Client{})
	if res.Error != nil {
		return s.storageErr("delete client", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteClientWithTasks deletes the client's tasks and then the client in
// one transaction. It returns the number of tasks removed.
func (s *DashboardService) DeleteClientWithTasks(ctx context.Context, id, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrNoSession
	}
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Client{}).Where("id = ? AND user_id = ?", id, userID).Count(&n).Error; err != nil {
			return s.storageErr("delete client: lookup", userID, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		res := tx.Where("client_id = ? AND user_id = ?", id, userID).Delete(&models.Task{})
		if res.Error != nil {
			return s.storageErr("delete client: tasks", userID, res.Error)
		}
		removed = res.RowsAffected
		if err := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Client{}).Error; err != nil {
			return s.storageErr("delete client", userID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
