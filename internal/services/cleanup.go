package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/clientsync/internal/models"
)

// Stage errors of the inactive-client purge. They wrap ErrStorage.
var (
	ErrCleanupFetch   = errors.New("fetch inactive clients")
	ErrCleanupTasks   = errors.New("delete related tasks")
	ErrCleanupClients = errors.New("delete inactive clients")
)

// CleanupResult is reported by a manually triggered cleanup.
type CleanupResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
}

// purgeInactive deletes inactive clients of userID and their tasks. When
// before is non-nil only clients last updated before it are eligible. The
// eligible id set is read once; both deletes then run in one transaction,
// tasks first, so a failure leaves every row in place.
func (s *DashboardService) purgeInactive(ctx context.Context, userID string, before *time.Time) (int, error) {
	var ids []string
	q := s.db.WithContext(ctx).Model(&models.Client{}).Where("user_id = ? AND status = ?", userID, models.ClientInactive)
	if before != nil {
		q = q.Where("updated_at < ?", *before)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return 0, s.cleanupErr(userID, fmt.Errorf("%w: %w: %w", ErrCleanupFetch, ErrStorage, err))
	}
	if len(ids) == 0 {
		return 0, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND client_id IN ?", userID, ids).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("%w: %w: %w", ErrCleanupTasks, ErrStorage, err)
		}
		if err := tx.Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Client{}).Error; err != nil {
			return fmt.Errorf("%w: %w: %w", ErrCleanupClients, ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrCleanupTasks) && !errors.Is(err, ErrCleanupClients) {
			// The transaction never reached the first delete.
			err = fmt.Errorf("%w: %w: %w", ErrCleanupTasks, ErrStorage, err)
		}
		return 0, s.cleanupErr(userID, err)
	}
	s.log.Info("removed inactive clients", zap.String("user_id", userID), zap.Int("count", len(ids)))
	return len(ids), nil
}

func (s *DashboardService) cleanupErr(userID string, err error) error {
	s.log.Error("inactive client cleanup failed", zap.String("user_id", userID), zap.Error(err))
	return err
}

// CleanupInactiveClients removes the user's inactive clients whose last
// update is older than the retention period, along with their tasks.
func (s *DashboardService) CleanupInactiveClients(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	cutoff := s.clock().Add(-s.retention)
	return s.purgeInactive(ctx, userID, &cutoff)
}

// TriggerCleanup removes every inactive client of the user regardless of age.
func (s *DashboardService) TriggerCleanup(ctx context.Context, userID string) CleanupResult {
	if userID == "" {
		return CleanupResult{Message: "User not authenticated"}
	}
	n, err := s.purgeInactive(ctx, userID, nil)
	switch {
	case errors.Is(err, ErrCleanupFetch):
		return CleanupResult{Message: "Error fetching inactive clients"}
	case errors.Is(err, ErrCleanupTasks):
		return CleanupResult{Message: "Error deleting related tasks"}
	case errors.Is(err, ErrCleanupClients):
		return CleanupResult{Message: "Error deleting inactive clients"}
	case err != nil:
		return CleanupResult{Message: "Error during cleanup process"}
	case n == 0:
		return CleanupResult{Success: true, Message: "No inactive clients found for cleanup"}
	}
	return CleanupResult{
		Success:      true,
		Message:      fmt.Sprintf("Successfully cleaned up %d inactive clients and their related tasks", n),
		DeletedCount: n,
	}
}

// CleanupAllUsers runs the age-gated cleanup for every user owning an
// eligible client. Failures for one user do not stop the others.
func (s *DashboardService) CleanupAllUsers(ctx context.Context) (int, error) {
	cutoff := s.clock().Add(-s.retention)
	var users []string
	err := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("status = ? AND updated_at < ?", models.ClientInactive, cutoff).
		Distinct("user_id").
		Pluck("user_id", &users).Error
	if err != nil {
		return 0, s.storageErr("list cleanup users", "", err)
	}
	total := 0
	var errs []error
	for _, uid := range users {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		n, err := s.purgeInactive(ctx, uid, &cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", uid, err))
			continue
		}
		total += n
	}
	return total, errors.Join(errs...)
}
