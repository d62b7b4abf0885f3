package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diewo77/clientsync/internal/models"
	"github.com/diewo77/clientsync/internal/stats"
)

const (
	overviewRecentClients = 5
	overviewDueTasks      = 8
)

// Overview is everything the dashboard page renders.
type Overview struct {
	Stats         stats.DashboardStats `json:"stats"`
	RecentClients []models.Client      `json:"recentClients"`
	DueTasks      []models.Task        `json:"dueTasks"`
}

// loadAll fetches every client and task of the user concurrently.
func (s *DashboardService) loadAll(ctx context.Context, userID string) ([]models.Client, []models.Task, error) {
	var (
		clients []models.Client
		tasks   []models.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.ListClients(gctx, userID, 0)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.ListAllTasks(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return clients, tasks, nil
}

// DashboardStats computes the dashboard counters for the user. When
// cleanup-on-read is enabled the passive cleanup runs first.
func (s *DashboardService) DashboardStats(ctx context.Context, userID string) (stats.DashboardStats, error) {
	if userID == "" {
		return stats.DashboardStats{}, nil
	}
	s.cleanupBeforeRead(ctx, userID)
	return s.computeStats(ctx, userID)
}

// cleanupBeforeRead runs the passive cleanup when enabled. Its failure is
// logged and does not block the read.
func (s *DashboardService) cleanupBeforeRead(ctx context.Context, userID string) {
	if !s.cleanupOnRead {
		return
	}
	if _, err := s.CleanupInactiveClients(ctx, userID); err != nil {
		s.log.Warn("cleanup before dashboard read failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *DashboardService) computeStats(ctx context.Context, userID string) (stats.DashboardStats, error) {
	clients, tasks, err := s.loadAll(ctx, userID)
	if err != nil {
		return stats.DashboardStats{}, err
	}
	return stats.Compute(clients, tasks, s.clock()), nil
}

// Overview loads stats, recent clients and due tasks concurrently. Any
// cleanup-on-read finishes before the reads start so all three parts see
// the same rows.
func (s *DashboardService) Overview(ctx context.Context, userID string) (*Overview, error) {
	out := &Overview{RecentClients: []models.Client{}, DueTasks: []models.Task{}}
	if userID == "" {
		return out, nil
	}
	s.cleanupBeforeRead(ctx, userID)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := s.computeStats(gctx, userID)
		out.Stats = st
		return err
	})
	g.Go(func() error {
		recent, err := s.ListClients(gctx, userID, overviewRecentClients)
		out.RecentClients = recent
		return err
	})
	g.Go(func() error {
		due, err := s.ListDueTasks(gctx, userID, overviewDueTasks)
		out.DueTasks = due
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// AccountStatistics summarises the user's whole account.
func (s *DashboardService) AccountStatistics(ctx context.Context, userID string) (stats.AccountStatistics, error) {
	if userID == "" {
		return stats.AccountStatistics{}, nil
	}
	clients, tasks, err := s.loadAll(ctx, userID)
	if err != nil {
		return stats.AccountStatistics{}, err
	}
	return stats.Account(clients, tasks), nil
}
