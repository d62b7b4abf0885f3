package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/clientsync/httpx"
	"github.com/diewo77/clientsync/internal/models"
	"github.com/diewo77/clientsync/internal/services"
	"github.com/diewo77/clientsync/internal/stats"
)

type DashboardHandler struct {
	svc *services.DashboardService
	log *zap.Logger
}

func NewDashboardHandler(svc *services.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, log: log}
}

type overviewResponse struct {
	Stats         stats.DashboardStats `json:"stats"`
	RecentClients []models.Client      `json:"recentClients"`
	DueTasks      []taskView           `json:"dueTasks"`
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.Overview(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, overviewResponse{
		Stats:         ov.Stats,
		RecentClients: ov.RecentClients,
		DueTasks:      viewTasks(ov.DueTasks),
	})
}

func (h *DashboardHandler) AccountStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.AccountStatistics(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

// Cleanup runs the on-demand inactive client purge. The outcome is always
// reported in the body; only a missing session changes the status code.
func (h *DashboardHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	res := h.svc.TriggerCleanup(r.Context(), currentUser(r))
	status := http.StatusOK
	if !res.Success && currentUser(r) == "" {
		status = http.StatusUnauthorized
	}
	httpx.JSON(w, status, res)
}
