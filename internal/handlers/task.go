package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/diewo77/clientsync/httpx"
	"github.com/diewo77/clientsync/internal/dates"
	"github.com/diewo77/clientsync/internal/models"
	"github.com/diewo77/clientsync/internal/services"
)

const defaultTaskLimit = 10

// taskView adds the DD/MM/YYYY rendering of the due date.
type taskView struct {
	models.Task
	DueDateDisplay string `json:"due_date_display"`
}

func viewTask(t models.Task) taskView {
	return taskView{Task: t, DueDateDisplay: dates.ToDisplayFormat(t.DueDate)}
}

func viewTasks(ts []models.Task) []taskView {
	out := make([]taskView, len(ts))
	for i, t := range ts {
		out[i] = viewTask(t)
	}
	return out
}

type TaskHandler struct {
	svc *services.DashboardService
	log *zap.Logger
}

func NewTaskHandler(svc *services.DashboardService, log *zap.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, log: log}
}

// List serves ?q=, ?status= and ?due=today|week|overdue. Search wins over
// the other filters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	query := r.URL.Query()
	var (
		tasks []models.Task
		err   error
	)
	q := strings.TrimSpace(query.Get("q"))
	status := models.TaskStatus(query.Get("status"))
	switch due := query.Get("due"); {
	case q != "":
		tasks, err = h.svc.SearchTasks(r.Context(), q, uid)
	case due == "today":
		tasks, err = h.svc.ListTasksDueToday(r.Context(), uid)
	case due == "week":
		tasks, err = h.svc.ListTasksDueThisWeek(r.Context(), uid)
	case due == "overdue":
		tasks, err = h.svc.ListOverdueTasks(r.Context(), uid)
	case due != "":
		httpx.JSONError(w, http.StatusBadRequest, "invalid_due_filter", nil)
		return
	case status != "":
		if !status.Valid() {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
			return
		}
		tasks, err = h.svc.ListTasksByStatus(r.Context(), uid, status)
	default:
		tasks, err = h.svc.ListAllTasks(r.Context(), uid)
	}
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewTasks(tasks))
}

func (h *TaskHandler) Due(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListDueTasks(r.Context(), currentUser(r), httpx.QueryInt(r, "limit", defaultTaskLimit))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewTasks(tasks))
}

func (h *TaskHandler) Pending(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListPendingTasks(r.Context(), currentUser(r), httpx.QueryInt(r, "limit", defaultTaskLimit))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewTasks(tasks))
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.TaskInput
	if !decodeOrReject(w, r, &in) {
		return
	}
	t, err := h.svc.CreateTask(r.Context(), in, currentUser(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, viewTask(*t))
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetTask(r.Context(), r.PathValue("id"), currentUser(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewTask(*t))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch services.TaskPatch
	if !decodeOrReject(w, r, &patch) {
		return
	}
	t, err := h.svc.UpdateTask(r.Context(), r.PathValue("id"), patch, currentUser(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewTask(*t))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTask(r.Context(), r.PathValue("id"), currentUser(r)); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearCompletedTasks(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "deletedCount": n})
}
