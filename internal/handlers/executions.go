package handlers

import (
	"net/http"

	"github.com/ukydev/facility-maintenance/internal/middleware"
	"github.com/ukydev/facility-maintenance/internal/pm"
)

// ExecutionHandler serves execution start, progress saves and completion.
type ExecutionHandler struct {
	tracker *pm.Tracker
}

// NewExecutionHandler creates an execution handler.
func NewExecutionHandler(tracker *pm.Tracker) *ExecutionHandler {
	return &ExecutionHandler{tracker: tracker}
}

// Start handles POST /api/pm/schedules/{id}/start. The technician defaults to
// the authenticated caller; an explicit technician_id in the body overrides it
// for supervisors starting work on someone's behalf.
func (h *ExecutionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TechnicianID string `json:"technician_id"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}
	if req.TechnicianID == "" {
		if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
			req.TechnicianID = claims.UserID
		}
	}

	execution, err := h.tracker.Start(r.Context(), r.PathValue("id"), req.TechnicianID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, execution)
}

// Update handles PUT /api/pm/executions/{id}.
func (h *ExecutionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update pm.ExecutionUpdate
	if err := decodeBody(r, &update); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	execution, err := h.tracker.Update(r.Context(), r.PathValue("id"), update)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, execution)
}

// Complete handles POST /api/pm/executions/{id}/complete. The body carries a
// final ExecutionUpdate; completion is refused while required checklist items
// remain unchecked.
func (h *ExecutionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var update pm.ExecutionUpdate
	if r.ContentLength > 0 {
		if err := decodeBody(r, &update); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}
	execution, err := h.tracker.Complete(r.Context(), r.PathValue("id"), update)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, execution)
}

// GetBySchedule handles GET /api/pm/schedules/{id}/execution.
func (h *ExecutionHandler) GetBySchedule(w http.ResponseWriter, r *http.Request) {
	execution, err := h.tracker.GetByScheduleID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, execution)
}
