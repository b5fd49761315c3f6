package handlers

import (
	"net/http"
	"time"

	"github.com/ukydev/facility-maintenance/internal/db"
	"github.com/ukydev/facility-maintenance/internal/models"
	"github.com/ukydev/facility-maintenance/internal/pm"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleHandler serves schedule listing, generation and lifecycle actions.
type ScheduleHandler struct {
	lifecycle *pm.Lifecycle
	generator *pm.Generator
	equipment db.EquipmentCollection
}

// NewScheduleHandler creates a schedule handler.
func NewScheduleHandler(lifecycle *pm.Lifecycle, generator *pm.Generator, equipment db.EquipmentCollection) *ScheduleHandler {
	return &ScheduleHandler{lifecycle: lifecycle, generator: generator, equipment: equipment}
}

// Generate handles POST /api/pm/schedules/generate.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req pm.GenerateRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	result, err := h.generator.Generate(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// List handles GET /api/pm/schedules. Supported query parameters:
// equipment_id, equipment_type, template_id, technician_id, status, priority,
// date_from, date_to (dates as 2006-01-02). Filters combine with AND.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := h.buildFilter(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if filter == nil {
		// Equipment type matched nothing, so no schedule can match either.
		writeJSON(w, http.StatusOK, []models.PMSchedule{})
		return
	}
	schedules, err := h.lifecycle.List(r.Context(), *filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if schedules == nil {
		schedules = []models.PMSchedule{}
	}
	writeJSON(w, http.StatusOK, schedules)
}

// Get handles GET /api/pm/schedules/{id}.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.lifecycle.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// Cancel handles POST /api/pm/schedules/{id}/cancel.
func (h *ScheduleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.lifecycle.Cancel(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	schedule, err := h.lifecycle.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// Delete handles DELETE /api/pm/schedules/{id}.
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycle.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Schedule deleted"})
}

// buildFilter translates query parameters into a ScheduleFilter. A nil filter
// with nil error means the equipment_type filter resolved to zero units.
func (h *ScheduleHandler) buildFilter(r *http.Request) (*models.ScheduleFilter, error) {
	q := r.URL.Query()
	filter := models.ScheduleFilter{
		TechnicianID: q.Get("technician_id"),
	}

	if v := q.Get("status"); v != "" {
		status := models.ScheduleStatus(v)
		if !models.IsValidScheduleStatus(status) {
			return nil, &pm.ValidationError{Field: "status", Reason: "unknown status"}
		}
		filter.Status = status
	}
	if v := q.Get("priority"); v != "" {
		priority := models.Priority(v)
		if !models.IsValidPriority(priority) {
			return nil, &pm.ValidationError{Field: "priority", Reason: "unknown priority"}
		}
		filter.Priority = priority
	}
	if v := q.Get("equipment_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return nil, &pm.ValidationError{Field: "equipment_id", Reason: "invalid id"}
		}
		filter.EquipmentID = &id
	}
	if v := q.Get("template_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return nil, &pm.ValidationError{Field: "template_id", Reason: "invalid id"}
		}
		filter.TemplateID = &id
	}
	if v := q.Get("date_from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, &pm.ValidationError{Field: "date_from", Reason: "expected 2006-01-02"}
		}
		filter.DateFrom = &from
	}
	if v := q.Get("date_to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, &pm.ValidationError{Field: "date_to", Reason: "expected 2006-01-02"}
		}
		filter.DateTo = &to
	}

	if v := q.Get("equipment_type"); v != "" {
		units, err := h.equipment.FindEquipment(r.Context(), v)
		if err != nil {
			return nil, err
		}
		if len(units) == 0 {
			return nil, nil
		}
		for _, unit := range units {
			filter.EquipmentIDs = append(filter.EquipmentIDs, unit.ID)
		}
	}

	return &filter, nil
}
