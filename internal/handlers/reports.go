package handlers

import (
	"net/http"
	"strconv"

	"github.com/ukydev/facility-maintenance/internal/pm"
)

// ReportsHandler serves the dashboard, compliance history and the manual
// sweep triggers.
type ReportsHandler struct {
	calculator *pm.Calculator
	lifecycle  *pm.Lifecycle
	evaluator  *pm.Evaluator
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(calculator *pm.Calculator, lifecycle *pm.Lifecycle, evaluator *pm.Evaluator) *ReportsHandler {
	return &ReportsHandler{calculator: calculator, lifecycle: lifecycle, evaluator: evaluator}
}

// Dashboard handles GET /api/pm/stats/dashboard.
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.calculator.Dashboard(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Compliance handles GET /api/pm/stats/compliance. ?months=N controls how many
// monthly periods come back, newest first; the default is 6.
func (h *ReportsHandler) Compliance(w http.ResponseWriter, r *http.Request) {
	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeDomainError(w, &pm.ValidationError{Field: "months", Reason: "must be an integer"})
			return
		}
		months = parsed
	}
	stats, err := h.calculator.ComplianceStats(r.Context(), months)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// OverdueSweep handles POST /api/pm/sweeps/overdue. The sweep also runs on a
// timer; the endpoint exists so an operator can force one.
func (h *ReportsHandler) OverdueSweep(w http.ResponseWriter, r *http.Request) {
	promoted, err := h.lifecycle.RunOverdueSweep(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"promoted": promoted})
}

// NotificationSweep handles POST /api/pm/sweeps/notifications.
func (h *ReportsHandler) NotificationSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.evaluator.RunSweep(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
