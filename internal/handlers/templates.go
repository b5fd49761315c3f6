package handlers

import (
	"net/http"

	"github.com/ukydev/facility-maintenance/internal/models"
	"github.com/ukydev/facility-maintenance/internal/pm"
)

// TemplateHandler serves the PM template registry.
type TemplateHandler struct {
	registry *pm.Registry
}

// NewTemplateHandler creates a template handler.
func NewTemplateHandler(registry *pm.Registry) *TemplateHandler {
	return &TemplateHandler{registry: registry}
}

// Create handles POST /api/pm/templates.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var template models.PMTemplate
	if err := decodeBody(r, &template); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	created, err := h.registry.Create(r.Context(), template)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /api/pm/templates. ?active=true limits to active templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	templates, err := h.registry.List(r.Context(), activeOnly)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if templates == nil {
		templates = []models.PMTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

// Get handles GET /api/pm/templates/{id}.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	template, err := h.registry.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

// Update handles PUT /api/pm/templates/{id}.
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var template models.PMTemplate
	if err := decodeBody(r, &template); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	updated, err := h.registry.Update(r.Context(), r.PathValue("id"), template)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/pm/templates/{id}. Refused with 409 while any
// schedule still references the template.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Template deleted"})
}
