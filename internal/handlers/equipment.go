package handlers

import (
	"errors"
	"net/http"

	"github.com/ukydev/facility-maintenance/internal/db"
	"github.com/ukydev/facility-maintenance/internal/models"
	"github.com/ukydev/facility-maintenance/internal/pm"
)

// EquipmentHandler serves the equipment registry.
type EquipmentHandler struct {
	equipment db.EquipmentCollection
}

// NewEquipmentHandler creates an equipment handler.
func NewEquipmentHandler(equipment db.EquipmentCollection) *EquipmentHandler {
	return &EquipmentHandler{equipment: equipment}
}

// Create handles POST /api/pm/equipment.
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var equipment models.Equipment
	if err := decodeBody(r, &equipment); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if equipment.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}
	if equipment.EquipmentTypeID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "equipment_type_id is required"})
		return
	}
	if equipment.Status == "" {
		equipment.Status = "active"
	}
	id, err := h.equipment.InsertEquipment(r.Context(), equipment)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	created, err := h.equipment.FindEquipmentByID(r.Context(), id.Hex())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /api/pm/equipment. ?type= filters by equipment type.
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	equipment, err := h.equipment.FindEquipment(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if equipment == nil {
		equipment = []models.Equipment{}
	}
	writeJSON(w, http.StatusOK, equipment)
}

// Get handles GET /api/pm/equipment/{id}.
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	equipment, err := h.equipment.FindEquipmentByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, h.mapErr(err))
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}

// Update handles PUT /api/pm/equipment/{id}.
func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var equipment models.Equipment
	if err := decodeBody(r, &equipment); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	id := r.PathValue("id")
	if err := h.equipment.UpdateEquipment(r.Context(), id, equipment); err != nil {
		writeDomainError(w, h.mapErr(err))
		return
	}
	updated, err := h.equipment.FindEquipmentByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.mapErr(err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/pm/equipment/{id}.
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.equipment.DeleteEquipment(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, h.mapErr(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Equipment deleted"})
}

func (h *EquipmentHandler) mapErr(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return pm.ErrEquipmentNotFound
	}
	return err
}
