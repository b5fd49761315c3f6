package pm

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/facility-maintenance/internal/db"
	"github.com/ukydev/facility-maintenance/internal/models"
)

// Generator expands a template's recurrence rule into concrete dated
// schedules for a set of equipment.
type Generator struct {
	templates db.TemplateCollection
	schedules db.ScheduleCollection
	equipment db.EquipmentCollection
}

// NewGenerator creates a schedule generator.
func NewGenerator(templates db.TemplateCollection, schedules db.ScheduleCollection, equipment db.EquipmentCollection) *Generator {
	return &Generator{templates: templates, schedules: schedules, equipment: equipment}
}

// GenerateRequest describes one generation run.
type GenerateRequest struct {
	TemplateID   string          `json:"template_id"`
	EquipmentIDs []string        `json:"equipment_ids"`
	StartDate    time.Time       `json:"start_date"`
	MonthsAhead  int             `json:"months_ahead"`
	Priority     models.Priority `json:"priority,omitempty"`
}

// SkippedEquipment records an equipment id that could not be scheduled and why.
type SkippedEquipment struct {
	EquipmentID string `json:"equipment_id"`
	Reason      string `json:"reason"`
}

// GenerateResult reports what one generation run did. Individually invalid
// equipment ids land in Skipped instead of failing the batch; generation is
// idempotent and re-runnable, so partial success is always safe.
type GenerateResult struct {
	Created         []models.PMSchedule `json:"created"`
	SkippedExisting int                 `json:"skipped_existing"`
	Skipped         []SkippedEquipment  `json:"skipped_equipment,omitempty"`
}

// Generate materializes schedules from StartDate until StartDate+MonthsAhead,
// one per equipment per recurrence step. A (template, equipment, date) key
// that already has a schedule is skipped, so re-running with the same
// arguments creates nothing new.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	template, err := g.templates.FindTemplateByID(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, ErrTemplateNotFound
	}
	if !models.IsValidIntervalType(template.IntervalType) {
		return nil, &ValidationError{Field: "interval_type", Reason: "unknown recurrence type"}
	}
	if template.IntervalValue < 1 {
		return nil, &ValidationError{Field: "interval_value", Reason: "must be >= 1"}
	}
	if req.MonthsAhead < 1 {
		return nil, &ValidationError{Field: "months_ahead", Reason: "must be >= 1"}
	}
	if len(req.EquipmentIDs) == 0 {
		return nil, &ValidationError{Field: "equipment_ids", Reason: "must not be empty"}
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.IsValidPriority(priority) {
		return nil, &ValidationError{Field: "priority", Reason: "unknown priority"}
	}

	start := DateOnly(req.StartDate)
	end := addMonthsClamped(start, req.MonthsAhead)

	var dates []time.Time
	for cur := start; cur.Before(end); {
		dates = append(dates, cur)
		next, err := Advance(cur, template.IntervalType, template.IntervalValue)
		if err != nil {
			return nil, err
		}
		cur = next
	}

	result := &GenerateResult{}
	for _, equipmentID := range req.EquipmentIDs {
		equip, err := g.equipment.FindEquipmentByID(ctx, equipmentID)
		if err != nil {
			// Best effort: skip the invalid entry and keep going.
			result.Skipped = append(result.Skipped, SkippedEquipment{
				EquipmentID: equipmentID,
				Reason:      ErrEquipmentNotFound.Error(),
			})
			continue
		}

		for _, date := range dates {
			exists, err := g.schedules.ScheduleExists(ctx, template.ID, equip.ID, date)
			if err != nil {
				return nil, err
			}
			if exists {
				result.SkippedExisting++
				continue
			}
			schedule := models.PMSchedule{
				TemplateID:    template.ID,
				EquipmentID:   equip.ID,
				ScheduledDate: date,
				Status:        models.ScheduleStatusScheduled,
				Priority:      priority,
			}
			id, err := g.schedules.InsertSchedule(ctx, schedule)
			if err != nil {
				return nil, err
			}
			schedule.ID = id
			result.Created = append(result.Created, schedule)
		}
	}

	log.WithFields(log.Fields{
		"template_id":      req.TemplateID,
		"created":          len(result.Created),
		"skipped_existing": result.SkippedExisting,
		"skipped_invalid":  len(result.Skipped),
	}).Info("Generated PM schedules")

	return result, nil
}
