package pm

import (
	"context"
	"errors"

	"github.com/ukydev/facility-maintenance/internal/db"
	"github.com/ukydev/facility-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registry owns PM template definitions.
type Registry struct {
	templates db.TemplateCollection
	schedules db.ScheduleCollection
}

// NewRegistry creates a template registry.
func NewRegistry(templates db.TemplateCollection, schedules db.ScheduleCollection) *Registry {
	return &Registry{templates: templates, schedules: schedules}
}

// Create validates and stores a new template. Checklist items without an id
// get one assigned.
func (r *Registry) Create(ctx context.Context, template models.PMTemplate) (*models.PMTemplate, error) {
	if err := validateTemplate(&template); err != nil {
		return nil, err
	}
	id, err := r.templates.InsertTemplate(ctx, template)
	if err != nil {
		return nil, err
	}
	return r.templates.FindTemplateByID(ctx, id.Hex())
}

// Update validates and replaces an existing template.
func (r *Registry) Update(ctx context.Context, id string, template models.PMTemplate) (*models.PMTemplate, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := validateTemplate(&template); err != nil {
		return nil, err
	}
	if err := r.templates.UpdateTemplate(ctx, id, template); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return r.templates.FindTemplateByID(ctx, id)
}

// Delete removes a template. Refused while any schedule references it.
func (r *Registry) Delete(ctx context.Context, id string) error {
	template, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	count, err := r.schedules.CountByTemplate(ctx, template.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrTemplateInUse
	}
	if err := r.templates.DeleteTemplate(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}

// Get fetches a template by id.
func (r *Registry) Get(ctx context.Context, id string) (*models.PMTemplate, error) {
	template, err := r.templates.FindTemplateByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, ErrTemplateNotFound
	}
	return template, nil
}

// List returns templates, optionally only active ones.
func (r *Registry) List(ctx context.Context, activeOnly bool) ([]models.PMTemplate, error) {
	return r.templates.FindTemplates(ctx, activeOnly)
}

func validateTemplate(template *models.PMTemplate) error {
	if template.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !models.IsValidIntervalType(template.IntervalType) {
		return &ValidationError{Field: "interval_type", Reason: "unknown recurrence type"}
	}
	if template.IntervalValue < 1 {
		return &ValidationError{Field: "interval_value", Reason: "must be >= 1"}
	}
	if template.EstimatedDuration < 0 {
		return &ValidationError{Field: "estimated_duration_minutes", Reason: "must not be negative"}
	}
	for i := range template.Checklist {
		if template.Checklist[i].ItemID == "" {
			template.Checklist[i].ItemID = primitive.NewObjectID().Hex()
		}
	}
	for _, part := range template.RequiredParts {
		if part.Quantity < 1 {
			return &ValidationError{Field: "required_parts", Reason: "part quantity must be >= 1"}
		}
	}
	return nil
}
