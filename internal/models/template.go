package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IntervalType represents the recurrence unit of a PM template.
type IntervalType string

const (
	IntervalDaily     IntervalType = "daily"
	IntervalWeekly    IntervalType = "weekly"
	IntervalMonthly   IntervalType = "monthly"
	IntervalQuarterly IntervalType = "quarterly"
	IntervalYearly    IntervalType = "yearly"
)

// IsValidIntervalType checks if an interval type is valid.
func IsValidIntervalType(t IntervalType) bool {
	switch t {
	case IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalQuarterly, IntervalYearly:
		return true
	default:
		return false
	}
}

// ChecklistItem is one step of a template checklist.
type ChecklistItem struct {
	ItemID      string `bson:"item_id" json:"item_id"`
	Order       int    `bson:"order" json:"order"`
	Description string `bson:"description" json:"description"`
	IsRequired  bool   `bson:"is_required" json:"is_required"`
}

// RequiredPart is a part a template expects to be consumed.
type RequiredPart struct {
	Code     string `bson:"code" json:"code"`
	Name     string `bson:"name" json:"name"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// PMTemplate is the reusable definition of a preventive maintenance job.
type PMTemplate struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Description       string             `bson:"description" json:"description"`
	EquipmentTypeID   string             `bson:"equipment_type_id" json:"equipment_type_id"`
	IntervalType      IntervalType       `bson:"interval_type" json:"interval_type"`
	IntervalValue     int                `bson:"interval_value" json:"interval_value"`
	Checklist         []ChecklistItem    `bson:"checklist" json:"checklist"`
	RequiredParts     []RequiredPart     `bson:"required_parts" json:"required_parts"`
	EstimatedDuration int                `bson:"estimated_duration_minutes" json:"estimated_duration_minutes"`
	IsActive          bool               `bson:"is_active" json:"is_active"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// RequiredItems returns the checklist items that must be checked before an
// execution of this template can be completed.
func (t *PMTemplate) RequiredItems() []ChecklistItem {
	var required []ChecklistItem
	for _, item := range t.Checklist {
		if item.IsRequired {
			required = append(required, item)
		}
	}
	return required
}
