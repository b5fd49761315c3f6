package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExecutionStatus represents the state of a PM execution record.
type ExecutionStatus string

const (
	ExecutionStatusInProgress ExecutionStatus = "in_progress"
	ExecutionStatusCompleted  ExecutionStatus = "completed"
)

// FindingsSeverity classifies what a technician found during an execution.
type FindingsSeverity string

const (
	SeverityNone     FindingsSeverity = "none"
	SeverityMinor    FindingsSeverity = "minor"
	SeverityMajor    FindingsSeverity = "major"
	SeverityCritical FindingsSeverity = "critical"
)

// IsValidFindingsSeverity checks if a findings severity is valid.
func IsValidFindingsSeverity(s FindingsSeverity) bool {
	switch s {
	case SeverityNone, SeverityMinor, SeverityMajor, SeverityCritical:
		return true
	default:
		return false
	}
}

// ChecklistResult records the outcome of one checklist item.
type ChecklistResult struct {
	ItemID    string `bson:"item_id" json:"item_id"`
	IsChecked bool   `bson:"is_checked" json:"is_checked"`
	HasIssue  bool   `bson:"has_issue" json:"has_issue"`
}

// UsedPart is a snapshot of a part actually consumed during an execution.
type UsedPart struct {
	Code     string `bson:"code" json:"code"`
	Name     string `bson:"name" json:"name"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// PMExecution is the record of a technician performing a scheduled occurrence.
// At most one execution exists per schedule. Duration is derived from the two
// timestamps, never stored on its own.
type PMExecution struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ScheduleID       primitive.ObjectID `bson:"schedule_id" json:"schedule_id"`
	TechnicianID     string             `bson:"technician_id" json:"technician_id"`
	StartedAt        time.Time          `bson:"started_at" json:"started_at"`
	CompletedAt      *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	ChecklistResults []ChecklistResult  `bson:"checklist_results" json:"checklist_results"`
	UsedParts        []UsedPart         `bson:"used_parts" json:"used_parts"`
	Findings         string             `bson:"findings" json:"findings"`
	FindingsSeverity FindingsSeverity   `bson:"findings_severity" json:"findings_severity"`
	Rating           int                `bson:"rating" json:"rating"` // 1-10
	Notes            string             `bson:"notes" json:"notes"`
	Status           ExecutionStatus    `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// DurationMinutes returns the rounded execution duration, or 0 while the
// execution is still in progress.
func (e *PMExecution) DurationMinutes() int {
	if e.CompletedAt == nil {
		return 0
	}
	return int(e.CompletedAt.Sub(e.StartedAt).Round(time.Minute) / time.Minute)
}
