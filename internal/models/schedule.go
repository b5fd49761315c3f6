package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleStatus represents the lifecycle state of a PM schedule.
type ScheduleStatus string

const (
	ScheduleStatusScheduled  ScheduleStatus = "scheduled"
	ScheduleStatusInProgress ScheduleStatus = "in_progress"
	ScheduleStatusCompleted  ScheduleStatus = "completed"
	ScheduleStatusOverdue    ScheduleStatus = "overdue"
	ScheduleStatusCancelled  ScheduleStatus = "cancelled"
)

// IsValidScheduleStatus checks if a schedule status is valid.
func IsValidScheduleStatus(s ScheduleStatus) bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusInProgress, ScheduleStatusCompleted,
		ScheduleStatusOverdue, ScheduleStatusCancelled:
		return true
	default:
		return false
	}
}

// Priority represents how urgent a schedule is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValidPriority checks if a priority is valid.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// NotificationThreshold identifies one of the advance-reminder offsets.
type NotificationThreshold string

const (
	ThresholdThreeDay NotificationThreshold = "three_day"
	ThresholdOneDay   NotificationThreshold = "one_day"
	ThresholdSameDay  NotificationThreshold = "same_day"
)

// PMSchedule is one dated occurrence of a template against one equipment unit.
// ScheduledDate is stored normalized to midnight UTC; all day comparisons in
// the engine are done on UTC calendar days.
type PMSchedule struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TemplateID   primitive.ObjectID `bson:"template_id" json:"template_id"`
	EquipmentID  primitive.ObjectID `bson:"equipment_id" json:"equipment_id"`
	ScheduledDate time.Time         `bson:"scheduled_date" json:"scheduled_date"`
	TechnicianID string             `bson:"technician_id,omitempty" json:"technician_id,omitempty"`
	Status       ScheduleStatus     `bson:"status" json:"status"`
	Priority     Priority           `bson:"priority" json:"priority"`
	Sent3Days    bool               `bson:"sent_3days" json:"sent_3days"`
	Sent1Day     bool               `bson:"sent_1day" json:"sent_1day"`
	SentToday    bool               `bson:"sent_today" json:"sent_today"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Sent reports whether the reminder for the given threshold was already
// emitted. Flags are monotonic: once set they are never reset.
func (s *PMSchedule) Sent(th NotificationThreshold) bool {
	switch th {
	case ThresholdThreeDay:
		return s.Sent3Days
	case ThresholdOneDay:
		return s.Sent1Day
	case ThresholdSameDay:
		return s.SentToday
	default:
		return false
	}
}

// ScheduleFilter narrows a schedule listing. All fields are optional and
// combined with AND. EquipmentIDs is the resolved id set when filtering by
// equipment type; the API layer resolves the type to ids before querying.
type ScheduleFilter struct {
	EquipmentID  *primitive.ObjectID
	EquipmentIDs []primitive.ObjectID
	TemplateID   *primitive.ObjectID
	TechnicianID string
	Status       ScheduleStatus
	Priority     Priority
	DateFrom     *time.Time
	DateTo       *time.Time
}
