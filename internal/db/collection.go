package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/facility-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNoMatch is returned by conditional updates when the record no longer
	// satisfies the expected precondition (e.g. its status changed underneath).
	ErrNoMatch = errors.New("conditional update matched no record")
)

// TemplateCollection defines the interface for PM template operations.
type TemplateCollection interface {
	InsertTemplate(ctx context.Context, template models.PMTemplate) (primitive.ObjectID, error)
	FindTemplateByID(ctx context.Context, id string) (*models.PMTemplate, error)
	FindTemplates(ctx context.Context, activeOnly bool) ([]models.PMTemplate, error)
	UpdateTemplate(ctx context.Context, id string, template models.PMTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
}

// ScheduleCollection defines the interface for PM schedule operations.
//
// UpdateScheduleStatus and MarkNotified are conditional updates: they apply
// only while the record still satisfies the stated precondition and return
// ErrNoMatch otherwise. They are the linearization points for all per-schedule
// transitions, so a user-driven start and a background sweep can interleave
// without clobbering each other.
type ScheduleCollection interface {
	InsertSchedule(ctx context.Context, schedule models.PMSchedule) (primitive.ObjectID, error)
	FindScheduleByID(ctx context.Context, id string) (*models.PMSchedule, error)
	FindSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.PMSchedule, error)
	ScheduleExists(ctx context.Context, templateID, equipmentID primitive.ObjectID, date time.Time) (bool, error)
	CountByTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error)
	UpdateScheduleStatus(ctx context.Context, id primitive.ObjectID, from []models.ScheduleStatus, to models.ScheduleStatus) error
	AssignTechnician(ctx context.Context, id primitive.ObjectID, technicianID string) error
	MarkNotified(ctx context.Context, id primitive.ObjectID, threshold models.NotificationThreshold) error
	PromoteOverdue(ctx context.Context, before time.Time) (int64, error)
	DeleteSchedule(ctx context.Context, id primitive.ObjectID) error
}

// ExecutionCollection defines the interface for PM execution operations.
type ExecutionCollection interface {
	InsertExecution(ctx context.Context, execution models.PMExecution) (primitive.ObjectID, error)
	FindExecutionByID(ctx context.Context, id string) (*models.PMExecution, error)
	FindExecutionByScheduleID(ctx context.Context, scheduleID primitive.ObjectID) (*models.PMExecution, error)
	UpdateExecution(ctx context.Context, id string, execution models.PMExecution) error
}

// EquipmentCollection defines the interface for equipment operations.
type EquipmentCollection interface {
	InsertEquipment(ctx context.Context, equipment models.Equipment) (primitive.ObjectID, error)
	FindEquipmentByID(ctx context.Context, id string) (*models.Equipment, error)
	FindEquipment(ctx context.Context, equipmentTypeID string) ([]models.Equipment, error)
	UpdateEquipment(ctx context.Context, id string, equipment models.Equipment) error
	DeleteEquipment(ctx context.Context, id string) error
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, user models.User) error
	DeleteUser(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string) error
}

// Store bundles the collections behind one storage backend.
type Store struct {
	Templates  TemplateCollection
	Schedules  ScheduleCollection
	Executions ExecutionCollection
	Equipment  EquipmentCollection
	Users      UserCollection
}
