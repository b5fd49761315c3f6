package pm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ukydev/facility-maintenance/internal/models"
)

var (
	ErrTemplateNotFound   = errors.New("template not found")
	ErrEquipmentNotFound  = errors.New("equipment not found")
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrExecutionNotFound  = errors.New("execution not found")
	ErrTechnicianNotFound = errors.New("technician not found")

	// ErrTemplateInUse means the template is still referenced by schedules
	// and may not be deleted.
	ErrTemplateInUse = errors.New("template is referenced by existing schedules")

	// ErrExecutionExists means a second execution was attempted for a
	// schedule that already has one.
	ErrExecutionExists = errors.New("execution already exists for schedule")
)

// StateViolationError reports an invalid lifecycle transition together with
// the state the record was actually in, so the caller can react.
type StateViolationError struct {
	Op      string
	Current models.ScheduleStatus
}

func (e *StateViolationError) Error() string {
	return fmt.Sprintf("cannot %s schedule in status %q", e.Op, e.Current)
}

// ValidationError reports a specific violating field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RequiredItemsIncompleteError reports the required checklist items that were
// not checked when completion was attempted.
type RequiredItemsIncompleteError struct {
	MissingItemIDs []string
}

func (e *RequiredItemsIncompleteError) Error() string {
	return fmt.Sprintf("required checklist items not checked: %s", strings.Join(e.MissingItemIDs, ", "))
}

// IsStateViolation reports whether err is a lifecycle state violation.
func IsStateViolation(err error) bool {
	var sv *StateViolationError
	return errors.As(err, &sv)
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrEquipmentNotFound) ||
		errors.Is(err, ErrScheduleNotFound) ||
		errors.Is(err, ErrExecutionNotFound) ||
		errors.Is(err, ErrTechnicianNotFound)
}

// IsValidation reports whether err is a validation failure, including the
// required-checklist gate.
func IsValidation(err error) bool {
	var ve *ValidationError
	var ri *RequiredItemsIncompleteError
	return errors.As(err, &ve) || errors.As(err, &ri)
}
