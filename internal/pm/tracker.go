package pm

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/facility-maintenance/internal/db"
	"github.com/ukydev/facility-maintenance/internal/models"
)

// Tracker records technician work against schedules.
type Tracker struct {
	schedules  db.ScheduleCollection
	executions db.ExecutionCollection
	templates  db.TemplateCollection
	users      db.UserCollection
	now        func() time.Time
}

// NewTracker creates an execution tracker.
func NewTracker(schedules db.ScheduleCollection, executions db.ExecutionCollection, templates db.TemplateCollection, users db.UserCollection) *Tracker {
	return &Tracker{
		schedules:  schedules,
		executions: executions,
		templates:  templates,
		users:      users,
		now:        time.Now,
	}
}

// ExecutionUpdate carries the fields a progress save may change. Nil fields
// are left untouched.
type ExecutionUpdate struct {
	ChecklistResults []models.ChecklistResult `json:"checklist_results,omitempty"`
	UsedParts        []models.UsedPart        `json:"used_parts,omitempty"`
	Findings         *string                  `json:"findings,omitempty"`
	FindingsSeverity *models.FindingsSeverity `json:"findings_severity,omitempty"`
	Rating           *int                     `json:"rating,omitempty"`
	Notes            *string                  `json:"notes,omitempty"`
}

// Start creates the execution for a schedule and moves the schedule to
// in_progress as one logical operation. The conditional status update is the
// linearization point: whichever caller (or background sweep) wins it owns
// the schedule, so no second execution can be created.
//
// Technician assignment is sticky: a pre-assigned technician stays on the
// schedule, otherwise the caller's technician is recorded.
func (t *Tracker) Start(ctx context.Context, scheduleID, technicianID string) (*models.PMExecution, error) {
	schedule, err := t.schedules.FindScheduleByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, ErrScheduleNotFound
	}

	technician := schedule.TechnicianID
	if technician == "" {
		technician = technicianID
	}
	if technician == "" {
		return nil, &ValidationError{Field: "technician_id", Reason: "must not be empty"}
	}
	if t.users != nil {
		if _, err := t.users.FindUserByID(ctx, technician); err != nil {
			return nil, ErrTechnicianNotFound
		}
	}

	template, err := t.templates.FindTemplateByID(ctx, schedule.TemplateID.Hex())
	if err != nil {
		return nil, ErrTemplateNotFound
	}

	if _, err := t.executions.FindExecutionByScheduleID(ctx, schedule.ID); err == nil {
		return nil, ErrExecutionExists
	}

	err = t.schedules.UpdateScheduleStatus(ctx, schedule.ID, startableStates, models.ScheduleStatusInProgress)
	if errors.Is(err, db.ErrNoMatch) {
		return nil, t.startViolation(ctx, scheduleID)
	}
	if err != nil {
		return nil, err
	}

	if schedule.TechnicianID == "" {
		if err := t.schedules.AssignTechnician(ctx, schedule.ID, technician); err != nil {
			log.WithError(err).Warn("Failed to record technician on schedule")
		}
	}

	// Prefill one result slot per template checklist item.
	results := make([]models.ChecklistResult, 0, len(template.Checklist))
	for _, item := range template.Checklist {
		results = append(results, models.ChecklistResult{ItemID: item.ItemID})
	}

	execution := models.PMExecution{
		ScheduleID:       schedule.ID,
		TechnicianID:     technician,
		StartedAt:        t.now(),
		ChecklistResults: results,
		FindingsSeverity: models.SeverityNone,
		Status:           models.ExecutionStatusInProgress,
	}
	id, err := t.executions.InsertExecution(ctx, execution)
	if err != nil {
		// Roll the schedule back so it can be started again.
		if revertErr := t.schedules.UpdateScheduleStatus(ctx, schedule.ID,
			[]models.ScheduleStatus{models.ScheduleStatusInProgress}, schedule.Status); revertErr != nil {
			log.WithError(revertErr).Error("Failed to revert schedule after execution insert failure")
		}
		return nil, err
	}
	execution.ID = id

	log.WithFields(log.Fields{
		"schedule_id":   scheduleID,
		"execution_id":  id.Hex(),
		"technician_id": technician,
	}).Info("Started PM execution")

	return &execution, nil
}

// Update applies a free-form progress save. Allowed any number of times while
// the execution is in progress.
func (t *Tracker) Update(ctx context.Context, executionID string, update ExecutionUpdate) (*models.PMExecution, error) {
	execution, err := t.getExecution(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if execution.Status == models.ExecutionStatusCompleted {
		return nil, &StateViolationError{Op: "update execution for", Current: models.ScheduleStatusCompleted}
	}
	if err := applyUpdate(execution, update); err != nil {
		return nil, err
	}
	if err := t.executions.UpdateExecution(ctx, executionID, *execution); err != nil {
		return nil, err
	}
	return execution, nil
}

// Complete finalizes an execution. Every checklist item the template marks
// required must be checked in the submitted results; otherwise the call fails
// naming the missing items. On success the execution and its schedule both
// move to completed.
func (t *Tracker) Complete(ctx context.Context, executionID string, update ExecutionUpdate) (*models.PMExecution, error) {
	execution, err := t.getExecution(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if execution.Status == models.ExecutionStatusCompleted {
		return nil, &StateViolationError{Op: "complete execution for", Current: models.ScheduleStatusCompleted}
	}
	if err := applyUpdate(execution, update); err != nil {
		return nil, err
	}

	schedule, err := t.schedules.FindScheduleByID(ctx, execution.ScheduleID.Hex())
	if err != nil {
		return nil, ErrScheduleNotFound
	}
	template, err := t.templates.FindTemplateByID(ctx, schedule.TemplateID.Hex())
	if err != nil {
		return nil, ErrTemplateNotFound
	}

	if missing := missingRequiredItems(template, execution.ChecklistResults); len(missing) > 0 {
		return nil, &RequiredItemsIncompleteError{MissingItemIDs: missing}
	}

	completedAt := t.now()
	execution.CompletedAt = &completedAt
	execution.Status = models.ExecutionStatusCompleted
	if err := t.executions.UpdateExecution(ctx, executionID, *execution); err != nil {
		return nil, err
	}

	err = t.schedules.UpdateScheduleStatus(ctx, schedule.ID,
		[]models.ScheduleStatus{models.ScheduleStatusInProgress}, models.ScheduleStatusCompleted)
	if err != nil && !errors.Is(err, db.ErrNoMatch) {
		return nil, err
	}

	log.WithFields(log.Fields{
		"execution_id":     executionID,
		"schedule_id":      schedule.ID.Hex(),
		"duration_minutes": execution.DurationMinutes(),
	}).Info("Completed PM execution")

	return execution, nil
}

// GetByScheduleID fetches the execution belonging to a schedule.
func (t *Tracker) GetByScheduleID(ctx context.Context, scheduleID string) (*models.PMExecution, error) {
	schedule, err := t.schedules.FindScheduleByID(ctx, scheduleID)
	if err != nil {
		return nil, ErrScheduleNotFound
	}
	execution, err := t.executions.FindExecutionByScheduleID(ctx, schedule.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrExecutionNotFound
		}
		return nil, err
	}
	return execution, nil
}

func (t *Tracker) getExecution(ctx context.Context, id string) (*models.PMExecution, error) {
	execution, err := t.executions.FindExecutionByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrExecutionNotFound
		}
		return nil, ErrExecutionNotFound
	}
	return execution, nil
}

func (t *Tracker) startViolation(ctx context.Context, scheduleID string) error {
	schedule, err := t.schedules.FindScheduleByID(ctx, scheduleID)
	if err != nil {
		return ErrScheduleNotFound
	}
	if schedule.Status == models.ScheduleStatusInProgress {
		return &StateViolationError{Op: "start", Current: models.ScheduleStatusInProgress}
	}
	return &StateViolationError{Op: "start", Current: schedule.Status}
}

func applyUpdate(execution *models.PMExecution, update ExecutionUpdate) error {
	if update.ChecklistResults != nil {
		execution.ChecklistResults = update.ChecklistResults
	}
	if update.UsedParts != nil {
		execution.UsedParts = update.UsedParts
	}
	if update.Findings != nil {
		execution.Findings = *update.Findings
	}
	if update.FindingsSeverity != nil {
		if !models.IsValidFindingsSeverity(*update.FindingsSeverity) {
			return &ValidationError{Field: "findings_severity", Reason: "unknown severity"}
		}
		execution.FindingsSeverity = *update.FindingsSeverity
	}
	if update.Rating != nil {
		if *update.Rating < 1 || *update.Rating > 10 {
			return &ValidationError{Field: "rating", Reason: "must be between 1 and 10"}
		}
		execution.Rating = *update.Rating
	}
	if update.Notes != nil {
		execution.Notes = *update.Notes
	}
	return nil
}

func missingRequiredItems(template *models.PMTemplate, results []models.ChecklistResult) []string {
	checked := make(map[string]bool, len(results))
	for _, r := range results {
		if r.IsChecked {
			checked[r.ItemID] = true
		}
	}
	var missing []string
	for _, item := range template.Checklist {
		if item.IsRequired && !checked[item.ItemID] {
			missing = append(missing, item.ItemID)
		}
	}
	return missing
}
