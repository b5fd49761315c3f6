package pm

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/facility-maintenance/internal/db"
	"github.com/ukydev/facility-maintenance/internal/models"
)

// transitions is the closed table of legal status moves. completed and
// cancelled are terminal.
var transitions = map[models.ScheduleStatus][]models.ScheduleStatus{
	models.ScheduleStatusScheduled:  {models.ScheduleStatusInProgress, models.ScheduleStatusOverdue, models.ScheduleStatusCancelled},
	models.ScheduleStatusOverdue:    {models.ScheduleStatusInProgress, models.ScheduleStatusCancelled},
	models.ScheduleStatusInProgress: {models.ScheduleStatusCompleted},
	models.ScheduleStatusCompleted:  {},
	models.ScheduleStatusCancelled:  {},
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to models.ScheduleStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStates returns the legal successor states of a status.
func NextStates(from models.ScheduleStatus) []models.ScheduleStatus {
	return transitions[from]
}

// startableStates are the states from which an execution may be started.
var startableStates = []models.ScheduleStatus{
	models.ScheduleStatusScheduled,
	models.ScheduleStatusOverdue,
}

// Lifecycle enforces the schedule state machine and runs the overdue sweep.
type Lifecycle struct {
	schedules db.ScheduleCollection
	now       func() time.Time
}

// NewLifecycle creates a lifecycle manager.
func NewLifecycle(schedules db.ScheduleCollection) *Lifecycle {
	return &Lifecycle{schedules: schedules, now: time.Now}
}

// Get fetches a schedule by id.
func (l *Lifecycle) Get(ctx context.Context, id string) (*models.PMSchedule, error) {
	schedule, err := l.schedules.FindScheduleByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, ErrScheduleNotFound
	}
	return schedule, nil
}

// List returns schedules matching the filter.
func (l *Lifecycle) List(ctx context.Context, filter models.ScheduleFilter) ([]models.PMSchedule, error) {
	return l.schedules.FindSchedules(ctx, filter)
}

// Cancel moves a schedule to cancelled. Only scheduled and overdue schedules
// may be cancelled; active or terminal ones are refused with their current
// state.
func (l *Lifecycle) Cancel(ctx context.Context, id string) error {
	schedule, err := l.Get(ctx, id)
	if err != nil {
		return err
	}
	err = l.schedules.UpdateScheduleStatus(ctx, schedule.ID, startableStates, models.ScheduleStatusCancelled)
	if errors.Is(err, db.ErrNoMatch) {
		return l.stateViolation(ctx, id, "cancel")
	}
	return err
}

// Delete physically removes a schedule. Allowed only while it is scheduled or
// overdue; once work started or finished the record is permanent.
func (l *Lifecycle) Delete(ctx context.Context, id string) error {
	schedule, err := l.Get(ctx, id)
	if err != nil {
		return err
	}
	startable := false
	for _, s := range startableStates {
		if schedule.Status == s {
			startable = true
			break
		}
	}
	if !startable {
		return &StateViolationError{Op: "delete", Current: schedule.Status}
	}
	if err := l.schedules.DeleteSchedule(ctx, schedule.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}
	return nil
}

// RunOverdueSweep promotes every schedule still in scheduled status whose
// date has passed to overdue. The conditional update inside the store makes
// the sweep idempotent and safe to interleave with user-driven starts.
func (l *Lifecycle) RunOverdueSweep(ctx context.Context) (int64, error) {
	today := DateOnly(l.now())
	promoted, err := l.schedules.PromoteOverdue(ctx, today)
	if err != nil {
		return 0, err
	}
	if promoted > 0 {
		log.WithField("promoted", promoted).Info("Overdue sweep promoted schedules")
	}
	return promoted, nil
}

// stateViolation re-reads the schedule to report the state that blocked the
// transition.
func (l *Lifecycle) stateViolation(ctx context.Context, id string, op string) error {
	schedule, err := l.Get(ctx, id)
	if err != nil {
		return err
	}
	return &StateViolationError{Op: op, Current: schedule.Status}
}
