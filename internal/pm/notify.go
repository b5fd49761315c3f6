package pm

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/facility-maintenance/internal/db"
	"github.com/ukydev/facility-maintenance/internal/models"
)

// Event is one reminder the evaluator decided to emit.
type Event struct {
	Schedule  models.PMSchedule            `json:"schedule"`
	Threshold models.NotificationThreshold `json:"threshold"`
	DaysAhead int                          `json:"days_ahead"`
}

// Notifier delivers reminder events. Delivery is best-effort and
// fire-and-forget; the evaluator's own at-most-once guarantee lives in the
// schedule flags, not in the transport.
type Notifier interface {
	Deliver(event Event)
}

// thresholdOffsets maps each reminder threshold to its day offset.
var thresholdOffsets = []struct {
	Threshold models.NotificationThreshold
	Days      int
}{
	{models.ThresholdThreeDay, 3},
	{models.ThresholdOneDay, 1},
	{models.ThresholdSameDay, 0},
}

// Evaluator scans scheduled work for day-offset reminder thresholds and emits
// each reminder at most once.
type Evaluator struct {
	schedules db.ScheduleCollection
	notifier  Notifier
	now       func() time.Time
}

// NewEvaluator creates a notification evaluator.
func NewEvaluator(schedules db.ScheduleCollection, notifier Notifier) *Evaluator {
	return &Evaluator{schedules: schedules, notifier: notifier, now: time.Now}
}

// SweepResult reports what one notification sweep emitted.
type SweepResult struct {
	NotifiedCount int     `json:"notified_count"`
	Notified      []Event `json:"notified"`
}

// RunSweep checks every scheduled occurrence against the three reminder
// thresholds. The flag flip in the store is conditional, so a schedule
// already flagged for a threshold is never emitted again, no matter how often
// or how concurrently the sweep runs.
func (e *Evaluator) RunSweep(ctx context.Context) (*SweepResult, error) {
	today := DateOnly(e.now())
	result := &SweepResult{}

	for _, offset := range thresholdOffsets {
		target := today.AddDate(0, 0, offset.Days)
		schedules, err := e.schedules.FindSchedules(ctx, models.ScheduleFilter{
			Status:   models.ScheduleStatusScheduled,
			DateFrom: &target,
			DateTo:   &target,
		})
		if err != nil {
			return nil, err
		}
		for _, schedule := range schedules {
			if schedule.Sent(offset.Threshold) {
				continue
			}
			err := e.schedules.MarkNotified(ctx, schedule.ID, offset.Threshold)
			if errors.Is(err, db.ErrNoMatch) {
				// Lost the race to another sweep; the reminder went out once.
				continue
			}
			if err != nil {
				return nil, err
			}
			event := Event{Schedule: schedule, Threshold: offset.Threshold, DaysAhead: offset.Days}
			if e.notifier != nil {
				e.notifier.Deliver(event)
			}
			result.Notified = append(result.Notified, event)
			result.NotifiedCount++
		}
	}

	if result.NotifiedCount > 0 {
		log.WithField("notified", result.NotifiedCount).Info("Notification sweep emitted reminders")
	}
	return result, nil
}
