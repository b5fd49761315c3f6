package pm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/facility-maintenance/internal/db"
	"github.com/ukydev/facility-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type trackerFixture struct {
	store      *db.Store
	tracker    *Tracker
	template   *models.PMTemplate
	scheduleID primitive.ObjectID
	technician string
}

func newTrackerFixture(t *testing.T, scheduleStatus models.ScheduleStatus) *trackerFixture {
	t.Helper()
	store := db.NewMemoryStore()
	ctx := context.Background()

	registry := NewRegistry(store.Templates, store.Schedules)
	template, err := registry.Create(ctx, validTemplate())
	assert.NoError(t, err)

	equipID := seedEquipment(t, store, "AHU 1")

	scheduleID, err := store.Schedules.InsertSchedule(ctx, models.PMSchedule{
		TemplateID:    template.ID,
		EquipmentID:   equipID,
		ScheduledDate: date(2024, 6, 1),
		Status:        scheduleStatus,
		Priority:      models.PriorityMedium,
	})
	assert.NoError(t, err)

	technician := models.User{
		Username: "tech1",
		Email:    "tech1@example.com",
		Role:     models.RoleTechnician,
		IsActive: true,
	}
	assert.NoError(t, store.Users.InsertUser(ctx, technician))
	stored, err := store.Users.FindUserByUsername(ctx, "tech1")
	assert.NoError(t, err)

	return &trackerFixture{
		store:      store,
		tracker:    NewTracker(store.Schedules, store.Executions, store.Templates, store.Users),
		template:   template,
		scheduleID: scheduleID,
		technician: stored.ID.Hex(),
	}
}

func (f *trackerFixture) checkedResults(includeRequired bool) []models.ChecklistResult {
	var results []models.ChecklistResult
	for _, item := range f.template.Checklist {
		checked := includeRequired || !item.IsRequired
		results = append(results, models.ChecklistResult{ItemID: item.ItemID, IsChecked: checked})
	}
	return results
}

func TestTracker_Start(t *testing.T) {
	f := newTrackerFixture(t, models.ScheduleStatusScheduled)
	ctx := context.Background()

	execution, err := f.tracker.Start(ctx, f.scheduleID.Hex(), f.technician)
	assert.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusInProgress, execution.Status)
	assert.Equal(t, f.technician, execution.TechnicianID)
	// One prefilled result slot per checklist item, none checked yet.
	assert.Len(t, execution.ChecklistResults, len(f.template.Checklist))
	for _, r := range execution.ChecklistResults {
		assert.False(t, r.IsChecked)
	}

	schedule, err := f.store.Schedules.FindScheduleByID(ctx, f.scheduleID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusInProgress, schedule.Status)
	assert.Equal(t, f.technician, schedule.TechnicianID)
}

func TestTracker_StartFromOverdue(t *testing.T) {
	f := newTrackerFixture(t, models.ScheduleStatusOverdue)

	execution, err := f.tracker.Start(context.Background(), f.scheduleID.Hex(), f.technician)
	assert.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusInProgress, execution.Status)
}

func TestTracker_StartRefusedStates(t *testing.T) {
	for _, status := range []models.ScheduleStatus{
		models.ScheduleStatusInProgress,
		models.ScheduleStatusCompleted,
		models.ScheduleStatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newTrackerFixture(t, status)
			_, err := f.tracker.Start(context.Background(), f.scheduleID.Hex(), f.technician)
			assert.True(t, IsStateViolation(err), "expected state violation, got %v", err)
		})
	}
}

func TestTracker_StartTwice(t *testing.T) {
	f := newTrackerFixture(t, models.ScheduleStatusScheduled)
	ctx := context.Background()

	_, err := f.tracker.Start(ctx, f.scheduleID.Hex(), f.technician)
	assert.NoError(t, err)

	_, err = f.tracker.Start(ctx, f.scheduleID.Hex(), f.technician)
	assert.Error(t, err)
}

func TestTracker_StartUnknownTechnician(t *testing.T) {
	f := newTrackerFixture(t, models.ScheduleStatusScheduled)

	_, err := f.tracker.Start(context.Background(), f.scheduleID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrTechnicianNotFound)

	// A refused start leaves the schedule untouched.
	schedule, err := f.store.Schedules.FindScheduleByID(context.Background(), f.scheduleID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusScheduled, schedule.Status)
}

func TestTracker_StickyTechnician(t *testing.T) {
	f := newTrackerFixture(t, models.ScheduleStatusScheduled)
	ctx := context.Background()

	assert.NoError(t, f.store.Schedules.AssignTechnician(ctx, f.scheduleID, f.technician))

	other := models.User{Username: "tech2", Email: "tech2@example.com", Role: models.RoleTechnician, IsActive: true}
	assert.NoError(t, f.store.Users.InsertUser(ctx, other))
	stored, err := f.store.Users.FindUserByUsername(ctx, "tech2")
	assert.NoError(t, err)

	execution, err := f.tracker.Start(ctx, f.scheduleID.Hex(), stored.ID.Hex())
	assert.NoError(t, err)
	// The pre-assigned technician wins over the caller.
	assert.Equal(t, f.technician, execution.TechnicianID)
}

func TestTracker_Update(t *testing.T) {
	f := newTrackerFixture(t, models.ScheduleStatusScheduled)
	ctx := context.Background()

	execution, err := f.tracker.Start(ctx, f.scheduleID.Hex(), f.technician)
	assert.NoError(t, err)

	findings := "Worn belt on supply fan"
	severity := models.SeverityMinor
	updated, err := f.tracker.Update(ctx, execution.ID.Hex(), ExecutionUpdate{
		ChecklistResults: f.checkedResults(false),
		Findings:         &findings,
		FindingsSeverity: &severity,
		UsedParts:        []models.UsedPart{{Code: "FLT-1", Name: "Filter", Quantity: 2}},
	})
	assert.NoError(t, err)
	assert.Equal(t, findings, updated.Findings)
	assert.Equal(t, severity, updated.FindingsSeverity)
	assert.Len(t, updated.UsedParts, 1)
	assert.Equal(t, models.ExecutionStatusInProgress, updated.Status)
}

func TestTracker_UpdateValidation(t *testing.T) {
	f := newTrackerFixture(t, models.ScheduleStatusScheduled)
	ctx := context.Background()

	execution, err := f.tracker.Start(ctx, f.scheduleID.Hex(), f.technician)
	assert.NoError(t, err)

	badRating := 11
	_, err = f.tracker.Update(ctx, execution.ID.Hex(), ExecutionUpdate{Rating: &badRating})
	assert.True(t, IsValidation(err))

	badSeverity := models.FindingsSeverity("catastrophic")
	_, err = f.tracker.Update(ctx, execution.ID.Hex(), ExecutionUpdate{FindingsSeverity: &badSeverity})
	assert.True(t, IsValidation(err))
}

func TestTracker_CompleteRequiresChecklist(t *testing.T) {
	f := newTrackerFixture(t, models.ScheduleStatusScheduled)
	ctx := context.Background()

	execution, err := f.tracker.Start(ctx, f.scheduleID.Hex(), f.technician)
	assert.NoError(t, err)

	// Only the optional items are checked; the required one is missing.
	_, err = f.tracker.Complete(ctx, execution.ID.Hex(), ExecutionUpdate{
		ChecklistResults: f.checkedResults(false),
	})
	var incomplete *RequiredItemsIncompleteError
	assert.ErrorAs(t, err, &incomplete)
	assert.NotEmpty(t, incomplete.MissingItemIDs)

	// The execution stays open and the schedule stays in progress.
	stored, err := f.store.Executions.FindExecutionByID(ctx, execution.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusInProgress, stored.Status)

	schedule, err := f.store.Schedules.FindScheduleByID(ctx, f.scheduleID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusInProgress, schedule.Status)
}

func TestTracker_Complete(t *testing.T) {
	f := newTrackerFixture(t, models.ScheduleStatusScheduled)
	ctx := context.Background()

	start := date(2024, 6, 1).Add(9 * time.Hour)
	f.tracker.now = func() time.Time { return start }

	execution, err := f.tracker.Start(ctx, f.scheduleID.Hex(), f.technician)
	assert.NoError(t, err)

	f.tracker.now = func() time.Time { return start.Add(95 * time.Minute) }

	rating := 8
	completed, err := f.tracker.Complete(ctx, execution.ID.Hex(), ExecutionUpdate{
		ChecklistResults: f.checkedResults(true),
		Rating:           &rating,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	assert.Equal(t, 95, completed.DurationMinutes())

	schedule, err := f.store.Schedules.FindScheduleByID(ctx, f.scheduleID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusCompleted, schedule.Status)

	// Completing again is refused.
	_, err = f.tracker.Complete(ctx, execution.ID.Hex(), ExecutionUpdate{})
	assert.True(t, IsStateViolation(err))

	// So are further progress saves.
	_, err = f.tracker.Update(ctx, execution.ID.Hex(), ExecutionUpdate{})
	assert.True(t, IsStateViolation(err))
}

func TestTracker_GetByScheduleID(t *testing.T) {
	f := newTrackerFixture(t, models.ScheduleStatusScheduled)
	ctx := context.Background()

	_, err := f.tracker.GetByScheduleID(ctx, f.scheduleID.Hex())
	assert.ErrorIs(t, err, ErrExecutionNotFound)

	started, err := f.tracker.Start(ctx, f.scheduleID.Hex(), f.technician)
	assert.NoError(t, err)

	found, err := f.tracker.GetByScheduleID(ctx, f.scheduleID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, started.ID, found.ID)
}
