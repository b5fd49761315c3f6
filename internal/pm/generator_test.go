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

func seedTemplate(t *testing.T, store *db.Store, intervalType models.IntervalType, intervalValue int) *models.PMTemplate {
	t.Helper()
	template := validTemplate()
	template.IntervalType = intervalType
	template.IntervalValue = intervalValue
	registry := NewRegistry(store.Templates, store.Schedules)
	created, err := registry.Create(context.Background(), template)
	assert.NoError(t, err)
	return created
}

func seedEquipment(t *testing.T, store *db.Store, name string) primitive.ObjectID {
	t.Helper()
	id, err := store.Equipment.InsertEquipment(context.Background(), models.Equipment{
		Name:            name,
		EquipmentTypeID: "hvac",
		Status:          "active",
	})
	assert.NoError(t, err)
	return id
}

func TestGenerator_MonthlySixMonths(t *testing.T) {
	store := db.NewMemoryStore()
	generator := NewGenerator(store.Templates, store.Schedules, store.Equipment)
	template := seedTemplate(t, store, models.IntervalMonthly, 1)
	equipID := seedEquipment(t, store, "AHU 1")

	result, err := generator.Generate(context.Background(), GenerateRequest{
		TemplateID:   template.ID.Hex(),
		EquipmentIDs: []string{equipID.Hex()},
		StartDate:    date(2024, 6, 1),
		MonthsAhead:  6,
	})
	assert.NoError(t, err)
	assert.Len(t, result.Created, 6)
	assert.Equal(t, 0, result.SkippedExisting)

	wantDates := []time.Time{
		date(2024, 6, 1), date(2024, 7, 1), date(2024, 8, 1),
		date(2024, 9, 1), date(2024, 10, 1), date(2024, 11, 1),
	}
	for i, s := range result.Created {
		assert.True(t, s.ScheduledDate.Equal(wantDates[i]), "schedule %d at %v, want %v", i, s.ScheduledDate, wantDates[i])
		assert.Equal(t, models.ScheduleStatusScheduled, s.Status)
		assert.Equal(t, models.PriorityMedium, s.Priority)
	}
}

func TestGenerator_Idempotent(t *testing.T) {
	store := db.NewMemoryStore()
	generator := NewGenerator(store.Templates, store.Schedules, store.Equipment)
	template := seedTemplate(t, store, models.IntervalMonthly, 1)
	equipID := seedEquipment(t, store, "AHU 1")

	req := GenerateRequest{
		TemplateID:   template.ID.Hex(),
		EquipmentIDs: []string{equipID.Hex()},
		StartDate:    date(2024, 6, 1),
		MonthsAhead:  3,
	}

	first, err := generator.Generate(context.Background(), req)
	assert.NoError(t, err)
	assert.Len(t, first.Created, 3)

	second, err := generator.Generate(context.Background(), req)
	assert.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Equal(t, 3, second.SkippedExisting)
}

func TestGenerator_MonthEndClamping(t *testing.T) {
	store := db.NewMemoryStore()
	generator := NewGenerator(store.Templates, store.Schedules, store.Equipment)
	template := seedTemplate(t, store, models.IntervalMonthly, 1)
	equipID := seedEquipment(t, store, "AHU 1")

	result, err := generator.Generate(context.Background(), GenerateRequest{
		TemplateID:   template.ID.Hex(),
		EquipmentIDs: []string{equipID.Hex()},
		StartDate:    date(2024, 1, 31),
		MonthsAhead:  3,
	})
	assert.NoError(t, err)
	// Jan 31 clamps to Feb 29 in a leap year, and the clamped day sticks for
	// the following steps. The window ends Apr 30, so Apr 29 still fits.
	assert.Len(t, result.Created, 4)
	assert.True(t, result.Created[1].ScheduledDate.Equal(date(2024, 2, 29)))
	assert.True(t, result.Created[2].ScheduledDate.Equal(date(2024, 3, 29)))
	assert.True(t, result.Created[3].ScheduledDate.Equal(date(2024, 4, 29)))
}

func TestGenerator_MultipleEquipment(t *testing.T) {
	store := db.NewMemoryStore()
	generator := NewGenerator(store.Templates, store.Schedules, store.Equipment)
	template := seedTemplate(t, store, models.IntervalWeekly, 2)
	a := seedEquipment(t, store, "AHU 1")
	b := seedEquipment(t, store, "AHU 2")

	result, err := generator.Generate(context.Background(), GenerateRequest{
		TemplateID:   template.ID.Hex(),
		EquipmentIDs: []string{a.Hex(), b.Hex()},
		StartDate:    date(2024, 6, 1),
		MonthsAhead:  1,
		Priority:     models.PriorityHigh,
	})
	assert.NoError(t, err)
	// 2024-06-01, 06-15 and 06-29 fall inside [06-01, 07-01) per unit.
	assert.Len(t, result.Created, 6)
	for _, s := range result.Created {
		assert.Equal(t, models.PriorityHigh, s.Priority)
	}
}

func TestGenerator_SkipsUnknownEquipment(t *testing.T) {
	store := db.NewMemoryStore()
	generator := NewGenerator(store.Templates, store.Schedules, store.Equipment)
	template := seedTemplate(t, store, models.IntervalMonthly, 1)
	known := seedEquipment(t, store, "AHU 1")
	unknown := primitive.NewObjectID()

	result, err := generator.Generate(context.Background(), GenerateRequest{
		TemplateID:   template.ID.Hex(),
		EquipmentIDs: []string{unknown.Hex(), known.Hex()},
		StartDate:    date(2024, 6, 1),
		MonthsAhead:  1,
	})
	assert.NoError(t, err)
	assert.Len(t, result.Created, 1)
	assert.Len(t, result.Skipped, 1)
	assert.Equal(t, unknown.Hex(), result.Skipped[0].EquipmentID)
}

func TestGenerator_Validation(t *testing.T) {
	store := db.NewMemoryStore()
	generator := NewGenerator(store.Templates, store.Schedules, store.Equipment)
	template := seedTemplate(t, store, models.IntervalMonthly, 1)
	equipID := seedEquipment(t, store, "AHU 1")

	_, err := generator.Generate(context.Background(), GenerateRequest{
		TemplateID:   primitive.NewObjectID().Hex(),
		EquipmentIDs: []string{equipID.Hex()},
		StartDate:    date(2024, 6, 1),
		MonthsAhead:  6,
	})
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = generator.Generate(context.Background(), GenerateRequest{
		TemplateID:   template.ID.Hex(),
		EquipmentIDs: []string{equipID.Hex()},
		StartDate:    date(2024, 6, 1),
		MonthsAhead:  0,
	})
	assert.True(t, IsValidation(err))

	_, err = generator.Generate(context.Background(), GenerateRequest{
		TemplateID:   template.ID.Hex(),
		EquipmentIDs: nil,
		StartDate:    date(2024, 6, 1),
		MonthsAhead:  6,
	})
	assert.True(t, IsValidation(err))
}
