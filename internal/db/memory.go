package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ukydev/facility-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMemoryStore builds a Store backed entirely by process memory. It serves
// both as the mock backend (STORAGE_BACKEND=memory) and as the test double.
// Every collection guards its map with a mutex, so the conditional-update
// contract of ScheduleCollection holds under concurrent sweeps and user calls.
func NewMemoryStore() *Store {
	return &Store{
		Templates:  &MemoryTemplateCollection{templates: make(map[primitive.ObjectID]models.PMTemplate)},
		Schedules:  &MemoryScheduleCollection{schedules: make(map[primitive.ObjectID]models.PMSchedule)},
		Executions: &MemoryExecutionCollection{executions: make(map[primitive.ObjectID]models.PMExecution)},
		Equipment:  &MemoryEquipmentCollection{equipment: make(map[primitive.ObjectID]models.Equipment)},
		Users:      &MemoryUserCollection{users: make(map[primitive.ObjectID]models.User)},
	}
}

// MemoryTemplateCollection implements TemplateCollection in memory.
type MemoryTemplateCollection struct {
	mu        sync.RWMutex
	templates map[primitive.ObjectID]models.PMTemplate
}

func (c *MemoryTemplateCollection) InsertTemplate(ctx context.Context, template models.PMTemplate) (primitive.ObjectID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if template.ID.IsZero() {
		template.ID = primitive.NewObjectID()
	}
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()
	c.templates[template.ID] = template
	return template.ID, nil
}

func (c *MemoryTemplateCollection) FindTemplateByID(ctx context.Context, id string) (*models.PMTemplate, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid template ID: %w", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	template, ok := c.templates[objectID]
	if !ok {
		return nil, ErrNotFound
	}
	return &template, nil
}

func (c *MemoryTemplateCollection) FindTemplates(ctx context.Context, activeOnly bool) ([]models.PMTemplate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var templates []models.PMTemplate
	for _, t := range c.templates {
		if activeOnly && !t.IsActive {
			continue
		}
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].CreatedAt.Before(templates[j].CreatedAt)
	})
	return templates, nil
}

func (c *MemoryTemplateCollection) UpdateTemplate(ctx context.Context, id string, template models.PMTemplate) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid template ID: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.templates[objectID]; !ok {
		return ErrNotFound
	}
	template.ID = objectID
	template.UpdatedAt = time.Now()
	c.templates[objectID] = template
	return nil
}

func (c *MemoryTemplateCollection) DeleteTemplate(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid template ID: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.templates[objectID]; !ok {
		return ErrNotFound
	}
	delete(c.templates, objectID)
	return nil
}

// MemoryScheduleCollection implements ScheduleCollection in memory.
type MemoryScheduleCollection struct {
	mu        sync.RWMutex
	schedules map[primitive.ObjectID]models.PMSchedule
}

func (c *MemoryScheduleCollection) InsertSchedule(ctx context.Context, schedule models.PMSchedule) (primitive.ObjectID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if schedule.ID.IsZero() {
		schedule.ID = primitive.NewObjectID()
	}
	schedule.CreatedAt = time.Now()
	schedule.UpdatedAt = time.Now()
	c.schedules[schedule.ID] = schedule
	return schedule.ID, nil
}

func (c *MemoryScheduleCollection) FindScheduleByID(ctx context.Context, id string) (*models.PMSchedule, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule ID: %w", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	schedule, ok := c.schedules[objectID]
	if !ok {
		return nil, ErrNotFound
	}
	return &schedule, nil
}

func (c *MemoryScheduleCollection) FindSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.PMSchedule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var schedules []models.PMSchedule
	for _, s := range c.schedules {
		if matchesFilter(s, filter) {
			schedules = append(schedules, s)
		}
	}
	sort.Slice(schedules, func(i, j int) bool {
		return schedules[i].ScheduledDate.Before(schedules[j].ScheduledDate)
	})
	return schedules, nil
}

func matchesFilter(s models.PMSchedule, filter models.ScheduleFilter) bool {
	if filter.EquipmentID != nil && s.EquipmentID != *filter.EquipmentID {
		return false
	}
	if len(filter.EquipmentIDs) > 0 {
		found := false
		for _, id := range filter.EquipmentIDs {
			if s.EquipmentID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.TemplateID != nil && s.TemplateID != *filter.TemplateID {
		return false
	}
	if filter.TechnicianID != "" && s.TechnicianID != filter.TechnicianID {
		return false
	}
	if filter.Status != "" && s.Status != filter.Status {
		return false
	}
	if filter.Priority != "" && s.Priority != filter.Priority {
		return false
	}
	if filter.DateFrom != nil && s.ScheduledDate.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && s.ScheduledDate.After(*filter.DateTo) {
		return false
	}
	return true
}

func (c *MemoryScheduleCollection) ScheduleExists(ctx context.Context, templateID, equipmentID primitive.ObjectID, date time.Time) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.schedules {
		if s.TemplateID == templateID && s.EquipmentID == equipmentID && s.ScheduledDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (c *MemoryScheduleCollection) CountByTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var count int64
	for _, s := range c.schedules {
		if s.TemplateID == templateID {
			count++
		}
	}
	return count, nil
}

func (c *MemoryScheduleCollection) UpdateScheduleStatus(ctx context.Context, id primitive.ObjectID, from []models.ScheduleStatus, to models.ScheduleStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	schedule, ok := c.schedules[id]
	if !ok {
		return ErrNoMatch
	}
	if len(from) > 0 {
		matched := false
		for _, f := range from {
			if schedule.Status == f {
				matched = true
				break
			}
		}
		if !matched {
			return ErrNoMatch
		}
	}
	schedule.Status = to
	schedule.UpdatedAt = time.Now()
	c.schedules[id] = schedule
	return nil
}

func (c *MemoryScheduleCollection) AssignTechnician(ctx context.Context, id primitive.ObjectID, technicianID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	schedule, ok := c.schedules[id]
	if !ok {
		return ErrNotFound
	}
	schedule.TechnicianID = technicianID
	schedule.UpdatedAt = time.Now()
	c.schedules[id] = schedule
	return nil
}

func (c *MemoryScheduleCollection) MarkNotified(ctx context.Context, id primitive.ObjectID, threshold models.NotificationThreshold) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	schedule, ok := c.schedules[id]
	if !ok {
		return ErrNoMatch
	}
	if schedule.Sent(threshold) {
		return ErrNoMatch
	}
	switch threshold {
	case models.ThresholdThreeDay:
		schedule.Sent3Days = true
	case models.ThresholdOneDay:
		schedule.Sent1Day = true
	case models.ThresholdSameDay:
		schedule.SentToday = true
	default:
		return fmt.Errorf("unknown notification threshold: %s", threshold)
	}
	schedule.UpdatedAt = time.Now()
	c.schedules[id] = schedule
	return nil
}

func (c *MemoryScheduleCollection) PromoteOverdue(ctx context.Context, before time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var promoted int64
	for id, s := range c.schedules {
		if s.Status == models.ScheduleStatusScheduled && s.ScheduledDate.Before(before) {
			s.Status = models.ScheduleStatusOverdue
			s.UpdatedAt = time.Now()
			c.schedules[id] = s
			promoted++
		}
	}
	return promoted, nil
}

func (c *MemoryScheduleCollection) DeleteSchedule(ctx context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.schedules[id]; !ok {
		return ErrNotFound
	}
	delete(c.schedules, id)
	return nil
}

// MemoryExecutionCollection implements ExecutionCollection in memory.
type MemoryExecutionCollection struct {
	mu         sync.RWMutex
	executions map[primitive.ObjectID]models.PMExecution
}

func (c *MemoryExecutionCollection) InsertExecution(ctx context.Context, execution models.PMExecution) (primitive.ObjectID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if execution.ID.IsZero() {
		execution.ID = primitive.NewObjectID()
	}
	execution.CreatedAt = time.Now()
	execution.UpdatedAt = time.Now()
	c.executions[execution.ID] = execution
	return execution.ID, nil
}

func (c *MemoryExecutionCollection) FindExecutionByID(ctx context.Context, id string) (*models.PMExecution, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid execution ID: %w", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	execution, ok := c.executions[objectID]
	if !ok {
		return nil, ErrNotFound
	}
	return &execution, nil
}

func (c *MemoryExecutionCollection) FindExecutionByScheduleID(ctx context.Context, scheduleID primitive.ObjectID) (*models.PMExecution, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.executions {
		if e.ScheduleID == scheduleID {
			execution := e
			return &execution, nil
		}
	}
	return nil, ErrNotFound
}

func (c *MemoryExecutionCollection) UpdateExecution(ctx context.Context, id string, execution models.PMExecution) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid execution ID: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.executions[objectID]; !ok {
		return ErrNotFound
	}
	execution.ID = objectID
	execution.UpdatedAt = time.Now()
	c.executions[objectID] = execution
	return nil
}

// MemoryEquipmentCollection implements EquipmentCollection in memory.
type MemoryEquipmentCollection struct {
	mu        sync.RWMutex
	equipment map[primitive.ObjectID]models.Equipment
}

func (c *MemoryEquipmentCollection) InsertEquipment(ctx context.Context, equipment models.Equipment) (primitive.ObjectID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if equipment.ID.IsZero() {
		equipment.ID = primitive.NewObjectID()
	}
	equipment.CreatedAt = time.Now()
	equipment.UpdatedAt = time.Now()
	c.equipment[equipment.ID] = equipment
	return equipment.ID, nil
}

func (c *MemoryEquipmentCollection) FindEquipmentByID(ctx context.Context, id string) (*models.Equipment, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid equipment ID: %w", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	equipment, ok := c.equipment[objectID]
	if !ok {
		return nil, ErrNotFound
	}
	return &equipment, nil
}

func (c *MemoryEquipmentCollection) FindEquipment(ctx context.Context, equipmentTypeID string) ([]models.Equipment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var equipment []models.Equipment
	for _, e := range c.equipment {
		if equipmentTypeID != "" && e.EquipmentTypeID != equipmentTypeID {
			continue
		}
		equipment = append(equipment, e)
	}
	sort.Slice(equipment, func(i, j int) bool {
		return equipment[i].CreatedAt.Before(equipment[j].CreatedAt)
	})
	return equipment, nil
}

func (c *MemoryEquipmentCollection) UpdateEquipment(ctx context.Context, id string, equipment models.Equipment) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid equipment ID: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.equipment[objectID]; !ok {
		return ErrNotFound
	}
	equipment.ID = objectID
	equipment.UpdatedAt = time.Now()
	c.equipment[objectID] = equipment
	return nil
}

func (c *MemoryEquipmentCollection) DeleteEquipment(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid equipment ID: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.equipment[objectID]; !ok {
		return ErrNotFound
	}
	delete(c.equipment, objectID)
	return nil
}

// MemoryUserCollection implements UserCollection in memory.
type MemoryUserCollection struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func (c *MemoryUserCollection) InsertUser(ctx context.Context, user models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.IsActive = true
	c.users[user.ID] = user
	return nil
}

func (c *MemoryUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	user, ok := c.users[objectID]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (c *MemoryUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, u := range c.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (c *MemoryUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, u := range c.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (c *MemoryUserCollection) UpdateUser(ctx context.Context, id string, user models.User) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[objectID]; !ok {
		return ErrNotFound
	}
	user.ID = objectID
	user.UpdatedAt = time.Now()
	c.users[objectID] = user
	return nil
}

func (c *MemoryUserCollection) DeleteUser(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, objectID)
	return nil
}

func (c *MemoryUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	user, ok := c.users[objectID]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	user.LastLogin = &now
	user.UpdatedAt = now
	c.users[objectID] = user
	return nil
}
