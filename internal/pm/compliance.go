package pm

import (
	"context"
	"math"
	"time"

	"github.com/ukydev/facility-maintenance/internal/db"
	"github.com/ukydev/facility-maintenance/internal/models"
)

// Calculator produces compliance rates and dashboard counters. Read-only: it
// never mutates the schedule store.
type Calculator struct {
	schedules db.ScheduleCollection
	now       func() time.Time
}

// NewCalculator creates a compliance calculator.
func NewCalculator(schedules db.ScheduleCollection) *Calculator {
	return &Calculator{schedules: schedules, now: time.Now}
}

// PeriodStats is the compliance summary of one period.
type PeriodStats struct {
	Period         string `json:"period"` // "2024-06"
	ScheduledCount int    `json:"scheduled_count"`
	CompletedCount int    `json:"completed_count"`
	OverdueCount   int    `json:"overdue_count"`
	CancelledCount int    `json:"cancelled_count"`
	ComplianceRate int    `json:"compliance_rate"`
}

// DashboardStats are the headline counters for the dashboard.
type DashboardStats struct {
	TotalScheduled  int `json:"total_scheduled"` // scheduled + in_progress, all time
	UpcomingWeek    int `json:"upcoming_week"`   // scheduled/in_progress within the next 7 days
	OverdueCount    int `json:"overdue_count"`
	InProgressCount int `json:"in_progress_count"`
	CompletedCount  int `json:"completed_count"`
}

// ComplianceForPeriod aggregates schedules dated inside [from, to].
func (c *Calculator) ComplianceForPeriod(ctx context.Context, from, to time.Time) (*PeriodStats, error) {
	schedules, err := c.schedules.FindSchedules(ctx, models.ScheduleFilter{
		DateFrom: &from,
		DateTo:   &to,
	})
	if err != nil {
		return nil, err
	}
	stats := &PeriodStats{Period: from.Format("2006-01")}
	for _, s := range schedules {
		switch s.Status {
		case models.ScheduleStatusScheduled, models.ScheduleStatusInProgress:
			stats.ScheduledCount++
		case models.ScheduleStatusCompleted:
			stats.CompletedCount++
		case models.ScheduleStatusOverdue:
			stats.OverdueCount++
		case models.ScheduleStatusCancelled:
			stats.CancelledCount++
		}
	}
	stats.ComplianceRate = complianceRate(stats.CompletedCount, stats.OverdueCount)
	return stats, nil
}

// ComplianceStats returns one entry per calendar month, newest first,
// covering the current month and the periodCount-1 months before it.
func (c *Calculator) ComplianceStats(ctx context.Context, periodCount int) ([]PeriodStats, error) {
	if periodCount < 1 {
		return nil, &ValidationError{Field: "period_count", Reason: "must be >= 1"}
	}
	now := c.now().UTC()
	stats := make([]PeriodStats, 0, periodCount)
	for i := 0; i < periodCount; i++ {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)
		period, err := c.ComplianceForPeriod(ctx, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *period)
	}
	return stats, nil
}

// Dashboard computes the headline counters.
func (c *Calculator) Dashboard(ctx context.Context) (*DashboardStats, error) {
	schedules, err := c.schedules.FindSchedules(ctx, models.ScheduleFilter{})
	if err != nil {
		return nil, err
	}
	today := DateOnly(c.now())
	weekEnd := today.AddDate(0, 0, 7)

	stats := &DashboardStats{}
	for _, s := range schedules {
		switch s.Status {
		case models.ScheduleStatusScheduled:
			stats.TotalScheduled++
		case models.ScheduleStatusInProgress:
			stats.TotalScheduled++
			stats.InProgressCount++
		case models.ScheduleStatusOverdue:
			stats.OverdueCount++
		case models.ScheduleStatusCompleted:
			stats.CompletedCount++
		}
		if s.Status == models.ScheduleStatusScheduled || s.Status == models.ScheduleStatusInProgress {
			if !s.ScheduledDate.Before(today) && s.ScheduledDate.Before(weekEnd) {
				stats.UpcomingWeek++
			}
		}
	}
	return stats, nil
}

// complianceRate is completed / (completed + overdue) as a rounded
// percentage. With nothing to judge the rate defaults to a clean 100.
func complianceRate(completed, overdue int) int {
	total := completed + overdue
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
