package model

import "time"

// StatsSnapshot holds the aggregate counters the unlock engine evaluates
// criteria against. The engine only ever reads it; the task-completion path
// is the single writer.
type StatsSnapshot struct {
	UserID                 int64
	TasksCompletedAllTime  int
	CurrentStreakDays      int
	TasksCompletedToday    int
	TasksCompletedThisWeek int
	LastActiveDay          *time.Time
	WeekStart              *time.Time
}

// RecordCompletion rolls the counters forward for one task completed at now.
// Days and weeks are UTC buckets; the streak grows only when the previous
// active day was yesterday.
func (s *StatsSnapshot) RecordCompletion(now time.Time) {
	day := dayOf(now)

	switch {
	case s.LastActiveDay == nil:
		s.TasksCompletedToday = 1
		s.CurrentStreakDays = 1
	case day.Equal(*s.LastActiveDay):
		s.TasksCompletedToday++
	case day.Equal(s.LastActiveDay.AddDate(0, 0, 1)):
		s.TasksCompletedToday = 1
		s.CurrentStreakDays++
	default:
		s.TasksCompletedToday = 1
		s.CurrentStreakDays = 1
	}

	week := startOfWeek(day)
	if s.WeekStart != nil && week.Equal(*s.WeekStart) {
		s.TasksCompletedThisWeek++
	} else {
		s.TasksCompletedThisWeek = 1
		s.WeekStart = &week
	}

	s.TasksCompletedAllTime++
	s.LastActiveDay = &day
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// startOfWeek returns the Monday of the week containing day.
func startOfWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
