package model

import "fmt"

type CriterionKind string

const (
	CriterionTasksCompleted CriterionKind = "tasks_completed"
	CriterionStreak         CriterionKind = "streak"
	CriterionTasksToday     CriterionKind = "tasks_today"
	CriterionTasksThisWeek  CriterionKind = "tasks_week"
)

// Criterion is the unlock rule of a single achievement. The set of kinds is
// closed; rows carrying a kind outside it parse with an error and are skipped
// by the unlock pass.
type Criterion struct {
	Kind      CriterionKind
	Threshold int
}

func ParseCriterion(kind string, threshold int) (Criterion, error) {
	if threshold < 0 {
		return Criterion{}, fmt.Errorf("negative criterion threshold: %d", threshold)
	}

	switch CriterionKind(kind) {
	case CriterionTasksCompleted, CriterionStreak, CriterionTasksToday, CriterionTasksThisWeek:
		return Criterion{Kind: CriterionKind(kind), Threshold: threshold}, nil
	default:
		return Criterion{}, fmt.Errorf("unknown criterion kind: %q", kind)
	}
}

// Met reports whether the snapshot satisfies the criterion. Pure: same
// snapshot and criterion always give the same answer. An unrecognized kind
// never satisfies.
func (c Criterion) Met(s *StatsSnapshot) bool {
	switch c.Kind {
	case CriterionTasksCompleted:
		return s.TasksCompletedAllTime >= c.Threshold
	case CriterionStreak:
		return s.CurrentStreakDays >= c.Threshold
	case CriterionTasksToday:
		return s.TasksCompletedToday >= c.Threshold
	case CriterionTasksThisWeek:
		return s.TasksCompletedThisWeek >= c.Threshold
	default:
		return false
	}
}
