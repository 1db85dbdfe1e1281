package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskdeck/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type userStats struct {
	UserID                 int64      `db:"user_id"`
	TasksCompletedAllTime  int        `db:"tasks_completed_all_time"`
	CurrentStreakDays      int        `db:"current_streak_days"`
	TasksCompletedToday    int        `db:"tasks_completed_today"`
	TasksCompletedThisWeek int        `db:"tasks_completed_this_week"`
	LastActiveDay          *time.Time `db:"last_active_day"`
	WeekStart              *time.Time `db:"week_start"`
}

func (s *userStats) toModel() *model.StatsSnapshot {
	return &model.StatsSnapshot{
		UserID:                 s.UserID,
		TasksCompletedAllTime:  s.TasksCompletedAllTime,
		CurrentStreakDays:      s.CurrentStreakDays,
		TasksCompletedToday:    s.TasksCompletedToday,
		TasksCompletedThisWeek: s.TasksCompletedThisWeek,
		LastActiveDay:          s.LastActiveDay,
		WeekStart:              s.WeekStart,
	}
}

func (r *Repository) GetStats(ctx context.Context, userID int64) (*model.StatsSnapshot, error) {
	query, args, err := squirrel.Select(
		"user_id", "tasks_completed_all_time", "current_streak_days",
		"tasks_completed_today", "tasks_completed_this_week",
		"last_active_day", "week_start",
	).
		From("user_stats").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stats query: %w", err)
	}

	var stats userStats
	err = r.db.GetContext(ctx, &stats, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats.toModel(), nil
}

func updateStatsTx(ctx context.Context, tx *sqlx.Tx, stats *model.StatsSnapshot) error {
	query, args, err := squirrel.
		Update("user_stats").
		SetMap(map[string]interface{}{
			"tasks_completed_all_time":  stats.TasksCompletedAllTime,
			"current_streak_days":       stats.CurrentStreakDays,
			"tasks_completed_today":     stats.TasksCompletedToday,
			"tasks_completed_this_week": stats.TasksCompletedThisWeek,
			"last_active_day":           stats.LastActiveDay,
			"week_start":                stats.WeekStart,
		}).
		Where(squirrel.Eq{"user_id": stats.UserID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build stats update query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update stats: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func getStatsForUpdateTx(ctx context.Context, tx *sqlx.Tx, userID int64) (*model.StatsSnapshot, error) {
	query, args, err := squirrel.Select(
		"user_id", "tasks_completed_all_time", "current_streak_days",
		"tasks_completed_today", "tasks_completed_this_week",
		"last_active_day", "week_start",
	).
		From("user_stats").
		Where(squirrel.Eq{"user_id": userID}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stats lock query: %w", err)
	}

	var stats userStats
	err = tx.GetContext(ctx, &stats, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock stats row: %w", err)
	}

	return stats.toModel(), nil
}
