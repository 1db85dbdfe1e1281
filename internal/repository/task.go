package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskdeck/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type task struct {
	TaskID      uuid.UUID  `db:"task_id"`
	UserID      int64      `db:"user_id"`
	Title       string     `db:"title"`
	Notes       string     `db:"notes"`
	Completed   bool       `db:"completed"`
	CreatedAt   time.Time  `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

func (t *task) toModel() *model.Task {
	return &model.Task{
		TaskID:      t.TaskID,
		UserID:      t.UserID,
		Title:       t.Title,
		Notes:       t.Notes,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

func (r *Repository) CreateTask(ctx context.Context, t *model.Task) error {
	query, args, err := squirrel.
		Insert("tasks").
		SetMap(map[string]interface{}{
			"task_id":    t.TaskID,
			"user_id":    t.UserID,
			"title":      t.Title,
			"notes":      t.Notes,
			"completed":  false,
			"created_at": t.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

func (r *Repository) ListTasks(ctx context.Context, userID int64) ([]*model.Task, error) {
	query, args, err := squirrel.Select(
		"task_id", "user_id", "title", "notes", "completed", "created_at", "completed_at",
	).
		From("tasks").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tasks query: %w", err)
	}

	var dbTasks []*task
	err = r.db.SelectContext(ctx, &dbTasks, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*model.Task, len(dbTasks))
	for i, t := range dbTasks {
		tasks[i] = t.toModel()
	}

	return tasks, nil
}

// CompleteTask marks a task done exactly once and rolls the owner's stats
// counters forward in the same transaction. A second completion attempt gets
// ErrTaskAlreadyCompleted.
func (r *Repository) CompleteTask(ctx context.Context, userID int64, taskID uuid.UUID, completedAt time.Time) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		updateQuery, args, err := squirrel.
			Update("tasks").
			Set("completed", true).
			Set("completed_at", completedAt).
			Where(squirrel.Eq{
				"task_id":   taskID,
				"user_id":   userID,
				"completed": false,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build task update query: %w", err)
		}

		result, err := tx.ExecContext(ctx, updateQuery, args...)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}

		if rows == 0 {
			var existing task

			checkQuery, checkArgs, err := squirrel.
				Select("task_id", "user_id", "title", "notes", "completed", "created_at", "completed_at").
				From("tasks").
				Where(squirrel.Eq{
					"task_id": taskID,
					"user_id": userID,
				}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build task check query: %w", err)
			}

			err = tx.GetContext(ctx, &existing, checkQuery, checkArgs...)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrNotFound
				}
				return fmt.Errorf("failed to check task: %w", err)
			}

			return ErrTaskAlreadyCompleted
		}

		stats, err := getStatsForUpdateTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		stats.RecordCompletion(completedAt)

		return updateStatsTx(ctx, tx, stats)
	})
}
