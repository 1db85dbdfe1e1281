package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/repository"

	"github.com/google/uuid"
)

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

func (s *TaskService) Create(ctx context.Context, userID int64, title, notes string) (*model.Task, error) {
	if title == "" {
		return nil, fmt.Errorf("task title is required")
	}

	task := &model.Task{
		TaskID:    uuid.New(),
		UserID:    userID,
		Title:     title,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

func (s *TaskService) List(ctx context.Context, userID int64) ([]*model.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Complete marks the task done and rolls the owner's stats forward. The
// caller decides when to run an achievement check afterwards.
func (s *TaskService) Complete(ctx context.Context, userID int64, taskID uuid.UUID) error {
	err := s.repo.CompleteTask(ctx, userID, taskID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrTaskNotFound
		case errors.Is(err, repository.ErrTaskAlreadyCompleted):
			return ErrTaskAlreadyCompleted
		default:
			return fmt.Errorf("failed to complete task: %w", err)
		}
	}
	return nil
}
