package mocks

import (
	"context"
	"time"

	"taskdeck/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAchievementRepository struct {
	mock.Mock
}

func (m *MockAchievementRepository) GetStats(ctx context.Context, userID int64) (*model.StatsSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StatsSnapshot), args.Error(1)
}

func (m *MockAchievementRepository) ListAchievements(ctx context.Context, filter model.CatalogFilter) ([]*model.Achievement, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Achievement), args.Error(1)
}

func (m *MockAchievementRepository) ListUnlockedIDs(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockAchievementRepository) InsertUnlock(ctx context.Context, userID, achievementID int64, unlockedAt time.Time) error {
	args := m.Called(ctx, userID, achievementID, unlockedAt)
	return args.Error(0)
}

func (m *MockAchievementRepository) UpdateUnlockDisplayed(ctx context.Context, userID, achievementID int64, displayed bool) error {
	args := m.Called(ctx, userID, achievementID, displayed)
	return args.Error(0)
}

func (m *MockAchievementRepository) ListUserAchievements(ctx context.Context, userID int64, filter model.UserAchievementFilter) ([]*model.Achievement, []*model.UserAchievement, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*model.Achievement), args.Get(1).([]*model.UserAchievement), args.Error(2)
}

func (m *MockAchievementRepository) UpdateUserPoints(ctx context.Context, userID int64, points int) error {
	args := m.Called(ctx, userID, points)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) ListTasks(ctx context.Context, userID int64) ([]*model.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockTaskRepository) CompleteTask(ctx context.Context, userID int64, taskID uuid.UUID, completedAt time.Time) error {
	args := m.Called(ctx, userID, taskID, completedAt)
	return args.Error(0)
}
