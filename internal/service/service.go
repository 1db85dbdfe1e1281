package service

import (
	"context"
	"errors"
	"time"

	"taskdeck/internal/model"

	"github.com/google/uuid"
)

var (
	ErrStatsNotFound        = errors.New("stats snapshot not found")
	ErrAchievementNotFound  = errors.New("achievement not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
)

type Service struct {
	*UserService
	*TaskService
	*AchievementService
}

func NewService(userService *UserService, taskService *TaskService, achievementService *AchievementService) *Service {
	return &Service{
		UserService:        userService,
		TaskService:        taskService,
		AchievementService: achievementService,
	}
}

type AchievementServiceI interface {
	CheckAndUnlock(ctx context.Context, userID int64) (*model.UnlockResult, error)
	GetCatalog(ctx context.Context, filter model.CatalogFilter) ([]*model.Achievement, error)
	GetUserAchievements(ctx context.Context, userID int64, filter model.UserAchievementFilter) ([]*model.Achievement, []*model.UserAchievement, error)
	SetDisplayed(ctx context.Context, userID, achievementID int64, displayed bool) error
}

type AchievementRepository interface {
	GetStats(ctx context.Context, userID int64) (*model.StatsSnapshot, error)
	ListAchievements(ctx context.Context, filter model.CatalogFilter) ([]*model.Achievement, error)
	ListUnlockedIDs(ctx context.Context, userID int64) ([]int64, error)
	InsertUnlock(ctx context.Context, userID, achievementID int64, unlockedAt time.Time) error
	UpdateUnlockDisplayed(ctx context.Context, userID, achievementID int64, displayed bool) error
	ListUserAchievements(ctx context.Context, userID int64, filter model.UserAchievementFilter) ([]*model.Achievement, []*model.UserAchievement, error)
	UpdateUserPoints(ctx context.Context, userID int64, points int) error
}

// UnlockPublisher receives newly granted achievements for realtime delivery.
type UnlockPublisher interface {
	PublishUnlocks(userID int64, achievements []*model.Achievement)
}

type UserServiceI interface {
	Register(ctx context.Context, username, password, displayName string, telegramChatID *int64) (*model.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

type TaskServiceI interface {
	Create(ctx context.Context, userID int64, title, notes string) (*model.Task, error)
	List(ctx context.Context, userID int64) ([]*model.Task, error)
	Complete(ctx context.Context, userID int64, taskID uuid.UUID) error
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.Task) error
	ListTasks(ctx context.Context, userID int64) ([]*model.Task, error)
	CompleteTask(ctx context.Context, userID int64, taskID uuid.UUID, completedAt time.Time) error
}
