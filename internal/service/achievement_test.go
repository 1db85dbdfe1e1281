package service

import (
	"context"
	"fmt"
	"testing"

	"taskdeck/internal/model"
	"taskdeck/internal/repository"
	"taskdeck/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func catalogEntry(id int64, kind string, threshold, points int) *model.Achievement {
	return &model.Achievement{
		ID:             id,
		Name:           fmt.Sprintf("achievement-%d", id),
		BadgeType:      "task",
		Tier:           "bronze",
		CriterionKind:  kind,
		CriterionValue: threshold,
		Points:         points,
	}
}

type capturePublisher struct {
	userID    int64
	published []*model.Achievement
}

func (p *capturePublisher) PublishUnlocks(userID int64, achievements []*model.Achievement) {
	p.userID = userID
	p.published = achievements
}

func TestAchievementService_CheckAndUnlock(t *testing.T) {
	tests := []struct {
		name          string
		userID        int64
		mockSetup     func(repo *mocks.MockAchievementRepository)
		expectedError error
		checkResult   func(t *testing.T, result *model.UnlockResult)
	}{
		{
			name:   "Stats snapshot missing",
			userID: 123,
			mockSetup: func(repo *mocks.MockAchievementRepository) {
				repo.On("GetStats", mock.Anything, int64(123)).
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrStatsNotFound,
		},
		{
			name:   "First check unlocks the satisfied achievement",
			userID: 124,
			mockSetup: func(repo *mocks.MockAchievementRepository) {
				repo.On("GetStats", mock.Anything, int64(124)).
					Return(&model.StatsSnapshot{UserID: 124, TasksCompletedAllTime: 50}, nil)
				repo.On("ListAchievements", mock.Anything, model.CatalogFilter{}).
					Return([]*model.Achievement{
						catalogEntry(1, "tasks_completed", 10, 50),
						catalogEntry(2, "tasks_completed", 100, 100),
					}, nil)
				repo.On("ListUnlockedIDs", mock.Anything, int64(124)).
					Return([]int64{}, nil)
				repo.On("InsertUnlock", mock.Anything, int64(124), int64(1), mock.Anything).
					Return(nil)
				repo.On("UpdateUserPoints", mock.Anything, int64(124), 50).
					Return(nil)
			},
			checkResult: func(t *testing.T, result *model.UnlockResult) {
				assert.Len(t, result.NewlyUnlocked, 1)
				assert.Equal(t, int64(1), result.NewlyUnlocked[0].ID)
				assert.Empty(t, result.AlreadyUnlocked)
			},
		},
		{
			name:   "Second check is idempotent",
			userID: 124,
			mockSetup: func(repo *mocks.MockAchievementRepository) {
				repo.On("GetStats", mock.Anything, int64(124)).
					Return(&model.StatsSnapshot{UserID: 124, TasksCompletedAllTime: 50}, nil)
				repo.On("ListAchievements", mock.Anything, model.CatalogFilter{}).
					Return([]*model.Achievement{
						catalogEntry(1, "tasks_completed", 10, 50),
						catalogEntry(2, "tasks_completed", 100, 100),
					}, nil)
				repo.On("ListUnlockedIDs", mock.Anything, int64(124)).
					Return([]int64{1}, nil)
			},
			checkResult: func(t *testing.T, result *model.UnlockResult) {
				assert.Empty(t, result.NewlyUnlocked)
				assert.Equal(t, []int64{1}, result.AlreadyUnlocked)
			},
		},
		{
			name:   "Unknown criterion kind is skipped, not fatal",
			userID: 125,
			mockSetup: func(repo *mocks.MockAchievementRepository) {
				catalog := make([]*model.Achievement, 0, 10)
				for i := int64(1); i <= 9; i++ {
					catalog = append(catalog, catalogEntry(i, "tasks_completed", 1, 0))
				}
				catalog = append(catalog, catalogEntry(10, "fastest_fingers", 1, 0))

				repo.On("GetStats", mock.Anything, int64(125)).
					Return(&model.StatsSnapshot{UserID: 125, TasksCompletedAllTime: 5}, nil)
				repo.On("ListAchievements", mock.Anything, model.CatalogFilter{}).
					Return(catalog, nil)
				repo.On("ListUnlockedIDs", mock.Anything, int64(125)).
					Return([]int64{}, nil)
				repo.On("InsertUnlock", mock.Anything, int64(125), mock.Anything, mock.Anything).
					Return(nil)
			},
			checkResult: func(t *testing.T, result *model.UnlockResult) {
				assert.Len(t, result.NewlyUnlocked, 9)
				for _, a := range result.NewlyUnlocked {
					assert.NotEqual(t, int64(10), a.ID)
				}
			},
		},
		{
			name:   "Unlocks come back in ascending id order",
			userID: 126,
			mockSetup: func(repo *mocks.MockAchievementRepository) {
				repo.On("GetStats", mock.Anything, int64(126)).
					Return(&model.StatsSnapshot{UserID: 126, CurrentStreakDays: 30}, nil)
				repo.On("ListAchievements", mock.Anything, model.CatalogFilter{}).
					Return([]*model.Achievement{
						catalogEntry(5, "streak", 5, 0),
						catalogEntry(1, "streak", 1, 0),
						catalogEntry(3, "streak", 3, 0),
					}, nil)
				repo.On("ListUnlockedIDs", mock.Anything, int64(126)).
					Return([]int64{}, nil)
				repo.On("InsertUnlock", mock.Anything, int64(126), mock.Anything, mock.Anything).
					Return(nil)
			},
			checkResult: func(t *testing.T, result *model.UnlockResult) {
				ids := make([]int64, len(result.NewlyUnlocked))
				for i, a := range result.NewlyUnlocked {
					ids[i] = a.ID
				}
				assert.Equal(t, []int64{1, 3, 5}, ids)
			},
		},
		{
			name:   "Losing the insert race is not an error",
			userID: 127,
			mockSetup: func(repo *mocks.MockAchievementRepository) {
				repo.On("GetStats", mock.Anything, int64(127)).
					Return(&model.StatsSnapshot{UserID: 127, TasksCompletedToday: 10}, nil)
				repo.On("ListAchievements", mock.Anything, model.CatalogFilter{}).
					Return([]*model.Achievement{
						catalogEntry(1, "tasks_today", 5, 25),
						catalogEntry(2, "tasks_today", 10, 75),
					}, nil)
				repo.On("ListUnlockedIDs", mock.Anything, int64(127)).
					Return([]int64{}, nil)
				repo.On("InsertUnlock", mock.Anything, int64(127), int64(1), mock.Anything).
					Return(repository.ErrAlreadyUnlocked)
				repo.On("InsertUnlock", mock.Anything, int64(127), int64(2), mock.Anything).
					Return(nil)
				repo.On("UpdateUserPoints", mock.Anything, int64(127), 75).
					Return(nil)
			},
			checkResult: func(t *testing.T, result *model.UnlockResult) {
				assert.Len(t, result.NewlyUnlocked, 1)
				assert.Equal(t, int64(2), result.NewlyUnlocked[0].ID)
			},
		},
		{
			name:   "Insert failure is fatal",
			userID: 128,
			mockSetup: func(repo *mocks.MockAchievementRepository) {
				repo.On("GetStats", mock.Anything, int64(128)).
					Return(&model.StatsSnapshot{UserID: 128, TasksCompletedThisWeek: 20}, nil)
				repo.On("ListAchievements", mock.Anything, model.CatalogFilter{}).
					Return([]*model.Achievement{
						catalogEntry(1, "tasks_week", 10, 0),
					}, nil)
				repo.On("ListUnlockedIDs", mock.Anything, int64(128)).
					Return([]int64{}, nil)
				repo.On("InsertUnlock", mock.Anything, int64(128), int64(1), mock.Anything).
					Return(assert.AnError)
			},
			expectedError: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockAchievementRepository{}
			tt.mockSetup(mockRepo)

			svc := NewAchievementService(mockRepo, nil)
			result, err := svc.CheckAndUnlock(context.Background(), tt.userID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, result)

			if tt.checkResult != nil {
				tt.checkResult(t, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAchievementService_CheckAndUnlock_PublishesNewUnlocks(t *testing.T) {
	mockRepo := &mocks.MockAchievementRepository{}
	mockRepo.On("GetStats", mock.Anything, int64(200)).
		Return(&model.StatsSnapshot{UserID: 200, TasksCompletedAllTime: 1}, nil)
	mockRepo.On("ListAchievements", mock.Anything, model.CatalogFilter{}).
		Return([]*model.Achievement{catalogEntry(1, "tasks_completed", 1, 10)}, nil)
	mockRepo.On("ListUnlockedIDs", mock.Anything, int64(200)).
		Return([]int64{}, nil)
	mockRepo.On("InsertUnlock", mock.Anything, int64(200), int64(1), mock.Anything).
		Return(nil)
	mockRepo.On("UpdateUserPoints", mock.Anything, int64(200), 10).
		Return(nil)

	pub := &capturePublisher{}
	svc := NewAchievementService(mockRepo, pub)

	result, err := svc.CheckAndUnlock(context.Background(), 200)

	assert.NoError(t, err)
	assert.Len(t, result.NewlyUnlocked, 1)
	assert.Equal(t, int64(200), pub.userID)
	assert.Equal(t, result.NewlyUnlocked, pub.published)
	mockRepo.AssertExpectations(t)
}

func TestAchievementService_SetDisplayed(t *testing.T) {
	t.Run("Unlock owned by another user maps to not found", func(t *testing.T) {
		mockRepo := &mocks.MockAchievementRepository{}
		mockRepo.On("UpdateUnlockDisplayed", mock.Anything, int64(1), int64(7), false).
			Return(repository.ErrNotFound)

		svc := NewAchievementService(mockRepo, nil)
		err := svc.SetDisplayed(context.Background(), 1, 7, false)

		assert.ErrorIs(t, err, ErrAchievementNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Toggle succeeds", func(t *testing.T) {
		mockRepo := &mocks.MockAchievementRepository{}
		mockRepo.On("UpdateUnlockDisplayed", mock.Anything, int64(1), int64(7), true).
			Return(nil)

		svc := NewAchievementService(mockRepo, nil)
		err := svc.SetDisplayed(context.Background(), 1, 7, true)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}
