package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/repository"
	"taskdeck/pkg/logger"

	"go.uber.org/zap"
)

type AchievementService struct {
	repo AchievementRepository
	pub  UnlockPublisher
}

func NewAchievementService(repo AchievementRepository, pub UnlockPublisher) *AchievementService {
	return &AchievementService{
		repo: repo,
		pub:  pub,
	}
}

// CheckAndUnlock evaluates every achievement the user does not yet hold
// against their current stats snapshot and grants the satisfied ones. Grants
// are insert-if-absent: a concurrent check that wins the race simply removes
// the entry from this call's delta. Corrupt catalog entries are logged and
// skipped without failing the pass.
func (s *AchievementService) CheckAndUnlock(ctx context.Context, userID int64) (*model.UnlockResult, error) {
	log := logger.Logger()

	stats, err := s.repo.GetStats(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStatsNotFound
		}
		return nil, fmt.Errorf("failed to get stats snapshot: %w", err)
	}

	catalog, err := s.repo.ListAchievements(ctx, model.CatalogFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	unlockedIDs, err := s.repo.ListUnlockedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocked achievements: %w", err)
	}

	unlocked := make(map[int64]struct{}, len(unlockedIDs))
	for _, id := range unlockedIDs {
		unlocked[id] = struct{}{}
	}

	sort.Slice(catalog, func(i, j int) bool {
		return catalog[i].ID < catalog[j].ID
	})

	result := &model.UnlockResult{
		NewlyUnlocked:   []*model.Achievement{},
		AlreadyUnlocked: unlockedIDs,
	}

	now := time.Now().UTC()
	points := 0

	for _, a := range catalog {
		if _, ok := unlocked[a.ID]; ok {
			continue
		}

		criterion, err := model.ParseCriterion(a.CriterionKind, a.CriterionValue)
		if err != nil {
			log.Error("skipping achievement with corrupt criterion",
				zap.Int64("achievement_id", a.ID),
				zap.String("criterion_kind", a.CriterionKind),
				zap.Error(err))
			continue
		}

		if !criterion.Met(stats) {
			continue
		}

		err = s.repo.InsertUnlock(ctx, userID, a.ID, now)
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyUnlocked) {
				continue
			}
			return nil, fmt.Errorf("failed to insert unlock: %w", err)
		}

		result.NewlyUnlocked = append(result.NewlyUnlocked, a)
		points += a.Points
	}

	if points > 0 {
		if err := s.repo.UpdateUserPoints(ctx, userID, points); err != nil {
			log.Error("failed to award achievement points",
				zap.Int64("user_id", userID),
				zap.Int("points", points),
				zap.Error(err))
		}
	}

	if s.pub != nil && len(result.NewlyUnlocked) > 0 {
		s.pub.PublishUnlocks(userID, result.NewlyUnlocked)
	}

	return result, nil
}

func (s *AchievementService) GetCatalog(ctx context.Context, filter model.CatalogFilter) ([]*model.Achievement, error) {
	achievements, err := s.repo.ListAchievements(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return achievements, nil
}

func (s *AchievementService) GetUserAchievements(ctx context.Context, userID int64, filter model.UserAchievementFilter) ([]*model.Achievement, []*model.UserAchievement, error) {
	achievements, unlocks, err := s.repo.ListUserAchievements(ctx, userID, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list user achievements: %w", err)
	}
	return achievements, unlocks, nil
}

func (s *AchievementService) SetDisplayed(ctx context.Context, userID, achievementID int64, displayed bool) error {
	err := s.repo.UpdateUnlockDisplayed(ctx, userID, achievementID, displayed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAchievementNotFound
		}
		return fmt.Errorf("failed to update display flag: %w", err)
	}
	return nil
}
