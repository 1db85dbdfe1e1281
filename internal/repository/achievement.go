package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskdeck/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type achievement struct {
	ID             int64  `db:"id"`
	Name           string `db:"name"`
	Description    string `db:"description"`
	Icon           string `db:"icon"`
	BadgeType      string `db:"badge_type"`
	Tier           string `db:"tier"`
	CriterionKind  string `db:"criterion_kind"`
	CriterionValue int    `db:"criterion_value"`
	Points         int    `db:"points"`
}

type userAchievement struct {
	UserID        int64     `db:"user_id"`
	AchievementID int64     `db:"achievement_id"`
	UnlockedAt    time.Time `db:"unlocked_at"`
	Displayed     bool      `db:"displayed"`
	Notified      bool      `db:"notified"`
}

type pendingNotification struct {
	UserID          int64  `db:"user_id"`
	AchievementID   int64  `db:"achievement_id"`
	TelegramChatID  int64  `db:"telegram_chat_id"`
	AchievementName string `db:"name"`
	Points          int    `db:"points"`
}

func (a *achievement) toModel() *model.Achievement {
	return &model.Achievement{
		ID:             a.ID,
		Name:           a.Name,
		Description:    a.Description,
		Icon:           a.Icon,
		BadgeType:      a.BadgeType,
		Tier:           a.Tier,
		CriterionKind:  a.CriterionKind,
		CriterionValue: a.CriterionValue,
		Points:         a.Points,
	}
}

func (r *Repository) ListAchievements(ctx context.Context, filter model.CatalogFilter) ([]*model.Achievement, error) {
	query := squirrel.Select(
		"id", "name", "description", "icon", "badge_type", "tier",
		"criterion_kind", "criterion_value", "points",
	).
		From("achievements").
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Tier != "" {
		query = query.Where(squirrel.Eq{"tier": filter.Tier})
	}
	if filter.BadgeType != "" {
		query = query.Where(squirrel.Eq{"badge_type": filter.BadgeType})
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog query: %w", err)
	}

	var dbAchievements []*achievement
	err = r.db.SelectContext(ctx, &dbAchievements, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	achievements := make([]*model.Achievement, len(dbAchievements))
	for i, a := range dbAchievements {
		achievements[i] = a.toModel()
	}

	return achievements, nil
}

// ListUnlockedIDs returns the ids of achievements the user already holds,
// ascending.
func (r *Repository) ListUnlockedIDs(ctx context.Context, userID int64) ([]int64, error) {
	query, args, err := squirrel.Select(
		"COALESCE(array_agg(achievement_id ORDER BY achievement_id), '{}') as achievement_ids",
	).
		From("user_achievements").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build unlocked ids query: %w", err)
	}

	var ids pq.Int64Array
	err = r.db.GetContext(ctx, &ids, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get unlocked ids: %w", err)
	}

	return []int64(ids), nil
}

// InsertUnlock grants an achievement at most once per user. The uniqueness
// constraint on (user_id, achievement_id) decides concurrent races; the loser
// gets ErrAlreadyUnlocked.
func (r *Repository) InsertUnlock(ctx context.Context, userID, achievementID int64, unlockedAt time.Time) error {
	query, args, err := squirrel.
		Insert("user_achievements").
		SetMap(map[string]interface{}{
			"user_id":        userID,
			"achievement_id": achievementID,
			"unlocked_at":    unlockedAt,
			"displayed":      true,
			"notified":       false,
		}).
		Suffix("ON CONFLICT (user_id, achievement_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build unlock insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert unlock: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrAlreadyUnlocked
	}

	return nil
}

func (r *Repository) UpdateUnlockDisplayed(ctx context.Context, userID, achievementID int64, displayed bool) error {
	query, args, err := squirrel.
		Update("user_achievements").
		Set("displayed", displayed).
		Where(squirrel.Eq{
			"user_id":        userID,
			"achievement_id": achievementID,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build display update query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update display flag: %w", err)
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

type unlockedAchievement struct {
	achievement
	UnlockedAt time.Time `db:"unlocked_at"`
	Displayed  bool      `db:"displayed"`
	Notified   bool      `db:"notified"`
}

func (r *Repository) ListUserAchievements(ctx context.Context, userID int64, filter model.UserAchievementFilter) ([]*model.Achievement, []*model.UserAchievement, error) {
	query := squirrel.Select(
		"a.id", "a.name", "a.description", "a.icon", "a.badge_type", "a.tier",
		"a.criterion_kind", "a.criterion_value", "a.points",
		"ua.unlocked_at", "ua.displayed", "ua.notified",
	).
		From("user_achievements ua").
		Join("achievements a ON a.id = ua.achievement_id").
		Where(squirrel.Eq{"ua.user_id": userID}).
		OrderBy("a.id").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Tier != "" {
		query = query.Where(squirrel.Eq{"a.tier": filter.Tier})
	}
	if filter.Displayed != nil {
		query = query.Where(squirrel.Eq{"ua.displayed": *filter.Displayed})
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build user achievements query: %w", err)
	}

	var dbRows []*unlockedAchievement
	err = r.db.SelectContext(ctx, &dbRows, sqlQuery, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*model.Achievement{}, []*model.UserAchievement{}, nil
		}
		return nil, nil, fmt.Errorf("failed to list user achievements: %w", err)
	}

	achievements := make([]*model.Achievement, len(dbRows))
	unlocks := make([]*model.UserAchievement, len(dbRows))
	for i, row := range dbRows {
		achievements[i] = row.toModel()
		unlocks[i] = &model.UserAchievement{
			UserID:        userID,
			AchievementID: row.ID,
			UnlockedAt:    row.UnlockedAt,
			Displayed:     row.Displayed,
			Notified:      row.Notified,
		}
	}

	return achievements, unlocks, nil
}

// ListUnnotifiedUnlocks returns unlock rows still waiting for delivery, for
// users that linked a Telegram chat.
func (r *Repository) ListUnnotifiedUnlocks(ctx context.Context, limit uint64) ([]*model.PendingNotification, error) {
	query, args, err := squirrel.Select(
		"ua.user_id", "ua.achievement_id", "u.telegram_chat_id", "a.name", "a.points",
	).
		From("user_achievements ua").
		Join("achievements a ON a.id = ua.achievement_id").
		Join("users u ON u.id = ua.user_id").
		Where(squirrel.Eq{"ua.notified": false}).
		Where(squirrel.NotEq{"u.telegram_chat_id": nil}).
		OrderBy("ua.unlocked_at").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build unnotified unlocks query: %w", err)
	}

	var dbRows []*pendingNotification
	err = r.db.SelectContext(ctx, &dbRows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unnotified unlocks: %w", err)
	}

	pending := make([]*model.PendingNotification, len(dbRows))
	for i, row := range dbRows {
		pending[i] = &model.PendingNotification{
			UserID:          row.UserID,
			AchievementID:   row.AchievementID,
			TelegramChatID:  row.TelegramChatID,
			AchievementName: row.AchievementName,
			Points:          row.Points,
		}
	}

	return pending, nil
}

func (r *Repository) MarkUnlockNotified(ctx context.Context, userID, achievementID int64) error {
	query, args, err := squirrel.
		Update("user_achievements").
		Set("notified", true).
		Where(squirrel.Eq{
			"user_id":        userID,
			"achievement_id": achievementID,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build notified update query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark unlock notified: %w", err)
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
