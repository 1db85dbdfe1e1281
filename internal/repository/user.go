package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskdeck/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type user struct {
	ID               int64        `db:"id"`
	Username         string       `db:"username"`
	PasswordHash     string       `db:"password_hash"`
	DisplayName      string       `db:"display_name"`
	Points           int          `db:"points"`
	TelegramChatID   *int64       `db:"telegram_chat_id"`
	RegistrationDate sql.NullTime `db:"registration_date"`
}

func (u *user) toModel() *model.User {
	return &model.User{
		ID:               u.ID,
		Username:         u.Username,
		PasswordHash:     u.PasswordHash,
		DisplayName:      u.DisplayName,
		Points:           u.Points,
		TelegramChatID:   u.TelegramChatID,
		RegistrationDate: u.RegistrationDate.Time,
	}
}

// CreateUser inserts the user together with its zeroed stats row, so every
// registered account has a snapshot from day one. Returns ErrUsernameTaken
// when the username is already claimed.
func (r *Repository) CreateUser(ctx context.Context, u *model.User) (int64, error) {
	var id int64

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("users").
			SetMap(map[string]interface{}{
				"username":          u.Username,
				"password_hash":     u.PasswordHash,
				"display_name":      u.DisplayName,
				"points":            0,
				"telegram_chat_id":  u.TelegramChatID,
				"registration_date": u.RegistrationDate,
			}).
			Suffix("ON CONFLICT (username) DO NOTHING RETURNING id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build user insert query: %w", err)
		}

		err = tx.GetContext(ctx, &id, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		statsQuery, statsArgs, err := squirrel.
			Insert("user_stats").
			SetMap(map[string]interface{}{
				"user_id":                   id,
				"tasks_completed_all_time":  0,
				"current_streak_days":       0,
				"tasks_completed_today":     0,
				"tasks_completed_this_week": 0,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build stats insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, statsQuery, statsArgs...)
		if err != nil {
			return fmt.Errorf("failed to insert user stats: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getUser(ctx, squirrel.Eq{"id": id})
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getUser(ctx, squirrel.Eq{"username": username})
}

func (r *Repository) getUser(ctx context.Context, where squirrel.Eq) (*model.User, error) {
	query, args, err := squirrel.Select(
		"id", "username", "password_hash", "display_name", "points",
		"telegram_chat_id", "registration_date",
	).
		From("users").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}

	var u user
	err = r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u.toModel(), nil
}

func (r *Repository) UpdateUserPoints(ctx context.Context, userID int64, points int) error {
	query, args, err := squirrel.
		Update("users").
		Set("points", squirrel.Expr("points + ?", points)).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build points update query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update points: %w", err)
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
