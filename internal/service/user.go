package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer abstracts the bearer-token collaborator; token contents and
// expiry are its business, not the service's.
type TokenIssuer interface {
	IssueToken(userID int64) (string, error)
}

type UserService struct {
	repo   UserRepository
	tokens TokenIssuer
}

func NewUserService(repo UserRepository, tokens TokenIssuer) *UserService {
	return &UserService{
		repo:   repo,
		tokens: tokens,
	}
}

func (s *UserService) Register(ctx context.Context, username, password, displayName string, telegramChatID *int64) (*model.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if displayName == "" {
		displayName = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:         username,
		PasswordHash:     string(hash),
		DisplayName:      displayName,
		TelegramChatID:   telegramChatID,
		RegistrationDate: time.Now().UTC(),
	}

	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	return user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
