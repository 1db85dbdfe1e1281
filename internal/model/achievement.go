package model

import "time"

type Achievement struct {
	ID             int64
	Name           string
	Description    string
	Icon           string
	BadgeType      string
	Tier           string
	CriterionKind  string
	CriterionValue int
	Points         int
}

type UserAchievement struct {
	UserID        int64
	AchievementID int64
	UnlockedAt    time.Time
	Displayed     bool
	Notified      bool
}

// UnlockResult is the delta produced by a single check pass.
type UnlockResult struct {
	NewlyUnlocked   []*Achievement
	AlreadyUnlocked []int64
}

type CatalogFilter struct {
	Tier      string
	BadgeType string
}

type UserAchievementFilter struct {
	Tier      string
	Displayed *bool
}

// PendingNotification is an unlock row still waiting for delivery, joined
// with the target chat.
type PendingNotification struct {
	UserID          int64
	AchievementID   int64
	TelegramChatID  int64
	AchievementName string
	Points          int
}
