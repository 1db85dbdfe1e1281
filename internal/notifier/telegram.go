package notifier

import (
	"context"
	"fmt"
	"time"

	"taskdeck/internal/model"
	"taskdeck/pkg/logger"
	"go.uber.org/zap"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const deliveryBatchSize = 50

type Repository interface {
	ListUnnotifiedUnlocks(ctx context.Context, limit uint64) ([]*model.PendingNotification, error)
	MarkUnlockNotified(ctx context.Context, userID, achievementID int64) error
}

// Notifier delivers unlock notifications to users with a linked Telegram
// chat. Each ledger row is marked notified only after a successful send, so
// a failed delivery is retried on the next tick.
type Notifier struct {
	bot      *tgbotapi.BotAPI
	repo     Repository
	interval time.Duration
}

func New(botToken string, repo Repository, interval time.Duration) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Notifier{
		bot:      bot,
		repo:     repo,
		interval: interval,
	}, nil
}

func (n *Notifier) Run(ctx context.Context) {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.deliverPending(ctx)
		}
	}
}

func (n *Notifier) deliverPending(ctx context.Context) {
	log := logger.Logger()

	pending, err := n.repo.ListUnnotifiedUnlocks(ctx, deliveryBatchSize)
	if err != nil {
		log.Error("failed to list pending unlock notifications", zap.Error(err))
		return
	}

	for _, p := range pending {
		text := fmt.Sprintf("Achievement unlocked: %s (+%d points)", p.AchievementName, p.Points)
		if _, err := n.bot.Send(tgbotapi.NewMessage(p.TelegramChatID, text)); err != nil {
			log.Error("failed to send unlock notification",
				zap.Int64("user_id", p.UserID),
				zap.Int64("achievement_id", p.AchievementID),
				zap.Error(err))
			continue
		}

		if err := n.repo.MarkUnlockNotified(ctx, p.UserID, p.AchievementID); err != nil {
			log.Error("failed to mark unlock notified",
				zap.Int64("user_id", p.UserID),
				zap.Int64("achievement_id", p.AchievementID),
				zap.Error(err))
		}
	}
}
