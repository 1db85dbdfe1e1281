package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	TaskID      uuid.UUID
	UserID      int64
	Title       string
	Notes       string
	Completed   bool
	CreatedAt   time.Time
	CompletedAt *time.Time
}
