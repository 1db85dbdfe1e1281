package model

import "time"

type User struct {
	ID               int64
	Username         string
	PasswordHash     string
	DisplayName      string
	Points           int
	TelegramChatID   *int64
	RegistrationDate time.Time
}
