package grants

import "time"

type telegramClient interface {
	CreateInviteLink(channelID int64, ttl time.Duration) (string, error)
	SendMessage(chatID int64, text string) error
}
