package subscribe

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"datrix-bot/internal/storage"
	"datrix-bot/internal/stories/plans"
)

type planCatalog interface {
	List() []*plans.Plan
	Resolve(token string) (*plans.Plan, error)
}

type paymentInitiator interface {
	Initiate(ctx context.Context, phone string, amountKES int64) (string, error)
}

type phoneDirectory interface {
	UpsertPhoneEntry(ctx context.Context, entry storage.PhoneEntry) error
}

type messenger interface {
	SendMessage(chatID int64, text string) error
	SendKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
}
