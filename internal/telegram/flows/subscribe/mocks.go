package subscribe

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"datrix-bot/internal/storage"
	"datrix-bot/internal/stories/plans"
)

type mockCatalog struct {
	list []*plans.Plan
}

func (m *mockCatalog) List() []*plans.Plan {
	return m.list
}

func (m *mockCatalog) Resolve(token string) (*plans.Plan, error) {
	for _, p := range m.list {
		if p.Token == token {
			return p, nil
		}
	}
	return nil, plans.ErrUnknownPlan
}

type mockPayments struct {
	calls []paymentCall
	err   error
}

type paymentCall struct {
	phone     string
	amountKES int64
}

func (m *mockPayments) Initiate(_ context.Context, phone string, amountKES int64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.calls = append(m.calls, paymentCall{phone: phone, amountKES: amountKES})
	return "ws_CO_123", nil
}

type mockDirectory struct {
	entries []storage.PhoneEntry
	err     error
}

func (m *mockDirectory) UpsertPhoneEntry(_ context.Context, entry storage.PhoneEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

type mockMessenger struct {
	texts     []string
	keyboards []tgbotapi.InlineKeyboardMarkup
}

func (m *mockMessenger) SendMessage(_ int64, text string) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *mockMessenger) SendKeyboard(_ int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	m.texts = append(m.texts, text)
	m.keyboards = append(m.keyboards, keyboard)
	return nil
}

func (m *mockMessenger) lastText() string {
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}
