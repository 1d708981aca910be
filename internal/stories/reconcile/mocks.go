package reconcile

import (
	"context"

	"datrix-bot/internal/storage"
	"datrix-bot/internal/stories/plans"
	"datrix-bot/internal/stories/subs"
)

// Hand-rolled test doubles for the service contracts.

type mockStorage struct {
	phones        map[string]*storage.PhoneEntry
	subscriptions map[int64]*subs.Subscription

	upserts []subs.Subscription
	getErr  error
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		phones:        make(map[string]*storage.PhoneEntry),
		subscriptions: make(map[int64]*subs.Subscription),
	}
}

func (m *mockStorage) GetPhoneEntry(_ context.Context, phone string) (*storage.PhoneEntry, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.phones[phone], nil
}

func (m *mockStorage) GetSubscription(_ context.Context, criteria subs.GetCriteria) (*subs.Subscription, error) {
	if len(criteria.UserIDs) == 0 {
		return nil, nil
	}
	return m.subscriptions[criteria.UserIDs[0]], nil
}

func (m *mockStorage) UpsertSubscription(_ context.Context, subscription subs.Subscription) (*subs.Subscription, error) {
	m.upserts = append(m.upserts, subscription)
	stored := subscription
	m.subscriptions[subscription.UserID] = &stored
	return &stored, nil
}

type mockCatalog struct {
	plans map[int64]*plans.Plan
}

func (m *mockCatalog) ByAmount(amountKES int64) (*plans.Plan, bool) {
	p, ok := m.plans[amountKES]
	return p, ok
}

type mockGrants struct {
	granted []int64
	err     error
}

func (m *mockGrants) Grant(_ context.Context, chatID int64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.granted = append(m.granted, chatID)
	return "https://t.me/+abcdef", nil
}

type mockMessenger struct {
	sent map[int64][]string
}

func newMockMessenger() *mockMessenger {
	return &mockMessenger{sent: make(map[int64][]string)}
}

func (m *mockMessenger) SendMessage(chatID int64, text string) error {
	m.sent[chatID] = append(m.sent[chatID], text)
	return nil
}
