package sweep

import (
	"context"

	"datrix-bot/internal/stories/subs"
)

type mockStorage struct {
	expired   []*subs.Subscription
	listErr   error
	deleteErr error

	deleted bool
}

func (m *mockStorage) ListSubscriptions(_ context.Context, criteria subs.ListCriteria) ([]*subs.Subscription, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if criteria.ExpiredBefore == nil {
		return nil, nil
	}
	return m.expired, nil
}

func (m *mockStorage) DeleteSubscriptions(_ context.Context, criteria subs.DeleteCriteria) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deleted = true
	return int64(len(m.expired)), nil
}

type mockChannelAdmin struct {
	statuses   map[int64]string
	statusErrs map[int64]error
	kickErrs   map[int64]error

	kicked   []int64
	notified []int64
}

func newMockChannelAdmin() *mockChannelAdmin {
	return &mockChannelAdmin{
		statuses:   make(map[int64]string),
		statusErrs: make(map[int64]error),
		kickErrs:   make(map[int64]error),
	}
}

func (m *mockChannelAdmin) MemberStatus(_, userID int64) (string, error) {
	if err := m.statusErrs[userID]; err != nil {
		return "", err
	}
	if status, ok := m.statuses[userID]; ok {
		return status, nil
	}
	return "member", nil
}

func (m *mockChannelAdmin) KickMember(_, userID int64) error {
	if err := m.kickErrs[userID]; err != nil {
		return err
	}
	m.kicked = append(m.kicked, userID)
	return nil
}

func (m *mockChannelAdmin) SendMessage(chatID int64, _ string) error {
	m.notified = append(m.notified, chatID)
	return nil
}
