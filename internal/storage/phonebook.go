package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const phoneDirectoryTable = "phone_directory"

var phoneEntryRowFields = fields(phoneEntryRow{})

// PhoneEntry maps an M-Pesa phone number back to a chat identity. The
// payment callback carries only the phone number, so this is the sole way
// to attribute a payment to a user.
type PhoneEntry struct {
	Phone     string
	ChatID    int64
	Username  *string
	UpdatedAt time.Time
}

type phoneEntryRow struct {
	Phone     string    `db:"phone"`
	ChatID    int64     `db:"chat_id"`
	Username  *string   `db:"username"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r phoneEntryRow) ToModel() *PhoneEntry {
	return &PhoneEntry{
		Phone:     r.Phone,
		ChatID:    r.ChatID,
		Username:  r.Username,
		UpdatedAt: r.UpdatedAt,
	}
}

// UpsertPhoneEntry records the phone → chat mapping, replacing any previous
// owner of the number. Called whenever a user submits a phone, regardless of
// how the payment turns out.
func (s *storageImpl) UpsertPhoneEntry(ctx context.Context, entry PhoneEntry) error {
	params := map[string]interface{}{
		"phone":      entry.Phone,
		"chat_id":    entry.ChatID,
		"username":   entry.Username,
		"updated_at": s.now(),
	}

	q, args, err := s.stmpBuilder().
		Insert(phoneDirectoryTable).
		SetMap(params).
		Suffix(`ON CONFLICT(phone) DO UPDATE SET
			chat_id = excluded.chat_id,
			username = excluded.username,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	return nil
}

func (s *storageImpl) GetPhoneEntry(ctx context.Context, phone string) (*PhoneEntry, error) {
	q, args, err := s.stmpBuilder().
		Select(phoneEntryRowFields).
		From(phoneDirectoryTable).
		Where(sq.Eq{"phone": phone}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var row phoneEntryRow
	err = s.db.GetContext(ctx, &row, q, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return row.ToModel(), nil
}
