package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"datrix-bot/internal/stories/subs"
)

const subscriptionsTable = "subscriptions"

var subscriptionRowFields = fields(subscriptionRow{})

type subscriptionRow struct {
	UserID     int64     `db:"user_id"`
	Username   *string   `db:"username"`
	Phone      string    `db:"phone"`
	AmountKES  int64     `db:"amount_kes"`
	PaymentRef string    `db:"payment_ref"`
	ExpiresAt  time.Time `db:"expires_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r subscriptionRow) ToModel() *subs.Subscription {
	return &subs.Subscription{
		UserID:     r.UserID,
		Username:   r.Username,
		Phone:      r.Phone,
		AmountKES:  r.AmountKES,
		PaymentRef: r.PaymentRef,
		ExpiresAt:  r.ExpiresAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// UpsertSubscription inserts or replaces the single row for the user.
// Last writer wins: reconciliation events are not ordered relative to each
// other, so the row always reflects the most recent write.
func (s *storageImpl) UpsertSubscription(ctx context.Context, subscription subs.Subscription) (*subs.Subscription, error) {
	now := s.now()

	params := map[string]interface{}{
		"user_id":     subscription.UserID,
		"username":    subscription.Username,
		"phone":       subscription.Phone,
		"amount_kes":  subscription.AmountKES,
		"payment_ref": subscription.PaymentRef,
		"expires_at":  subscription.ExpiresAt,
		"created_at":  now,
		"updated_at":  now,
	}

	q, args, err := s.stmpBuilder().
		Insert(subscriptionsTable).
		SetMap(params).
		Suffix(`ON CONFLICT(user_id) DO UPDATE SET
			username = excluded.username,
			phone = excluded.phone,
			amount_kes = excluded.amount_kes,
			payment_ref = excluded.payment_ref,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	return s.GetSubscription(ctx, subs.GetCriteria{UserIDs: []int64{subscription.UserID}})
}

func (s *storageImpl) GetSubscription(ctx context.Context, criteria subs.GetCriteria) (*subs.Subscription, error) {
	query := s.stmpBuilder().
		Select(subscriptionRowFields).
		From(subscriptionsTable).
		Limit(1)

	if len(criteria.UserIDs) > 0 {
		query = query.Where(sq.Eq{"user_id": criteria.UserIDs})
	}
	if len(criteria.Usernames) > 0 {
		query = query.Where(sq.Eq{"username": criteria.Usernames})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var row subscriptionRow
	err = s.db.GetContext(ctx, &row, q, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return row.ToModel(), nil
}

func (s *storageImpl) ListSubscriptions(ctx context.Context, criteria subs.ListCriteria) ([]*subs.Subscription, error) {
	query := s.stmpBuilder().
		Select(subscriptionRowFields).
		From(subscriptionsTable)

	if criteria.ExpiredBefore != nil {
		query = query.Where(sq.Lt{"expires_at": *criteria.ExpiredBefore})
	}

	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}
	if criteria.Offset > 0 {
		query = query.Offset(uint64(criteria.Offset))
	}

	query = query.OrderBy("expires_at DESC")

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []subscriptionRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var subscriptions []*subs.Subscription
	for _, row := range rows {
		subscriptions = append(subscriptions, row.ToModel())
	}

	return subscriptions, nil
}

func (s *storageImpl) DeleteSubscriptions(ctx context.Context, criteria subs.DeleteCriteria) (int64, error) {
	if len(criteria.UserIDs) == 0 && criteria.ExpiredBefore == nil {
		return 0, fmt.Errorf("refusing to delete without criteria")
	}

	query := s.stmpBuilder().Delete(subscriptionsTable)

	if len(criteria.UserIDs) > 0 {
		query = query.Where(sq.Eq{"user_id": criteria.UserIDs})
	}
	if criteria.ExpiredBefore != nil {
		query = query.Where(sq.Lt{"expires_at": *criteria.ExpiredBefore})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected: %w", err)
	}

	return affected, nil
}
