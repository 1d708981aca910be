package subs

import "time"

// Subscription is the durable record of a paid subscriber. There is at most
// one row per user; reconciliation replaces it instead of appending.
type Subscription struct {
	UserID     int64
	Username   *string
	Phone      string
	AmountKES  int64
	PaymentRef string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type GetCriteria struct {
	UserIDs   []int64
	Usernames []string
}

type ListCriteria struct {
	// ExpiredBefore selects rows whose expiry is strictly before the instant.
	ExpiredBefore *time.Time
	Limit         int
	Offset        int
}

type DeleteCriteria struct {
	UserIDs       []int64
	ExpiredBefore *time.Time
}
