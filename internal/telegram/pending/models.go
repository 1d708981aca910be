package pending

import (
	"time"

	"datrix-bot/internal/stories/plans"
)

type Step string

const (
	StepAwaitingPlan  Step = "awaiting_plan"
	StepAwaitingPhone Step = "awaiting_phone"
)

// Request tracks one user's progress through the subscribe flow. It lives
// only in memory; an unfinished request is evicted when its deadline passes.
type Request struct {
	UserID    int64
	ChatID    int64
	Step      Step
	Plan      *plans.Plan
	CreatedAt time.Time
	Deadline  time.Time
}
