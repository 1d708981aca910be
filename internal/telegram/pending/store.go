package pending

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrAlreadyPending = errors.New("a pending request already exists for this user")
	ErrNoSuchPending  = errors.New("no pending request for this user")
)

// TimeoutFunc is invoked after a request is evicted on deadline expiry.
// It runs outside the store lock.
type TimeoutFunc func(userID, chatID int64)

type entry struct {
	req Request
	// generation guards against stale timers: a timer scheduled for an
	// earlier generation finds a different value and does nothing. The
	// counter is store-wide so a successor request never reuses the
	// generation a dangling timer was armed with.
	generation uint64
	timer      *time.Timer
}

// Store holds at most one in-flight subscribe request per user. Handlers
// for different users may call it concurrently; a single user's entry is
// only ever read or written under the store lock, so a second message
// arriving mid-transition observes the already-updated state.
type Store struct {
	mu        sync.Mutex
	entries   map[int64]*entry
	gen       uint64
	window    time.Duration
	onTimeout TimeoutFunc
	now       func() time.Time
}

func NewStore(window time.Duration, onTimeout TimeoutFunc) *Store {
	return &Store{
		entries:   make(map[int64]*entry),
		window:    window,
		onTimeout: onTimeout,
		now:       time.Now,
	}
}

// Begin creates a request in StepAwaitingPlan and arms its deadline timer.
// A user with an existing request is rejected, not replaced.
func (s *Store) Begin(userID, chatID int64) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[userID]; exists {
		return Request{}, ErrAlreadyPending
	}

	now := s.now()
	e := &entry{
		req: Request{
			UserID:    userID,
			ChatID:    chatID,
			Step:      StepAwaitingPlan,
			CreatedAt: now,
			Deadline:  now.Add(s.window),
		},
	}
	s.entries[userID] = e
	s.armLocked(userID, e)

	return e.req, nil
}

// Get returns a copy of the user's request, if any.
func (s *Store) Get(userID int64) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return Request{}, false
	}
	return e.req, true
}

// Advance mutates the request in place under the lock.
func (s *Store) Advance(userID int64, mutate func(*Request)) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return Request{}, ErrNoSuchPending
	}

	mutate(&e.req)
	return e.req, nil
}

// Rearm restarts the deadline window after a step completes, so a user who
// just chose a plan gets the full window again to type a phone number.
func (s *Store) Rearm(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return ErrNoSuchPending
	}

	e.req.Deadline = s.now().Add(s.window)
	s.armLocked(userID, e)
	return nil
}

// Complete removes the request and cancels its timer. After Complete
// returns, no timeout notice will ever be sent for this request.
func (s *Store) Complete(userID int64) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return Request{}, ErrNoSuchPending
	}

	if e.timer != nil {
		e.timer.Stop()
	}
	delete(s.entries, userID)

	return e.req, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// armLocked advances the store generation, cancels any previous timer and
// schedules a fresh expiry check. Caller holds the lock.
func (s *Store) armLocked(userID int64, e *entry) {
	s.gen++
	e.generation = s.gen
	if e.timer != nil {
		e.timer.Stop()
	}

	gen := e.generation
	e.timer = time.AfterFunc(s.window, func() {
		s.expire(userID, gen)
	})
}

// expire evicts the entry if it is still present and still the generation
// the timer was armed for. Timer.Stop does not guarantee the callback has
// not already fired, so the generation check is what makes a dangling
// timer a no-op.
func (s *Store) expire(userID int64, gen uint64) {
	s.mu.Lock()
	e, ok := s.entries[userID]
	if !ok || e.generation != gen {
		s.mu.Unlock()
		return
	}
	delete(s.entries, userID)
	req := e.req
	s.mu.Unlock()

	if s.onTimeout != nil {
		s.onTimeout(req.UserID, req.ChatID)
	}
}
