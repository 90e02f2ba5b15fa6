package dnc

import (
	"sync"
	"time"

	"github.com/davidleathers/dnc-scrubber/internal/domain/errors"
	"github.com/google/uuid"
)

// SessionState is the lifecycle of a check run
type SessionState string

const (
	SessionIdle      SessionState = "idle"
	SessionRunning   SessionState = "running"
	SessionCancelled SessionState = "cancelled"
	SessionCompleted SessionState = "completed"
)

// IsTerminal reports whether the session can make no further progress
func (s SessionState) IsTerminal() bool {
	return s == SessionCancelled || s == SessionCompleted
}

// Counts are the running tallies of a session
type Counts struct {
	Clean   int `json:"clean"`
	DNC     int `json:"dnc"`
	Invalid int `json:"invalid"`
}

// Processed is the number of records that reached a terminal status
func (c Counts) Processed() int {
	return c.Clean + c.DNC + c.Invalid
}

// SessionSnapshot is a consistent, copyable view of a session
type SessionSnapshot struct {
	ID         uuid.UUID    `json:"id"`
	State      SessionState `json:"state"`
	Cursor     int          `json:"cursor"`
	Total      int          `json:"total"`
	Progress   float64      `json:"progress"`
	Counts     Counts       `json:"counts"`
	StartedAt  time.Time    `json:"started_at,omitempty"`
	FinishedAt time.Time    `json:"finished_at,omitempty"`
}

// CheckSession is the run state of one pass over a record list.
// The cursor only moves forward, and once deactivated a session never resumes.
type CheckSession struct {
	ID uuid.UUID

	mu         sync.RWMutex
	records    []*PhoneRecord
	cursor     int
	counts     Counts
	active     bool
	state      SessionState
	startedAt  time.Time
	finishedAt time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

// NewCheckSession copies the records into a fresh idle session with every status reset
func NewCheckSession(records []*PhoneRecord) (*CheckSession, error) {
	if len(records) == 0 {
		return nil, errors.NewValidationError("NO_RECORDS", "no phone records to check")
	}

	owned := make([]*PhoneRecord, len(records))
	for i, r := range records {
		if r == nil {
			return nil, errors.NewValidationError("INVALID_RECORD", "phone record cannot be nil")
		}
		cp := *r
		cp.Status = StatusPending
		cp.Details = ""
		owned[i] = &cp
	}

	return &CheckSession{
		ID:      uuid.New(),
		records: owned,
		state:   SessionIdle,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Begin moves an idle session to running
func (s *CheckSession) Begin(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionIdle {
		return errors.NewConflictError("SESSION_ALREADY_STARTED", "check session already started")
	}
	s.state = SessionRunning
	s.active = true
	s.startedAt = now
	return nil
}

// Active reports whether the session may schedule another step
func (s *CheckSession) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Deactivate clears the active flag. It returns false when the session was not running.
func (s *CheckSession) Deactivate() bool {
	s.mu.Lock()
	wasActive := s.active && s.state == SessionRunning
	s.active = false
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stop) })
	return wasActive
}

// Stopped is closed once the session has been deactivated
func (s *CheckSession) Stopped() <-chan struct{} {
	return s.stop
}

// Done is closed once the session reaches a terminal state
func (s *CheckSession) Done() <-chan struct{} {
	return s.done
}

// Current returns a copy of the record under the cursor
func (s *CheckSession) Current() (PhoneRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cursor >= len(s.records) {
		return PhoneRecord{}, false
	}
	return *s.records[s.cursor], true
}

// Skip marks the record under the cursor invalid and advances
func (s *CheckSession) Skip() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.records) {
		return s.progressLocked()
	}
	s.records[s.cursor].Status = StatusInvalid
	s.counts.Invalid++
	s.cursor++
	return s.progressLocked()
}

// MarkChecking flags the record under the cursor as in flight and returns its number
func (s *CheckSession) MarkChecking() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.records) {
		return "", false
	}
	rec := s.records[s.cursor]
	if rec.Status != StatusPending {
		return "", false
	}
	rec.Status = StatusChecking
	return rec.Cleaned, true
}

// Resolve applies a verdict to the in-flight record, bumps the matching counter and advances
func (s *CheckSession) Resolve(v Verdict) (Status, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.records) || s.records[s.cursor].Status != StatusChecking {
		return "", s.progressLocked()
	}

	rec := s.records[s.cursor]
	rec.Status = v.Status()
	rec.Details = v.Details
	if v.IsDNC {
		s.counts.DNC++
	} else {
		s.counts.Clean++
	}
	s.cursor++
	return rec.Status, s.progressLocked()
}

// Finish records the terminal state and releases waiters
func (s *CheckSession) Finish(state SessionState, now time.Time) {
	s.mu.Lock()
	if !s.state.IsTerminal() {
		s.state = state
		s.active = false
		s.finishedAt = now
	}
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stop) })
	s.doneOnce.Do(func() { close(s.done) })
}

// State returns the lifecycle state
func (s *CheckSession) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Counts returns the running tallies
func (s *CheckSession) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts
}

// Snapshot returns a consistent view for reporting
func (s *CheckSession) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SessionSnapshot{
		ID:         s.ID,
		State:      s.state,
		Cursor:     s.cursor,
		Total:      len(s.records),
		Progress:   s.progressLocked(),
		Counts:     s.counts,
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
	}
}

// Records returns copies of every record in input order
func (s *CheckSession) Records() []*PhoneRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*PhoneRecord, len(s.records))
	for i, r := range s.records {
		cp := *r
		out[i] = &cp
	}
	return out
}

func (s *CheckSession) progressLocked() float64 {
	if len(s.records) == 0 {
		return 0
	}
	return float64(s.cursor) / float64(len(s.records)) * 100
}
