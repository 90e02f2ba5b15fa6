package dnc

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
	"github.com/davidleathers/dnc-scrubber/internal/domain/errors"
)

// Driver walks a record list one number at a time, publishing progress as it goes.
// At most one session runs at a time.
type Driver struct {
	checker   NumberChecker
	publisher EventPublisher
	config    DriverConfig
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	session  *dnc.CheckSession
	loopDone chan struct{}
}

// NewDriver creates a new sequential check driver
func NewDriver(checker NumberChecker, publisher EventPublisher, config DriverConfig, logger *zap.Logger) (*Driver, error) {
	if checker == nil {
		return nil, errors.NewValidationError("INVALID_CHECKER", "checker cannot be nil")
	}
	if config.SkipDelay < 0 || config.CheckDelay < 0 {
		return nil, errors.NewValidationError("INVALID_DELAY", "pacing delays cannot be negative")
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Driver{
		checker:   checker,
		publisher: publisher,
		config:    config,
		logger:    logger.Named("driver"),
		now:       time.Now,
	}, nil
}

// Start begins checking records in a fresh session. Cancelling ctx stops the loop at the
// next record boundary, as Cancel does.
func (d *Driver) Start(ctx context.Context, records []*dnc.PhoneRecord) (*dnc.CheckSession, error) {
	session, err := dnc.NewCheckSession(records)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil && d.session.State() == dnc.SessionRunning {
		return nil, errors.NewConflictError("CHECK_IN_PROGRESS", "a check is already running")
	}
	if d.loopDone != nil {
		select {
		case <-d.loopDone:
		default:
			return nil, errors.NewConflictError("CHECK_IN_PROGRESS", "the previous check is still stopping")
		}
	}

	if err := session.Begin(d.now()); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	d.session = session
	d.loopDone = done

	d.logger.Info("DNC check started",
		zap.String("session_id", session.ID.String()),
		zap.Int("total", len(records)),
	)

	go d.run(ctx, session, done)
	return session, nil
}

// Cancel stops the running session after the in-flight lookup finishes
func (d *Driver) Cancel() error {
	d.mu.Lock()
	session := d.session
	d.mu.Unlock()

	if session == nil || !session.Deactivate() {
		return errors.NewConflictError("NO_ACTIVE_CHECK", "no check is running")
	}

	d.logger.Info("DNC check cancellation requested", zap.String("session_id", session.ID.String()))
	return nil
}

// Session returns the most recent session, or nil before the first Start
func (d *Driver) Session() *dnc.CheckSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

// Wait blocks until the current loop has exited and published its terminal event
func (d *Driver) Wait(ctx context.Context) error {
	d.mu.Lock()
	done := d.loopDone
	d.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Driver) run(ctx context.Context, session *dnc.CheckSession, done chan struct{}) {
	defer close(done)

	// lookups and publishing outlive cancellation of the start context
	detached := context.WithoutCancel(ctx)
	d.publish(detached, session, dnc.EventStarted, "", "")

	for {
		if !session.Active() || ctx.Err() != nil {
			session.Deactivate()
			d.finish(detached, session, dnc.SessionCancelled, dnc.EventCancelled)
			return
		}

		record, ok := session.Current()
		if !ok {
			d.finish(detached, session, dnc.SessionCompleted, dnc.EventCompleted)
			return
		}

		d.pace(ctx, session, d.step(detached, session, record))
	}
}

// step processes the record under the cursor and returns the pacing delay that follows it
func (d *Driver) step(ctx context.Context, session *dnc.CheckSession, record dnc.PhoneRecord) time.Duration {
	if !record.IsValid {
		session.Skip()
		d.publish(ctx, session, dnc.EventProgress, record.Cleaned, dnc.StatusInvalid)
		return d.config.SkipDelay
	}

	number, ok := session.MarkChecking()
	if !ok {
		return 0
	}
	d.publish(ctx, session, dnc.EventChecking, number, dnc.StatusChecking)

	verdict := d.checker.Check(ctx, number)
	status, _ := session.Resolve(verdict)
	d.publish(ctx, session, dnc.EventProgress, number, status)

	return d.config.CheckDelay
}

// pace sleeps between steps; cancellation cuts the delay short
func (d *Driver) pace(ctx context.Context, session *dnc.CheckSession, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-session.Stopped():
	case <-ctx.Done():
	}
}

func (d *Driver) finish(ctx context.Context, session *dnc.CheckSession, state dnc.SessionState, eventType dnc.EventType) {
	session.Finish(state, d.now())
	snap := session.Snapshot()

	d.logger.Info("DNC check finished",
		zap.String("session_id", snap.ID.String()),
		zap.String("state", string(snap.State)),
		zap.Int("processed", snap.Counts.Processed()),
		zap.Int("total", snap.Total),
		zap.Int("clean", snap.Counts.Clean),
		zap.Int("dnc", snap.Counts.DNC),
		zap.Int("invalid", snap.Counts.Invalid),
	)
	d.publisher.Publish(ctx, dnc.NewEvent(eventType, snap, d.now()))
}

func (d *Driver) publish(ctx context.Context, session *dnc.CheckSession, eventType dnc.EventType, number string, status dnc.Status) {
	event := dnc.NewEvent(eventType, session.Snapshot(), d.now())
	event.Number = number
	event.Status = status
	d.publisher.Publish(ctx, event)
}
