package dnc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
	"github.com/davidleathers/dnc-scrubber/internal/domain/errors"
	"github.com/davidleathers/dnc-scrubber/internal/testutil"
)

// scriptedChecker flags the numbers in listed and reports everything else clean
type scriptedChecker struct {
	mu     sync.Mutex
	listed map[string]string
	calls  []string
	ctxErr []error
}

func (s *scriptedChecker) Check(ctx context.Context, phoneNumber string) dnc.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, phoneNumber)
	s.ctxErr = append(s.ctxErr, ctx.Err())
	if details, ok := s.listed[phoneNumber]; ok {
		return dnc.Verdict{IsDNC: true, Details: details, Source: dnc.SourceTCPA}
	}
	return dnc.CleanVerdict()
}

func (s *scriptedChecker) checked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// blockingChecker holds every lookup until released
type blockingChecker struct {
	entered chan string
	release chan struct{}
}

func newBlockingChecker() *blockingChecker {
	return &blockingChecker{entered: make(chan string, 16), release: make(chan struct{})}
}

func (b *blockingChecker) Check(_ context.Context, phoneNumber string) dnc.Verdict {
	b.entered <- phoneNumber
	<-b.release
	return dnc.CleanVerdict()
}

type recordingPublisher struct {
	mu      sync.Mutex
	events  []dnc.Event
	onEvent func(dnc.Event)
}

func (r *recordingPublisher) Publish(_ context.Context, event dnc.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	hook := r.onEvent
	r.mu.Unlock()

	if hook != nil {
		hook(event)
	}
}

func (r *recordingPublisher) snapshot() []dnc.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dnc.Event(nil), r.events...)
}

func (r *recordingPublisher) ofType(eventType dnc.EventType) []dnc.Event {
	var out []dnc.Event
	for _, event := range r.snapshot() {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func newTestDriver(t *testing.T, checker NumberChecker, publisher EventPublisher, config DriverConfig) *Driver {
	t.Helper()
	driver, err := NewDriver(checker, publisher, config, zaptest.NewLogger(t))
	require.NoError(t, err)
	return driver
}

func waitDriver(t *testing.T, driver *Driver) {
	t.Helper()
	require.NoError(t, driver.Wait(testutil.TestContext(t)))
}

func TestDriver_CompletesEveryRecord(t *testing.T) {
	checker := &scriptedChecker{listed: map[string]string{"4165550100": "National DNC"}}
	publisher := &recordingPublisher{}
	driver := newTestDriver(t, checker, publisher, DriverConfig{})

	session, err := driver.Start(context.Background(), dnc.ParseRecords(testutil.MixedList))
	require.NoError(t, err)
	waitDriver(t, driver)

	snap := session.Snapshot()
	assert.Equal(t, dnc.SessionCompleted, snap.State)
	assert.Equal(t, dnc.Counts{Clean: 2, DNC: 1, Invalid: 2}, snap.Counts)
	assert.Equal(t, snap.Total, snap.Counts.Processed())
	assert.Equal(t, 100.0, snap.Progress)
	assert.Equal(t, []string{"2175550199", "4165550100", "3125550142"}, checker.checked())

	records := session.Records()
	wantStatus := []dnc.Status{dnc.StatusClean, dnc.StatusInvalid, dnc.StatusDNC, dnc.StatusClean, dnc.StatusInvalid}
	for i, record := range records {
		assert.Equal(t, wantStatus[i], record.Status, "record %d", i)
	}
	assert.Equal(t, "National DNC", records[2].Details)
	assert.Equal(t, dnc.CleanDetails, records[0].Details)

	events := publisher.snapshot()
	require.NotEmpty(t, events)
	assert.Equal(t, dnc.EventStarted, events[0].Type)
	last := events[len(events)-1]
	assert.Equal(t, dnc.EventCompleted, last.Type)
	assert.True(t, last.Terminal())
	assert.Equal(t, snap.Counts, last.Counts)
	assert.Equal(t, session.ID, last.SessionID)

	assert.Len(t, publisher.ofType(dnc.EventChecking), 3)
	assert.Len(t, publisher.ofType(dnc.EventCancelled), 0)
}

func TestDriver_ProgressStrictlyIncreases(t *testing.T) {
	publisher := &recordingPublisher{}
	driver := newTestDriver(t, &scriptedChecker{}, publisher, DriverConfig{})

	_, err := driver.Start(context.Background(), dnc.ParseRecords(testutil.MixedList))
	require.NoError(t, err)
	waitDriver(t, driver)

	progress := publisher.ofType(dnc.EventProgress)
	require.Len(t, progress, 5)
	for i := 1; i < len(progress); i++ {
		assert.Greater(t, progress[i].Progress, progress[i-1].Progress)
		assert.Equal(t, progress[i-1].Cursor+1, progress[i].Cursor)
	}
	assert.Equal(t, 100.0, progress[len(progress)-1].Progress)
	assert.Equal(t, dnc.StatusInvalid, progress[1].Status)
	assert.Equal(t, "0175550199", progress[1].Number)
}

func TestDriver_CancelAtStep(t *testing.T) {
	for _, k := range []int{1, 2, 4} {
		publisher := &recordingPublisher{}
		driver := newTestDriver(t, &scriptedChecker{}, publisher, DriverConfig{})

		var once sync.Once
		publisher.onEvent = func(event dnc.Event) {
			if event.Type == dnc.EventProgress && event.Cursor == k {
				once.Do(func() { assert.NoError(t, driver.Cancel()) })
			}
		}

		session, err := driver.Start(context.Background(), dnc.ParseRecords(testutil.MixedList))
		require.NoError(t, err)
		waitDriver(t, driver)

		snap := session.Snapshot()
		assert.Equal(t, dnc.SessionCancelled, snap.State, "k=%d", k)
		assert.Equal(t, k, snap.Counts.Processed(), "k=%d", k)
		assert.Equal(t, k, snap.Cursor)

		for i, record := range session.Records() {
			if i >= k {
				assert.Equal(t, dnc.StatusPending, record.Status, "record %d left untouched", i)
			}
		}

		events := publisher.snapshot()
		last := events[len(events)-1]
		assert.Equal(t, dnc.EventCancelled, last.Type)
		assert.Equal(t, snap.Counts, last.Counts)
		assert.Empty(t, publisher.ofType(dnc.EventCompleted))

		err = driver.Cancel()
		require.Error(t, err, "nothing left to cancel")
		assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
	}
}

func TestDriver_CancelInterruptsPacing(t *testing.T) {
	publisher := &recordingPublisher{}
	firstDone := make(chan struct{})
	var once sync.Once
	publisher.onEvent = func(event dnc.Event) {
		if event.Type == dnc.EventProgress {
			once.Do(func() { close(firstDone) })
		}
	}

	driver := newTestDriver(t, &scriptedChecker{}, publisher, DriverConfig{SkipDelay: time.Hour, CheckDelay: time.Hour})
	session, err := driver.Start(context.Background(), dnc.ParseRecords("2175550199\n4165550100"))
	require.NoError(t, err)

	<-firstDone
	require.NoError(t, driver.Cancel())
	waitDriver(t, driver)

	assert.Equal(t, dnc.SessionCancelled, session.State())
	assert.Equal(t, dnc.Counts{Clean: 1}, session.Counts())
}

func TestDriver_CancelLetsInFlightLookupFinish(t *testing.T) {
	checker := newBlockingChecker()
	driver := newTestDriver(t, checker, nil, DriverConfig{})

	session, err := driver.Start(context.Background(), dnc.ParseRecords("2175550199\n4165550100"))
	require.NoError(t, err)

	assert.Equal(t, "2175550199", <-checker.entered)
	require.NoError(t, driver.Cancel())

	_, err = driver.Start(context.Background(), dnc.ParseRecords("3125550142"))
	require.Error(t, err, "previous loop still stopping")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	close(checker.release)
	waitDriver(t, driver)

	assert.Equal(t, dnc.SessionCancelled, session.State())
	assert.Equal(t, dnc.Counts{Clean: 1}, session.Counts())
	assert.Equal(t, dnc.StatusClean, session.Records()[0].Status)
	assert.Equal(t, dnc.StatusPending, session.Records()[1].Status)
}

func TestDriver_StartContextCancellation(t *testing.T) {
	checker := newBlockingChecker()
	scripted := &scriptedChecker{}
	driver := newTestDriver(t, checker, nil, DriverConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	session, err := driver.Start(ctx, dnc.ParseRecords("2175550199\n4165550100"))
	require.NoError(t, err)

	<-checker.entered
	cancel()
	close(checker.release)
	waitDriver(t, driver)

	assert.Equal(t, dnc.SessionCancelled, session.State())
	assert.Equal(t, 1, session.Counts().Processed())

	// lookups never see the start context's cancellation
	driver = newTestDriver(t, scripted, nil, DriverConfig{})
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	_, err = driver.Start(ctx, dnc.ParseRecords("2175550199"))
	require.NoError(t, err)
	waitDriver(t, driver)
	require.Len(t, scripted.ctxErr, 1)
	assert.NoError(t, scripted.ctxErr[0])
}

func TestDriver_StartRejections(t *testing.T) {
	checker := newBlockingChecker()
	driver := newTestDriver(t, checker, nil, DriverConfig{})

	_, err := driver.Start(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "NO_RECORDS"))
	assert.Nil(t, driver.Session(), "rejected start leaves no session")

	session, err := driver.Start(context.Background(), dnc.ParseRecords("2175550199"))
	require.NoError(t, err)
	<-checker.entered

	_, err = driver.Start(context.Background(), dnc.ParseRecords("4165550100"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "CHECK_IN_PROGRESS"))
	assert.Same(t, session, driver.Session())

	close(checker.release)
	waitDriver(t, driver)
	assert.Equal(t, dnc.SessionCompleted, session.State())
}

func TestDriver_RestartStartsFresh(t *testing.T) {
	checker := &scriptedChecker{listed: map[string]string{"2175550199": "TCPA DNC List"}}
	driver := newTestDriver(t, checker, nil, DriverConfig{})
	records := dnc.ParseRecords(testutil.MixedList)

	first, err := driver.Start(context.Background(), records)
	require.NoError(t, err)
	waitDriver(t, driver)

	second, err := driver.Start(context.Background(), records)
	require.NoError(t, err)
	waitDriver(t, driver)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Same(t, second, driver.Session())
	assert.Equal(t, first.Counts(), second.Counts(), "counts restart from zero")
	assert.Equal(t, dnc.Counts{Clean: 2, DNC: 1, Invalid: 2}, second.Counts())
	assert.Len(t, checker.checked(), 6)
	assert.Equal(t, dnc.StatusPending, records[0].Status, "input records are never mutated")
}

func TestDriver_CancelWithoutSession(t *testing.T) {
	driver := newTestDriver(t, &scriptedChecker{}, nil, DefaultDriverConfig())

	err := driver.Cancel()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "NO_ACTIVE_CHECK"))
	assert.NoError(t, driver.Wait(context.Background()))
}

func TestNewDriver_Validation(t *testing.T) {
	_, err := NewDriver(nil, nil, DriverConfig{}, nil)
	assert.True(t, errors.HasCode(err, "INVALID_CHECKER"))

	_, err = NewDriver(&scriptedChecker{}, nil, DriverConfig{SkipDelay: -time.Millisecond}, nil)
	assert.True(t, errors.HasCode(err, "INVALID_DELAY"))

	assert.Equal(t, DriverConfig{SkipDelay: 10 * time.Millisecond, CheckDelay: 100 * time.Millisecond}, DefaultDriverConfig())
}

func TestPublishers_FanOut(t *testing.T) {
	a, b := &recordingPublisher{}, &recordingPublisher{}
	publishers := Publishers{a, nil, b}

	publishers.Publish(context.Background(), dnc.Event{Type: dnc.EventStarted})
	assert.Len(t, a.snapshot(), 1)
	assert.Len(t, b.snapshot(), 1)
}

func TestObservers_FanOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	observers := Observers{a, nil, b}

	observers.ObserveLookup(dnc.SourcePremium, dnc.OutcomeFailed, time.Millisecond)
	assert.Equal(t, map[dnc.Source]dnc.LookupOutcome{dnc.SourcePremium: dnc.OutcomeFailed}, a.outcomes())
	assert.Equal(t, a.outcomes(), b.outcomes())
}
