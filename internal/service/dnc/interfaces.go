package dnc

import (
	"context"
	"time"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
)

// NumberChecker produces a single verdict for a canonical number
type NumberChecker interface {
	Check(ctx context.Context, phoneNumber string) dnc.Verdict
}

// LookupObserver receives the outcome of every individual source lookup
type LookupObserver interface {
	ObserveLookup(source dnc.Source, outcome dnc.LookupOutcome, duration time.Duration)
}

// EventPublisher receives driver events. Implementations must not block the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event dnc.Event)
}

// Publishers fans an event out to several publishers in order
type Publishers []EventPublisher

func (p Publishers) Publish(ctx context.Context, event dnc.Event) {
	for _, publisher := range p {
		if publisher != nil {
			publisher.Publish(ctx, event)
		}
	}
}

// Observers fans a lookup outcome out to several observers
type Observers []LookupObserver

func (o Observers) ObserveLookup(source dnc.Source, outcome dnc.LookupOutcome, duration time.Duration) {
	for _, observer := range o {
		if observer != nil {
			observer.ObserveLookup(source, outcome, duration)
		}
	}
}

type noopObserver struct{}

func (noopObserver) ObserveLookup(dnc.Source, dnc.LookupOutcome, time.Duration) {}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, dnc.Event) {}
