package dnc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
	"github.com/davidleathers/dnc-scrubber/internal/domain/errors"
	"github.com/davidleathers/dnc-scrubber/internal/service/dnc/providers"
)

// Ensure Checker implements the interface
var _ NumberChecker = (*Checker)(nil)

// Checker queries every lookup client concurrently and resolves a single verdict.
// The first client in declared order that reports a positive wins.
type Checker struct {
	clients  []providers.LookupClient
	sources  []dnc.Source
	observer LookupObserver
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewChecker creates a consensus checker over clients in resolution order
func NewChecker(clients []providers.LookupClient, observer LookupObserver, logger *zap.Logger) (*Checker, error) {
	if len(clients) == 0 {
		return nil, errors.NewValidationError("NO_CLIENTS", "at least one lookup client is required")
	}
	sources := make([]dnc.Source, len(clients))
	for i, client := range clients {
		if client == nil {
			return nil, errors.NewValidationError("INVALID_CLIENT", fmt.Sprintf("lookup client %d is nil", i))
		}
		sources[i] = client.Source()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Checker{
		clients:  clients,
		sources:  sources,
		observer: observer,
		logger:   logger.Named("consensus"),
		tracer:   otel.Tracer("dnc.consensus"),
	}, nil
}

// Check waits for every source to settle and returns the resolved verdict.
// It never fails: an internal fault degrades to dnc.ErrorVerdict.
func (c *Checker) Check(ctx context.Context, phoneNumber string) (verdict dnc.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("DNC consensus check failed",
				zap.String("phone_number", phoneNumber),
				zap.Any("panic", r),
			)
			verdict = dnc.ErrorVerdict()
		}
	}()

	ctx, span := c.tracer.Start(ctx, "dnc.check")
	defer span.End()

	results := c.lookupAll(ctx, phoneNumber)
	verdict = Resolve(results)

	span.SetAttributes(
		attribute.Bool("dnc.listed", verdict.IsDNC),
		attribute.String("dnc.source", string(verdict.Source)),
	)
	if verdict.IsDNC {
		c.logger.Debug("Number flagged",
			zap.String("phone_number", phoneNumber),
			zap.String("source", string(verdict.Source)),
			zap.String("details", verdict.Details),
		)
	}
	return verdict
}

func (c *Checker) lookupAll(ctx context.Context, phoneNumber string) []providers.Result {
	results := make([]providers.Result, len(c.clients))

	var g errgroup.Group
	for i := range c.clients {
		g.Go(func() error {
			results[i] = c.lookup(ctx, i, phoneNumber)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// lookup contains a panicking client as a failed, negative result
func (c *Checker) lookup(ctx context.Context, i int, phoneNumber string) (result providers.Result) {
	source := c.sources[i]
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Lookup client panicked",
				zap.String("source", string(source)),
				zap.Any("panic", r),
			)
			result = providers.Result{
				Verdict: dnc.Verdict{IsDNC: false, Details: string(source) + " lookup failed", Source: source},
				Failure: &providers.ProviderError{
					Code:     providers.ErrCodePanic,
					Message:  fmt.Sprint(r),
					Provider: string(source),
				},
			}
		}
		if !result.OK() {
			c.logger.Warn("Lookup failed",
				zap.String("source", string(source)),
				zap.String("code", result.Failure.Code),
				zap.Error(result.Failure),
			)
		}
		c.observer.ObserveLookup(source, OutcomeOf(result), time.Since(start))
	}()

	return c.clients[i].CheckNumber(ctx, phoneNumber)
}

// Resolve returns the first positive verdict in order, unchanged. Details are never merged.
func Resolve(results []providers.Result) dnc.Verdict {
	for _, result := range results {
		if result.Verdict.IsDNC {
			return result.Verdict
		}
	}
	return dnc.CleanVerdict()
}
