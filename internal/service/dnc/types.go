package dnc

import (
	"time"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
	"github.com/davidleathers/dnc-scrubber/internal/service/dnc/providers"
)

// OutcomeOf classifies a lookup result
func OutcomeOf(result providers.Result) dnc.LookupOutcome {
	switch {
	case !result.OK():
		return dnc.OutcomeFailed
	case result.Verdict.IsDNC:
		return dnc.OutcomeListed
	default:
		return dnc.OutcomeClear
	}
}

// DriverConfig controls pacing between steps
type DriverConfig struct {
	// SkipDelay follows an invalid record
	SkipDelay time.Duration
	// CheckDelay follows a looked-up record
	CheckDelay time.Duration
}

// DefaultDriverConfig returns the standard pacing
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		SkipDelay:  10 * time.Millisecond,
		CheckDelay: 100 * time.Millisecond,
	}
}
