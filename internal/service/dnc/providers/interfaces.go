package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
)

// LookupClient is one external DNC data source.
// CheckNumber never returns an error and never panics: every transport or parse failure is
// folded into a negative verdict with Failure populated.
type LookupClient interface {
	Source() dnc.Source
	CheckNumber(ctx context.Context, phoneNumber string) Result
}

// Result is the tagged outcome of a single lookup
type Result struct {
	Verdict dnc.Verdict
	// Failure is set only when the source could not be reached or understood
	Failure *ProviderError
}

// OK reports whether the source produced a real answer
func (r Result) OK() bool {
	return r.Failure == nil
}

// Config contains configuration for a single lookup client
type Config struct {
	Endpoint   string
	QueryParam string
	// Timeout bounds one lookup; zero waits indefinitely
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Endpoints holds the base URL of each source
type Endpoints struct {
	TCPA    string
	Person  string
	Premium string
}

// Default endpoints of the public lookup services
const (
	DefaultTCPAEndpoint    = "https://tcpa.api.uspeoplesearch.net/tcpa/v1"
	DefaultPersonEndpoint  = "https://person.api.uspeoplesearch.net/person/v3"
	DefaultPremiumEndpoint = "https://premium_lookup-1-h4761841.deta.app/person"
	DefaultQueryParam      = "x"
	DefaultTimeout         = 15 * time.Second
)

// ProviderError represents provider-specific errors
type ProviderError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Provider string `json:"provider"`
	Retry    bool   `json:"retry"`
	Cause    error  `json:"-"`
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Standard error codes
const (
	ErrCodeConnectionFailed    = "CONNECTION_FAILED"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeInvalidResponse     = "INVALID_RESPONSE"
	ErrCodeTimeout             = "TIMEOUT"
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodePanic               = "PANIC"
)
