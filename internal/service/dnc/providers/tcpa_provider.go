package providers

import (
	"context"

	"go.uber.org/zap"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
)

// TCPAProvider checks numbers against the TCPA litigation and DNC list
type TCPAProvider struct {
	lookup *httpLookup
}

// NewTCPAProvider creates a new TCPA lookup client
func NewTCPAProvider(config Config, logger *zap.Logger) *TCPAProvider {
	if config.Endpoint == "" {
		config.Endpoint = DefaultTCPAEndpoint
	}
	return &TCPAProvider{lookup: newHTTPLookup(dnc.SourceTCPA, "TCPA", config, logger)}
}

func (p *TCPAProvider) Source() dnc.Source {
	return dnc.SourceTCPA
}

// CheckNumber flags the number when the payload marks it as DNC or TCPA listed
func (p *TCPAProvider) CheckNumber(ctx context.Context, phoneNumber string) Result {
	payload, raw, err := p.lookup.fetch(ctx, phoneNumber)
	if err != nil {
		return p.lookup.failure(err)
	}

	if truthy(payload["is_dnc"]) || isTrue(payload["dnc"]) || isTrue(payload["tcpa"]) {
		return Result{Verdict: dnc.Verdict{
			IsDNC:   true,
			Details: "TCPA DNC List",
			Source:  dnc.SourceTCPA,
			Raw:     raw,
		}}
	}

	return Result{Verdict: dnc.Verdict{
		IsDNC:   false,
		Details: "Not in TCPA DNC",
		Source:  dnc.SourceTCPA,
	}}
}
