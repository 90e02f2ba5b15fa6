package providers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
)

const premiumCleanStatus = "clean"

// PremiumProvider reads the dnc_status field of the premium lookup service
type PremiumProvider struct {
	lookup *httpLookup
}

// NewPremiumProvider creates a new premium lookup client
func NewPremiumProvider(config Config, logger *zap.Logger) *PremiumProvider {
	if config.Endpoint == "" {
		config.Endpoint = DefaultPremiumEndpoint
	}
	return &PremiumProvider{lookup: newHTTPLookup(dnc.SourcePremium, "Premium", config, logger)}
}

func (p *PremiumProvider) Source() dnc.Source {
	return dnc.SourcePremium
}

// CheckNumber reports the status verbatim unless it is empty or "clean"
func (p *PremiumProvider) CheckNumber(ctx context.Context, phoneNumber string) Result {
	payload, raw, err := p.lookup.fetch(ctx, phoneNumber)
	if err != nil {
		return p.lookup.failure(err)
	}

	status := payload["dnc_status"]
	if truthy(status) && status != premiumCleanStatus {
		return Result{Verdict: dnc.Verdict{
			IsDNC:   true,
			Details: statusText(status),
			Source:  dnc.SourcePremium,
			Raw:     raw,
		}}
	}

	return Result{Verdict: dnc.Verdict{
		IsDNC:   false,
		Details: "Premium Check Clean",
		Source:  dnc.SourcePremium,
	}}
}

func statusText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
