package providers

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
)

// personFlags are reported in this order when several match
var personFlags = []struct {
	field string
	label string
}{
	{"national_dnc", "National DNC"},
	{"state_dnc", "State DNC"},
	{"blacklist", "Blacklist"},
	{"litigator", "Litigator"},
}

// PersonProvider checks the person search service for DNC, blacklist and litigator flags
type PersonProvider struct {
	lookup *httpLookup
}

// NewPersonProvider creates a new person lookup client
func NewPersonProvider(config Config, logger *zap.Logger) *PersonProvider {
	if config.Endpoint == "" {
		config.Endpoint = DefaultPersonEndpoint
	}
	return &PersonProvider{lookup: newHTTPLookup(dnc.SourcePerson, "Person", config, logger)}
}

func (p *PersonProvider) Source() dnc.Source {
	return dnc.SourcePerson
}

func (p *PersonProvider) CheckNumber(ctx context.Context, phoneNumber string) Result {
	payload, raw, err := p.lookup.fetch(ctx, phoneNumber)
	if err != nil {
		return p.lookup.failure(err)
	}

	var matched []string
	for _, flag := range personFlags {
		if truthy(payload[flag.field]) {
			matched = append(matched, flag.label)
		}
	}

	if len(matched) > 0 {
		return Result{Verdict: dnc.Verdict{
			IsDNC:   true,
			Details: strings.Join(matched, ", "),
			Source:  dnc.SourcePerson,
			Raw:     raw,
		}}
	}

	return Result{Verdict: dnc.Verdict{
		IsDNC:   false,
		Details: "Not in Person DNC",
		Source:  dnc.SourcePerson,
	}}
}
