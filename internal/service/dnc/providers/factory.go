package providers

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ClientOptions are shared by every default client
type ClientOptions struct {
	Endpoints  Endpoints
	QueryParam string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewDefaultClients builds the lookup clients in resolution order: TCPA, Person, Premium.
// Empty endpoints fall back to the public services.
func NewDefaultClients(opts ClientOptions, logger *zap.Logger) []LookupClient {
	config := func(endpoint string) Config {
		return Config{
			Endpoint:   endpoint,
			QueryParam: opts.QueryParam,
			Timeout:    opts.Timeout,
			HTTPClient: opts.HTTPClient,
		}
	}

	return []LookupClient{
		NewTCPAProvider(config(opts.Endpoints.TCPA), logger),
		NewPersonProvider(config(opts.Endpoints.Person), logger),
		NewPremiumProvider(config(opts.Endpoints.Premium), logger),
	}
}
