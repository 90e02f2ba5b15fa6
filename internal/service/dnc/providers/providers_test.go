package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
)

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "2175550199", r.URL.Query().Get("x"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTCPAProvider(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		isDNC   bool
		details string
	}{
		{"is_dnc true", `{"is_dnc": true}`, true, "TCPA DNC List"},
		{"is_dnc truthy string", `{"is_dnc": "yes"}`, true, "TCPA DNC List"},
		{"is_dnc number", `{"is_dnc": 1}`, true, "TCPA DNC List"},
		{"dnc true", `{"dnc": true}`, true, "TCPA DNC List"},
		{"tcpa true", `{"tcpa": true}`, true, "TCPA DNC List"},
		{"dnc truthy but not true", `{"dnc": "yes", "tcpa": 1}`, false, "Not in TCPA DNC"},
		{"all falsy", `{"is_dnc": false, "dnc": false, "tcpa": null}`, false, "Not in TCPA DNC"},
		{"empty object", `{}`, false, "Not in TCPA DNC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := jsonServer(t, http.StatusOK, tt.body)
			provider := NewTCPAProvider(Config{Endpoint: server.URL}, zaptest.NewLogger(t))

			result := provider.CheckNumber(context.Background(), "2175550199")
			require.True(t, result.OK())
			assert.Equal(t, tt.isDNC, result.Verdict.IsDNC)
			assert.Equal(t, tt.details, result.Verdict.Details)
			assert.Equal(t, dnc.SourceTCPA, result.Verdict.Source)
			if tt.isDNC {
				assert.JSONEq(t, tt.body, string(result.Verdict.Raw))
			} else {
				assert.Nil(t, result.Verdict.Raw)
			}
		})
	}
}

func TestPersonProvider(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		isDNC   bool
		details string
	}{
		{"national only", `{"national_dnc": true}`, true, "National DNC"},
		{"all flags in fixed order", `{"litigator": true, "blacklist": 1, "state_dnc": "Y", "national_dnc": true}`, true,
			"National DNC, State DNC, Blacklist, Litigator"},
		{"state and litigator", `{"state_dnc": true, "litigator": true}`, true, "State DNC, Litigator"},
		{"falsy flags", `{"national_dnc": false, "state_dnc": 0, "blacklist": "", "litigator": null}`, false, "Not in Person DNC"},
		{"unrelated fields", `{"name": "x"}`, false, "Not in Person DNC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := jsonServer(t, http.StatusOK, tt.body)
			provider := NewPersonProvider(Config{Endpoint: server.URL}, zaptest.NewLogger(t))

			result := provider.CheckNumber(context.Background(), "2175550199")
			require.True(t, result.OK())
			assert.Equal(t, tt.isDNC, result.Verdict.IsDNC)
			assert.Equal(t, tt.details, result.Verdict.Details)
			assert.Equal(t, dnc.SourcePerson, result.Verdict.Source)
		})
	}
}

func TestPremiumProvider(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		isDNC   bool
		details string
	}{
		{"listed status", `{"dnc_status": "federal_dnc"}`, true, "federal_dnc"},
		{"clean status", `{"dnc_status": "clean"}`, false, "Premium Check Clean"},
		{"empty status", `{"dnc_status": ""}`, false, "Premium Check Clean"},
		{"missing status", `{}`, false, "Premium Check Clean"},
		{"non string status", `{"dnc_status": true}`, true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := jsonServer(t, http.StatusOK, tt.body)
			provider := NewPremiumProvider(Config{Endpoint: server.URL}, zaptest.NewLogger(t))

			result := provider.CheckNumber(context.Background(), "2175550199")
			require.True(t, result.OK())
			assert.Equal(t, tt.isDNC, result.Verdict.IsDNC)
			assert.Equal(t, tt.details, result.Verdict.Details)
			assert.Equal(t, dnc.SourcePremium, result.Verdict.Source)
		})
	}
}

func TestProviders_Failures(t *testing.T) {
	newClients := func(endpoint string, timeout time.Duration) []LookupClient {
		return NewDefaultClients(ClientOptions{
			Endpoints: Endpoints{TCPA: endpoint, Person: endpoint, Premium: endpoint},
			Timeout:   timeout,
		}, zaptest.NewLogger(t))
	}
	errorDetails := map[dnc.Source]string{
		dnc.SourceTCPA:    "TCPA API Error",
		dnc.SourcePerson:  "Person API Error",
		dnc.SourcePremium: "Premium API Error",
	}

	t.Run("non 2xx status", func(t *testing.T) {
		server := jsonServer(t, http.StatusServiceUnavailable, `{"is_dnc": true, "national_dnc": true, "dnc_status": "x"}`)
		for _, client := range newClients(server.URL, 0) {
			result := client.CheckNumber(context.Background(), "2175550199")
			require.False(t, result.OK())
			assert.False(t, result.Verdict.IsDNC)
			assert.Equal(t, errorDetails[client.Source()], result.Verdict.Details)
			assert.Equal(t, ErrCodeProviderUnavailable, result.Failure.Code)
			assert.True(t, result.Failure.Retry)
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		server := jsonServer(t, http.StatusOK, `not json`)
		for _, client := range newClients(server.URL, 0) {
			result := client.CheckNumber(context.Background(), "2175550199")
			require.False(t, result.OK())
			assert.False(t, result.Verdict.IsDNC)
			assert.Equal(t, errorDetails[client.Source()], result.Verdict.Details)
			assert.Equal(t, ErrCodeInvalidResponse, result.Failure.Code)
		}
	})

	t.Run("json array payload", func(t *testing.T) {
		server := jsonServer(t, http.StatusOK, `[true]`)
		for _, client := range newClients(server.URL, 0) {
			result := client.CheckNumber(context.Background(), "2175550199")
			require.False(t, result.OK())
			assert.Equal(t, ErrCodeInvalidResponse, result.Failure.Code)
		}
	})

	t.Run("null payload", func(t *testing.T) {
		server := jsonServer(t, http.StatusOK, `null`)
		for _, client := range newClients(server.URL, 0) {
			result := client.CheckNumber(context.Background(), "2175550199")
			require.False(t, result.OK())
			assert.False(t, result.Verdict.IsDNC)
			assert.Equal(t, errorDetails[client.Source()], result.Verdict.Details)
			assert.Equal(t, ErrCodeInvalidResponse, result.Failure.Code)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		endpoint := server.URL
		server.Close()

		for _, client := range newClients(endpoint, 0) {
			result := client.CheckNumber(context.Background(), "2175550199")
			require.False(t, result.OK())
			assert.False(t, result.Verdict.IsDNC)
			assert.Equal(t, ErrCodeConnectionFailed, result.Failure.Code)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(server.Close)
		t.Cleanup(func() { close(release) })

		for _, client := range newClients(server.URL, 50*time.Millisecond) {
			result := client.CheckNumber(context.Background(), "2175550199")
			require.False(t, result.OK())
			assert.False(t, result.Verdict.IsDNC)
			assert.Equal(t, ErrCodeTimeout, result.Failure.Code)
		}
	})
}

func TestNewDefaultClients_Order(t *testing.T) {
	clients := NewDefaultClients(ClientOptions{}, nil)
	require.Len(t, clients, 3)
	assert.Equal(t, dnc.SourceTCPA, clients[0].Source())
	assert.Equal(t, dnc.SourcePerson, clients[1].Source())
	assert.Equal(t, dnc.SourcePremium, clients[2].Source())

	tcpa := clients[0].(*TCPAProvider)
	assert.Equal(t, DefaultTCPAEndpoint, tcpa.lookup.endpoint)
	assert.Equal(t, DefaultQueryParam, tcpa.lookup.param)
}

func TestCustomQueryParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2175550199", r.URL.Query().Get("phone"))
		assert.Equal(t, "1", r.URL.Query().Get("v"), "existing query values are kept")
		_, _ = w.Write([]byte(`{"dnc": true}`))
	}))
	defer server.Close()

	provider := NewTCPAProvider(Config{Endpoint: server.URL + "?v=1", QueryParam: "phone"}, nil)
	result := provider.CheckNumber(context.Background(), "2175550199")
	require.True(t, result.OK())
	assert.True(t, result.Verdict.IsDNC)
}

func TestTruthy(t *testing.T) {
	assert.False(t, truthy(nil))
	assert.False(t, truthy(false))
	assert.False(t, truthy(0.0))
	assert.False(t, truthy(""))
	assert.True(t, truthy(true))
	assert.True(t, truthy(2.5))
	assert.True(t, truthy("no"))
	assert.True(t, truthy(map[string]any{}))
	assert.True(t, truthy([]any{}))
}
