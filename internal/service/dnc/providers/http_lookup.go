package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
)

const maxPayloadBytes = 1 << 20

// httpLookup is the transport shared by every lookup client: one GET with the number as a
// query value, decoded as a JSON object.
type httpLookup struct {
	source   dnc.Source
	label    string
	endpoint string
	param    string
	timeout  time.Duration
	client   *http.Client
	logger   *zap.Logger
	tracer   trace.Tracer
}

func newHTTPLookup(source dnc.Source, label string, config Config, logger *zap.Logger) *httpLookup {
	if config.QueryParam == "" {
		config.QueryParam = DefaultQueryParam
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &httpLookup{
		source:   source,
		label:    label,
		endpoint: config.Endpoint,
		param:    config.QueryParam,
		timeout:  config.Timeout,
		client:   client,
		logger:   logger.Named("lookup").With(zap.String("source", string(source))),
		tracer:   otel.Tracer("dnc.providers"),
	}
}

// fetch performs the lookup and returns the decoded object along with the raw body
func (h *httpLookup) fetch(ctx context.Context, phoneNumber string) (map[string]any, json.RawMessage, error) {
	ctx, span := h.tracer.Start(ctx, "dnc.lookup", trace.WithAttributes(
		attribute.String("dnc.source", string(h.source)),
	))
	defer span.End()

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	payload, raw, err := h.do(ctx, phoneNumber)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.logger.Debug("DNC lookup failed", zap.Error(err))
		return nil, nil, err
	}
	return payload, raw, nil
}

func (h *httpLookup) do(ctx context.Context, phoneNumber string) (map[string]any, json.RawMessage, error) {
	checkURL, err := url.Parse(h.endpoint)
	if err != nil {
		return nil, nil, h.error(ErrCodeInvalidRequest, "invalid endpoint", false, err)
	}
	params := checkURL.Query()
	params.Set(h.param, phoneNumber)
	checkURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL.String(), nil)
	if err != nil {
		return nil, nil, h.error(ErrCodeInvalidRequest, "failed to create request", false, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, h.error(ErrCodeTimeout, "request timed out", true, err)
		}
		return nil, nil, h.error(ErrCodeConnectionFailed, "request failed", true, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, h.error(ErrCodeProviderUnavailable,
			fmt.Sprintf("%s API error: %d", h.label, resp.StatusCode), resp.StatusCode >= 500, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, h.error(ErrCodeTimeout, "reading response timed out", true, err)
		}
		return nil, nil, h.error(ErrCodeConnectionFailed, "failed to read response", true, err)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, h.error(ErrCodeInvalidResponse, "failed to parse response", false, err)
	}
	if payload == nil {
		return nil, nil, h.error(ErrCodeInvalidResponse, "response is not a JSON object", false, nil)
	}

	return payload, json.RawMessage(body), nil
}

func (h *httpLookup) error(code, message string, retry bool, cause error) *ProviderError {
	return &ProviderError{
		Code:     code,
		Message:  message,
		Provider: string(h.source),
		Retry:    retry,
		Cause:    cause,
	}
}

// failure folds a transport or parse error into a negative verdict
func (h *httpLookup) failure(err error) Result {
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		providerErr = h.error(ErrCodeConnectionFailed, "lookup failed", true, err)
	}
	return Result{
		Verdict: dnc.Verdict{
			IsDNC:   false,
			Details: h.label + " API Error",
			Source:  h.source,
		},
		Failure: providerErr,
	}
}

// truthy applies JSON-value truthiness: false, null, 0 and "" are falsy
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// isTrue matches only a literal JSON true
func isTrue(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
