package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	domainErrors "github.com/davidleathers/dnc-scrubber/internal/domain/errors"
)

// ErrorBody is the JSON envelope of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failure
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// classify maps an error to status, code and message
func classify(err error) (int, ErrorDetail) {
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		return domainErrors.GetStatusCode(appErr), ErrorDetail{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge, ErrorDetail{
			Code:    "PAYLOAD_TOO_LARGE",
			Message: "upload exceeds the size limit",
			Details: map[string]interface{}{"limit": maxBytesErr.Limit},
		}
	}

	if errors.Is(err, context.Canceled) {
		return http.StatusRequestTimeout, ErrorDetail{Code: "REQUEST_CANCELED", Message: "Request was canceled"}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout, ErrorDetail{Code: "REQUEST_TIMEOUT", Message: "Request timed out"}
	}

	internal := domainErrors.NewInternalError("An internal error occurred")
	return internal.StatusCode, ErrorDetail{Code: internal.Code, Message: internal.Message}
}

// writeError renders err as a JSON error body and records it on the request span
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, detail := classify(err)
	detail.RequestID = requestIDFrom(r.Context())

	span := trace.SpanFromContext(r.Context())
	span.RecordError(err)
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, detail.Code)
		logger.Error("Request failed",
			zap.String("request_id", detail.RequestID),
			zap.String("code", detail.Code),
			zap.Error(err),
		)
	} else if domainErrors.IsType(err, domainErrors.ErrorTypeValidation) {
		logger.Debug("Request rejected",
			zap.String("request_id", detail.RequestID),
			zap.String("code", detail.Code),
		)
	}

	writeJSON(w, status, ErrorBody{Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
