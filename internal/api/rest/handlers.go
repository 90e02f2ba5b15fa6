package rest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
	domainErrors "github.com/davidleathers/dnc-scrubber/internal/domain/errors"
	"github.com/davidleathers/dnc-scrubber/internal/service/report"
)

// DefaultMaxUploadBytes bounds an uploaded number list
const DefaultMaxUploadBytes int64 = 10 << 20

// CheckRunner drives check sessions over a record list
type CheckRunner interface {
	Start(ctx context.Context, records []*dnc.PhoneRecord) (*dnc.CheckSession, error)
	Cancel() error
	Session() *dnc.CheckSession
}

// Handler serves the number list, check and export endpoints
type Handler struct {
	runner         CheckRunner
	logger         *zap.Logger
	version        string
	maxUploadBytes int64
	now            func() time.Time

	mu      sync.RWMutex
	records []*dnc.PhoneRecord
}

// NewHandler creates the API handler
func NewHandler(runner CheckRunner, logger *zap.Logger, version string, maxUploadBytes int64) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		runner:         runner,
		logger:         logger.Named("api"),
		version:        version,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

// NumbersResponse describes the loaded list
type NumbersResponse struct {
	dnc.ValidationSummary
	Records []*dnc.PhoneRecord `json:"records,omitempty"`
}

// CheckResponse wraps a session snapshot
type CheckResponse struct {
	Session dnc.SessionSnapshot `json:"session"`
}

// UploadNumbers replaces the loaded list with the uploaded one.
// Accepts a multipart form with a .txt "file" field or a text/plain body.
func (h *Handler) UploadNumbers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	content, err := h.readUpload(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	records := dnc.ParseRecords(content)
	if len(records) == 0 {
		writeError(w, r, h.logger, domainErrors.NewValidationError("NO_RECORDS", "the uploaded list contains no phone numbers"))
		return
	}

	h.mu.Lock()
	h.records = records
	h.mu.Unlock()

	summary := dnc.Summarize(records)
	h.logger.Info("Number list loaded",
		zap.Int("total", summary.Total),
		zap.Int("valid", summary.Valid),
	)
	writeJSON(w, http.StatusOK, NumbersResponse{ValidationSummary: summary})
}

func (h *Handler) readUpload(r *http.Request) (string, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "", domainErrors.NewValidationError("UNSUPPORTED_CONTENT_TYPE", "a multipart form or text/plain body is required")
	}

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return "", uploadError(err, "failed to parse upload form")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", domainErrors.NewValidationError("MISSING_FILE", "form field \"file\" is required")
		}
		defer file.Close()

		if !dnc.IsTextFile(header.Filename) {
			return "", domainErrors.NewValidationError("INVALID_FILE_TYPE", "only .txt files are accepted").
				WithDetails(map[string]interface{}{"filename": header.Filename})
		}
		body, err := io.ReadAll(file)
		if err != nil {
			return "", uploadError(err, "failed to read uploaded file")
		}
		return string(body), nil

	case "text/plain":
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r.Body); err != nil {
			return "", uploadError(err, "failed to read request body")
		}
		return buf.String(), nil

	default:
		return "", domainErrors.NewValidationError("UNSUPPORTED_CONTENT_TYPE", "a multipart form or text/plain body is required").
			WithDetails(map[string]interface{}{"content_type": mediaType})
	}
}

func uploadError(err error, message string) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	return domainErrors.NewValidationError("INVALID_UPLOAD", message).WithCause(err)
}

// GetNumbers returns the loaded list with validation results
func (h *Handler) GetNumbers(w http.ResponseWriter, r *http.Request) {
	records := h.loaded()
	if len(records) == 0 {
		writeError(w, r, h.logger, domainErrors.NewNotFoundError("number list"))
		return
	}
	writeJSON(w, http.StatusOK, NumbersResponse{
		ValidationSummary: dnc.Summarize(records),
		Records:           records,
	})
}

// StartCheck runs a fresh session over the loaded list
func (h *Handler) StartCheck(w http.ResponseWriter, r *http.Request) {
	records := h.loaded()
	if len(records) == 0 {
		writeError(w, r, h.logger, domainErrors.NewValidationError("NO_RECORDS", "upload a number list before starting a check"))
		return
	}

	// the session outlives the request
	session, err := h.runner.Start(context.WithoutCancel(r.Context()), records)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, CheckResponse{Session: session.Snapshot()})
}

// CancelCheck stops the running session at the next record boundary
func (h *Handler) CancelCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.Cancel(); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, CheckResponse{Session: h.runner.Session().Snapshot()})
}

// GetCheck returns the latest session snapshot
func (h *Handler) GetCheck(w http.ResponseWriter, r *http.Request) {
	session := h.runner.Session()
	if session == nil {
		writeError(w, r, h.logger, domainErrors.NewNotFoundError("check session"))
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{Session: session.Snapshot()})
}

// GetCheckRecords returns every record of the latest session with its status
func (h *Handler) GetCheckRecords(w http.ResponseWriter, r *http.Request) {
	session := h.runner.Session()
	if session == nil {
		writeError(w, r, h.logger, domainErrors.NewNotFoundError("check session"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": session.Snapshot(),
		"records": session.Records(),
	})
}

// GetResults serves one export of the latest session: clean, dnc, summary or archive
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	session := h.runner.Session()
	if session == nil {
		writeError(w, r, h.logger, domainErrors.NewNotFoundError("check session"))
		return
	}
	records := session.Records()
	at := h.now()

	switch kind := r.PathValue("kind"); kind {
	case "clean":
		writeText(w, report.CleanFileName, report.CleanNumbers(records))
	case "dnc":
		writeText(w, report.DNCFileName, report.DNCNumbers(records))
	case "summary":
		writeText(w, report.SummaryFileName, report.Summary(records, at))
	case "archive":
		var buf bytes.Buffer
		if err := report.WriteArchive(&buf, records, at); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", attachment(report.ArchiveFileName))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	default:
		writeError(w, r, h.logger, domainErrors.NewNotFoundError("result "+kind))
	}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

func (h *Handler) loaded() []*dnc.PhoneRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.records
}

func writeText(w http.ResponseWriter, name, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(name))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func attachment(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}
