package rest

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/mullbar/fraudgraph/internal/domain/errors"
	"github.com/mullbar/fraudgraph/internal/domain/transaction"
	"github.com/mullbar/fraudgraph/internal/infrastructure/cache"
	"github.com/mullbar/fraudgraph/internal/metrics"
	"github.com/mullbar/fraudgraph/internal/service/analysis"
)

// Handler serves the analysis endpoints.
type Handler struct {
	svc         *analysis.Service
	resultCache *cache.ResultCache
	logger      *slog.Logger
	maxUpload   int64
	metrics     *metrics.Registry
}

// NewHandler wires the handler. resultCache may be backed by a nil client,
// in which case every lookup misses.
func NewHandler(svc *analysis.Service, resultCache *cache.ResultCache, logger *slog.Logger, maxUpload int64, reg *metrics.Registry) *Handler {
	return &Handler{
		svc:         svc,
		resultCache: resultCache,
		logger:      logger,
		maxUpload:   maxUpload,
		metrics:     reg,
	}
}

// analyzeResponse wraps the analysis result with ingestion diagnostics.
type analyzeResponse struct {
	*analysis.Result
	RowErrors []transaction.RowError `json:"row_errors,omitempty"`
	Cached    bool                   `json:"cached"`
}

// Analyze accepts a transaction batch and runs the full pipeline
// synchronously. The body may be CSV (text/csv or a multipart "file"
// part) or JSON with a "transactions" array. Identical bytes under the
// same configuration are served from the result cache.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	raw, format, err := h.readDataset(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	key := cache.Key(raw, h.svc.Config().Fingerprint())
	if cached := h.resultCache.Get(r.Context(), key); cached != nil {
		h.metrics.CacheHits.Inc()
		h.writeJSON(w, http.StatusOK, analyzeResponse{Result: cached, Cached: true})
		return
	}
	h.metrics.CacheMisses.Inc()

	var parsed *transaction.ParseResult
	switch format {
	case "json":
		parsed, err = transaction.ParseJSON(bytes.NewReader(raw))
	default:
		parsed, err = transaction.ParseCSV(bytes.NewReader(raw))
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.svc.Analyze(r.Context(), parsed)
	if err != nil {
		h.metrics.RunsFailed.Inc()
		h.writeError(w, r, err)
		return
	}

	h.resultCache.Set(r.Context(), key, result)
	h.metrics.RunsCompleted.Inc()
	h.metrics.RunDuration.Observe(time.Since(start).Seconds())
	h.metrics.AccountsAnalyzed.Add(float64(result.Summary.TotalAccountsAnalyzed))
	h.metrics.AccountsFlagged.Add(float64(result.Summary.SuspiciousAccountsFlagged))
	h.metrics.RowsDropped.Add(float64(result.Summary.RowsDropped))

	h.writeJSON(w, http.StatusOK, analyzeResponse{Result: result, RowErrors: parsed.RowErrors})
}

// readDataset extracts the raw dataset bytes and its format tag. Multipart
// uploads must carry the CSV in a "file" part.
func (h *Handler) readDataset(r *http.Request) ([]byte, string, error) {
	ct := r.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(ct)

	switch mediaType {
	case "multipart/form-data":
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, "", errors.NewDataFormatError(`multipart upload requires a "file" part`).WithCause(err)
		}
		defer file.Close()
		raw, err := io.ReadAll(file)
		if err != nil {
			return nil, "", readBodyError(err)
		}
		return raw, "csv", nil
	case "application/json":
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", readBodyError(err)
		}
		return raw, "json", nil
	default:
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", readBodyError(err)
		}
		return raw, "csv", nil
	}
}

func readBodyError(err error) error {
	var maxBytes *http.MaxBytesError
	if stderrors.As(err, &maxBytes) {
		return errors.NewValidationError("PAYLOAD_TOO_LARGE", "uploaded dataset exceeds the size limit").
			WithStatus(http.StatusRequestEntityTooLarge)
	}
	return errors.NewInternalError("failed to read request body").WithCause(err)
}

// Health reports liveness. The engine is stateless, so a running process
// is a healthy process.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error *errors.AppError `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternalError("unexpected error").WithCause(err)
	}

	status := appErr.StatusCode
	if status >= 500 {
		h.logger.ErrorContext(r.Context(), "request failed",
			"error", err, "code", appErr.Code, "request_id", RequestID(r.Context()))
	} else {
		h.logger.WarnContext(r.Context(), "request rejected",
			"error", err, "code", appErr.Code, "request_id", RequestID(r.Context()))
	}

	// 499 has no official constant; net/http will still send it.
	h.writeJSON(w, status, errorBody{Error: appErr})
}
