package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/middleware"
	"github.com/dukerupert/shopcore/internal/telemetry"
)

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.ECONFLICT, domain.ECONCURRENCY:
		return http.StatusConflict // 409
	case domain.EINTERNAL:
		return http.StatusInternalServerError // 500
	case domain.ENOTIMPL:
		return http.StatusNotImplemented // 501
	case domain.EFETCH:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

const validationMessage = "Please correct the highlighted fields"

type errorBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}

// ErrorResponse logs err and writes it to the client. JSON clients get
// {"error": {...}}; others get plain text. Internal errors hide their details
// and are reported to Sentry.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)
	body := errorBody{
		Code:      code,
		Message:   domain.ErrorMessage(err),
		Retryable: domain.IsRetryable(err),
		Fields:    domain.GetValidationFields(err),
	}
	if body.Fields != nil {
		body.Message = validationMessage
	}

	logger := middleware.GetLogger(r.Context())
	attrs := []any{
		"error", err.Error(),
		"code", code,
		"op", domain.ErrorOp(err),
		"status", status,
	}
	switch {
	case status >= 500:
		logger.Error("request failed", attrs...)
		if code == domain.EINTERNAL {
			telemetry.CaptureErrorFromContext(r.Context(), err, map[string]interface{}{
				"op":   domain.ErrorOp(err),
				"path": r.URL.Path,
			})
		}
	case code == domain.ECONCURRENCY:
		logger.Warn("request rejected", attrs...)
	default:
		logger.Info("request failed", attrs...)
	}

	if !acceptsJSON(r) {
		http.Error(w, body.Message, status)
		return
	}
	WriteJSON(w, status, map[string]errorBody{"error": body})
}

// ValidationErrorResponse writes field errors for a *domain.ValidationError
// and falls back to ErrorResponse for anything else.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if !domain.IsValidationError(err) {
		ErrorResponse(w, r, err)
		return
	}

	WriteJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {
		Code:    domain.EINVALID,
		Message: validationMessage,
		Fields:  domain.GetValidationFields(err),
	}})
}

// acceptsJSON reports whether the client wants JSON. API paths always do.
func acceptsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
