package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	invoicedoc "github.com/alnah/go-invoicedoc"
	"github.com/alnah/go-invoicedoc/internal/logger"
)

// Error codes returned in the error envelope.
const (
	codeValidation       = "VALIDATION_ERROR"
	codeTemplateMismatch = "TEMPLATE_MISMATCH"
	codeRender           = "RENDER_ERROR"
	codeConversion       = "CONVERSION_ERROR"
	codeNotFound         = "NOT_FOUND"
	codeInvalidJSON      = "INVALID_JSON"
	codeTooLarge         = "PAYLOAD_TOO_LARGE"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	codePDFUnavailable   = "PDF_UNAVAILABLE"
	codeNotReady         = "NOT_READY"
	codeInternal         = "INTERNAL_ERROR"
)

type successEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorEnvelope struct {
	Status string    `json:"status"`
	Error  errorBody `json:"error"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type fieldDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type mismatchDetail struct {
	Missing []string `json:"missing"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	writeJSON(w, statusCode, successEnvelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string, details any) {
	writeJSON(w, statusCode, errorEnvelope{
		Status: "error",
		Error: errorBody{
			Code:      code,
			Message:   message,
			RequestID: logger.RequestID(r.Context()),
			Details:   details,
		},
	})
}

// mapDomainError maps a pipeline error to a status, a code, a client-safe
// message and optional details.
func mapDomainError(err error) (int, string, string, any) {
	switch invoicedoc.KindOf(err) {
	case invoicedoc.KindValidation:
		var details []fieldDetail
		for _, fe := range invoicedoc.FieldErrors(err) {
			details = append(details, fieldDetail{Field: fe.Field, Reason: fe.Reason})
		}
		return http.StatusBadRequest, codeValidation, invoicedoc.ErrValidation.Error(), details
	case invoicedoc.KindTemplateMismatch:
		var mm *invoicedoc.MismatchError
		if errors.As(err, &mm) {
			return http.StatusUnprocessableEntity, codeTemplateMismatch, err.Error(), mismatchDetail{Missing: mm.Missing}
		}
		return http.StatusUnprocessableEntity, codeTemplateMismatch, err.Error(), nil
	case invoicedoc.KindRender:
		return http.StatusInternalServerError, codeRender, "document could not be rendered", nil
	case invoicedoc.KindConversion:
		return http.StatusInternalServerError, codeConversion, "preview could not be rendered", nil
	case invoicedoc.KindNotFound:
		return http.StatusNotFound, codeNotFound, "no generated invoice available", nil
	default:
		switch {
		case errors.Is(err, invoicedoc.ErrBrowserConnect), errors.Is(err, invoicedoc.ErrPoolClosed):
			return http.StatusServiceUnavailable, codePDFUnavailable, "PDF export unavailable", nil
		}
		return http.StatusInternalServerError, codeInternal, "internal server error", nil
	}
}
