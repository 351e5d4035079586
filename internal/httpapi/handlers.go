package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	invoicedoc "github.com/alnah/go-invoicedoc"
	"github.com/alnah/go-invoicedoc/internal/fileutil"
)

// Content types of downloadable artifacts.
const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	pdfContentType  = "application/pdf"
)

// Download names used when the caller supplies none.
const (
	defaultDocxName = "invoice.docx"
	defaultPDFName  = "invoice.pdf"
)

// invoiceResponse is the data payload of a successful generation.
type invoiceResponse struct {
	InvoiceID    string            `json:"invoiceId"`
	Total        invoicedoc.Amount `json:"total"`
	Filename     string            `json:"filename"`
	Document     []byte            `json:"document"` // base64 in JSON
	Preview      string            `json:"preview"`
	PreviewError string            `json:"previewError,omitempty"`
	Warnings     []string          `json:"warnings"`
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "ok", nil)
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			h.logger.WarnContext(r.Context(), "readiness check failed", slog.Any("error", err))
			writeError(w, r, http.StatusServiceUnavailable, codeNotReady, "not ready", nil)
			return
		}
	}
	writeSuccess(w, http.StatusOK, "ready", nil)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeFields(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, codeTooLarge,
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes", nil)
			return
		}
		writeError(w, r, http.StatusBadRequest, codeInvalidJSON, err.Error(), nil)
		return
	}

	res, err := h.service.Generate(r.Context(), raw)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	payload := invoiceResponse{
		InvoiceID: res.Record.InvoiceID(),
		Total:     res.Record.Total(),
		Filename:  res.Filename,
		Document:  res.Document,
		Preview:   res.Preview,
		Warnings:  []string{},
	}
	if res.PreviewErr != nil {
		payload.PreviewError = res.PreviewErr.Error()
	}
	for _, warn := range res.Warnings() {
		payload.Warnings = append(payload.Warnings, warn.Error())
	}
	writeSuccess(w, http.StatusOK, "invoice generated", payload)
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Latest(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeAttachment(w, docxContentType, downloadName(r, defaultDocxName), doc)
}

func (h *Handler) latestPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		writeError(w, r, http.StatusServiceUnavailable, codePDFUnavailable, "PDF export disabled", nil)
		return
	}

	doc, err := h.service.Latest(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	preview, err := h.preview.RenderPreview(r.Context(), doc)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	pdf, err := h.pdf.Export(r.Context(), "Invoice", preview)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeAttachment(w, pdfContentType, downloadName(r, defaultPDFName), pdf)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", slog.String("code", code), slog.Any("error", err))
	}
	writeError(w, r, status, code, message, details)
}

// decodeFields reads one JSON object. Numbers stay json.Number so amounts
// keep their exact decimal text.
func decodeFields(body io.Reader) (invoicedoc.Fields, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw invoicedoc.Fields
	if err := dec.Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		if errors.Is(err, io.EOF) {
			return nil, errors.New("request body must be a JSON object")
		}
		return nil, errors.New("request body must be a JSON object: " + err.Error())
	}
	if raw == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("request body must contain a single JSON value")
	}
	return raw, nil
}

// downloadName returns the sanitized ?filename= value, or fallback.
func downloadName(r *http.Request, fallback string) string {
	name := r.URL.Query().Get("filename")
	if name == "" {
		return fallback
	}
	return fileutil.SanitizeFilename(name, fallback)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, bytes.NewReader(data))
}
