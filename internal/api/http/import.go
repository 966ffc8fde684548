package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/intakegrid/intakegrid/internal/errors"
	"github.com/intakegrid/intakegrid/internal/importer"
)

// MaxRequestSize is the maximum allowed request body size (10MB).
const MaxRequestSize = 10 * 1024 * 1024

// ImportRequest is the envelope for an import request. A raw intake document
// (one with a template_name field at its root) is also accepted.
type ImportRequest struct {
	Document        json.RawMessage `json:"document"`
	ForceNewVersion bool            `json:"force_new_version"`
}

// ImportHandler handles template import requests.
type ImportHandler struct {
	importer *importer.Importer
}

// NewImportHandler creates a new import handler.
func NewImportHandler(imp *importer.Importer) *ImportHandler {
	return &ImportHandler{importer: imp}
}

// ServeHTTP handles POST /v1/import requests.
func (h *ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", requestID)
		return
	}
	defer r.Body.Close()

	document, forceNew, ok := decodeImportBody(body)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid request body", requestID)
		return
	}

	result := h.importer.ProcessIntakeJSON(r.Context(), string(document), forceNew)
	writeJSON(w, resultStatus(result), result)
}

// decodeImportBody accepts either the {document, force_new_version} envelope
// or a bare intake document.
func decodeImportBody(body []byte) (json.RawMessage, bool, bool) {
	var req ImportRequest
	if err := json.Unmarshal(body, &req); err == nil && len(req.Document) > 0 {
		return req.Document, req.ForceNewVersion, true
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, false, false
	}
	if _, hasName := probe["template_name"]; !hasName {
		return nil, false, false
	}
	return body, false, true
}

// resultStatus maps an import outcome to its HTTP status code.
func resultStatus(result *importer.Result) int {
	if result.Success {
		return http.StatusOK
	}
	switch errors.ErrorCategory(result.ErrorCategory) {
	case errors.ErrCategoryParse, errors.ErrCategoryValidation:
		return http.StatusBadRequest
	case errors.ErrCategoryDuplicate:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
