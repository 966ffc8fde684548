package http

import (
	"errors"
	"io"
	"net/http"

	ierrors "github.com/intakegrid/intakegrid/internal/errors"
	"github.com/intakegrid/intakegrid/internal/importer"
)

// PreviewHandler handles dry-run requests: what an import would produce,
// without any writes.
type PreviewHandler struct {
	importer *importer.Importer
}

// NewPreviewHandler creates a new preview handler.
func NewPreviewHandler(imp *importer.Importer) *PreviewHandler {
	return &PreviewHandler{importer: imp}
}

// ServeHTTP handles POST /v1/preview requests. The body is a raw intake
// document.
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	preview, err := h.importer.PreviewJSON(r.Context(), string(body))
	if err != nil {
		var ie *ierrors.IntakeError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error(), requestID)
			return
		}
		writeError(w, http.StatusInternalServerError, "preview failed", requestID)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}
