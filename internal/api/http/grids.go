package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/intakegrid/intakegrid/internal/grid"
	"github.com/intakegrid/intakegrid/pkg/types"
)

// GridSummary is the list-view shape of a published grid.
type GridSummary struct {
	GridID          string `json:"grid_id"`
	Name            string `json:"name"`
	TemplateName    string `json:"template_name"`
	TemplateVersion string `json:"template_version"`
	RowCount        int64  `json:"row_count"`
	Fingerprint     string `json:"fingerprint"`
	Locked          bool   `json:"locked"`
	ImportedAt      string `json:"imported_at"`
}

// GridDetail is the full shape of a published grid: metadata, lock state,
// and the rendered sheet.
type GridDetail struct {
	GridSummary
	LockReason  string            `json:"lock_reason,omitempty"`
	ColumnLocks map[string]string `json:"column_locks,omitempty"`
	Header      []string          `json:"header"`
	Sheet       [][]string        `json:"sheet"`
}

// GridsHandler serves published grid metadata and contents.
type GridsHandler struct {
	store grid.Store
}

// NewGridsHandler creates a new grids handler.
func NewGridsHandler(store grid.Store) *GridsHandler {
	return &GridsHandler{store: store}
}

// ServeHTTP handles GET /v1/grids and GET /v1/grids/{name}.
func (h *GridsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/grids"), "/")
	if name == "" {
		h.list(w, r)
		return
	}
	h.get(w, r, name)
}

func (h *GridsHandler) list(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	records, err := h.store.ListGrids(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list grids", requestID)
		return
	}

	summaries := make([]GridSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, summarize(record))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"grids": summaries,
		"count": len(summaries),
	})
}

func (h *GridsHandler) get(w http.ResponseWriter, r *http.Request, name string) {
	requestID := GetRequestID(r.Context())

	record, err := h.store.GetGrid(r.Context(), name)
	if err != nil {
		if errors.Is(err, grid.ErrGridNotFound) {
			writeError(w, http.StatusNotFound, "grid not found: "+name, requestID)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load grid", requestID)
		return
	}

	rows, err := h.store.GetRows(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load grid rows", requestID)
		return
	}

	columnLocks, err := h.store.ColumnLocks(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load column locks", requestID)
		return
	}

	sheet := grid.RenderSheet(record, rows)
	flat := make([][]string, 0, len(sheet))
	for _, row := range sheet {
		cells := make([]string, types.GridColumns)
		copy(cells, row[:])
		flat = append(flat, cells)
	}

	header := types.HeaderCells()
	detail := GridDetail{
		GridSummary: summarize(record),
		LockReason:  record.LockReason,
		ColumnLocks: columnLocks,
		Header:      header[:],
		Sheet:       flat,
	}

	writeJSON(w, http.StatusOK, detail)
}

// summarize converts a store record into its list-view shape.
func summarize(record *grid.Record) GridSummary {
	return GridSummary{
		GridID:          record.GridID,
		Name:            record.Name,
		TemplateName:    record.TemplateName,
		TemplateVersion: record.TemplateVersion,
		RowCount:        record.RowCount,
		Fingerprint:     record.Fingerprint,
		Locked:          record.Locked,
		ImportedAt:      record.ImportedAt.UTC().Format(time.RFC3339),
	}
}
