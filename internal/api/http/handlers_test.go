package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/intakegrid/intakegrid/internal/grid"
	"github.com/intakegrid/intakegrid/internal/importer"
)

const contactTemplate = `{
	"template_name": "Contact",
	"conversation_flow": {"sections": [{
		"section_id": "s1",
		"section_name": "Basics",
		"questions": [
			{"id": "q1", "question": "Name?", "type": "text"},
			{"id": "q2", "question": "Links", "type": "social_links_object",
				"fields": {"twitter": {"type": "url"}}}
		]
	}]}
}`

func newTestHandlers(t *testing.T) (*ImportHandler, *PreviewHandler, *GridsHandler) {
	t.Helper()

	store, err := grid.NewStore(filepath.Join(t.TempDir(), "grids.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	imp := importer.New(store, nil)
	return NewImportHandler(imp), NewPreviewHandler(imp), NewGridsHandler(store)
}

func TestImportHandler_RawDocument(t *testing.T) {
	importHandler, _, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/import", strings.NewReader(contactTemplate))
	rec := httptest.NewRecorder()
	importHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result importer.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !result.Success || result.GridName != "Intake_Contact" || result.RowCount != 3 {
		t.Errorf("result = %+v", result)
	}
}

func TestImportHandler_Envelope(t *testing.T) {
	importHandler, _, _ := newTestHandlers(t)

	body := `{"document": ` + contactTemplate + `, "force_new_version": true}`
	req := httptest.NewRequest(http.MethodPost, "/v1/import", strings.NewReader(body))
	rec := httptest.NewRecorder()
	importHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result importer.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if result.GridName != "Intake_Contact_v2" {
		t.Errorf("force_new_version should version the name, got %q", result.GridName)
	}
}

func TestImportHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "malformed body",
			body:       `not json at all`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing sections",
			body:       `{"template_name": "T", "conversation_flow": {}}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate question ids",
			body: `{"template_name": "D", "conversation_flow": {"sections": [{
				"section_id": "s1",
				"questions": [{"id": "q1"}, {"id": "q1"}]
			}]}}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			importHandler, _, _ := newTestHandlers(t)

			req := httptest.NewRequest(http.MethodPost, "/v1/import", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			importHandler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestImportHandler_MethodNotAllowed(t *testing.T) {
	importHandler, _, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/import", nil)
	rec := httptest.NewRecorder()
	importHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestPreviewHandler(t *testing.T) {
	_, previewHandler, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/preview", strings.NewReader(contactTemplate))
	rec := httptest.NewRecorder()
	previewHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var preview importer.Preview
	if err := json.Unmarshal(rec.Body.Bytes(), &preview); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if preview.TemplateName != "Contact" || preview.RowCount != 3 || preview.QuestionCount != 2 {
		t.Errorf("preview = %+v", preview)
	}
}

func TestPreviewHandler_InvalidDocument(t *testing.T) {
	_, previewHandler, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/preview", strings.NewReader(`{"conversation_flow": {}}`))
	rec := httptest.NewRecorder()
	previewHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGridsHandler_ListAndGet(t *testing.T) {
	importHandler, _, gridsHandler := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/import", strings.NewReader(contactTemplate))
	rec := httptest.NewRecorder()
	importHandler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed import failed: %s", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/grids", nil)
	rec = httptest.NewRecorder()
	gridsHandler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var list struct {
		Grids []GridSummary `json:"grids"`
		Count int           `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to parse list: %v", err)
	}
	if list.Count != 1 || list.Grids[0].Name != "Intake_Contact" || !list.Grids[0].Locked {
		t.Errorf("list = %+v", list)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/grids/Intake_Contact", nil)
	rec = httptest.NewRecorder()
	gridsHandler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	var detail GridDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("failed to parse detail: %v", err)
	}
	if detail.Name != "Intake_Contact" || detail.RowCount != 3 {
		t.Errorf("detail = %+v", detail.GridSummary)
	}
	// Banner, notice, header, then three data rows
	if len(detail.Sheet) != 6 {
		t.Errorf("sheet rows = %d, want 6", len(detail.Sheet))
	}
	if len(detail.ColumnLocks) != len(grid.ProtectedColumns) {
		t.Errorf("column locks = %v", detail.ColumnLocks)
	}
}

func TestGridsHandler_NotFound(t *testing.T) {
	_, _, gridsHandler := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/grids/Intake_Missing", nil)
	rec := httptest.NewRecorder()
	gridsHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMiddleware_RequestID(t *testing.T) {
	var captured string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured == "" {
		t.Error("request id should be generated")
	}
	if rec.Header().Get("X-Request-ID") != captured {
		t.Error("request id should be echoed in the response header")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured != "caller-supplied" {
		t.Errorf("caller-supplied request id should be honored, got %q", captured)
	}
}

func TestMiddleware_Recovery(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
