// Package importer orchestrates one intake template import end to end:
// parse, structural check, name resolution, flattening, duplicate detection,
// grid materialization, protection, and snapshot archival.
package importer

import (
	"context"
	"fmt"
	"log"

	"github.com/intakegrid/intakegrid/internal/archive"
	"github.com/intakegrid/intakegrid/internal/errors"
	"github.com/intakegrid/intakegrid/internal/flatten"
	"github.com/intakegrid/intakegrid/internal/grid"
	"github.com/intakegrid/intakegrid/internal/naming"
	"github.com/intakegrid/intakegrid/pkg/types"
)

// Importer sequences the import pipeline against a grid store and an
// optional snapshot archiver.
type Importer struct {
	store    grid.Store
	archiver *archive.Archiver
}

// New creates an importer. archiver may be nil to disable snapshot archival.
func New(store grid.Store, archiver *archive.Archiver) *Importer {
	return &Importer{store: store, archiver: archiver}
}

// Result is the uniform outcome of one import invocation.
type Result struct {
	Success         bool     `json:"success"`
	GridName        string   `json:"grid_name,omitempty"`
	GridID          string   `json:"grid_id,omitempty"`
	TemplateName    string   `json:"template_name,omitempty"`
	TemplateVersion string   `json:"template_version,omitempty"`
	RowCount        int      `json:"row_count"`
	SectionCount    int      `json:"section_count"`
	Fingerprint     string   `json:"fingerprint,omitempty"`
	SnapshotPath    string   `json:"snapshot_path,omitempty"`
	Message         string   `json:"message,omitempty"`
	Error           string   `json:"error,omitempty"`
	ErrorCategory   string   `json:"error_category,omitempty"`
	DuplicateIDs    []string `json:"duplicate_ids,omitempty"`
}

// Preview is the dry-run outcome: what an import would produce, without writes.
type Preview struct {
	TemplateName    string   `json:"template_name"`
	TemplateVersion string   `json:"template_version"`
	SectionCount    int      `json:"section_count"`
	QuestionCount   int      `json:"question_count"`
	RowCount        int      `json:"row_count"`
	DuplicateIDs    []string `json:"duplicate_ids,omitempty"`
	Fingerprint     string   `json:"fingerprint"`
}

// ProcessIntakeJSON runs the full import pipeline on raw template JSON.
// Every failure is terminal for the invocation and is converted into a
// Result with Success=false; the grid store is never written before all
// checks pass.
func (imp *Importer) ProcessIntakeJSON(ctx context.Context, jsonText string, forceNewVersion bool) *Result {
	doc, ierr := parseDocument(jsonText)
	if ierr != nil {
		return failureResult(ierr)
	}

	name, err := naming.ResolveName(ctx, doc.TemplateName, imp.store.NameExists, forceNewVersion)
	if err != nil {
		return failureResult(errors.NewNamingError("failed to resolve destination name", err))
	}

	rows := flatten.Flatten(doc)

	if dupes := flatten.FindDuplicateIDs(rows.Rows); len(dupes) > 0 {
		return failureResult(errors.NewDuplicateError(
			fmt.Sprintf("duplicate question ids: %v", dupes), dupes))
	}

	fingerprint := flatten.FingerprintString(rows.Rows)
	if prior, err := imp.store.FindByFingerprint(ctx, fingerprint); err == nil && prior != nil {
		log.Printf("importer: content of %q is identical to already published grid %q", doc.TemplateName, prior.Name)
	}

	meta := grid.Meta{
		TemplateName:    doc.TemplateName,
		TemplateVersion: doc.Version(),
		Fingerprint:     fingerprint,
	}
	gridID, err := imp.store.CreateOrReplaceGrid(ctx, name, meta, rows.Rows)
	if err != nil {
		return failureResult(errors.NewGridError(errors.CodeGridWriteFailed,
			fmt.Sprintf("failed to materialize grid %q", name), err))
	}

	if err := imp.store.Lock(ctx, name); err != nil {
		return failureResult(errors.NewGridError(errors.CodeLockFailed,
			fmt.Sprintf("failed to lock grid %q", name), err))
	}

	result := &Result{
		Success:         true,
		GridName:        name,
		GridID:          gridID,
		TemplateName:    doc.TemplateName,
		TemplateVersion: doc.Version(),
		RowCount:        len(rows.Rows),
		SectionCount:    rows.SectionCount,
		Fingerprint:     fingerprint,
		Message:         fmt.Sprintf("Imported %d rows from %d sections into %q", len(rows.Rows), rows.SectionCount, name),
	}

	if imp.archiver != nil {
		record, err := imp.store.GetGrid(ctx, name)
		if err != nil {
			return failureResult(errors.NewGridError(errors.CodeGridNotFound,
				fmt.Sprintf("failed to read back grid %q", name), err))
		}
		snapshotPath, err := imp.archiver.WriteSnapshot(ctx, record, rows.Rows)
		if err != nil {
			return failureResult(errors.NewStorageError(
				fmt.Sprintf("grid %q was published but its snapshot failed", name), err))
		}
		result.SnapshotPath = snapshotPath
	}

	log.Printf("importer: %s", result.Message)
	return result
}

// PreviewJSON runs the parse, structural check, flattening, and duplicate
// scan without touching the grid store.
func (imp *Importer) PreviewJSON(ctx context.Context, jsonText string) (*Preview, error) {
	doc, ierr := parseDocument(jsonText)
	if ierr != nil {
		return nil, ierr
	}

	rows := flatten.Flatten(doc)

	return &Preview{
		TemplateName:    doc.TemplateName,
		TemplateVersion: doc.Version(),
		SectionCount:    rows.SectionCount,
		QuestionCount:   flatten.QuestionCount(doc),
		RowCount:        len(rows.Rows),
		DuplicateIDs:    flatten.FindDuplicateIDs(rows.Rows),
		Fingerprint:     flatten.FingerprintString(rows.Rows),
	}, nil
}

// parseDocument parses raw JSON and applies the root-level structural check.
func parseDocument(jsonText string) (*types.IntakeDocument, *errors.IntakeError) {
	doc, err := types.ParseIntakeDocument([]byte(jsonText))
	if err != nil {
		return nil, errors.NewParseError("invalid intake JSON", err)
	}
	if doc.TemplateName == "" {
		return nil, errors.NewValidationError(errors.CodeMissingTemplateName, "template_name is required")
	}
	if doc.ConversationFlow.Sections == nil {
		return nil, errors.NewValidationError(errors.CodeMissingSections, "conversation_flow.sections is required")
	}
	return doc, nil
}

// failureResult converts a pipeline error into the uniform failure shape.
func failureResult(err *errors.IntakeError) *Result {
	result := &Result{
		Success:       false,
		Error:         err.Error(),
		ErrorCategory: string(err.Category),
	}
	if ids, ok := err.Details["question_ids"].([]string); ok {
		result.DuplicateIDs = ids
	}
	return result
}
