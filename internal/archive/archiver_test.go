package archive

import (
	"context"
	"testing"
	"time"

	"github.com/intakegrid/intakegrid/internal/grid"
	"github.com/intakegrid/intakegrid/internal/storage"
	"github.com/intakegrid/intakegrid/pkg/types"
)

func newTestArchiver(t *testing.T) *Archiver {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	return NewArchiver(store, t.TempDir())
}

func TestArchiver_SnapshotRoundtrip(t *testing.T) {
	archiver := newTestArchiver(t)
	ctx := context.Background()

	record := &grid.Record{
		GridID:          "g1",
		Name:            "Intake_Contact",
		TemplateName:    "Contact",
		TemplateVersion: "1.0",
		ImportedAt:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	rows := []types.FlatRow{
		{SectionID: "s1", SectionName: "Basics", QuestionID: "q1", Prompt: "Name?", Type: "text", Required: true},
		{SectionID: "s1", SectionName: "Basics", QuestionID: "q2.twitter", Prompt: "Links - twitter", Type: "url", Validation: "format: url", MapsTo: ".twitter"},
	}

	objectPath, err := archiver.WriteSnapshot(ctx, record, rows)
	if err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}
	if objectPath != "grids/Intake_Contact/g1.csv.sz" {
		t.Errorf("object path = %q", objectPath)
	}

	sheet, err := archiver.ReadSnapshot(ctx, objectPath)
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}

	// Banner, notice, header, then the two data rows
	if len(sheet) != 5 {
		t.Fatalf("got %d sheet rows, want 5", len(sheet))
	}
	if len(sheet[2]) != types.GridColumns {
		t.Errorf("header width = %d, want %d", len(sheet[2]), types.GridColumns)
	}
	if sheet[3][2] != "q1" {
		t.Errorf("first data row id = %q, want q1", sheet[3][2])
	}
	if sheet[4][7] != "format: url" {
		t.Errorf("second data row validation = %q, want %q", sheet[4][7], "format: url")
	}
}

func TestArchiver_ReadMissingSnapshot(t *testing.T) {
	archiver := newTestArchiver(t)

	if _, err := archiver.ReadSnapshot(context.Background(), "grids/none/x.csv.sz"); err == nil {
		t.Error("reading a missing snapshot should fail")
	}
}

func TestSnapshotPath(t *testing.T) {
	got := SnapshotPath("Intake_X_v2", "abc")
	if got != "grids/Intake_X_v2/abc.csv.sz" {
		t.Errorf("SnapshotPath = %q", got)
	}
}
