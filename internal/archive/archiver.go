// Package archive writes snappy-compressed CSV snapshots of published grids
// to object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/golang/snappy"

	"github.com/intakegrid/intakegrid/internal/grid"
	"github.com/intakegrid/intakegrid/internal/storage"
	"github.com/intakegrid/intakegrid/pkg/types"
)

// Archiver renders published grids into CSV snapshots and uploads them.
type Archiver struct {
	storage storage.ObjectStorage
	workDir string
}

// NewArchiver creates an archiver that stages snapshot files in workDir
// before uploading them to the given storage backend.
func NewArchiver(store storage.ObjectStorage, workDir string) *Archiver {
	return &Archiver{storage: store, workDir: workDir}
}

// SnapshotPath returns the object path for a grid snapshot.
func SnapshotPath(name, gridID string) string {
	return fmt.Sprintf("grids/%s/%s.csv.sz", name, gridID)
}

// WriteSnapshot renders the full sheet layout (banner, lock notice, header,
// data rows), compresses it with snappy, and uploads it. Returns the object
// path of the uploaded snapshot.
func (a *Archiver) WriteSnapshot(ctx context.Context, record *grid.Record, rows []types.FlatRow) (string, error) {
	sheet := grid.RenderSheet(record, rows)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range sheet {
		if err := w.Write(row[:]); err != nil {
			return "", fmt.Errorf("archive: failed to encode snapshot row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("archive: failed to encode snapshot: %w", err)
	}

	compressed := snappy.Encode(nil, buf.Bytes())

	tmp, err := os.CreateTemp(a.workDir, "snapshot-*.csv.sz")
	if err != nil {
		return "", fmt.Errorf("archive: failed to create staging file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		return "", fmt.Errorf("archive: failed to write staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("archive: failed to close staging file: %w", err)
	}

	objectPath := SnapshotPath(record.Name, record.GridID)
	if err := a.storage.Upload(ctx, tmpPath, objectPath); err != nil {
		return "", fmt.Errorf("archive: failed to upload snapshot %s: %w", objectPath, err)
	}

	return objectPath, nil
}

// ReadSnapshot downloads and decodes a snapshot back into its sheet rows.
func (a *Archiver) ReadSnapshot(ctx context.Context, objectPath string) ([][]string, error) {
	tmp, err := os.CreateTemp(a.workDir, "snapshot-read-*.csv.sz")
	if err != nil {
		return nil, fmt.Errorf("archive: failed to create staging file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := a.storage.Download(ctx, objectPath, tmpPath); err != nil {
		return nil, fmt.Errorf("archive: failed to download snapshot %s: %w", objectPath, err)
	}

	compressed, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to read staging file: %w", err)
	}

	decoded, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to decompress snapshot %s: %w", objectPath, err)
	}

	records, err := csv.NewReader(bytes.NewReader(decoded)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("archive: failed to parse snapshot %s: %w", objectPath, err)
	}

	return records, nil
}
