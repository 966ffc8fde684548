package grid

import (
	"time"

	"github.com/intakegrid/intakegrid/pkg/types"
)

// RenderSheet produces the published sheet layout for a grid: row 1 is the
// metadata banner, row 2 the lock notice, row 3 the fixed header, and rows 4+
// the data rows. Every row is exactly 12 cells wide.
func RenderSheet(record *Record, rows []types.FlatRow) [][types.GridColumns]string {
	sheet := make([][types.GridColumns]string, 0, len(rows)+3)

	var banner [types.GridColumns]string
	banner[0] = "Template: " + record.TemplateName +
		" | Version: " + record.TemplateVersion +
		" | Imported: " + record.ImportedAt.UTC().Format(time.RFC3339)
	sheet = append(sheet, banner)

	var notice [types.GridColumns]string
	notice[0] = LockNotice
	sheet = append(sheet, notice)

	sheet = append(sheet, types.HeaderCells())

	for _, r := range rows {
		sheet = append(sheet, r.Cells())
	}

	return sheet
}
