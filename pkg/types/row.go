package types

import "strconv"

// GridColumns is the fixed width of every flattened grid row.
const GridColumns = 12

// FlatRow is the 12-field tabular projection of one question: a standard
// question, a complex parent, or one synthesized child field. Rows are
// immutable once the owning question's projection is finalized.
type FlatRow struct {
	SectionID   string
	SectionName string
	QuestionID  string
	Prompt      string
	Context     string
	Type        string
	Required    bool
	Validation  string
	MapsTo      string
	Default     string
	Examples    string
	Options     string
}

// Cells renders the row as its 12 grid cells in header order.
func (r FlatRow) Cells() [GridColumns]string {
	return [GridColumns]string{
		r.SectionID,
		r.SectionName,
		r.QuestionID,
		r.Prompt,
		r.Context,
		r.Type,
		strconv.FormatBool(r.Required),
		r.Validation,
		r.MapsTo,
		r.Default,
		r.Examples,
		r.Options,
	}
}

// HeaderCells returns the fixed grid header row.
func HeaderCells() [GridColumns]string {
	return [GridColumns]string{
		"section_id",
		"section_name",
		"question_id",
		"question",
		"context",
		"type",
		"required",
		"validation",
		"maps_to",
		"default",
		"examples",
		"options",
	}
}

// RowSet is the ordered output of one flattening call.
type RowSet struct {
	Rows         []FlatRow
	SectionCount int
}
