package flatten

import (
	"github.com/intakegrid/intakegrid/pkg/types"
)

// Flatten walks the document's sections and questions in order and
// accumulates each question's projected rows, preserving encounter order.
// Formatters and projection are total, so flattening cannot fail once the
// document has passed the orchestrator's structural check.
func Flatten(doc *types.IntakeDocument) types.RowSet {
	sections := doc.Sections()

	var rows []types.FlatRow
	for i := range sections {
		s := &sections[i]
		for j := range s.Questions {
			q := &s.Questions[j]
			if q.IsComplex() {
				rows = append(rows, ProjectComplex(q, s)...)
			} else {
				rows = append(rows, ProjectStandard(q, s))
			}
		}
	}

	return types.RowSet{Rows: rows, SectionCount: len(sections)}
}

// QuestionCount returns the number of declared questions across all sections,
// before complex-type expansion.
func QuestionCount(doc *types.IntakeDocument) int {
	count := 0
	for _, s := range doc.Sections() {
		count += len(s.Questions)
	}
	return count
}

// FindDuplicateIDs scans row question ids in a single pass and reports every
// id seen more than once, each exactly once, in first-duplicate order.
// Parent ids and synthesized child ids (like "q3.email") share one namespace.
func FindDuplicateIDs(rows []types.FlatRow) []string {
	seen := make(map[string]bool, len(rows))
	reported := make(map[string]bool)

	var dupes []string
	for _, r := range rows {
		id := r.QuestionID
		if seen[id] && !reported[id] {
			reported[id] = true
			dupes = append(dupes, id)
		}
		seen[id] = true
	}
	return dupes
}
