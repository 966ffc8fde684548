package flatten

import (
	"fmt"
	"strings"

	"github.com/intakegrid/intakegrid/pkg/types"
)

// ProjectStandard builds the canonical 12-field row for one question.
// The required flag defaults to true and the type to "text".
func ProjectStandard(q *types.Question, s *types.Section) types.FlatRow {
	return types.FlatRow{
		SectionID:   s.SectionID,
		SectionName: s.SectionName,
		QuestionID:  q.ID,
		Prompt:      q.Prompt,
		Context:     q.Context,
		Type:        q.EffectiveType(),
		Required:    q.IsRequired(),
		Validation:  FormatValidation(q.Validation),
		MapsTo:      FormatMapsTo(q.MapsTo),
		Default:     q.Default.Scalar(),
		Examples:    FormatExamples(q.Examples),
		Options:     FormatOptions(q.Options),
	}
}

// ProjectComplex builds the full row sequence for a complex question: the
// parent row first, then any child rows. The sequence is pending until
// returned — text_array and file_upload patch the parent row's validation
// cell in place — and rows belonging to other questions are never touched.
// An unrecognized type reaching this function contributes only the parent row.
func ProjectComplex(q *types.Question, s *types.Section) []types.FlatRow {
	rows := []types.FlatRow{ProjectStandard(q, s)}

	switch q.Type {
	case types.TypeServiceObject, types.TypeTestimonialObject:
		rows = append(rows, projectNestedFields(q, s, "text")...)

	case types.TypeSocialLinksObject:
		rows = append(rows, projectSocialLinks(q, s)...)

	case types.TypeTextArray:
		// The item cap is prepended to whatever validation the parent row
		// already carries, separator included even when that is empty.
		rows[0].Validation = fmt.Sprintf("max_items: %d, %s", q.EffectiveMaxItems(), rows[0].Validation)

	case types.TypeFileUpload:
		// File constraints replace the formatted validation outright.
		rows[0].Validation = fileUploadValidation(q)
	}

	return rows
}

// projectNestedFields emits one child row per declared field of a
// service_object or testimonial_object question, in declaration order.
func projectNestedFields(q *types.Question, s *types.Section, defaultType string) []types.FlatRow {
	parentMapsTo := FormatMapsTo(q.MapsTo)

	rows := make([]types.FlatRow, 0, len(q.Fields))
	for _, f := range q.Fields {
		fieldType := f.Spec.Type
		if fieldType == "" {
			fieldType = defaultType
		}

		// A bare max_length stands in for validation when the field spec
		// declares no validation of its own.
		validation := f.Spec.Validation
		if validation.IsNull() {
			validation = f.Spec.MaxLength
		}

		rows = append(rows, types.FlatRow{
			SectionID:   s.SectionID,
			SectionName: s.SectionName,
			QuestionID:  q.ID + "." + f.Name,
			Prompt:      q.Prompt + " - " + f.Name,
			Context:     q.Context,
			Type:        fieldType,
			Required:    f.Spec.Required,
			Validation:  FormatValidation(validation),
			MapsTo:      parentMapsTo + "." + f.Name,
			Default:     f.Spec.Default.Scalar(),
		})
	}
	return rows
}

// projectSocialLinks emits one child row per platform of a
// social_links_object question. Children default to type "url", always carry
// the fixed url-format validation, and never carry defaults, examples, or
// options.
func projectSocialLinks(q *types.Question, s *types.Section) []types.FlatRow {
	parentMapsTo := FormatMapsTo(q.MapsTo)

	rows := make([]types.FlatRow, 0, len(q.Fields))
	for _, f := range q.Fields {
		fieldType := f.Spec.Type
		if fieldType == "" {
			fieldType = "url"
		}

		rows = append(rows, types.FlatRow{
			SectionID:   s.SectionID,
			SectionName: s.SectionName,
			QuestionID:  q.ID + "." + f.Name,
			Prompt:      q.Prompt + " - " + f.Name,
			Context:     q.Context,
			Type:        fieldType,
			Required:    f.Spec.Required,
			Validation:  "format: url",
			MapsTo:      parentMapsTo + "." + f.Name,
		})
	}
	return rows
}

// fileUploadValidation builds the validation cell for a file_upload parent
// row from its file type and size constraints. Absent constraints are
// omitted; with neither present the cell is empty.
func fileUploadValidation(q *types.Question) string {
	var parts []string
	if len(q.FileTypes) > 0 {
		parts = append(parts, "file_types: "+strings.Join(q.FileTypes, ","))
	}
	if !q.MaxSize.IsNull() {
		parts = append(parts, "max_size: "+q.MaxSize.Scalar())
	}
	return strings.Join(parts, ", ")
}
