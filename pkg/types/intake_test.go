package types

import (
	"testing"
)

func TestParseIntakeDocument_SectionsPresence(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantSections bool
		wantCount    int
	}{
		{
			name:         "sections present",
			input:        `{"template_name": "T", "conversation_flow": {"sections": [{"section_id": "s1"}]}}`,
			wantSections: true,
			wantCount:    1,
		},
		{
			name:         "sections empty",
			input:        `{"template_name": "T", "conversation_flow": {"sections": []}}`,
			wantSections: true,
			wantCount:    0,
		},
		{
			name:         "sections missing",
			input:        `{"template_name": "T", "conversation_flow": {}}`,
			wantSections: false,
		},
		{
			name:         "sections null",
			input:        `{"template_name": "T", "conversation_flow": {"sections": null}}`,
			wantSections: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseIntakeDocument([]byte(tt.input))
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			got := doc.ConversationFlow.Sections != nil
			if got != tt.wantSections {
				t.Fatalf("sections present = %v, want %v", got, tt.wantSections)
			}
			if tt.wantSections && len(doc.Sections()) != tt.wantCount {
				t.Errorf("section count = %d, want %d", len(doc.Sections()), tt.wantCount)
			}
		})
	}
}

func TestIntakeDocument_VersionDefault(t *testing.T) {
	doc := &IntakeDocument{TemplateName: "T"}
	if doc.Version() != "1.0" {
		t.Errorf("Version() = %q, want 1.0", doc.Version())
	}

	doc.TemplateVersion = "2.3"
	if doc.Version() != "2.3" {
		t.Errorf("Version() = %q, want 2.3", doc.Version())
	}
}

func TestQuestion_Defaults(t *testing.T) {
	q := &Question{ID: "q1"}

	if !q.IsRequired() {
		t.Error("required should default to true")
	}
	if q.EffectiveType() != "text" {
		t.Errorf("EffectiveType() = %q, want text", q.EffectiveType())
	}
	if q.EffectiveMaxItems() != DefaultMaxItems {
		t.Errorf("EffectiveMaxItems() = %d, want %d", q.EffectiveMaxItems(), DefaultMaxItems)
	}

	no := false
	q.Required = &no
	if q.IsRequired() {
		t.Error("explicit required=false should be honored")
	}

	five := 5
	q.MaxItems = &five
	if q.EffectiveMaxItems() != 5 {
		t.Errorf("EffectiveMaxItems() = %d, want 5", q.EffectiveMaxItems())
	}
}

func TestQuestion_IsComplex(t *testing.T) {
	complexTypes := []string{
		TypeServiceObject, TypeTestimonialObject, TypeSocialLinksObject,
		TypeTextArray, TypeFileUpload,
	}
	for _, typ := range complexTypes {
		q := &Question{Type: typ}
		if !q.IsComplex() {
			t.Errorf("type %q should be complex", typ)
		}
	}

	for _, typ := range []string{"", "text", "email", "url", "number"} {
		q := &Question{Type: typ}
		if q.IsComplex() {
			t.Errorf("type %q should not be complex", typ)
		}
	}
}

func TestFieldList_PreservesDeclarationOrder(t *testing.T) {
	input := `{
		"template_name": "T",
		"conversation_flow": {"sections": [{
			"section_id": "s1",
			"questions": [{
				"id": "q1",
				"type": "service_object",
				"fields": {
					"name": {"type": "text"},
					"price": {"type": "number"},
					"description": {"type": "text", "max_length": 200}
				}
			}]
		}]}
	}`

	doc, err := ParseIntakeDocument([]byte(input))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	fields := doc.Sections()[0].Questions[0].Fields
	wantNames := []string{"name", "price", "description"}
	if len(fields) != len(wantNames) {
		t.Fatalf("got %d fields, want %d", len(fields), len(wantNames))
	}
	for i, name := range wantNames {
		if fields[i].Name != name {
			t.Errorf("field %d = %q, want %q", i, fields[i].Name, name)
		}
	}
	if fields[2].Spec.MaxLength.Scalar() != "200" {
		t.Errorf("description max_length = %q, want 200", fields[2].Spec.MaxLength.Scalar())
	}
}

func TestFlatRow_Cells(t *testing.T) {
	row := FlatRow{
		SectionID:   "s1",
		SectionName: "Basics",
		QuestionID:  "q1",
		Prompt:      "Name?",
		Type:        "text",
		Required:    true,
		Validation:  "max_length: 50",
	}

	cells := row.Cells()
	if len(cells) != GridColumns {
		t.Fatalf("got %d cells, want %d", len(cells), GridColumns)
	}
	if cells[2] != "q1" {
		t.Errorf("identity cell = %q, want q1", cells[2])
	}
	if cells[6] != "true" {
		t.Errorf("required cell = %q, want true", cells[6])
	}

	header := HeaderCells()
	if header[2] != "question_id" {
		t.Errorf("header identity column = %q, want question_id", header[2])
	}
}
