package flatten

import (
	"testing"

	"github.com/intakegrid/intakegrid/pkg/types"
)

func TestFlatten_RowCountForStandardQuestions(t *testing.T) {
	doc := parseDoc(t, `{
		"template_name": "T",
		"conversation_flow": {"sections": [
			{"section_id": "s1", "questions": [
				{"id": "q1", "question": "A"},
				{"id": "q2", "question": "B", "type": "email"}
			]},
			{"section_id": "s2", "questions": [
				{"id": "q3", "question": "C", "type": "number"}
			]}
		]}
	}`)

	rows := Flatten(doc)
	if len(rows.Rows) != QuestionCount(doc) {
		t.Errorf("got %d rows, want %d (one per standard question)", len(rows.Rows), QuestionCount(doc))
	}
	if rows.SectionCount != 2 {
		t.Errorf("section count = %d, want 2", rows.SectionCount)
	}

	// Rows follow section and question declaration order
	wantOrder := []string{"q1", "q2", "q3"}
	for i, id := range wantOrder {
		if rows.Rows[i].QuestionID != id {
			t.Errorf("row %d id = %q, want %q", i, rows.Rows[i].QuestionID, id)
		}
	}
}

func TestFlatten_EmptySections(t *testing.T) {
	doc := parseDoc(t, `{"template_name": "T", "conversation_flow": {"sections": []}}`)

	rows := Flatten(doc)
	if len(rows.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows.Rows))
	}
	if rows.SectionCount != 0 {
		t.Errorf("section count = %d, want 0", rows.SectionCount)
	}
}

func TestFlatten_ContactScenario(t *testing.T) {
	doc := parseDoc(t, `{
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
	}`)

	rows := Flatten(doc)
	if len(rows.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows.Rows))
	}

	if rows.Rows[0].QuestionID != "q1" || rows.Rows[0].Type != "text" {
		t.Errorf("standard row = %+v", rows.Rows[0])
	}
	if rows.Rows[1].QuestionID != "q2" {
		t.Errorf("parent row id = %q, want q2", rows.Rows[1].QuestionID)
	}

	child := rows.Rows[2]
	if child.QuestionID != "q2.twitter" {
		t.Errorf("child id = %q, want q2.twitter", child.QuestionID)
	}
	if child.Validation != "format: url" {
		t.Errorf("child validation = %q, want %q", child.Validation, "format: url")
	}
	if child.MapsTo != ".twitter" {
		t.Errorf("child maps_to = %q, want .twitter", child.MapsTo)
	}
}

func TestFindDuplicateIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{
			name: "no duplicates",
			ids:  []string{"a", "b", "c"},
			want: nil,
		},
		{
			name: "each duplicate reported once",
			ids:  []string{"a", "b", "a", "c", "b", "b"},
			want: []string{"a", "b"},
		},
		{
			name: "triple occurrence",
			ids:  []string{"x", "x", "x"},
			want: []string{"x"},
		},
		{
			name: "empty input",
			ids:  nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]types.FlatRow, len(tt.ids))
			for i, id := range tt.ids {
				rows[i] = types.FlatRow{QuestionID: id}
			}

			got := FindDuplicateIDs(rows)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			gotSet := make(map[string]bool, len(got))
			for _, id := range got {
				gotSet[id] = true
			}
			for _, id := range tt.want {
				if !gotSet[id] {
					t.Errorf("missing duplicate %q in %v", id, got)
				}
			}
		})
	}
}

func TestFindDuplicateIDs_ChildIDsShareNamespace(t *testing.T) {
	doc := parseDoc(t, `{
		"template_name": "T",
		"conversation_flow": {"sections": [{
			"section_id": "s1",
			"questions": [
				{"id": "q3.email", "question": "Shadowing"},
				{"id": "q3", "question": "Group", "type": "service_object",
					"fields": {"email": {"type": "email"}}}
			]
		}]}
	}`)

	rows := Flatten(doc)
	dupes := FindDuplicateIDs(rows.Rows)
	if len(dupes) != 1 || dupes[0] != "q3.email" {
		t.Errorf("dupes = %v, want [q3.email]", dupes)
	}
}

func TestFingerprint_SensitiveToContent(t *testing.T) {
	base := []types.FlatRow{
		{SectionID: "s1", QuestionID: "q1", Prompt: "A"},
		{SectionID: "s1", QuestionID: "q2", Prompt: "B"},
	}

	same := FingerprintString(base)
	if same != FingerprintString(base) {
		t.Error("fingerprint should be deterministic")
	}

	changed := []types.FlatRow{
		{SectionID: "s1", QuestionID: "q1", Prompt: "A"},
		{SectionID: "s1", QuestionID: "q2", Prompt: "C"},
	}
	if FingerprintString(changed) == same {
		t.Error("differing cell content should change the fingerprint")
	}

	// Cell boundaries matter: "ab"+"c" must not collide with "a"+"bc"
	left := []types.FlatRow{{SectionID: "ab", SectionName: "c"}}
	right := []types.FlatRow{{SectionID: "a", SectionName: "bc"}}
	if FingerprintString(left) == FingerprintString(right) {
		t.Error("cell boundary shifts should change the fingerprint")
	}
}
