package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Complex question type names. Questions of these types expand into multiple
// rows or patch their own parent row during projection; every other type
// projects to a single standard row.
const (
	TypeServiceObject     = "service_object"
	TypeTestimonialObject = "testimonial_object"
	TypeSocialLinksObject = "social_links_object"
	TypeTextArray         = "text_array"
	TypeFileUpload        = "file_upload"
)

// DefaultMaxItems is the item cap applied to text_array questions that do not
// declare one.
const DefaultMaxItems = 10

// IntakeDocument is the root payload describing one conversational intake template.
type IntakeDocument struct {
	TemplateName     string           `json:"template_name"`
	TemplateVersion  string           `json:"template_version"`
	ConversationFlow ConversationFlow `json:"conversation_flow"`
}

// Version returns the declared template version, defaulting to "1.0".
func (d *IntakeDocument) Version() string {
	if d.TemplateVersion == "" {
		return "1.0"
	}
	return d.TemplateVersion
}

// Sections returns the section list, or nil when conversation_flow.sections
// was missing or null.
func (d *IntakeDocument) Sections() []Section {
	if d.ConversationFlow.Sections == nil {
		return nil
	}
	return *d.ConversationFlow.Sections
}

// ConversationFlow wraps the ordered section list. Sections is a pointer so
// the structural check can distinguish a missing/null sections field (reject)
// from an empty one (zero rows).
type ConversationFlow struct {
	Sections *[]Section `json:"sections"`
}

// Section is a named grouping of questions. Order is significant: it
// determines output row order. Section ids are not required to be unique.
type Section struct {
	SectionID   string     `json:"section_id"`
	SectionName string     `json:"section_name"`
	Questions   []Question `json:"questions"`
}

// Question is one intake question. The loosely typed fields (validation,
// maps_to, examples, options, default) accept several JSON shapes and are
// decoded as tagged Values.
type Question struct {
	ID         string `json:"id"`
	Prompt     string `json:"question"`
	Context    string `json:"context"`
	Type       string `json:"type"`
	Required   *bool  `json:"required"`
	Validation Value  `json:"validation"`
	MapsTo     Value  `json:"maps_to"`
	Default    Value  `json:"default"`
	Examples   Value  `json:"examples"`
	Options    Value  `json:"options"`

	// Complex-type configuration.
	Fields    FieldList `json:"fields"`
	MaxItems  *int      `json:"max_items"`
	FileTypes []string  `json:"file_types"`
	MaxSize   Value     `json:"max_size"`
}

// IsRequired returns the required flag, defaulting to true when absent.
func (q *Question) IsRequired() bool {
	return q.Required == nil || *q.Required
}

// EffectiveType returns the question type, defaulting to "text".
func (q *Question) EffectiveType() string {
	if q.Type == "" {
		return "text"
	}
	return q.Type
}

// IsComplex reports whether the question type routes to complex projection.
func (q *Question) IsComplex() bool {
	switch q.Type {
	case TypeServiceObject, TypeTestimonialObject, TypeSocialLinksObject, TypeTextArray, TypeFileUpload:
		return true
	}
	return false
}

// EffectiveMaxItems returns the text_array item cap, defaulting to DefaultMaxItems.
func (q *Question) EffectiveMaxItems() int {
	if q.MaxItems == nil {
		return DefaultMaxItems
	}
	return *q.MaxItems
}

// FieldSpec describes one nested field of a complex question.
type FieldSpec struct {
	Type       string `json:"type"`
	Required   bool   `json:"required"`
	Validation Value  `json:"validation"`
	MaxLength  Value  `json:"max_length"`
	Default    Value  `json:"default"`
}

// FieldEntry pairs a nested field name with its spec.
type FieldEntry struct {
	Name string
	Spec FieldSpec
}

// FieldList is the ordered nested-field map of a complex question. Iteration
// order is the JSON declaration order, which determines child row order.
type FieldList []FieldEntry

// UnmarshalJSON decodes a JSON object into an ordered field list. JSON null
// decodes to an empty list.
func (f *FieldList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("types: fields must be an object, got %v", tok)
	}

	var entries FieldList
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("types: unexpected field name token %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var spec FieldSpec
		if err := json.Unmarshal(raw, &spec); err != nil {
			return fmt.Errorf("types: invalid field spec for %q: %w", key, err)
		}
		entries = append(entries, FieldEntry{Name: key, Spec: spec})
	}

	*f = entries
	return nil
}

// ParseIntakeDocument parses raw JSON text into an IntakeDocument.
func ParseIntakeDocument(data []byte) (*IntakeDocument, error) {
	var doc IntakeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
