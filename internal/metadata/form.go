package metadata

// Page is an ordered group of fields shown together.
type Page struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// FieldIDs returns the page's field ids in display order.
func (p *Page) FieldIDs() []string {
	ids := make([]string, len(p.Fields))
	for i := range p.Fields {
		ids[i] = p.Fields[i].ID
	}
	return ids
}

// Form is the complete persisted form document. Authored in the builder,
// stored as a JSONB definition, read-only once published except through
// builder edits.
type Form struct {
	ID              string           `json:"id"`
	Slug            string           `json:"slug"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Published       bool             `json:"published"`
	Pages           []Page           `json:"pages"`
	SubmissionRules []ExpressionRule `json:"submission_rules,omitempty"`
	Webhooks        []Webhook        `json:"webhooks,omitempty"`
	Mapping         *MappingConfig   `json:"mapping,omitempty"`
}

// MappingConfig routes accepted submissions onto a target schema.
type MappingConfig struct {
	PrimaryTable string                  `json:"primary_table"`
	Fields       map[string]FieldMapping `json:"fields"`
}

// FieldMapping is a submission-time directive: where a form field's value
// lands, how it is transformed on the way, and the pipe-delimited
// validation rule string applied after transformation.
type FieldMapping struct {
	TargetTable string `json:"target_table"`
	TargetField string `json:"target_field"`
	Transform   string `json:"transform,omitempty"`
	Validation  string `json:"validation,omitempty"`
	Required    bool   `json:"required"`
}

// GetField returns a pointer to the field with the given id, or nil.
func (f *Form) GetField(id string) *Field {
	for pi := range f.Pages {
		for fi := range f.Pages[pi].Fields {
			if f.Pages[pi].Fields[fi].ID == id {
				return &f.Pages[pi].Fields[fi]
			}
		}
	}
	return nil
}

// FieldIndex returns all fields keyed by id.
func (f *Form) FieldIndex() map[string]*Field {
	idx := make(map[string]*Field)
	for pi := range f.Pages {
		for fi := range f.Pages[pi].Fields {
			fld := &f.Pages[pi].Fields[fi]
			idx[fld.ID] = fld
		}
	}
	return idx
}

// FieldIDs returns every field id across all pages, in display order.
func (f *Form) FieldIDs() []string {
	var ids []string
	for pi := range f.Pages {
		ids = append(ids, f.Pages[pi].FieldIDs()...)
	}
	return ids
}

// HasField returns true if the form contains a field with the given id.
func (f *Form) HasField(id string) bool {
	return f.GetField(id) != nil
}
