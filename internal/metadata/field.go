package metadata

// FieldType identifies the input widget a field renders as and, through the
// rules registry, which validation operators apply to it.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldDate     FieldType = "date"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldDropdown FieldType = "dropdown"
	FieldFile     FieldType = "file"
)

// KnownFieldTypes lists every field type the builder can create.
var KnownFieldTypes = []FieldType{
	FieldText, FieldTextarea, FieldDate, FieldRadio,
	FieldCheckbox, FieldDropdown, FieldFile,
}

// IsKnown returns true if t is one of the closed set of field types.
func (t FieldType) IsKnown() bool {
	for _, k := range KnownFieldTypes {
		if t == k {
			return true
		}
	}
	return false
}

// HasOptions returns true for field types backed by an options list.
func (t FieldType) HasOptions() bool {
	return t == FieldRadio || t == FieldCheckbox || t == FieldDropdown
}

// ValidationConfig holds a field's declarative rule set, keyed by operator.
// Keys are unique within a field; insertion order is irrelevant.
type ValidationConfig struct {
	Custom map[string]RuleDescriptor `json:"custom,omitempty"`
}

// Field is one input on a form page. Everything on it is plain data:
// compiled predicates are derived from Validation and Conditional at
// evaluation time and are never stored back.
type Field struct {
	ID          string            `json:"id"`
	Label       string            `json:"label"`
	Type        FieldType         `json:"type"`
	Placeholder string            `json:"placeholder,omitempty"`
	HelpText    string            `json:"help_text,omitempty"`
	Options     []string          `json:"options,omitempty"`
	Validation  *ValidationConfig `json:"validation,omitempty"`
	Conditional *ConditionalLogic `json:"conditional_logic,omitempty"`
}

// Rules returns the field's declarative rule map, or nil if it has none.
func (f *Field) Rules() map[string]RuleDescriptor {
	if f == nil || f.Validation == nil {
		return nil
	}
	return f.Validation.Custom
}

// HasConditions returns true if the field's visibility depends on others.
func (f *Field) HasConditions() bool {
	return f.Conditional != nil && len(f.Conditional.ShowWhen) > 0
}
