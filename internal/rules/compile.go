package rules

import "formsmith-backend/internal/metadata"

// Compile turns one declarative rule into an executable predicate.
//
// The operator is looked up in the registry by (fieldType, kind, key); a
// miss compiles to AlwaysPass so that a stale or forward-incompatible
// descriptor can never block a valid submission. A binary toggle whose
// stored value is not literally true is switched off and also compiles to
// AlwaysPass.
//
// field is the owning field for validation rules, or the referenced field
// for conditional rules; it may be nil.
func Compile(fieldType metadata.FieldType, kind metadata.RuleKind, operator string, desc metadata.RuleDescriptor, field *metadata.Field) Predicate {
	ops := OperatorsFor(fieldType)

	switch kind {
	case metadata.RuleWithValue:
		if fn, ok := ops.WithValue[operator]; ok {
			return fn(desc.Value, desc.Message, field)
		}
	case metadata.RuleBinary:
		if !desc.Enabled() {
			return AlwaysPass
		}
		if fn, ok := ops.Binary[operator]; ok {
			return fn(desc.Message)
		}
	}
	return AlwaysPass
}
