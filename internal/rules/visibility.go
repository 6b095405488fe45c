package rules

import "formsmith-backend/internal/metadata"

// ResolveVisibility computes the show/hide decision for every listed
// field against a snapshot of current values. It is a pure function: the
// caller re-runs it whenever any referenced value changes and diffs the
// returned map against what it currently renders.
//
// A field with no conditional logic, or with an empty show-when list, is
// always visible. Each conditional rule is compiled against the
// *referenced* field's type (falling back to the text operator set when
// the reference is dangling) and evaluated against the referenced field's
// current value. Dependency cycles are not detected; because every field
// is resolved independently against the same snapshot, a cycle yields
// whatever the snapshot implies rather than recursing.
func ResolveVisibility(fieldIDs []string, fields map[string]*metadata.Field, values map[string]any) map[string]bool {
	visible := make(map[string]bool, len(fieldIDs))
	for _, id := range fieldIDs {
		visible[id] = fieldVisible(fields[id], fields, values)
	}
	return visible
}

func fieldVisible(field *metadata.Field, fields map[string]*metadata.Field, values map[string]any) bool {
	if field == nil || !field.HasConditions() {
		return true
	}

	logic := field.Conditional
	for _, rule := range logic.ShowWhen {
		met := conditionMet(rule, fields, values)

		switch logic.Operator {
		case metadata.CombineOr:
			if met {
				return true
			}
		default: // AND, and anything unrecognized
			if !met {
				return false
			}
		}
	}

	// AND: every rule held. OR: none did.
	return logic.Operator != metadata.CombineOr
}

// conditionMet evaluates one show-when rule. The rule's value doubles as
// the comparison operand (withValue) or the on/off flag (binary); the
// predicate's verdict is coerced to a strict boolean.
func conditionMet(rule metadata.ConditionalRule, fields map[string]*metadata.Field, values map[string]any) bool {
	ref := fields[rule.FieldID]

	refType := metadata.FieldText
	if ref != nil {
		refType = ref.Type
	}

	desc := metadata.RuleDescriptor{Kind: rule.OperatorType, Value: rule.Value}
	pred := Compile(refType, rule.OperatorType, rule.Operator, desc, ref)
	return pred(values[rule.FieldID]).Valid()
}
