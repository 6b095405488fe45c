package rules

import "formsmith-backend/internal/metadata"

// BuildValidationContract compiles every rule in the field's declarative
// rule set into a flat operator -> predicate map, the per-field validation
// contract a form renderer plugs into its own validation step.
//
// The contract must be rebuilt whenever the field's descriptors change;
// compiled closures go stale the moment the builder edits a rule, so
// nothing here is cached across passes.
func BuildValidationContract(field *metadata.Field) map[string]Predicate {
	descriptors := field.Rules()
	if len(descriptors) == 0 {
		return nil
	}

	contract := make(map[string]Predicate, len(descriptors))
	for operator, desc := range descriptors {
		contract[operator] = Compile(field.Type, desc.Kind, operator, desc, field)
	}
	return contract
}

// ValidateValue runs the field's full contract against one submitted
// value and returns every failure message. A failing rule never stops the
// remaining rules from running.
func ValidateValue(field *metadata.Field, value any) []string {
	var messages []string
	for _, pred := range BuildValidationContract(field) {
		if res := pred(value); !res.Valid() {
			messages = append(messages, res.Message())
		}
	}
	return messages
}
