package rules

import (
	"testing"

	"formsmith-backend/internal/metadata"
)

func nameField() *metadata.Field {
	return &metadata.Field{
		ID:    "name",
		Label: "Name",
		Type:  metadata.FieldText,
		Validation: &metadata.ValidationConfig{
			Custom: map[string]metadata.RuleDescriptor{
				"required":  {Kind: metadata.RuleBinary, Value: true, Message: "Name is required"},
				"minLength": {Kind: metadata.RuleWithValue, Value: float64(3), Message: "At least 3 characters"},
				"maxLength": {Kind: metadata.RuleWithValue, Value: float64(10), Message: "At most 10 characters"},
			},
		},
	}
}

func TestBuildValidationContract(t *testing.T) {
	contract := BuildValidationContract(nameField())

	if len(contract) != 3 {
		t.Fatalf("expected 3 predicates, got %d", len(contract))
	}
	for _, op := range []string{"required", "minLength", "maxLength"} {
		if contract[op] == nil {
			t.Fatalf("missing predicate for %s", op)
		}
	}

	if res := contract["required"](""); res.Valid() || res.Message() != "Name is required" {
		t.Fatalf("required on empty: %v %q", res.Valid(), res.Message())
	}
	if res := contract["minLength"]("Jo"); res.Valid() {
		t.Fatal("minLength should fail on 2 chars")
	}
	if res := contract["maxLength"]("Jo"); !res.Valid() {
		t.Fatal("maxLength should pass on 2 chars")
	}
}

func TestBuildValidationContractEmpty(t *testing.T) {
	if c := BuildValidationContract(&metadata.Field{ID: "x", Type: metadata.FieldText}); c != nil {
		t.Fatalf("field without rules should have no contract, got %v", c)
	}
}

func TestValidateValueCollectsAllFailures(t *testing.T) {
	msgs := ValidateValue(nameField(), "")
	// Empty string fails required and minLength but passes maxLength.
	if len(msgs) != 2 {
		t.Fatalf("expected 2 failures, got %v", msgs)
	}

	if msgs := ValidateValue(nameField(), "Jordan"); msgs != nil {
		t.Fatalf("valid value should produce no messages, got %v", msgs)
	}
}

func TestValidateValueDegradesOnUnexpectedShape(t *testing.T) {
	// An array where a string is expected reads as empty, never panics.
	msgs := ValidateValue(nameField(), []string{"a", "b"})
	if len(msgs) != 2 {
		t.Fatalf("expected required+minLength failures for array input, got %v", msgs)
	}
}

func TestContractIsRecomputedFromDescriptors(t *testing.T) {
	field := nameField()
	first := BuildValidationContract(field)

	// Builder edit: loosen the minimum.
	field.Validation.Custom["minLength"] = metadata.RuleDescriptor{
		Kind: metadata.RuleWithValue, Value: float64(1), Message: "At least 1 character",
	}
	second := BuildValidationContract(field)

	if first["minLength"]("Jo").Valid() {
		t.Fatal("stale contract should still enforce the old bound")
	}
	if !second["minLength"]("Jo").Valid() {
		t.Fatal("rebuilt contract should enforce the edited bound")
	}
}
