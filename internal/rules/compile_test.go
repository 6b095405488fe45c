package rules

import (
	"testing"

	"formsmith-backend/internal/metadata"
)

func TestCompileUnknownOperatorFailsOpen(t *testing.T) {
	desc := metadata.RuleDescriptor{Kind: metadata.RuleWithValue, Value: "x", Message: "never shown"}
	pred := Compile(metadata.FieldText, metadata.RuleWithValue, "futureOperator", desc, nil)

	inputs := []any{nil, "", "abc", 42, []string{"a"}, map[string]any{"k": "v"}, true}
	for _, in := range inputs {
		if res := pred(in); !res.Valid() {
			t.Fatalf("unknown operator must always pass, failed for %v", in)
		}
	}
}

func TestCompileDisabledBinaryToggle(t *testing.T) {
	for _, value := range []any{false, nil, "true", 1} {
		desc := metadata.RuleDescriptor{Kind: metadata.RuleBinary, Value: value, Message: "required"}
		pred := Compile(metadata.FieldText, metadata.RuleBinary, "required", desc, nil)
		if res := pred(""); !res.Valid() {
			t.Fatalf("binary toggle with value %v should be inactive", value)
		}
	}
}

func TestCompileMalformedParameterIsNoOp(t *testing.T) {
	// A minLength whose value cannot be coerced to a number must not
	// block anything.
	desc := metadata.RuleDescriptor{Kind: metadata.RuleWithValue, Value: "banana", Message: "too short"}
	pred := Compile(metadata.FieldText, metadata.RuleWithValue, "minLength", desc, nil)
	if res := pred(""); !res.Valid() {
		t.Fatal("malformed minLength parameter should compile to a no-op")
	}

	// Same for a regex that does not compile.
	desc = metadata.RuleDescriptor{Kind: metadata.RuleWithValue, Value: "([", Message: "bad"}
	pred = Compile(metadata.FieldText, metadata.RuleWithValue, "matchesRegex", desc, nil)
	if res := pred("anything"); !res.Valid() {
		t.Fatal("uncompilable pattern should compile to a no-op")
	}
}

func TestCompileKindMismatchFailsOpen(t *testing.T) {
	// "required" exists only as a binary operator; asking for it as
	// withValue is a registry miss.
	desc := metadata.RuleDescriptor{Kind: metadata.RuleWithValue, Value: true, Message: "required"}
	pred := Compile(metadata.FieldText, metadata.RuleWithValue, "required", desc, nil)
	if res := pred(""); !res.Valid() {
		t.Fatal("kind mismatch should fail open")
	}
}
