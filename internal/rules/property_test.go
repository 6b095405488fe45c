package rules

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"formsmith-backend/internal/metadata"
)

// Property-based test: every catalogued operator compiles, and the
// resulting predicate never panics for arbitrary scalar or array input.
func TestOperators_PropertyFuzzSafe(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	fieldTypes := append([]metadata.FieldType{}, metadata.KnownFieldTypes...)
	fieldTypes = append(fieldTypes, metadata.FieldType("unknown"))

	values := func(s string, n int, b bool) []any {
		return []any{
			nil, s, n, float64(n), b,
			[]string{s}, []any{s, n, nil},
			map[string]any{"k": s},
		}
	}

	properties.Property("every operator is compilable and panic-free", prop.ForAll(
		func(s string, n int, b bool) bool {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("predicate panicked: %v", r)
				}
			}()

			var param any
			switch n % 3 {
			case 0:
				param = s
			case 1:
				param = float64(n)
			default:
				param = b
			}

			for _, ft := range fieldTypes {
				field := &metadata.Field{ID: "f", Type: ft, Options: []string{"a", "b", "c"}}
				set := OperatorsFor(ft)

				for op := range set.WithValue {
					desc := metadata.RuleDescriptor{Kind: metadata.RuleWithValue, Value: param, Message: "m"}
					pred := Compile(ft, metadata.RuleWithValue, op, desc, field)
					for _, v := range values(s, n, b) {
						res := pred(v)
						if !res.Valid() && res.Message() != "m" {
							return false
						}
					}
				}
				for op := range set.Binary {
					desc := metadata.RuleDescriptor{Kind: metadata.RuleBinary, Value: true, Message: "m"}
					pred := Compile(ft, metadata.RuleBinary, op, desc, field)
					for _, v := range values(s, n, b) {
						res := pred(v)
						if !res.Valid() && res.Message() != "m" {
							return false
						}
					}
				}
			}
			return true
		},
		gen.AnyString(),
		gen.IntRange(-100, 100),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Visibility resolution must be total. It returns a decision for every
// listed field and never panics, whatever the values.
func TestResolveVisibility_PropertyTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("visibility is decided for every field", prop.ForAll(
		func(reason string, pickSupport bool) bool {
			fields, ids := map[string]*metadata.Field{
				"reason": {ID: "reason", Type: metadata.FieldText},
				"details": {
					ID:   "details",
					Type: metadata.FieldTextarea,
					Conditional: &metadata.ConditionalLogic{
						Operator: metadata.CombineAnd,
						ShowWhen: []metadata.ConditionalRule{
							{FieldID: "reason", Operator: "required", OperatorType: metadata.RuleBinary, Value: true},
						},
					},
				},
			}, []string{"reason", "details", "ghost"}

			values := map[string]any{"reason": reason}
			if pickSupport {
				values["reason"] = []any{reason, nil, 7}
			}

			vis := ResolveVisibility(ids, fields, values)
			if len(vis) != len(ids) {
				return false
			}
			for _, id := range ids {
				if _, ok := vis[id]; !ok {
					return false
				}
			}
			// Fields absent from the index are visible by definition.
			return vis["ghost"]
		},
		gen.AnyString(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
