package metadata

// RuleKind distinguishes the two shapes a declarative rule can take.
type RuleKind string

const (
	// RuleBinary is a yes/no toggle with a message (e.g. "required").
	// Its effective truth is Value == true; any other value disables it.
	RuleBinary RuleKind = "binary"

	// RuleWithValue carries a comparison parameter plus a message
	// (e.g. "minLength" with value 5).
	RuleWithValue RuleKind = "withValue"
)

// RuleDescriptor is the persisted, declarative description of one
// validation check. It is plain data: the executable predicate is
// recompiled from it on every evaluation pass and never serialized.
type RuleDescriptor struct {
	Kind    RuleKind `json:"kind"`
	Value   any      `json:"value,omitempty"`
	Message string   `json:"message"`
}

// Enabled reports whether a binary descriptor is switched on.
// WithValue descriptors are always enabled.
func (d RuleDescriptor) Enabled() bool {
	if d.Kind != RuleBinary {
		return true
	}
	on, ok := d.Value.(bool)
	return ok && on
}

// ConditionalRule is one "show when" condition: it references another
// field (never the owning field itself) and names the operator to apply
// against that field's current value.
type ConditionalRule struct {
	FieldID      string   `json:"field_id"`
	Operator     string   `json:"operator"`
	OperatorType RuleKind `json:"operator_type"`
	Value        any      `json:"value,omitempty"`
}

// Conditional composition operators.
const (
	CombineAnd = "AND"
	CombineOr  = "OR"
)

// ConditionalLogic controls a single field's visibility based on other
// fields' values. An empty ShowWhen list means the field is always
// visible, regardless of Operator.
type ConditionalLogic struct {
	ShowWhen []ConditionalRule `json:"show_when"`
	Operator string            `json:"operator"` // AND or OR
}

// ExpressionRule is a form-level submission rule: an expr-lang expression
// evaluated over the submitted answers. The expression describes the
// violation; when it evaluates true the submission fails with Message.
type ExpressionRule struct {
	Expression string `json:"expression"`
	Message    string `json:"message,omitempty"`
}
