// Package rules implements the declarative validation and conditional
// visibility engine: a registry of per-field-type operators, a compiler
// from persisted rule descriptors to executable predicates, and the
// resolver that computes field visibility from cross-field conditions.
//
// Everything in this package is a pure function over in-memory data.
// Predicates are recompiled from descriptors on every evaluation pass;
// nothing here is cached, persisted, or shared.
package rules

// Result is the outcome of one predicate invocation. A failing result
// carries the human-readable message configured on the rule.
type Result struct {
	valid   bool
	message string
}

// Pass returns a passing result.
func Pass() Result {
	return Result{valid: true}
}

// Fail returns a failing result with the rule's error message.
func Fail(message string) Result {
	return Result{message: message}
}

// Valid reports whether the checked value satisfied the rule.
func (r Result) Valid() bool { return r.valid }

// Message returns the configured error message for a failing result,
// and the empty string for a passing one.
func (r Result) Message() string {
	if r.valid {
		return ""
	}
	return r.message
}

// Predicate is an executable validation check compiled from a rule
// descriptor. It must never panic: unexpected value shapes degrade to a
// deterministic pass or fail.
type Predicate func(value any) Result

// AlwaysPass is the predicate compiled for unknown operators and disabled
// binary toggles. A stale or forward-incompatible rule must never block a
// valid submission.
func AlwaysPass(any) Result { return Pass() }
