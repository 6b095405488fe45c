package engine

import (
	"testing"

	"formsmith-backend/internal/metadata"
)

func surveyForm() *metadata.Form {
	return &metadata.Form{
		ID:        "f1",
		Slug:      "survey",
		Published: true,
		Pages: []metadata.Page{
			{
				ID: "p1",
				Fields: []metadata.Field{
					{
						ID:   "email",
						Type: metadata.FieldText,
						Validation: &metadata.ValidationConfig{
							Custom: map[string]metadata.RuleDescriptor{
								"required": {Kind: metadata.RuleBinary, Value: true, Message: "Email is required"},
								"isEmail":  {Kind: metadata.RuleBinary, Value: true, Message: "Invalid email"},
							},
						},
					},
					{
						ID:      "channel",
						Type:    metadata.FieldRadio,
						Options: []string{"email", "phone"},
					},
					{
						ID:   "phone",
						Type: metadata.FieldText,
						Validation: &metadata.ValidationConfig{
							Custom: map[string]metadata.RuleDescriptor{
								"required": {Kind: metadata.RuleBinary, Value: true, Message: "Phone is required"},
							},
						},
						Conditional: &metadata.ConditionalLogic{
							Operator: metadata.CombineAnd,
							ShowWhen: []metadata.ConditionalRule{
								{FieldID: "channel", Operator: "equals", OperatorType: metadata.RuleWithValue, Value: "phone"},
							},
						},
					},
				},
			},
		},
	}
}

func TestValidateAnswersReportsFailures(t *testing.T) {
	details := ValidateAnswers(surveyForm(), map[string]any{
		"email":   "not-an-email",
		"channel": "email",
	})

	if len(details) != 1 {
		t.Fatalf("expected 1 failure, got %v", details)
	}
	if details[0].Field != "email" || details[0].Rule != "isEmail" {
		t.Fatalf("unexpected detail: %+v", details[0])
	}
	if details[0].Message != "Invalid email" {
		t.Fatalf("unexpected message: %q", details[0].Message)
	}
}

func TestValidateAnswersSkipsHiddenFields(t *testing.T) {
	// phone is required but hidden while channel != "phone".
	details := ValidateAnswers(surveyForm(), map[string]any{
		"email":   "a@b.com",
		"channel": "email",
	})
	if len(details) != 0 {
		t.Fatalf("hidden required field must not fail validation, got %v", details)
	}

	// Selecting the phone channel reveals the field and its rules.
	details = ValidateAnswers(surveyForm(), map[string]any{
		"email":   "a@b.com",
		"channel": "phone",
	})
	if len(details) != 1 || details[0].Field != "phone" {
		t.Fatalf("visible required field should fail when empty, got %v", details)
	}
}

func TestEvaluateSubmissionRules(t *testing.T) {
	form := surveyForm()
	form.SubmissionRules = []metadata.ExpressionRule{
		{
			Expression: `answers.channel == "phone" && answers.phone == nil`,
			Message:    "Phone number is required for phone contact",
		},
	}
	eval := NewExprLangEvaluator()

	details := EvaluateSubmissionRules(eval, form, map[string]any{"channel": "phone"})
	if len(details) != 1 {
		t.Fatalf("expected violation, got %v", details)
	}
	if details[0].Message != "Phone number is required for phone contact" {
		t.Fatalf("unexpected message: %q", details[0].Message)
	}

	details = EvaluateSubmissionRules(eval, form, map[string]any{
		"channel": "phone", "phone": "5551234",
	})
	if len(details) != 0 {
		t.Fatalf("expected pass, got %v", details)
	}
}

func TestEvaluateSubmissionRulesSkipsBrokenExpressions(t *testing.T) {
	form := surveyForm()
	form.SubmissionRules = []metadata.ExpressionRule{
		{Expression: "((", Message: "never"},
		{Expression: "", Message: "never"},
	}

	details := EvaluateSubmissionRules(NewExprLangEvaluator(), form, map[string]any{})
	if len(details) != 0 {
		t.Fatalf("broken expressions must be skipped, got %v", details)
	}
}
