package metadata

import (
	"bytes"
	"encoding/json"
	"testing"
)

func sampleForm() *Form {
	return &Form{
		ID:        "f1",
		Slug:      "contact-us",
		Title:     "Contact Us",
		Published: true,
		Pages: []Page{
			{
				ID:    "p1",
				Title: "Page 1",
				Fields: []Field{
					{
						ID:    "name",
						Label: "Name",
						Type:  FieldText,
						Validation: &ValidationConfig{
							Custom: map[string]RuleDescriptor{
								"required":  {Kind: RuleBinary, Value: true, Message: "Name is required"},
								"minLength": {Kind: RuleWithValue, Value: float64(3), Message: "Too short"},
							},
						},
					},
					{
						ID:      "topic",
						Label:   "Topic",
						Type:    FieldDropdown,
						Options: []string{"sales", "support"},
					},
					{
						ID:    "details",
						Label: "Details",
						Type:  FieldTextarea,
						Conditional: &ConditionalLogic{
							Operator: CombineAnd,
							ShowWhen: []ConditionalRule{
								{FieldID: "topic", Operator: "contains", OperatorType: RuleWithValue, Value: "support"},
							},
						},
					},
				},
			},
		},
	}
}

func TestFormRoundTrip(t *testing.T) {
	form := sampleForm()

	first, err := json.Marshal(form)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var parsed Form
	if err := json.Unmarshal(first, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	second, err := json.Marshal(&parsed)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}

	// Descriptors and conditional logic are plain data: serializing the
	// parsed copy must reproduce the original bytes exactly.
	if !bytes.Equal(first, second) {
		t.Fatalf("round trip not byte-identical:\n%s\nvs\n%s", first, second)
	}
}

func TestGetField(t *testing.T) {
	form := sampleForm()

	if f := form.GetField("details"); f == nil || f.Type != FieldTextarea {
		t.Fatalf("expected details field, got %v", f)
	}
	if f := form.GetField("missing"); f != nil {
		t.Fatalf("expected nil for unknown id, got %v", f)
	}
	if got := form.FieldIDs(); len(got) != 3 || got[0] != "name" || got[2] != "details" {
		t.Fatalf("unexpected field ids: %v", got)
	}
}

func TestRuleDescriptorEnabled(t *testing.T) {
	cases := []struct {
		name string
		d    RuleDescriptor
		want bool
	}{
		{"binary true", RuleDescriptor{Kind: RuleBinary, Value: true}, true},
		{"binary false", RuleDescriptor{Kind: RuleBinary, Value: false}, false},
		{"binary missing value", RuleDescriptor{Kind: RuleBinary}, false},
		{"binary non-bool value", RuleDescriptor{Kind: RuleBinary, Value: "yes"}, false},
		{"withValue always on", RuleDescriptor{Kind: RuleWithValue, Value: 3}, true},
	}
	for _, tc := range cases {
		if got := tc.d.Enabled(); got != tc.want {
			t.Errorf("%s: Enabled() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRegistryUpsertAndSlugIndex(t *testing.T) {
	reg := NewRegistry()
	form := sampleForm()
	reg.Load([]*Form{form})

	if reg.GetFormBySlug("contact-us") == nil {
		t.Fatal("expected form by slug")
	}

	renamed := *form
	renamed.Slug = "reach-us"
	reg.Upsert(&renamed)

	if reg.GetFormBySlug("contact-us") != nil {
		t.Fatal("old slug should be dropped after upsert")
	}
	if reg.GetFormBySlug("reach-us") == nil {
		t.Fatal("new slug should resolve")
	}

	reg.Remove(form.ID)
	if reg.GetForm(form.ID) != nil || reg.GetFormBySlug("reach-us") != nil {
		t.Fatal("remove should drop both indexes")
	}
}
