package builder

import (
	"strings"
	"testing"

	"formsmith-backend/internal/metadata"
)

func validDraft() *metadata.Form {
	return &metadata.Form{
		Slug: "contact",
		Pages: []metadata.Page{
			{
				ID: "p1",
				Fields: []metadata.Field{
					{ID: "name", Type: metadata.FieldText},
					{ID: "topic", Type: metadata.FieldDropdown, Options: []string{"sales", "support"}},
				},
			},
		},
	}
}

func TestValidateForm(t *testing.T) {
	if err := validateForm(validDraft()); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}
}

func TestValidateFormRejectsBadDrafts(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *metadata.Form)
		wantErr string
	}{
		{
			name:    "missing slug",
			mutate:  func(f *metadata.Form) { f.Slug = "" },
			wantErr: "slug is required",
		},
		{
			name:    "no pages",
			mutate:  func(f *metadata.Form) { f.Pages = nil },
			wantErr: "at least one page",
		},
		{
			name: "duplicate field id",
			mutate: func(f *metadata.Form) {
				f.Pages[0].Fields = append(f.Pages[0].Fields, metadata.Field{ID: "name", Type: metadata.FieldText})
			},
			wantErr: "duplicate field id",
		},
		{
			name: "choice field without options",
			mutate: func(f *metadata.Form) {
				f.Pages[0].Fields[1].Options = nil
			},
			wantErr: "requires options",
		},
		{
			name: "condition references its own field",
			mutate: func(f *metadata.Form) {
				f.Pages[0].Fields[0].Conditional = &metadata.ConditionalLogic{
					Operator: metadata.CombineAnd,
					ShowWhen: []metadata.ConditionalRule{
						{FieldID: "name", Operator: "equals", OperatorType: metadata.RuleWithValue, Value: "x"},
					},
				}
			},
			wantErr: "references itself",
		},
		{
			name: "condition references unknown field",
			mutate: func(f *metadata.Form) {
				f.Pages[0].Fields[0].Conditional = &metadata.ConditionalLogic{
					Operator: metadata.CombineAnd,
					ShowWhen: []metadata.ConditionalRule{
						{FieldID: "ghost", Operator: "equals", OperatorType: metadata.RuleWithValue, Value: "x"},
					},
				}
			},
			wantErr: "unknown field",
		},
		{
			name: "mapping references unknown field",
			mutate: func(f *metadata.Form) {
				f.Mapping = &metadata.MappingConfig{
					PrimaryTable: "contacts",
					Fields: map[string]metadata.FieldMapping{
						"ghost": {TargetField: "ghost"},
					},
				}
			},
			wantErr: "unknown field",
		},
		{
			name: "mapping without primary table",
			mutate: func(f *metadata.Form) {
				f.Mapping = &metadata.MappingConfig{
					Fields: map[string]metadata.FieldMapping{
						"name": {TargetField: "full_name"},
					},
				}
			},
			wantErr: "primary_table is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validDraft()
			tt.mutate(form)
			err := validateForm(form)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
