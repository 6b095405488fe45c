package submission

import (
	"fmt"

	"formsmith-backend/internal/metadata"
)

// Result is the outcome of mapping one submission payload. Validation
// failures never abort the mapping: Errors is populated alongside the
// mapped data and the caller decides whether to accept or reject.
type Result struct {
	// Mapped holds values routed to the primary table, keyed by target field.
	Mapped map[string]any `json:"mapped"`

	// Related holds values routed to secondary tables, keyed by table
	// then target field.
	Related map[string]map[string]any `json:"related,omitempty"`

	// Unmapped holds payload entries with no mapping, passed through as-is.
	Unmapped map[string]any `json:"unmapped,omitempty"`

	// Errors collects human-readable validation failures.
	Errors []string `json:"errors,omitempty"`
}

// Process maps a free-form submission payload onto the configured target
// schema: apply each field's transform, route the value to its target
// table/field, then validate required-ness and the rule string.
func Process(cfg *metadata.MappingConfig, payload map[string]any) *Result {
	res := &Result{
		Mapped:   map[string]any{},
		Related:  map[string]map[string]any{},
		Unmapped: map[string]any{},
	}
	if cfg == nil {
		for k, v := range payload {
			res.Unmapped[k] = v
		}
		return res
	}

	for field, value := range payload {
		mapping, ok := cfg.Fields[field]
		if !ok {
			res.Unmapped[field] = value
			continue
		}

		transformed := ApplyTransform(mapping.Transform, value)

		if mapping.TargetTable == "" || mapping.TargetTable == cfg.PrimaryTable {
			res.Mapped[mapping.TargetField] = transformed
		} else {
			if res.Related[mapping.TargetTable] == nil {
				res.Related[mapping.TargetTable] = map[string]any{}
			}
			res.Related[mapping.TargetTable][mapping.TargetField] = transformed
		}
	}

	// Validation runs over the mapped result, so required mappings with no
	// payload entry at all are caught here too.
	for field, mapping := range cfg.Fields {
		mapped := lookupMapped(res, cfg, mapping)

		if mapping.Required && isEmptyValue(mapped) {
			res.Errors = append(res.Errors, fmt.Sprintf("%s is required", field))
		}
		if mapping.Validation != "" {
			if _, present := payload[field]; present {
				res.Errors = append(res.Errors, checkRuleString(field, mapped, mapping.Validation)...)
			}
		}
	}

	if len(res.Related) == 0 {
		res.Related = nil
	}
	if len(res.Unmapped) == 0 {
		res.Unmapped = nil
	}
	return res
}

func lookupMapped(res *Result, cfg *metadata.MappingConfig, mapping metadata.FieldMapping) any {
	if mapping.TargetTable == "" || mapping.TargetTable == cfg.PrimaryTable {
		return res.Mapped[mapping.TargetField]
	}
	return res.Related[mapping.TargetTable][mapping.TargetField]
}
