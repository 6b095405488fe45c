// Package submission maps accepted form payloads onto a target schema:
// per-field transform directives, table routing, and a small
// pipe-delimited validation rule string applied after mapping.
package submission

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ApplyTransform runs one named transform over a submitted value. The
// dispatch is a pure string-keyed switch; an unrecognized name is the
// identity transform, so a stale directive degrades to a pass-through
// rather than an error.
func ApplyTransform(name string, value any) any {
	switch name {
	case "json_encode":
		encoded, err := json.Marshal(value)
		if err != nil {
			return value
		}
		return string(encoded)

	case "split_name":
		return splitName(value)

	case "file_upload":
		return fileMetadata(value)

	case "lowercase":
		if s, ok := value.(string); ok {
			return strings.ToLower(s)
		}
		return value

	case "uppercase":
		if s, ok := value.(string); ok {
			return strings.ToUpper(s)
		}
		return value

	case "trim":
		if s, ok := value.(string); ok {
			return strings.TrimSpace(s)
		}
		return value

	default:
		return value
	}
}

// splitName splits a free-form full name into first/last parts. The last
// whitespace-separated token is the last name; everything before it is
// the first name.
func splitName(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	parts := strings.Fields(s)
	switch len(parts) {
	case 0:
		return map[string]any{"first_name": "", "last_name": ""}
	case 1:
		return map[string]any{"first_name": parts[0], "last_name": ""}
	default:
		return map[string]any{
			"first_name": strings.Join(parts[:len(parts)-1], " "),
			"last_name":  parts[len(parts)-1],
		}
	}
}

// fileMetadata reduces an upload descriptor to the fields the target
// schema cares about. Values that are not upload descriptors pass through.
func fileMetadata(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	meta := map[string]any{}
	for _, key := range []string{"id", "filename", "size", "content_type", "path", "url"} {
		if v, exists := m[key]; exists {
			meta[key] = v
		}
	}
	if len(meta) == 0 {
		return value
	}
	return meta
}

// isEmptyValue reports whether a mapped value counts as absent for the
// required check.
func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}

func describeValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", v)
}
