package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// asString coerces a field value to a string. Anything that is not a
// string (nil, arrays, maps) is treated as empty rather than stringified,
// so text rules see a missing answer, not a Go type representation.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return ""
	}
}

// asStringSlice coerces a checkbox/dropdown value to its selected options.
// A bare non-empty string counts as a single selection; nil and unexpected
// shapes count as no selection.
func asStringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if vals == "" {
			return nil
		}
		return []string{vals}
	default:
		return nil
	}
}

// paramInt coerces a rule parameter to an integer bound. Descriptor values
// arrive as float64 after a JSON round trip, but builder input may also
// carry ints or numeric strings. A value that cannot be coerced makes the
// rule a no-op rather than an error.
func paramInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// paramString coerces a rule parameter to its string form.
func paramString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// paramStrings coerces a rule parameter to a list of strings. A single
// string parameter is a one-element list.
func paramStrings(v any) []string {
	switch vals := v.(type) {
	case string:
		if vals == "" {
			return nil
		}
		return []string{vals}
	default:
		return asStringSlice(v)
	}
}

// parseDate parses a form date value in ISO form.
func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// today returns midnight of the current day, the comparison anchor for the
// future/past date restrictions.
func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
