package submission

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ruleEmailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// checkRuleString applies a pipe-delimited validation rule string
// (e.g. "required|email|max:120") to one mapped value and returns
// human-readable error strings. Unknown rule names are skipped: the rule
// string shares the fail-open contract of the field rule registry.
func checkRuleString(field string, value any, ruleStr string) []string {
	var errs []string
	for _, raw := range strings.Split(ruleStr, "|") {
		rule := strings.TrimSpace(raw)
		if rule == "" {
			continue
		}

		name, arg := rule, ""
		if i := strings.Index(rule, ":"); i >= 0 {
			name, arg = rule[:i], rule[i+1:]
		}

		switch name {
		case "required":
			if isEmptyValue(value) {
				errs = append(errs, fmt.Sprintf("%s is required", field))
			}

		case "email":
			if s, ok := value.(string); !ok || !ruleEmailRe.MatchString(s) {
				errs = append(errs, fmt.Sprintf("%s must be a valid email address", field))
			}

		case "string":
			if _, ok := value.(string); !ok && value != nil {
				errs = append(errs, fmt.Sprintf("%s must be a string", field))
			}

		case "max":
			limit, err := strconv.Atoi(arg)
			if err != nil {
				continue
			}
			if s, ok := value.(string); ok && len(s) > limit {
				errs = append(errs, fmt.Sprintf("%s must be at most %d characters", field, limit))
			}

		case "in":
			allowed := strings.Split(arg, ",")
			if !inSet(value, allowed) {
				errs = append(errs, fmt.Sprintf("%s must be one of: %s", field, arg))
			}

		case "array":
			switch value.(type) {
			case []any, []string:
			default:
				errs = append(errs, fmt.Sprintf("%s must be a list", field))
			}
		}
	}
	return errs
}

func inSet(value any, allowed []string) bool {
	if value == nil {
		return false
	}
	s := describeValue(value)
	for _, a := range allowed {
		if strings.TrimSpace(a) == s {
			return true
		}
	}
	return false
}
