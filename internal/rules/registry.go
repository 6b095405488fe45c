package rules

import (
	"regexp"
	"strconv"
	"strings"

	"formsmith-backend/internal/metadata"
)

// ValueCompiler builds a predicate from a withValue rule: the comparison
// parameter, the error message, and the owning field. Only the
// checkbox/dropdown count operators read the field, to clamp their bound
// against the number of available options.
type ValueCompiler func(param any, message string, field *metadata.Field) Predicate

// BinaryCompiler builds a predicate from a binary toggle rule.
type BinaryCompiler func(message string) Predicate

// OperatorSet is the operator catalogue available to one field type.
type OperatorSet struct {
	WithValue map[string]ValueCompiler
	Binary    map[string]BinaryCompiler
}

var (
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	urlRe        = regexp.MustCompile(`^(https?://)?[A-Za-z0-9][A-Za-z0-9.-]*\.[A-Za-z]{2,}(:\d+)?(/\S*)?$`)
	alphaRe      = regexp.MustCompile(`^[A-Za-z]+$`)
	alnumRe      = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	noSpecialRe  = regexp.MustCompile(`^[A-Za-z0-9 ]*$`)
	phoneRe      = regexp.MustCompile(`^\+?[0-9][0-9\s().-]{5,18}$`)
	whitespaceRe = regexp.MustCompile(`\s`)
	isoDateRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var textOps = OperatorSet{
	WithValue: map[string]ValueCompiler{
		"equals": func(param any, message string, _ *metadata.Field) Predicate {
			want, ok := paramString(param)
			if !ok {
				return AlwaysPass
			}
			return func(v any) Result {
				return verdict(strings.EqualFold(asString(v), want), message)
			}
		},
		"exactLength": lengthOp(func(n, bound int) bool { return n == bound }),
		"minLength":   lengthOp(func(n, bound int) bool { return n >= bound }),
		"maxLength":   lengthOp(func(n, bound int) bool { return n <= bound }),
		"startsWith": substringOp(func(s, want string) bool {
			return strings.HasPrefix(s, want)
		}),
		"endsWith": substringOp(func(s, want string) bool {
			return strings.HasSuffix(s, want)
		}),
		"contains": substringOp(func(s, want string) bool {
			return strings.Contains(s, want)
		}),
		"matchesRegex": func(param any, message string, _ *metadata.Field) Predicate {
			pattern, ok := paramString(param)
			if !ok {
				return AlwaysPass
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				// A broken pattern is a no-op, not a wall.
				return AlwaysPass
			}
			return func(v any) Result {
				return verdict(re.MatchString(asString(v)), message)
			}
		},
	},
	Binary: map[string]BinaryCompiler{
		"required": func(message string) Predicate {
			return func(v any) Result {
				return verdict(strings.TrimSpace(asString(v)) != "", message)
			}
		},
		"noWhitespace": func(message string) Predicate {
			return func(v any) Result {
				return verdict(!whitespaceRe.MatchString(asString(v)), message)
			}
		},
		"isEmail":             matchOp(emailRe),
		"isURL":               matchOp(urlRe),
		"isAlpha":             matchOp(alphaRe),
		"isAlphanumeric":      matchOp(alnumRe),
		"noSpecialCharacters": matchOp(noSpecialRe),
		"isValidPhoneNumber":  matchOp(phoneRe),
		"isNumeric": func(message string) Predicate {
			return func(v any) Result {
				s := strings.TrimSpace(asString(v))
				if s == "" {
					return Fail(message)
				}
				_, err := strconv.ParseFloat(s, 64)
				return verdict(err == nil, message)
			}
		},
	},
}

var dateOps = OperatorSet{
	WithValue: map[string]ValueCompiler{
		"isBefore": dateCompareOp(func(d, bound int64) bool { return d < bound }),
		"isAfter":  dateCompareOp(func(d, bound int64) bool { return d > bound }),
		"matchesFormat": func(param any, message string, _ *metadata.Field) Predicate {
			re := isoDateRe
			if pattern, ok := paramString(param); ok && pattern != "" {
				if custom, err := regexp.Compile(pattern); err == nil {
					re = custom
				}
			}
			return func(v any) Result {
				return verdict(re.MatchString(asString(v)), message)
			}
		},
	},
	Binary: map[string]BinaryCompiler{
		"required": func(message string) Predicate {
			return func(v any) Result {
				return verdict(strings.TrimSpace(asString(v)) != "", message)
			}
		},
		"isValidDate": func(message string) Predicate {
			return func(v any) Result {
				_, ok := parseDate(asString(v))
				return verdict(ok, message)
			}
		},
		// Valid for today and anything strictly before today.
		"restrictFutureDate": func(message string) Predicate {
			return func(v any) Result {
				d, ok := parseDate(asString(v))
				if !ok {
					return Fail(message)
				}
				return verdict(!d.After(today()), message)
			}
		},
		// Fails only for strictly-past, non-today dates.
		"restrictPastDate": func(message string) Predicate {
			return func(v any) Result {
				d, ok := parseDate(asString(v))
				if !ok {
					return Fail(message)
				}
				return verdict(!d.Before(today()), message)
			}
		},
	},
}

var radioOps = OperatorSet{
	WithValue: map[string]ValueCompiler{
		"equals": textOps.WithValue["equals"],
	},
	Binary: map[string]BinaryCompiler{
		"required": textOps.Binary["required"],
	},
}

var choiceOps = OperatorSet{
	WithValue: map[string]ValueCompiler{
		"minCount": func(param any, message string, field *metadata.Field) Predicate {
			bound, ok := paramInt(param)
			if !ok {
				return AlwaysPass
			}
			bound = clampCount(bound, optionCount(field), false)
			return func(v any) Result {
				return verdict(len(asStringSlice(v)) >= bound, message)
			}
		},
		"maxCount": func(param any, message string, field *metadata.Field) Predicate {
			bound, ok := paramInt(param)
			if !ok {
				return AlwaysPass
			}
			bound = clampCount(bound, optionCount(field), true)
			return func(v any) Result {
				return verdict(len(asStringSlice(v)) <= bound, message)
			}
		},
		"contains": func(param any, message string, _ *metadata.Field) Predicate {
			needles := paramStrings(param)
			if len(needles) == 0 {
				return AlwaysPass
			}
			return func(v any) Result {
				selected := asStringSlice(v)
				for _, needle := range needles {
					if !selectionContains(selected, needle) {
						return Fail(message)
					}
				}
				return Pass()
			}
		},
	},
	Binary: map[string]BinaryCompiler{
		"required": func(message string) Predicate {
			return func(v any) Result {
				return verdict(len(asStringSlice(v)) > 0, message)
			}
		},
	},
}

var operatorSets = map[metadata.FieldType]OperatorSet{
	metadata.FieldText:     textOps,
	metadata.FieldTextarea: textOps,
	metadata.FieldDate:     dateOps,
	metadata.FieldRadio:    radioOps,
	metadata.FieldCheckbox: choiceOps,
	metadata.FieldDropdown: choiceOps,
}

// OperatorsFor returns the operator catalogue for a field type. Types
// without a dedicated set (file, or anything unknown) fall back to the
// text rules; that fallback is a documented default, not an error.
func OperatorsFor(t metadata.FieldType) OperatorSet {
	if set, ok := operatorSets[t]; ok {
		return set
	}
	return textOps
}

// --- operator constructors ---

func verdict(ok bool, message string) Result {
	if ok {
		return Pass()
	}
	return Fail(message)
}

func lengthOp(cmp func(n, bound int) bool) ValueCompiler {
	return func(param any, message string, _ *metadata.Field) Predicate {
		bound, ok := paramInt(param)
		if !ok {
			return AlwaysPass
		}
		return func(v any) Result {
			return verdict(cmp(len(asString(v)), bound), message)
		}
	}
}

func substringOp(cmp func(s, want string) bool) ValueCompiler {
	return func(param any, message string, _ *metadata.Field) Predicate {
		want, ok := paramString(param)
		if !ok {
			return AlwaysPass
		}
		want = strings.ToLower(want)
		return func(v any) Result {
			return verdict(cmp(strings.ToLower(asString(v)), want), message)
		}
	}
}

func matchOp(re *regexp.Regexp) BinaryCompiler {
	return func(message string) Predicate {
		return func(v any) Result {
			return verdict(re.MatchString(asString(v)), message)
		}
	}
}

func dateCompareOp(cmp func(d, bound int64) bool) ValueCompiler {
	return func(param any, message string, _ *metadata.Field) Predicate {
		s, ok := paramString(param)
		if !ok {
			return AlwaysPass
		}
		bound, ok := parseDate(s)
		if !ok {
			return AlwaysPass
		}
		return func(v any) Result {
			d, ok := parseDate(asString(v))
			if !ok {
				return Fail(message)
			}
			return verdict(cmp(d.Unix(), bound.Unix()), message)
		}
	}
}

func optionCount(field *metadata.Field) int {
	if field == nil {
		return 0
	}
	return len(field.Options)
}

// clampCount bounds a requested count against the number of available
// options. A non-positive or too-large maximum means "no effective limit"
// and collapses to the option count; a minimum is simply kept inside
// [0, options].
func clampCount(requested, options int, isMax bool) int {
	if isMax {
		if requested <= 0 || (options > 0 && requested > options) {
			return options
		}
		return requested
	}
	if requested < 0 {
		return 0
	}
	if options > 0 && requested > options {
		return options
	}
	return requested
}

func selectionContains(selected []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, s := range selected {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}
