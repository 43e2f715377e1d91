package validate

import (
	"regexp"
	"unicode/utf8"
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Rule checks a single field value.
type Rule func(value string) bool

// Schema maps a field name to its rule. Route handlers declare one schema per
// operation instead of wiring validation into route registration.
type Schema map[string]Rule

// Validate returns false as soon as any field fails its rule. Fields without
// a rule are ignored; fields with a rule but missing from the input fail.
func (s Schema) Validate(fields map[string]string) bool {
	for name, rule := range s {
		if !rule(fields[name]) {
			return false
		}
	}
	return true
}

func ID(value string) bool {
	return idPattern.MatchString(value)
}

func NonEmpty(value string) bool {
	return value != ""
}

// MinLen counts characters, not bytes, so multibyte passwords are measured
// the way users see them.
func MinLen(n int) Rule {
	return func(value string) bool {
		return utf8.RuneCountInString(value) >= n
	}
}

// AnyOf passes when at least one of the values is non-empty. Used for
// partial-update bodies where supplying nothing is the only invalid shape.
func AnyOf(values ...string) bool {
	for _, v := range values {
		if v != "" {
			return true
		}
	}
	return false
}
