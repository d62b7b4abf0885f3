package validation

import (
	"net/mail"
	"slices"
	"strings"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// Email flags a non-empty value that is not a single address.
func Email(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v[field] = "invalid_email"
	}
}

// OneOf flags a non-empty value outside allowed.
func OneOf(field, value string, allowed []string, v Violations) {
	if value == "" {
		return
	}
	if !slices.Contains(allowed, value) {
		v[field] = "invalid_value"
	}
}

// MinLength flags values shorter than n runes.
func MinLength(field, value string, n int, v Violations) {
	if len([]rune(value)) < n {
		v[field] = "too_short"
	}
}
