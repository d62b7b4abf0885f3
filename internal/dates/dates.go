// Package dates converts task due dates between the stored ISO form
// (YYYY-MM-DD) and the DD/MM/YYYY form users type and read.
//
// Conversion is purely textual: no calendar validation is performed, so
// "31/02/2025" becomes "2025-02-31".
package dates

import (
	"errors"
	"regexp"
)

// ErrInvalidFormat is returned for input matching neither accepted shape.
var ErrInvalidFormat = errors.New("invalid date format, use DD/MM/YYYY or YYYY-MM-DD")

// StorageLayout is the time layout of stored due dates.
const StorageLayout = "2006-01-02"

var (
	isoDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	displayDate = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
)

// ToStorageFormat normalises user input to YYYY-MM-DD.
func ToStorageFormat(s string) (string, error) {
	if isoDate.MatchString(s) {
		return s, nil
	}
	m := displayDate.FindStringSubmatch(s)
	if m == nil {
		return "", ErrInvalidFormat
	}
	return m[3] + "-" + m[2] + "-" + m[1], nil
}

// ToDisplayFormat renders a stored date as DD/MM/YYYY. Anything not in
// storage form is returned unchanged.
func ToDisplayFormat(s string) string {
	if !isoDate.MatchString(s) {
		return s
	}
	return s[8:10] + "/" + s[5:7] + "/" + s[0:4]
}

// IsStorageFormat reports whether s already has the YYYY-MM-DD shape.
func IsStorageFormat(s string) bool { return isoDate.MatchString(s) }
