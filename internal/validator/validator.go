// Package validator holds the pure format checks for Venezuelan national
// identifiers (cedula/RIF) and local phone numbers. Validators return nil on
// success and a descriptive error on failure; they never panic.
package validator

import (
	"errors"
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^(0412|0422|0414|0424|0416|0426|0212)-\d{7}$`)

// FormatNationalID normalizes a raw cedula: uppercase, every character
// outside [A-Z0-9] stripped. "v-12.34.56.78" becomes "V12345678".
func FormatNationalID(value string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(value) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NationalID validates a cedula or RIF. The value is normalized with
// FormatNationalID before the prefix and length rules are applied.
func NationalID(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("national id must not be empty")
	}

	id := FormatNationalID(value)
	if len(id) < 2 {
		return errors.New("national id must start with V, E, J or G followed by digits")
	}

	first := id[0]
	digits := id[1:]

	switch first {
	case 'V', 'E', 'J', 'G':
	default:
		return errors.New("national id must start with V, E, J or G")
	}

	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return errors.New("national id must contain only digits after the type letter")
		}
	}

	switch first {
	case 'V', 'E':
		if len(digits) < 4 || len(digits) > 10 {
			return errors.New("V and E ids require between 4 and 10 digits")
		}
	case 'J', 'G':
		if len(digits) < 9 {
			return errors.New("J and G ids require at least 9 digits")
		}
	}
	return nil
}

// Phone validates a local phone number: one of the known area codes followed
// by a dash and exactly seven digits, e.g. 0412-1234567.
func Phone(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("phone must not be empty")
	}
	if !phonePattern.MatchString(value) {
		return errors.New("phone must use a known area code and the 0XXX-XXXXXXX format")
	}
	return nil
}
