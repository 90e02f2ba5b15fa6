package values

import (
	"fmt"
)

// UnknownState is returned when an area code is not in the NANP table
const UnknownState = "Unknown"

// PhoneNumber represents a canonical 10-digit North American number
type PhoneNumber struct {
	number string
}

// NewPhoneNumber normalizes raw input and validates it against US numbering-plan rules
func NewPhoneNumber(raw string) (PhoneNumber, error) {
	if raw == "" {
		return PhoneNumber{}, PhoneValidationError{Number: raw, Reason: "phone number cannot be empty"}
	}

	cleaned := Normalize(raw)
	if reason := validationFailure(cleaned); reason != "" {
		return PhoneNumber{}, PhoneValidationError{Number: raw, Reason: reason}
	}

	return PhoneNumber{number: cleaned}, nil
}

// String returns the canonical 10-digit form
func (p PhoneNumber) String() string {
	return p.number
}

// AreaCode returns the first three digits
func (p PhoneNumber) AreaCode() string {
	return AreaCodeOf(p.number)
}

// State returns the state or province owning the area code
func (p PhoneNumber) State() string {
	return StateForAreaCode(p.AreaCode())
}

// Normalize strips formatting and the US country code from a raw line.
// It never fails; malformed input yields a string that IsValidUSNumber rejects.
func Normalize(raw string) string {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch >= '0' && ch <= '9' {
			digits = append(digits, ch)
		}
	}

	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}

	return string(digits)
}

// IsValidUSNumber reports whether a normalized number satisfies the numbering-plan rules
func IsValidUSNumber(number string) bool {
	return validationFailure(number) == ""
}

// AreaCodeOf returns the first three characters, or the whole string when shorter
func AreaCodeOf(number string) string {
	if len(number) < 3 {
		return number
	}
	return number[:3]
}

func validationFailure(number string) string {
	if len(number) != 10 {
		return "must be exactly 10 digits"
	}
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return "must contain only digits"
		}
	}
	if number[0] == '0' || number[0] == '1' {
		return "area code cannot start with 0 or 1"
	}
	if !IsValidAreaCode(number[:3]) {
		return "unassigned area code"
	}
	if number[3] == '0' || number[3] == '1' {
		return "exchange code cannot start with 0 or 1"
	}
	return ""
}

// PhoneValidationError represents validation errors for phone numbers
type PhoneValidationError struct {
	Number string
	Reason string
}

func (e PhoneValidationError) Error() string {
	return fmt.Sprintf("invalid phone number '%s': %s", e.Number, e.Reason)
}
