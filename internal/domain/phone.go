package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone converts a phone number in arbitrary formatting to E.164.
// Accepts "+12149090499", "(214) 909-0499", "214-909-0499", "2149090499",
// "1-214-909-0499" and similar. Numbers are assumed to be US unless they
// carry an explicit non-US country code.
func NormalizePhone(raw string) (string, error) {
	digits := keepDigits(raw)
	if digits == "" {
		return "", fmt.Errorf("%w: %q has no digits", ErrInvalidPhone, raw)
	}

	if strings.HasPrefix(strings.TrimSpace(raw), "+") {
		switch {
		case len(digits) == 11 && strings.HasPrefix(digits, "1"):
			return "+" + digits, nil
		case len(digits) == 10:
			return "+1" + digits, nil
		case len(digits) > 11:
			// International number, keep as given.
			return "+" + digits, nil
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
		}
	}

	switch {
	case len(digits) == 10:
		return "+1" + digits, nil
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits, nil
	case len(digits) > 11:
		return "+" + digits, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone renders a US E.164 number as "(214) 909-0499" for display.
// Non-US numbers are returned unchanged.
func FormatPhone(e164 string) string {
	if strings.HasPrefix(e164, "+1") && len(e164) == 12 {
		return fmt.Sprintf("(%s) %s-%s", e164[2:5], e164[5:8], e164[8:])
	}
	return e164
}
