// Package verification implements the two-step phone verification
// handshake: send a code, then verify the 4-digit code the user enters.
package verification

import (
	"regexp"
	"strings"
)

const (
	// MinPhoneDigits is the shortest accepted phone number after normalization.
	MinPhoneDigits = 10
	// CodeLength is the number of digits in a verification code.
	CodeLength = 4
)

var codePattern = regexp.MustCompile(`^\d{4}$`)

// NormalizePhone strips every non-digit character.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidatePhone normalizes raw and fails with KindInvalidInput when fewer
// than MinPhoneDigits digits remain.
func ValidatePhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", invalidInput("El número de teléfono es requerido")
	}
	phone := NormalizePhone(raw)
	if len(phone) < MinPhoneDigits {
		return "", invalidInput("El número de teléfono debe tener al menos 10 dígitos")
	}
	return phone, nil
}

// ValidateCode requires exactly four ASCII digits.
func ValidateCode(code string) error {
	if code == "" {
		return invalidInput("El código es requerido")
	}
	if !codePattern.MatchString(code) {
		return invalidInput("El código debe tener 4 dígitos")
	}
	return nil
}
