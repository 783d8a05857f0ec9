package utils

import (
	"strings"
	"unicode"
)

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeMobile strips everything but digits, keeping a leading +, so
// "+1 (555) 000-1111" and "+15550001111" identify the same candidate.
func NormalizeMobile(mobile string) string {
	cleaned := strings.TrimSpace(mobile)
	if cleaned == "" {
		return ""
	}

	var result strings.Builder
	for i, r := range cleaned {
		if i == 0 && r == '+' {
			result.WriteRune(r)
		} else if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
