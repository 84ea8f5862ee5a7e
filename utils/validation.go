// utils/validation.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const MinClientPhoneDigits = 10

var (
	validate     = validator.New()
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")
	return phonePattern.MatchString(cleaned)
}

// NormalizePhone strips everything but digits.
func NormalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

func ValidateEmail(email string) bool {
	return validate.Var(strings.TrimSpace(email), "required,email") == nil
}
