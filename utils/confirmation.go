package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	confirmationPrefix = "BK-"
	confirmationLength = 6
)

var confirmationSuffix = regexp.MustCompile(`^[0-9a-f]{6}$`)

// ConfirmationCode renders the customer-facing code for an appointment id.
func ConfirmationCode(id uuid.UUID) string {
	s := id.String()
	return confirmationPrefix + strings.ToUpper(s[len(s)-confirmationLength:])
}

// ParseConfirmationCode returns the lower-case id suffix a code refers to.
// The "BK-" prefix is optional and case-insensitive.
func ParseConfirmationCode(code string) (string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	code = strings.TrimPrefix(code, strings.ToLower(confirmationPrefix))
	if !confirmationSuffix.MatchString(code) {
		return "", false
	}
	return code, true
}
