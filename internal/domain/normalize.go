package domain

import (
	"strings"
)

// CleanText prepares free text for storage:
//   - trims leading/trailing whitespace
//   - compresses runs of whitespace into one space
//
// Case is preserved.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeCode cleans a short business code and upper-cases it.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(CleanText(code), " ", "-"))
}

// NormalizeEmail trims and lower-cases an e-mail address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
