package logger

import "strings"

// MaskEmail keeps the first two characters of the local part and stars the
// rest of it. Values without an '@' after at least two characters are
// returned unchanged.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 2 {
		return email
	}
	return email[:2] + strings.Repeat("*", len([]rune(email[2:at]))) + email[at:]
}

// MaskAll replaces every character with '*'.
func MaskAll(s string) string {
	return strings.Repeat("*", len([]rune(s)))
}
