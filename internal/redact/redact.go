// Package redact scrubs sensitive information from strings before they are
// logged. Error messages can carry API keys, JWT tokens, file paths, or
// email addresses; every error logged by handlers goes through Error first.
package redact

import "regexp"

// Redaction placeholders.
const (
	KeyPlaceholder   = "[REDACTED_KEY]"
	JWTPlaceholder   = "[REDACTED_JWT]"
	PathPlaceholder  = "[REDACTED_PATH]"
	EmailPlaceholder = "[REDACTED_EMAIL]"
)

var (
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|key|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
	emailRegex    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	// JWT before the generic key pattern, so tokens get the specific placeholder.
	out := jwtTokenRegex.ReplaceAllString(input, JWTPlaceholder)
	out = apiKeyRegex.ReplaceAllString(out, "$1$2"+KeyPlaceholder)
	out = unixPathRegex.ReplaceAllString(out, PathPlaceholder)
	out = emailRegex.ReplaceAllString(out, EmailPlaceholder)
	return out
}

// Error redacts sensitive information from an error's message.
// Returns an empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
