package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Validation limits shared by the services.
const (
	PasswordMinLength = 8
	PasswordMaxBytes  = 72 // bcrypt input limit

	TopicSubjectMinLength = 5
	TopicSubjectMaxLength = 200
	TopicMessageMinLength = 10
	CommentMinLength      = 3

	NameMaxLength      = 100
	StudentIDMaxLength = 50
	EmailMaxLength     = 255
	TitleMaxLength     = 255
	LinkMaxLength      = 2048
)

var validate = validator.New()

// IsEmail reports whether s is a syntactically valid email address.
func IsEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// IsHTTPURL reports whether s is an absolute http or https URL.
func IsHTTPURL(s string) bool {
	return validate.Var(s, "required,http_url") == nil
}

// LengthBetween counts runes, not bytes. A max of 0 means unbounded.
func LengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	if n < min {
		return false
	}
	return max == 0 || n <= max
}

// Clean trims surrounding whitespace from user input.
func Clean(s string) string {
	return strings.TrimSpace(s)
}

// CleanPtr trims the pointed-to string; nil stays nil.
func CleanPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// FirstMissing returns the name of the first empty field, in declaration order.
// Fields are given as name/value pairs.
func FirstMissing(fields ...[2]string) (string, bool) {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return f[0], true
		}
	}
	return "", false
}

// CleanList trims every entry and drops empty ones.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
