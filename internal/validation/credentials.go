// Package validation checks account credentials and request bodies.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

const (
	passwordMinLen = 12
	passwordMaxLen = 128
	usernameMinLen = 3
	usernameMaxLen = 30
	emailMaxLen    = 254
	passwordSymbol = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// rule is one credential check; err is returned when ok fails.
type rule struct {
	ok  func(string) bool
	err error
}

// Rule errors, exported so callers can tell which check failed.
var (
	ErrPasswordTooShort = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong  = errors.New("password must not exceed 128 characters")
	ErrPasswordNoUpper  = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLower  = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoDigit  = errors.New("password must contain at least one digit")
	ErrPasswordNoSymbol = errors.New("password must contain at least one special character (!@#$%^&*)")

	ErrUsernameTooShort = errors.New("username must be at least 3 characters long")
	ErrUsernameTooLong  = errors.New("username must not exceed 30 characters")
	ErrUsernameCharset  = errors.New("username can only contain letters, numbers, underscores, and hyphens")
	ErrUsernameEdge     = errors.New("username cannot start or end with underscore or hyphen")

	ErrEmailFormat  = errors.New("invalid email format")
	ErrEmailTooLong = errors.New("email must not exceed 254 characters")
)

func containsRune(pred func(rune) bool) func(string) bool {
	return func(s string) bool { return strings.IndexFunc(s, pred) >= 0 }
}

func isSymbol(r rune) bool {
	return strings.ContainsRune(passwordSymbol, r)
}

// Lengths count bytes.
var passwordRules = []rule{
	{func(s string) bool { return len(s) >= passwordMinLen }, ErrPasswordTooShort},
	{func(s string) bool { return len(s) <= passwordMaxLen }, ErrPasswordTooLong},
	{containsRune(unicode.IsUpper), ErrPasswordNoUpper},
	{containsRune(unicode.IsLower), ErrPasswordNoLower},
	{containsRune(func(r rune) bool { return r >= '0' && r <= '9' }), ErrPasswordNoDigit},
	{containsRune(isSymbol), ErrPasswordNoSymbol},
}

var usernameRules = []rule{
	{func(s string) bool { return len(s) >= usernameMinLen }, ErrUsernameTooShort},
	{func(s string) bool { return len(s) <= usernameMaxLen }, ErrUsernameTooLong},
	{usernamePattern.MatchString, ErrUsernameCharset},
	{func(s string) bool { return strings.Trim(s, "_-") == s }, ErrUsernameEdge},
}

var emailRules = []rule{
	{emailPattern.MatchString, ErrEmailFormat},
	{func(s string) bool { return len(s) <= emailMaxLen }, ErrEmailTooLong},
}

// check returns the error of the first rule s breaks.
func check(rules []rule, s string) error {
	for _, r := range rules {
		if !r.ok(s) {
			return r.err
		}
	}
	return nil
}

// ValidatePassword enforces length and character-class rules.
func ValidatePassword(password string) error {
	return check(passwordRules, password)
}

// ValidateUsername allows 3 to 30 letters, digits, underscores and hyphens,
// not starting or ending with either punctuation mark.
func ValidateUsername(username string) error {
	return check(usernameRules, username)
}

// ValidateEmail checks the address shape and length. It does not resolve
// the domain.
func ValidateEmail(email string) error {
	return check(emailRules, email)
}
