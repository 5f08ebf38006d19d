package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinUsernameLength = 4
	MaxUsernameLength = 50
	MinPasswordLength = 8
)

// Caller-side uniqueness and confirmation messages.
const (
	MsgEmailTaken        = "This email with user already exist."
	MsgUsernameTaken     = "A user with this username already exists."
	MsgPasswordsMismatch = "Passwords do not match."
)

var (
	validate        = validator.New()
	usernameCharset = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// Email trims and lower-cases raw and checks its syntax.
func Email(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return "", invalid("Enter a valid email address.")
	}
	return email, nil
}

// Username trims raw and applies the account name rules, reserved words
// included.
func Username(raw string) (string, error) {
	username := strings.TrimSpace(raw)

	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return "", invalid("Username must be between %d and %d characters.", MinUsernameLength, MaxUsernameLength)
	}
	if !usernameCharset.MatchString(username) {
		return "", invalid("Username can only contain alphanumeric characters and underscores.")
	}
	if strings.Trim(username, "_") == "" {
		return "", invalid("Username cannot contain only underscores.")
	}
	if strings.TrimFunc(username, unicode.IsDigit) == "" {
		return "", invalid("Username cannot contain only numbers.")
	}
	if strings.IndexFunc(username, unicode.IsLetter) < 0 {
		return "", invalid("Username must include at least one letter.")
	}
	if strings.HasPrefix(username, "_") || strings.HasSuffix(username, "_") {
		return "", invalid("Username cannot start or end with an underscore.")
	}
	if strings.Contains(username, "__") {
		return "", invalid("Username cannot contain consecutive underscores.")
	}
	if strings.ContainsAny(username, "@.") {
		return "", invalid("Username cannot look like an email or contain '.' or '@'.")
	}
	if _, ok := reservedUsername[strings.ToLower(username)]; ok {
		return "", invalid("This username is not allowed.")
	}
	return username, nil
}

// PasswordStrength returns raw unchanged when it is long enough and mixes
// ASCII upper and lower case letters, digits and special characters.
func PasswordStrength(raw string) (string, error) {
	if utf8.RuneCountInString(raw) < MinPasswordLength {
		return "", invalid("Password must be at least %d characters long.", MinPasswordLength)
	}
	if !strings.ContainsFunc(raw, isASCIIUpper) {
		return "", invalid("Password must contain at least one uppercase letter.")
	}
	if !strings.ContainsFunc(raw, isASCIILower) {
		return "", invalid("Password must contain at least one lowercase letter.")
	}
	if !strings.ContainsFunc(raw, unicode.IsDigit) {
		return "", invalid("Password must contain at least one digit.")
	}
	if !strings.ContainsAny(raw, PasswordSpecialChars) {
		return "", invalid("Password must contain at least one special character.")
	}
	return raw, nil
}
