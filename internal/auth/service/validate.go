package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aussiebroadwan/authguard/pkg/otpx"
)

const (
	minUsername = 3
	maxUsername = 150
	minPassword = 8
	maxPassword = 256
	maxEmail    = 254
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

// validateUsername accepts letters, digits and @.+-_ only.
func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsername || n > maxUsername {
		return invalid("username", fmt.Sprintf("must be between %d and %d characters", minUsername, maxUsername))
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("@.+-_", r) {
			continue
		}
		return invalid("username", "may only contain letters, digits and @.+-_")
	}
	return nil
}

func validatePassword(field, password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPassword {
		return invalid(field, fmt.Sprintf("must be at least %d characters", minPassword))
	}
	if n > maxPassword {
		return invalid(field, fmt.Sprintf("must be at most %d characters", maxPassword))
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return invalid(field, "cannot be entirely numeric")
	}
	return nil
}

// normalizeEmail trims the address and lower-cases its domain.
func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalid("email", "is required")
	}
	if len(email) > maxEmail {
		return "", invalid("email", "is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", invalid("email", "is not a valid address")
	}

	at := strings.LastIndexByte(email, '@')
	return email[:at] + strings.ToLower(email[at:]), nil
}

// normalizeCode strips the spaces authenticator apps show between digit
// groups and checks the result is a six digit code.
func normalizeCode(code string) (string, error) {
	code = strings.Join(strings.Fields(code), "")
	if code == "" {
		return "", invalid("code", "is required")
	}
	if len(code) != otpx.Digits || strings.IndexFunc(code, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return "", invalid("code", fmt.Sprintf("must be %d digits", otpx.Digits))
	}
	return code, nil
}
