package services

import (
	"regexp"
	"strings"

	"tenantadmin/internal/domain"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z][a-z0-9_.]{6,24}$`)
	passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9_.@$]{6,24}$`)
)

const (
	usernameRule = "Username is not valid. Username must start with a letter minimum 6 and maximum 24 characters. Allowed characters are a-z (only lower case), 0-9, '_' (underscore) and '.' (dot)."
	passwordRule = "Password is not valid. Password should be minimum 6 characters and maximum 24. Allowed characters are a-z, A-Z, 0-9, '@', '$', '_' and '.'"
)

func ValidUsername(s string) bool { return usernamePattern.MatchString(s) }
func ValidPassword(s string) bool { return passwordPattern.MatchString(s) }

func validateUsername(s string) error {
	if !ValidUsername(s) {
		return domain.ValidationError{Field: "username", Msg: usernameRule}
	}
	return nil
}

func validatePassword(s string) error {
	if !ValidPassword(s) {
		return domain.ValidationError{Field: "password", Msg: passwordRule}
	}
	return nil
}

func validateRole(r domain.Role) error {
	if !r.Valid() {
		return domain.ValidationError{Field: "role", Msg: "Role is not valid."}
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.ValidationError{Field: field, Msg: field + " is required."}
	}
	return nil
}
