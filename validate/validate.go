// Package validate holds the pure input checks shared by the UI and
// the services. The services never trust the UI and re-run these
// before touching storage.
package validate

import (
	"regexp"
	"strings"
)

// Bounds carried over from the original data model.
const (
	UsernameMinLen = 3
	UsernameMaxLen = 20
	PasswordMinLen = 6
	TitleMaxLen    = 100
	ContentMaxLen  = 1000
)

// FieldError attributes a validation failure to a single input field.
// Key is an i18n catalog key; the presentation layer localizes it.
type FieldError struct {
	Field string
	Key   string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Key
}

// usernamePattern allows letters, digits, underscore and CJK unified
// ideographs, matching the original registration rules.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\x{4e00}-\x{9fa5}]+$`)

// reservedUsernames are disallowed at registration regardless of
// availability.
var reservedUsernames = map[string]struct{}{
	"admin": {}, "administrator": {}, "root": {}, "system": {},
	"user": {}, "guest": {}, "null": {}, "undefined": {}, "test": {},
	"demo": {}, "api": {}, "www": {}, "mail": {}, "email": {},
	"support": {}, "help": {}, "info": {}, "contact": {}, "service": {},
}

// Username checks the relaxed (login-time) rules: non-blank, length
// within bounds.
func Username(username string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return &FieldError{Field: "username", Key: "UsernameRequired"}
	case len([]rune(username)) < UsernameMinLen:
		return &FieldError{Field: "username", Key: "UsernameTooShort"}
	case len([]rune(username)) > UsernameMaxLen:
		return &FieldError{Field: "username", Key: "UsernameTooLong"}
	}
	return nil
}

// UsernameStrict checks the registration-time rules on top of
// Username: character class, underscore placement and the reserved
// list.
func UsernameStrict(username string) error {
	if err := Username(username); err != nil {
		return err
	}
	switch {
	case !usernamePattern.MatchString(username):
		return &FieldError{Field: "username", Key: "UsernameBadCharset"}
	case strings.HasPrefix(username, "_") || strings.HasSuffix(username, "_"):
		return &FieldError{Field: "username", Key: "UsernameUnderscoreEdge"}
	case strings.Contains(username, "__"):
		return &FieldError{Field: "username", Key: "UsernameDoubleUnderscore"}
	}
	if _, ok := reservedUsernames[strings.ToLower(username)]; ok {
		return &FieldError{Field: "username", Key: "UsernameReserved"}
	}
	return nil
}

func Password(password string) error {
	switch {
	case strings.TrimSpace(password) == "":
		return &FieldError{Field: "password", Key: "PasswordRequired"}
	case len([]rune(password)) < PasswordMinLen:
		return &FieldError{Field: "password", Key: "PasswordTooShort"}
	}
	return nil
}

func Title(title string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return &FieldError{Field: "title", Key: "TitleRequired"}
	case len([]rune(title)) > TitleMaxLen:
		return &FieldError{Field: "title", Key: "TitleTooLong"}
	}
	return nil
}

func Content(content string) error {
	if len([]rune(content)) > ContentMaxLen {
		return &FieldError{Field: "content", Key: "ContentTooLong"}
	}
	return nil
}
