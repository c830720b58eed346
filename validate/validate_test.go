package validate

import (
	"errors"
	"strings"
	"testing"
)

func fieldKey(t *testing.T, err error) string {
	t.Helper()
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FieldError, got %v", err)
	}
	return fe.Key
}

func TestUsername(t *testing.T) {
	cases := []struct {
		name     string
		username string
		wantKey  string
	}{
		{"valid", "alice", ""},
		{"valid CJK", "张三", ""},
		{"blank", "  ", "UsernameRequired"},
		{"too short", "ab", "UsernameTooShort"},
		{"too long", strings.Repeat("a", 21), "UsernameTooLong"},
		{"max length ok", strings.Repeat("a", 20), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Username(tc.username)
			if tc.wantKey == "" {
				if err != nil {
					t.Errorf("Username(%q) = %v, want nil", tc.username, err)
				}
				return
			}
			if key := fieldKey(t, err); key != tc.wantKey {
				t.Errorf("Username(%q) key = %s, want %s", tc.username, key, tc.wantKey)
			}
		})
	}
}

func TestUsernameStrict(t *testing.T) {
	cases := []struct {
		name     string
		username string
		wantKey  string
	}{
		{"valid", "alice42", ""},
		{"valid underscore inside", "a_lice", ""},
		{"valid CJK mix", "alice张三", ""},
		{"bad charset", "ali ce", "UsernameBadCharset"},
		{"bad charset dash", "ali-ce", "UsernameBadCharset"},
		{"leading underscore", "_alice", "UsernameUnderscoreEdge"},
		{"trailing underscore", "alice_", "UsernameUnderscoreEdge"},
		{"double underscore", "al__ce", "UsernameDoubleUnderscore"},
		{"reserved", "admin", "UsernameReserved"},
		{"reserved case-insensitive", "Root", "UsernameReserved"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := UsernameStrict(tc.username)
			if tc.wantKey == "" {
				if err != nil {
					t.Errorf("UsernameStrict(%q) = %v, want nil", tc.username, err)
				}
				return
			}
			if key := fieldKey(t, err); key != tc.wantKey {
				t.Errorf("UsernameStrict(%q) key = %s, want %s", tc.username, key, tc.wantKey)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	if err := Password("secret1"); err != nil {
		t.Errorf("Password('secret1') = %v, want nil", err)
	}
	if key := fieldKey(t, Password("")); key != "PasswordRequired" {
		t.Errorf("Blank password key = %s", key)
	}
	if key := fieldKey(t, Password("short")); key != "PasswordTooShort" {
		t.Errorf("Short password key = %s", key)
	}
}

func TestTitleAndContent(t *testing.T) {
	if err := Title("Buy milk"); err != nil {
		t.Errorf("Title = %v, want nil", err)
	}
	if key := fieldKey(t, Title("   ")); key != "TitleRequired" {
		t.Errorf("Blank title key = %s", key)
	}
	if key := fieldKey(t, Title(strings.Repeat("x", 101))); key != "TitleTooLong" {
		t.Errorf("Long title key = %s", key)
	}

	if err := Content(""); err != nil {
		t.Errorf("Empty content should be allowed, got %v", err)
	}
	if key := fieldKey(t, Content(strings.Repeat("x", 1001))); key != "ContentTooLong" {
		t.Errorf("Long content key = %s", key)
	}
}
