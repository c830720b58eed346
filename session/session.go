// Package session persists the device-wide session record and
// application preferences: which user is authenticated, the remember
// flag, and the login/preference fields the UI pre-fills from.
package session

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"remindex/models"
)

// Field keys in the preferences namespace.
const (
	keyIsLoggedIn      = "is_logged_in"
	keyUsername        = "username"
	keyCurrentUserID   = "current_user_id"
	keyDisplayName     = "current_user_display_name"
	keyRememberLogin   = "remember_login"
	keyLastLoginTime   = "last_login_time"
	keySortOrder       = "sort_order"
	keyDefaultCategory = "default_category"
	keyThemeMode       = "theme_mode"
)

// Manager owns the durable key-value session state. It is constructed
// once at the composition root and injected into the services; every
// write is persisted immediately.
type Manager struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

func NewManager(path string) (*Manager, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// First run: no preferences file yet
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read preferences: %w", err)
		}
	}

	return &Manager{v: v, path: path}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyIsLoggedIn, false)
	v.SetDefault(keyUsername, "")
	v.SetDefault(keyCurrentUserID, int64(-1))
	v.SetDefault(keyDisplayName, "")
	v.SetDefault(keyRememberLogin, false)
	v.SetDefault(keyLastLoginTime, int64(0))
	v.SetDefault(keySortOrder, models.SortDateDesc)
	v.SetDefault(keyDefaultCategory, models.DefaultCategory)
	v.SetDefault(keyThemeMode, "system")
}

// SaveSession records a successful authentication. The whole record is
// written in one flush so readers never observe a partial session.
func (m *Manager) SaveSession(user models.User, remember bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.v.Set(keyIsLoggedIn, true)
	m.v.Set(keyUsername, user.Username)
	m.v.Set(keyCurrentUserID, user.ID)
	m.v.Set(keyDisplayName, user.DisplayName)
	m.v.Set(keyRememberLogin, remember)
	m.v.Set(keyLastLoginTime, time.Now().UnixMilli())
	return m.flush()
}

// ClearSession logs out. Without the remember flag the entire
// namespace is erased; with it, only the logged-in flag and timestamp
// are cleared so the login screen can pre-fill the identity fields.
func (m *Manager) ClearSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.v.GetBool(keyRememberLogin) {
		m.v.Set(keyIsLoggedIn, false)
		m.v.Set(keyLastLoginTime, int64(0))
		return m.flush()
	}

	fresh := viper.New()
	fresh.SetConfigFile(m.path)
	fresh.SetConfigType("json")
	setDefaults(fresh)
	m.v = fresh
	return m.flush()
}

// HasValidSession reports whether a user is authenticated: the
// logged-in flag is set, the user id is positive and the username is
// non-blank. Pure, no side effect.
func (m *Manager) HasValidSession() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v.GetBool(keyIsLoggedIn) &&
		m.v.GetInt64(keyCurrentUserID) > 0 &&
		strings.TrimSpace(m.v.GetString(keyUsername)) != ""
}

func (m *Manager) CurrentUserID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v.GetInt64(keyCurrentUserID)
}

func (m *Manager) Username() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v.GetString(keyUsername)
}

func (m *Manager) DisplayName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v.GetString(keyDisplayName)
}

func (m *Manager) RememberLogin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v.GetBool(keyRememberLogin)
}

func (m *Manager) LastLogin() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	millis := m.v.GetInt64(keyLastLoginTime)
	if millis == 0 {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}

func (m *Manager) SortOrder() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v.GetString(keySortOrder)
}

func (m *Manager) SetSortOrder(order string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.v.Set(keySortOrder, order)
	return m.flush()
}

func (m *Manager) DefaultCategory() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v.GetString(keyDefaultCategory)
}

func (m *Manager) SetDefaultCategory(category string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.v.Set(keyDefaultCategory, category)
	return m.flush()
}

func (m *Manager) ThemeMode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v.GetString(keyThemeMode)
}

func (m *Manager) SetThemeMode(mode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.v.Set(keyThemeMode, mode)
	return m.flush()
}

func (m *Manager) flush() error {
	if err := m.v.WriteConfigAs(m.path); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
