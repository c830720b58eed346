// Package auth validates credentials against the user store and
// drives session transitions through the session manager.
package auth

import (
	"context"
	"errors"
	"fmt"

	"remindex/models"
	"remindex/repo"
	"remindex/session"
	"remindex/validate"
)

var (
	// ErrInvalidCredentials deliberately does not say whether the
	// username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken is returned on registration when the username
	// is already in use.
	ErrUsernameTaken = errors.New("username taken")
	// ErrEmailTaken is returned on registration when the email is
	// already in use.
	ErrEmailTaken = errors.New("email taken")
)

type Service struct {
	users    *repo.UserRepo
	sessions *session.Manager

	// hashPasswords switches credential storage from the legacy
	// plain-text scheme to bcrypt. Opt-in only, set from config.
	hashPasswords bool
}

func NewService(users *repo.UserRepo, sessions *session.Manager, hashPasswords bool) *Service {
	return &Service{users: users, sessions: sessions, hashPasswords: hashPasswords}
}

// Login validates the input format, checks the credentials against the
// store and on success saves the session. Format failures surface as
// field-attributed validation errors before any storage access.
func (s *Service) Login(ctx context.Context, username, password string, remember bool) (models.User, error) {
	if err := validate.Username(username); err != nil {
		return models.User{}, err
	}
	if err := validate.Password(password); err != nil {
		return models.User{}, err
	}

	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return models.User{}, err
	}

	if err := s.sessions.SaveSession(user, remember); err != nil {
		return models.User{}, fmt.Errorf("save session: %w", err)
	}
	return user, nil
}

func (s *Service) authenticate(ctx context.Context, username, password string) (models.User, error) {
	if !s.hashPasswords {
		user, err := s.users.ByCredentials(ctx, username, password)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return models.User{}, ErrInvalidCredentials
			}
			return models.User{}, err
		}
		return user, nil
	}

	user, err := s.users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Burn the same bcrypt cost as a real comparison
			CheckPasswordHash(password, dummyHash)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if !CheckPasswordHash(password, user.Password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Username    string
	Password    string
	DisplayName string
	Email       string
}

// Register creates the account and immediately authenticates it.
// Uniqueness of the username and (when provided) the email is checked
// before insertion; on any violation nothing is written.
func (s *Service) Register(ctx context.Context, in RegisterInput, remember bool) (models.User, error) {
	if err := validate.UsernameStrict(in.Username); err != nil {
		return models.User{}, err
	}
	if err := validate.Password(in.Password); err != nil {
		return models.User{}, err
	}

	if _, err := s.users.ByUsername(ctx, in.Username); err == nil {
		return models.User{}, ErrUsernameTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return models.User{}, err
	}

	if in.Email != "" {
		if _, err := s.users.ByEmail(ctx, in.Email); err == nil {
			return models.User{}, ErrEmailTaken
		} else if !errors.Is(err, repo.ErrNotFound) {
			return models.User{}, err
		}
	}

	stored := in.Password
	if s.hashPasswords {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		stored = hash
	}

	user := models.User{
		Username:    in.Username,
		Password:    stored,
		DisplayName: in.DisplayName,
		Email:       in.Email,
	}
	if _, err := s.users.Create(ctx, &user); err != nil {
		// A concurrent registration can still hit the constraint
		if errors.Is(err, repo.ErrDuplicate) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, err
	}

	if err := s.sessions.SaveSession(user, remember); err != nil {
		return models.User{}, fmt.Errorf("save session: %w", err)
	}
	return user, nil
}

// Logout clears the session. It performs no credential checks.
func (s *Service) Logout() error {
	return s.sessions.ClearSession()
}

func (s *Service) IsLoggedIn() bool {
	return s.sessions.HasValidSession()
}

// CurrentUser re-fetches the session's user from the store. The
// session only caches id and username; the row is the authority, and a
// dangling reference clears the session.
func (s *Service) CurrentUser(ctx context.Context) (models.User, error) {
	if !s.sessions.HasValidSession() {
		return models.User{}, ErrInvalidCredentials
	}
	user, err := s.users.ByID(ctx, s.sessions.CurrentUserID())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.sessions.ClearSession()
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	return user, nil
}
