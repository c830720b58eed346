// Package reminder enforces per-user scoping on all reminder
// operations. It is the only component that resolves "the current
// user"; every other layer takes the user id explicitly or not at all.
package reminder

import (
	"context"
	"errors"
	"time"

	"remindex/db"
	"remindex/models"
	"remindex/repo"
	"remindex/session"
	"remindex/validate"
)

// ErrNoSession is returned for any reminder operation attempted
// without a valid session.
var ErrNoSession = errors.New("no active session")

type Service struct {
	reminders *repo.ReminderRepo
	sessions  *session.Manager
	notifier  *db.Notifier
}

func NewService(reminders *repo.ReminderRepo, sessions *session.Manager, notifier *db.Notifier) *Service {
	return &Service{reminders: reminders, sessions: sessions, notifier: notifier}
}

func (s *Service) currentUser() (int64, error) {
	if !s.sessions.HasValidSession() {
		return 0, ErrNoSession
	}
	return s.sessions.CurrentUserID(), nil
}

// Create validates and stores a new reminder owned by the current
// user. An empty category falls back to the default-category
// preference; an out-of-range priority is stored as normal.
func (s *Service) Create(ctx context.Context, title, content, category string, priority int) (models.Reminder, error) {
	userID, err := s.currentUser()
	if err != nil {
		return models.Reminder{}, err
	}
	if err := validate.Title(title); err != nil {
		return models.Reminder{}, err
	}
	if err := validate.Content(content); err != nil {
		return models.Reminder{}, err
	}

	if category == "" {
		category = s.sessions.DefaultCategory()
	}
	if priority < models.PriorityNormal || priority > models.PriorityUrgent {
		priority = models.PriorityNormal
	}

	now := time.Now()
	rem := models.Reminder{
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		Category:  category,
		Priority:  priority,
	}
	if _, err := s.reminders.Insert(ctx, &rem); err != nil {
		return models.Reminder{}, err
	}
	return rem, nil
}

// Update replaces the mutable fields of an existing reminder owned by
// the current user. Identity (id, createdAt) is preserved and
// updatedAt advances, never regresses.
func (s *Service) Update(ctx context.Context, id int64, title, content, category string, priority int) (models.Reminder, error) {
	userID, err := s.currentUser()
	if err != nil {
		return models.Reminder{}, err
	}
	if err := validate.Title(title); err != nil {
		return models.Reminder{}, err
	}
	if err := validate.Content(content); err != nil {
		return models.Reminder{}, err
	}

	existing, err := s.reminders.ByID(ctx, userID, id)
	if err != nil {
		return models.Reminder{}, err
	}

	if category == "" {
		category = s.sessions.DefaultCategory()
	}
	if priority < models.PriorityNormal || priority > models.PriorityUrgent {
		priority = models.PriorityNormal
	}

	updated := existing
	updated.Title = title
	updated.Content = content
	updated.Category = category
	updated.Priority = priority
	updated.UpdatedAt = time.Now()
	if updated.UpdatedAt.Before(existing.UpdatedAt) {
		updated.UpdatedAt = existing.UpdatedAt
	}

	if err := s.reminders.Update(ctx, updated); err != nil {
		return models.Reminder{}, err
	}
	return updated, nil
}

// Get returns the reminder by id, scoped to the current user. Absent
// and foreign-owned rows are equally repo.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (models.Reminder, error) {
	userID, err := s.currentUser()
	if err != nil {
		return models.Reminder{}, err
	}
	return s.reminders.ByID(ctx, userID, id)
}

// List returns the current user's reminders, most recently updated
// first.
func (s *Service) List(ctx context.Context) ([]models.Reminder, error) {
	userID, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	return s.reminders.AllForUser(ctx, userID)
}

// Search matches a case-insensitive substring over title or content.
func (s *Service) Search(ctx context.Context, query string) ([]models.Reminder, error) {
	userID, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	return s.reminders.Search(ctx, userID, query)
}

func (s *Service) ByCategory(ctx context.Context, category string) ([]models.Reminder, error) {
	userID, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	return s.reminders.ByCategory(ctx, userID, category)
}

func (s *Service) ByPriority(ctx context.Context, priority int) ([]models.Reminder, error) {
	userID, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	return s.reminders.ByPriority(ctx, userID, priority)
}

// Categories lists the distinct categories of the current user's
// reminders.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	userID, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	return s.reminders.Categories(ctx, userID)
}

// Delete removes the reminder by id, scoped to the current user.
func (s *Service) Delete(ctx context.Context, id int64) error {
	userID, err := s.currentUser()
	if err != nil {
		return err
	}
	return s.reminders.DeleteByID(ctx, userID, id)
}

// DeleteAll removes every reminder of the current user and returns the
// number of deleted rows.
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	userID, err := s.currentUser()
	if err != nil {
		return 0, err
	}
	return s.reminders.DeleteAllForUser(ctx, userID)
}

// Count returns the number of reminders owned by the current user.
func (s *Service) Count(ctx context.Context) (int, error) {
	userID, err := s.currentUser()
	if err != nil {
		return 0, err
	}
	return s.reminders.CountForUser(ctx, userID)
}
