package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"remindex/db"
	"remindex/models"
)

type ReminderRepo struct {
	store *db.Store
}

func NewReminderRepo(store *db.Store) *ReminderRepo {
	return &ReminderRepo{store: store}
}

const reminderColumns = "id, userId, title, content, createdAt, updatedAt, category, priority"

// Insert stores the reminder and returns its generated id.
func (r *ReminderRepo) Insert(ctx context.Context, rem *models.Reminder) (int64, error) {
	res, err := r.store.DB().ExecContext(ctx,
		"INSERT INTO reminders (userId, title, content, createdAt, updatedAt, category, priority) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rem.UserID, rem.Title, rem.Content, rem.CreatedAt.UnixMilli(), rem.UpdatedAt.UnixMilli(), rem.Category, rem.Priority)
	if err != nil {
		return 0, fmt.Errorf("insert reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert reminder: %w", err)
	}
	rem.ID = id
	r.store.Notify(db.TableReminders)
	return id, nil
}

// ByID returns the reminder owned by userID, or ErrNotFound when it is
// absent or owned by another user.
func (r *ReminderRepo) ByID(ctx context.Context, userID, id int64) (models.Reminder, error) {
	row := r.store.DB().QueryRowContext(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE id = ? AND userId = ?", id, userID)
	return scanReminder(row)
}

// AllForUser lists the user's reminders, most recently updated first.
func (r *ReminderRepo) AllForUser(ctx context.Context, userID int64) ([]models.Reminder, error) {
	return r.query(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE userId = ? ORDER BY updatedAt DESC", userID)
}

// Search matches a case-insensitive substring over title or content.
func (r *ReminderRepo) Search(ctx context.Context, userID int64, query string) ([]models.Reminder, error) {
	pattern := "%" + query + "%"
	return r.query(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE userId = ? AND (title LIKE ? OR content LIKE ?) ORDER BY updatedAt DESC",
		userID, pattern, pattern)
}

func (r *ReminderRepo) ByCategory(ctx context.Context, userID int64, category string) ([]models.Reminder, error) {
	return r.query(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE userId = ? AND category = ? ORDER BY updatedAt DESC",
		userID, category)
}

func (r *ReminderRepo) ByPriority(ctx context.Context, userID int64, priority int) ([]models.Reminder, error) {
	return r.query(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE userId = ? AND priority = ? ORDER BY updatedAt DESC",
		userID, priority)
}

// Update replaces the full row identified by the reminder's id and
// owner. The caller carries forward id and createdAt and bumps
// updatedAt.
func (r *ReminderRepo) Update(ctx context.Context, rem models.Reminder) error {
	res, err := r.store.DB().ExecContext(ctx,
		"UPDATE reminders SET title = ?, content = ?, createdAt = ?, updatedAt = ?, category = ?, priority = ? WHERE id = ? AND userId = ?",
		rem.Title, rem.Content, rem.CreatedAt.UnixMilli(), rem.UpdatedAt.UnixMilli(), rem.Category, rem.Priority, rem.ID, rem.UserID)
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	r.store.Notify(db.TableReminders)
	return nil
}

// DeleteByID removes the reminder owned by userID.
func (r *ReminderRepo) DeleteByID(ctx context.Context, userID, id int64) error {
	res, err := r.store.DB().ExecContext(ctx,
		"DELETE FROM reminders WHERE id = ? AND userId = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	r.store.Notify(db.TableReminders)
	return nil
}

// DeleteAllForUser removes every reminder owned by userID and returns
// the number of deleted rows.
func (r *ReminderRepo) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.store.DB().ExecContext(ctx,
		"DELETE FROM reminders WHERE userId = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("delete reminders: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete reminders: %w", err)
	}
	if affected > 0 {
		r.store.Notify(db.TableReminders)
	}
	return affected, nil
}

func (r *ReminderRepo) CountForUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.store.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reminders WHERE userId = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reminders: %w", err)
	}
	return count, nil
}

// Categories lists the distinct categories used by the user's
// reminders, ordered alphabetically.
func (r *ReminderRepo) Categories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.store.DB().QueryContext(ctx,
		"SELECT DISTINCT category FROM reminders WHERE userId = ? ORDER BY category", userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *ReminderRepo) query(ctx context.Context, q string, args ...any) ([]models.Reminder, error) {
	rows, err := r.store.DB().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func scanReminder(row rowScanner) (models.Reminder, error) {
	var rem models.Reminder
	var createdAt, updatedAt int64
	err := row.Scan(&rem.ID, &rem.UserID, &rem.Title, &rem.Content, &createdAt, &updatedAt, &rem.Category, &rem.Priority)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Reminder{}, ErrNotFound
		}
		return models.Reminder{}, fmt.Errorf("scan reminder: %w", err)
	}
	rem.CreatedAt = time.UnixMilli(createdAt)
	rem.UpdatedAt = time.UnixMilli(updatedAt)
	return rem, nil
}
