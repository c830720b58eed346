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

type UserRepo struct {
	store *db.Store
}

func NewUserRepo(store *db.Store) *UserRepo {
	return &UserRepo{store: store}
}

const userColumns = "id, username, password, displayName, email, createdAt"

// Create inserts the user and returns its generated id. The display
// name defaults to the username. Returns ErrDuplicate when the
// username is already taken; email uniqueness has no schema
// constraint and is checked at the auth layer.
func (r *UserRepo) Create(ctx context.Context, user *models.User) (int64, error) {
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	res, err := r.store.DB().ExecContext(ctx,
		"INSERT INTO users (username, password, displayName, email, createdAt) VALUES (?, ?, ?, ?, ?)",
		user.Username, user.Password, user.DisplayName, nullable(user.Email), user.CreatedAt.UnixMilli())
	if err != nil {
		if isConstraintErr(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	user.ID = id
	r.store.Notify(db.TableUsers)
	return id, nil
}

func (r *UserRepo) ByID(ctx context.Context, id int64) (models.User, error) {
	row := r.store.DB().QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (r *UserRepo) ByUsername(ctx context.Context, username string) (models.User, error) {
	row := r.store.DB().QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.store.DB().QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// ByCredentials looks a user up by exact username and password match.
func (r *UserRepo) ByCredentials(ctx context.Context, username, password string) (models.User, error) {
	row := r.store.DB().QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ? AND password = ?", username, password)
	return scanUser(row)
}

// All lists every user ordered by username.
func (r *UserRepo) All(ctx context.Context) ([]models.User, error) {
	rows, err := r.store.DB().QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// Update replaces the mutable fields of an existing user.
func (r *UserRepo) Update(ctx context.Context, user models.User) error {
	res, err := r.store.DB().ExecContext(ctx,
		"UPDATE users SET username = ?, password = ?, displayName = ?, email = ? WHERE id = ?",
		user.Username, user.Password, user.DisplayName, nullable(user.Email), user.ID)
	if err != nil {
		if isConstraintErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	r.store.Notify(db.TableUsers)
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.store.DB().ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	r.store.Notify(db.TableUsers)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var email sql.NullString
	var createdAt int64
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.DisplayName, &email, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Email = email.String
	u.CreatedAt = time.UnixMilli(createdAt)
	return u, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
