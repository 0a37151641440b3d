package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/courtbook/courtbook/internal/domain"
)

const userColumns = "id, username, password, email, gender, role, is_blocked, created_at"

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.Gender, &u.Role, &u.IsBlocked, &u.CreatedAt)
	return u, err
}

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}

type CreateUserParams struct {
	Username     string
	PasswordHash string
	Email        string
	Gender       string
	Role         string
}

func (s *Store) CreateUser(ctx context.Context, params CreateUserParams) (domain.User, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password, email, gender, role) VALUES (?, ?, ?, ?, ?)",
		params.Username, params.PasswordHash, params.Email, params.Gender, params.Role,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrDuplicate
		}
		return domain.User{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return s.GetUser(ctx, id)
}

type UpdateUserParams struct {
	Username  *string
	Email     *string
	Password  *string
	Gender    *string
	Role      *string
	IsBlocked *bool
}

func (s *Store) UpdateUser(ctx context.Context, id int64, params UpdateUserParams) (domain.User, error) {
	assignments := make([]string, 0, 6)
	args := make([]any, 0, 7)
	appendSet := func(column string, value any) {
		assignments = append(assignments, column+" = ?")
		args = append(args, value)
	}
	if params.Username != nil {
		appendSet("username", *params.Username)
	}
	if params.Email != nil {
		appendSet("email", *params.Email)
	}
	if params.Password != nil {
		appendSet("password", *params.Password)
	}
	if params.Gender != nil {
		appendSet("gender", *params.Gender)
	}
	if params.Role != nil {
		appendSet("role", *params.Role)
	}
	if params.IsBlocked != nil {
		appendSet("is_blocked", *params.IsBlocked)
	}
	if len(assignments) == 0 {
		return s.GetUser(ctx, id)
	}

	args = append(args, id)
	_, err := s.db.ExecContext(ctx, "UPDATE users SET "+strings.Join(assignments, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrDuplicate
		}
		return domain.User{}, err
	}
	return s.GetUser(ctx, id)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) SetUserBlocked(ctx context.Context, id int64, blocked bool) error {
	result, err := s.db.ExecContext(ctx, "UPDATE users SET is_blocked = ? WHERE id = ?", blocked, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY username ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

func (s *Store) CountBlockedUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE is_blocked = 1").Scan(&count)
	return count, err
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
