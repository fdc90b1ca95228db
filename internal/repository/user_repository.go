package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/auth-service/internal/model"
)

const userColumns = "id,email,password_hash,first_name,last_name,is_active,is_verified,created_at,updated_at"

// UserRepo is the credential store backed by the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. Email uniqueness is
// enforced by the database unique key, not by a prior read, so two
// concurrent registrations with the same email can never both
// succeed; the loser sees ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, firstName, lastName string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name) VALUES (?,?,?,?)",
		email, passwordHash, firstName, lastName)
	if err != nil {
		// MySQL 1062 = duplicate entry for a unique key.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by email. Emails are compared exactly as
// stored; callers trim whitespace but do not change case.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// UpdatePasswordHash replaces a user's password hash. Returns false
// when the id is unknown.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id uint64, newHash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=NOW() WHERE id=?",
		newHash, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetActive flips the is_active flag. Returns false when the id is
// unknown or the flag already holds the requested value.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=?, updated_at=NOW() WHERE id=?",
		active, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
