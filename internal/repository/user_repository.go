package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roomhub/roomhub/internal/model"
	"github.com/roomhub/roomhub/internal/utils"
)

// UserRepo provides account storage for requesters and admins.
// Passwords are hashed with bcrypt before they reach this layer's
// Create; plaintext never touches the database.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, name, email, password_hash, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create hashes the password and inserts a new user.  Duplicate
// emails surface as ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, bcryptCost int) (uint64, error) {
	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return 0, err
	}
	const q = `INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, name, email, hash, role)
	if isMySQLErr(err, mysqlErrDupEntry) {
		return 0, ErrEmailExists
	}
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail returns the user with the given email, or (nil, nil)
// when none exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// GetByID returns the user with the given ID, or (nil, nil) when none
// exists.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// List returns all users ordered by name.  Password hashes are not
// included.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	const q = `SELECT id, name, email, role, created_at FROM users ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes a user's name and email and reports whether the row
// existed.  Duplicate emails surface as ErrEmailExists.
func (r *UserRepo) Update(ctx context.Context, id uint64, name, email string) (bool, error) {
	const q = `UPDATE users SET name = ?, email = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, name, email, id)
	if isMySQLErr(err, mysqlErrDupEntry) {
		return false, ErrEmailExists
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes a user.  Users with bookings surface as ErrInUse.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if isMySQLErr(err, mysqlErrRowIsRefd) {
		return ErrInUse
	}
	return err
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, bcryptCost int) error {
	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
	return err
}
