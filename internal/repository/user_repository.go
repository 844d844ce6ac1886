package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

// UserRepo persists accounts and their profiles.  Registration writes
// both rows in one transaction so an account can never exist without
// its role profile.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// RegisterParams carries everything needed to create an account plus
// profile at registration time.
type RegisterParams struct {
	Username   string
	Email      string
	RealName   string
	Password   string
	BcryptCost int
	Role       model.Role
	ExternalID string
	Department string
}

// CreateWithProfile inserts the user and its profile atomically and
// returns the new user ID.  ErrDuplicate is returned when the username
// or the (external_id, role) pair is already taken.
func (r *UserRepo) CreateWithProfile(ctx context.Context, p RegisterParams) (uint64, error) {
	hash, err := utils.HashPassword(p.Password, p.BcryptCost)
	if err != nil {
		return 0, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, email, real_name, password_hash) VALUES (?,?,?,?)",
		strings.TrimSpace(p.Username), strings.ToLower(strings.TrimSpace(p.Email)), p.RealName, hash)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO profiles (user_id, role, external_id, department) VALUES (?,?,?,?)",
		id, string(p.Role), p.ExternalID, p.Department); err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,real_name,password_hash,is_active,created_at,updated_at FROM users WHERE username=? LIMIT 1",
		strings.TrimSpace(username)).
		Scan(&u.ID, &u.Username, &u.Email, &u.RealName, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,real_name,password_hash,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).
		Scan(&u.ID, &u.Username, &u.Email, &u.RealName, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// UpdateContact updates the mutable self-service fields.
func (r *UserRepo) UpdateContact(ctx context.Context, id uint64, realName, email string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET real_name=?, email=? WHERE id=?",
		realName, strings.ToLower(strings.TrimSpace(email)), id)
	return err
}

// Count returns the number of accounts, used by the admin dashboard.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
