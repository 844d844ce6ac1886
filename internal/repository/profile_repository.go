package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// ProfileRepo reads role profiles.  Profiles are written by
// UserRepo.CreateWithProfile; nothing else mutates them.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// GetByUserID returns the profile of an account.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (model.Profile, error) {
	var (
		p    model.Profile
		role string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,role,external_id,department FROM profiles WHERE user_id=? LIMIT 1",
		userID).Scan(&p.ID, &p.UserID, &role, &p.ExternalID, &p.Department)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.Role, err = model.ParseRole(role)
	return p, err
}

// ExternalIDTaken reports whether an (external id, role) pair is
// already bound to an account.
func (r *ProfileRepo) ExternalIDTaken(ctx context.Context, externalID string, role model.Role) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM profiles WHERE external_id=? AND role=?",
		externalID, string(role)).Scan(&n)
	return n > 0, err
}
