package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// WhitelistRepo reads the pre-loaded student and teacher rosters used
// to gate registration.  The application never writes these tables.
type WhitelistRepo struct{ DB *sql.DB }

func NewWhitelistRepo(db *sql.DB) *WhitelistRepo { return &WhitelistRepo{DB: db} }

// Find returns the roster entry matching the exact (external id, name)
// pair for the given role, or ErrNotFound when no such entry exists.
func (r *WhitelistRepo) Find(ctx context.Context, role model.Role, externalID, name string) (model.WhitelistEntry, error) {
	var q string
	switch role {
	case model.RoleStudent:
		q = "SELECT id,name,student_id,department FROM student_info WHERE student_id=? AND name=? LIMIT 1"
	case model.RoleTeacher:
		q = "SELECT id,name,teacher_id,department FROM teacher_info WHERE teacher_id=? AND name=? LIMIT 1"
	default:
		return model.WhitelistEntry{}, fmt.Errorf("no whitelist for role %q", role)
	}
	var e model.WhitelistEntry
	err := r.DB.QueryRowContext(ctx, q, externalID, name).
		Scan(&e.ID, &e.Name, &e.ExternalID, &e.Department)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	return e, err
}
