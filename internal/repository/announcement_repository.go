package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// AnnouncementRepo persists staff announcements.
type AnnouncementRepo struct{ DB *sql.DB }

func NewAnnouncementRepo(db *sql.DB) *AnnouncementRepo { return &AnnouncementRepo{DB: db} }

// List returns announcements newest first.  limit <= 0 returns all.
func (r *AnnouncementRepo) List(ctx context.Context, limit int) ([]model.Announcement, error) {
	q := "SELECT id,title,content,author_id,created_at FROM announcements ORDER BY created_at DESC"
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Announcement, 0)
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create inserts an announcement and returns its ID.
func (r *AnnouncementRepo) Create(ctx context.Context, a *model.Announcement) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO announcements (title, content, author_id) VALUES (?,?,?)",
		a.Title, a.Content, a.AuthorID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// Delete removes an announcement.
func (r *AnnouncementRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM announcements WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
