package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// SeatRepo provides seat persistence.  Seats belong exclusively to one
// room.
type SeatRepo struct{ DB *sql.DB }

func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{DB: db} }

// ListByRoom returns all seats of a room ordered by number.
func (r *SeatRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Seat, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,room_id,number,is_active FROM seats WHERE room_id=? ORDER BY number", roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.RoomID, &s.Number, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID returns one seat or ErrNotFound.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (model.Seat, error) {
	var s model.Seat
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,room_id,number,is_active FROM seats WHERE id=? LIMIT 1", id).
		Scan(&s.ID, &s.RoomID, &s.Number, &s.IsActive)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

// Upsert inserts or updates a seat.
func (r *SeatRepo) Upsert(ctx context.Context, s *model.Seat) (uint64, error) {
	if s.ID == 0 {
		res, err := r.DB.ExecContext(ctx,
			"INSERT INTO seats (room_id, number, is_active) VALUES (?,?,?)",
			s.RoomID, s.Number, s.IsActive)
		if err != nil {
			return 0, err
		}
		id, err := res.LastInsertId()
		return uint64(id), err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE seats SET room_id=?, number=?, is_active=? WHERE id=?",
		s.RoomID, s.Number, s.IsActive, s.ID)
	return s.ID, err
}

// GenerateGrid bulk-creates rows*cols seats numbered like "A1".."D10"
// for a room, skipping nothing: callers clear existing seats first if
// they want a fresh layout.  Returns the number of seats created.
func (r *SeatRepo) GenerateGrid(ctx context.Context, roomID uint64, rows, cols int) (int, error) {
	if rows <= 0 || cols <= 0 || rows > 26 {
		return 0, fmt.Errorf("invalid seat grid %dx%d", rows, cols)
	}
	query := "INSERT INTO seats (room_id, number, is_active) VALUES "
	args := make([]any, 0, rows*cols*3)
	n := 0
	for i := 0; i < rows; i++ {
		for j := 1; j <= cols; j++ {
			if n > 0 {
				query += ","
			}
			query += "(?,?,?)"
			args = append(args, roomID, fmt.Sprintf("%c%d", 'A'+i, j), true)
			n++
		}
	}
	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteByRoom removes all seats of a room, used before regenerating a
// layout.
func (r *SeatRepo) DeleteByRoom(ctx context.Context, roomID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM seats WHERE room_id=?", roomID)
	return err
}
