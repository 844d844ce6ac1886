package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// EquipmentRepo provides equipment persistence.
type EquipmentRepo struct{ DB *sql.DB }

func NewEquipmentRepo(db *sql.DB) *EquipmentRepo { return &EquipmentRepo{DB: db} }

// ListByRoom returns all equipment of a room.
func (r *EquipmentRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Equipment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,room_id,name,COALESCE(description,''),is_active FROM equipment WHERE room_id=? ORDER BY id", roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Equipment, 0)
	for rows.Next() {
		var e model.Equipment
		if err := rows.Scan(&e.ID, &e.RoomID, &e.Name, &e.Description, &e.IsActive); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Upsert inserts or updates an equipment row.
func (r *EquipmentRepo) Upsert(ctx context.Context, e *model.Equipment) (uint64, error) {
	if e.ID == 0 {
		res, err := r.DB.ExecContext(ctx,
			"INSERT INTO equipment (room_id, name, description, is_active) VALUES (?,?,?,?)",
			e.RoomID, e.Name, e.Description, e.IsActive)
		if err != nil {
			return 0, err
		}
		id, err := res.LastInsertId()
		return uint64(id), err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE equipment SET room_id=?, name=?, description=?, is_active=? WHERE id=?",
		e.RoomID, e.Name, e.Description, e.IsActive, e.ID)
	return e.ID, err
}

// Count returns the number of equipment rows, used by the admin
// dashboard.
func (r *EquipmentRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM equipment").Scan(&n)
	return n, err
}
