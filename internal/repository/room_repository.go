package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// RoomRepo provides CRUD operations for rooms.  Seats and equipment
// cascade-delete with their room at the schema level.
type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

func scanRoom(row interface{ Scan(...any) error }) (model.Room, error) {
	var (
		r         model.Room
		desc      sql.NullString
		managerID sql.NullInt64
	)
	err := row.Scan(&r.ID, &r.Name, &r.Category, &r.Capacity, &desc, &managerID, &r.Status)
	if err != nil {
		return r, err
	}
	if desc.Valid {
		r.Description = desc.String
	}
	if managerID.Valid {
		id := uint64(managerID.Int64)
		r.ManagerID = &id
	}
	return r, nil
}

const roomCols = "id,name,category,capacity,description,manager_id,status"

// List returns all rooms ordered by id.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+roomCols+" FROM rooms ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// GetByID returns one room or ErrNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	room, err := scanRoom(r.DB.QueryRowContext(ctx, "SELECT "+roomCols+" FROM rooms WHERE id=?", id))
	if err == sql.ErrNoRows {
		return room, ErrNotFound
	}
	return room, err
}

// ListByManager returns the rooms managed by a teacher.
func (r *RoomRepo) ListByManager(ctx context.Context, managerID uint64) ([]model.Room, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+roomCols+" FROM rooms WHERE manager_id=? ORDER BY id", managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// Upsert inserts the room when ID is zero, otherwise updates the
// existing row, creating it with the given ID if it vanished.  The
// returned ID is always the persisted one.
func (r *RoomRepo) Upsert(ctx context.Context, room *model.Room) (uint64, error) {
	if room.ID == 0 {
		res, err := r.DB.ExecContext(ctx,
			"INSERT INTO rooms (name, category, capacity, description, manager_id, status) VALUES (?,?,?,?,?,?)",
			room.Name, room.Category, room.Capacity, room.Description, room.ManagerID, room.Status)
		if err != nil {
			return 0, err
		}
		id, err := res.LastInsertId()
		return uint64(id), err
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO rooms (id, name, category, capacity, description, manager_id, status) VALUES (?,?,?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE name=VALUES(name), category=VALUES(category), capacity=VALUES(capacity),
		 description=VALUES(description), manager_id=VALUES(manager_id), status=VALUES(status)`,
		room.ID, room.Name, room.Category, room.Capacity, room.Description, room.ManagerID, room.Status)
	return room.ID, err
}

// Delete removes a room; seats and equipment cascade.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of rooms.
func (r *RoomRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&n)
	return n, err
}
