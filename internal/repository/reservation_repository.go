package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// ReservationRepo provides reservation persistence and the conflict
// check that guards bookings.  Date and time columns are selected as
// formatted strings so values round-trip without timezone surprises.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

// resColumns builds the shared reservation column list, optionally
// prefixed with a table alias for joined queries.  Date and times are
// formatted in SQL so they scan as plain strings.
func resColumns(alias string) string {
	p := ""
	if alias != "" {
		p = alias + "."
	}
	return p + "id, " + p + "user_id, " + p + "room_id, " + p + "seat_id, " + p + "equipment_id, " +
		"DATE_FORMAT(" + p + "date,'%Y-%m-%d'), " +
		"TIME_FORMAT(" + p + "start_time,'%H:%i'), " +
		"TIME_FORMAT(" + p + "end_time,'%H:%i'), " +
		p + "title, " + p + "booker, " + p + "department, " + p + "status, " + p + "created_at"
}

var resCols = resColumns("")

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var (
		res                    model.Reservation
		userID, seatID, equipID sql.NullInt64
		department             sql.NullString
	)
	err := row.Scan(&res.ID, &userID, &res.RoomID, &seatID, &equipID,
		&res.Date, &res.StartTime, &res.EndTime,
		&res.Title, &res.Booker, &department, &res.Status, &res.CreatedAt)
	if err != nil {
		return res, err
	}
	if userID.Valid {
		v := uint64(userID.Int64)
		res.UserID = &v
	}
	if seatID.Valid {
		v := uint64(seatID.Int64)
		res.SeatID = &v
	}
	if equipID.Valid {
		v := uint64(equipID.Int64)
		res.EquipmentID = &v
	}
	if department.Valid {
		res.Department = department.String
	}
	return res, nil
}

// GetByID returns one reservation or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRowContext(ctx,
		"SELECT "+resCols+" FROM reservations WHERE id=?", id))
	if err == sql.ErrNoRows {
		return res, ErrNotFound
	}
	return res, err
}

// CalendarRow is a reservation joined with its room name for the
// calendar listing.
type CalendarRow struct {
	model.Reservation
	RoomName string
}

// ListCalendar returns every non-cancelled reservation with its room
// name, for the browser calendar.
func (r *ReservationRepo) ListCalendar(ctx context.Context) ([]CalendarRow, error) {
	q := `SELECT ` + resColumns("r") + `, rm.name
	      FROM reservations r JOIN rooms rm ON rm.id = r.room_id
	      WHERE r.status <> 'cancelled'
	      ORDER BY r.date, r.start_time`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CalendarRow, 0)
	for rows.Next() {
		var (
			row                     CalendarRow
			userID, seatID, equipID sql.NullInt64
			department              sql.NullString
		)
		if err := rows.Scan(&row.ID, &userID, &row.RoomID, &seatID, &equipID,
			&row.Date, &row.StartTime, &row.EndTime,
			&row.Title, &row.Booker, &department, &row.Status, &row.CreatedAt,
			&row.RoomName); err != nil {
			return nil, err
		}
		if userID.Valid {
			v := uint64(userID.Int64)
			row.UserID = &v
		}
		if seatID.Valid {
			v := uint64(seatID.Int64)
			row.SeatID = &v
		}
		if equipID.Valid {
			v := uint64(equipID.Int64)
			row.EquipmentID = &v
		}
		if department.Valid {
			row.Department = department.String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListByUser returns a user's reservations newest first.  limit <= 0
// returns all of them.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Reservation, error) {
	q := "SELECT " + resCols + " FROM reservations WHERE user_id=? ORDER BY created_at DESC"
	args := []any{userID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	return r.queryMany(ctx, q, args...)
}

// ListApprovedByUser returns a user's approved reservations, for the
// personal statistics view.
func (r *ReservationRepo) ListApprovedByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return r.queryMany(ctx,
		"SELECT "+resCols+" FROM reservations WHERE user_id=? AND status='approved' ORDER BY date DESC, start_time DESC",
		userID)
}

// ListByRooms returns reservations in any of the given rooms, newest
// first.  Used by the teacher dashboard for managed rooms.
func (r *ReservationRepo) ListByRooms(ctx context.Context, roomIDs []uint64) ([]model.Reservation, error) {
	if len(roomIDs) == 0 {
		return []model.Reservation{}, nil
	}
	ph := make([]string, len(roomIDs))
	args := make([]any, len(roomIDs))
	for i, id := range roomIDs {
		ph[i] = "?"
		args[i] = id
	}
	return r.queryMany(ctx,
		"SELECT "+resCols+" FROM reservations WHERE room_id IN ("+strings.Join(ph, ",")+") ORDER BY created_at DESC",
		args...)
}

// ActiveByRoomDate returns the pending/approved reservations of a room
// on a date.  The availability view derives per-seat occupancy from
// this set.
func (r *ReservationRepo) ActiveByRoomDate(ctx context.Context, roomID uint64, date string) ([]model.Reservation, error) {
	return r.queryMany(ctx,
		"SELECT "+resCols+" FROM reservations WHERE room_id=? AND date=? AND status IN ('pending','approved')",
		roomID, date)
}

// ListRange returns non-cancelled reservations between two dates
// inclusive, joined with room names, oldest first.  Used by the xlsx
// export.
func (r *ReservationRepo) ListRange(ctx context.Context, from, to string) ([]CalendarRow, error) {
	q := `SELECT ` + resColumns("r") + `, rm.name
	      FROM reservations r JOIN rooms rm ON rm.id = r.room_id
	      WHERE r.status <> 'cancelled' AND r.date BETWEEN ? AND ?
	      ORDER BY r.date, r.start_time`
	rows, err := r.DB.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CalendarRow, 0)
	for rows.Next() {
		var (
			row                     CalendarRow
			userID, seatID, equipID sql.NullInt64
			department              sql.NullString
		)
		if err := rows.Scan(&row.ID, &userID, &row.RoomID, &seatID, &equipID,
			&row.Date, &row.StartTime, &row.EndTime,
			&row.Title, &row.Booker, &department, &row.Status, &row.CreatedAt,
			&row.RoomName); err != nil {
			return nil, err
		}
		if userID.Valid {
			v := uint64(userID.Int64)
			row.UserID = &v
		}
		if seatID.Valid {
			v := uint64(seatID.Int64)
			row.SeatID = &v
		}
		if equipID.Valid {
			v := uint64(equipID.Int64)
			row.EquipmentID = &v
		}
		if department.Valid {
			row.Department = department.String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CreateIfFree inserts the reservation unless a pending/approved
// reservation overlaps its slot.  The conflict check and the insert
// run in one transaction and the check locks matching rows, so two
// concurrent bookings for the same slot serialize instead of both
// passing the check.  On conflict the overlapping reservation is
// returned and nothing is written.
func (r *ReservationRepo) CreateIfFree(ctx context.Context, res *model.Reservation) (*model.Reservation, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	conflict, err := findConflictTx(ctx, tx, res, 0)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return conflict, nil
	}

	ins, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (user_id, room_id, seat_id, equipment_id, date, start_time, end_time, title, booker, department, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		res.UserID, res.RoomID, res.SeatID, res.EquipmentID,
		res.Date, res.StartTime, res.EndTime,
		res.Title, res.Booker, res.Department, res.Status)
	if err != nil {
		return nil, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	res.ID = uint64(id)
	return nil, nil
}

// UpdateIfFree rewrites an existing reservation unless another
// pending/approved reservation overlaps the new slot.  The record
// being edited is excluded from the check.  Same transactional
// guarantees as CreateIfFree.
func (r *ReservationRepo) UpdateIfFree(ctx context.Context, res *model.Reservation) (*model.Reservation, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	conflict, err := findConflictTx(ctx, tx, res, res.ID)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return conflict, nil
	}

	out, err := tx.ExecContext(ctx,
		`UPDATE reservations SET room_id=?, seat_id=?, equipment_id=?, date=?, start_time=?, end_time=?,
		 title=?, booker=?, department=?, status=? WHERE id=?`,
		res.RoomID, res.SeatID, res.EquipmentID, res.Date, res.StartTime, res.EndTime,
		res.Title, res.Booker, res.Department, res.Status, res.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := out.RowsAffected(); n == 0 {
		// zero rows can also mean an identical update; verify existence
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations WHERE id=?", res.ID).Scan(&exists); err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, ErrNotFound
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return nil, nil
}

// findConflictTx locks and returns the first pending/approved
// reservation overlapping the half-open slot of res, scoped to the
// seat when res books a seat and to the whole room otherwise.
// excludeID skips the record being edited.  The strict inequalities
// make adjacent slots (end == start) compatible.
func findConflictTx(ctx context.Context, tx *sql.Tx, res *model.Reservation, excludeID uint64) (*model.Reservation, error) {
	q := "SELECT " + resCols + ` FROM reservations
	      WHERE date=? AND status IN ('pending','approved')
	        AND start_time < ? AND end_time > ?`
	args := []any{res.Date, res.EndTime, res.StartTime}
	if res.SeatID != nil {
		q += " AND seat_id=?"
		args = append(args, *res.SeatID)
	} else {
		q += " AND room_id=?"
		args = append(args, res.RoomID)
	}
	if excludeID != 0 {
		q += " AND id<>?"
		args = append(args, excludeID)
	}
	q += " ORDER BY start_time LIMIT 1 FOR UPDATE"

	conflict, err := scanReservation(tx.QueryRowContext(ctx, q, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conflict, nil
}

// SetStatus updates only the status column.
func (r *ReservationRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE reservations SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations WHERE id=?", id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// Count returns the total number of reservations.
func (r *ReservationRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations").Scan(&n)
	return n, err
}

func (r *ReservationRepo) queryMany(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
