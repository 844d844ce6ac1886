package model

import "time"

// Reservation statuses as stored in reservations.status.  Pending and
// approved both occupy their slot for conflict purposes; cancelled and
// rejected do not.  Reservations are never hard-deleted.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// Reservation records a time-bounded booking of a seat, a piece of
// equipment or a whole room.  Date and times are stored as a DATE plus
// two TIME columns; [StartTime,EndTime) is half-open, so a booking
// ending at 10:00 does not conflict with one starting at 10:00.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – account that made the booking (nullable for imports).
//  RoomID      – room being booked, always set.
//  SeatID      – seat being booked (nullable; room-level booking when nil).
//  EquipmentID – equipment being booked (nullable).
//  Date        – calendar day of the booking, "2006-01-02".
//  StartTime   – inclusive start, "15:04" clock string.
//  EndTime     – exclusive end, "15:04" clock string.
//  Title       – purpose/topic shown on the calendar.
//  Booker      – display name of the person booking.
//  Department  – department or class of the booker.
//  Status      – one of the Status* constants.
//  CreatedAt   – creation timestamp.
type Reservation struct {
	ID          uint64    // reservations.id
	UserID      *uint64   // reservations.user_id (nullable)
	RoomID      uint64    // reservations.room_id
	SeatID      *uint64   // reservations.seat_id (nullable)
	EquipmentID *uint64   // reservations.equipment_id (nullable)
	Date        string    // reservations.date
	StartTime   string    // reservations.start_time
	EndTime     string    // reservations.end_time
	Title       string    // reservations.title
	Booker      string    // reservations.booker
	Department  string    // reservations.department
	Status      string    // reservations.status
	CreatedAt   time.Time // reservations.created_at
}

// Active reports whether the reservation occupies its slot, i.e.
// participates in conflict detection.
func (r *Reservation) Active() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// OwnedBy reports whether the reservation belongs to the given user.
func (r *Reservation) OwnedBy(userID uint64) bool {
	return r.UserID != nil && *r.UserID == userID
}
