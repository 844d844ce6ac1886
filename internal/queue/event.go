// Package queue defines the message payloads exchanged over the
// broker and the consumer that drains them.
package queue

// ReservationEvent is published whenever a reservation is created,
// modified or cancelled.  It carries enough information for downstream
// consumers to log or audit bookings without querying the primary
// database.
type ReservationEvent struct {
	EventID       string `json:"event_id"`
	Action        string `json:"action"` // create | modify | cancel
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id,omitempty"`
	RoomID        uint64 `json:"room_id"`
	RoomName      string `json:"room_name"`
	SeatID        uint64 `json:"seat_id,omitempty"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Title         string `json:"title"`
	Booker        string `json:"booker"`
	Department    string `json:"department,omitempty"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}
