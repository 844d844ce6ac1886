// Package service holds the business rules between the HTTP handlers
// and the repositories: booking conflict policy, registration
// whitelisting and the notification side effects.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/study-room-reservation/internal/metrics"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/notify"
	"github.com/iliyamo/study-room-reservation/internal/queue"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

// ErrInvalidInput marks validation failures.  Handlers map it to 400
// and surface the message verbatim.
var ErrInvalidInput = errors.New("invalid input")

// ConflictError reports that a requested slot overlaps an existing
// pending or approved reservation.  It names the conflicting window.
type ConflictError struct {
	Start string
	End   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot conflicts with an existing reservation %s-%s", e.Start, e.End)
}

// ReservationStore is the storage surface the engine needs.
// Implemented by repository.ReservationRepo.
type ReservationStore interface {
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	CreateIfFree(ctx context.Context, res *model.Reservation) (*model.Reservation, error)
	UpdateIfFree(ctx context.Context, res *model.Reservation) (*model.Reservation, error)
	SetStatus(ctx context.Context, id uint64, status string) error
	ActiveByRoomDate(ctx context.Context, roomID uint64, date string) ([]model.Reservation, error)
}

// RoomStore resolves rooms.  Implemented by repository.RoomRepo.
type RoomStore interface {
	GetByID(ctx context.Context, id uint64) (model.Room, error)
}

// SeatStore resolves seats.  Implemented by repository.SeatRepo.
type SeatStore interface {
	GetByID(ctx context.Context, id uint64) (model.Seat, error)
	ListByRoom(ctx context.Context, roomID uint64) ([]model.Seat, error)
}

// Notifier delivers reservation notifications.  Implemented by
// notify.Dispatcher; errors are logged by the implementation and
// ignored here.
type Notifier interface {
	Dispatch(ctx context.Context, res model.Reservation, roomName string, action notify.Action) error
}

// EventPublisher pushes reservation events onto the broker.
// Implemented by queue.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.ReservationEvent) error
}

// Requester identifies the authenticated caller of a booking
// operation.
type Requester struct {
	ID         uint64
	Name       string
	Department string
	Staff      bool
}

// ReservationService implements booking, modification, cancellation
// and the availability view.
type ReservationService struct {
	store       ReservationStore
	rooms       RoomStore
	seats       SeatStore
	notifier    Notifier
	events      EventPublisher
	log         zerolog.Logger
	autoApprove bool
}

// NewReservationService wires the reservation engine.  notifier and
// events may be nil to disable the respective side effect.
func NewReservationService(store ReservationStore, rooms RoomStore, seats SeatStore, notifier Notifier, events EventPublisher, log zerolog.Logger, autoApprove bool) *ReservationService {
	return &ReservationService{
		store:       store,
		rooms:       rooms,
		seats:       seats,
		notifier:    notifier,
		events:      events,
		log:         log.With().Str("component", "reservations").Logger(),
		autoApprove: autoApprove,
	}
}

// BookingInput carries a booking request.  SeatID nil books the whole
// room.  Booker and Department default to the requester's when empty.
type BookingInput struct {
	RoomID     uint64
	SeatID     *uint64
	Date       string
	Start      string
	End        string
	Title      string
	Booker     string
	Department string
}

// validate checks presence and formats and returns the normalized
// date/start/end strings.
func (in *BookingInput) validate() (date, start, end string, err error) {
	if in.RoomID == 0 || in.Date == "" || in.Start == "" || in.End == "" || in.Title == "" {
		return "", "", "", fmt.Errorf("%w: missing required booking fields", ErrInvalidInput)
	}
	if date, err = utils.ParseDate(in.Date); err != nil {
		return "", "", "", fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if start, err = utils.ParseClock(in.Start); err != nil {
		return "", "", "", fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if end, err = utils.ParseClock(in.End); err != nil {
		return "", "", "", fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if end <= start {
		return "", "", "", fmt.Errorf("%w: end time must be after start time", ErrInvalidInput)
	}
	return date, start, end, nil
}

// Create books a slot.  The conflict check is scoped to the seat when
// one is given and to the whole room otherwise; adjacency is allowed.
// On success the reservation is persisted (approved or pending per
// policy) and notification plus queue event are dispatched
// best-effort.
func (s *ReservationService) Create(ctx context.Context, in BookingInput, req Requester) (model.Reservation, error) {
	date, start, end, err := in.validate()
	if err != nil {
		return model.Reservation{}, err
	}

	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return model.Reservation{}, err
	}
	if in.SeatID != nil {
		seat, err := s.seats.GetByID(ctx, *in.SeatID)
		if err != nil {
			return model.Reservation{}, err
		}
		if seat.RoomID != room.ID {
			return model.Reservation{}, fmt.Errorf("%w: seat %d does not belong to room %d", ErrInvalidInput, seat.ID, room.ID)
		}
		if !seat.IsActive {
			return model.Reservation{}, fmt.Errorf("%w: seat %s is not available", ErrInvalidInput, seat.Number)
		}
	}

	status := model.StatusPending
	if s.autoApprove {
		status = model.StatusApproved
	}
	booker := in.Booker
	if booker == "" {
		booker = req.Name
	}
	department := in.Department
	if department == "" {
		department = req.Department
	}
	userID := req.ID
	res := model.Reservation{
		UserID:     &userID,
		RoomID:     room.ID,
		SeatID:     in.SeatID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		Title:      in.Title,
		Booker:     booker,
		Department: department,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}

	conflict, err := s.store.CreateIfFree(ctx, &res)
	if err != nil {
		return model.Reservation{}, err
	}
	if conflict != nil {
		metrics.IncReservation("conflict")
		return model.Reservation{}, &ConflictError{Start: conflict.StartTime, End: conflict.EndTime}
	}

	metrics.IncReservation("created")
	s.afterChange(ctx, res, room.Name, notify.ActionCreate)
	return res, nil
}

// Update rewrites an existing reservation after re-running the
// conflict check with the record itself excluded.  Only the owner or
// staff may update; anyone else gets ErrForbidden so callers can
// report the skip instead of silently dropping it.
func (s *ReservationService) Update(ctx context.Context, id uint64, in BookingInput, req Requester) (model.Reservation, error) {
	date, start, end, err := in.validate()
	if err != nil {
		return model.Reservation{}, err
	}
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if !existing.OwnedBy(req.ID) && !req.Staff {
		return model.Reservation{}, repository.ErrForbidden
	}
	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return model.Reservation{}, err
	}

	updated := existing
	updated.RoomID = room.ID
	// A nil seat in the input means "unchanged", not "drop the seat";
	// the legacy calendar shape never carries one.
	if in.SeatID != nil {
		seat, err := s.seats.GetByID(ctx, *in.SeatID)
		if err != nil {
			return model.Reservation{}, err
		}
		if seat.RoomID != room.ID {
			return model.Reservation{}, fmt.Errorf("%w: seat %d does not belong to room %d", ErrInvalidInput, seat.ID, room.ID)
		}
		if !seat.IsActive {
			return model.Reservation{}, fmt.Errorf("%w: seat %s is not available", ErrInvalidInput, seat.Number)
		}
		updated.SeatID = in.SeatID
	}
	updated.Date = date
	updated.StartTime = start
	updated.EndTime = end
	updated.Title = in.Title
	if in.Booker != "" {
		updated.Booker = in.Booker
	}
	if in.Department != "" {
		updated.Department = in.Department
	}
	if s.autoApprove {
		updated.Status = model.StatusApproved
	}

	conflict, err := s.store.UpdateIfFree(ctx, &updated)
	if err != nil {
		return model.Reservation{}, err
	}
	if conflict != nil {
		metrics.IncReservation("conflict")
		return model.Reservation{}, &ConflictError{Start: conflict.StartTime, End: conflict.EndTime}
	}

	metrics.IncReservation("updated")
	s.afterChange(ctx, updated, room.Name, notify.ActionModify)
	return updated, nil
}

// Cancel soft-deletes a reservation.  Only the owner or staff may
// cancel.  Cancelling an already-cancelled reservation succeeds
// without side effects, so repeated cancels do not re-notify.
func (s *ReservationService) Cancel(ctx context.Context, id uint64, req Requester) error {
	res, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !res.OwnedBy(req.ID) && !req.Staff {
		return repository.ErrForbidden
	}
	if res.Status == model.StatusCancelled {
		return nil
	}
	if err := s.store.SetStatus(ctx, id, model.StatusCancelled); err != nil {
		return err
	}
	res.Status = model.StatusCancelled

	roomName := ""
	if room, err := s.rooms.GetByID(ctx, res.RoomID); err == nil {
		roomName = room.Name
	}
	metrics.IncReservation("cancelled")
	s.afterChange(ctx, res, roomName, notify.ActionCancel)
	return nil
}

// SeatStatus describes one seat in the availability view.
type SeatStatus struct {
	Seat     model.Seat
	Occupied bool
}

// Availability computes per-seat occupancy for a room and date.  With
// a start/end pair a seat is occupied iff an active reservation
// overlaps the queried range; without one it is occupied iff the seat
// has any active reservation that day.
func (s *ReservationService) Availability(ctx context.Context, roomID uint64, dateStr, startStr, endStr string) ([]SeatStatus, error) {
	date, err := utils.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	var start, end string
	ranged := startStr != "" && endStr != ""
	if ranged {
		if start, err = utils.ParseClock(startStr); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		if end, err = utils.ParseClock(endStr); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
	}

	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	seats, err := s.seats.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.ActiveByRoomDate(ctx, roomID, date)
	if err != nil {
		return nil, err
	}

	bySeat := make(map[uint64][]model.Reservation, len(active))
	for _, res := range active {
		if res.SeatID != nil {
			bySeat[*res.SeatID] = append(bySeat[*res.SeatID], res)
		}
	}

	out := make([]SeatStatus, 0, len(seats))
	for _, seat := range seats {
		occupied := false
		for _, res := range bySeat[seat.ID] {
			if !ranged || utils.Overlaps(res.StartTime, res.EndTime, start, end) {
				occupied = true
				break
			}
		}
		out = append(out, SeatStatus{Seat: seat, Occupied: occupied})
	}
	return out, nil
}

// afterChange fires the webhook notification and the queue event.
// Both are best-effort: failures are already logged downstream and
// never affect the booking result.
func (s *ReservationService) afterChange(ctx context.Context, res model.Reservation, roomName string, action notify.Action) {
	if s.notifier != nil {
		_ = s.notifier.Dispatch(ctx, res, roomName, action)
	}
	if s.events != nil {
		ev := queue.ReservationEvent{
			EventID:       uuid.NewString(),
			Action:        string(action),
			ReservationID: res.ID,
			RoomID:        res.RoomID,
			RoomName:      roomName,
			Date:          res.Date,
			StartTime:     res.StartTime,
			EndTime:       res.EndTime,
			Title:         res.Title,
			Booker:        res.Booker,
			Department:    res.Department,
			Status:        res.Status,
			OccurredAt:    time.Now().UTC().Format(time.RFC3339),
		}
		if res.UserID != nil {
			ev.UserID = *res.UserID
		}
		if res.SeatID != nil {
			ev.SeatID = *res.SeatID
		}
		if err := s.events.Publish(ctx, ev); err != nil {
			s.log.Warn().Err(err).Uint64("reservation_id", res.ID).Msg("event publish failed")
		}
	}
}
