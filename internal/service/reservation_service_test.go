package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/notify"
	"github.com/iliyamo/study-room-reservation/internal/queue"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

// fakeResStore mirrors the conflict semantics of the SQL layer: a
// seat booking conflicts with active bookings of the same seat, a
// room booking with any active booking in the room.
type fakeResStore struct {
	mu     sync.Mutex
	nextID uint64
	items  map[uint64]model.Reservation
}

func newFakeResStore() *fakeResStore {
	return &fakeResStore{items: map[uint64]model.Reservation{}}
}

func (f *fakeResStore) conflict(res model.Reservation, excludeID uint64) *model.Reservation {
	for _, ex := range f.items {
		if ex.ID == excludeID || ex.Date != res.Date || !ex.Active() {
			continue
		}
		if res.SeatID != nil {
			if ex.SeatID == nil || *ex.SeatID != *res.SeatID {
				continue
			}
		} else if ex.RoomID != res.RoomID {
			continue
		}
		if utils.Overlaps(ex.StartTime, ex.EndTime, res.StartTime, res.EndTime) {
			hit := ex
			return &hit
		}
	}
	return nil
}

func (f *fakeResStore) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.items[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	return res, nil
}

func (f *fakeResStore) CreateIfFree(_ context.Context, res *model.Reservation) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if hit := f.conflict(*res, 0); hit != nil {
		return hit, nil
	}
	f.nextID++
	res.ID = f.nextID
	f.items[res.ID] = *res
	return nil, nil
}

func (f *fakeResStore) UpdateIfFree(_ context.Context, res *model.Reservation) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[res.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	if hit := f.conflict(*res, res.ID); hit != nil {
		return hit, nil
	}
	f.items[res.ID] = *res
	return nil, nil
}

func (f *fakeResStore) SetStatus(_ context.Context, id uint64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	res.Status = status
	f.items[id] = res
	return nil
}

func (f *fakeResStore) ActiveByRoomDate(_ context.Context, roomID uint64, date string) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, res := range f.items {
		if res.RoomID == roomID && res.Date == date && res.Active() {
			out = append(out, res)
		}
	}
	return out, nil
}

type fakeRoomStore struct{ rooms map[uint64]model.Room }

func (f *fakeRoomStore) GetByID(_ context.Context, id uint64) (model.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return model.Room{}, repository.ErrNotFound
	}
	return room, nil
}

type fakeSeatStore struct{ seats map[uint64]model.Seat }

func (f *fakeSeatStore) GetByID(_ context.Context, id uint64) (model.Seat, error) {
	seat, ok := f.seats[id]
	if !ok {
		return model.Seat{}, repository.ErrNotFound
	}
	return seat, nil
}

func (f *fakeSeatStore) ListByRoom(_ context.Context, roomID uint64) ([]model.Seat, error) {
	var out []model.Seat
	for _, seat := range f.seats {
		if seat.RoomID == roomID {
			out = append(out, seat)
		}
	}
	return out, nil
}

type notifyCall struct {
	action notify.Action
	resID  uint64
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (f *fakeNotifier) Dispatch(_ context.Context, res model.Reservation, _ string, action notify.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{action: action, resID: res.ID})
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
}

func (f *fakePublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type engineFixture struct {
	store     *fakeResStore
	notifier  *fakeNotifier
	publisher *fakePublisher
	svc       *ReservationService
}

func newEngine(t *testing.T, autoApprove bool) *engineFixture {
	t.Helper()
	store := newFakeResStore()
	rooms := &fakeRoomStore{rooms: map[uint64]model.Room{
		1: {ID: 1, Name: "Reading Room", Category: model.RoomSelfStudy, Capacity: 30, Status: model.RoomAvailable},
		2: {ID: 2, Name: "Computer Lab", Category: model.RoomComputer, Capacity: 20, Status: model.RoomAvailable},
	}}
	seats := &fakeSeatStore{seats: map[uint64]model.Seat{
		11: {ID: 11, RoomID: 1, Number: "A1", IsActive: true},
		12: {ID: 12, RoomID: 1, Number: "A2", IsActive: true},
		13: {ID: 13, RoomID: 1, Number: "A3", IsActive: false},
		21: {ID: 21, RoomID: 2, Number: "B1", IsActive: true},
	}}
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := NewReservationService(store, rooms, seats, notifier, publisher, zerolog.Nop(), autoApprove)
	return &engineFixture{store: store, notifier: notifier, publisher: publisher, svc: svc}
}

func seatBooking(seatID uint64, date, start, end string) BookingInput {
	sid := seatID
	return BookingInput{RoomID: 1, SeatID: &sid, Date: date, Start: start, End: end, Title: "study"}
}

var alice = Requester{ID: 7, Name: "Alice", Department: "Physics"}

func TestCreateSeatBooking(t *testing.T) {
	fx := newEngine(t, true)

	res, err := fx.svc.Create(context.Background(), seatBooking(11, "2024-05-01", "09:00", "10:00"), alice)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, res.Status)
	assert.Equal(t, "Alice", res.Booker)
	assert.Equal(t, "Physics", res.Department)
	require.NotNil(t, res.UserID)
	assert.Equal(t, uint64(7), *res.UserID)

	require.Len(t, fx.notifier.calls, 1)
	assert.Equal(t, notify.ActionCreate, fx.notifier.calls[0].action)
	require.Len(t, fx.publisher.events, 1)
	assert.Equal(t, "create", fx.publisher.events[0].Action)
	assert.NotEmpty(t, fx.publisher.events[0].EventID)
}

func TestCreateConflictAndAdjacency(t *testing.T) {
	fx := newEngine(t, true)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, seatBooking(11, "2024-05-01", "09:00", "10:00"), alice)
	require.NoError(t, err)

	_, err = fx.svc.Create(ctx, seatBooking(11, "2024-05-01", "09:30", "10:30"), alice)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "09:00", conflict.Start)
	assert.Equal(t, "10:00", conflict.End)
	assert.Contains(t, conflict.Error(), "09:00-10:00")

	// adjacency is not a conflict
	_, err = fx.svc.Create(ctx, seatBooking(11, "2024-05-01", "10:00", "11:00"), alice)
	assert.NoError(t, err)

	// other seats are unaffected
	_, err = fx.svc.Create(ctx, seatBooking(12, "2024-05-01", "09:00", "10:00"), alice)
	assert.NoError(t, err)

	// other dates are unaffected
	_, err = fx.svc.Create(ctx, seatBooking(11, "2024-05-02", "09:00", "10:00"), alice)
	assert.NoError(t, err)
}

func TestCreateRoomBookingConflictsWithSeatBooking(t *testing.T) {
	fx := newEngine(t, true)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, seatBooking(11, "2024-05-01", "09:00", "10:00"), alice)
	require.NoError(t, err)

	// booking the whole room overlaps any reservation in it
	_, err = fx.svc.Create(ctx, BookingInput{RoomID: 1, Date: "2024-05-01", Start: "09:30", End: "11:00", Title: "meeting"}, alice)
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestCreateValidation(t *testing.T) {
	fx := newEngine(t, true)
	ctx := context.Background()

	cases := []struct {
		name string
		in   BookingInput
	}{
		{"missing title", BookingInput{RoomID: 1, Date: "2024-05-01", Start: "09:00", End: "10:00"}},
		{"loose date", BookingInput{RoomID: 1, Date: "2024-5-1", Start: "09:00", End: "10:00", Title: "x"}},
		{"loose time", BookingInput{RoomID: 1, Date: "2024-05-01", Start: "9:00", End: "10:00", Title: "x"}},
		{"end before start", BookingInput{RoomID: 1, Date: "2024-05-01", Start: "10:00", End: "09:00", Title: "x"}},
		{"empty interval", BookingInput{RoomID: 1, Date: "2024-05-01", Start: "09:00", End: "09:00", Title: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.Create(ctx, tc.in, alice)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	// seat from another room
	wrong := seatBooking(21, "2024-05-01", "09:00", "10:00")
	_, err := fx.svc.Create(ctx, wrong, alice)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// inactive seat
	_, err = fx.svc.Create(ctx, seatBooking(13, "2024-05-01", "09:00", "10:00"), alice)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// unknown room
	_, err = fx.svc.Create(ctx, BookingInput{RoomID: 99, Date: "2024-05-01", Start: "09:00", End: "10:00", Title: "x"}, alice)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPendingPolicy(t *testing.T) {
	fx := newEngine(t, false)

	res, err := fx.svc.Create(context.Background(), seatBooking(11, "2024-05-01", "09:00", "10:00"), alice)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, res.Status)
}

func TestUpdateAuthorization(t *testing.T) {
	fx := newEngine(t, true)
	ctx := context.Background()

	res, err := fx.svc.Create(ctx, seatBooking(11, "2024-05-01", "09:00", "10:00"), alice)
	require.NoError(t, err)

	in := BookingInput{RoomID: 1, Date: "2024-05-01", Start: "11:00", End: "12:00", Title: "moved"}
	mallory := Requester{ID: 8, Name: "Mallory"}
	_, err = fx.svc.Update(ctx, res.ID, in, mallory)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	staff := Requester{ID: 9, Name: "Root", Staff: true}
	updated, err := fx.svc.Update(ctx, res.ID, in, staff)
	require.NoError(t, err)
	assert.Equal(t, "11:00", updated.StartTime)
	assert.Equal(t, "moved", updated.Title)
}

func TestUpdateExcludesItself(t *testing.T) {
	fx := newEngine(t, true)
	ctx := context.Background()

	res, err := fx.svc.Create(ctx, seatBooking(11, "2024-05-01", "09:00", "10:00"), alice)
	require.NoError(t, err)

	// shifting a booking into its own old window is not a conflict
	in := BookingInput{RoomID: 1, SeatID: res.SeatID, Date: "2024-05-01", Start: "09:30", End: "10:30", Title: "study"}
	_, err = fx.svc.Update(ctx, res.ID, in, alice)
	assert.NoError(t, err)
}

func TestUpdateWithoutSeatKeepsSeat(t *testing.T) {
	fx := newEngine(t, true)
	ctx := context.Background()

	res, err := fx.svc.Create(ctx, seatBooking(11, "2024-05-01", "09:00", "10:00"), alice)
	require.NoError(t, err)

	// the bulk calendar shape carries no seat field
	in := BookingInput{RoomID: 1, Date: "2024-05-01", Start: "11:00", End: "12:00", Title: "moved"}
	updated, err := fx.svc.Update(ctx, res.ID, in, alice)
	require.NoError(t, err)
	require.NotNil(t, updated.SeatID)
	assert.Equal(t, uint64(11), *updated.SeatID)

	stored, err := fx.store.GetByID(ctx, res.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SeatID)
	assert.Equal(t, uint64(11), *stored.SeatID)
}

func TestUpdateSeatChecks(t *testing.T) {
	fx := newEngine(t, true)
	ctx := context.Background()

	res, err := fx.svc.Create(ctx, seatBooking(11, "2024-05-01", "09:00", "10:00"), alice)
	require.NoError(t, err)

	// seat 21 belongs to room 2
	wrongRoom := seatBooking(21, "2024-05-01", "09:00", "10:00")
	_, err = fx.svc.Update(ctx, res.ID, wrongRoom, alice)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// seat 13 is inactive
	inactive := seatBooking(13, "2024-05-01", "09:00", "10:00")
	_, err = fx.svc.Update(ctx, res.ID, inactive, alice)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// moving to a valid free seat works
	other := seatBooking(12, "2024-05-01", "09:00", "10:00")
	updated, err := fx.svc.Update(ctx, res.ID, other, alice)
	require.NoError(t, err)
	require.NotNil(t, updated.SeatID)
	assert.Equal(t, uint64(12), *updated.SeatID)
}

func TestCancelIdempotent(t *testing.T) {
	fx := newEngine(t, true)
	ctx := context.Background()

	res, err := fx.svc.Create(ctx, seatBooking(11, "2024-05-01", "09:00", "10:00"), alice)
	require.NoError(t, err)

	require.NoError(t, fx.svc.Cancel(ctx, res.ID, alice))
	stored, err := fx.store.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, stored.Status)

	cancels := 0
	for _, call := range fx.notifier.calls {
		if call.action == notify.ActionCancel {
			cancels++
		}
	}
	assert.Equal(t, 1, cancels)

	// second cancel succeeds without another notification
	require.NoError(t, fx.svc.Cancel(ctx, res.ID, alice))
	cancels = 0
	for _, call := range fx.notifier.calls {
		if call.action == notify.ActionCancel {
			cancels++
		}
	}
	assert.Equal(t, 1, cancels)

	// the freed slot is bookable again
	_, err = fx.svc.Create(ctx, seatBooking(11, "2024-05-01", "09:00", "10:00"), alice)
	assert.NoError(t, err)
}

func TestCancelAuthorization(t *testing.T) {
	fx := newEngine(t, true)
	ctx := context.Background()

	res, err := fx.svc.Create(ctx, seatBooking(11, "2024-05-01", "09:00", "10:00"), alice)
	require.NoError(t, err)

	err = fx.svc.Cancel(ctx, res.ID, Requester{ID: 8, Name: "Mallory"})
	assert.ErrorIs(t, err, repository.ErrForbidden)

	err = fx.svc.Cancel(ctx, 999, alice)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestAvailability(t *testing.T) {
	fx := newEngine(t, true)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, seatBooking(11, "2024-05-01", "09:00", "10:00"), alice)
	require.NoError(t, err)

	occupied := func(statuses []SeatStatus) map[uint64]bool {
		out := map[uint64]bool{}
		for _, st := range statuses {
			out[st.Seat.ID] = st.Occupied
		}
		return out
	}

	// range query: only overlap counts
	statuses, err := fx.svc.Availability(ctx, 1, "2024-05-01", "09:30", "10:30")
	require.NoError(t, err)
	occ := occupied(statuses)
	assert.True(t, occ[11])
	assert.False(t, occ[12])

	// adjacent range: free
	statuses, err = fx.svc.Availability(ctx, 1, "2024-05-01", "10:00", "11:00")
	require.NoError(t, err)
	assert.False(t, occupied(statuses)[11])

	// no range: any booking that day marks the seat occupied
	statuses, err = fx.svc.Availability(ctx, 1, "2024-05-01", "", "")
	require.NoError(t, err)
	assert.True(t, occupied(statuses)[11])

	// other dates are clear
	statuses, err = fx.svc.Availability(ctx, 1, "2024-05-02", "", "")
	require.NoError(t, err)
	assert.False(t, occupied(statuses)[11])

	_, err = fx.svc.Availability(ctx, 1, "not-a-date", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
