package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/study-room-reservation/internal/middleware"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/service"
)

// CalendarHandler serves the booking calendar: room and reservation
// listings plus the booking, update and cancel operations.
type CalendarHandler struct {
	Reservations *service.ReservationService
	ResRepo      *repository.ReservationRepo
	Rooms        *repository.RoomRepo
	Equipment    *repository.EquipmentRepo
	Users        *repository.UserRepo
	Profiles     *repository.ProfileRepo
	Log          zerolog.Logger
}

func NewCalendarHandler(res *service.ReservationService, rr *repository.ReservationRepo, rooms *repository.RoomRepo, eq *repository.EquipmentRepo, users *repository.UserRepo, profiles *repository.ProfileRepo, log zerolog.Logger) *CalendarHandler {
	return &CalendarHandler{
		Reservations: res,
		ResRepo:      rr,
		Rooms:        rooms,
		Equipment:    eq,
		Users:        users,
		Profiles:     profiles,
		Log:          log.With().Str("component", "calendar").Logger(),
	}
}

// requester resolves the authenticated caller into the booking
// identity the engine needs.
func (h *CalendarHandler) requester(ctx context.Context, c echo.Context) (service.Requester, error) {
	uid, role, ok := middleware.Identity(c)
	if !ok {
		return service.Requester{}, echo.ErrUnauthorized
	}
	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return service.Requester{}, err
	}
	profile, err := h.Profiles.GetByUserID(ctx, uid)
	if err != nil {
		return service.Requester{}, err
	}
	return service.Requester{
		ID:         uid,
		Name:       user.RealName,
		Department: profile.Department,
		Staff:      role.Staff(),
	}, nil
}

// writeBookingError maps engine errors onto the API's status/message
// shape.
func writeBookingError(c echo.Context, err error) error {
	var conflict *service.ConflictError
	switch {
	case errors.As(err, &conflict):
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": conflict.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"status": "error", "message": "forbidden"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "internal error"})
}

// roomPart is one row of the load_rooms response.
type roomPart struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Capacity    int      `json:"capacity"`
	Description string   `json:"description"`
	Equipment   []string `json:"equipment"`
	Status      string   `json:"status"`
}

// LoadRooms lists every room with its active equipment names.
func (h *CalendarHandler) LoadRooms(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "load rooms failed"})
	}
	out := make([]roomPart, 0, len(rooms))
	for _, room := range rooms {
		items, err := h.Equipment.ListByRoom(ctx, room.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "load equipment failed"})
		}
		names := make([]string, 0, len(items))
		for _, it := range items {
			if it.IsActive {
				names = append(names, it.Name)
			}
		}
		out = append(out, roomPart{
			ID:          room.ID,
			Name:        room.Name,
			Category:    room.Category,
			Capacity:    room.Capacity,
			Description: room.Description,
			Equipment:   names,
			Status:      room.Status,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// reservationPart is one row of the load_reservations response.
type reservationPart struct {
	ID         uint64  `json:"id"`
	Room       uint64  `json:"room"`
	SeatID     *uint64 `json:"seat_id,omitempty"`
	Date       string  `json:"date"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Title      string  `json:"title"`
	Booker     string  `json:"booker"`
	Department string  `json:"department"`
	Status     string  `json:"status"`
	IsMine     bool    `json:"is_mine"`
	RoomName   string  `json:"room_name"`
}

// LoadReservations lists every non-cancelled reservation, flagging
// the caller's own rows.
func (h *CalendarHandler) LoadReservations(c echo.Context) error {
	uid, _, _ := middleware.Identity(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.ResRepo.ListCalendar(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "load reservations failed"})
	}
	out := make([]reservationPart, 0, len(rows))
	for _, row := range rows {
		out = append(out, reservationPart{
			ID:         row.ID,
			Room:       row.RoomID,
			SeatID:     row.SeatID,
			Date:       row.Date,
			Start:      row.StartTime,
			End:        row.EndTime,
			Title:      row.Title,
			Booker:     row.Booker,
			Department: row.Department,
			Status:     row.Status,
			IsMine:     row.OwnedBy(uid),
			RoomName:   row.RoomName,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// saveReservationsReq accepts both booking payload shapes: the seat
// booking shape carries room_id/seat_id, the legacy calendar shape a
// single object or a reservations array keyed by room.
type saveReservationsReq struct {
	// seat-booking shape
	RoomID uint64  `json:"room_id"`
	SeatID *uint64 `json:"seat_id"`

	// legacy single-object shape shares date/time/title fields
	ID         uint64 `json:"id"`
	Room       uint64 `json:"room"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Title      string `json:"title"`
	Booker     string `json:"booker"`
	Department string `json:"department"`

	// legacy bulk shape
	Reservations []legacyReservation `json:"reservations"`
}

type legacyReservation struct {
	ID         uint64 `json:"id"`
	Room       uint64 `json:"room"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	LegacySt   string `json:"start_time"`
	LegacyEn   string `json:"end_time"`
	Title      string `json:"title"`
	Booker     string `json:"booker"`
	Department string `json:"department"`
}

func (r legacyReservation) start() string {
	if r.Start != "" {
		return r.Start
	}
	return r.LegacySt
}

func (r legacyReservation) end() string {
	if r.End != "" {
		return r.End
	}
	return r.LegacyEn
}

// SaveReservations books or updates reservations.  The seat shape
// books exactly one slot; the legacy shape may carry several items and
// reports per-item skips instead of failing the whole batch.
func (h *CalendarHandler) SaveReservations(c echo.Context) error {
	var req saveReservationsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	requester, err := h.requester(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "unauthorized"})
	}

	// seat-booking shape
	if req.SeatID != nil && req.RoomID != 0 {
		res, err := h.Reservations.Create(ctx, service.BookingInput{
			RoomID: req.RoomID,
			SeatID: req.SeatID,
			Date:   req.Date,
			Start:  req.StartTime,
			End:    req.EndTime,
			Title:  req.Title,
		}, requester)
		if err != nil {
			return writeBookingError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "success", "id": res.ID})
	}

	items := req.Reservations
	if len(items) == 0 {
		if req.Room == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "no reservations in payload"})
		}
		items = []legacyReservation{{
			ID:         req.ID,
			Room:       req.Room,
			Date:       req.Date,
			Start:      req.Start,
			End:        req.End,
			LegacySt:   req.StartTime,
			LegacyEn:   req.EndTime,
			Title:      req.Title,
			Booker:     req.Booker,
			Department: req.Department,
		}}
	}

	type skippedItem struct {
		ID     uint64 `json:"id,omitempty"`
		Reason string `json:"reason"`
	}
	saved := 0
	var skipped []skippedItem
	for _, item := range items {
		in := service.BookingInput{
			RoomID:     item.Room,
			Date:       item.Date,
			Start:      item.start(),
			End:        item.end(),
			Title:      item.Title,
			Booker:     item.Booker,
			Department: item.Department,
		}
		if item.ID != 0 {
			_, err = h.Reservations.Update(ctx, item.ID, in, requester)
		} else {
			_, err = h.Reservations.Create(ctx, in, requester)
		}
		if err != nil {
			var conflict *service.ConflictError
			switch {
			case errors.As(err, &conflict), errors.Is(err, service.ErrInvalidInput),
				errors.Is(err, repository.ErrForbidden), errors.Is(err, repository.ErrNotFound):
				skipped = append(skipped, skippedItem{ID: item.ID, Reason: err.Error()})
				continue
			}
			return writeBookingError(c, err)
		}
		saved++
	}

	resp := echo.Map{"status": "success", "saved": saved}
	if len(skipped) > 0 {
		resp["skipped"] = skipped
	}
	return c.JSON(http.StatusOK, resp)
}

// CancelReservation soft-deletes a reservation owned by the caller,
// or any reservation when the caller is staff.
func (h *CalendarHandler) CancelReservation(c echo.Context) error {
	var req struct {
		ID uint64 `json:"id"`
	}
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	requester, err := h.requester(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "unauthorized"})
	}
	if err := h.Reservations.Cancel(ctx, req.ID, requester); err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

// seatAvailabilityPart is one seat in the availability response.
type seatAvailabilityPart struct {
	ID       uint64 `json:"id"`
	Number   string `json:"number"`
	IsActive bool   `json:"is_active"`
	Occupied bool   `json:"occupied"`
}

// Availability reports per-seat occupancy for a room and date, with
// an optional start/end range query.
func (h *CalendarHandler) Availability(c echo.Context) error {
	roomID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid room id"})
	}
	date := c.QueryParam("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	statuses, err := h.Reservations.Availability(ctx, roomID, date, c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return writeBookingError(c, err)
	}
	out := make([]seatAvailabilityPart, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, seatAvailabilityPart{
			ID:       st.Seat.ID,
			Number:   st.Seat.Number,
			IsActive: st.Seat.IsActive,
			Occupied: st.Occupied,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "date": date, "seats": out})
}

// MyReservations lists the caller's recent reservations for the
// personal dashboard.
func (h *CalendarHandler) MyReservations(c echo.Context) error {
	uid, _, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.ResRepo.ListByUser(ctx, uid, 50)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "load reservations failed"})
	}
	out := make([]reservationPart, 0, len(rows))
	for _, row := range rows {
		out = append(out, reservationPart{
			ID:         row.ID,
			Room:       row.RoomID,
			SeatID:     row.SeatID,
			Date:       row.Date,
			Start:      row.StartTime,
			End:        row.EndTime,
			Title:      row.Title,
			Booker:     row.Booker,
			Department: row.Department,
			Status:     row.Status,
			IsMine:     true,
		})
	}
	return c.JSON(http.StatusOK, out)
}
