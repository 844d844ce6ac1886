package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/middleware"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

// DashboardHandler serves the role-specific landing data and the
// personal usage statistics.
type DashboardHandler struct {
	Rooms         *repository.RoomRepo
	Reservations  *repository.ReservationRepo
	Users         *repository.UserRepo
	Equipment     *repository.EquipmentRepo
	Announcements *repository.AnnouncementRepo
}

func NewDashboardHandler(rooms *repository.RoomRepo, res *repository.ReservationRepo, users *repository.UserRepo, eq *repository.EquipmentRepo, ann *repository.AnnouncementRepo) *DashboardHandler {
	return &DashboardHandler{Rooms: rooms, Reservations: res, Users: users, Equipment: eq, Announcements: ann}
}

// Dashboard returns counters scoped to the caller's role: admins see
// system totals, teachers their managed rooms, students their own
// bookings.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	uid, role, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch role {
	case model.RoleAdmin:
		return h.adminDashboard(ctx, c)
	case model.RoleTeacher:
		return h.teacherDashboard(ctx, c, uid)
	default:
		return h.studentDashboard(ctx, c, uid)
	}
}

func (h *DashboardHandler) adminDashboard(ctx context.Context, c echo.Context) error {
	rooms, err := h.Rooms.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "dashboard failed"})
	}
	reservations, err := h.Reservations.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "dashboard failed"})
	}
	users, err := h.Users.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "dashboard failed"})
	}
	equipment, err := h.Equipment.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "dashboard failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"role":         model.RoleAdmin,
		"rooms":        rooms,
		"reservations": reservations,
		"users":        users,
		"equipment":    equipment,
	})
}

func (h *DashboardHandler) teacherDashboard(ctx context.Context, c echo.Context, uid uint64) error {
	managed, err := h.Rooms.ListByManager(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "dashboard failed"})
	}
	roomIDs := make([]uint64, 0, len(managed))
	for _, room := range managed {
		roomIDs = append(roomIDs, room.ID)
	}
	var inRooms []model.Reservation
	if len(roomIDs) > 0 {
		if inRooms, err = h.Reservations.ListByRooms(ctx, roomIDs); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "dashboard failed"})
		}
	}
	own, err := h.Reservations.ListByUser(ctx, uid, 10)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "dashboard failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"role":              model.RoleTeacher,
		"managed_rooms":     managed,
		"room_reservations": len(inRooms),
		"recent":            own,
	})
}

func (h *DashboardHandler) studentDashboard(ctx context.Context, c echo.Context, uid uint64) error {
	recent, err := h.Reservations.ListByUser(ctx, uid, 10)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "dashboard failed"})
	}
	active := 0
	for _, res := range recent {
		if res.Active() {
			active++
		}
	}
	announcements, err := h.Announcements.List(ctx, 5)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "dashboard failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"role":          model.RoleStudent,
		"recent":        recent,
		"active":        active,
		"announcements": announcements,
	})
}

// MyStatistics sums the caller's approved booking hours.
func (h *DashboardHandler) MyStatistics(c echo.Context) error {
	uid, _, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	approved, err := h.Reservations.ListApprovedByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "statistics failed"})
	}
	var hours float64
	byRoom := map[uint64]float64{}
	for _, res := range approved {
		d := utils.SlotHours(res.StartTime, res.EndTime)
		hours += d
		byRoom[res.RoomID] += d
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_reservations": len(approved),
		"total_hours":        hours,
		"hours_by_room":      byRoom,
	})
}
