package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/middleware"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

// AdminHandler covers the management endpoints: room, seat and
// equipment upserts, runtime settings and announcements.
type AdminHandler struct {
	Rooms         *repository.RoomRepo
	Seats         *repository.SeatRepo
	Equipment     *repository.EquipmentRepo
	SettingsRepo  *repository.SettingsRepo
	Settings      *config.Settings
	Announcements *repository.AnnouncementRepo
	Log           zerolog.Logger
}

func NewAdminHandler(rooms *repository.RoomRepo, seats *repository.SeatRepo, eq *repository.EquipmentRepo, sr *repository.SettingsRepo, settings *config.Settings, ann *repository.AnnouncementRepo, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		Rooms:         rooms,
		Seats:         seats,
		Equipment:     eq,
		SettingsRepo:  sr,
		Settings:      settings,
		Announcements: ann,
		Log:           log.With().Str("component", "admin").Logger(),
	}
}

type saveRoomReq struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category"`
	Capacity    int     `json:"capacity" validate:"gte=0"`
	Description string  `json:"description"`
	ManagerID   *uint64 `json:"manager_id"`
	Status      string  `json:"status"`
}

// decodeRoomList accepts either a bare JSON array or the
// {"rooms":[...]} wrapper some clients send.
func decodeRoomList(body []byte) ([]saveRoomReq, error) {
	var rooms []saveRoomReq
	if err := json.Unmarshal(body, &rooms); err == nil {
		return rooms, nil
	}
	var wrapped struct {
		Rooms []saveRoomReq `json:"rooms"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Rooms, nil
}

// SaveRooms upserts rooms from a list payload.  Unknown categories
// and statuses fall back to the defaults rather than failing the
// batch.
func (h *AdminHandler) SaveRooms(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "rooms list required"})
	}
	rooms, err := decodeRoomList(body)
	if err != nil || len(rooms) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "rooms list required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	saved := 0
	for _, in := range rooms {
		if err := c.Validate(&in); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
		}
		room := model.Room{
			ID:          in.ID,
			Name:        strings.TrimSpace(in.Name),
			Category:    normalizeRoomCategory(in.Category),
			Capacity:    in.Capacity,
			Description: in.Description,
			ManagerID:   in.ManagerID,
			Status:      normalizeRoomStatus(in.Status),
		}
		if _, err := h.Rooms.Upsert(ctx, &room); err != nil {
			h.Log.Error().Err(err).Str("room", room.Name).Msg("room upsert failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "save rooms failed"})
		}
		saved++
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "saved": saved})
}

func normalizeRoomCategory(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case model.RoomComputer:
		return model.RoomComputer
	case model.RoomBook:
		return model.RoomBook
	default:
		return model.RoomSelfStudy
	}
}

func normalizeRoomStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case model.RoomMaintenance:
		return model.RoomMaintenance
	case model.RoomUnavailable:
		return model.RoomUnavailable
	default:
		return model.RoomAvailable
	}
}

// DeleteRoom removes a room along with its seats and equipment.
func (h *AdminHandler) DeleteRoom(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid room id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "delete room failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

type saveSeatReq struct {
	ID       uint64 `json:"id"`
	RoomID   uint64 `json:"room_id" validate:"required"`
	Number   string `json:"number" validate:"required"`
	IsActive *bool  `json:"is_active"`
}

// SaveSeats upserts seats from a list payload.
func (h *AdminHandler) SaveSeats(c echo.Context) error {
	var req struct {
		Seats []saveSeatReq `json:"seats"`
	}
	if err := c.Bind(&req); err != nil || len(req.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "seats list required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	saved := 0
	for _, in := range req.Seats {
		if err := c.Validate(&in); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
		}
		active := true
		if in.IsActive != nil {
			active = *in.IsActive
		}
		seat := model.Seat{ID: in.ID, RoomID: in.RoomID, Number: strings.TrimSpace(in.Number), IsActive: active}
		if _, err := h.Seats.Upsert(ctx, &seat); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "save seats failed"})
		}
		saved++
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "saved": saved})
}

// GenerateSeats replaces a room's seats with a fresh rows-by-cols
// grid labelled A1, A2, ... per row.
func (h *AdminHandler) GenerateSeats(c echo.Context) error {
	var req struct {
		RoomID uint64 `json:"room_id" validate:"required"`
		Rows   int    `json:"rows" validate:"required,gte=1,lte=26"`
		Cols   int    `json:"cols" validate:"required,gte=1,lte=99"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, req.RoomID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "load room failed"})
	}
	if err := h.Seats.DeleteByRoom(ctx, req.RoomID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "reset seats failed"})
	}
	n, err := h.Seats.GenerateGrid(ctx, req.RoomID, req.Rows, req.Cols)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "generate seats failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "created": n})
}

type saveEquipmentReq struct {
	ID          uint64 `json:"id"`
	RoomID      uint64 `json:"room_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// SaveEquipment upserts equipment records from a list payload.
func (h *AdminHandler) SaveEquipment(c echo.Context) error {
	var req struct {
		Equipment []saveEquipmentReq `json:"equipment"`
	}
	if err := c.Bind(&req); err != nil || len(req.Equipment) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "equipment list required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	saved := 0
	for _, in := range req.Equipment {
		if err := c.Validate(&in); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
		}
		active := true
		if in.IsActive != nil {
			active = *in.IsActive
		}
		item := model.Equipment{ID: in.ID, RoomID: in.RoomID, Name: strings.TrimSpace(in.Name), Description: in.Description, IsActive: active}
		if _, err := h.Equipment.Upsert(ctx, &item); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "save equipment failed"})
		}
		saved++
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "saved": saved})
}

// LoadSettings returns the current settings snapshot.
func (h *AdminHandler) LoadSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Settings.All())
}

// SaveSettings upserts key-value pairs and reloads the snapshot.  A
// literal "settings" wrapper key emitted by older clients is skipped.
func (h *AdminHandler) SaveSettings(c echo.Context) error {
	var req map[string]string
	if err := c.Bind(&req); err != nil || len(req) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "settings map required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	saved := 0
	for key, value := range req {
		if key == "settings" {
			continue
		}
		if err := h.SettingsRepo.Set(ctx, key, value); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "save settings failed"})
		}
		saved++
	}
	if err := h.Settings.Reload(ctx); err != nil {
		h.Log.Error().Err(err).Msg("settings reload failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "saved": saved})
}

// ListAnnouncements returns the most recent announcements.
func (h *AdminHandler) ListAnnouncements(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Announcements.List(ctx, 20)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "load announcements failed"})
	}
	return c.JSON(http.StatusOK, items)
}

// CreateAnnouncement publishes an announcement authored by the
// caller.
func (h *AdminHandler) CreateAnnouncement(c echo.Context) error {
	uid, _, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "unauthorized"})
	}
	var req struct {
		Title   string `json:"title" validate:"required"`
		Content string `json:"content" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ann := model.Announcement{Title: strings.TrimSpace(req.Title), Content: req.Content, AuthorID: uid}
	id, err := h.Announcements.Create(ctx, &ann)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "create announcement failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "id": id})
}

// DeleteAnnouncement removes an announcement.
func (h *AdminHandler) DeleteAnnouncement(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Announcements.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "announcement not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "delete announcement failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}
