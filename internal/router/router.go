// Package router registers the HTTP routes and their middleware
// chains.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/handler"
	"github.com/iliyamo/study-room-reservation/internal/middleware"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth      *handler.AuthHandler
	Calendar  *handler.CalendarHandler
	Admin     *handler.AdminHandler
	Dashboard *handler.DashboardHandler
	Export    *handler.ExportHandler
}

// Register wires every route.  Auth endpoints live under /v1/auth,
// the calendar API under /api behind JWT auth, and management
// endpoints additionally behind the staff gate.
func Register(e *echo.Echo, h Handlers, cfg config.Config, db *sql.DB, rdb *redis.Client) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.Use(middleware.RequestMetrics())
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	api := e.Group("/api")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))
	api.Use(middleware.RequireRole(model.RoleStudent, model.RoleTeacher, model.RoleAdmin))

	api.GET("/me", h.Auth.Me)
	api.PUT("/me", h.Auth.UpdateMe)
	api.POST("/logout", h.Auth.Logout)

	// read endpoints sit behind the response cache
	cached := api.Group("", middleware.ResponseCache(config.LoadCacheConfig(), rdb))
	cached.GET("/load_rooms", h.Calendar.LoadRooms)
	cached.GET("/load_reservations", h.Calendar.LoadReservations)
	cached.GET("/load_settings", h.Admin.LoadSettings)
	cached.GET("/announcements", h.Admin.ListAnnouncements)

	api.GET("/rooms/:id/availability", h.Calendar.Availability)
	api.GET("/my_reservations", h.Calendar.MyReservations)
	api.GET("/my_statistics", h.Dashboard.MyStatistics)
	api.GET("/dashboard", h.Dashboard.Dashboard)
	api.POST("/save_reservations", h.Calendar.SaveReservations)
	api.POST("/cancel_reservation", h.Calendar.CancelReservation)

	staff := api.Group("", middleware.RequireStaff())
	staff.POST("/save_rooms", h.Admin.SaveRooms)
	staff.DELETE("/rooms/:id", h.Admin.DeleteRoom)
	staff.POST("/save_seats", h.Admin.SaveSeats)
	staff.POST("/generate_seats", h.Admin.GenerateSeats)
	staff.POST("/save_equipment", h.Admin.SaveEquipment)
	staff.POST("/save_settings", h.Admin.SaveSettings)
	staff.POST("/announcements", h.Admin.CreateAnnouncement)
	staff.DELETE("/announcements/:id", h.Admin.DeleteAnnouncement)
	staff.GET("/export_reservations", h.Export.ExportReservations)
}
