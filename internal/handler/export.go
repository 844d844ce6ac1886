package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

// ExportHandler produces the reservation report spreadsheet.
type ExportHandler struct {
	Reservations *repository.ReservationRepo
	Log          zerolog.Logger
}

func NewExportHandler(res *repository.ReservationRepo, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{Reservations: res, Log: log.With().Str("component", "export").Logger()}
}

var exportHeader = []string{"ID", "Room", "Seat", "Date", "Start", "End", "Title", "Booker", "Department", "Status"}

// ExportReservations writes every reservation in the requested date
// range (default: the last 30 days) into an xlsx workbook.
func (h *ExportHandler) ExportReservations(c echo.Context) error {
	to := c.QueryParam("to")
	if to == "" {
		to = time.Now().Format(utils.DateLayout)
	}
	from := c.QueryParam("from")
	if from == "" {
		from = time.Now().AddDate(0, 0, -30).Format(utils.DateLayout)
	}
	var err error
	if from, err = utils.ParseDate(from); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid from date"})
	}
	if to, err = utils.ParseDate(to); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid to date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	rows, err := h.Reservations.ListRange(ctx, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "load reservations failed"})
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			h.Log.Warn().Err(err).Msg("workbook close failed")
		}
	}()

	const sheet = "Reservations"
	f.SetSheetName("Sheet1", sheet)
	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "build workbook failed"})
		}
	}
	for i, row := range rows {
		seat := ""
		if row.SeatID != nil {
			seat = fmt.Sprintf("%d", *row.SeatID)
		}
		values := []interface{}{
			row.ID, row.RoomName, seat, row.Date, row.StartTime, row.EndTime,
			row.Title, row.Booker, row.Department, row.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "build workbook failed"})
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "write workbook failed"})
	}
	filename := fmt.Sprintf("reservations_%s_%s.xlsx", from, to)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
