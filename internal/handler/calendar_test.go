package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/service"
)

func runBookingError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, writeBookingError(c, err))
	return rec
}

func TestWriteBookingErrorMapping(t *testing.T) {
	rec := runBookingError(t, &service.ConflictError{Start: "09:00", End: "10:00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "09:00-10:00")

	rec = runBookingError(t, service.ErrInvalidInput)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = runBookingError(t, repository.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = runBookingError(t, repository.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = runBookingError(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestParseIDParam(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, err := parseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		c.SetParamValues(bad)
		_, err := parseIDParam(c, "id")
		assert.Error(t, err, "input %q", bad)
	}
}
