package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

type staticURL string

func (s staticURL) WebhookURL() string { return string(s) }

func sampleReservation() model.Reservation {
	return model.Reservation{
		ID:         42,
		RoomID:     1,
		Date:       "2024-05-01",
		StartTime:  "09:00",
		EndTime:    "10:00",
		Title:      "exam prep",
		Booker:     "Alice",
		Department: "Physics",
		Status:     model.StatusApproved,
	}
}

func TestDispatchSuccess(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer srv.Close()

	d := New(staticURL(srv.URL), zerolog.Nop())
	err := d.Dispatch(context.Background(), sampleReservation(), "Reading Room", ActionCreate)
	require.NoError(t, err)

	assert.Equal(t, "markdown_v2", got["msgtype"])
	md, ok := got["markdown_v2"].(map[string]any)
	require.True(t, ok)
	content, _ := md["content"].(string)
	assert.Contains(t, content, "New reservation")
	assert.Contains(t, content, "Reading Room")
	assert.Contains(t, content, "09:00 \\- 10:00")
}

type debugURL string

func (d debugURL) WebhookURL() string { return string(d) }
func (d debugURL) DebugMode() bool    { return true }

func TestDispatchLogsPayloadInDebugMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	d := New(debugURL(srv.URL), zerolog.New(&buf))
	err := d.Dispatch(context.Background(), sampleReservation(), "Reading Room", ActionCreate)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "webhook payload")
	assert.Contains(t, buf.String(), "markdown_v2")
}

func TestDispatchSkipsWithoutURL(t *testing.T) {
	d := New(staticURL(""), zerolog.Nop())
	err := d.Dispatch(context.Background(), sampleReservation(), "Reading Room", ActionCreate)
	assert.NoError(t, err)
}

func TestDispatchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := New(staticURL(srv.URL), zerolog.Nop())
	err := d.Dispatch(context.Background(), sampleReservation(), "Reading Room", ActionCreate)
	assert.ErrorContains(t, err, "502")
}

func TestDispatchErrCodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errcode":93000,"errmsg":"invalid key"}`))
	}))
	defer srv.Close()

	d := New(staticURL(srv.URL), zerolog.Nop())
	err := d.Dispatch(context.Background(), sampleReservation(), "Reading Room", ActionCreate)
	assert.ErrorContains(t, err, "93000")
}

func TestDispatchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	d := New(staticURL(srv.URL), zerolog.Nop())
	err := d.Dispatch(context.Background(), sampleReservation(), "Reading Room", ActionCreate)
	assert.Error(t, err)
}

func TestCancelMessageStatus(t *testing.T) {
	res := sampleReservation()
	res.Status = model.StatusCancelled
	msg := buildMessage(res, "Reading Room", ActionCancel)
	assert.Contains(t, msg, "Reservation cancelled")
	assert.Contains(t, msg, "| **Status** | cancelled |")
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `exam \- prep\!`, EscapeMarkdown("exam - prep!"))
	assert.Equal(t, `a\_b\*c`, EscapeMarkdown("a_b*c"))
	assert.Equal(t, "plain text", EscapeMarkdown("plain text"))
}
