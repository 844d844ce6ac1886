// Package notify posts reservation events to an external webhook.
// Delivery is best-effort: failures are logged and counted but never
// surface to the booking flow.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/study-room-reservation/internal/metrics"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

// Action tags the kind of reservation change being announced.
type Action string

const (
	ActionCreate Action = "create"
	ActionModify Action = "modify"
	ActionCancel Action = "cancel"
)

var actionTitles = map[Action]string{
	ActionCreate: "New reservation",
	ActionModify: "Reservation updated",
	ActionCancel: "Reservation cancelled",
}

// URLSource supplies the webhook endpoint.  Implemented by
// config.Settings so administrators can change the URL at runtime
// without a restart.
type URLSource interface {
	WebhookURL() string
}

// debugSource is optionally implemented by the URL source.  When the
// admin turns the debug_mode setting on, outgoing payloads are logged
// in full before posting.
type debugSource interface {
	DebugMode() bool
}

// Dispatcher formats reservation messages and POSTs them to the
// configured webhook with a short timeout.
type Dispatcher struct {
	source URLSource
	client *http.Client
	log    zerolog.Logger
}

// New builds a Dispatcher.  The HTTP client timeout bounds the whole
// notification attempt.
func New(source URLSource, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		source: source,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log.With().Str("component", "notify").Logger(),
	}
}

// webhookReply is the success envelope the webhook answers with.
type webhookReply struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Dispatch sends one notification.  The returned error is for tests
// and metrics only; callers in the booking path ignore it.
func (d *Dispatcher) Dispatch(ctx context.Context, res model.Reservation, roomName string, action Action) error {
	url := d.source.WebhookURL()
	if url == "" {
		metrics.IncNotification("skipped")
		d.log.Debug().Uint64("reservation_id", res.ID).Msg("webhook url not configured, skipping notification")
		return nil
	}

	payload := map[string]any{
		"msgtype": "markdown_v2",
		"markdown_v2": map[string]string{
			"content": buildMessage(res, roomName, action),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		metrics.IncNotification("error")
		return err
	}
	if ds, ok := d.source.(debugSource); ok && ds.DebugMode() {
		d.log.Debug().RawJSON("payload", body).Msg("webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		metrics.IncNotification("error")
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := d.client.Do(req)
	if err != nil {
		metrics.IncNotification("error")
		d.log.Warn().Err(err).Uint64("reservation_id", res.ID).Msg("webhook post failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.IncNotification("error")
		err := fmt.Errorf("webhook status %d", resp.StatusCode)
		d.log.Warn().Err(err).Uint64("reservation_id", res.ID).Msg("webhook rejected notification")
		return err
	}
	var reply webhookReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		metrics.IncNotification("error")
		d.log.Warn().Err(err).Uint64("reservation_id", res.ID).Msg("webhook reply unreadable")
		return err
	}
	if reply.ErrCode != 0 {
		metrics.IncNotification("error")
		err := fmt.Errorf("webhook errcode %d: %s", reply.ErrCode, reply.ErrMsg)
		d.log.Warn().Err(err).Uint64("reservation_id", res.ID).Msg("webhook reported failure")
		return err
	}

	metrics.IncNotification("ok")
	return nil
}

// buildMessage renders the markdown table the webhook displays.  All
// free-text fields pass through EscapeMarkdown so user input cannot
// break the table or inject formatting.
func buildMessage(res model.Reservation, roomName string, action Action) string {
	statusText := "booked"
	if action == ActionCancel {
		statusText = "cancelled"
	}
	department := res.Department
	if department == "" {
		department = "n/a"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# 📅 %s\n", actionTitles[action])
	b.WriteString("| **Field** | **Value** |\n| :--- | :--- |\n")
	fmt.Fprintf(&b, "| **Room** | %s |\n", EscapeMarkdown(roomName))
	fmt.Fprintf(&b, "| **Date** | %s |\n", EscapeMarkdown(res.Date))
	fmt.Fprintf(&b, "| **Time** | %s \\- %s |\n", EscapeMarkdown(res.StartTime), EscapeMarkdown(res.EndTime))
	fmt.Fprintf(&b, "| **Title** | %s |\n", EscapeMarkdown(res.Title))
	fmt.Fprintf(&b, "| **Booker** | %s |\n", EscapeMarkdown(res.Booker))
	fmt.Fprintf(&b, "| **Department** | %s |\n", EscapeMarkdown(department))
	fmt.Fprintf(&b, "| **Status** | %s |\n", statusText)
	return b.String()
}

var markdownSpecials = []string{
	"_", "*", "[", "]", "(", ")", "~", "`", ">", "#",
	"+", "-", "=", "|", "{", "}", ".", "!",
}

// EscapeMarkdown backslash-escapes characters that are significant in
// the webhook's markdown_v2 dialect.
func EscapeMarkdown(text string) string {
	for _, ch := range markdownSpecials {
		text = strings.ReplaceAll(text, ch, "\\"+ch)
	}
	return text
}
