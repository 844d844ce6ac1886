package model

import "time"

// Announcement is a staff-posted notice shown on dashboards, newest
// first.
type Announcement struct {
	ID        uint64    // announcements.id
	Title     string    // announcements.title
	Content   string    // announcements.content
	AuthorID  uint64    // announcements.author_id
	CreatedAt time.Time // announcements.created_at
}

// Setting is one row of the admin-editable key/value store (webhook
// URL, debug flag and similar).  Values are read through an injected
// snapshot, not row-by-row per request.
type Setting struct {
	Key   string // settings.key
	Value string // settings.value
}
