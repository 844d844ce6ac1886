// Package repository is the data access layer: one repository struct
// per table, raw SQL, sentinel errors for the failure modes handlers
// need to distinguish.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
// Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// reservation they do not own. Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicate is returned when a uniqueness rule is violated, such as
// registering a username twice or reusing a student number for the
// same role.
var ErrDuplicate = errors.New("duplicate")
