// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.  For
// example, ErrNotFound indicates that the requested row does not
// exist, while ErrDuplicate signals that an insert violated a unique
// constraint (the storage-level backstop behind identifier
// generation).
package repository

import "errors"

// ErrNotFound is returned when a lookup by id matches no row.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert fails on a unique key.
// For generated identifiers the caller must treat it as a collision
// and retry with fresh values.
var ErrDuplicate = errors.New("duplicate key")

// ErrLoginExists is returned when creating a user whose login is
// already taken.  Handlers should translate this into an HTTP 409
// response.
var ErrLoginExists = errors.New("login already exists")
