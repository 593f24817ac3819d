// Package repository defines the storage abstraction for accounts and
// profiles plus the sentinel errors shared with higher layers.  The
// sentinels let handlers distinguish failure scenarios without inspecting
// driver errors: ErrEmailExists and ErrUsernameExists surface uniqueness
// violations (whether caught by the advisory pre-check or by the database
// unique index losing a race), ErrNotFound covers missing rows.
package repository

import "errors"

// ErrNotFound is returned when no user or profile row matches the query.
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert would violate the unique
// index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an insert or rename would violate
// the unique index on users.username.
var ErrUsernameExists = errors.New("username already exists")
