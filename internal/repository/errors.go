// Package repository defines error types that are reused across the
// storage layer. These sentinel values allow higher layers such as
// the auth service and handlers to distinguish between different
// failure scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique
// key on users.email. Handlers translate this into an HTTP 409
// response with the user_exists error code.
var ErrEmailExists = errors.New("email already exists")
