// Package repository defines the data access layer. Sentinel errors are
// shared across repositories so handlers can map failure scenarios onto
// HTTP statuses with errors.Is instead of inspecting driver errors.
package repository

import "errors"

// ErrUserNotFound is returned when a user row does not exist. Handlers
// translate this into 404 (directory lookups) or 401 (token subjects that
// no longer resolve to a user).
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when an insert or update would violate the
// unique constraint on users.email. Handlers translate this into 409.
var ErrEmailExists = errors.New("email already exists")

// ErrNoRolesAssigned is returned when the user_roles join yields zero rows
// for a user. Identity was already established upstream, so this is an
// authorization failure (403), not a missing-user error.
var ErrNoRolesAssigned = errors.New("no roles assigned")

// ErrRefreshTokenNotFound is returned when a presented refresh token has no
// row in the refresh_tokens table. Handlers translate this into 403.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// ErrProductNotFound is returned when a product row does not exist,
// including the line-item lookup during order placement. Handlers
// translate this into 404.
var ErrProductNotFound = errors.New("product not found")

// ErrOrderNotFound is returned when an order header does not exist or when
// listing orders yields zero rows. Handlers translate this into 404.
var ErrOrderNotFound = errors.New("order not found")
