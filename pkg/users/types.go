// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package users

// User is one entry of the Samba password database.
type User struct {
	Username string `json:"username"`
	// Enabled is false when the account carries the disabled flag in the
	// database.
	Enabled bool `json:"enabled"`
	// Flags holds the raw account flags field when the verbose listing is
	// available, e.g. "[U          ]".
	Flags string `json:"flags,omitempty"`
}

// CreateUserRequest carries the fields for a new Samba user.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
