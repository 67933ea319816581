// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"maps"
	"net/http"
)

const (
	DomainUsers Domain = "USERS"
)

// Samba Account Error Codes (1900-1999)
const (
	UserNotFound        = 1900 + iota // Samba account not found
	UserAlreadyExists                 // Samba account already exists
	UserCreateFailed                  // Failed to create account
	UserDeleteFailed                  // Failed to delete account
	UserEnableFailed                  // Failed to enable account
	UserDisableFailed                 // Failed to disable account
	UserInvalidName                   // Invalid username
	UserInvalidPassword               // Invalid password
	UserProtected                     // Protected account cannot be modified
	UserListFailed                    // Failed to list accounts
)

func init() {
	userErrorDefinitions := map[ErrorCode]struct {
		message    string
		domain     Domain
		httpStatus int
	}{
		UserNotFound: {
			"Samba account not found",
			DomainUsers,
			http.StatusNotFound,
		},
		UserAlreadyExists: {
			"Samba account already exists",
			DomainUsers,
			http.StatusConflict,
		},
		UserCreateFailed: {
			"Failed to create Samba account",
			DomainUsers,
			http.StatusInternalServerError,
		},
		UserDeleteFailed: {
			"Failed to delete Samba account",
			DomainUsers,
			http.StatusInternalServerError,
		},
		UserEnableFailed: {
			"Failed to enable Samba account",
			DomainUsers,
			http.StatusInternalServerError,
		},
		UserDisableFailed: {
			"Failed to disable Samba account",
			DomainUsers,
			http.StatusInternalServerError,
		},
		UserInvalidName: {
			"Invalid username",
			DomainUsers,
			http.StatusBadRequest,
		},
		UserInvalidPassword: {
			"Invalid password",
			DomainUsers,
			http.StatusBadRequest,
		},
		UserProtected: {
			"Protected account cannot be modified",
			DomainUsers,
			http.StatusForbidden,
		},
		UserListFailed: {
			"Failed to list Samba accounts",
			DomainUsers,
			http.StatusInternalServerError,
		},
	}

	// Add user error definitions to the main error definitions map
	maps.Copy(errorDefinitions, userErrorDefinitions)
}
