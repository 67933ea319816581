// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"maps"
	"net/http"
)

const (
	DomainMounts Domain = "MOUNTS"
)

// Mount Table Error Codes (1800-1899)
const (
	// Mount table file errors (1800-1819)
	MountTableReadError = 1800 + iota // Failed to read mount table
	MountTableWriteError              // Failed to write mount table
	MountTableParseError              // Failed to parse mount table line
	MountTableBackupFailed            // Failed to back up mount table
	MountNotFound                     // Mount entry not found
	MountAlreadyExists                // Mount entry already exists
	MountInvalidInput                 // Invalid mount entry input

	// Mountpoint and credentials errors (1820-1839)
	MountpointCreateFailed = 1820 + iota // Failed to create mountpoint directory
	MountpointInvalid                    // Invalid mountpoint path
	CredentialsWriteFailed               // Failed to write credentials file
	CredentialsRemoveFailed              // Failed to remove credentials file

	// Live mount operation errors (1840-1859)
	MountOperationFailed   = 1840 + iota // mount command failed
	UnmountOperationFailed               // umount command failed
	MountApplyFailed                     // mount -a failed
	LiveStatusReadError                  // Failed to read live mount status
)

func init() {
	mountErrorDefinitions := map[ErrorCode]struct {
		message    string
		domain     Domain
		httpStatus int
	}{
		MountTableReadError: {
			"Failed to read mount table",
			DomainMounts,
			http.StatusInternalServerError,
		},
		MountTableWriteError: {
			"Failed to write mount table",
			DomainMounts,
			http.StatusInternalServerError,
		},
		MountTableParseError: {
			"Failed to parse mount table line",
			DomainMounts,
			http.StatusInternalServerError,
		},
		MountTableBackupFailed: {
			"Failed to back up mount table",
			DomainMounts,
			http.StatusInternalServerError,
		},
		MountNotFound: {
			"Mount entry not found",
			DomainMounts,
			http.StatusNotFound,
		},
		MountAlreadyExists: {
			"Mount entry already exists",
			DomainMounts,
			http.StatusConflict,
		},
		MountInvalidInput: {
			"Invalid mount entry input",
			DomainMounts,
			http.StatusBadRequest,
		},
		MountpointCreateFailed: {
			"Failed to create mountpoint directory",
			DomainMounts,
			http.StatusInternalServerError,
		},
		MountpointInvalid: {
			"Invalid mountpoint path",
			DomainMounts,
			http.StatusBadRequest,
		},
		CredentialsWriteFailed: {
			"Failed to write credentials file",
			DomainMounts,
			http.StatusInternalServerError,
		},
		CredentialsRemoveFailed: {
			"Failed to remove credentials file",
			DomainMounts,
			http.StatusInternalServerError,
		},
		MountOperationFailed: {
			"Mount operation failed",
			DomainMounts,
			http.StatusInternalServerError,
		},
		UnmountOperationFailed: {
			"Unmount operation failed",
			DomainMounts,
			http.StatusInternalServerError,
		},
		MountApplyFailed: {
			"Failed to apply mount table",
			DomainMounts,
			http.StatusInternalServerError,
		},
		LiveStatusReadError: {
			"Failed to read live mount status",
			DomainMounts,
			http.StatusInternalServerError,
		},
	}

	// Add mount error definitions to the main error definitions map
	maps.Copy(errorDefinitions, mountErrorDefinitions)
}
