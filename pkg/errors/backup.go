// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"maps"
	"net/http"
)

const (
	DomainBackup Domain = "BACKUP"
)

// Backup Error Codes (2100-2199)
const (
	BackupListFailed     = 2100 + iota // Failed to list backup files
	BackupPruneFailed                  // Failed to prune backup files
	BackupScheduleFailed               // Failed to schedule backup pruning
)

func init() {
	backupErrorDefinitions := map[ErrorCode]struct {
		message    string
		domain     Domain
		httpStatus int
	}{
		BackupListFailed: {
			"Failed to list backup files",
			DomainBackup,
			http.StatusInternalServerError,
		},
		BackupPruneFailed: {
			"Failed to prune backup files",
			DomainBackup,
			http.StatusInternalServerError,
		},
		BackupScheduleFailed: {
			"Failed to schedule backup pruning",
			DomainBackup,
			http.StatusInternalServerError,
		},
	}

	// Add backup error definitions to the main error definitions map
	maps.Copy(errorDefinitions, backupErrorDefinitions)
}
