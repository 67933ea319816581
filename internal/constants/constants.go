// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package constants

// Build-time variables set via ldflags
var (
	Version   = "v0.1.0-dev" // Set via -X flag during build
	CommitSHA = "unknown"    // Set via -X flag during build
	BuildTime = "unknown"    // Set via -X flag during build
)

const (
	SambaCCVersion     = "v0.1.0"
	SambaCCPIDFilePath = "/var/run/sambacc/sambacc.pid"

	// config
	ConfigFileName = "sambacc.yml"

	// routes
	APIVersion = "v1"
	APIBase    = "/api/" + APIVersion

	APIShares  = APIBase + "/shares"
	APIMounts  = APIBase + "/mounts"
	APIUsers   = APIBase + "/users"
	APIService = APIBase + "/service"

	// Default filesystem paths managed by the panel. All of them can be
	// overridden in the configuration file; these are only the defaults.
	DefaultSmbConfPath        = "/etc/samba/smb.conf"
	DefaultFstabPath          = "/etc/fstab"
	DefaultProcMountsPath     = "/proc/mounts"
	DefaultCredentialsDirPath = "/etc/samba/credentials"
	DefaultBackupDirPath      = "/etc/samba/backups"
	DefaultSambaServiceName   = "smbd"
)
