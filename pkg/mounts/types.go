// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package mounts

// Filesystem type tags treated as network mounts
var networkFSTypes = map[string]bool{
	"cifs":  true,
	"smb":   true,
	"smb2":  true,
	"smb3":  true,
	"smbfs": true,
}

// IsNetworkFSType reports whether a mount table type field names a network
// filesystem this panel manages.
func IsNetworkFSType(fstype string) bool {
	return networkFSTypes[fstype]
}

// provenanceCommentPrefix marks entries written by this panel. The paired
// comment is removed together with its entry.
const provenanceCommentPrefix = "# Added by Samba Control Center - "

// Default resilience options appended to new entries when absent.
const (
	optionNetdev = "_netdev"
	optionNofail = "nofail"
)

// Entry represents one network mount line of the mount table. IsMounted is
// never persisted; it is recomputed from the live mount status on every
// read.
type Entry struct {
	Remote          string `json:"remote"`
	Mountpoint      string `json:"mountpoint"`
	FSType          string `json:"fstype"`
	Options         string `json:"options"`
	CredentialsFile string `json:"credentials_file,omitempty"`
	IsMounted       bool   `json:"is_mounted"`
}

// AddEntryRequest carries the fields for a new mount table entry. Username
// and password are optional; when both are set they are written to a
// restricted credentials file, never into the table itself.
type AddEntryRequest struct {
	Remote     string `json:"remote"     validate:"required"`
	Mountpoint string `json:"mountpoint" validate:"required"`
	FSType     string `json:"fstype"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Options    string `json:"options"`
}
