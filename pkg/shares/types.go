// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package shares

// Share defaults applied when a section omits a key. These mirror what the
// panel writes for new shares, so a round trip through AddShare/ListShares
// is stable.
const (
	DefaultCreateMask    = "0664"
	DefaultDirectoryMask = "0775"
)

// Share represents one share section of the Samba configuration file.
type Share struct {
	Name          string `json:"name"          validate:"required"`
	Path          string `json:"path"          validate:"required"`
	Comment       string `json:"comment"`
	Writable      bool   `json:"writable"`
	Browseable    bool   `json:"browseable"`
	GuestOK       bool   `json:"guest_ok"`
	ValidUsers    string `json:"valid_users"`
	CreateMask    string `json:"create_mask"`
	DirectoryMask string `json:"directory_mask"`
}

// NewShare returns a Share with the documented defaults filled in.
func NewShare(name, path string) Share {
	return Share{
		Name:          name,
		Path:          path,
		Writable:      true,
		Browseable:    true,
		GuestOK:       false,
		CreateMask:    DefaultCreateMask,
		DirectoryMask: DefaultDirectoryMask,
	}
}

// Sections that never map to shares
var reservedSections = map[string]bool{
	"global":   true,
	"homes":    true,
	"printers": true,
	"print$":   true,
}

// IsReservedSection reports whether a section name is reserved and cannot be
// used as a share name.
func IsReservedSection(name string) bool {
	return reservedSections[name]
}
