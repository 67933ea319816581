// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package shares

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarekChromy/Sambacontrolcenter/pkg/errors"
)

func createTestLogger(t *testing.T) logger.Logger {
	testLogger, err := logger.New(logger.Config{LogLevel: "debug"})
	require.NoError(t, err)
	return testLogger
}

const testConf = `# Samba configuration
[global]
   workgroup = WORKGROUP
   server string = Test Server

[docs]
   path = /srv/docs
   comment = Documents
   writable = yes
   browseable = yes
   guest ok = no
   create mask = 0664
   directory mask = 0775

[media]
   path = /srv/media
   read only = yes
`

func setupTestStore(t *testing.T, content string) *Store {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "smb.conf")
	if content != "" {
		require.NoError(t, os.WriteFile(confPath, []byte(content), 0644))
	}
	return NewStore(confPath, filepath.Join(dir, "backups"), createTestLogger(t))
}

func TestStore_ListShares(t *testing.T) {
	store := setupTestStore(t, testConf)
	ctx := context.Background()

	shares, err := store.ListShares(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 2)

	t.Logf("Found %d shares", len(shares))

	docs := shares[0]
	assert.Equal(t, "docs", docs.Name)
	assert.Equal(t, "/srv/docs", docs.Path)
	assert.Equal(t, "Documents", docs.Comment)
	assert.True(t, docs.Writable)
	assert.True(t, docs.Browseable)
	assert.False(t, docs.GuestOK)
	assert.Equal(t, "0664", docs.CreateMask)

	// "read only = yes" with no writable key inverts to writable=false
	media := shares[1]
	assert.Equal(t, "media", media.Name)
	assert.False(t, media.Writable)
	// Defaults substituted for missing masks
	assert.Equal(t, "0664", media.CreateMask)
	assert.Equal(t, "0775", media.DirectoryMask)
}

func TestStore_ListShares_MissingFile(t *testing.T) {
	store := setupTestStore(t, "")
	_, err := store.ListShares(context.Background())
	require.Error(t, err)

	pe, ok := errors.IsPanelError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorCode(errors.SharesConfigMissing), pe.Code)
	t.Logf("Expected error for missing file: %v", err)
}

func TestStore_AddShare(t *testing.T) {
	store := setupTestStore(t, testConf)
	ctx := context.Background()

	share := NewShare("projects", "/srv/projects")
	share.Comment = "Project files"
	share.ValidUsers = "alice bob"

	require.NoError(t, store.AddShare(ctx, share))

	shares, err := store.ListShares(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 3)

	// Existing entries keep their order; the new one is appended
	assert.Equal(t, "docs", shares[0].Name)
	assert.Equal(t, "media", shares[1].Name)

	added := shares[2]
	assert.Equal(t, "projects", added.Name)
	assert.Equal(t, "/srv/projects", added.Path)
	assert.Equal(t, "alice bob", added.ValidUsers)
	assert.True(t, added.Writable)
	assert.Equal(t, "0664", added.CreateMask)
}

func TestStore_AddShare_DefaultsOnEmptyGlobalOnlyFile(t *testing.T) {
	store := setupTestStore(t, "[global]\n   workgroup = WORKGROUP\n")
	ctx := context.Background()

	share := NewShare("docs", "/srv/docs")
	require.NoError(t, store.AddShare(ctx, share))

	shares, err := store.ListShares(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "docs", shares[0].Name)
	assert.Equal(t, "/srv/docs", shares[0].Path)
	assert.True(t, shares[0].Writable)
	assert.Equal(t, "0664", shares[0].CreateMask)
}

func TestStore_AddShare_Conflict(t *testing.T) {
	store := setupTestStore(t, testConf)
	ctx := context.Background()

	before, err := os.ReadFile(store.ConfPath())
	require.NoError(t, err)

	err = store.AddShare(ctx, NewShare("docs", "/elsewhere"))
	require.Error(t, err)

	pe, ok := errors.IsPanelError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorCode(errors.SharesAlreadyExists), pe.Code)

	// Conflict leaves the file byte-identical
	after, err := os.ReadFile(store.ConfPath())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_AddShare_Validation(t *testing.T) {
	store := setupTestStore(t, testConf)
	ctx := context.Background()

	tests := []struct {
		name    string
		share   Share
		errCode errors.ErrorCode
	}{
		{
			name:    "empty name",
			share:   Share{Path: "/srv/x"},
			errCode: errors.SharesInvalidInput,
		},
		{
			name:    "empty path",
			share:   Share{Name: "x"},
			errCode: errors.SharesInvalidInput,
		},
		{
			name:    "reserved global",
			share:   NewShare("global", "/srv/x"),
			errCode: errors.SharesReservedName,
		},
		{
			name:    "reserved printers",
			share:   NewShare("printers", "/srv/x"),
			errCode: errors.SharesReservedName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.AddShare(ctx, tt.share)
			require.Error(t, err)
			pe, ok := errors.IsPanelError(err)
			require.True(t, ok)
			assert.Equal(t, tt.errCode, pe.Code)
			t.Logf("Share %+v rejected: %v", tt.share, err)
		})
	}
}

func TestStore_DeleteShare(t *testing.T) {
	store := setupTestStore(t, testConf)
	ctx := context.Background()

	require.NoError(t, store.DeleteShare(ctx, "docs"))

	shares, err := store.ListShares(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "media", shares[0].Name)

	// Global section survives the rewrite verbatim
	raw, err := store.RawContent()
	require.NoError(t, err)
	assert.Contains(t, raw, "   server string = Test Server")
	assert.NotContains(t, raw, "[docs]")
}

func TestStore_DeleteShare_NotFound(t *testing.T) {
	store := setupTestStore(t, testConf)

	err := store.DeleteShare(context.Background(), "nonexistent")
	require.Error(t, err)

	pe, ok := errors.IsPanelError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorCode(errors.SharesNotFound), pe.Code)
}

func TestStore_AddDeleteRoundTrip(t *testing.T) {
	store := setupTestStore(t, testConf)
	ctx := context.Background()

	before, err := store.ListShares(ctx)
	require.NoError(t, err)

	require.NoError(t, store.AddShare(ctx, NewShare("scratch", "/srv/scratch")))
	require.NoError(t, store.DeleteShare(ctx, "scratch"))

	after, err := store.ListShares(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_Backup(t *testing.T) {
	store := setupTestStore(t, testConf)

	path, err := store.Backup(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, path)
	t.Logf("Backup created at %s", path)

	assert.Contains(t, filepath.Base(path), "smb.conf.")
	assert.Contains(t, filepath.Base(path), ".bak")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testConf, string(data))
}

func TestStore_Backup_MissingSource(t *testing.T) {
	store := setupTestStore(t, "")

	path, err := store.Backup(context.Background())
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestStore_RawContent(t *testing.T) {
	store := setupTestStore(t, testConf)

	raw, err := store.RawContent()
	require.NoError(t, err)
	assert.Equal(t, testConf, raw)
}
