// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package backup

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

func setupPruner(t *testing.T, retention int, files ...string) (*Pruner, string) {
	dir := t.TempDir()
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("backup"), 0644))
	}
	pruner, err := NewPruner(dir, retention, "24h", createTestLogger(t))
	require.NoError(t, err)
	return pruner, dir
}

func TestPruner_List(t *testing.T) {
	pruner, _ := setupPruner(t, 2,
		"smb.conf.20250823_100000.bak",
		"smb.conf.20250825_100000.bak",
		"smb.conf.20250824_100000.bak",
		"notes.txt",
	)

	names, err := pruner.List()
	require.NoError(t, err)
	require.Len(t, names, 3)

	// Newest first, non-backup files ignored
	assert.Equal(t, "smb.conf.20250825_100000.bak", names[0])
	assert.Equal(t, "smb.conf.20250823_100000.bak", names[2])
}

func TestPruner_List_MissingDir(t *testing.T) {
	pruner, err := NewPruner(
		filepath.Join(t.TempDir(), "nonexistent"), 2, "24h", createTestLogger(t))
	require.NoError(t, err)

	names, err := pruner.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPruner_Prune(t *testing.T) {
	pruner, dir := setupPruner(t, 2,
		"smb.conf.20250821_100000.bak",
		"smb.conf.20250822_100000.bak",
		"smb.conf.20250823_100000.bak",
		"smb.conf.20250824_100000.bak",
	)

	removed, err := pruner.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// The two newest survive
	_, err = os.Stat(filepath.Join(dir, "smb.conf.20250824_100000.bak"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "smb.conf.20250823_100000.bak"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "smb.conf.20250822_100000.bak"))
	assert.True(t, os.IsNotExist(err))
}

func TestPruner_Prune_PerSourceGrouping(t *testing.T) {
	pruner, dir := setupPruner(t, 1,
		"smb.conf.20250823_100000.bak",
		"smb.conf.20250824_100000.bak",
		"fstab.20250823_100000.bak",
		"fstab.20250824_100000.bak",
	)

	removed, err := pruner.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// Each source file keeps its own newest backup
	_, err = os.Stat(filepath.Join(dir, "smb.conf.20250824_100000.bak"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "fstab.20250824_100000.bak"))
	assert.NoError(t, err)
}

func TestPruner_Prune_RetentionDisabled(t *testing.T) {
	pruner, dir := setupPruner(t, 0,
		"smb.conf.20250823_100000.bak",
		"smb.conf.20250824_100000.bak",
	)

	removed, err := pruner.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	names, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestPruner_Prune_UnderRetention(t *testing.T) {
	pruner, _ := setupPruner(t, 5,
		"smb.conf.20250823_100000.bak",
		"smb.conf.20250824_100000.bak",
	)

	removed, err := pruner.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestPruner_Start_DefaultInterval(t *testing.T) {
	// The configured default interval must schedule a job
	pruner, err := NewPruner(t.TempDir(), 1, "24h", createTestLogger(t))
	require.NoError(t, err)

	require.NoError(t, pruner.Start(context.Background()))
	require.NoError(t, pruner.Stop())
}

func TestPruner_Start_InvalidInterval(t *testing.T) {
	pruner, err := NewPruner(t.TempDir(), 1, "0 3 * * *", createTestLogger(t))
	require.NoError(t, err)

	err = pruner.Start(context.Background())
	require.Error(t, err)

	pe, ok := errors.IsPanelError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorCode(errors.BackupScheduleFailed), pe.Code)
	assert.Equal(t, "0 3 * * *", pe.Metadata["interval"])
}

func TestPruner_Start_RetentionDisabled(t *testing.T) {
	// Retention 0 never schedules, so the interval is not even parsed
	pruner, err := NewPruner(t.TempDir(), 0, "not-a-duration", createTestLogger(t))
	require.NoError(t, err)

	require.NoError(t, pruner.Start(context.Background()))
	require.NoError(t, pruner.Stop())
}

func TestSourcePrefix(t *testing.T) {
	assert.Equal(t, "smb.conf", sourcePrefix("smb.conf.20250825_100000.bak"))
	assert.Equal(t, "fstab", sourcePrefix("fstab.20250825_100000.bak"))
}
