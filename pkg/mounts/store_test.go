// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package mounts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
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

// fakeRunner records invocations instead of running tools
type fakeRunner struct {
	calls  [][]string
	output []byte
	err    error
}

func (f *fakeRunner) ExecuteWithCombinedOutput(
	ctx context.Context,
	name string,
	args ...string,
) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.output, f.err
}

const testFstab = `# /etc/fstab: static file system information.
UUID=abcd-1234 / ext4 errors=remount-ro 0 1
UUID=ef56-7890 none swap sw 0 0
//nas/public	/mnt/public	cifs	credentials=/etc/samba/credentials/creds__mnt_public.txt,_netdev,nofail	0 0
`

type testEnv struct {
	store      *Store
	runner     *fakeRunner
	fstabPath  string
	procMounts string
	dir        string
}

func setupTestStore(t *testing.T, fstab, procMounts string) *testEnv {
	dir := t.TempDir()
	fstabPath := filepath.Join(dir, "fstab")
	procPath := filepath.Join(dir, "proc_mounts")
	require.NoError(t, os.WriteFile(fstabPath, []byte(fstab), 0644))
	require.NoError(t, os.WriteFile(procPath, []byte(procMounts), 0644))

	runner := &fakeRunner{}
	store := NewStoreWithRunner(Config{
		FstabPath:      fstabPath,
		CredentialsDir: filepath.Join(dir, "credentials"),
		ProcMountsPath: procPath,
		BackupDir:      filepath.Join(dir, "backups"),
	}, runner, createTestLogger(t))

	return &testEnv{
		store:      store,
		runner:     runner,
		fstabPath:  fstabPath,
		procMounts: procPath,
		dir:        dir,
	}
}

func TestStore_LiveStatus(t *testing.T) {
	proc := `/dev/sda1 / ext4 rw,relatime 0 0
//nas/public /mnt/public cifs rw,relatime 0 0
//nas/media /mnt/media smb3 rw 0 0
tmpfs /tmp tmpfs rw 0 0
`
	env := setupTestStore(t, testFstab, proc)

	live, err := env.store.LiveStatus(context.Background())
	require.NoError(t, err)

	assert.True(t, live["/mnt/public"])
	assert.True(t, live["/mnt/media"])
	assert.False(t, live["/"])
	assert.False(t, live["/tmp"])
	t.Logf("Live network mounts: %v", live)
}

func TestStore_ListEntries(t *testing.T) {
	proc := "//nas/public /mnt/public cifs rw 0 0\n"
	env := setupTestStore(t, testFstab, proc)

	entries, err := env.store.ListEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "//nas/public", entry.Remote)
	assert.Equal(t, "/mnt/public", entry.Mountpoint)
	assert.Equal(t, "cifs", entry.FSType)
	assert.Equal(t, "/etc/samba/credentials/creds__mnt_public.txt", entry.CredentialsFile)
	assert.True(t, entry.IsMounted)
}

func TestStore_ListEntries_NotMounted(t *testing.T) {
	env := setupTestStore(t, testFstab, "/dev/sda1 / ext4 rw 0 0\n")

	entries, err := env.store.ListEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].IsMounted)
}

func TestStore_AddEntry_Defaults(t *testing.T) {
	env := setupTestStore(t, "", "")
	ctx := context.Background()

	mountpoint := filepath.Join(env.dir, "mnt", "x")
	err := env.store.AddEntry(ctx, AddEntryRequest{
		Remote:     "//srv/share",
		Mountpoint: mountpoint,
	})
	require.NoError(t, err)

	entries, err := env.store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "//srv/share", entry.Remote)
	assert.Equal(t, "cifs", entry.FSType)
	assert.Equal(t, "_netdev,nofail", entry.Options)
	assert.Empty(t, entry.CredentialsFile)

	// Mountpoint directory was created
	info, err := os.Stat(mountpoint)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Provenance comment precedes the entry line
	data, err := os.ReadFile(env.fstabPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "# Added by Samba Control Center - "))
	t.Logf("fstab after add:\n%s", string(data))
}

func TestStore_AddEntry_Credentials(t *testing.T) {
	env := setupTestStore(t, "", "")
	ctx := context.Background()

	mountpoint := filepath.Join(env.dir, "mnt", "secure")
	err := env.store.AddEntry(ctx, AddEntryRequest{
		Remote:     "//srv/secure",
		Mountpoint: mountpoint,
		Username:   "u",
		Password:   "p",
	})
	require.NoError(t, err)

	credsPath := env.store.CredentialsPath(mountpoint)
	data, err := os.ReadFile(credsPath)
	require.NoError(t, err)
	assert.Equal(t, "username=u\npassword=p\n", string(data))

	info, err := os.Stat(credsPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := env.store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, credsPath, entries[0].CredentialsFile)
	assert.Contains(t, entries[0].Options, "credentials="+credsPath)
}

func TestStore_AddEntry_NoCredentialsWithoutBoth(t *testing.T) {
	env := setupTestStore(t, "", "")
	ctx := context.Background()

	mountpoint := filepath.Join(env.dir, "mnt", "open")
	err := env.store.AddEntry(ctx, AddEntryRequest{
		Remote:     "//srv/open",
		Mountpoint: mountpoint,
		Username:   "u", // password missing, no credentials file
	})
	require.NoError(t, err)

	_, err = os.Stat(env.store.CredentialsPath(mountpoint))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_AddEntry_PreservesExistingOptions(t *testing.T) {
	env := setupTestStore(t, "", "")
	ctx := context.Background()

	mountpoint := filepath.Join(env.dir, "mnt", "opts")
	err := env.store.AddEntry(ctx, AddEntryRequest{
		Remote:     "//srv/opts",
		Mountpoint: mountpoint,
		Options:    "vers=3.0,_netdev",
	})
	require.NoError(t, err)

	entries, err := env.store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// _netdev not duplicated, nofail appended
	assert.Equal(t, "vers=3.0,_netdev,nofail", entries[0].Options)
}

func TestStore_AddEntry_Validation(t *testing.T) {
	env := setupTestStore(t, "", "")
	ctx := context.Background()

	tests := []struct {
		name    string
		req     AddEntryRequest
		errCode errors.ErrorCode
	}{
		{
			name:    "missing remote",
			req:     AddEntryRequest{Mountpoint: "/mnt/x"},
			errCode: errors.MountInvalidInput,
		},
		{
			name:    "missing mountpoint",
			req:     AddEntryRequest{Remote: "//srv/x"},
			errCode: errors.MountInvalidInput,
		},
		{
			name:    "relative mountpoint",
			req:     AddEntryRequest{Remote: "//srv/x", Mountpoint: "mnt/x"},
			errCode: errors.MountpointInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.store.AddEntry(ctx, tt.req)
			require.Error(t, err)
			pe, ok := errors.IsPanelError(err)
			require.True(t, ok)
			assert.Equal(t, tt.errCode, pe.Code)
		})
	}
}

func TestStore_AddEntry_Duplicate(t *testing.T) {
	env := setupTestStore(t, "", "")
	ctx := context.Background()

	mountpoint := filepath.Join(env.dir, "mnt", "dup")
	req := AddEntryRequest{Remote: "//srv/dup", Mountpoint: mountpoint}
	require.NoError(t, env.store.AddEntry(ctx, req))

	err := env.store.AddEntry(ctx, req)
	require.Error(t, err)
	pe, ok := errors.IsPanelError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorCode(errors.MountAlreadyExists), pe.Code)
}

func TestStore_DeleteEntry(t *testing.T) {
	env := setupTestStore(t, "", "")
	ctx := context.Background()

	before, err := os.ReadFile(env.fstabPath)
	require.NoError(t, err)

	mountpoint := filepath.Join(env.dir, "mnt", "temp")
	require.NoError(t, env.store.AddEntry(ctx, AddEntryRequest{
		Remote:     "//srv/temp",
		Mountpoint: mountpoint,
	}))
	require.NoError(t, env.store.DeleteEntry(ctx, mountpoint))

	// Append then delete is a net no-op on the table
	after, err := os.ReadFile(env.fstabPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestStore_DeleteEntry_PreservesOtherLines(t *testing.T) {
	env := setupTestStore(t, testFstab, "")

	require.NoError(t, env.store.DeleteEntry(context.Background(), "/mnt/public"))

	data, err := os.ReadFile(env.fstabPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "UUID=abcd-1234 / ext4 errors=remount-ro 0 1")
	assert.Contains(t, content, "UUID=ef56-7890 none swap sw 0 0")
	assert.NotContains(t, content, "/mnt/public")
	t.Logf("fstab after delete:\n%s", content)
}

func TestStore_DeleteEntry_ExactFieldMatch(t *testing.T) {
	// /mnt/public is a prefix of /mnt/public2; only the exact mountpoint
	// field may match
	fstab := testFstab +
		"//nas/other\t/mnt/public2\tcifs\t_netdev,nofail\t0 0\n"
	env := setupTestStore(t, fstab, "")
	ctx := context.Background()

	require.NoError(t, env.store.DeleteEntry(ctx, "/mnt/public"))

	entries, err := env.store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/mnt/public2", entries[0].Mountpoint)
}

func TestStore_DeleteEntry_NotFound(t *testing.T) {
	env := setupTestStore(t, testFstab, "")

	err := env.store.DeleteEntry(context.Background(), "/mnt/nonexistent")
	require.Error(t, err)
	pe, ok := errors.IsPanelError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorCode(errors.MountNotFound), pe.Code)
}

func TestStore_DeleteEntry_CreatesBackup(t *testing.T) {
	env := setupTestStore(t, testFstab, "")

	require.NoError(t, env.store.DeleteEntry(context.Background(), "/mnt/public"))

	backups, err := filepath.Glob(filepath.Join(env.dir, "backups", "fstab.*.bak"))
	require.NoError(t, err)
	require.Len(t, backups, 1)

	data, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, testFstab, string(data))
}

func TestStore_Mount(t *testing.T) {
	env := setupTestStore(t, testFstab, "")

	mountpoint := filepath.Join(env.dir, "mnt", "live")
	require.NoError(t, env.store.Mount(context.Background(), mountpoint))

	require.Len(t, env.runner.calls, 1)
	assert.Equal(t, []string{"mount", mountpoint}, env.runner.calls[0])

	info, err := os.Stat(mountpoint)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_Unmount(t *testing.T) {
	env := setupTestStore(t, testFstab, "")

	require.NoError(t, env.store.Unmount(context.Background(), "/mnt/public"))

	require.Len(t, env.runner.calls, 1)
	assert.Equal(t, []string{"umount", "/mnt/public"}, env.runner.calls[0])
}

func TestStore_ApplyAll(t *testing.T) {
	env := setupTestStore(t, testFstab, "")
	env.runner.output = []byte("mounted all\n")

	out, err := env.store.ApplyAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mounted all\n", out)

	require.Len(t, env.runner.calls, 1)
	assert.Equal(t, []string{"mount", "-a"}, env.runner.calls[0])
}
