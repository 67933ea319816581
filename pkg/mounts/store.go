// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package mounts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stratastor/logger"

	"github.com/MarekChromy/Sambacontrolcenter/internal/command"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/errors"
)

const backupTimestampLayout = "20060102_150405"

// CommandRunner executes the mount/umount tools
type CommandRunner interface {
	ExecuteWithCombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Store manages network mount entries in the system mount table, their
// credentials files, and the live mount status. All paths are fixed at
// construction. Every table mutation backs up the pre-mutation file first.
type Store struct {
	fstabPath      string
	credentialsDir string
	procMountsPath string
	backupDir      string
	runner         CommandRunner
	logger         logger.Logger
}

// Config fixes the filesystem paths a Store operates on.
type Config struct {
	FstabPath      string
	CredentialsDir string
	ProcMountsPath string
	BackupDir      string
}

// NewStore creates a mount table store. Mount operations run through sudo.
func NewStore(cfg Config, l logger.Logger) *Store {
	return &Store{
		fstabPath:      cfg.FstabPath,
		credentialsDir: cfg.CredentialsDir,
		procMountsPath: cfg.ProcMountsPath,
		backupDir:      cfg.BackupDir,
		runner:         command.NewCommandExecutor(true, l),
		logger:         l,
	}
}

// NewStoreWithRunner creates a store with a caller-supplied command runner.
func NewStoreWithRunner(cfg Config, runner CommandRunner, l logger.Logger) *Store {
	s := NewStore(cfg, l)
	s.runner = runner
	return s
}

// LiveStatus returns the set of mountpoints currently mounted with a
// network filesystem type, read from the live mount status file.
func (s *Store) LiveStatus(ctx context.Context) (map[string]bool, error) {
	data, err := os.ReadFile(s.procMountsPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.LiveStatusReadError).
			WithMetadata("file", s.procMountsPath)
	}

	mounted := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if IsNetworkFSType(fields[2]) {
			mounted[fields[1]] = true
		}
	}

	return mounted, nil
}

// ListEntries parses the mount table and returns all network mount entries
// with their live mounted state.
func (s *Store) ListEntries(ctx context.Context) ([]Entry, error) {
	data, err := os.ReadFile(s.fstabPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.MountTableReadError).
			WithMetadata("file", s.fstabPath)
	}

	live, err := s.LiveStatus(ctx)
	if err != nil {
		// Live status is advisory; entries still list without it
		s.logger.Warn("Failed to read live mount status", "err", err)
		live = map[string]bool{}
	}

	entries := []Entry{}
	for _, line := range strings.Split(string(data), "\n") {
		entry, ok := parseEntryLine(line)
		if !ok {
			continue
		}
		entry.IsMounted = live[entry.Mountpoint]
		entries = append(entries, entry)
	}

	return entries, nil
}

// parseEntryLine maps one mount table line to an Entry. Blank lines,
// comments, and non-network filesystems report ok=false.
func parseEntryLine(line string) (Entry, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Entry{}, false
	}

	fields := strings.Fields(trimmed)
	if len(fields) < 4 || !IsNetworkFSType(fields[2]) {
		return Entry{}, false
	}

	entry := Entry{
		Remote:     fields[0],
		Mountpoint: fields[1],
		FSType:     fields[2],
		Options:    fields[3],
	}

	for _, opt := range strings.Split(entry.Options, ",") {
		if strings.HasPrefix(opt, "credentials=") {
			entry.CredentialsFile = strings.TrimPrefix(opt, "credentials=")
			break
		}
	}

	return entry, true
}

// CredentialsPath returns the deterministic credentials file path for a
// mountpoint.
func (s *Store) CredentialsPath(mountpoint string) string {
	name := "creds_" + strings.ReplaceAll(mountpoint, "/", "_") + ".txt"
	return filepath.Join(s.credentialsDir, name)
}

// writeCredentials writes an owner-only credentials file and returns its
// path.
func (s *Store) writeCredentials(mountpoint, username, password string) (string, error) {
	if err := os.MkdirAll(s.credentialsDir, 0700); err != nil {
		return "", errors.Wrap(err, errors.CredentialsWriteFailed).
			WithMetadata("dir", s.credentialsDir)
	}

	path := s.CredentialsPath(mountpoint)
	content := fmt.Sprintf("username=%s\npassword=%s\n", username, password)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return "", errors.Wrap(err, errors.CredentialsWriteFailed).
			WithMetadata("file", path)
	}

	return path, nil
}

// AddEntry appends a network mount entry with a provenance comment. The
// mountpoint directory is created if absent, credentials go to a restricted
// file, and the default resilience options are applied when missing.
func (s *Store) AddEntry(ctx context.Context, req AddEntryRequest) error {
	if req.Remote == "" || req.Mountpoint == "" {
		return errors.New(errors.MountInvalidInput, "remote and mountpoint are required")
	}
	if !strings.HasPrefix(req.Mountpoint, "/") {
		return errors.New(errors.MountpointInvalid, req.Mountpoint)
	}
	if req.FSType == "" {
		req.FSType = "cifs"
	}

	if err := os.MkdirAll(req.Mountpoint, 0755); err != nil {
		return errors.Wrap(err, errors.MountpointCreateFailed).
			WithMetadata("mountpoint", req.Mountpoint)
	}

	options := req.Options
	if req.Username != "" && req.Password != "" {
		credsPath, err := s.writeCredentials(req.Mountpoint, req.Username, req.Password)
		if err != nil {
			return err
		}
		if options != "" {
			options += ","
		}
		options += "credentials=" + credsPath
	}
	for _, opt := range []string{optionNetdev, optionNofail} {
		if hasOption(options, opt) {
			continue
		}
		if options != "" {
			options += ","
		}
		options += opt
	}

	data, err := os.ReadFile(s.fstabPath)
	if err != nil {
		return errors.Wrap(err, errors.MountTableReadError).
			WithMetadata("file", s.fstabPath)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if existing, ok := parseEntryLine(line); ok && existing.Mountpoint == req.Mountpoint {
			return errors.New(errors.MountAlreadyExists, req.Mountpoint)
		}
	}

	if _, err := s.backup(); err != nil {
		return err
	}

	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += provenanceCommentPrefix + time.Now().Format("2006-01-02 15:04:05") + "\n"
	content += fmt.Sprintf("%s\t%s\t%s\t%s\t0 0\n", req.Remote, req.Mountpoint, req.FSType, options)

	if err := os.WriteFile(s.fstabPath, []byte(content), 0644); err != nil {
		return errors.Wrap(err, errors.MountTableWriteError).
			WithMetadata("file", s.fstabPath)
	}

	s.logger.Info("Added mount entry",
		"remote", req.Remote,
		"mountpoint", req.Mountpoint,
		"fstype", req.FSType)
	return nil
}

// hasOption reports whether a comma-separated option string contains the
// given option as a whole element.
func hasOption(options, opt string) bool {
	for _, o := range strings.Split(options, ",") {
		if o == opt || strings.HasPrefix(o, opt+"=") {
			return true
		}
	}
	return false
}

// DeleteEntry rewrites the mount table omitting the entry whose mountpoint
// field matches exactly, together with its adjacent provenance comment.
// All other lines are preserved verbatim and in order.
func (s *Store) DeleteEntry(ctx context.Context, mountpoint string) error {
	data, err := os.ReadFile(s.fstabPath)
	if err != nil {
		return errors.Wrap(err, errors.MountTableReadError).
			WithMetadata("file", s.fstabPath)
	}

	lines := strings.Split(string(data), "\n")
	// Drop the trailing empty element of a newline-terminated file
	trailingNewline := false
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
		trailingNewline = true
	}

	kept := make([]string, 0, len(lines))
	found := false
	for _, line := range lines {
		entry, ok := parseEntryLine(line)
		if !ok || entry.Mountpoint != mountpoint {
			kept = append(kept, line)
			continue
		}

		found = true
		// Remove the provenance comment written alongside this entry
		if n := len(kept); n > 0 &&
			strings.HasPrefix(strings.TrimSpace(kept[n-1]), provenanceCommentPrefix) {
			kept = kept[:n-1]
		}
	}

	if !found {
		return errors.New(errors.MountNotFound, mountpoint)
	}

	if _, err := s.backup(); err != nil {
		return err
	}

	content := strings.Join(kept, "\n")
	if trailingNewline && content != "" {
		content += "\n"
	}
	if err := os.WriteFile(s.fstabPath, []byte(content), 0644); err != nil {
		return errors.Wrap(err, errors.MountTableWriteError).
			WithMetadata("file", s.fstabPath)
	}

	s.logger.Info("Deleted mount entry", "mountpoint", mountpoint)
	return nil
}

// backup copies the current mount table to a timestamped path in the
// backup directory. A missing source file is not an error.
func (s *Store) backup() (string, error) {
	data, err := os.ReadFile(s.fstabPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, errors.MountTableBackupFailed).
			WithMetadata("file", s.fstabPath)
	}

	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return "", errors.Wrap(err, errors.MountTableBackupFailed).
			WithMetadata("dir", s.backupDir)
	}

	timestamp := time.Now().Format(backupTimestampLayout)
	backupPath := filepath.Join(
		s.backupDir,
		fmt.Sprintf("%s.%s.bak", filepath.Base(s.fstabPath), timestamp),
	)

	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return "", errors.Wrap(err, errors.MountTableBackupFailed).
			WithMetadata("file", backupPath)
	}

	s.logger.Debug("Created mount table backup", "path", backupPath)
	return backupPath, nil
}

// Mount mounts a configured entry, creating the mountpoint directory first.
func (s *Store) Mount(ctx context.Context, mountpoint string) error {
	if err := os.MkdirAll(mountpoint, 0755); err != nil {
		return errors.Wrap(err, errors.MountpointCreateFailed).
			WithMetadata("mountpoint", mountpoint)
	}

	output, err := s.runner.ExecuteWithCombinedOutput(ctx, "mount", mountpoint)
	if err != nil {
		return errors.Wrap(err, errors.MountOperationFailed).
			WithMetadata("mountpoint", mountpoint).
			WithMetadata("output", string(output))
	}

	s.logger.Info("Mounted", "mountpoint", mountpoint)
	return nil
}

// Unmount unmounts an entry.
func (s *Store) Unmount(ctx context.Context, mountpoint string) error {
	output, err := s.runner.ExecuteWithCombinedOutput(ctx, "umount", mountpoint)
	if err != nil {
		return errors.Wrap(err, errors.UnmountOperationFailed).
			WithMetadata("mountpoint", mountpoint).
			WithMetadata("output", string(output))
	}

	s.logger.Info("Unmounted", "mountpoint", mountpoint)
	return nil
}

// ApplyAll mounts every mount table entry via mount -a and returns the
// tool output.
func (s *Store) ApplyAll(ctx context.Context) (string, error) {
	output, err := s.runner.ExecuteWithCombinedOutput(ctx, "mount", "-a")
	if err != nil {
		return string(output), errors.Wrap(err, errors.MountApplyFailed).
			WithMetadata("output", string(output))
	}

	s.logger.Info("Applied mount table")
	return string(output), nil
}
