// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package shares

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stratastor/logger"

	"github.com/MarekChromy/Sambacontrolcenter/pkg/errors"
)

// backupTimestampLayout gives second granularity, good enough because two
// writes within the same second collapse into one backup.
const backupTimestampLayout = "20060102_150405"

// Store reads and rewrites the share sections of the Samba configuration
// file. Paths are fixed at construction; every mutation backs up the
// pre-mutation file first.
//
// Writes are not transactional across process crashes: backup-then-overwrite
// is two sequential filesystem operations with no atomic rename. A crash in
// between can skip the backup or leave a partial write. Accepted failure
// mode, not hardened against.
type Store struct {
	confPath  string
	backupDir string
	logger    logger.Logger
}

// NewStore creates a share store bound to the given configuration file.
func NewStore(confPath, backupDir string, l logger.Logger) *Store {
	return &Store{
		confPath:  confPath,
		backupDir: backupDir,
		logger:    l,
	}
}

// ConfPath returns the configuration file this store manages.
func (s *Store) ConfPath() string {
	return s.confPath
}

// load reads and parses the configuration file.
func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.confPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.SharesConfigMissing, s.confPath)
		}
		if os.IsPermission(err) {
			return nil, errors.Wrap(err, errors.ConfigPermissionDenied).
				WithMetadata("file", s.confPath)
		}
		return nil, errors.Wrap(err, errors.SharesReadError).
			WithMetadata("file", s.confPath)
	}

	return parseDocument(string(data)), nil
}

// persist writes the document back, creating a backup of the current
// on-disk state first.
func (s *Store) persist(ctx context.Context, doc *document) error {
	if _, err := s.Backup(ctx); err != nil {
		return err
	}

	if err := os.WriteFile(s.confPath, []byte(doc.render()), 0644); err != nil {
		if os.IsPermission(err) {
			return errors.Wrap(err, errors.ConfigPermissionDenied).
				WithMetadata("file", s.confPath)
		}
		return errors.Wrap(err, errors.SharesWriteError).
			WithMetadata("file", s.confPath)
	}

	return nil
}

// ListShares returns all non-reserved sections as Share definitions with
// defaults substituted for missing keys, in file order.
func (s *Store) ListShares(ctx context.Context) ([]Share, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	shares := []Share{}
	for _, sec := range doc.sections {
		if IsReservedSection(sec.name) {
			continue
		}
		shares = append(shares, shareFromSection(sec))
	}

	return shares, nil
}

// AddShare appends a new share section. Fails with a conflict when a
// section with that name already exists; the file is left untouched then.
func (s *Store) AddShare(ctx context.Context, share Share) error {
	if share.Name == "" || share.Path == "" {
		return errors.New(errors.SharesInvalidInput, "share name and path are required")
	}
	if IsReservedSection(share.Name) {
		return errors.New(errors.SharesReservedName, share.Name)
	}

	doc, err := s.load()
	if err != nil {
		return err
	}

	if doc.find(share.Name) != nil {
		return errors.New(errors.SharesAlreadyExists, share.Name)
	}

	if share.CreateMask == "" {
		share.CreateMask = DefaultCreateMask
	}
	if share.DirectoryMask == "" {
		share.DirectoryMask = DefaultDirectoryMask
	}

	doc.sections = append(doc.sections, sectionFromShare(share))

	if err := s.persist(ctx, doc); err != nil {
		return err
	}

	s.logger.Info("Added share", "name", share.Name, "path", share.Path)
	return nil
}

// DeleteShare removes a share section by name.
func (s *Store) DeleteShare(ctx context.Context, name string) error {
	if IsReservedSection(name) {
		return errors.New(errors.SharesReservedName, name)
	}

	doc, err := s.load()
	if err != nil {
		return err
	}

	if !doc.remove(name) {
		return errors.New(errors.SharesNotFound, name)
	}

	if err := s.persist(ctx, doc); err != nil {
		return err
	}

	s.logger.Info("Deleted share", "name", name)
	return nil
}

// Backup copies the current on-disk file to a timestamped path in the
// backup directory and returns that path. A missing source file is not an
// error; the returned path is empty then.
func (s *Store) Backup(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.confPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, errors.SharesBackupFailed).
			WithMetadata("file", s.confPath)
	}

	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return "", errors.Wrap(err, errors.SharesBackupFailed).
			WithMetadata("dir", s.backupDir)
	}

	timestamp := time.Now().Format(backupTimestampLayout)
	backupPath := filepath.Join(
		s.backupDir,
		fmt.Sprintf("%s.%s.bak", filepath.Base(s.confPath), timestamp),
	)

	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return "", errors.Wrap(err, errors.SharesBackupFailed).
			WithMetadata("file", backupPath)
	}

	s.logger.Debug("Created configuration backup", "path", backupPath)
	return backupPath, nil
}

// RawContent returns the current on-disk file content verbatim.
func (s *Store) RawContent() (string, error) {
	data, err := os.ReadFile(s.confPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.SharesConfigMissing, s.confPath)
		}
		return "", errors.Wrap(err, errors.SharesReadError).
			WithMetadata("file", s.confPath)
	}
	return string(data), nil
}
