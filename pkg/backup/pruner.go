// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

// Package backup manages the timestamped backup files that the share and
// mount stores write before every mutation. Backups accumulate without
// bound unless an operator opts into retention; the pruner keeps the newest
// N backups per source file and only runs when retention is configured.
package backup

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stratastor/logger"

	"github.com/MarekChromy/Sambacontrolcenter/pkg/errors"
)

const backupSuffix = ".bak"

// Pruner trims old backup files on a fixed schedule. Retention <= 0 means
// keep everything; the scheduler never starts then.
type Pruner struct {
	backupDir string
	retention int
	interval  string
	scheduler gocron.Scheduler
	logger    logger.Logger
}

// NewPruner creates a pruner for the given backup directory. The interval
// is a Go duration string, e.g. "24h".
func NewPruner(backupDir string, retention int, interval string, l logger.Logger) (*Pruner, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, errors.BackupScheduleFailed)
	}

	return &Pruner{
		backupDir: backupDir,
		retention: retention,
		interval:  interval,
		scheduler: scheduler,
		logger:    l,
	}, nil
}

// Start registers the prune job and starts the scheduler. A no-op when
// retention is disabled.
func (p *Pruner) Start(ctx context.Context) error {
	if p.retention <= 0 {
		p.logger.Info("Backup retention disabled, keeping all backups")
		return nil
	}

	interval, err := time.ParseDuration(p.interval)
	if err != nil {
		return errors.Wrap(err, errors.BackupScheduleFailed).
			WithMetadata("interval", p.interval)
	}

	_, err = p.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := p.Prune(ctx); err != nil {
				p.logger.Error("Scheduled backup prune failed", "err", err)
			}
		}),
		gocron.WithName("backup-prune"),
	)
	if err != nil {
		return errors.Wrap(err, errors.BackupScheduleFailed).
			WithMetadata("interval", p.interval)
	}

	p.scheduler.Start()
	p.logger.Info("Backup pruner started",
		"dir", p.backupDir,
		"retention", p.retention,
		"interval", interval)
	return nil
}

// Stop shuts the scheduler down.
func (p *Pruner) Stop() error {
	return p.scheduler.Shutdown()
}

// List returns all backup files in the backup directory, newest first. A
// missing directory yields an empty list.
func (p *Pruner) List() ([]string, error) {
	entries, err := os.ReadDir(p.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrap(err, errors.BackupListFailed).
			WithMetadata("dir", p.backupDir)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), backupSuffix) {
			continue
		}
		names = append(names, entry.Name())
	}

	// The timestamp sits between source name and suffix, so lexical order
	// is chronological per source file
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Prune removes backups beyond the retention count, grouped per source
// file, and returns the number of files removed.
func (p *Pruner) Prune(ctx context.Context) (int, error) {
	if p.retention <= 0 {
		return 0, nil
	}

	names, err := p.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	perSource := map[string]int{}
	for _, name := range names {
		source := sourcePrefix(name)
		perSource[source]++
		if perSource[source] <= p.retention {
			continue
		}

		path := filepath.Join(p.backupDir, name)
		if err := os.Remove(path); err != nil {
			return removed, errors.Wrap(err, errors.BackupPruneFailed).
				WithMetadata("file", path)
		}
		removed++
	}

	if removed > 0 {
		p.logger.Info("Pruned old backups", "removed", removed, "retention", p.retention)
	}
	return removed, nil
}

// sourcePrefix strips the timestamp and suffix from a backup file name,
// leaving the source file name. "smb.conf.20250825_100000.bak" yields
// "smb.conf".
func sourcePrefix(name string) string {
	trimmed := strings.TrimSuffix(name, backupSuffix)
	if idx := strings.LastIndex(trimmed, "."); idx > 0 {
		return trimmed[:idx]
	}
	return trimmed
}
