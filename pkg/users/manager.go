// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package users

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/stratastor/logger"

	"github.com/MarekChromy/Sambacontrolcenter/internal/command"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/errors"
)

// Protected system users that cannot be deleted or disabled
var protectedUsers = []string{
	"root",
	"daemon",
	"bin",
	"sys",
	"nobody",
	"www-data",
	"sshd",
	"sambacc",
}

// Username validation (POSIX compliant)
var usernameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

// CommandRunner executes the Samba user database tools.
type CommandRunner interface {
	ExecuteWithCombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
	ExecuteWithInput(ctx context.Context, input string, name string, args ...string) ([]byte, error)
}

// Manager manages users in the Samba password database and the matching
// system accounts. Every password reaches the tools via stdin, never via
// the argument vector.
type Manager struct {
	runner CommandRunner
	logger logger.Logger
}

// NewManager creates a user manager. Database operations run through sudo.
func NewManager(l logger.Logger) *Manager {
	return &Manager{
		runner: command.NewCommandExecutor(true, l),
		logger: l,
	}
}

// NewManagerWithRunner creates a manager with a caller-supplied runner.
func NewManagerWithRunner(runner CommandRunner, l logger.Logger) *Manager {
	return &Manager{
		runner: runner,
		logger: l,
	}
}

// List returns all users of the Samba password database with their enabled
// state. The verbose listing is preferred for its account flags; when it
// fails the plain listing still yields the usernames.
func (m *Manager) List(ctx context.Context) ([]User, error) {
	output, err := m.runner.ExecuteWithCombinedOutput(ctx, "pdbedit", "-L", "-v")
	if err == nil {
		return parseVerboseListing(string(output)), nil
	}

	m.logger.Warn("Verbose user listing failed, falling back to plain listing", "err", err)

	output, err = m.runner.ExecuteWithCombinedOutput(ctx, "pdbedit", "-L")
	if err != nil {
		return nil, errors.Wrap(err, errors.UserListFailed).
			WithMetadata("output", string(output))
	}

	return parsePlainListing(string(output)), nil
}

// parseVerboseListing extracts users from pdbedit -L -v output. Entries are
// blocks of "key: value" lines; the disabled flag is the 'D' character in
// the account flags field.
func parseVerboseListing(output string) []User {
	users := []User{}
	var current *User

	for _, line := range strings.Split(output, "\n") {
		if idx := strings.Index(line, ":"); idx > 0 {
			key := strings.TrimSpace(line[:idx])
			value := strings.TrimSpace(line[idx+1:])

			switch key {
			case "Unix username":
				if current != nil {
					users = append(users, *current)
				}
				current = &User{Username: value, Enabled: true}
			case "Account Flags":
				if current != nil {
					current.Flags = value
					current.Enabled = !strings.Contains(value, "D")
				}
			}
		}
	}
	if current != nil {
		users = append(users, *current)
	}

	return users
}

// parsePlainListing extracts usernames from pdbedit -L output, one
// "username:uid:fullname" line per user. Enabled state is unknown there
// and reported as true.
func parsePlainListing(output string) []User {
	users := []User{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		username := line
		if idx := strings.Index(line, ":"); idx >= 0 {
			username = line[:idx]
		}
		if username == "" {
			continue
		}
		users = append(users, User{Username: username, Enabled: true})
	}
	return users
}

// Create adds a user to the Samba password database. A matching system
// account is created first when absent, without a home directory and with a
// non-interactive shell.
func (m *Manager) Create(ctx context.Context, req CreateUserRequest) error {
	if err := validateUsername(req.Username); err != nil {
		return err
	}
	if req.Password == "" {
		return errors.New(errors.UserInvalidPassword, "password cannot be empty")
	}

	exists, err := m.Exists(ctx, req.Username)
	if err != nil {
		return err
	}
	if exists {
		return errors.New(errors.UserAlreadyExists, req.Username)
	}

	// Ensure the system account exists; smbpasswd requires one
	if _, err := m.runner.ExecuteWithCombinedOutput(ctx, "id", req.Username); err != nil {
		m.logger.Info("Creating system account", "username", req.Username)
		output, err := m.runner.ExecuteWithCombinedOutput(
			ctx, "useradd", "-M", "-s", "/usr/sbin/nologin", req.Username)
		if err != nil {
			return errors.Wrap(err, errors.UserCreateFailed).
				WithMetadata("username", req.Username).
				WithMetadata("output", string(output))
		}
	}

	// smbpasswd -s reads the password twice from stdin
	output, err := m.runner.ExecuteWithInput(
		ctx,
		req.Password+"\n"+req.Password+"\n",
		"smbpasswd", "-a", "-s", req.Username)
	if err != nil {
		return errors.Wrap(err, errors.UserCreateFailed).
			WithMetadata("username", req.Username).
			WithMetadata("output", string(output))
	}

	m.logger.Info("Created Samba user", "username", req.Username)
	return nil
}

// Delete removes a user from the Samba password database. The system
// account is left in place.
func (m *Manager) Delete(ctx context.Context, username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if isProtectedUser(username) {
		return errors.New(errors.UserProtected,
			fmt.Sprintf("cannot delete protected user '%s'", username))
	}

	exists, err := m.Exists(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New(errors.UserNotFound, username)
	}

	output, err := m.runner.ExecuteWithCombinedOutput(ctx, "smbpasswd", "-x", username)
	if err != nil {
		return errors.Wrap(err, errors.UserDeleteFailed).
			WithMetadata("username", username).
			WithMetadata("output", string(output))
	}

	m.logger.Info("Deleted Samba user", "username", username)
	return nil
}

// Enable clears the disabled flag on a user account.
func (m *Manager) Enable(ctx context.Context, username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}

	output, err := m.runner.ExecuteWithCombinedOutput(ctx, "smbpasswd", "-e", username)
	if err != nil {
		return errors.Wrap(err, errors.UserEnableFailed).
			WithMetadata("username", username).
			WithMetadata("output", string(output))
	}

	m.logger.Info("Enabled Samba user", "username", username)
	return nil
}

// Disable sets the disabled flag on a user account.
func (m *Manager) Disable(ctx context.Context, username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if isProtectedUser(username) {
		return errors.New(errors.UserProtected,
			fmt.Sprintf("cannot disable protected user '%s'", username))
	}

	output, err := m.runner.ExecuteWithCombinedOutput(ctx, "smbpasswd", "-d", username)
	if err != nil {
		return errors.Wrap(err, errors.UserDisableFailed).
			WithMetadata("username", username).
			WithMetadata("output", string(output))
	}

	m.logger.Info("Disabled Samba user", "username", username)
	return nil
}

// Exists reports whether a user is present in the Samba password database.
func (m *Manager) Exists(ctx context.Context, username string) (bool, error) {
	users, err := m.List(ctx)
	if err != nil {
		return false, err
	}
	for _, user := range users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// validateUsername rejects names that are empty or not POSIX compliant.
func validateUsername(username string) error {
	if username == "" {
		return errors.New(errors.UserInvalidName, "username cannot be empty")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New(errors.UserInvalidName,
			"invalid username format (must be lowercase, start with letter/underscore, max 32 chars)")
	}
	return nil
}

// isProtectedUser checks if a user is in the protected list
func isProtectedUser(username string) bool {
	for _, protected := range protectedUsers {
		if username == protected {
			return true
		}
	}
	return false
}
