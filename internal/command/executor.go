// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/stratastor/logger"

	ccerrors "github.com/MarekChromy/Sambacontrolcenter/pkg/errors"
)

// Dangerous characters that could enable command injection
var dangerousChars = "&|><$`\\[];{}"

// Command execution timeout
const defaultCommandTimeout = 30 * time.Second

// ExecCommand executes a system command with proper security checks.
// Arguments are always passed as an array; nothing here ever reaches a shell.
func ExecCommand(
	ctx context.Context,
	logger logger.Logger,
	name string,
	args ...string,
) ([]byte, error) {
	// Validate command and arguments
	if err := validateCommand(name, args); err != nil {
		return nil, err
	}

	// Apply timeout if not already set
	var cancel context.CancelFunc
	if _, ok := ctx.Deadline(); !ok {
		ctx, cancel = context.WithTimeout(ctx, defaultCommandTimeout)
		defer cancel()
	}

	// Log the command being executed
	cmdString := shellquote.Join(append([]string{name}, args...)...)
	logger.Debug("Executing command", "cmd", cmdString)

	// Create command with context for cancellation support
	cmd := exec.CommandContext(ctx, name, args...)

	// Prevent shell expansion
	cmd.Env = []string{}

	// Execute the command
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Error("Command execution failed with exit code",
				"cmd", cmdString,
				"exit_code", exitErr.ExitCode(),
				"output", string(output))

			return output, ccerrors.New(ccerrors.CommandExecution, err.Error()).
				WithMetadata("command", cmdString).
				WithMetadata("exit_code", fmt.Sprintf("%d", exitErr.ExitCode())).
				WithMetadata("output", string(output))
		}

		logger.Error("Command execution failed",
			"cmd", cmdString,
			"err", err,
			"output", string(output))

		return output, fmt.Errorf("command execution failed: %w: %s", err, string(output))
	}

	return output, nil
}

// validateCommand performs security checks on the command and arguments
func validateCommand(name string, args []string) error {
	// Check for empty command
	if name == "" {
		return ccerrors.New(ccerrors.CommandInvalidInput, "empty command")
	}

	// Check for absolute path or valid command name
	if !strings.HasPrefix(name, "/") && strings.ContainsAny(name, "/\\") {
		return ccerrors.New(
			ccerrors.CommandInvalidInput,
			"relative paths are not allowed for commands",
		)
	}

	// Check for dangerous characters in command
	if strings.ContainsAny(name, dangerousChars) {
		return ccerrors.New(ccerrors.CommandInvalidInput, "command contains invalid characters")
	}

	// Validate args don't contain dangerous characters
	for _, arg := range args {
		if strings.ContainsAny(arg, dangerousChars) {
			return ccerrors.New(
				ccerrors.CommandInvalidInput,
				"argument contains invalid characters",
			)
		}

		// Check for path traversal attempts
		if strings.Contains(arg, "..") {
			return ccerrors.New(ccerrors.CommandInvalidInput, "path traversal not allowed")
		}
	}

	// Limit arguments count
	if len(args) > 64 {
		return ccerrors.New(ccerrors.CommandInvalidInput, "too many arguments")
	}

	return nil
}

// CommandExecutor runs external tools, optionally through sudo.
type CommandExecutor struct {
	useSudo bool
	logger  logger.Logger
}

func NewCommandExecutor(useSudo bool, l logger.Logger) *CommandExecutor {
	return &CommandExecutor{
		useSudo: useSudo,
		logger:  l,
	}
}

// ExecuteWithCombinedOutput executes a command and returns its combined output.
func (e *CommandExecutor) ExecuteWithCombinedOutput(
	ctx context.Context,
	name string,
	args ...string,
) ([]byte, error) {
	if e.useSudo {
		args = append([]string{name}, args...)
		name = "sudo"
	}
	return ExecCommand(ctx, e.logger, name, args...)
}

// ExecuteWithInput executes a command feeding the given string to its stdin.
// Used for tools that read secrets interactively (smbpasswd -s, pdbedit -t)
// so that secret material never appears in the argument vector.
func (e *CommandExecutor) ExecuteWithInput(
	ctx context.Context,
	input string,
	name string,
	args ...string,
) ([]byte, error) {
	if err := validateCommand(name, args); err != nil {
		return nil, err
	}

	if e.useSudo {
		args = append([]string{name}, args...)
		name = "sudo"
	}

	var cancel context.CancelFunc
	if _, ok := ctx.Deadline(); !ok {
		ctx, cancel = context.WithTimeout(ctx, defaultCommandTimeout)
		defer cancel()
	}

	cmdString := shellquote.Join(append([]string{name}, args...)...)
	e.logger.Debug("Executing command with stdin", "cmd", cmdString)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Env = []string{}

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			e.logger.Error("Command execution failed with exit code",
				"cmd", cmdString,
				"exit_code", exitErr.ExitCode(),
				"output", string(output))

			return output, ccerrors.New(ccerrors.CommandExecution, err.Error()).
				WithMetadata("command", cmdString).
				WithMetadata("exit_code", fmt.Sprintf("%d", exitErr.ExitCode())).
				WithMetadata("output", string(output))
		}

		return output, fmt.Errorf("command execution failed: %w: %s", err, string(output))
	}

	return output, nil
}
