// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package samba

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/stratastor/logger"

	"github.com/MarekChromy/Sambacontrolcenter/internal/command"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/errors"
)

// ServiceStatus represents the daemon state as reported by systemd.
type ServiceStatus struct {
	Name    string `json:"name"`
	Service string `json:"service"`
	Status  string `json:"status"`
	State   string `json:"state"`
}

func (s ServiceStatus) String() string {
	return fmt.Sprintf("%s (%s) is %s [%s]", s.Name, s.Service, s.State, s.Status)
}

// CommandRunner executes systemctl and testparm.
type CommandRunner interface {
	ExecuteWithCombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Gateway manages the Samba daemon through systemd and validates its
// configuration with testparm. Service name and configuration path are
// fixed at construction.
type Gateway struct {
	serviceName  string
	confPath     string
	systemctlBin string
	runner       CommandRunner
	logger       logger.Logger
}

// NewGateway creates a Samba service gateway. Fails when systemctl is not
// available on this host.
func NewGateway(serviceName, confPath string, l logger.Logger) (*Gateway, error) {
	systemctlBin, err := exec.LookPath("systemctl")
	if err != nil {
		return nil, errors.Wrap(err, errors.ServiceNotFound).
			WithMetadata("binary", "systemctl")
	}

	return &Gateway{
		serviceName:  serviceName,
		confPath:     confPath,
		systemctlBin: systemctlBin,
		runner:       command.NewCommandExecutor(true, l),
		logger:       l,
	}, nil
}

// NewGatewayWithRunner creates a gateway with a caller-supplied runner and
// no systemctl lookup.
func NewGatewayWithRunner(serviceName, confPath string, runner CommandRunner, l logger.Logger) *Gateway {
	return &Gateway{
		serviceName:  serviceName,
		confPath:     confPath,
		systemctlBin: "systemctl",
		runner:       runner,
		logger:       l,
	}
}

// serviceUnit appends the .service suffix when absent.
func (g *Gateway) serviceUnit() string {
	if strings.HasSuffix(g.serviceName, ".service") {
		return g.serviceName
	}
	return g.serviceName + ".service"
}

// Restart restarts the Samba daemon.
func (g *Gateway) Restart(ctx context.Context) error {
	output, err := g.runner.ExecuteWithCombinedOutput(
		ctx, g.systemctlBin, "restart", g.serviceUnit())
	if err != nil {
		return errors.Wrap(err, errors.ServiceRestartFailed).
			WithMetadata("service", g.serviceUnit()).
			WithMetadata("output", string(output))
	}

	g.logger.Info("Restarted service", "service", g.serviceUnit())
	return nil
}

// Start starts the Samba daemon.
func (g *Gateway) Start(ctx context.Context) error {
	output, err := g.runner.ExecuteWithCombinedOutput(
		ctx, g.systemctlBin, "start", g.serviceUnit())
	if err != nil {
		return errors.Wrap(err, errors.ServiceRestartFailed).
			WithMetadata("service", g.serviceUnit()).
			WithMetadata("output", string(output))
	}

	g.logger.Info("Started service", "service", g.serviceUnit())
	return nil
}

// Stop stops the Samba daemon.
func (g *Gateway) Stop(ctx context.Context) error {
	output, err := g.runner.ExecuteWithCombinedOutput(
		ctx, g.systemctlBin, "stop", g.serviceUnit())
	if err != nil {
		return errors.Wrap(err, errors.ServiceRestartFailed).
			WithMetadata("service", g.serviceUnit()).
			WithMetadata("output", string(output))
	}

	g.logger.Info("Stopped service", "service", g.serviceUnit())
	return nil
}

// Status returns the daemon state parsed from systemctl status output. A
// stopped or failed unit is a valid status, not an error.
func (g *Gateway) Status(ctx context.Context) (*ServiceStatus, error) {
	output, err := g.runner.ExecuteWithCombinedOutput(
		ctx, g.systemctlBin, "status", g.serviceUnit(), "--no-pager")

	statusFull := string(output)
	state := "unknown"
	status := "Unknown status"

	if err != nil {
		// systemctl status exits non-zero for inactive and failed units
		switch {
		case strings.Contains(statusFull, "inactive"):
			state = "stopped"
			status = "Inactive (dead)"
		case strings.Contains(statusFull, "failed"):
			state = "failed"
			status = "Failed"
		default:
			return nil, errors.Wrap(err, errors.ServiceStatusFailed).
				WithMetadata("service", g.serviceUnit()).
				WithMetadata("output", statusFull)
		}
	} else {
		for _, line := range strings.Split(statusFull, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "Active:") {
				status = strings.TrimSpace(strings.TrimPrefix(line, "Active:"))
				break
			}
		}

		switch {
		case strings.Contains(statusFull, "Active: active (running)"):
			state = "running"
		case strings.Contains(statusFull, "Active: inactive (dead)"):
			state = "stopped"
		case strings.Contains(statusFull, "Active: failed"):
			state = "failed"
		}
	}

	return &ServiceStatus{
		Name:    g.serviceName,
		Service: g.serviceUnit(),
		State:   state,
		Status:  status,
	}, nil
}

// TestConfig validates the configuration file with testparm and returns
// the tool output. A non-zero exit means the configuration is invalid.
func (g *Gateway) TestConfig(ctx context.Context) (string, error) {
	output, err := g.runner.ExecuteWithCombinedOutput(
		ctx, "testparm", "-s", g.confPath)
	if err != nil {
		return string(output), errors.Wrap(err, errors.ServiceTestFailed).
			WithMetadata("file", g.confPath).
			WithMetadata("output", string(output))
	}

	return string(output), nil
}

// Hostname returns the host's name for the panel header.
func (g *Gateway) Hostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		g.logger.Warn("Failed to read hostname", "err", err)
		return "unknown"
	}
	return hostname
}
