// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

// Gist of what's happening:
//
// We're using Gin's Engine (gin.New()) which provides a router with
// middleware support and the http.Handler implementation, then add our own
// middlewares for request logging.
//
// When assigned to http.Server.Handler, Gin's ServeHTTP serves requests,
// while http.Server gives us graceful shutdown through Shutdown() and
// integration with the lifecycle package's context-based signal handling.
// gin.Run() would be simpler but blocks until exit and offers neither.
//
// Port binding walks the configured port and its fallbacks in order and
// serves on the first one that binds.

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/logger"

	"github.com/MarekChromy/Sambacontrolcenter/config"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/errors"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/mounts"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/samba"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/shares"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/users"
)

var srv *http.Server

// Start builds the panel from the loaded configuration and serves it until
// the context is cancelled. Blocks for the lifetime of the server.
func Start(ctx context.Context) error {
	cfg := config.GetConfig()
	l, err := logger.NewTag(config.NewLoggerConfig(cfg), "server")
	if err != nil {
		return err
	}

	// Switch to debug mode for non-production environments
	switch cfg.Environment {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	shareStore := shares.NewStore(cfg.Samba.ConfPath, cfg.Backup.Dir, l)
	mountStore := mounts.NewStore(mounts.Config{
		FstabPath:      cfg.Mounts.FstabPath,
		CredentialsDir: cfg.Mounts.CredentialsDir,
		ProcMountsPath: cfg.Mounts.ProcMountsPath,
		BackupDir:      cfg.Backup.Dir,
	}, l)
	userManager := users.NewManager(l)

	gateway, err := samba.NewGateway(cfg.Samba.ServiceName, cfg.Samba.ConfPath, l)
	if err != nil {
		return fmt.Errorf("failed to create service gateway: %w", err)
	}

	handler, err := NewHandler(shareStore, mountStore, userManager, gateway, cfg.SecretKey, l)
	if err != nil {
		return err
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(l))

	registerRoutes(engine, handler)

	listener, port, err := bindFirst(cfg.Server.Port, cfg.Server.FallbackPorts, l)
	if err != nil {
		return err
	}

	srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	l.Info("Panel listening", "port", port)

	// Channel to catch server startup errors
	errChan := make(chan error, 1)

	go func() {
		if err := srv.Serve(listener); err != nil {
			if err != http.ErrServerClosed {
				errChan <- err
			}
		}
	}()

	// Wait for either server error or context cancellation
	select {
	case err := <-errChan:
		return fmt.Errorf("server startup failed: %w", err)
	case <-ctx.Done():
		return Shutdown(ctx)
	}
}

// bindFirst tries the preferred port and each fallback in order, returning
// the first listener that binds.
func bindFirst(preferred int, fallbacks []int, l logger.Logger) (net.Listener, int, error) {
	ports := append([]int{preferred}, fallbacks...)
	for _, port := range ports {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			if port != preferred {
				l.Warn("Preferred port unavailable, using fallback", "port", port)
			}
			return listener, port, nil
		}
		l.Warn("Failed to bind port", "port", port, "err", err)
	}

	return nil, 0, errors.New(errors.ServerBind,
		fmt.Sprintf("no usable port among %v", ports))
}

func Shutdown(ctx context.Context) error {
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
