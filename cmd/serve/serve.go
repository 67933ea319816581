package serve

import (
	"context"
	"os"

	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/stratastor/logger"

	"github.com/MarekChromy/Sambacontrolcenter/config"
	"github.com/MarekChromy/Sambacontrolcenter/internal/constants"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/backup"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/lifecycle"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/server"
)

var detached bool

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Samba Control Center panel",
		Run:   runServe,
	}

	cmd.Flags().BoolVarP(&detached, "detach", "d", false, "Run as a daemon")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) {
	lcfg := config.NewLoggerConfig(config.GetConfig())
	log, err := logger.NewTag(lcfg, "serve")
	if err != nil {
		panic(err)
	}

	cfg := config.GetConfig()
	pidFile := constants.SambaCCPIDFilePath
	// Check for existing instance before proceeding
	if err := lifecycle.EnsureSingleInstance(pidFile); err != nil {
		log.Error("Failed to start: %v", err)
		os.Exit(1)
	}

	if detached {
		ctx := &daemon.Context{
			PidFileName: pidFile,
			PidFilePerm: 0644,
			LogFileName: cfg.Logs.Path,
			LogFilePerm: 0640,
			WorkDir:     "/",
			Umask:       027,
			Args:        []string{"sambacc", "serve"},
		}

		d, err := ctx.Reborn()
		if err != nil {
			log.Error("Failed to start daemon: %v", err)
			os.Exit(1)
		}

		if d != nil {
			log.Info("Samba Control Center is running as a daemon")
			return
		}
		defer ctx.Release()
	}

	startServer()
}

func startServer() {
	lcfg := config.NewLoggerConfig(config.GetConfig())
	log, err := logger.NewTag(lcfg, "serve")
	if err != nil {
		panic(err)
	}
	cfg := config.GetConfig()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Register the context canceller
	lifecycle.RegisterContextCanceller(cancel)

	// Register shutdown hook for server cleanup
	lifecycle.RegisterShutdownHook(func() {
		log.Info("Shutting down server...")
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Error during server shutdown: %v", err)
		}
	})

	// Start the backup pruner when retention is configured
	pruner, err := backup.NewPruner(
		cfg.Backup.Dir, cfg.Backup.Retention, cfg.Backup.PruneInterval, log)
	if err != nil {
		log.Error("Failed to create backup pruner: %v", err)
	} else {
		if err := pruner.Start(ctx); err != nil {
			log.Error("Failed to start backup pruner: %v", err)
		} else {
			lifecycle.RegisterShutdownHook(func() {
				if err := pruner.Stop(); err != nil {
					log.Error("Error stopping backup pruner: %v", err)
				}
			})
		}
	}

	// Start handling lifecycle signals (e.g., SIGTERM, SIGHUP)
	go lifecycle.HandleSignals(ctx)

	// Start the server
	log.Info("Starting Samba Control Center on port %d...", cfg.Server.Port)
	if err := server.Start(ctx); err != nil {
		log.Error("Failed to start server: %v", err)
		os.Exit(1)
	}
}
