package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MarekChromy/Sambacontrolcenter/cmd/config"
	"github.com/MarekChromy/Sambacontrolcenter/cmd/health"
	"github.com/MarekChromy/Sambacontrolcenter/cmd/serve"
	"github.com/MarekChromy/Sambacontrolcenter/cmd/status"
	"github.com/MarekChromy/Sambacontrolcenter/cmd/version"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sambacc",
		Short: "Samba Control Center: web panel for Samba shares, users, and mounts",
	}

	rootCmd.AddCommand(serve.NewServeCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(health.NewHealthCmd())
	rootCmd.AddCommand(status.NewStatusCmd())
	rootCmd.AddCommand(config.NewConfigCmd())

	return rootCmd
}
