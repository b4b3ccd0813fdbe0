package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/crystaleda-cli/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the explorer views as a JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") && serveAddr != "" {
			addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := log.New(cmd.ErrOrStderr(), "crystaleda ", log.LstdFlags)
		exp, done := openExplorer(ctx, cmd, logger)
		defer done()
		srv := server.New(exp, logger)
		srv.SetDebug(debug)
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8050)")
}
