package main

import (
	"github.com/nick-dorsch/taskheap/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the queue over an HTTP JSON API.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := newSessions()
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		port := portFlag(cmd)
		srv := server.NewServer(sessions, logger)
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.Start(":" + port)
		}()

		select {
		case err := <-errChan:
			return err
		case <-ctx.Done():
			logger.Info("shutting down", zap.String("port", port))
			return shutdown(srv)
		}
	},
}

func init() {
	webCmd.Flags().String("port", "8000", "port to listen on")
	rootCmd.AddCommand(webCmd)
}
