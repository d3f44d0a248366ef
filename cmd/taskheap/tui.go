package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nick-dorsch/taskheap/internal/session"
	"github.com/nick-dorsch/taskheap/internal/ui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Manage the queue interactively.",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		quietConsole = true
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := newSessions()
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		enableWeb, _ := cmd.Flags().GetBool("web")
		if enableWeb {
			startWeb(ctx, sessions, portFlag(cmd))
		}

		return runBoard(sessions, session.DefaultID, logger, func(p *tea.Program) {
			// Send blocks until the program reads it, and board actions run
			// on the program's own goroutine.
			sessions.SetOnChange(func(ctx context.Context, id string) {
				if id == session.DefaultID {
					go p.Send(ui.RefreshMsg{})
				}
			})
		})
	},
}

func init() {
	tuiCmd.Flags().Bool("web", false, "also serve the HTTP API")
	tuiCmd.Flags().String("port", "8000", "port for the HTTP API")
	rootCmd.AddCommand(tuiCmd)
}
