package main

import (
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/nick-dorsch/taskheap/internal/replay"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Run a YAML script of queue operations and print each step.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := homedir.Expand(args[0])
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "open script")
		}
		defer f.Close()

		script, err := replay.Load(f)
		if err != nil {
			return err
		}

		result, err := replay.Run(cmd.Context(), script, logger)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			compact, _ := cmd.Flags().GetBool("compact")
			return replay.WriteJSON(out, result, !compact)
		}
		return replay.WriteText(out, result)
	},
}

func init() {
	replayCmd.Flags().Bool("json", false, "print the result as JSON")
	replayCmd.Flags().Bool("compact", false, "with --json, print on a single line")
	rootCmd.AddCommand(replayCmd)
}
