package main

import (
	"fmt"
	"path/filepath"

	"github.com/nick-dorsch/taskheap/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a config file with the default settings.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var dir string
		if len(args) > 0 {
			dir = args[0]
		} else {
			d, err := config.DefaultDir()
			if err != nil {
				return err
			}
			dir = d
		}

		path := filepath.Join(dir, config.ConfigFileName+".yaml")
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Config at %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
