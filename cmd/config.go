package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avrel/mediapack/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the mediapack configuration",
	}
	configCmd.AddCommand(newConfigInitCmd())
	return configCmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath(cmd)
			if path == "" {
				var err error
				path, err = config.Path()
				if err != nil {
					return err
				}
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}
}
