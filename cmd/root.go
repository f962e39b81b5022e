package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mediapack",
		Short:         "mediapack: collect media bursts and deliver them as zip archives",
		Long:          "mediapack ingests per-user media uploads, waits for the burst to go quiet, downloads the content, packs it into a zip archive (split into volumes when too large), and delivers the volumes to a hub endpoint.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().String("config", "", "path to config file (default: user config dir)")

	rootCmd.AddCommand(
		newServeCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
