package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pagewatch",
		Short:         "Watch web pages for keywords",
		Long:          `Fetch pages, count keywords and show the sentences around new or more frequent ones.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	rootCmd.AddCommand(
		NewCheckCmd(),
		NewAnalyzeCmd(),
	)

	return rootCmd
}
