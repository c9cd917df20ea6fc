package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mantle-dev/mantle/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of mantle",
	Long:  `Print the version, Git commit hash, build date, and platform of mantle.`,
	Run: func(_ *cobra.Command, _ []string) {
		info := version.Get()
		fmt.Printf("mantle version %s\n", info.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
