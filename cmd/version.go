package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cloudtop version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cloudtop version", rootCmd.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
