package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/chatlist"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of chatlist",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "chatlist version %s\n", strings.TrimSpace(chatlist.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
