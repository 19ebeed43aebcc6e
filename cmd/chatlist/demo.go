package main

import (
	"strings"

	"github.com/aretw0/chatlist/internal/cli"
	"github.com/aretw0/chatlist/pkg/viewmodel"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the mock chat list through the reconciler",
	Long: `Seeds a mock chat list and applies the demo operations (insert, delete,
update, batch, last) in order, printing each transition the view applies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		count, _ := cmd.Flags().GetInt("count")
		ops, _ := cmd.Flags().GetString("ops")

		return cli.RunDemo(cmd.Context(), cli.DemoOptions{
			Count:    count,
			Ops:      strings.Split(ops, ","),
			Terminal: isTerminal(),
			Banner:   isTerminal(),
		}, cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().Int("count", viewmodel.DefaultMockCount, "Rooms to seed")
	demoCmd.Flags().String("ops", strings.Join(cli.DemoOps, ","), "Comma-separated demo steps")
}
