package main

import (
	"github.com/aretw0/chatlist/internal/cli"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff OLD NEW",
	Short: "Print the transition between two snapshot files",
	Long: `Reconciles two snapshot files (YAML or JSON, either a list of cells or a
document with a "cells" key) and prints the row operations.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := loadConfig(cmd); err != nil {
			return err
		}
		allUpdated, _ := cmd.Flags().GetBool("all-updated")
		format, _ := cmd.Flags().GetString("format")

		opts := cli.DiffOptions{
			OldPath:    args[0],
			NewPath:    args[1],
			AllUpdated: allUpdated,
			Format:     format,
			Terminal:   isTerminal(),
		}
		if cmd.Flags().Changed("scroll-to") {
			idx, _ := cmd.Flags().GetInt("scroll-to")
			opts.ScrollTo = &idx
		}
		return cli.RunDiff(opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().Bool("all-updated", false, "Report every surviving row as updated")
	diffCmd.Flags().Int("scroll-to", 0, "Anchor the view at this row of NEW")
	diffCmd.Flags().StringP("format", "f", cli.FormatText, "Output format: text, json, markdown or mermaid")
}
