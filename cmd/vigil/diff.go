package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/vigil/internal/cli"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old.yaml> <new.yaml>",
	Short: "Diff two YAML documents using the change detection engine",
	Long: `Loads two YAML documents, registers a watch on every top-level key of
the first one, applies the second document as a mutation and reports all
detected changes: scalar edits, sequence additions/moves/removals and
map entry changes.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		markdown, _ := cmd.Flags().GetBool("markdown")

		err := cli.RunDiff(cli.DiffOptions{
			OldPath:  args[0],
			NewPath:  args[1],
			Markdown: markdown,
			Debug:    debug,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().Bool("markdown", false, "Print the raw markdown report without terminal styling")
}
