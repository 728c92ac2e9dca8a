package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corpuskit/corpus/internal/output"
)

// newLsCmd creates the ls command.
func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List registered collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			cols, err := store.List()
			if err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Collections(cols)
			return nil
		},
	}
}
