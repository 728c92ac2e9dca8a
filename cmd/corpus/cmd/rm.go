package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corpuskit/corpus/internal/output"
)

// newRmCmd creates the rm command.
func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Unregister a collection",
		Long:  `Rm removes a collection from the catalog. The underlying bundle or directory is left untouched.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if err := store.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("removed %s", args[0])
			return nil
		},
	}
}
