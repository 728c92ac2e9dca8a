package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corpuskit/corpus/internal/catalog"
	"github.com/corpuskit/corpus/internal/output"
)

// newAddCmd creates the add command.
func newAddCmd() *cobra.Command {
	var (
		id    string
		name  string
		tags  []string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "add <source>",
		Short: "Register a bundle or directory in the catalog",
		Long: `Add registers an existing bundle file or a raw directory as a named
collection. Without --id the id is a slug derived from the source path;
derived slugs are deduplicated with a numeric suffix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			col, err := store.Add(cmd.Context(), catalog.AddOptions{
				Source:    args[0],
				ID:        id,
				Name:      name,
				Tags:      tags,
				Overwrite: force,
			})
			if err != nil {
				return err
			}

			output.New(cmd.OutOrStdout()).Successf("registered %s (%s) -> %s", col.ID, col.Kind, col.Source)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Catalog id (default: slug of the source path)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag for the collection (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing entry with the same id")
	return cmd
}
