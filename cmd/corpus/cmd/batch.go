package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/corpuskit/corpus/internal/batch"
	"github.com/corpuskit/corpus/internal/config"
	"github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/output"
)

// newBatchCmd creates the batch command.
func newBatchCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch <jobs.jsonl>",
		Short: "Run many pack jobs from a JSONL file",
		Long: `Batch reads one pack job per line as JSON and runs them across a bounded
worker pool. Jobs that carry an id are registered in the catalog. The run
stops scheduling new jobs after the first failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.IO("failed to open batch file", err).WithDetail("path", args[0])
			}
			defer func() { _ = f.Close() }()

			jobs, err := batch.LoadJobs(f)
			if err != nil {
				return err
			}

			if workers == 0 {
				cfg, err := config.Load("")
				if err != nil {
					return err
				}
				workers = cfg.Batch.Workers
			}

			store, err := openStore()
			if err != nil {
				return err
			}

			results, runErr := batch.NewRunner(store, workers).Run(cmd.Context(), jobs)

			w := output.New(cmd.OutOrStdout())
			for _, res := range results {
				switch {
				case res.Err != nil:
					w.Errorf("%s: %s", res.Job.Root, res.Err)
				case res.Result != nil:
					w.PackSummary(res.Result)
				}
			}
			return runErr
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (default from config)")
	return cmd
}
