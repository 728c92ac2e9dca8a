// Package cmd provides the CLI commands for corpus.
package cmd

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/corpuskit/corpus/internal/catalog"
	"github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/logging"
	"github.com/corpuskit/corpus/pkg/version"
)

var (
	debugMode      bool
	catalogPath    string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the corpus CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Pack file trees into searchable bundles",
		Long: `Corpus packs a directory or repository into a single indexed bundle,
keeps a catalog of packed collections, and serves ranked search and file
retrieval over HTTP or MCP stdio.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("corpus version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.corpus/logs/")
	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Catalog file path (default $CORPUS_HOME/catalog.yaml)")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(
		newPackCmd(),
		newBatchCmd(),
		newAddCmd(),
		newRmCmd(),
		newLsCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the CLI and reports errors with their suggestion, if any.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		var cerr *errors.CorpusError
		if stderrors.As(err, &cerr) && cerr.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", cerr.Suggestion)
		}
	}
	return err
}

func setupLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		// Logging must never block the command itself.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		return nil
	}
	slog.SetDefault(logger)
	loggingCleanup = cleanup
	return nil
}

// openStore resolves the catalog store from the --catalog flag or the
// default location.
func openStore() (*catalog.Store, error) {
	path := catalogPath
	if path == "" {
		var err error
		path, err = catalog.DefaultPath()
		if err != nil {
			return nil, errors.IO("failed to resolve catalog path", err)
		}
	}
	return catalog.NewStore(path), nil
}
