package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/corpuskit/corpus/internal/bundle"
	"github.com/corpuskit/corpus/internal/config"
	"github.com/corpuskit/corpus/internal/fetch"
	"github.com/corpuskit/corpus/internal/output"
	"github.com/corpuskit/corpus/internal/pack"
)

// newPackCmd creates the pack command.
func newPackCmd() *cobra.Command {
	var (
		include           []string
		exclude           []string
		noDefaultExcludes bool
		gitignore         bool
		maxFileSize       int64
		encoding          string
		gzipOut           bool
		base64Out         bool
		outputPath        string
		noManifest        bool
		register          bool
		registerID        string
		registerName      string
		registerTags      []string
		force             bool
		fetchTimeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "pack <root>",
		Short: "Pack a directory or repository into a bundle",
		Long: `Pack selects files under a local directory or a remote repository URL,
writes them as a single bundle with a prepended index, and optionally
registers the result in the catalog.

Project defaults are read from cpack.yml, cpack.yaml or cpack.json in the
root; command-line flags override them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]

			cfgRoot := root
			if fetch.IsRemote(root) {
				cfgRoot = ""
			}
			cfg, err := config.Load(cfgRoot)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("include") {
				include = cfg.Pack.Include
			}
			if !flags.Changed("exclude") {
				exclude = cfg.Pack.Exclude
			}
			if !flags.Changed("encoding") {
				encoding = cfg.Pack.Encoding
			}
			if !flags.Changed("output") && cfg.Pack.Output != "" {
				outputPath = cfg.Pack.Output
			}
			if !flags.Changed("max-file-size") {
				maxFileSize = cfg.Pack.MaxFileSize
			}
			if !flags.Changed("gitignore") {
				gitignore = cfg.Pack.RespectGitignore
			}
			if !flags.Changed("no-default-excludes") {
				noDefaultExcludes = cfg.Pack.NoDefaultExcludes
			}

			enc, err := bundle.ParseEncoding(encoding)
			if err != nil {
				return err
			}
			enc, err = bundle.NewEncoding(enc.Mode, enc.Gzip || gzipOut, enc.Base64 || base64Out)
			if err != nil {
				return err
			}

			opts := pack.Options{
				Root:              root,
				Include:           include,
				Exclude:           exclude,
				NoDefaultExcludes: noDefaultExcludes,
				RespectGitignore:  gitignore,
				MaxFileSize:       maxFileSize,
				Encoding:          enc,
				Output:            outputPath,
				WriteManifest:     !noManifest,
				FetchTimeout:      fetchTimeout,
			}
			if register || registerID != "" {
				store, err := openStore()
				if err != nil {
					return err
				}
				opts.Register = true
				opts.RegisterID = registerID
				opts.RegisterName = registerName
				opts.RegisterTags = registerTags
				opts.Overwrite = force
				opts.Store = store
			}

			res, err := pack.New().Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).PackSummary(res)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&include, "include", "i", nil, "Glob patterns to include (default: all files)")
	cmd.Flags().StringSliceVarP(&exclude, "exclude", "e", nil, "Glob patterns to exclude (win over includes)")
	cmd.Flags().BoolVar(&noDefaultExcludes, "no-default-excludes", false, "Do not apply the built-in exclude patterns")
	cmd.Flags().BoolVar(&gitignore, "gitignore", false, "Also respect the root's .gitignore")
	cmd.Flags().Int64Var(&maxFileSize, "max-file-size", 0, "Skip files larger than this many bytes")
	cmd.Flags().StringVar(&encoding, "encoding", "plain", "Bundle encoding: plain, compressed, max-compressed, gzip, base64")
	cmd.Flags().BoolVar(&gzipOut, "gzip", false, "Gzip the bundle")
	cmd.Flags().BoolVar(&base64Out, "base64", false, "Base64-encode the gzipped bundle")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Bundle output path (default <slug>.corpus.txt)")
	cmd.Flags().BoolVar(&noManifest, "no-manifest", false, "Skip the JSON index sidecar")
	cmd.Flags().BoolVar(&register, "add", false, "Register the bundle in the catalog")
	cmd.Flags().StringVar(&registerID, "id", "", "Catalog id for the bundle (implies --add)")
	cmd.Flags().StringVar(&registerName, "name", "", "Display name for the catalog entry")
	cmd.Flags().StringSliceVar(&registerTags, "tag", nil, "Tag for the catalog entry (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing catalog entry with the same id")
	cmd.Flags().DurationVar(&fetchTimeout, "fetch-timeout", fetch.DefaultTimeout, "Timeout for cloning a remote root")

	return cmd
}
