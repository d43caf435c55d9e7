package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/logging"
	"github.com/spf13/cobra"
)

// version is overridden at link time.
var version = "dev"

// rootOptions holds global flags for all commands.
type rootOptions struct {
	Config  string
	Verbose bool
}

// renderOptions holds the flags of the render command.
type renderOptions struct {
	Snapshot string
	Preview  string
	Children bool
	Direct   bool
	Document string
}

// newRootCommand creates the root command for the facet CLI.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "facet",
		Short: "facet - declarative solid modeling",
		Long:  "Build solid models from scripts of shapes, booleans and relative placement.",
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "path to a TOML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newRenderCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the facet version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "facet %s\n", version)
			return err
		},
	}
}

func newRenderCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <script>",
		Short: "Evaluate a script and write its document",
		Long: `Evaluate a facet script into a fresh document.

Shown components are realized as occurrences and meshed. The document can
be written as a YAML snapshot and as a top view PNG preview.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Snapshot, "snapshot", "", "write a YAML snapshot of the document to this file")
	cmd.Flags().StringVar(&opts.Preview, "preview", "", "write a PNG top view of the document to this file")
	cmd.Flags().BoolVar(&opts.Children, "children", false, "realize the children of shown components")
	cmd.Flags().BoolVar(&opts.Direct, "direct", false, "use a direct design instead of a parametric one")
	cmd.Flags().StringVar(&opts.Document, "document", "", "name of the document to render into")

	return cmd
}

// loadConfig reads the config file when one is given and applies the
// command line overrides.
func loadConfig(rootOpts *rootOptions, opts *renderOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if rootOpts.Config != "" {
		var err error
		if cfg, err = config.Load(rootOpts.Config); err != nil {
			return config.Config{}, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("children") {
		cfg.CreateChildren = opts.Children
	}
	if flags.Changed("direct") {
		cfg.Parametric = !opts.Direct
	}
	if opts.Document != "" {
		cfg.DocumentName = opts.Document
	}
	if rootOpts.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func runRender(rootOpts *rootOptions, opts *renderOptions, path string, cmd *cobra.Command) error {
	cfg, err := loadConfig(rootOpts, opts, cmd)
	if err != nil {
		return err
	}
	log := logging.ConfigureRuntime(
		logging.WithLevel(cfg.Log.Level),
		logging.WithTimestamp(cfg.Log.Timestamp),
		logging.WithNoColor(cfg.Log.NoColor),
		logging.WithOutput(cmd.ErrOrStderr()),
	)

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	app := NewApp(cfg, log)
	app.SetReporter(func(title, trace string) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n%s\n", title, trace)
	})

	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d: %s\n", path, e.Line, e.Message)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", path, e.Message)
			}
		}
		return fmt.Errorf("evaluation failed with %d error(s)", len(result.Errors))
	}

	out := cmd.OutOrStdout()
	for _, m := range result.Meshes {
		fmt.Fprintf(out, "%s\t%d triangles\t%s\n", m.PartName, len(m.Indices)/3, m.Color)
	}

	if opts.Snapshot != "" {
		if err := writeFile(opts.Snapshot, app.WriteSnapshot); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}
	if opts.Preview != "" {
		if err := writeFile(opts.Preview, app.WritePreview); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
