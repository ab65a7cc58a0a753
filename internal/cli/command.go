package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/largest/internal/config"
	"github.com/idelchi/largest/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version, stdout: os.Stdout, stderr: os.Stderr}
}

// WithOutput returns a copy of the CLI writing to the given streams.
func (c CLI) WithOutput(stdout, stderr io.Writer) CLI {
	c.stdout = stdout
	c.stderr = stderr

	return c
}

// flags holds the raw flag values before they are turned into a config.Config.
type flags struct {
	number      int
	maxSize     string
	minSize     string
	extensions  []string
	excludes    []string
	depth       int
	saveOutput  string
	quiet       bool
	output      string
	configPath  string
	debug       bool
	version     bool
	integration bool
}

// Run executes the command with args and returns the process exit code.
// Errors are reported on stderr.
func (c CLI) Run(args []string) ExitCode {
	cmd := c.command(args)

	err := cmd.Execute()
	if err == nil {
		return Success
	}

	code := CodeOf(err)

	red := color.New(color.FgRed, color.Bold)
	red.Fprint(c.stderr, "Error:")                                          //nolint:errcheck // Best effort
	fmt.Fprintf(c.stderr, " %v\nUse --help for usage information.\n", err) //nolint:errcheck // Best effort

	return code
}

func (c CLI) command(args []string) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "largest [flags] DIRECTORY",
		Short: "List the largest files below a directory",
		Long: heredoc.Doc(`
			largest walks DIRECTORY recursively and lists the largest regular files,
			largest first, with sizes in human readable units and paths relative to
			DIRECTORY.

			Only the requested number of entries is kept in memory while walking,
			so arbitrarily large trees can be scanned.

			Defaults for most flags can be stored in a YAML, JSON or TOML file passed
			with --config or named by $LARGEST_CONFIG. Flags given on the command line
			take precedence.

			The '--init' flag prints a zsh function 'largest-fzf' which pipes the
			result into 'fzf' and opens the selected file in $EDITOR.
		`),
		Example: heredoc.Doc(`
			largest ~/Downloads
			largest . -n 25 --ext .iso,.img --max-size 8GB
			largest /var/log -x '!.gz' -s report.txt -q
		`),
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.execute(cmd, f, args)
		},
	}

	fl := cmd.Flags()
	fl.SortFlags = false

	fl.IntVarP(&f.number, "number", "n", 10, fmt.Sprintf("Number of entries to list (1-%d)", config.MaxRank))
	fl.StringVarP(&f.maxSize, "max-size", "m", "0", "Maximum file size to consider (e.g., 4GB, 0=unlimited)")
	fl.StringVar(&f.minSize, "min-size", "0", "Minimum file size to consider (e.g., 1KB)")
	fl.StringSliceVarP(
		&f.extensions,
		"ext",
		"x",
		[]string{},
		"File suffixes to include (e.g., .go,.md). Use '!' prefix to exclude (e.g., !.log,!_test.go)",
	)
	fl.StringSliceVarP(&f.excludes, "exclude", "e", config.DefaultExcludes, "Regex patterns to exclude")
	fl.IntVarP(&f.depth, "depth", "d", 0, "Maximum traversal depth (0=unlimited)")
	fl.StringVarP(&f.saveOutput, "save-output", "s", "", "Also write the report to this file")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "Suppress console output")
	fl.StringVarP(&f.output, "output", "o", string(config.FormatTable), "Output format: table, plain or json")
	fl.StringVarP(&f.configPath, "config", "c", "", "Defaults file (default $"+config.EnvConfig+")")
	fl.BoolVar(&f.debug, "debug", false, "Enable debug output")
	fl.BoolVarP(&f.version, "version", "v", false, "Show version and exit")
	fl.BoolVarP(&f.integration, "init", "i", false, "Output init script for shell usage")

	// cobra falls back to os.Args for nil args.
	if args == nil {
		args = []string{}
	}

	cmd.SetArgs(args)
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)

	return cmd
}

// execute turns the parsed flags into a configuration and runs the scan.
func (c CLI) execute(cmd *cobra.Command, f flags, args []string) error {
	if f.version {
		fmt.Fprintln(c.stdout, c.version) //nolint:errcheck // Version output to console

		return nil
	}

	if f.integration {
		rendered, err := integration.Render()
		if err != nil {
			return fmt.Errorf("rendering integration script: %w", err)
		}

		fmt.Fprintln(c.stdout, rendered) //nolint:errcheck // Integration script output to console

		return nil
	}

	switch len(args) {
	case 0:
		return withCode(MissingArguments, errors.New("no directory specified"))
	case 1:
	default:
		return withCode(UnknownOption, fmt.Errorf("unexpected argument %q", args[1]))
	}

	cfg, err := c.resolve(cmd, f, args[0])
	if err != nil {
		return err
	}

	return c.logic(cfg, invocation(cmd, args))
}

// resolve merges the defaults file with the flags set on the command line.
//
//nolint:cyclop // Flat sequence of overrides
func (c CLI) resolve(cmd *cobra.Command, f flags, root string) (config.Config, error) {
	defaults, err := config.LoadDefaults(f.configPath)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return config.Config{}, withCode(FileOpenFailure, err)
		}

		return config.Config{}, withCode(InvalidOptionValue, err)
	}

	changed := cmd.Flags().Changed

	if !changed("number") {
		f.number = defaults.Number
	}

	if !changed("max-size") {
		f.maxSize = defaults.MaxSize
	}

	if !changed("min-size") {
		f.minSize = defaults.MinSize
	}

	if !changed("ext") {
		f.extensions = defaults.Extensions
	}

	if !changed("exclude") {
		f.excludes = defaults.Excludes
	}

	if !changed("depth") {
		f.depth = defaults.Depth
	}

	if !changed("output") {
		f.output = defaults.Output
	}

	if !changed("debug") {
		f.debug = defaults.Debug
	}

	maxSize, err := config.ParseSize(f.maxSize)
	if err != nil {
		return config.Config{}, withCode(InvalidOptionValue, fmt.Errorf("max-size: %w", err))
	}

	minSize, err := config.ParseSize(f.minSize)
	if err != nil {
		return config.Config{}, withCode(InvalidOptionValue, fmt.Errorf("min-size: %w", err))
	}

	cfg := config.Config{
		Root:       root,
		Number:     f.number,
		MaxSize:    maxSize,
		MinSize:    minSize,
		Extensions: f.extensions,
		Excludes:   f.excludes,
		Depth:      f.depth,
		SaveOutput: f.saveOutput,
		Quiet:      f.quiet,
		Format:     config.Format(strings.ToLower(f.output)),
		Debug:      f.debug,
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, withCode(InvalidOptionValue, err)
	}

	return cfg, nil
}

// invocation reconstructs the command line for the report header.
func invocation(cmd *cobra.Command, args []string) string {
	parts := []string{cmd.Name()}

	cmd.Flags().Visit(func(fl *pflag.Flag) {
		parts = append(parts, fmt.Sprintf("--%s=%s", fl.Name, fl.Value.String()))
	})

	return strings.Join(append(parts, args...), " ")
}
