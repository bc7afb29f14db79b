package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/dupfind/internal/config"
	"github.com/idelchi/dupfind/internal/dupfind"
	"github.com/idelchi/dupfind/internal/integration"
	"github.com/idelchi/dupfind/internal/recursion"
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

// flags holds the raw command-line values.
type flags struct {
	recursion   recursion.Policy
	strategy    string
	hash        string
	engine      string
	excludes    []string
	minSize     string
	workers     int
	dirWorkers  int
	buffer      int
	output      string
	configPath  string
	debug       bool
	integration bool
}

// settings is the resolved configuration of a run.
type settings struct {
	scan   dupfind.Options
	output string
	debug  bool
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.execute(os.Args[1:])
}

func (c CLI) execute(args []string) error {
	cmd := c.Command()
	cmd.SetArgs(attachDepth(args))

	return cmd.Execute()
}

// attachDepth joins "-r N" and "--recursive N" into "-r=N" when N is a
// non-negative integer. The flag has an optional value, so pflag would
// otherwise read N as the path.
func attachDepth(args []string) []string {
	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			return append(out, args[i:]...)
		}

		if (arg == "-r" || arg == "--recursive") && i+1 < len(args) {
			if policy, err := recursion.Parse(args[i+1]); err == nil && policy.Mode() == recursion.ModeBounded {
				out = append(out, arg+"="+args[i+1])
				i++

				continue
			}
		}

		out = append(out, arg)
	}

	return out
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var f flags

	defaults := config.GetDefault()

	cmd := &cobra.Command{
		Use:   "dupfind [flags] [path]",
		Short: "Find files with identical contents",
		Long: heredoc.Doc(`
			dupfind reports groups of files whose contents are identical.

			Positional Arguments:
			  path   Directory to scan. Defaults to the current directory.

			Recursion:
			  By default only the direct entries of path are scanned.
			  -r / --recursive          descend without limit
			  -r N / --recursive N      descend at most N directory levels below path
			  -r=N / --recursive=N      same as above

			  Files inside the deepest scanned directories are included: with -r 1,
			  path/sub/file is scanned but path/sub/deeper/file is not, and -r 0
			  scans the same files as no -r at all.
			  A path named like a number must be written as ./N after -r.

			Files are first bucketed by size; only files sharing a size with
			another file are hashed. Empty files are never reported.

			Defaults for every flag can be set in $XDG_CONFIG_HOME/dupfind/config.yaml.

			The '-I' flag is available if using the integration script for shell usage.
			It will then run an interactive mode where the output of the tool is piped to 'fzf'.
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.integration {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				fmt.Fprintln(c.stdout, rendered)

				return nil
			}

			cfg, err := loadConfig(f.configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}

			s, err := resolve(cmd.Flags(), f, cfg)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				s.scan.Path = args[0]
			}

			return c.logic(cmd.Context(), s)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)

	fs := cmd.Flags()
	fs.SortFlags = false

	fs.VarP(&f.recursion, "recursive", "r", "Recursion depth: bare flag for unlimited, =N for N levels below path")
	fs.Lookup("recursive").NoOptDefVal = recursion.Unlimited
	fs.StringVar(&f.strategy, "strategy", defaults.Strategy, "Grouping strategy: size (hash shared sizes only) or direct (hash everything)")
	fs.StringVar(&f.hash, "hash", defaults.Hash, fmt.Sprintf("Hash algorithm: %v", dupfind.Algorithms()))
	fs.StringVar(&f.engine, "engine", defaults.Engine, "Traversal engine: bfs or fastwalk")
	fs.StringSliceVarP(&f.excludes, "exclude", "e", defaults.Excludes, "Regex patterns to exclude")
	fs.StringVar(&f.minSize, "min-size", defaults.MinSize, "Minimum file size (e.g., 1KB)")
	fs.IntVarP(&f.workers, "workers", "w", defaults.Workers, "Number of files hashed concurrently")
	fs.IntVar(&f.dirWorkers, "dir-workers", defaults.DirWorkers, "Number of directories listed concurrently")
	fs.IntVar(&f.buffer, "buffer", defaults.Buffer, "Capacity of the result channel")
	fs.StringVarP(&f.output, "output", "o", defaults.Output, fmt.Sprintf("Output format: %v", config.AllowedOutputs))
	fs.StringVar(&f.configPath, "config", "", "Path to a YAML config file")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug output")
	fs.BoolVarP(&f.integration, "init", "i", false, "Output init script for shell usage")

	return cmd
}

// loadConfig reads the config file named by --config, or the default file
// if it exists.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if !explicit {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return config.GetDefault(), nil //nolint:nilerr // No config directory, use defaults
		}

		path = defaultPath
	}

	return config.Load(path, explicit)
}

// resolve merges the config file into every flag the user did not set and
// validates the result.
//
//nolint:cyclop,funlen // Flat list of flag merges
func resolve(fs *pflag.FlagSet, f flags, cfg *config.Config) (settings, error) {
	if !fs.Changed("recursive") {
		policy, err := recursion.Parse(cfg.Recursive)
		if err != nil {
			return settings{}, err
		}

		f.recursion = policy
	}

	merge := func(name string, flag *string, value string) {
		if !fs.Changed(name) {
			*flag = value
		}
	}

	merge("strategy", &f.strategy, cfg.Strategy)
	merge("hash", &f.hash, cfg.Hash)
	merge("engine", &f.engine, cfg.Engine)
	merge("min-size", &f.minSize, cfg.MinSize)
	merge("output", &f.output, cfg.Output)

	if !fs.Changed("exclude") {
		f.excludes = cfg.Excludes
	}

	if !fs.Changed("workers") {
		f.workers = cfg.Workers
	}

	if !fs.Changed("dir-workers") {
		f.dirWorkers = cfg.DirWorkers
	}

	if !fs.Changed("buffer") {
		f.buffer = cfg.Buffer
	}

	strategy, err := dupfind.ParseStrategy(f.strategy)
	if err != nil {
		return settings{}, err
	}

	algorithm, err := dupfind.ParseAlgorithm(f.hash)
	if err != nil {
		return settings{}, err
	}

	engine, err := dupfind.ParseEngine(f.engine)
	if err != nil {
		return settings{}, err
	}

	if !slices.Contains(config.AllowedOutputs, f.output) {
		return settings{}, fmt.Errorf("invalid output format %q: must be one of %v", f.output, config.AllowedOutputs)
	}

	if f.workers < 1 || f.dirWorkers < 1 {
		return settings{}, errors.New("worker counts must be at least 1")
	}

	if f.buffer < 1 {
		return settings{}, errors.New("buffer must be at least 1")
	}

	// Parse minSize string to bytes
	var minSize int64

	if f.minSize != "" {
		size, err := humanize.ParseBytes(f.minSize)
		if err != nil {
			return settings{}, fmt.Errorf("invalid min-size: %w", err)
		}

		minSize = int64(size) //nolint:gosec // Size conversion from humanize is safe
	}

	return settings{
		scan: dupfind.Options{
			Path:        ".",
			Recursion:   f.recursion,
			Strategy:    strategy,
			Engine:      engine,
			Algorithm:   algorithm,
			Excludes:    f.excludes,
			MinSize:     minSize,
			HashWorkers: f.workers,
			DirWorkers:  f.dirWorkers,
			Buffer:      f.buffer,
		},
		output: f.output,
		debug:  f.debug,
	}, nil
}
