// Package cli builds the grove command line around a suite declared in Go.
//
// A test binary typically looks like:
//
//	func main() {
//		cli.Execute("billing", func(s *grove.Suite) {
//			s.Describe("invoice", func(c *dsl.C) { ... })
//		})
//	}
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/grove"
	"github.com/aretw0/grove/internal/config"
	"github.com/aretw0/grove/internal/logging"
	"github.com/spf13/cobra"
)

// ErrExamplesFailed is returned by the run command when the report is not OK.
// The reporter has already printed the failures.
var ErrExamplesFailed = errors.New("examples failed")

// Define declares the specification tree on a freshly configured suite.
type Define func(s *grove.Suite)

// app carries the state shared by the commands of one invocation.
type app struct {
	name   string
	define Define

	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
	suite  *grove.Suite
}

// NewRootCommand returns the command tree for the suite produced by define.
// Running it without a subcommand is the same as "run".
func NewRootCommand(name string, define Define) *cobra.Command {
	a := &app{name: name, define: define}

	rootCmd := &cobra.Command{
		Use:           name,
		Short:         fmt.Sprintf("Run the %s specification suite", name),
		Long:          `Runs nested contextual specifications declared with grove: contexts, examples, lazy bindings, hooks and shared groups.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "Config file (YAML, or JSON with a .json extension)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides the config file)")

	runCmd := newRunCmd(a)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newMCPCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	// "run" is the default command.
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
	rootCmd.RunE = runCmd.RunE
	return rootCmd
}

// Execute runs the command line against os.Args and exits on failure.
func Execute(name string, define Define) {
	rootCmd := NewRootCommand(name, define)
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, ErrExamplesFailed) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		}
		os.Exit(1)
	}
}

// setup loads the config file, applies the flags of cmd on top and builds the
// suite. It runs once per invocation.
func (a *app) setup(cmd *cobra.Command) (*grove.Suite, error) {
	if a.suite != nil {
		return a.suite, nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return nil, err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
	a.logger.Debug("config loaded", "path", a.configPath, "random", cfg.Random, "seed", cfg.Seed, "timeout", cfg.Timeout)

	a.suite = grove.New(
		grove.WithName(a.name),
		grove.WithLogger(a.logger),
		grove.WithRandom(cfg.Random),
		grove.WithSeed(cfg.Seed),
		grove.WithTimeout(cfg.Timeout),
		grove.WithExternalNames(cfg.ExternalNames...),
	)
	if a.define != nil {
		a.define(a.suite)
	}
	return a.suite, nil
}

// applyFlags overrides cfg with the flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	// Each --random toggles the default, so passing it twice restores it.
	if flags.Lookup("random") != nil {
		n, err := flags.GetCount("random")
		if err != nil {
			return err
		}
		if n%2 == 1 {
			cfg.Random = !cfg.Random
		}
	}
	if flags.Changed("seed") {
		seed, err := flags.GetUint64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = seed
	}
	if flags.Changed("timeout") {
		timeout, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = timeout
	}
	if flags.Changed("format") {
		format, err := flags.GetString("format")
		if err != nil {
			return err
		}
		cfg.Format = format
	}
	if flags.Changed("listen") {
		listen, err := flags.GetString("listen")
		if err != nil {
			return err
		}
		cfg.Listen = listen
	}
	return nil
}
