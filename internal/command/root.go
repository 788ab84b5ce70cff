// Package command implements the decisioncore command line.
package command

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joeycumines/decisioncore/internal/config"
)

// app is the state shared by the commands of one invocation.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	logFile    string

	cfg     *config.Config
	logger  *slog.Logger
	closers []io.Closer
	prev    *slog.Logger
}

// Execute runs the command line with args, writing to stdout and stderr.
func Execute(ctx context.Context, version string, args []string, stdout, stderr io.Writer) error {
	root, a := newRoot(version)
	defer a.close()
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRoot(version string) (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:   "decisioncore",
		Short: "Behaviour trees, blackboards and arbitration for game agents",
		Long: `decisioncore drives agents with a behaviour tree over a shared blackboard,
an arbiter choosing between competing experts, and state machines.

The simulate command runs the fetch example: dogs chasing balls thrown by
their owner, eating and drinking from bowls a keeper refills. Trees can be
replaced by YAML documents, extended with JavaScript, and observed through
Prometheus metrics.

Configuration is read from --config, $DECISIONCORE_CONFIG or
~/.decisioncore/config.yaml, then from DECISIONCORE_* environment variables
(DECISIONCORE_SIM_TICKS=50 sets sim.ticks). Flags win over both.`,
		Version:           version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "config file (default $DECISIONCORE_CONFIG or ~/.decisioncore/config.yaml when present)")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	f.StringVar(&a.logFormat, "log-format", "", "log format: text or json")
	f.StringVar(&a.logFile, "log-file", "", "write logs to this file, rotated by size")

	root.AddCommand(
		newSimulateCommand(a),
		newTreeCommand(a),
		newVersionCommand(version),
	)
	return root, a
}

// setup loads the configuration and installs the logger for every command.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path := a.configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	lc, err := resolveLogConfig(a.logFile, a.logLevel, a.logFormat, cfg)
	if err != nil {
		return err
	}
	if lc.logFile != nil {
		a.closers = append(a.closers, lc.logFile)
	}
	a.cfg = cfg
	a.logger = lc.logger(cmd.ErrOrStderr())
	a.prev = slog.Default()
	slog.SetDefault(a.logger)
	a.logger.Debug("configuration loaded", "path", path)
	return nil
}

func (a *app) close() {
	if a.prev != nil {
		slog.SetDefault(a.prev)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}
