package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/halcyonchain/nodectl/internal/console"
	"github.com/halcyonchain/nodectl/internal/monitor"
	"github.com/halcyonchain/nodectl/internal/proc"
	"github.com/halcyonchain/nodectl/internal/state"
	"github.com/halcyonchain/nodectl/internal/supervisor"
	"github.com/halcyonchain/nodectl/pkg/config"
	"github.com/halcyonchain/nodectl/pkg/consts"
	"github.com/halcyonchain/nodectl/pkg/errors"
	"github.com/halcyonchain/nodectl/pkg/logger"
)

var (
	cfgFile   string
	modeFlag  string
	retention int
	lineCount int
	follow    bool
	assumeYes bool
)

// actions are the operations offered when no subcommand is given.
var actions = []string{"start", "stop", "status", "restart", "purge", "view_logs", "purge_logs"}

type app struct {
	cfg    *config.Config
	sup    *supervisor.Supervisor
	prompt console.Prompter
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger.InitLogger(cfg.Observability.LogLevel)

	prompt := console.NewTerminal(os.Stdin, os.Stdout)
	store := state.NewFileStore(cfg.Paths.PIDPath(), cfg.Paths.ModePath())
	sup := supervisor.New(cfg, store, proc.OSController{}, prompt, os.Stdout)
	return &app{cfg: cfg, sup: sup, prompt: prompt}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM, releasing the follow and
// watch loops.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func startRequest() supervisor.StartRequest {
	return supervisor.StartRequest{Mode: consts.RunMode(modeFlag), Retention: retention}
}

// run dispatches an interactively chosen action. Flags were not given, so
// the supervisor falls back to its prompts.
func (a *app) run(action string) error {
	switch action {
	case "start":
		return a.sup.Start(supervisor.StartRequest{})
	case "stop":
		return a.sup.Stop()
	case "status":
		return a.sup.Status()
	case "restart":
		return a.sup.Restart(supervisor.StartRequest{})
	case "purge":
		return a.sup.Purge(false)
	case "view_logs", "logs":
		ctx, cancel := signalContext()
		defer cancel()
		return a.sup.ViewLogs(ctx, 0, false)
	case "purge_logs", "purge-logs":
		return a.sup.PurgeLogs(false)
	}
	return errors.New(errors.ErrCodeBadInput, "Dispatch", fmt.Sprintf("unknown action %q", action), nil)
}

var rootCmd = &cobra.Command{
	Use:           "nodectl [action]",
	Short:         "nodectl supervises the Halcyon chain node process",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			cmd.Usage()
			return fmt.Errorf("unknown action %q", args[0])
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		action, err := a.prompt.Action(actions)
		if err != nil {
			return err
		}
		return a.run(action)
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the node in a chosen run mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return a.sup.Start(startRequest())
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the node gracefully, killing it after the timeout",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return a.sup.Stop()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report node liveness, run mode, and recent log output",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return a.sup.Status()
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Stop the node, then start it again",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return a.sup.Restart(startRequest())
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete the chain database (node must be stopped)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return a.sup.Purge(assumeYes)
	},
}

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"view_logs"},
	Short:   "Print the tail of the node log",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()
		return a.sup.ViewLogs(ctx, lineCount, follow)
	},
}

var purgeLogsCmd = &cobra.Command{
	Use:     "purge-logs",
	Aliases: []string{"purge_logs"},
	Short:   "Truncate the node log",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return a.sup.PurgeLogs(assumeYes)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll node liveness and expose metrics until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		monitor.InitMetrics(a.cfg.Observability.MetricsAddr)
		ctx, cancel := signalContext()
		defer cancel()
		return a.sup.Watch(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when absent)")

	startCmd.Flags().StringVar(&modeFlag, "mode", "", "run mode: lite, full, or archive")
	startCmd.Flags().IntVar(&retention, "retention", 0, "blocks to retain for lite/full pruning")
	restartCmd.Flags().StringVar(&modeFlag, "mode", "", "run mode: lite, full, or archive")
	restartCmd.Flags().IntVar(&retention, "retention", 0, "blocks to retain for lite/full pruning")

	logsCmd.Flags().IntVarP(&lineCount, "lines", "n", 0, "number of log lines to print")
	logsCmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep streaming appended log output")

	purgeCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	purgeLogsCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(purgeLogsCmd)
	rootCmd.AddCommand(watchCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
