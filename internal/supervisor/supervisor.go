package supervisor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"

	"github.com/halcyonchain/nodectl/internal/console"
	"github.com/halcyonchain/nodectl/internal/logfile"
	"github.com/halcyonchain/nodectl/internal/monitor"
	"github.com/halcyonchain/nodectl/internal/proc"
	"github.com/halcyonchain/nodectl/internal/state"
	"github.com/halcyonchain/nodectl/pkg/config"
	"github.com/halcyonchain/nodectl/pkg/consts"
	"github.com/halcyonchain/nodectl/pkg/errors"
	"github.com/halcyonchain/nodectl/pkg/fsm"
	"github.com/halcyonchain/nodectl/pkg/logger"
)

const (
	stAbsent   = fsm.State(consts.StateAbsent)
	stStarting = fsm.State(consts.StateStarting)
	stRunning  = fsm.State(consts.StateRunning)
	stStopping = fsm.State(consts.StateStopping)
)

const (
	evLaunch fsm.Event = "launch"
	evStable fsm.Event = "stable"
	evFailed fsm.Event = "failed"
	evStop   fsm.Event = "stop"
	evExited fsm.Event = "exited"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	downColor = color.New(color.FgRed)
)

// Supervisor executes one operator action end to end. Every action loads a
// state snapshot from the store, re-validates any recorded PID against the
// process controller, and saves the outcome before returning.
type Supervisor struct {
	cfg    *config.Config
	store  state.Store
	proc   proc.Controller
	prompt console.Prompter
	out    io.Writer

	grace       time.Duration
	interval    time.Duration
	attempts    int
	watchPeriod time.Duration
}

func New(cfg *config.Config, store state.Store, ctrl proc.Controller, prompt console.Prompter, out io.Writer) *Supervisor {
	return &Supervisor{
		cfg:         cfg,
		store:       store,
		proc:        ctrl,
		prompt:      prompt,
		out:         out,
		grace:       cfg.Supervision.Grace(),
		interval:    cfg.Supervision.Interval(),
		attempts:    cfg.Supervision.Attempts(),
		watchPeriod: cfg.Supervision.Watch(),
	}
}

// StartRequest carries pre-answered start parameters from command-line
// flags. Zero values mean "ask the operator".
type StartRequest struct {
	Mode      consts.RunMode
	Retention int
}

// load reads the snapshot, discarding an unreadable PID file. Purge must
// not use it: there the mere existence of the file is the precondition.
func (s *Supervisor) load(action string) state.Snapshot {
	snap, err := s.store.Load()
	if err != nil {
		logger.Log.Warn("Discarding unreadable pid file", "action", action, "err", err)
		s.store.ClearPID()
		snap.HavePID = false
		snap.PID = 0
	}
	return snap
}

func (s *Supervisor) healStale(action string, pid int) {
	logger.Log.Info("Removing stale pid file", "action", action, "pid", pid)
	monitor.StaleCleanupsTotal.WithLabelValues(action).Inc()
	s.store.ClearPID()
}

func (s *Supervisor) launchSpec(mode consts.RunMode, pruning string) proc.LaunchSpec {
	args := append([]string{}, s.cfg.Node.BaseArgs...)
	args = append(args,
		"--sync", string(mode.Sync()),
		"--pruning", pruning,
		"--identity", s.cfg.Node.ProcessName,
	)
	return proc.LaunchSpec{
		Dir:      s.cfg.Paths.InstallDir,
		CPUCores: s.cfg.Node.CPUCores,
		Binary:   s.cfg.Node.Binary,
		Args:     args,
		LogPath:  s.cfg.Paths.LogPath(),
	}
}

// Start launches the node in the requested mode. Calling it while the node
// already runs is a no-op; a stale PID file is removed and the start
// proceeds. The PID and mode files are written only after the process
// survives the grace period.
func (s *Supervisor) Start(req StartRequest) error {
	snap := s.load("start")

	if snap.HavePID {
		if s.proc.Alive(snap.PID) {
			fmt.Fprintf(s.out, "Node is already running (pid %d)\n", snap.PID)
			return nil
		}
		s.healStale("start", snap.PID)
		snap.HavePID = false
	}

	mode := req.Mode
	if mode == "" {
		var err error
		mode, err = s.prompt.Mode()
		if err != nil {
			return err
		}
	}
	if !mode.Valid() {
		return errors.New(errors.ErrCodeBadInput, "Start", fmt.Sprintf("unrecognized run mode %q", mode), nil)
	}

	pruning := consts.PruningArchive
	if mode == consts.ModeArchive {
		warnColor.Fprintln(s.out, "Archive mode retains all history and requires a fresh database")
	} else {
		retention := req.Retention
		if retention <= 0 {
			var err error
			retention, err = s.prompt.Retention(s.cfg.Node.DefaultRetention)
			if err != nil {
				return err
			}
		}
		pruning = strconv.Itoa(retention)
	}

	// Advisory only: the start proceeds either way.
	modeSwitched := snap.Mode == consts.ModeArchive && mode != consts.ModeArchive
	if modeSwitched {
		warnColor.Fprintf(s.out, "Previous mode was archive; switching to %s usually requires purging the database\n", mode)
	}

	if _, err := os.Stat(s.cfg.Paths.InstallDir); err != nil {
		return errors.New(errors.ErrCodeDirUnreachable, "Start",
			fmt.Sprintf("cannot enter install directory %s", s.cfg.Paths.InstallDir), err)
	}

	spec := s.launchSpec(mode, pruning)

	var pid int
	m := fsm.New(stAbsent)
	m.Handle(stAbsent, stStarting, evLaunch, func(fsm.Event) error {
		p, err := s.proc.Launch(spec)
		if err != nil {
			return err
		}
		pid = p
		return nil
	})
	m.Handle(stStarting, stRunning, evStable, func(fsm.Event) error {
		if err := s.store.SavePID(pid); err != nil {
			return err
		}
		return s.store.SaveMode(mode)
	})
	m.Handle(stStarting, stAbsent, evFailed, func(fsm.Event) error {
		return s.store.ClearPID()
	})

	if err := m.Fire(evLaunch); err != nil {
		return errors.New(errors.ErrCodeLaunchFailed, "Start", "node process failed to launch", err)
	}

	time.Sleep(s.grace)

	if !s.proc.Alive(pid) {
		if err := m.Fire(evFailed); err != nil {
			logger.Log.Error("Failed to clean up after dead start", "err", err)
		}
		msg := fmt.Sprintf("node process exited during the grace period; check %s", s.cfg.Paths.LogPath())
		if modeSwitched {
			msg += " (a switch away from archive mode usually needs 'nodectl purge' first)"
		}
		return errors.New(errors.ErrCodeLaunchFailed, "Start", msg, nil)
	}

	if err := m.Fire(evStable); err != nil {
		return err
	}
	okColor.Fprintf(s.out, "Node started in %s mode (pid %d)\n", mode, pid)
	logger.Log.Info("Node confirmed alive", "pid", pid, "mode", string(mode))
	return nil
}

// Stop ends the tracked node process: SIGTERM first, a bounded polling wait
// for exit, SIGKILL only after the timeout. A missing PID file is success;
// a stale one is removed and also success.
func (s *Supervisor) Stop() error {
	snap := s.load("stop")

	if !snap.HavePID {
		fmt.Fprintln(s.out, "Node is not running")
		return nil
	}
	if !s.proc.Alive(snap.PID) {
		s.healStale("stop", snap.PID)
		fmt.Fprintln(s.out, "Node is not running (stale pid file removed)")
		return nil
	}

	m := fsm.New(stRunning)
	m.Handle(stRunning, stStopping, evStop, func(fsm.Event) error {
		return s.proc.Terminate(snap.PID)
	})
	m.Handle(stStopping, stAbsent, evExited, func(fsm.Event) error {
		return s.store.ClearPID()
	})

	if err := m.Fire(evStop); err != nil {
		return errors.New(errors.ErrCodeUnknown, "Stop", "failed to signal node process", err)
	}

	exited := false
	for i := 0; i < s.attempts; i++ {
		time.Sleep(s.interval)
		if !s.proc.Alive(snap.PID) {
			exited = true
			break
		}
	}
	if !exited {
		warnColor.Fprintf(s.out, "Node did not exit within %v, killing\n", time.Duration(s.attempts)*s.interval)
		if err := s.proc.Kill(snap.PID); err != nil && s.proc.Alive(snap.PID) {
			return errors.New(errors.ErrCodeUnknown, "Stop", "failed to kill node process", err)
		}
	}

	if err := m.Fire(evExited); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Node stopped (pid %d)\n", snap.PID)
	return nil
}

// Status reports liveness, PID, recorded mode, and the recent log tail.
// Finding a stale PID file removes it as a side effect.
func (s *Supervisor) Status() error {
	snap := s.load("status")

	if snap.HavePID && s.proc.Alive(snap.PID) {
		okColor.Fprintf(s.out, "Node is running (pid %d, mode %s)\n", snap.PID, snap.Mode)
		lines, err := logfile.Tail(s.cfg.Paths.LogPath(), consts.StatusTailLines)
		if err != nil {
			warnColor.Fprintln(s.out, "No log output available")
			return nil
		}
		if len(lines) > 0 {
			fmt.Fprintln(s.out, "Recent log output:")
			for _, line := range lines {
				fmt.Fprintf(s.out, "  %s\n", line)
			}
		}
		return nil
	}

	if snap.HavePID {
		s.healStale("status", snap.PID)
		downColor.Fprintf(s.out, "Node is not running (stale pid file removed, last mode %s)\n", snap.Mode)
		return nil
	}

	downColor.Fprintf(s.out, "Node is not running (last mode %s)\n", snap.Mode)
	return nil
}

// Restart is a sequential stop then start; the start only proceeds once the
// stop has released the PID file.
func (s *Supervisor) Restart(req StartRequest) error {
	if err := s.Stop(); err != nil {
		return err
	}
	return s.Start(req)
}

// Purge deletes the chain database and the mode file. It refuses while a
// PID file exists, live process or not; stopping the node is the
// operator's job.
func (s *Supervisor) Purge(assumeYes bool) error {
	snap, _ := s.store.Load()
	if snap.HavePID {
		return errors.New(errors.ErrCodeNodeTracked, "Purge", "refusing to purge while a pid file exists; stop the node first", nil)
	}

	if !assumeYes {
		ok, err := s.prompt.Confirm(fmt.Sprintf("Delete the chain database at %s", s.cfg.Paths.DataPath()))
		if err != nil {
			return err
		}
		if !ok {
			logger.Log.Info("Purge cancelled by operator")
			fmt.Fprintln(s.out, "Purge cancelled")
			return nil
		}
	}

	if err := os.RemoveAll(s.cfg.Paths.DataPath()); err != nil {
		return errors.New(errors.ErrCodeUnknown, "Purge", "failed to delete database directory", err)
	}
	if err := s.store.ClearMode(); err != nil {
		return err
	}
	okColor.Fprintln(s.out, "Database purged; run mode reset to unknown")
	return nil
}

// ViewLogs prints the last lines of the node log, prompting for a count
// when none was given. With follow it keeps streaming appended output
// until ctx is cancelled.
func (s *Supervisor) ViewLogs(ctx context.Context, lines int, follow bool) error {
	if lines <= 0 {
		var err error
		lines, err = s.prompt.Lines(consts.DefaultViewLines)
		if err != nil {
			return err
		}
	}

	tail, err := logfile.Tail(s.cfg.Paths.LogPath(), lines)
	if err != nil {
		return err
	}
	for _, line := range tail {
		fmt.Fprintln(s.out, line)
	}

	if follow {
		return logfile.Follow(ctx, s.cfg.Paths.LogPath(), s.out)
	}
	return nil
}

// PurgeLogs truncates the node log after confirmation. A missing log file
// is an error and is never created.
func (s *Supervisor) PurgeLogs(assumeYes bool) error {
	logPath := s.cfg.Paths.LogPath()
	if _, err := os.Stat(logPath); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeMissingArtifact, "PurgeLogs", "log file does not exist", err)
		}
		return err
	}

	if !assumeYes {
		ok, err := s.prompt.Confirm(fmt.Sprintf("Truncate the node log at %s", logPath))
		if err != nil {
			return err
		}
		if !ok {
			logger.Log.Info("Log purge cancelled by operator")
			fmt.Fprintln(s.out, "Log purge cancelled")
			return nil
		}
	}

	if err := logfile.Truncate(logPath); err != nil {
		return err
	}
	okColor.Fprintln(s.out, "Node log truncated")
	return nil
}

// Watch polls the tracked PID until ctx is cancelled, logging up and down
// transitions, self-healing stale PID files, and publishing liveness
// metrics for the /metrics endpoint.
func (s *Supervisor) Watch(ctx context.Context) error {
	ticker := time.NewTicker(s.watchPeriod)
	defer ticker.Stop()

	up := false
	logger.Log.Info("Watching node liveness", "period", s.watchPeriod.String())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			monitor.ChecksTotal.Inc()
			snap := s.load("watch")
			alive := snap.HavePID && s.proc.Alive(snap.PID)

			if alive != up {
				if alive {
					logger.Log.Info("Node came up", "pid", snap.PID, "mode", string(snap.Mode))
				} else {
					logger.Log.Warn("Node went down")
				}
				up = alive
			}
			if snap.HavePID && !alive {
				s.healStale("watch", snap.PID)
			}

			if alive {
				monitor.NodeUp.Set(1)
			} else {
				monitor.NodeUp.Set(0)
			}
		}
	}
}
