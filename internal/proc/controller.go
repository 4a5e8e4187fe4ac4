package proc

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/halcyonchain/nodectl/pkg/logger"
)

// LaunchSpec describes one node invocation.
type LaunchSpec struct {
	Dir      string   // working directory
	CPUCores string   // taskset core range, empty disables pinning
	Binary   string
	Args     []string
	LogPath  string // stdout and stderr are appended here
}

// Controller abstracts process control so the supervisor can be driven
// against a fake in tests, without launching real binaries.
type Controller interface {
	// Launch starts the process detached from the supervisor and returns
	// its PID. The child must outlive the supervisor invocation.
	Launch(spec LaunchSpec) (int, error)
	// Alive reports whether pid names a live process.
	Alive(pid int) bool
	// Terminate sends the graceful termination signal.
	Terminate(pid int) error
	// Kill forcefully ends the process.
	Kill(pid int) error
}

// OSController drives real OS processes.
type OSController struct{}

// Launch starts the node in its own session with output appended to the log
// file. When a core range is configured the binary runs under taskset; the
// PID is unchanged since taskset execs the target in place.
func (OSController) Launch(spec LaunchSpec) (int, error) {
	logf, err := os.OpenFile(spec.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, err
	}
	defer logf.Close()

	name := spec.Binary
	args := spec.Args
	if spec.CPUCores != "" {
		name = "taskset"
		args = append([]string{"-c", spec.CPUCores, spec.Binary}, spec.Args...)
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = spec.Dir
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	logger.Log.Info("Launching node process", "cmd", name, "args", args)
	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid
	// Reap the child if it exits while this invocation is still alive, so
	// a failed start never leaves a zombie behind the grace-period check.
	go cmd.Wait()

	return pid, nil
}

func (OSController) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}

func (OSController) Terminate(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	logger.Log.Info("Sending SIGTERM", "pid", pid)
	return p.Terminate()
}

func (OSController) Kill(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	logger.Log.Warn("Sending SIGKILL", "pid", pid)
	return p.Kill()
}
