package proc

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitGone(t *testing.T, c Controller, pid int) {
	t.Helper()
	for i := 0; i < 50; i++ {
		if !c.Alive(pid) {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("pid %d still alive", pid)
}

func TestOSController_LaunchAndTerminate(t *testing.T) {
	c := OSController{}
	logPath := filepath.Join(t.TempDir(), "node.log")

	pid, err := c.Launch(LaunchSpec{
		Binary:  "sleep",
		Args:    []string{"30"},
		LogPath: logPath,
	})
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if !c.Alive(pid) {
		t.Fatal("Process should be alive right after launch")
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("Log file should exist after launch: %v", err)
	}

	if err := c.Terminate(pid); err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}
	waitGone(t, c, pid)
}

func TestOSController_Kill(t *testing.T) {
	c := OSController{}
	pid, err := c.Launch(LaunchSpec{
		Binary:  "sleep",
		Args:    []string{"30"},
		LogPath: filepath.Join(t.TempDir(), "node.log"),
	})
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	if err := c.Kill(pid); err != nil {
		t.Fatalf("Kill failed: %v", err)
	}
	waitGone(t, c, pid)
}

func TestOSController_AliveBadPID(t *testing.T) {
	c := OSController{}
	if c.Alive(0) || c.Alive(-1) {
		t.Error("Non-positive pids are never alive")
	}
}

func TestOSController_LaunchBadBinary(t *testing.T) {
	c := OSController{}
	_, err := c.Launch(LaunchSpec{
		Binary:  "/nonexistent/halcyond",
		LogPath: filepath.Join(t.TempDir(), "node.log"),
	})
	if err == nil {
		t.Fatal("Expected error for missing binary")
	}
}
