package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/halcyonchain/nodectl/pkg/consts"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Node.DefaultRetention != consts.DefaultRetention {
		t.Errorf("Expected retention %d, got %d", consts.DefaultRetention, cfg.Node.DefaultRetention)
	}
	if cfg.Paths.PIDPath() != "/opt/halcyon/node.pid" {
		t.Errorf("Unexpected pid path %s", cfg.Paths.PIDPath())
	}
	if cfg.Supervision.Grace() != consts.DefaultGracePeriod {
		t.Errorf("Expected grace %v, got %v", consts.DefaultGracePeriod, cfg.Supervision.Grace())
	}
	if cfg.Supervision.Attempts() != consts.DefaultStopAttempts {
		t.Errorf("Expected %d stop attempts, got %d", consts.DefaultStopAttempts, cfg.Supervision.Attempts())
	}
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should not fail: %v", err)
	}
	if cfg.Node.Binary != Default().Node.Binary {
		t.Errorf("Expected default binary, got %s", cfg.Node.Binary)
	}
}

func TestLoad_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodectl.yaml")
	body := `
node:
  binary: /usr/local/bin/halcyond
  cpu_cores: "4-7"
paths:
  install_dir: /srv/halcyon
  log_file: /var/log/halcyond.log
supervision:
  grace_period: 5s
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Node.Binary != "/usr/local/bin/halcyond" {
		t.Errorf("Unexpected binary %s", cfg.Node.Binary)
	}
	if cfg.Node.CPUCores != "4-7" {
		t.Errorf("Unexpected cpu cores %s", cfg.Node.CPUCores)
	}
	if cfg.Paths.PIDPath() != "/srv/halcyon/node.pid" {
		t.Errorf("Relative pid file should resolve against install dir, got %s", cfg.Paths.PIDPath())
	}
	if cfg.Paths.LogPath() != "/var/log/halcyond.log" {
		t.Errorf("Absolute log file must stand alone, got %s", cfg.Paths.LogPath())
	}
	if cfg.Supervision.Grace() != 5*time.Second {
		t.Errorf("Expected 5s grace, got %v", cfg.Supervision.Grace())
	}
	// Untouched sections keep defaults.
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("Expected default log level, got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("node: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for malformed yaml")
	}
}

func TestSupervision_MalformedDurationFallsBack(t *testing.T) {
	s := SupervisionConfig{GracePeriod: "soon", StopInterval: "-1s"}
	if s.Grace() != consts.DefaultGracePeriod {
		t.Errorf("Expected default grace, got %v", s.Grace())
	}
	if s.Interval() != consts.DefaultStopInterval {
		t.Errorf("Expected default interval, got %v", s.Interval())
	}
}
