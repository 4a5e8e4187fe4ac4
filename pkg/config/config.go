package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/halcyonchain/nodectl/pkg/consts"
	"github.com/halcyonchain/nodectl/pkg/errors"
)

// Config is the root configuration of the supervisor. All paths and tuning
// values are fixed at load time; nothing is re-derived while an action runs.
type Config struct {
	Node          NodeConfig          `yaml:"node"`
	Paths         PathsConfig         `yaml:"paths"`
	Supervision   SupervisionConfig   `yaml:"supervision"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type NodeConfig struct {
	Binary           string   `yaml:"binary"`            // node executable
	BaseArgs         []string `yaml:"base_args"`         // invariant flags, before mode-derived ones
	ProcessName      string   `yaml:"process_name"`      // --identity value
	CPUCores         string   `yaml:"cpu_cores"`         // taskset range, empty disables pinning
	DefaultRetention int      `yaml:"default_retention"` // pruning blocks when operator gives none
}

type PathsConfig struct {
	InstallDir string `yaml:"install_dir"`
	PIDFile    string `yaml:"pid_file"`
	ModeFile   string `yaml:"mode_file"`
	LogFile    string `yaml:"log_file"`
	DataDir    string `yaml:"data_dir"`
}

// SupervisionConfig carries the timing knobs as duration strings, parsed on
// access so a malformed value degrades to the default instead of failing an
// action midway.
type SupervisionConfig struct {
	GracePeriod  string `yaml:"grace_period"`  // wait before the post-start liveness check
	StopInterval string `yaml:"stop_interval"` // poll period while waiting for exit
	StopAttempts int    `yaml:"stop_attempts"` // polls before escalating to SIGKILL
	WatchPeriod  string `yaml:"watch_period"`  // liveness poll period in watch mode
}

type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"` // watch mode /metrics listener
}

// Default returns the built-in installation constants.
func Default() *Config {
	return &Config{
		Node: NodeConfig{
			Binary:           "/opt/halcyon/bin/halcyond",
			BaseArgs:         []string{"--chain", "mainnet", "--no-ipc"},
			ProcessName:      "halcyond",
			CPUCores:         "0-3",
			DefaultRetention: consts.DefaultRetention,
		},
		Paths: PathsConfig{
			InstallDir: "/opt/halcyon",
			PIDFile:    "node.pid",
			ModeFile:   "node.mode",
			LogFile:    "node.log",
			DataDir:    "chaindata",
		},
		Supervision: SupervisionConfig{
			GracePeriod:  consts.DefaultGracePeriod.String(),
			StopInterval: consts.DefaultStopInterval.String(),
			StopAttempts: consts.DefaultStopAttempts,
			WatchPeriod:  consts.DefaultWatchPeriod.String(),
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			MetricsAddr: ":9641",
		},
	}
}

// Load overlays the yaml file at path onto the defaults. A missing file is
// not an error; the defaults stand alone. A malformed file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.New(errors.ErrCodeBadInput, "LoadConfig", "cannot read config file", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.ErrCodeBadInput, "LoadConfig", "cannot parse config file", err)
	}
	return cfg, nil
}

// resolve joins p to the install dir unless it is already absolute.
func (p PathsConfig) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.InstallDir, path)
}

func (p PathsConfig) PIDPath() string  { return p.resolve(p.PIDFile) }
func (p PathsConfig) ModePath() string { return p.resolve(p.ModeFile) }
func (p PathsConfig) LogPath() string  { return p.resolve(p.LogFile) }
func (p PathsConfig) DataPath() string { return p.resolve(p.DataDir) }

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func (s SupervisionConfig) Grace() time.Duration {
	return parseDuration(s.GracePeriod, consts.DefaultGracePeriod)
}

func (s SupervisionConfig) Interval() time.Duration {
	return parseDuration(s.StopInterval, consts.DefaultStopInterval)
}

func (s SupervisionConfig) Attempts() int {
	if s.StopAttempts <= 0 {
		return consts.DefaultStopAttempts
	}
	return s.StopAttempts
}

func (s SupervisionConfig) Watch() time.Duration {
	return parseDuration(s.WatchPeriod, consts.DefaultWatchPeriod)
}
