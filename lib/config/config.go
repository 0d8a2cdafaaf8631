// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "KERNELBRIDGE_CONFIG"

// Config is the master configuration for kernel-bridge.
type Config struct {
	// Kernel configures kernel discovery and process lifecycle.
	Kernel KernelConfig `yaml:"kernel"`

	// Bridge configures the scheduler loop.
	Bridge BridgeConfig `yaml:"bridge"`

	// Media configures where image outputs are written.
	Media MediaConfig `yaml:"media"`

	// Transcript configures the optional session transcript.
	Transcript TranscriptConfig `yaml:"transcript"`

	// Logging configures the stderr logger.
	Logging LoggingConfig `yaml:"logging"`
}

// KernelConfig configures kernel discovery and process lifecycle.
type KernelConfig struct {
	// DefaultName is the kernelspec used when start names none.
	// Default: python3
	DefaultName string `yaml:"default_name"`

	// SearchPath lists kernelspec directories, highest priority
	// first. Empty means the standard Jupyter locations.
	SearchPath []string `yaml:"search_path"`

	// RuntimeDirectory receives connection files.
	// Default: ${XDG_RUNTIME_DIR:-/tmp}/kernel-bridge
	RuntimeDirectory string `yaml:"runtime_directory"`

	// IP is the address kernels bind their sockets to.
	// Default: 127.0.0.1
	IP string `yaml:"ip"`

	// ReadyTimeout bounds how long start and restart wait for the
	// kernel to answer kernel_info_request.
	// Default: 30s
	ReadyTimeout time.Duration `yaml:"ready_timeout"`

	// ShutdownGrace is how long shutdown waits for the kernel to exit
	// on its own before killing it.
	// Default: 2s
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// BridgeConfig configures the scheduler loop.
type BridgeConfig struct {
	// PollInterval bounds how long one tick waits for input or kernel
	// traffic.
	// Default: 50ms
	PollInterval time.Duration `yaml:"poll_interval"`

	// ReplyGrace is how long completion waits for a shell reply after
	// the kernel reports idle.
	// Default: 2s
	ReplyGrace time.Duration `yaml:"reply_grace"`

	// MaxCommandBytes bounds one client command line.
	// Default: 16 MiB
	MaxCommandBytes int `yaml:"max_command_bytes"`
}

// MediaConfig configures image output files.
type MediaConfig struct {
	// Directory receives image files. Empty means the system
	// temporary directory.
	Directory string `yaml:"directory"`
}

// TranscriptConfig configures the session transcript.
type TranscriptConfig struct {
	// Path is the transcript file. Empty disables the transcript. A
	// ".zst" or ".lz4" extension selects compression.
	Path string `yaml:"path"`
}

// LoggingConfig configures the stderr logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is one of auto, text, json. Auto picks text when stderr
	// is a terminal and JSON otherwise.
	// Default: auto
	Format string `yaml:"format"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "text", "json"}
)

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{
		Kernel: KernelConfig{
			DefaultName:      "python3",
			RuntimeDirectory: "${XDG_RUNTIME_DIR:-/tmp}/kernel-bridge",
			IP:               "127.0.0.1",
			ReadyTimeout:     30 * time.Second,
			ShutdownGrace:    2 * time.Second,
		},
		Bridge: BridgeConfig{
			PollInterval:    50 * time.Millisecond,
			ReplyGrace:      2 * time.Second,
			MaxCommandBytes: 16 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
	cfg.expandVariables()
	return cfg
}

// Load loads configuration from the KERNELBRIDGE_CONFIG environment
// variable. It fails if the variable is not set; callers that can run
// without a file check the variable themselves and fall back to
// [Default].
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your kernel-bridge.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path over the
// defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":            os.Getenv("HOME"),
		"XDG_RUNTIME_DIR": os.Getenv("XDG_RUNTIME_DIR"),
	}

	c.Kernel.RuntimeDirectory = expandVars(c.Kernel.RuntimeDirectory, vars)
	for index, directory := range c.Kernel.SearchPath {
		c.Kernel.SearchPath[index] = expandVars(directory, vars)
	}
	c.Media.Directory = expandVars(c.Media.Directory, vars)
	c.Transcript.Path = expandVars(c.Transcript.Path, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. vars is
// consulted before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Kernel.DefaultName == "" {
		errs = append(errs, fmt.Errorf("kernel.default_name is required"))
	}
	if c.Kernel.RuntimeDirectory == "" {
		errs = append(errs, fmt.Errorf("kernel.runtime_directory is required"))
	} else if !filepath.IsAbs(c.Kernel.RuntimeDirectory) {
		errs = append(errs, fmt.Errorf("kernel.runtime_directory must be absolute, got %q", c.Kernel.RuntimeDirectory))
	}
	if c.Kernel.IP == "" {
		errs = append(errs, fmt.Errorf("kernel.ip is required"))
	}
	if c.Kernel.ReadyTimeout <= 0 {
		errs = append(errs, fmt.Errorf("kernel.ready_timeout must be positive"))
	}
	if c.Kernel.ShutdownGrace < 0 {
		errs = append(errs, fmt.Errorf("kernel.shutdown_grace must not be negative"))
	}

	if c.Bridge.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("bridge.poll_interval must be positive"))
	}
	if c.Bridge.ReplyGrace < 0 {
		errs = append(errs, fmt.Errorf("bridge.reply_grace must not be negative"))
	}
	if c.Bridge.MaxCommandBytes < 1024 {
		errs = append(errs, fmt.Errorf("bridge.max_command_bytes must be at least 1024, got %d", c.Bridge.MaxCommandBytes))
	}

	if !slices.Contains(logLevels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", logFormats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SlogLevel returns the configured level. Unknown values map to Info;
// [Config.Validate] rejects them before this is reached.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EnsurePaths creates the runtime and media directories if they don't
// exist.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Kernel.RuntimeDirectory,
		c.Media.Directory,
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o700); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
