// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/kernelbridge/bridge"
	"github.com/bureau-foundation/kernelbridge/lib/clock"
	"github.com/bureau-foundation/kernelbridge/lib/config"
	"github.com/bureau-foundation/kernelbridge/lib/kernel"
	"github.com/bureau-foundation/kernelbridge/lib/media"
	"github.com/bureau-foundation/kernelbridge/lib/process"
	"github.com/bureau-foundation/kernelbridge/lib/transcript"
	"github.com/bureau-foundation/kernelbridge/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

type options struct {
	configPath       string
	kernelName       string
	workingDirectory string
	mediaDirectory   string
	transcriptPath   string
	verbose          bool
	showVersion      bool
	help             bool
}

func run(args []string) error {
	if len(args) > 0 && args[0] == "dump-transcript" {
		return dumpTranscript(args[1:], os.Stdout)
	}

	var opts options
	flagSet := pflag.NewFlagSet("kernel-bridge", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to kernel-bridge.yaml (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&opts.kernelName, "kernel", "", "kernelspec started when start names none (overrides kernel.default_name)")
	flagSet.StringVar(&opts.workingDirectory, "cwd", "", "working directory for kernels when start gives none")
	flagSet.StringVar(&opts.mediaDirectory, "media-dir", "", "directory for image outputs (overrides media.directory)")
	flagSet.StringVar(&opts.transcriptPath, "transcript", "", "record the session to this file; .zst and .lz4 compress")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log per-message debug output")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&opts.help, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return process.Usage(err)
	}
	if opts.help {
		printHelp(flagSet)
		return nil
	}
	if opts.showVersion {
		version.Print("kernel-bridge")
		return nil
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return process.Usage(fmt.Errorf("unexpected argument: %s", extra[0]))
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)
	logger.Info("kernel-bridge starting", version.LogAttrs()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, opts.workingDirectory, logger)
}

// loadConfig reads --config, then $KERNELBRIDGE_CONFIG, then falls back
// to the defaults, and applies flag overrides on top.
func loadConfig(opts options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if opts.kernelName != "" {
		cfg.Kernel.DefaultName = opts.kernelName
	}
	if opts.mediaDirectory != "" {
		cfg.Media.Directory = opts.mediaDirectory
	}
	if opts.transcriptPath != "" {
		cfg.Transcript.Path = opts.transcriptPath
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes text to a terminal and JSON to anything else.
func newLogger(logging config.LoggingConfig) *slog.Logger {
	options := &slog.HandlerOptions{Level: logging.SlogLevel()}
	format := logging.Format
	if format == "auto" {
		format = "json"
		if term.IsTerminal(int(os.Stderr.Fd())) {
			format = "text"
		}
	}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, options))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, options))
}

func serve(ctx context.Context, cfg *config.Config, workingDirectory string, logger *slog.Logger) error {
	launcher := &kernel.Launcher{
		SearchPath:       cfg.Kernel.SearchPath,
		RuntimeDirectory: cfg.Kernel.RuntimeDirectory,
		IP:               cfg.Kernel.IP,
		ReadyTimeout:     cfg.Kernel.ReadyTimeout,
		ShutdownGrace:    cfg.Kernel.ShutdownGrace,
		Output:           os.Stderr,
		Logger:           logger.With("component", "kernel"),
		Clock:            clock.Real(),
	}

	b := &bridge.Bridge{
		Input:  openInput(logger),
		Output: os.Stdout,
		Launcher: bridge.LauncherFunc(func(ctx context.Context, name, cwd string) (bridge.Kernel, error) {
			if cwd == "" {
				cwd = workingDirectory
			}
			launched, err := launcher.Launch(ctx, name, cwd)
			if err != nil {
				return nil, err
			}
			return launched, nil
		}),
		DefaultKernel:   cfg.Kernel.DefaultName,
		PollInterval:    cfg.Bridge.PollInterval,
		ReplyGrace:      cfg.Bridge.ReplyGrace,
		MaxCommandBytes: cfg.Bridge.MaxCommandBytes,
		Images:          &media.Store{Directory: cfg.Media.Directory},
		Clock:           clock.Real(),
		Logger:          logger.With("component", "bridge"),
	}

	if cfg.Transcript.Path != "" {
		writer, err := transcript.Create(cfg.Transcript.Path, clock.Real())
		if err != nil {
			return err
		}
		b.Transcript = writer
		logger.Info("recording transcript",
			"path", cfg.Transcript.Path,
			"compression", transcript.CompressionForPath(cfg.Transcript.Path),
		)
	}

	return b.Run(ctx)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `kernel-bridge - drive a Jupyter kernel over line-delimited JSON

Reads one command per line on stdin and writes one event per line on
stdout. Logs go to stderr.

Usage:
  kernel-bridge [flags]
  kernel-bridge dump-transcript <path>

Examples:
  # Start with the default python3 kernel
  echo '{"type":"start"}' | kernel-bridge

  # Record the session, compressed
  kernel-bridge --kernel ir --transcript session.cbor.zst

  # Inspect a recorded session
  kernel-bridge dump-transcript session.cbor.zst

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
