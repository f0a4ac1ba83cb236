package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/reportgen/internal/config"
	"git.home.luguber.info/inful/reportgen/internal/daemon"
	"git.home.luguber.info/inful/reportgen/internal/generate"
	"git.home.luguber.info/inful/reportgen/internal/metrics"
	"git.home.luguber.info/inful/reportgen/internal/render"
	"git.home.luguber.info/inful/reportgen/internal/skins"
	"git.home.luguber.info/inful/reportgen/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"reportgen.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Generate struct {
		At int64 `help:"Reference unix timestamp; 0 means latest available data"`
	} `cmd:"" help:"Run a single report generation pass"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Daemon struct {
	} `cmd:"" help:"Run continuous report generation on a schedule"`

	Skin struct {
		Install struct {
			URL  string `arg:"" help:"Skin repository URL"`
			Name string `help:"Install under this name instead of the repository name"`
		} `cmd:"" help:"Install a skin from a git repository"`
	} `cmd:"" help:"Manage report skins"`

	Version struct {
	} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "generate":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runGenerate(cfg, CLI.Generate.At); err != nil {
			slog.Error("Generation failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "daemon":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runDaemon(cfg); err != nil {
			slog.Error("Daemon failed", "error", err)
			os.Exit(1)
		}
	case "skin install <url>":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runSkinInstall(cfg, CLI.Skin.Install.URL, CLI.Skin.Install.Name); err != nil {
			slog.Error("Skin install failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("reportgen %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
	}
}

func runGenerate(cfg *config.Config, at int64) error {
	runner := generate.NewRunner(cfg, render.NewTemplateRenderer(), metrics.Noop{})
	summary, err := runner.Run(context.Background(), at)
	if err != nil {
		return err
	}
	slog.Info("Generation completed",
		"generated", summary.Generated, "elapsed", summary.Elapsed)
	return nil
}

func runInit(configPath string, force bool) error {
	slog.Info("Initializing configuration", "path", configPath, "force", force)
	return config.Init(configPath, force)
}

func runDaemon(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.NewDaemon(cfg, CLI.Config)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}
	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	slog.Info("Daemon running, waiting for shutdown signal...")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping daemon...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	slog.Info("Daemon stopped")
	return nil
}

func runSkinInstall(cfg *config.Config, url, name string) error {
	skinDir := cfg.SkinDir
	if !filepath.IsAbs(skinDir) {
		skinDir = filepath.Join(cfg.Root, skinDir)
	}
	dest, err := skins.Install(context.Background(), url, name, skinDir)
	if err != nil {
		return err
	}
	slog.Info("Skin ready", "path", dest)
	return nil
}
