// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/nomfodm/ia/internal/applog"
	"github.com/nomfodm/ia/internal/catalog"
	"github.com/nomfodm/ia/internal/config"
	"github.com/nomfodm/ia/internal/download"
	"github.com/nomfodm/ia/internal/installer"
	"github.com/nomfodm/ia/internal/messages"
	"github.com/nomfodm/ia/internal/platform"
	"github.com/nomfodm/ia/internal/prompt"
	"github.com/nomfodm/ia/internal/ui"
	"github.com/nomfodm/ia/internal/workspace"
)

var version = "1.0"

// Exit codes for problems found before the run starts.
const (
	exitConfig = 1
	exitUsage  = 2
)

type cliOptions struct {
	configPath string
	lang       string
	dev        bool
	tui        bool
	initConfig bool
	version    bool
	help       bool
}

func newFlagSet(opts *cliOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet("ia", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.ia/config.toml or $IA_CONFIG)")
	fs.StringVarP(&opts.lang, "lang", "l", "", "message language, e.g. en or ru; skips the language prompt")
	fs.BoolVar(&opts.dev, "dev", false, "skip the language prompt and do not run setup commands")
	fs.BoolVar(&opts.tui, "tui", false, "choose from menus with the arrow keys")
	fs.BoolVar(&opts.initConfig, "init-config", false, "write a default config file and exit")
	fs.BoolVarP(&opts.version, "version", "v", false, "show version")
	fs.BoolVarP(&opts.help, "help", "h", false, "show this help")
	return fs
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts cliOptions
	fs := newFlagSet(&opts)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "ia: %v\n\n", err)
		printHelp(os.Stderr, fs)
		return exitUsage
	}

	switch {
	case opts.help:
		printHelp(os.Stdout, fs)
		return 0
	case opts.version:
		fmt.Printf("Installation Assistant v%s\n", version)
		return 0
	case opts.initConfig:
		return initConfig(opts.configPath)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ia: %v\n", err)
		return exitConfig
	}

	logger, closeLog := openLog(cfg)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inst, prompter := newInstaller(cfg, logger)
	defer prompter.Close()

	err = inst.Run(ctx)
	return installer.ExitCode(err, cfg.Install.StrictExitCodes)
}

func initConfig(path string) int {
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ia: %v\n", err)
			return exitConfig
		}
		path = p
	}
	if err := config.InitFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "ia: %v\n", err)
		return exitConfig
	}
	fmt.Printf("Wrote %s\n", path)
	return 0
}

// loadConfig reads the config file and applies command-line flags over it.
func loadConfig(opts cliOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFromPath(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.lang != "" {
		cfg.Install.Language = opts.lang
	}
	if cfg.Install.Language != "" {
		lang, err := messages.NormalizeLanguage(cfg.Install.Language)
		if err != nil {
			return nil, err
		}
		cfg.Install.Language = lang
	}
	if opts.dev {
		cfg.Install.DevMode = true
	}
	if opts.tui {
		cfg.UI.TUI = true
	}
	return cfg, nil
}

func openLog(cfg *config.Config) (*log.Logger, func() error) {
	if !cfg.Log.Enabled {
		return applog.Discard(), func() error { return nil }
	}
	path, err := cfg.LogPath()
	if err != nil {
		return applog.Discard(), func() error { return nil }
	}
	logger, closeLog, err := applog.Open(path, "ia")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ia: logging disabled: %v\n", err)
	}
	return logger, closeLog
}

// newInstaller wires the production dependencies. The caller closes the
// returned prompter to restore the terminal.
func newInstaller(cfg *config.Config, logger *log.Logger) (*installer.Installer, prompt.Prompter) {
	ui.EnableVirtualTerminal()

	stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
	stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))

	consoleOpts := []ui.ConsoleOption{ui.WithClearScreen(cfg.UI.ClearScreen && stdoutTTY)}
	if cfg.UI.NoColor {
		consoleOpts = append(consoleOpts, ui.WithoutColor())
	}
	console := ui.NewConsole(os.Stdout, consoleOpts...)

	var reader prompt.LineReader
	if stdinTTY {
		reader = prompt.NewTerminalReader()
	} else {
		reader = prompt.NewStreamReader(os.Stdin, os.Stdout)
	}
	line := prompt.NewLinePrompter(reader, os.Stdout, console.Render)
	if stdinTTY {
		line.SetPromptRender(ui.StripMarkup)
	}
	var prompter prompt.Prompter = line
	if cfg.UI.TUI && stdinTTY && stdoutTTY {
		prompter = prompt.NewMenuPrompter(line, os.Stdin, os.Stdout)
	}

	userAgent := "ia/" + version
	client := catalog.NewClient(&catalog.ClientConfig{
		CatalogURL:  cfg.Remote.CatalogURL,
		MessagesURL: cfg.Remote.MessagesURL,
		Timeout:     cfg.Remote.Timeout(),
		UserAgent:   userAgent,
	})

	bar := ui.NewProgressBar(console, 40)
	downloader := download.New(
		download.WithProgress(bar.Update),
		download.WithReportInterval(cfg.UI.ProgressInterval()),
		download.WithUserAgent(userAgent),
	)

	// Configuration scripts such as ia-cppvscode look for the workspace here.
	os.Setenv("IA_WORKSPACE", cfg.Install.Workspace)

	p, _ := platform.Detect()
	interps := installer.DefaultInterpreters(p)
	for ext, argv := range cfg.Install.Interpreters {
		interps[ext] = argv
	}

	inst := installer.New(installer.Deps{
		Prompter:  prompter,
		Console:   console,
		Catalog:   client,
		Fetcher:   downloader,
		Runner:    installer.NewExecRunner(),
		Workspace: workspace.New(cfg.Install.Workspace),
		Logger:    logger,
	}, installer.Options{
		Version:               version,
		Language:              cfg.Install.Language,
		Languages:             cfg.Install.Languages,
		DevMode:               cfg.Install.DevMode,
		Interactive:           stdinTTY,
		IgnoreSetupExitStatus: cfg.Install.IgnoreSetupExitStatus,
		Interpreters:          interps,
	})
	return inst, prompter
}
