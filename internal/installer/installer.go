// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package installer drives one run of the Installation Assistant: language
// selection, catalog download, app and configuration menus, setup and
// configuration, and workspace cleanup on every exit path.
//
// The run is strictly linear:
//
//	Init -> Localize -> LoadCatalog -> SelectApp -> SelectConfig -> Install -> Configure -> Finish
//
// Any failure unwinds to a single handler in Run that prints the localized
// message, waits for acknowledgment and removes the workspace.
package installer

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/nomfodm/ia/internal/catalog"
	"github.com/nomfodm/ia/internal/messages"
	"github.com/nomfodm/ia/internal/platform"
	"github.com/nomfodm/ia/internal/prompt"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// CatalogSource provides the remote documents of a run.
type CatalogSource interface {
	FetchValidCatalog(ctx context.Context, p platform.Platform) (*catalog.Catalog, error)
	FetchMessages(ctx context.Context, lang string) (messages.Table, error)
}

// Fetcher downloads a URL to a file.
type Fetcher interface {
	Download(ctx context.Context, url, dest string) error
}

// Workspace is the scratch directory for downloaded artifacts.
type Workspace interface {
	Ensure() error
	Teardown() error
	Path(name string) (string, error)
	Dir() string
}

// Console prints markup-styled messages.
type Console interface {
	Print(markup string)
	Println()
	Clear()
}

// Deps is the explicit dependency set of a run.
type Deps struct {
	Prompter  prompt.Prompter
	Console   Console
	Catalog   CatalogSource
	Fetcher   Fetcher
	Runner    CommandRunner
	Workspace Workspace

	// Logger receives state transitions. Nil discards them. Callers tag
	// lines with a run id through the logger prefix.
	Logger *log.Logger

	// Detect returns the current platform. Nil uses platform.Detect.
	Detect func() (platform.Platform, error)
}

// Options tune a run.
type Options struct {
	Version string

	// Language skips the language prompt when set.
	Language string

	// Languages offered by the language prompt.
	Languages []string

	// DevMode skips the language prompt and does not execute setup commands.
	DevMode bool

	// Interactive enables the "press enter" pauses.
	Interactive bool

	// IgnoreSetupExitStatus accepts any exit status from setup commands.
	IgnoreSetupExitStatus bool

	// Interpreters by script extension. Nil uses DefaultInterpreters.
	Interpreters map[string][]string
}

// DefaultLanguages are offered when Options.Languages is empty.
var DefaultLanguages = []string{"en", "ru"}

// =============================================================================
// STATES
// =============================================================================

// State is a step of the run.
type State int

const (
	StateInit State = iota
	StateLocalize
	StateLoadCatalog
	StateSelectApp
	StateSelectConfig
	StateInstall
	StateConfigure
	StateFinish
)

var stateNames = [...]string{"init", "localize", "load_catalog", "select_app", "select_config", "install", "configure", "finish"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// =============================================================================
// INSTALLER
// =============================================================================

// Installer runs the assistant once.
type Installer struct {
	deps  Deps
	opts  Options
	state State

	// msgs is the active table; English until localization succeeds.
	msgs messages.Table
}

// New creates an installer. Nil optional dependencies get defaults.
func New(deps Deps, opts Options) *Installer {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}
	if deps.Detect == nil {
		deps.Detect = platform.Detect
	}
	if len(opts.Languages) == 0 {
		opts.Languages = DefaultLanguages
	}
	return &Installer{deps: deps, opts: opts, msgs: messages.Default()}
}

// State returns the step the run reached.
func (in *Installer) State() State {
	return in.state
}

// Run executes the whole flow. The workspace is removed exactly once before
// Run returns, whatever the outcome. A non-nil result is always an *Error and
// has already been reported to the user.
func (in *Installer) Run(ctx context.Context) (err error) {
	var once sync.Once
	teardown := func() {
		once.Do(func() {
			if terr := in.deps.Workspace.Teardown(); terr != nil {
				in.logf("TEARDOWN_FAILED | dir=%s err=%v", in.deps.Workspace.Dir(), terr)
				return
			}
			in.logf("TEARDOWN | dir=%s", in.deps.Workspace.Dir())
		})
	}
	defer teardown()

	defer func() {
		if r := recover(); r != nil {
			err = newError(UnclassifiedFault, fmt.Errorf("panic: %v", r), r)
		}
		if err != nil {
			err = in.fail(ctx, err)
		}
	}()

	in.logf("RUN_START | version=%s dev=%t", in.opts.Version, in.opts.DevMode)
	if err := in.run(ctx); err != nil {
		return err
	}
	in.logf("RUN_DONE")
	return nil
}

func (in *Installer) run(ctx context.Context) error {
	in.enter(StateInit)
	p, err := in.initialize()
	if err != nil {
		return err
	}

	in.enter(StateLocalize)
	lang, err := in.localize(ctx)
	if err != nil {
		return err
	}

	in.enter(StateLoadCatalog)
	cat, err := in.deps.Catalog.FetchValidCatalog(ctx, p)
	if err != nil {
		return in.fatal(ctx, CatalogUnavailable, err)
	}
	rt := &RuntimeContext{
		Version:  in.opts.Version,
		Platform: p,
		Language: lang,
		Messages: in.msgs,
		Catalog:  cat,
	}
	in.deps.Console.Clear()
	in.print(messages.Welcome, rt.Version)

	in.enter(StateSelectApp)
	app, err := in.selectApp(ctx, rt)
	if err != nil {
		return err
	}

	in.enter(StateSelectConfig)
	cfg, configured, err := in.selectConfig(ctx, rt, app)
	if err != nil {
		return err
	}

	in.enter(StateInstall)
	if err := in.install(ctx, rt, app); err != nil {
		return err
	}

	if configured {
		in.enter(StateConfigure)
		if err := in.configure(ctx, rt, app, cfg); err != nil {
			return err
		}
	}

	in.enter(StateFinish)
	in.deps.Console.Println()
	in.print(messages.InstallationCompleted)
	in.print(messages.ThanksForUsingIA)
	in.pause(ctx)
	return nil
}

// =============================================================================
// STEPS
// =============================================================================

func (in *Installer) initialize() (platform.Platform, error) {
	if err := in.deps.Workspace.Ensure(); err != nil {
		return "", newError(UnclassifiedFault, err, err)
	}
	p, err := in.deps.Detect()
	if err != nil {
		return "", newError(UnsupportedPlatform, err)
	}
	in.logf("PLATFORM | name=%s workspace=%s", p, in.deps.Workspace.Dir())
	return p, nil
}

func (in *Installer) localize(ctx context.Context) (string, error) {
	lang := in.opts.Language
	if lang == "" && !in.opts.DevMode {
		choice, err := in.deps.Prompter.Ask(ctx, prompt.Question{
			Text:    messages.LanguagePrompt,
			Choices: in.opts.Languages,
			Invalid: in.msgs.Get(messages.InvalidChoice),
		})
		if err != nil {
			return "", err
		}
		lang = strings.ToLower(choice)
	}
	if lang == "" {
		lang = messages.DefaultLanguage
	}

	table, err := in.deps.Catalog.FetchMessages(ctx, lang)
	if err != nil {
		return "", in.fatal(ctx, MessagesUnavailable, err)
	}
	in.msgs = table
	in.logf("LANGUAGE | lang=%s keys=%d", lang, len(table))
	return lang, nil
}

func (in *Installer) selectApp(ctx context.Context, rt *RuntimeContext) (catalog.App, error) {
	answer, err := in.deps.Prompter.Select(ctx, prompt.Question{
		Text:    rt.Messages.Get(messages.ChooseAppYouWantToInstall),
		Invalid: rt.Messages.Get(messages.InvalidChoice),
	}, AppMenu(rt.Catalog))
	if err != nil {
		return catalog.App{}, err
	}
	choice, _ := strconv.Atoi(answer)
	app, ok := rt.Catalog.App(choice)
	if !ok {
		return catalog.App{}, fmt.Errorf("app choice %q out of range", answer)
	}
	in.logf("APP_SELECTED | choice=%d app=%q", choice, app.ShortAppName)
	return app, nil
}

func (in *Installer) selectConfig(ctx context.Context, rt *RuntimeContext, app catalog.App) (catalog.ConfigSpec, bool, error) {
	in.deps.Console.Clear()
	in.print(messages.ChooseConfigForApp)
	answer, err := in.deps.Prompter.Select(ctx, prompt.Question{
		Invalid: rt.Messages.Get(messages.InvalidChoice),
	}, ConfigMenu(app, rt.Messages))
	if err != nil {
		return catalog.ConfigSpec{}, false, err
	}
	choice, _ := strconv.Atoi(answer)

	in.deps.Console.Clear()
	if choice == 0 {
		in.logf("CONFIG_SELECTED | choice=0")
		in.print(messages.YouDontNeedAConfiguration, app.ShortAppName)
		return catalog.ConfigSpec{}, false, nil
	}
	cfg, ok := app.Configuration(choice)
	if !ok {
		return catalog.ConfigSpec{}, false, fmt.Errorf("configuration choice %q out of range", answer)
	}
	in.logf("CONFIG_SELECTED | choice=%d config=%q", choice, cfg.ShortConfigName)
	in.print(messages.YouChosenAConfiguration, cfg.ShortConfigName)
	return cfg, true, nil
}

func (in *Installer) install(ctx context.Context, rt *RuntimeContext, app catalog.App) error {
	spec, ok := app.SetupFor(rt.Platform)
	if !ok {
		return newError(InstallFailed, fmt.Errorf("no setup for %s", rt.Platform), app.ShortAppName)
	}

	if spec.NeedsDownload() {
		in.print(messages.DownloadingSetupFile)
		if err := in.fetch(ctx, spec.SetupURL, spec.SetupFilename); err != nil {
			return err
		}
	} else {
		in.print(messages.NoSetupFile)
	}

	in.print(messages.Installing)
	if in.opts.DevMode {
		in.logf("SETUP_SKIPPED | dev=true command=%q", spec.SetupCommand)
	} else {
		status, err := in.deps.Runner.Run(ctx, spec.SetupCommand, "")
		in.logf("SETUP_EXIT | status=%d err=%v", status, err)
		if err != nil {
			return in.fatal(ctx, InstallFailed, err, app.ShortAppName)
		}
		if status != 0 && !in.opts.IgnoreSetupExitStatus {
			return newError(InstallFailed, fmt.Errorf("setup command exited with status %d", status), app.ShortAppName)
		}
	}

	in.deps.Console.Clear()
	in.print(messages.InstalledSuccessfully, app.ShortAppName)
	return nil
}

func (in *Installer) configure(ctx context.Context, rt *RuntimeContext, app catalog.App, cfg catalog.ConfigSpec) error {
	in.deps.Console.Println()
	in.print(messages.NowIWillApplyConfiguration, cfg.ShortConfigName, app.ShortAppName)

	if err := in.fetch(ctx, cfg.ConfigureScriptURL, cfg.ConfigureScriptFilename); err != nil {
		return err
	}
	script, _ := in.deps.Workspace.Path(cfg.ConfigureScriptFilename)

	interps := in.opts.Interpreters
	if interps == nil {
		interps = DefaultInterpreters(rt.Platform)
	}
	argv := ScriptCommand(interps, script, rt.Platform)
	if err := prepareScript(argv, script); err != nil {
		return newError(ConfigurationFailed, err, cfg.ShortConfigName, app.ShortAppName)
	}

	status, err := in.deps.Runner.Run(ctx, argv, "")
	in.logf("CONFIGURE_EXIT | script=%s status=%d err=%v", script, status, err)
	if err != nil {
		return in.fatal(ctx, ConfigurationFailed, err, cfg.ShortConfigName, app.ShortAppName)
	}
	if status != 0 {
		return newError(ConfigurationFailed,
			fmt.Errorf("configuration script exited with status %d", status),
			cfg.ShortConfigName, app.ShortAppName)
	}

	in.print(messages.ConfiguringCompleted)
	return nil
}

// fetch downloads url into the workspace as name.
func (in *Installer) fetch(ctx context.Context, url, name string) error {
	dest, err := in.deps.Workspace.Path(name)
	if err != nil {
		return newError(UnclassifiedFault, err, err)
	}
	in.logf("DOWNLOAD | url=%s dest=%s", url, dest)
	if err := in.deps.Fetcher.Download(ctx, url, dest); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newError(UnclassifiedFault, fmt.Errorf("download %s: %w", url, err), err)
	}
	return nil
}

// =============================================================================
// FAILURE HANDLING
// =============================================================================

// fatal wraps err as kind unless the run was cancelled, which always counts
// as an interrupt.
func (in *Installer) fatal(ctx context.Context, kind Kind, err error, args ...any) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return newError(kind, err, args...)
}

// fail reports err to the user and returns it as an *Error.
func (in *Installer) fail(ctx context.Context, err error) *Error {
	e := classify(err)
	in.logf("FATAL | state=%s kind=%s err=%v", in.state, e.Kind, e.Err)

	switch e.Kind {
	case UnsupportedPlatform:
		in.print(messages.SystemNotSupported)
	case MessagesUnavailable:
		in.print(messages.ErrorReceivingLangConf)
	case CatalogUnavailable:
		in.print(messages.ErrorReceivingAppsConf)
	case InstallFailed:
		in.print(messages.ErrorOccurredWhileInstalling, e.args...)
		in.print(messages.ReportItToGithubIssues)
	case ConfigurationFailed:
		in.print(messages.ErrorOccurredWhileConfiguring, e.args...)
		in.print(messages.ReportItToGithubIssues)
	case UserInterrupted:
		in.print(messages.KeyboardInterrupt)
		return e
	default:
		in.print(messages.ExceptionCaught, e.args...)
		in.print(messages.ReportItToGithubIssues)
	}

	in.pause(ctx)
	return e
}

func (in *Installer) pause(ctx context.Context) {
	if !in.opts.Interactive || ctx.Err() != nil {
		return
	}
	in.deps.Console.Println()
	if err := in.deps.Prompter.Pause(ctx, in.msgs.Get(messages.PressEnterToContinue)); err != nil {
		in.logf("PAUSE_FAILED | err=%v", err)
	}
}

func (in *Installer) enter(s State) {
	in.state = s
	in.logf("STATE | state=%s", s)
}

func (in *Installer) print(key string, args ...any) {
	in.deps.Console.Print(in.msgs.Format(key, args...))
}

func (in *Installer) logf(format string, args ...any) {
	in.deps.Logger.Printf(format, args...)
}
