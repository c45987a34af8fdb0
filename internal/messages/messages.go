// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package messages holds the user-facing message table of the assistant.
//
// Templates use rich-style markup tags ("[red]", "[bold blue]") for styling and
// "%s" markers for positional substitution. Rendering the markup is left to the
// ui package; this package only resolves keys and substitutes arguments.
package messages

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is served from the built-in table without a network call.
const DefaultLanguage = "en"

// Message keys. The names match the keys of the remote language files.
const (
	SystemNotSupported            = "systemNotSupported"
	ErrorReceivingLangConf        = "errorReceivingLangConf"
	ErrorReceivingAppsConf        = "errorReceivingAppsConf"
	PressEnterToContinue          = "pressEnterToContinue"
	KeyboardInterrupt             = "keyboardInterrupt"
	ExceptionCaught               = "exceptionCaught"
	ReportItToGithubIssues        = "reportItToGithubIssues"
	Welcome                       = "welcome"
	ChooseAppYouWantToInstall     = "chooseAppYouWantToInstall"
	NoConfigurationNeeded         = "noConfigurationNeeded"
	ChooseConfigForApp            = "chooseConfigForApp"
	YouChosenAConfiguration       = "youChosenAConfiguration"
	YouDontNeedAConfiguration     = "youDontNeedAConfiguration"
	DownloadingSetupFile          = "downloadingSetupFile"
	NoSetupFile                   = "noSetupFile"
	Installing                    = "installing"
	InstalledSuccessfully         = "installedSuccessfully"
	ErrorOccurredWhileInstalling  = "errorOccurredWhileInstalling"
	NowIWillApplyConfiguration    = "nowIWillApplyConfiguration"
	ErrorOccurredWhileConfiguring = "errorOccurredWhiteConfiguring"
	ConfiguringCompleted          = "configuringCompleted"
	InstallationCompleted         = "installationCompleted"
	ThanksForUsingIA              = "thanksForUsingIA"
	InvalidChoice                 = "invalidChoice"
)

// LanguagePrompt is shown before any table is loaded, so it is bilingual.
const LanguagePrompt = "Choose your language/Выберите язык"

// Table maps message keys to templates.
type Table map[string]string

var defaults = Table{
	SystemNotSupported: "[red]Your OS is not supported.",
	ErrorReceivingLangConf: "[red]Unable to get language config from server, " +
		"check your internet connection, shutting down.",
	ErrorReceivingAppsConf: "[red]Unable to get app config from server, " +
		"check your internet connection, shutting down.",
	PressEnterToContinue:   "Press 'enter' key to continue...",
	KeyboardInterrupt:      "[green]\n\nProcess interrupted by user.",
	ExceptionCaught:        "[red]\n\nException caught: [blue]%s",
	ReportItToGithubIssues: "[red]Please report it to github issues, https://github.com/nomfodm/ia/issues",

	Welcome: "[green]Welcome to Installation Assistant, [red]v%s\n[white]This program will " +
		"install any application you want from the list with chosen configuration",
	ChooseAppYouWantToInstall: "Choose app you want to install",

	NoConfigurationNeeded: "No configuration needed",
	ChooseConfigForApp:    "Now, I suggest you choosing configuration you need.",

	YouChosenAConfiguration:   "[green]OK, you chose [blue]%s [green]configuration.",
	YouDontNeedAConfiguration: "[green]OK, no configuration, I just will install [blue]%s [green]for you.",

	DownloadingSetupFile:         "[green]\nDownloading setup file...",
	NoSetupFile:                  "[green]\nNo setup file needed for this application",
	Installing:                   "[green]\nInstalling...",
	InstalledSuccessfully:        "[blue]\n%s [green]installed successfully!",
	ErrorOccurredWhileInstalling: "[red]\nError occurred while installing [bold blue]%s[red].",

	NowIWillApplyConfiguration:    "[green]\nNow, I will apply [blue]%s [green]configuration for [bold blue]%s[green].",
	ErrorOccurredWhileConfiguring: "[red]\nError occurred while configuring [blue]%s [red]configuration for [bold blue]%s[red].",
	ConfiguringCompleted:          "[green]\nConfiguration completed.",

	InstallationCompleted: "[green]\nInstallation completed.",
	ThanksForUsingIA:      "[bold green]\nThanks for using Installation Assistant!",

	InvalidChoice: "[red]Please select one of the available options",
}

// Default returns a copy of the built-in English table.
func Default() Table {
	t := make(Table, len(defaults))
	for k, v := range defaults {
		t[k] = v
	}
	return t
}

// Keys returns every key of the built-in table.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	return keys
}

// WithFallback returns a table holding t's templates over the English defaults,
// so a partial translation still covers every key.
func (t Table) WithFallback() Table {
	merged := Default()
	for k, v := range t {
		merged[k] = v
	}
	return merged
}

// Get returns the template for key. Unknown keys fall back to the built-in
// table, then to the key itself.
func (t Table) Get(key string) string {
	if v, ok := t[key]; ok {
		return v
	}
	if v, ok := defaults[key]; ok {
		return v
	}
	return key
}

// Format resolves key and substitutes args.
func (t Table) Format(key string, args ...any) string {
	return Sprintf(t.Get(key), args...)
}

// Sprintf substitutes "%s" markers in template with args in order. Markers
// without a matching argument become empty and surplus arguments are dropped,
// so a translation that omits a marker never corrupts the output.
// "%%" yields a literal percent sign.
func Sprintf(template string, args ...any) string {
	var b strings.Builder
	b.Grow(len(template))
	next := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' || i+1 >= len(template) {
			b.WriteByte(c)
			continue
		}
		switch template[i+1] {
		case 's':
			if next < len(args) {
				fmt.Fprint(&b, args[next])
				next++
			}
			i++
		case '%':
			b.WriteByte('%')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NormalizeLanguage parses a BCP 47 tag and returns its base language code,
// e.g. "ru-RU" -> "ru".
func NormalizeLanguage(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultLanguage, nil
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", code, err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}
