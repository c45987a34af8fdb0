// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/pflag"
)

// helpMarkdown builds the --help page.
func helpMarkdown(fs *pflag.FlagSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Installation Assistant v%s\n\n", version)
	b.WriteString("Installs an application from the catalog and applies an optional configuration.\n\n")
	b.WriteString("## Usage\n\n```\nia [OPTIONS]\n```\n\n")
	b.WriteString("## Options\n\n```\n")
	b.WriteString(fs.FlagUsages())
	b.WriteString("```\n\n")
	b.WriteString("## Environment\n\n")
	b.WriteString("- `IA_CONFIG` config file location\n")
	b.WriteString("- `IA_LANGUAGE`, `IA_CATALOG_URL`, `IA_MESSAGES_URL`, `IA_WORKSPACE` override the config file\n")
	b.WriteString("- `IA_DEV`, `IA_STRICT_EXIT` accept `1` or `true`\n")
	b.WriteString("- `NO_COLOR` disables colors\n\n")
	b.WriteString("Report problems at https://github.com/nomfodm/ia/issues\n")
	return b.String()
}

// printHelp renders the help page for a terminal, falling back to the raw
// markdown when rendering fails.
func printHelp(w io.Writer, fs *pflag.FlagSet) {
	md := helpMarkdown(fs)
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Fprint(w, out)
			return
		}
	}
	fmt.Fprint(w, md)
}
