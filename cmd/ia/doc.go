// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Command ia is the Installation Assistant: it downloads a catalog of
applications, lets the user pick one and an optional configuration, runs the
installer and configuration script, and removes its scratch directory.

# Building

	go build -o ia ./cmd/ia

Or with version information:

	go build -ldflags "-X main.version=1.1" -o ia ./cmd/ia

# Command Line Options

	-c, --config PATH   Config file (default ~/.ia/config.toml or $IA_CONFIG)
	-l, --lang CODE     Language of the messages; skips the language prompt
	    --dev           Skip the language prompt and do not run setup commands
	    --tui           Choose from menus with the arrow keys
	    --init-config   Write a default config file and exit
	-v, --version       Show version
	-h, --help          Show help

# Exit Status

0 on every path unless install.strict_exit_codes is set, in which case
failures exit 1 and interrupts exit 130. Invalid flags or configuration exit 2
and 1 respectively.
*/
package main
