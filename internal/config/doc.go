// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the Installation Assistant configuration.
//
// Configuration is resolved in order of precedence:
//   - Command-line flags (applied by cmd/ia)
//   - Environment variables (IA_*)
//   - The TOML file at $IA_CONFIG or ~/.ia/config.toml
//   - Built-in defaults
//
// A missing file is not an error; the assistant runs on defaults. A file
// with unknown keys or invalid values is rejected with every problem listed.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := catalog.NewClient(&catalog.ClientConfig{
//	    CatalogURL: cfg.Remote.CatalogURL,
//	    Timeout:    cfg.Remote.Timeout(),
//	})
package config
