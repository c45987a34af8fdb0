// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package installer

import (
	"strconv"

	"github.com/nomfodm/ia/internal/catalog"
	"github.com/nomfodm/ia/internal/messages"
	"github.com/nomfodm/ia/internal/platform"
	"github.com/nomfodm/ia/internal/prompt"
)

// RuntimeContext is everything a run learned before the first menu. It is
// assembled once after the catalog loads and never modified.
type RuntimeContext struct {
	Version  string
	Platform platform.Platform
	Language string
	Messages messages.Table
	Catalog  *catalog.Catalog
}

// AppMenu lists every app by full name, numbered from 1.
func AppMenu(c *catalog.Catalog) prompt.Menu {
	var menu prompt.Menu
	if c == nil {
		return menu
	}
	for i, app := range c.Apps {
		menu.Items = append(menu.Items, prompt.Item{Key: strconv.Itoa(i + 1), Label: app.FullAppName})
	}
	return menu
}

// ConfigMenu lists the app's configurations numbered from 1, preceded by
// entry 0 for "no configuration".
func ConfigMenu(app catalog.App, msgs messages.Table) prompt.Menu {
	menu := prompt.Menu{Items: []prompt.Item{{Key: "0", Label: msgs.Get(messages.NoConfigurationNeeded)}}}
	for i, cfg := range app.Configurations {
		menu.Items = append(menu.Items, prompt.Item{Key: strconv.Itoa(i + 1), Label: cfg.FullConfigName})
	}
	return menu
}
