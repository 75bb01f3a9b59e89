/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"gopie/internal/menu"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal, so older daemons tolerate newer files.

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type StatsConfig struct {
	// Disabled turns off the selection statistics store; recording is on by
	// default.
	Disabled bool `yaml:"disabled"`
	// File overrides the location of the statistics database.
	File string `yaml:"file"`
}

// MenuConfig describes one configured menu: a named item tree that can be
// shown by name over the bus or by pressing its shortcut.
type MenuConfig struct {
	Name     string            `yaml:"name"`
	Shortcut string            `yaml:"shortcut,omitempty"`
	Icon     string            `yaml:"icon,omitempty"`
	Centered bool              `yaml:"centered,omitempty"`
	Children []menu.ItemConfig `yaml:"children"`
}

// Root returns the menu's declarative root item for tree building.
func (m MenuConfig) Root() menu.ItemConfig {
	return menu.ItemConfig{
		Name:     m.Name,
		Icon:     m.Icon,
		Centered: m.Centered,
		Children: m.Children,
	}
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Logging       LoggingConfig `yaml:"logging"`
	Stats         StatsConfig   `yaml:"stats"`
	Menus         []MenuConfig  `yaml:"menus"`
}

// Defaults returns the application defaults. No menus are configured; the
// daemon writes a starter configuration on first run.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		Stats:         StatsConfig{Disabled: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "GOPIE_CONFIG"
	EnvTelemetryOptIn = "GOPIE_TELEMETRY_OPT_IN"
	EnvStatsDisabled  = "GOPIE_STATS_DISABLED"
	EnvStatsFile      = "GOPIE_STATS_FILE"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GOPIE_LOG_LEVEL"
	EnvLogFormat = "GOPIE_LOG_FORMAT"
	EnvLogSource = "GOPIE_LOG_SOURCE"
	EnvLogFile   = "GOPIE_LOG_FILE"
)

// ConfigPath returns the per-user config file path. GOPIE_CONFIG overrides
// the platform default.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoPie")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoPie")
	default: // linux and others
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(os.Getenv("HOME"), ".config")
		}
		base = filepath.Join(base, "gopie")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file from its default location, applies
// defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config file at path. A missing file yields the
// defaults; a present but unreadable or malformed file is an error so that
// the caller can keep its previous configuration.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	var fileCfg AppConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	mergeInto(&cfg, &fileCfg)
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML to path, creating directories as needed.
func Save(cfg AppConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	// stats
	dst.Stats.Disabled = src.Stats.Disabled
	if strings.TrimSpace(src.Stats.File) != "" {
		dst.Stats.File = strings.TrimSpace(src.Stats.File)
	}
	// menus replace as a whole; merging per menu would be surprising
	if len(src.Menus) > 0 {
		dst.Menus = src.Menus
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		lv := strings.ToLower(v)
		cfg.General.TelemetryOptIn = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvStatsDisabled)); v != "" {
		lv := strings.ToLower(v)
		cfg.Stats.Disabled = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvStatsFile)); v != "" {
		cfg.Stats.File = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// OverridableKeys lists the config keys EnvOverrideFor knows, in display
// order.
func OverridableKeys() []string {
	return []string{
		"general.telemetry_opt_in",
		"stats.disabled",
		"stats.file",
		"logging.level",
		"logging.format",
		"logging.source",
		"logging.file",
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	switch key {
	case "general.telemetry_opt_in":
		if os.Getenv(EnvTelemetryOptIn) != "" {
			return EnvTelemetryOptIn, true
		}
	case "stats.disabled":
		if os.Getenv(EnvStatsDisabled) != "" {
			return EnvStatsDisabled, true
		}
	case "stats.file":
		if os.Getenv(EnvStatsFile) != "" {
			return EnvStatsFile, true
		}
	case "logging.level":
		if os.Getenv(EnvLogLevel) != "" {
			return EnvLogLevel, true
		}
	case "logging.format":
		if os.Getenv(EnvLogFormat) != "" {
			return EnvLogFormat, true
		}
	case "logging.source":
		if os.Getenv(EnvLogSource) != "" {
			return EnvLogSource, true
		}
	case "logging.file":
		if os.Getenv(EnvLogFile) != "" {
			return EnvLogFile, true
		}
	}
	return "", false
}

// Shortcuts returns the distinct non-empty shortcuts of all configured
// menus, in configuration order.
func (c AppConfig) Shortcuts() []string {
	seen := make(map[string]bool, len(c.Menus))
	var out []string
	for _, m := range c.Menus {
		s := strings.TrimSpace(m.Shortcut)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// MenuByName returns the first configured menu with the given name.
func (c AppConfig) MenuByName(name string) (MenuConfig, bool) {
	for _, m := range c.Menus {
		if m.Name == name {
			return m, true
		}
	}
	return MenuConfig{}, false
}

// MenuByShortcut returns the first configured menu bound to the shortcut.
func (c AppConfig) MenuByShortcut(shortcut string) (MenuConfig, bool) {
	for _, m := range c.Menus {
		if m.Shortcut == shortcut && m.Shortcut != "" {
			return m, true
		}
	}
	return MenuConfig{}, false
}

// Validate returns human-readable findings about menus that cannot work as
// configured. Findings are warnings: the daemon still starts and serves the
// remaining menus.
func Validate(cfg AppConfig) []string {
	var findings []string
	names := make(map[string]bool, len(cfg.Menus))
	byShortcut := make(map[string]string, len(cfg.Menus))
	known := map[string]bool{"": true}
	for _, t := range menu.ItemTypes() {
		known[t] = true
	}
	for i, m := range cfg.Menus {
		if strings.TrimSpace(m.Name) == "" {
			findings = append(findings, fmt.Sprintf("menu #%d has no name and cannot be shown by name", i+1))
		} else if names[m.Name] {
			findings = append(findings, fmt.Sprintf("duplicate menu name %q; only the first is reachable", m.Name))
		}
		names[m.Name] = true
		if m.Shortcut != "" {
			if prev, ok := byShortcut[m.Shortcut]; ok {
				findings = append(findings, fmt.Sprintf("menus %q and %q share shortcut %q; only the first opens", prev, m.Name, m.Shortcut))
			} else {
				byShortcut[m.Shortcut] = m.Name
			}
		}
		if len(m.Children) == 0 {
			findings = append(findings, fmt.Sprintf("menu %q has no items and will not open", m.Name))
		}
		findings = append(findings, itemFindings(m.Name, m.Children, known)...)
	}
	return findings
}

// itemFindings walks an item tree and flags declarations the build step
// rejects when the menu is shown: types the item registry does not know and
// ids repeated within one sibling group.
func itemFindings(menuName string, items []menu.ItemConfig, known map[string]bool) []string {
	var findings []string
	ids := make(map[string]bool, len(items))
	for _, ic := range items {
		if !known[ic.Type] {
			findings = append(findings, fmt.Sprintf("menu %q: item %q has unknown type %q and will not open", menuName, ic.Name, ic.Type))
		}
		if ic.ID != "" {
			if ids[ic.ID] {
				findings = append(findings, fmt.Sprintf("menu %q: sibling items share id %q; the menu will not open", menuName, ic.ID))
			}
			ids[ic.ID] = true
		}
		findings = append(findings, itemFindings(menuName, ic.Children, known)...)
	}
	return findings
}
