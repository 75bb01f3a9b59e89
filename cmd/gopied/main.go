/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"gopie/internal/config"
	"gopie/internal/crash"
	applog "gopie/internal/log"
	"gopie/internal/service"
	"gopie/internal/shortcuts"
	"gopie/internal/stats"
	"gopie/internal/telemetry"
	"gopie/internal/version"
)

func usage() {
	fmt.Println("GoPie — pie menu daemon")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gopied                       Run the daemon on the session bus")
	fmt.Println("  gopied version|-v|--version  Show version")
	fmt.Println()
	fmt.Printf("Configuration is read from %s (override with %s).\n", configPathHint(), config.EnvConfigPath)
}

func configPathHint() string {
	p, err := config.ConfigPath()
	if err != nil {
		return "the user config directory"
	}
	return p
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	defer crash.Recover()

	args := os.Args
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("GoPie — pie menu daemon")
			fmt.Println(version.String())
			return
		default:
			usage()
			os.Exit(2)
		}
	}

	if err := run(); err != nil {
		applog.WithComponent("daemon").Error("daemon failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

// daemon ties the pieces together: configuration, dispatcher, shortcut
// binder and the bus service. Reloads swap the configuration in place.
type daemon struct {
	mu      sync.Mutex
	cfg     config.AppConfig
	cfgPath string

	disp   *service.Dispatcher
	binder *shortcuts.TrackingBinder
	log    *slog.Logger
}

func run() error {
	l := applog.WithComponent("daemon")

	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		starter := config.Defaults()
		starter.Menus = config.StarterMenus()
		if err := config.Save(starter, cfgPath); err != nil {
			l.Warn("write starter configuration failed", slog.Any("err", err))
		} else {
			l.Info("starter configuration written", slog.String("path", cfgPath))
		}
	}

	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		// A broken file must not keep the daemon down; ad-hoc menus still work.
		l.Error("configuration unusable, continuing with defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	// Reconfigure logging with file settings merged in.
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l = applog.WithComponent("daemon")
	l.Info("starting", slog.String("version", version.String()), slog.String("config", cfgPath))

	tcfg := telemetry.FromEnv()
	if cfg.General.TelemetryOptIn {
		tcfg.OptIn = true
	}
	telemetry.NewDefault(tcfg)

	var st *stats.Store
	if !cfg.Stats.Disabled {
		path := cfg.Stats.File
		if path == "" {
			if path, err = stats.DefaultPath(); err != nil {
				l.Warn("resolve stats path failed", slog.Any("err", err))
			}
		}
		if path != "" {
			if st, err = stats.Open(path); err != nil {
				l.Warn("statistics disabled", slog.Any("err", err))
				st = nil
			}
		}
	}
	if st != nil {
		defer func() {
			if err := st.Close(); err != nil {
				l.Warn("close stats store failed", slog.Any("err", err))
			}
		}()
	}

	d := &daemon{
		cfg:     cfg,
		cfgPath: cfgPath,
		disp:    service.NewDispatcher(st),
		log:     l,
	}
	d.binder = shortcuts.NewTrackingBinder(d.onPress)
	d.apply(cfg)

	svc := service.NewService(d.disp)
	svc.SetPressHandler(d.binder.Press)
	if err := svc.Start(); err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			l.Warn("close bus service failed", slog.Any("err", err))
		}
	}()

	watcher, err := config.Watch(cfgPath, d.reload)
	if err != nil {
		l.Warn("configuration watching disabled", slog.Any("err", err))
	} else {
		defer watcher.Close()
	}

	telemetry.Event("daemon_start", nil)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	l.Info("shutting down", slog.String("signal", s.String()))

	if d.disp.Active() {
		if err := d.disp.CancelMenu(); err != nil {
			l.Warn("cancel active menu failed", slog.Any("err", err))
		}
	}
	return nil
}

// reload re-reads the configuration file. A file that fails to load keeps
// the previous configuration in place.
func (d *daemon) reload() {
	cfg, err := config.LoadFrom(d.cfgPath)
	if err != nil {
		d.log.Error("configuration reload failed, keeping previous", slog.Any("err", err))
		return
	}
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()
	d.apply(cfg)
	d.log.Info("configuration reloaded", slog.Int("menus", len(cfg.Menus)))
}

// apply pushes a loaded configuration into the dispatcher and the shortcut
// binder.
func (d *daemon) apply(cfg config.AppConfig) {
	for _, finding := range config.Validate(cfg) {
		d.log.Warn("configuration finding", slog.String("detail", finding))
	}
	d.disp.SetMenus(cfg.Menus)
	for _, f := range shortcuts.Reconcile(d.binder, cfg.Shortcuts()) {
		d.log.Warn("shortcut reconciliation failure",
			slog.String("shortcut", f.Shortcut),
			slog.String("op", f.Op),
			slog.Any("err", f.Err))
	}
}

// onPress opens the menu bound to a pressed shortcut.
func (d *daemon) onPress(shortcut string) {
	d.mu.Lock()
	mc, ok := d.cfg.MenuByShortcut(shortcut)
	d.mu.Unlock()
	if !ok {
		return
	}
	if code := d.disp.ShowMenu(mc.Name); code < 0 {
		d.log.Warn("open menu for shortcut failed",
			slog.String("shortcut", shortcut),
			slog.String("menu", mc.Name),
			slog.String("reason", service.CodeText(code)))
	}
}
