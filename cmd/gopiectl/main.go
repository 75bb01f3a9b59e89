/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"gopie/internal/config"
	"gopie/internal/crash"
	applog "gopie/internal/log"
	"gopie/internal/service"
	"gopie/internal/stats"
	"gopie/internal/version"
)

func usage() {
	fmt.Println("GoPie — pie menu control")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gopiectl show <menu>             Open a configured menu")
	fmt.Println("  gopiectl preview <menu>          Open a configured menu in preview mode")
	fmt.Println("  gopiectl show-custom <json|->    Open a menu from a JSON description")
	fmt.Println("  gopiectl preview-custom <json|-> Preview a menu from a JSON description")
	fmt.Println("  gopiectl select <path>           Select an item of the active menu")
	fmt.Println("  gopiectl cancel                  Cancel the active menu")
	fmt.Println("  gopiectl get                     Print the active menu as JSON")
	fmt.Println("  gopiectl menus                   List configured menu names")
	fmt.Println("  gopiectl press <shortcut>        Simulate a shortcut press")
	fmt.Println("  gopiectl watch                   Print selection signals until interrupted")
	fmt.Println("  gopiectl validate                Check the configuration file")
	fmt.Println("  gopiectl stats [n]               Show selection statistics")
	fmt.Println("  gopiectl version|-v|--version    Show version")
}

func main() {
	applog.Init(applog.FromEnv())
	defer crash.Recover()

	args := os.Args
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[1] {
	case "version", "--version", "-v":
		err = cmdVersion()
	case "show":
		err = cmdShow(args[2:], false)
	case "preview":
		err = cmdShow(args[2:], true)
	case "show-custom":
		err = cmdShowCustom(args[2:], false)
	case "preview-custom":
		err = cmdShowCustom(args[2:], true)
	case "select":
		err = cmdSelect(args[2:])
	case "cancel":
		err = cmdCancel()
	case "get":
		err = cmdGet()
	case "menus":
		err = cmdMenus()
	case "press":
		err = cmdPress(args[2:])
	case "watch":
		err = cmdWatch()
	case "validate":
		err = cmdValidate()
	case "stats":
		err = cmdStats(args[2:])
	case "help", "--help", "-h":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func dial() (*service.Client, error) {
	c, err := service.Dial()
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w (is gopied running?)", err)
	}
	return c, nil
}

func cmdVersion() error {
	fmt.Println("gopiectl", version.String())
	c, err := dial()
	if err != nil {
		return nil // client version alone is fine when no daemon is up
	}
	defer c.Close()
	v, err := c.Version()
	if err != nil {
		return err
	}
	fmt.Println("gopied  ", v)
	return nil
}

func cmdShow(args []string, preview bool) error {
	if len(args) != 1 {
		usage()
		os.Exit(2)
	}
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()
	var id int32
	if preview {
		id, err = c.PreviewMenu(args[0])
	} else {
		id, err = c.ShowMenu(args[0])
	}
	if err != nil {
		return err
	}
	if id < 0 {
		return fmt.Errorf("%s", service.CodeText(id))
	}
	fmt.Println("Menu opened with session id", id)
	return nil
}

func cmdShowCustom(args []string, preview bool) error {
	if len(args) != 1 {
		usage()
		os.Exit(2)
	}
	desc := args[0]
	if desc == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read description from stdin: %w", err)
		}
		desc = string(b)
	}
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()
	var id int32
	if preview {
		id, err = c.PreviewCustomMenu(desc)
	} else {
		id, err = c.ShowCustomMenu(desc)
	}
	if err != nil {
		return err
	}
	if id < 0 {
		return fmt.Errorf("%s", service.CodeText(id))
	}
	fmt.Println("Menu opened with session id", id)
	return nil
}

func cmdSelect(args []string) error {
	if len(args) != 1 {
		usage()
		os.Exit(2)
	}
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()
	return c.SelectItem(args[0])
}

func cmdCancel() error {
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()
	return c.CancelMenu()
}

func cmdGet() error {
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()
	desc, err := c.GetMenu()
	if err != nil {
		return err
	}
	fmt.Println(desc)
	return nil
}

func cmdMenus() error {
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()
	names, err := c.ListMenus()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No menus configured.")
		return nil
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func cmdPress(args []string) error {
	if len(args) != 1 {
		usage()
		os.Exit(2)
	}
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()
	bound, err := c.PressShortcut(args[0])
	if err != nil {
		return err
	}
	if !bound {
		return fmt.Errorf("no menu is bound to %q", args[0])
	}
	return nil
}

func cmdWatch() error {
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Println("Watching for selections, press Ctrl-C to stop.")
	return c.Watch(ctx,
		func(id int32, path string) { fmt.Printf("select  session=%d path=%s\n", id, path) },
		func(id int32) { fmt.Printf("cancel  session=%d\n", id) })
}

func cmdValidate() error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	fmt.Println("Configuration:", path)
	if v := os.Getenv(config.EnvConfigPath); v != "" {
		fmt.Printf("  (%s=%s)\n", config.EnvConfigPath, v)
	}
	for _, key := range config.OverridableKeys() {
		if env, ok := config.EnvOverrideFor(key); ok {
			fmt.Printf("  %s overridden by %s=%s\n", key, env, os.Getenv(env))
		}
	}
	findings := config.Validate(cfg)
	if len(findings) == 0 {
		fmt.Printf("OK — %d menu(s), %d shortcut(s).\n", len(cfg.Menus), len(cfg.Shortcuts()))
		return nil
	}
	for _, f := range findings {
		fmt.Println("  -", f)
	}
	return fmt.Errorf("%d finding(s)", len(findings))
}

func cmdStats(args []string) error {
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			usage()
			os.Exit(2)
		}
		limit = n
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Defaults()
	}
	path := cfg.Stats.File
	if path == "" {
		if path, err = stats.DefaultPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No statistics recorded yet.")
		return nil
	}
	st, err := stats.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	totals, err := st.Totals(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Selections: %d  Cancels: %d  Avg duration: %.0f ms\n",
		totals.Selections, totals.Cancels, totals.AvgDurationMs)
	if len(totals.PerMenu) > 0 {
		fmt.Println()
		fmt.Println("Per menu:")
		for _, mc := range totals.PerMenu {
			name := mc.Menu
			if name == "" {
				name = "(ad-hoc)"
			}
			fmt.Printf("  %6d  %s\n", mc.Count, name)
		}
	}
	recent, err := st.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(recent) > 0 {
		fmt.Println()
		fmt.Println("Recent:")
		for _, sel := range recent {
			what := sel.Path
			if sel.Canceled {
				what = "(canceled)"
			}
			menu := sel.Menu
			if menu == "" {
				menu = "(ad-hoc)"
			}
			fmt.Printf("  %s  %-16s %s\n", sel.Time.Local().Format("2006-01-02 15:04:05"), menu, what)
		}
	}
	return nil
}
