/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gopie/internal/config"
	applog "gopie/internal/log"
	"gopie/internal/menu"
	"gopie/internal/session"
	"gopie/internal/stats"
	"gopie/internal/telemetry"
)

// Notifier receives the outcomes of ad-hoc and preview sessions so they can
// be reported back to the external caller, typically as bus signals.
type Notifier interface {
	Select(id int32, path string)
	Cancel(id int32)
}

// Dispatcher is the boundary between callers and the session machinery. It
// resolves named menus against the current configuration, parses ad-hoc
// descriptions, folds every failure into the wire taxonomy and routes
// session outcomes to signals and statistics. No error escapes a show call
// uncaught.
type Dispatcher struct {
	mu      sync.Mutex
	menus   []config.MenuConfig
	current string // name of the configured menu on screen, "" for ad-hoc
	notify  Notifier

	sess *session.Manager
	st   *stats.Store // nil when statistics are disabled
	log  *slog.Logger
}

// NewDispatcher returns a dispatcher without menus; call SetMenus with the
// loaded configuration. The stats store may be nil.
func NewDispatcher(st *stats.Store) *Dispatcher {
	d := &Dispatcher{
		st:  st,
		log: applog.WithComponent("service"),
	}
	d.sess = session.New(d.selected, d.canceled)
	return d
}

// SetNotifier installs the outcome notifier. Without one, ad-hoc outcomes
// are only logged.
func (d *Dispatcher) SetNotifier(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notify = n
}

// SetMenus swaps in the configured menus, typically after a config reload.
// The active session, if any, keeps its already built tree.
func (d *Dispatcher) SetMenus(menus []config.MenuConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.menus = make([]config.MenuConfig, len(menus))
	copy(d.menus, menus)
	d.log.Info("menus configured", slog.Int("count", len(menus)))
}

// MenuNames lists the names of all configured menus in configuration order.
func (d *Dispatcher) MenuNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.menus))
	for _, m := range d.menus {
		names = append(names, m.Name)
	}
	return names
}

// ShowMenu opens the configured menu with the given name and returns the
// session id, or a negative Code on failure.
func (d *Dispatcher) ShowMenu(name string) (code Code) {
	defer d.catchOpen(&code)
	return d.showNamed(name, false)
}

// PreviewMenu opens the configured menu in preview mode: fully interactive,
// but a selection is reported through the notifier instead of running the
// item's action, the menu does not become the current configured menu, and
// nothing is recorded in the statistics.
func (d *Dispatcher) PreviewMenu(name string) (code Code) {
	defer d.catchOpen(&code)
	return d.showNamed(name, true)
}

// ShowCustomMenu opens the menu described by the given JSON document and
// returns the session id, or a negative Code on failure. The selection is
// reported via the notifier instead of running an item action.
func (d *Dispatcher) ShowCustomMenu(desc string) (code Code) {
	defer d.catchOpen(&code)
	return d.showCustom(desc, false)
}

// PreviewCustomMenu is ShowCustomMenu in preview mode.
func (d *Dispatcher) PreviewCustomMenu(desc string) (code Code) {
	defer d.catchOpen(&code)
	return d.showCustom(desc, true)
}

// catchOpen is deferred around every show call: a panic anywhere below must
// not take the daemon down on behalf of one caller.
func (d *Dispatcher) catchOpen(code *Code) {
	if r := recover(); r != nil {
		d.log.Error("menu request panicked", slog.Any("panic", r))
		*code = CodeUnknownError
	}
}

func (d *Dispatcher) showNamed(name string, preview bool) Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	var mc config.MenuConfig
	found := false
	for _, m := range d.menus {
		if m.Name == name {
			mc = m
			found = true
			break
		}
	}
	if !found {
		d.log.Warn("no such menu", slog.String("menu", name))
		return CodeNoSuchMenu
	}

	tree, err := menu.BuildTree(mc.Root())
	if err != nil {
		d.log.Warn("menu configuration is unusable", slog.String("menu", name), slog.Any("err", err))
		return codeForError(err)
	}
	id, err := d.sess.Open(session.Request{Tree: tree, Preview: preview, Configured: true})
	if err != nil {
		d.log.Warn("open menu failed", slog.String("menu", name), slog.Any("err", err))
		return codeForError(err)
	}
	// A preview never becomes the current configured menu; its selection is
	// reported instead of activated.
	if !preview {
		d.current = name
	}
	telemetry.Event("menu_open", map[string]any{"configured": true, "preview": preview})
	return id
}

func (d *Dispatcher) showCustom(desc string, preview bool) Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	tree, err := menu.FromDescription([]byte(desc))
	if err != nil {
		d.log.Warn("menu description rejected", slog.Any("err", err))
		return codeForError(err)
	}
	id, err := d.sess.Open(session.Request{Tree: tree, Preview: preview, Configured: false})
	if err != nil {
		d.log.Warn("open custom menu failed", slog.Any("err", err))
		return codeForError(err)
	}
	d.current = ""
	telemetry.Event("menu_open", map[string]any{"configured": false, "preview": preview})
	return id
}

// SelectItem ends the active session by selecting the item at the given
// path, e.g. "/2/0". It fails when no menu is active or the path addresses
// nothing.
func (d *Dispatcher) SelectItem(ctx context.Context, path string) error {
	p, err := menu.ParsePath(path)
	if err != nil {
		return err
	}
	if p.IsRoot() {
		return fmt.Errorf("path %q does not address an item", path)
	}
	return d.sess.TryResolve(ctx, p)
}

// CancelMenu ends the active session without a selection.
func (d *Dispatcher) CancelMenu() error {
	return d.sess.TryCancel()
}

// ActiveMenu returns the laid-out tree of the active session as JSON, with
// resolved angles and assigned ids, for a presenter to draw.
func (d *Dispatcher) ActiveMenu() (string, error) {
	data, err := d.sess.Describe()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Active reports whether a session is currently on screen.
func (d *Dispatcher) Active() bool {
	return d.sess.Active()
}

func (d *Dispatcher) selected(out session.Outcome) {
	d.mu.Lock()
	menuName := d.current
	d.current = ""
	n := d.notify
	d.mu.Unlock()

	if (!out.Configured || out.Preview) && n != nil {
		n.Select(out.ID, out.Path)
	}
	if !out.Preview {
		d.record(stats.Selection{
			Menu:     menuName,
			Path:     out.Path,
			Depth:    out.Depth,
			Duration: out.Duration,
		})
	}
	telemetry.Event("menu_select", map[string]any{
		"configured":  out.Configured,
		"preview":     out.Preview,
		"depth":       out.Depth,
		"duration_ms": out.Duration.Milliseconds(),
	})
}

func (d *Dispatcher) canceled(out session.Outcome) {
	d.mu.Lock()
	menuName := d.current
	d.current = ""
	n := d.notify
	d.mu.Unlock()

	if (!out.Configured || out.Preview) && n != nil {
		n.Cancel(out.ID)
	}
	if !out.Preview {
		d.record(stats.Selection{
			Menu:     menuName,
			Canceled: true,
			Duration: out.Duration,
		})
	}
	telemetry.Event("menu_cancel", map[string]any{
		"configured":  out.Configured,
		"preview":     out.Preview,
		"duration_ms": out.Duration.Milliseconds(),
	})
}

func (d *Dispatcher) record(sel stats.Selection) {
	if d.st == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.st.Record(ctx, sel); err != nil {
		d.log.Warn("record selection failed", slog.Any("err", err))
	}
}
