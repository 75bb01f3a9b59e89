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

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	applog "gopie/internal/log"
	"gopie/internal/version"
)

// Bus identity of the daemon.
const (
	BusName    = "org.gopie.Daemon"
	ObjectPath = dbus.ObjectPath("/org/gopie/Daemon")
	Interface  = "org.gopie.Daemon"
)

// Service owns the daemon's session bus connection. It exports the dispatch
// methods and emits the outcome signals of ad-hoc and preview sessions.
type Service struct {
	disp  *Dispatcher
	press func(shortcut string) bool
	conn  *dbus.Conn
	log   *slog.Logger
}

// NewService wraps the dispatcher; Start connects it to the bus.
func NewService(disp *Dispatcher) *Service {
	return &Service{
		disp: disp,
		log:  applog.WithComponent("dbus"),
	}
}

// SetPressHandler installs the handler behind the PressShortcut method,
// which lets compositor keybindings report shortcut presses to the daemon.
// Must be called before Start.
func (s *Service) SetPressHandler(fn func(shortcut string) bool) {
	s.press = fn
}

// Start connects to the session bus, exports the interface and claims the
// bus name. It fails when another daemon instance already owns the name.
func (s *Service) Start() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(&busAPI{disp: s.disp, press: s.press}, ObjectPath, Interface); err != nil {
		_ = conn.Close()
		return fmt.Errorf("export %s: %w", Interface, err)
	}
	if err := conn.Export(introspect.NewIntrospectable(introspection()), ObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		_ = conn.Close()
		return fmt.Errorf("export introspection: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		_ = conn.Close()
		return fmt.Errorf("bus name %s is already taken; is another daemon running?", BusName)
	}

	s.disp.SetNotifier(s)
	s.log.Info("listening on session bus", slog.String("name", BusName), slog.String("path", string(ObjectPath)))
	return nil
}

// Close releases the bus name and drops the connection.
func (s *Service) Close() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.ReleaseName(BusName); err != nil {
		s.log.Warn("release bus name failed", slog.Any("err", err))
	}
	return s.conn.Close()
}

// Select implements Notifier by emitting OnSelect.
func (s *Service) Select(id int32, path string) {
	if err := s.conn.Emit(ObjectPath, Interface+".OnSelect", id, path); err != nil {
		s.log.Warn("emit OnSelect failed", slog.Any("err", err))
	}
}

// Cancel implements Notifier by emitting OnCancel.
func (s *Service) Cancel(id int32) {
	if err := s.conn.Emit(ObjectPath, Interface+".OnCancel", id); err != nil {
		s.log.Warn("emit OnCancel failed", slog.Any("err", err))
	}
}

// busAPI is the object actually exported on the bus. It is separate from
// Service so that only the wire methods are callable remotely.
type busAPI struct {
	disp  *Dispatcher
	press func(shortcut string) bool
}

func (a *busAPI) ShowMenu(menu string) (int32, *dbus.Error) {
	return a.disp.ShowMenu(menu), nil
}

func (a *busAPI) PreviewMenu(menu string) (int32, *dbus.Error) {
	return a.disp.PreviewMenu(menu), nil
}

func (a *busAPI) ShowCustomMenu(description string) (int32, *dbus.Error) {
	return a.disp.ShowCustomMenu(description), nil
}

func (a *busAPI) PreviewCustomMenu(description string) (int32, *dbus.Error) {
	return a.disp.PreviewCustomMenu(description), nil
}

func (a *busAPI) SelectItem(path string) *dbus.Error {
	if err := a.disp.SelectItem(context.Background(), path); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (a *busAPI) CancelMenu() *dbus.Error {
	if err := a.disp.CancelMenu(); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (a *busAPI) GetMenu() (string, *dbus.Error) {
	desc, err := a.disp.ActiveMenu()
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return desc, nil
}

func (a *busAPI) ListMenus() ([]string, *dbus.Error) {
	return a.disp.MenuNames(), nil
}

func (a *busAPI) PressShortcut(shortcut string) (bool, *dbus.Error) {
	if a.press == nil {
		return false, nil
	}
	return a.press(shortcut), nil
}

func (a *busAPI) Version() (string, *dbus.Error) {
	return version.String(), nil
}

func introspection() *introspect.Node {
	return &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name: Interface,
				Methods: []introspect.Method{
					{Name: "ShowMenu", Args: []introspect.Arg{
						{Name: "menu", Type: "s", Direction: "in"},
						{Name: "id", Type: "i", Direction: "out"},
					}},
					{Name: "PreviewMenu", Args: []introspect.Arg{
						{Name: "menu", Type: "s", Direction: "in"},
						{Name: "id", Type: "i", Direction: "out"},
					}},
					{Name: "ShowCustomMenu", Args: []introspect.Arg{
						{Name: "description", Type: "s", Direction: "in"},
						{Name: "id", Type: "i", Direction: "out"},
					}},
					{Name: "PreviewCustomMenu", Args: []introspect.Arg{
						{Name: "description", Type: "s", Direction: "in"},
						{Name: "id", Type: "i", Direction: "out"},
					}},
					{Name: "SelectItem", Args: []introspect.Arg{
						{Name: "path", Type: "s", Direction: "in"},
					}},
					{Name: "CancelMenu"},
					{Name: "GetMenu", Args: []introspect.Arg{
						{Name: "description", Type: "s", Direction: "out"},
					}},
					{Name: "ListMenus", Args: []introspect.Arg{
						{Name: "menus", Type: "as", Direction: "out"},
					}},
					{Name: "PressShortcut", Args: []introspect.Arg{
						{Name: "shortcut", Type: "s", Direction: "in"},
						{Name: "bound", Type: "b", Direction: "out"},
					}},
					{Name: "Version", Args: []introspect.Arg{
						{Name: "version", Type: "s", Direction: "out"},
					}},
				},
				Signals: []introspect.Signal{
					{Name: "OnSelect", Args: []introspect.Arg{
						{Name: "id", Type: "i"},
						{Name: "path", Type: "s"},
					}},
					{Name: "OnCancel", Args: []introspect.Arg{
						{Name: "id", Type: "i"},
					}},
				},
			},
		},
	}
}
