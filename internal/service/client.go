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

	"github.com/godbus/dbus/v5"
)

// Client calls a running daemon over the session bus. It is the programmatic
// face of the control binary.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Dial connects to the session bus and addresses the daemon. It does not
// verify that the daemon is running; the first call does.
func Dial() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &Client{conn: conn, obj: conn.Object(BusName, ObjectPath)}, nil
}

// Close drops the bus connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ShowMenu asks the daemon to open the named configured menu and returns the
// session id, or a negative Code.
func (c *Client) ShowMenu(menu string) (int32, error) {
	var id int32
	if err := c.obj.Call(Interface+".ShowMenu", 0, menu).Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// PreviewMenu is ShowMenu in preview mode.
func (c *Client) PreviewMenu(menu string) (int32, error) {
	var id int32
	if err := c.obj.Call(Interface+".PreviewMenu", 0, menu).Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// ShowCustomMenu asks the daemon to open the menu described by the given
// JSON document.
func (c *Client) ShowCustomMenu(description string) (int32, error) {
	var id int32
	if err := c.obj.Call(Interface+".ShowCustomMenu", 0, description).Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// PreviewCustomMenu is ShowCustomMenu in preview mode.
func (c *Client) PreviewCustomMenu(description string) (int32, error) {
	var id int32
	if err := c.obj.Call(Interface+".PreviewCustomMenu", 0, description).Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// SelectItem selects the item at path in the active session.
func (c *Client) SelectItem(path string) error {
	return c.obj.Call(Interface+".SelectItem", 0, path).Err
}

// CancelMenu cancels the active session.
func (c *Client) CancelMenu() error {
	return c.obj.Call(Interface+".CancelMenu", 0).Err
}

// GetMenu fetches the laid-out tree of the active session as JSON.
func (c *Client) GetMenu() (string, error) {
	var desc string
	if err := c.obj.Call(Interface+".GetMenu", 0).Store(&desc); err != nil {
		return "", err
	}
	return desc, nil
}

// ListMenus fetches the names of all configured menus.
func (c *Client) ListMenus() ([]string, error) {
	var menus []string
	if err := c.obj.Call(Interface+".ListMenus", 0).Store(&menus); err != nil {
		return nil, err
	}
	return menus, nil
}

// PressShortcut reports a shortcut press to the daemon. The result tells
// whether the shortcut is bound to a menu.
func (c *Client) PressShortcut(shortcut string) (bool, error) {
	var bound bool
	if err := c.obj.Call(Interface+".PressShortcut", 0, shortcut).Store(&bound); err != nil {
		return false, err
	}
	return bound, nil
}

// Version fetches the daemon's version string.
func (c *Client) Version() (string, error) {
	var v string
	if err := c.obj.Call(Interface+".Version", 0).Store(&v); err != nil {
		return "", err
	}
	return v, nil
}

// Watch subscribes to the daemon's outcome signals and invokes the handlers
// until ctx is done. Either handler may be nil.
func (c *Client) Watch(ctx context.Context, onSelect func(id int32, path string), onCancel func(id int32)) error {
	if err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(ObjectPath),
		dbus.WithMatchInterface(Interface),
	); err != nil {
		return fmt.Errorf("subscribe signals: %w", err)
	}
	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)
	defer c.conn.RemoveSignal(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-ch:
			if !ok {
				return nil
			}
			switch sig.Name {
			case Interface + ".OnSelect":
				if len(sig.Body) == 2 {
					id, _ := sig.Body[0].(int32)
					path, _ := sig.Body[1].(string)
					if onSelect != nil {
						onSelect(id, path)
					}
				}
			case Interface + ".OnCancel":
				if len(sig.Body) == 1 {
					id, _ := sig.Body[0].(int32)
					if onCancel != nil {
						onCancel(id)
					}
				}
			}
		}
	}
}
