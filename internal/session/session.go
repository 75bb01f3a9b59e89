/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session tracks the one menu a user can interact with at a time.
// A session is opened with a fully built item tree, lives until the user
// selects an item or cancels, and hands its outcome to the configured hooks.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gopie/internal/layout"
	applog "gopie/internal/log"
	"gopie/internal/menu"
)

// State of the manager: exactly one menu can be active at a time.
type State int

const (
	Idle State = iota
	Active
)

var (
	// ErrAlreadyActive is returned when a menu is opened while another one
	// is still on screen. The active session is left untouched.
	ErrAlreadyActive = errors.New("another menu is already active")

	// ErrNoItems is returned for trees without any top-level item.
	ErrNoItems = errors.New("menu has no items")

	// ErrNotActive is returned by Try* calls outside an active session.
	ErrNotActive = errors.New("no menu is active")

	// ErrNoSuchItem is returned by TryResolve for paths outside the tree.
	ErrNoSuchItem = errors.New("no item at path")
)

// Request describes the menu to open. Configured marks trees built from the
// menu configuration, whose items carry their actions; ad-hoc trees instead
// report selections back to their external caller. Preview opens the menu
// for inspection only: selections are reported, but no item action runs.
type Request struct {
	Tree       *menu.Node
	Preview    bool
	Configured bool
}

// Outcome describes how a session ended and is passed to the hooks.
type Outcome struct {
	ID         int32
	Path       string // assigned id path of the selected item, "" on cancel
	Depth      int
	Preview    bool
	Configured bool
	Canceled   bool
	Duration   time.Duration
}

// Manager is the session state machine. The zero value is not usable; create
// one with New. All methods are safe for concurrent use.
type Manager struct {
	mu         sync.Mutex
	state      State
	nextID     int32
	id         int32
	tree       *menu.Node
	preview    bool
	configured bool
	openedAt   time.Time

	onSelect func(Outcome)
	onCancel func(Outcome)
	log      *slog.Logger
}

// New returns an idle manager. Either hook may be nil.
func New(onSelect, onCancel func(Outcome)) *Manager {
	return &Manager{
		nextID:   1,
		onSelect: onSelect,
		onCancel: onCancel,
		log:      applog.WithComponent("session"),
	}
}

// Open lays out the request's tree, assigns item ids and activates the
// session. It returns the new session id: a positive integer that increases
// with every open and is never reused for the lifetime of the process.
// Opening while another session is active fails with ErrAlreadyActive and
// leaves that session untouched.
func (m *Manager) Open(req Request) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Active {
		return 0, ErrAlreadyActive
	}
	if req.Tree == nil || len(req.Tree.Children) == 0 {
		return 0, ErrNoItems
	}
	if err := layout.Assign(req.Tree.Children, layout.NoParent); err != nil {
		return 0, err
	}
	menu.AssignIDs(req.Tree.Children, "")

	m.id = m.nextID
	m.nextID++
	m.tree = req.Tree
	m.preview = req.Preview
	m.configured = req.Configured
	m.openedAt = time.Now()
	m.state = Active

	// The root is the menu center, not an item, so it does not count.
	m.log.Info("session opened",
		slog.Int("id", int(m.id)),
		slog.Int("items", req.Tree.Count()-1),
		slog.Bool("preview", req.Preview),
		slog.Bool("configured", req.Configured))
	return m.id, nil
}

// Active reports whether a menu is currently on screen.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == Active
}

// Describe serializes the active session's laid-out tree for a presenter.
func (m *Manager) Describe() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Active {
		return nil, ErrNotActive
	}
	return menu.ToDescription(m.tree)
}

// Resolve ends the active session with a selection: in a configured,
// non-preview session the addressed item's action runs; the session returns
// to idle and the select hook fires. Callers must hold an active session and
// pass a path inside its tree; anything else is a caller bug and panics.
// Untrusted input goes through TryResolve instead.
func (m *Manager) Resolve(ctx context.Context, p menu.Path) {
	action, out, err := m.takeSelection(p)
	if err != nil {
		panic("session: " + err.Error())
	}
	m.finishSelect(ctx, action, out)
}

// TryResolve is Resolve for untrusted callers: invalid state or path comes
// back as ErrNotActive or ErrNoSuchItem instead of panicking.
func (m *Manager) TryResolve(ctx context.Context, p menu.Path) error {
	action, out, err := m.takeSelection(p)
	if err != nil {
		return err
	}
	m.finishSelect(ctx, action, out)
	return nil
}

// Cancel ends the active session without a selection and fires the cancel
// hook. Like Resolve it panics without an active session.
func (m *Manager) Cancel() {
	out, err := m.takeCancel()
	if err != nil {
		panic("session: " + err.Error())
	}
	m.finishCancel(out)
}

// TryCancel is Cancel for untrusted callers.
func (m *Manager) TryCancel() error {
	out, err := m.takeCancel()
	if err != nil {
		return err
	}
	m.finishCancel(out)
	return nil
}

// takeSelection validates the path, captures the outcome and transitions to
// idle, all under the lock. The action runs after the lock is released.
func (m *Manager) takeSelection(p menu.Path) (menu.Action, Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Active {
		return nil, Outcome{}, ErrNotActive
	}
	node, ok := menu.Lookup(m.tree.Children, p)
	if !ok {
		return nil, Outcome{}, fmt.Errorf("%w: %s", ErrNoSuchItem, p)
	}
	out := Outcome{
		ID:         m.id,
		Path:       node.ID,
		Depth:      len(p),
		Preview:    m.preview,
		Configured: m.configured,
		Duration:   time.Since(m.openedAt),
	}
	// Only configured, non-preview sessions activate the item. Everything
	// else reports the selection to the hooks and leaves the action to the
	// caller.
	action := node.Action
	if !m.configured || m.preview {
		action = nil
	}
	m.resetLocked()
	return action, out, nil
}

func (m *Manager) takeCancel() (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Active {
		return Outcome{}, ErrNotActive
	}
	out := Outcome{
		ID:         m.id,
		Preview:    m.preview,
		Configured: m.configured,
		Canceled:   true,
		Duration:   time.Since(m.openedAt),
	}
	m.resetLocked()
	return out, nil
}

func (m *Manager) resetLocked() {
	m.state = Idle
	m.tree = nil
	m.preview = false
	m.configured = false
	m.openedAt = time.Time{}
}

func (m *Manager) finishSelect(ctx context.Context, action menu.Action, out Outcome) {
	if action != nil {
		if err := action(ctx); err != nil {
			m.log.Warn("menu action failed",
				slog.Int("id", int(out.ID)),
				slog.String("path", out.Path),
				slog.Any("err", err))
		}
	}
	m.log.Info("session resolved",
		slog.Int("id", int(out.ID)),
		slog.String("path", out.Path),
		slog.Duration("after", out.Duration))
	if m.onSelect != nil {
		m.onSelect(out)
	}
}

func (m *Manager) finishCancel(out Outcome) {
	m.log.Info("session canceled",
		slog.Int("id", int(out.ID)),
		slog.Duration("after", out.Duration))
	if m.onCancel != nil {
		m.onCancel(out)
	}
}
