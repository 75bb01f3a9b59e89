/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gopie/internal/menu"
)

func testRequest() Request {
	root := menu.NewNode("m", "")
	a := menu.NewNode("a", "")
	b := menu.NewNode("b", "")
	b.Children = []*menu.Node{menu.NewNode("b0", "")}
	root.Children = []*menu.Node{a, b}
	return Request{Tree: root}
}

func TestOpenAssignsLayoutAndIDs(t *testing.T) {
	m := New(nil, nil)
	req := testRequest()
	id, err := m.Open(req)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if id != 1 {
		t.Fatalf("first session id = %d, want 1", id)
	}
	if !m.Active() {
		t.Fatalf("manager not active after Open")
	}
	if req.Tree.Children[0].Angle < 0 {
		t.Fatalf("layout did not run: %v", req.Tree.Children[0].Angle)
	}
	if req.Tree.Children[1].Children[0].ID != "/1/0" {
		t.Fatalf("ids not assigned: %q", req.Tree.Children[1].Children[0].ID)
	}
}

func TestOpenRejectsEmptyTree(t *testing.T) {
	m := New(nil, nil)
	if _, err := m.Open(Request{Tree: menu.NewNode("m", "")}); !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
	if _, err := m.Open(Request{}); !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems for nil tree, got %v", err)
	}
}

func TestOpenWhileActiveLeavesSessionUntouched(t *testing.T) {
	m := New(nil, nil)
	if _, err := m.Open(testRequest()); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, err := m.Open(testRequest()); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive, got %v", err)
	}
	if !m.Active() {
		t.Fatalf("active session was torn down by the rejected open")
	}
	// The first session still resolves normally.
	if err := m.TryResolve(context.Background(), menu.Path{0}); err != nil {
		t.Fatalf("TryResolve error: %v", err)
	}
}

func TestSessionIDsIncreaseAndAreNeverReused(t *testing.T) {
	m := New(nil, nil)
	var last int32
	for i := 0; i < 3; i++ {
		id, err := m.Open(testRequest())
		if err != nil {
			t.Fatalf("Open %d error: %v", i, err)
		}
		if id <= last {
			t.Fatalf("session id %d not above previous %d", id, last)
		}
		last = id
		m.Cancel()
	}
}

func TestResolveRunsActionAndFiresHook(t *testing.T) {
	var got Outcome
	m := New(func(out Outcome) { got = out }, nil)

	ran := false
	req := testRequest()
	req.Configured = true
	req.Tree.Children[0].Action = func(context.Context) error { ran = true; return nil }
	id, err := m.Open(req)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	m.Resolve(context.Background(), menu.Path{0})
	if !ran {
		t.Fatalf("selected item's action did not run")
	}
	if m.Active() {
		t.Fatalf("manager still active after Resolve")
	}
	if got.ID != id || got.Path != "/0" || got.Depth != 1 || got.Canceled {
		t.Fatalf("unexpected outcome: %+v", got)
	}
}

func TestActionErrorDoesNotBlockOutcome(t *testing.T) {
	var got Outcome
	m := New(func(out Outcome) { got = out }, nil)

	req := testRequest()
	req.Configured = true
	req.Tree.Children[0].Action = func(context.Context) error { return errors.New("boom") }
	if _, err := m.Open(req); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	m.Resolve(context.Background(), menu.Path{0})
	if got.Path != "/0" {
		t.Fatalf("select hook not fired after failing action: %+v", got)
	}
}

func TestCancelFiresHook(t *testing.T) {
	var got Outcome
	m := New(nil, func(out Outcome) { got = out })
	id, err := m.Open(testRequest())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	m.Cancel()
	if got.ID != id || !got.Canceled || got.Path != "" {
		t.Fatalf("unexpected cancel outcome: %+v", got)
	}
}

func TestTryResolveErrorsForUntrustedInput(t *testing.T) {
	m := New(nil, nil)
	if err := m.TryResolve(context.Background(), menu.Path{0}); !errors.Is(err, ErrNotActive) {
		t.Fatalf("expected ErrNotActive, got %v", err)
	}
	if _, err := m.Open(testRequest()); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	err := m.TryResolve(context.Background(), menu.Path{7})
	if !errors.Is(err, ErrNoSuchItem) {
		t.Fatalf("expected ErrNoSuchItem, got %v", err)
	}
	if !m.Active() {
		t.Fatalf("failed resolve must keep the session active")
	}
	if err := m.TryCancel(); err != nil {
		t.Fatalf("TryCancel error: %v", err)
	}
	if err := m.TryCancel(); !errors.Is(err, ErrNotActive) {
		t.Fatalf("second TryCancel expected ErrNotActive, got %v", err)
	}
}

func TestResolvePanicsWhenIdle(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Resolve without active session expected to panic")
		}
	}()
	New(nil, nil).Resolve(context.Background(), menu.Path{0})
}

func TestCancelPanicsWhenIdle(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Cancel without active session expected to panic")
		}
	}()
	New(nil, nil).Cancel()
}

func TestDescribeSerializesActiveTree(t *testing.T) {
	m := New(nil, nil)
	if _, err := m.Describe(); !errors.Is(err, ErrNotActive) {
		t.Fatalf("expected ErrNotActive, got %v", err)
	}
	if _, err := m.Open(testRequest()); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	data, err := m.Describe()
	if err != nil {
		t.Fatalf("Describe error: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"name":"m"`) || !strings.Contains(s, `"id":"/1/0"`) {
		t.Fatalf("description misses laid-out tree: %s", s)
	}
}

func TestPreviewAndAdHocSelectionsSkipActions(t *testing.T) {
	var got Outcome
	m := New(func(out Outcome) { got = out }, nil)

	ran := false
	req := testRequest()
	req.Preview = true
	req.Configured = true
	req.Tree.Children[0].Action = func(context.Context) error { ran = true; return nil }
	if _, err := m.Open(req); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := m.TryResolve(context.Background(), menu.Path{0}); err != nil {
		t.Fatalf("TryResolve error: %v", err)
	}
	if ran {
		t.Fatalf("preview selection ran the item's action")
	}
	if !got.Preview || got.Path != "/0" {
		t.Fatalf("preview outcome not reported: %+v", got)
	}

	// Ad-hoc trees may declare command items too; their caller performs the
	// activation after OnSelect.
	req = testRequest()
	req.Tree.Children[0].Action = func(context.Context) error { ran = true; return nil }
	if _, err := m.Open(req); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := m.TryResolve(context.Background(), menu.Path{0}); err != nil {
		t.Fatalf("TryResolve error: %v", err)
	}
	if ran {
		t.Fatalf("ad-hoc selection ran the item's action")
	}
	if got.Configured || got.Path != "/0" {
		t.Fatalf("ad-hoc outcome not reported: %+v", got)
	}
}

func TestOutcomeMarksPreviewAndConfigured(t *testing.T) {
	var got Outcome
	m := New(func(out Outcome) { got = out }, nil)
	req := testRequest()
	req.Preview = true
	req.Configured = true
	if _, err := m.Open(req); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := m.TryResolve(context.Background(), menu.Path{1, 0}); err != nil {
		t.Fatalf("TryResolve error: %v", err)
	}
	if !got.Preview || !got.Configured || got.Depth != 2 {
		t.Fatalf("unexpected outcome: %+v", got)
	}
}
