/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shortcuts

import (
	"errors"
	"fmt"
	"testing"
)

func TestReconcileOnlyTouchesTheDifference(t *testing.T) {
	b := NewTrackingBinder(nil)
	if err := b.Bind("<Ctrl>a"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := b.Bind("<Ctrl>b"); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	failures := Reconcile(b, []string{"<Ctrl>b", "<Ctrl>c"})
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	got := b.Bound()
	if len(got) != 2 || got[0] != "<Ctrl>b" || got[1] != "<Ctrl>c" {
		t.Fatalf("bound after reconcile: %v", got)
	}
}

func TestReconcileIgnoresEmptyAndDuplicate(t *testing.T) {
	b := NewTrackingBinder(nil)
	failures := Reconcile(b, []string{"", "<Ctrl>x", "<Ctrl>x"})
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if got := b.Bound(); len(got) != 1 || got[0] != "<Ctrl>x" {
		t.Fatalf("bound = %v", got)
	}
}

// failingBinder refuses one specific shortcut in each direction.
type failingBinder struct {
	*TrackingBinder
	refuseBind   string
	refuseUnbind string
}

func (f *failingBinder) Bind(s string) error {
	if s == f.refuseBind {
		return fmt.Errorf("grab refused")
	}
	return f.TrackingBinder.Bind(s)
}

func (f *failingBinder) Unbind(s string) error {
	if s == f.refuseUnbind {
		return fmt.Errorf("release refused")
	}
	return f.TrackingBinder.Unbind(s)
}

func TestReconcileCollectsFailuresAndContinues(t *testing.T) {
	f := &failingBinder{TrackingBinder: NewTrackingBinder(nil), refuseBind: "<Ctrl>bad", refuseUnbind: "<Ctrl>stuck"}
	if err := f.TrackingBinder.Bind("<Ctrl>stuck"); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	failures := Reconcile(f, []string{"<Ctrl>bad", "<Ctrl>good"})
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %v", failures)
	}
	ops := map[string]string{}
	for _, fl := range failures {
		ops[fl.Shortcut] = fl.Op
		if fl.Err == nil || fl.Error() == "" {
			t.Fatalf("failure without error: %+v", fl)
		}
	}
	if ops["<Ctrl>stuck"] != "unbind" || ops["<Ctrl>bad"] != "bind" {
		t.Fatalf("unexpected failure ops: %v", ops)
	}
	// The healthy shortcut went through regardless.
	found := false
	for _, s := range f.TrackingBinder.Bound() {
		if s == "<Ctrl>good" {
			found = true
		}
	}
	if !found {
		t.Fatalf("healthy shortcut not bound: %v", f.TrackingBinder.Bound())
	}
}

func TestTrackingBinderBindUnbind(t *testing.T) {
	b := NewTrackingBinder(nil)
	if err := b.Bind(""); err == nil {
		t.Fatalf("empty shortcut expected error")
	}
	if err := b.Bind("<Super>p"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := b.Bind("<Super>p"); err != nil {
		t.Fatalf("rebinding must be a no-op, got %v", err)
	}
	if got := b.Bound(); len(got) != 1 {
		t.Fatalf("bound = %v", got)
	}
	if err := b.Unbind("<Super>p"); err != nil {
		t.Fatalf("Unbind: %v", err)
	}
	if err := b.Unbind("<Super>p"); err == nil {
		t.Fatalf("unbinding an unbound shortcut expected error")
	}
}

func TestTrackingBinderPress(t *testing.T) {
	var pressed string
	b := NewTrackingBinder(func(s string) { pressed = s })
	if b.Press("<Super>p") {
		t.Fatalf("press of unbound shortcut must return false")
	}
	if err := b.Bind("<Super>p"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !b.Press("<Super>p") {
		t.Fatalf("press of bound shortcut must return true")
	}
	if pressed != "<Super>p" {
		t.Fatalf("handler saw %q", pressed)
	}
}

func TestFailureError(t *testing.T) {
	f := Failure{Shortcut: "<Ctrl>x", Op: "bind", Err: errors.New("nope")}
	if got := f.Error(); got != `bind "<Ctrl>x": nope` {
		t.Fatalf("Error() = %q", got)
	}
}
