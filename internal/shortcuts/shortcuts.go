/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shortcuts keeps the set of grabbed keyboard shortcuts in sync with
// the menu configuration. It only reasons about shortcut strings; how a grab
// is realized is behind the Binder interface.
package shortcuts

import "fmt"

// Binder is the desktop-level shortcut table. Bind and Unbind act on one
// accelerator string (e.g. "<Ctrl>space"); Bound returns the currently
// grabbed set in a stable order.
type Binder interface {
	Bind(shortcut string) error
	Unbind(shortcut string) error
	Bound() []string
}

// Failure records one shortcut the binder refused. A failed shortcut never
// stops reconciliation of the remaining ones.
type Failure struct {
	Shortcut string
	Op       string // "bind" or "unbind"
	Err      error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %q: %v", f.Op, f.Shortcut, f.Err)
}

// Reconcile brings the binder in line with the desired shortcut set in two
// passes: first every bound shortcut that is no longer desired is released,
// then every desired shortcut not yet bound is grabbed. Shortcuts present on
// both sides are left untouched, so their grabs never flap across a
// configuration reload. Empty strings and duplicates in desired are ignored.
func Reconcile(b Binder, desired []string) []Failure {
	want := make(map[string]bool, len(desired))
	order := make([]string, 0, len(desired))
	for _, s := range desired {
		if s == "" || want[s] {
			continue
		}
		want[s] = true
		order = append(order, s)
	}

	bound := make(map[string]bool)
	var failures []Failure
	for _, s := range b.Bound() {
		bound[s] = true
		if want[s] {
			continue
		}
		if err := b.Unbind(s); err != nil {
			failures = append(failures, Failure{Shortcut: s, Op: "unbind", Err: err})
		}
	}
	for _, s := range order {
		if bound[s] {
			continue
		}
		if err := b.Bind(s); err != nil {
			failures = append(failures, Failure{Shortcut: s, Op: "bind", Err: err})
		}
	}
	return failures
}
