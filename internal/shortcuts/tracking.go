/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shortcuts

import (
	"fmt"
	"log/slog"
	"sync"

	applog "gopie/internal/log"
)

// TrackingBinder is an in-memory Binder. It keeps the bound set and routes
// presses to a handler; the actual key grab is done by whatever front end
// feeds Press. All methods are safe for concurrent use.
type TrackingBinder struct {
	mu      sync.Mutex
	bound   map[string]bool
	order   []string
	handler func(shortcut string)
	log     *slog.Logger
}

// NewTrackingBinder returns an empty binder routing presses to handler,
// which may be nil.
func NewTrackingBinder(handler func(string)) *TrackingBinder {
	return &TrackingBinder{
		bound:   make(map[string]bool),
		handler: handler,
		log:     applog.WithComponent("shortcuts"),
	}
}

// Bind grabs the shortcut. Binding an already bound shortcut is a no-op.
func (b *TrackingBinder) Bind(shortcut string) error {
	if shortcut == "" {
		return fmt.Errorf("empty shortcut")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bound[shortcut] {
		return nil
	}
	b.bound[shortcut] = true
	b.order = append(b.order, shortcut)
	b.log.Debug("shortcut bound", slog.String("shortcut", shortcut))
	return nil
}

// Unbind releases the shortcut; releasing an unbound one is an error.
func (b *TrackingBinder) Unbind(shortcut string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.bound[shortcut] {
		return fmt.Errorf("shortcut %q is not bound", shortcut)
	}
	delete(b.bound, shortcut)
	for i, s := range b.order {
		if s == shortcut {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	b.log.Debug("shortcut released", slog.String("shortcut", shortcut))
	return nil
}

// Bound returns the grabbed shortcuts in the order they were bound.
func (b *TrackingBinder) Bound() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Press reports a key press for the shortcut. It returns false when the
// shortcut is not bound; otherwise the handler runs on the calling
// goroutine.
func (b *TrackingBinder) Press(shortcut string) bool {
	b.mu.Lock()
	ok := b.bound[shortcut]
	handler := b.handler
	b.mu.Unlock()
	if !ok {
		return false
	}
	if handler != nil {
		handler(shortcut)
	}
	return true
}
