/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "gopie/internal/log"
)

// watchDebounce coalesces the event bursts editors produce when saving.
const watchDebounce = 250 * time.Millisecond

// Watcher reports changes of one config file. It watches the containing
// directory, so atomic saves (write to temp file, rename over the original)
// and delete-then-recreate cycles are picked up as well.
type Watcher struct {
	fsw      *fsnotify.Watcher
	base     string
	onChange func()
	log      *slog.Logger
}

// Watch starts watching path and invokes onChange, debounced, after every
// modification. Close stops the watcher.
func Watch(path string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w := &Watcher{
		fsw:      fsw,
		base:     filepath.Base(path),
		onChange: onChange,
		log:      applog.WithComponent("config"),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher. Pending debounced notifications are dropped.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	var pending <-chan time.Time
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != w.base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pending = time.After(watchDebounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", slog.Any("err", err))
		case <-pending:
			pending = nil
			w.log.Info("configuration file changed", slog.String("file", w.base))
			w.onChange()
		}
	}
}
