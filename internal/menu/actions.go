/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package menu

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// CommandAction returns an action that hands line to the shell and detaches.
// The spawned process is deliberately not bound to ctx; applications launched
// from a menu outlive the session that launched them.
func CommandAction(line string) Action {
	return func(_ context.Context) error {
		cmd := exec.Command("/bin/sh", "-c", line)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("run %q: %w", line, err)
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
}

// URIAction returns an action that opens raw with the desktop handler.
func URIAction(raw string) Action {
	return func(_ context.Context) error {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("open %q: %w", raw, err)
		}
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", raw)
		case "darwin":
			cmd = exec.Command("open", raw)
		default:
			cmd = exec.Command("xdg-open", raw)
		}
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("open %q: %w", raw, err)
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
}
