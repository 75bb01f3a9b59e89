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

import "gopie/internal/menu"

// StarterMenus returns the example menu written on first run, so that a
// fresh installation has something to press.
func StarterMenus() []MenuConfig {
	return []MenuConfig{
		{
			Name:     "Example Menu",
			Shortcut: "<Primary>space",
			Icon:     "emblem-favorite",
			Children: []menu.ItemConfig{
				{Name: "Terminal", Icon: "utilities-terminal", Type: "command", Command: "x-terminal-emulator"},
				{Name: "Browser", Icon: "web-browser", Type: "uri", URI: "https://duckduckgo.com"},
				{Type: "bookmarks"},
				{Type: "recent"},
				{
					Name: "Sound",
					Icon: "audio-volume-high",
					Children: []menu.ItemConfig{
						{Name: "Mute", Icon: "audio-volume-muted", Type: "command", Command: "amixer -q sset Master toggle"},
						{Name: "Play / Pause", Icon: "media-playback-start", Type: "command", Command: "playerctl play-pause"},
						{Name: "Next Title", Icon: "media-skip-forward", Type: "command", Command: "playerctl next"},
						{Name: "Previous Title", Icon: "media-skip-backward", Type: "command", Command: "playerctl previous"},
					},
				},
			},
		},
	}
}
