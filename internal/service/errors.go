/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package service exposes the menu daemon over the session bus: it turns
// named or ad-hoc show requests into menu sessions and reports their
// outcomes back to callers.
package service

import (
	"errors"

	"gopie/internal/layout"
	"gopie/internal/menu"
	"gopie/internal/session"
)

// Code is the stable result contract of all show calls: a non-negative value
// is the id of the opened session, a negative value names the failure. The
// values are part of the bus API and must never be renumbered.
type Code = int32

const (
	// CodeUnknownError covers unexpected failures during open.
	CodeUnknownError Code = -1
	// CodeInvalidJSON marks an ad-hoc description that is not valid JSON.
	CodeInvalidJSON Code = -2
	// CodePropertyMissing marks well-formed JSON or configuration that does
	// not describe a usable menu.
	CodePropertyMissing Code = -3
	// CodeInvalidAngles marks fixed item angles no layout can satisfy.
	CodeInvalidAngles Code = -4
	// CodeNoSuchMenu marks a show-by-name request for an unknown menu.
	CodeNoSuchMenu Code = -5
	// CodeAlreadyActive marks an open attempt while a menu is on screen.
	CodeAlreadyActive Code = -6
)

// CodeText returns a short description of a result code, "ok" for session
// ids.
func CodeText(c Code) string {
	switch {
	case c >= 0:
		return "ok"
	case c == CodeUnknownError:
		return "unknown error"
	case c == CodeInvalidJSON:
		return "invalid JSON"
	case c == CodePropertyMissing:
		return "menu description is unusable"
	case c == CodeInvalidAngles:
		return "conflicting fixed angles"
	case c == CodeNoSuchMenu:
		return "no such menu"
	case c == CodeAlreadyActive:
		return "a menu is already active"
	default:
		return "unknown error"
	}
}

// codeForError folds an open failure into the wire taxonomy.
func codeForError(err error) Code {
	switch {
	case errors.Is(err, menu.ErrInvalidJSON):
		return CodeInvalidJSON
	case errors.Is(err, menu.ErrPropertyMissing):
		return CodePropertyMissing
	case errors.Is(err, session.ErrNoItems):
		return CodePropertyMissing
	case errors.Is(err, layout.ErrAngleConflict):
		return CodeInvalidAngles
	case errors.Is(err, session.ErrAlreadyActive):
		return CodeAlreadyActive
	default:
		return CodeUnknownError
	}
}
