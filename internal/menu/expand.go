/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package menu

import "fmt"

// Expander turns one declarative item into the nodes that replace it in its
// parent's child list. Static kinds return exactly one node; dynamic
// collection kinds generate their children from desktop state at expansion
// time.
type Expander interface {
	Expand(ic ItemConfig) ([]*Node, error)
}

var expanders = map[string]Expander{
	"":          submenuKind{},
	"submenu":   submenuKind{},
	"menu":      submenuKind{},
	"command":   commandKind{},
	"uri":       uriKind{},
	"bookmarks": bookmarksKind{},
	"recent":    recentKind{},
}

// ItemTypes lists the registered declarative item types, the implicit default
// excluded.
func ItemTypes() []string {
	types := make([]string, 0, len(expanders)-1)
	for typ := range expanders {
		if typ != "" {
			types = append(types, typ)
		}
	}
	return types
}

func expanderFor(typ string) (Expander, bool) {
	e, ok := expanders[typ]
	return e, ok
}

// baseNode carries the declarative fields shared by all kinds onto a node.
func baseNode(ic ItemConfig) *Node {
	n := NewNode(ic.Name, ic.Icon)
	n.StableID = ic.ID
	n.FixedAngle = ic.fixedAngle()
	return n
}

// submenuKind covers plain items and submenus: the item itself plus its
// recursively expanded children, no action.
type submenuKind struct{}

func (submenuKind) Expand(ic ItemConfig) ([]*Node, error) {
	n := baseNode(ic)
	children, err := buildChildren(ic.Children)
	if err != nil {
		return nil, err
	}
	n.Children = children
	return []*Node{n}, nil
}

// commandKind runs a shell line when selected.
type commandKind struct{}

func (commandKind) Expand(ic ItemConfig) ([]*Node, error) {
	if ic.Command == "" {
		return nil, fmt.Errorf("%w: item %q of type command has no command", ErrPropertyMissing, ic.Name)
	}
	n := baseNode(ic)
	n.Action = CommandAction(ic.Command)
	return []*Node{n}, nil
}

// uriKind opens a URI with the desktop handler when selected.
type uriKind struct{}

func (uriKind) Expand(ic ItemConfig) ([]*Node, error) {
	if ic.URI == "" {
		return nil, fmt.Errorf("%w: item %q of type uri has no uri", ErrPropertyMissing, ic.Name)
	}
	n := baseNode(ic)
	n.Action = URIAction(ic.URI)
	return []*Node{n}, nil
}
