/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package menu defines the pie-menu item tree, its hierarchical addressing
// and the transformation from declarative menu descriptions to item trees.
package menu

import "context"

// UnsetAngle marks an angle field as "not assigned". Both the fixed angle of
// an item and its resolved angle use degrees in [0,360); any negative value
// means unset.
const UnsetAngle = -1.0

// Action is invoked when the item carrying it is selected. Actions must not
// block: long-running work (spawned commands, opened URIs) is detached before
// the call returns.
type Action func(ctx context.Context) error

// Node is one item of a pie-menu tree. The root node represents the menu
// center; it never receives a resolved angle. All other nodes end up with a
// definite angle once the layout engine has run over a shown tree.
type Node struct {
	// Name is the display label; Icon is an opaque reference interpreted by
	// the presenter (theme icon name, emoji, file path).
	Name string
	Icon string

	// StableID is an optional caller-supplied id segment used instead of the
	// positional index when ids are assigned (ad-hoc trees only; configured
	// menus always address positionally).
	StableID string

	// ID is the full hierarchical id, e.g. "/2/4", filled by AssignIDs.
	ID string

	// FixedAngle pins the item to a direction given by configuration;
	// UnsetAngle (any negative value) leaves the direction to the layout
	// engine. Angle is the resolved direction.
	FixedAngle float64
	Angle      float64

	// Centered asks the presenter to open this menu at the screen center
	// rather than at the pointer. Only meaningful on the root.
	Centered bool

	Children []*Node

	// Action is nil for submenus and purely decorative items.
	Action Action
}

// NewNode returns a node with both angle fields unset.
func NewNode(name, icon string) *Node {
	return &Node{Name: name, Icon: icon, FixedAngle: UnsetAngle, Angle: UnsetAngle}
}

// ChildAt returns the idx-th child or nil when out of range.
func (n *Node) ChildAt(idx int) *Node {
	if idx > -1 && len(n.Children) > idx {
		return n.Children[idx]
	}
	return nil
}

// Walk visits n and every node below it in depth-first order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the tree rooted at n, including n.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node) { total++ })
	return total
}
