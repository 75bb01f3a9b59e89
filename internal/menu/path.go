/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package menu

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node inside a tree as the sequence of child indices walked
// from the root. The empty path addresses the root itself. Its text form is
// slash-separated, e.g. "/2/4" for the fifth child of the third top-level
// item.
type Path []int

// String renders p in its text form. The root renders as "/".
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, idx := range p {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(idx))
	}
	return b.String()
}

// IsRoot reports whether p addresses the root node.
func (p Path) IsRoot() bool { return len(p) == 0 }

// ParsePath parses the text form of a path. "/" and "" both address the
// root. Every segment must be a non-negative integer.
func ParsePath(s string) (Path, error) {
	if s == "" || s == "/" {
		return Path{}, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("path %q does not start with '/'", s)
	}
	segs := strings.Split(s[1:], "/")
	p := make(Path, 0, len(segs))
	for _, seg := range segs {
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("path %q: invalid segment %q", s, seg)
		}
		p = append(p, idx)
	}
	return p, nil
}

// Lookup walks p through the top-level items and returns the addressed node.
// The boolean is false when p runs outside the tree or addresses the
// (virtual) root of the item list.
func Lookup(items []*Node, p Path) (*Node, bool) {
	if len(p) == 0 {
		return nil, false
	}
	if p[0] < 0 || p[0] >= len(items) {
		return nil, false
	}
	node := items[p[0]]
	for _, idx := range p[1:] {
		if node = node.ChildAt(idx); node == nil {
			return nil, false
		}
	}
	return node, true
}

// Resolve is Lookup for trusted callers: a path that does not address a node
// of the given tree is a caller bug and panics.
func Resolve(items []*Node, p Path) *Node {
	node, ok := Lookup(items, p)
	if !ok {
		panic(fmt.Sprintf("menu: path %s outside tree", p))
	}
	return node
}

// AssignIDs fills the ID of every node below the given items with
// parentID + "/" + segment, where the segment is the node's StableID if set
// and its child index otherwise. Pass "" as parentID for the top level.
// Assignment is idempotent: rerunning it yields identical ids.
func AssignIDs(items []*Node, parentID string) {
	for i, n := range items {
		seg := n.StableID
		if seg == "" {
			seg = strconv.Itoa(i)
		}
		n.ID = parentID + "/" + seg
		AssignIDs(n.Children, n.ID)
	}
}
