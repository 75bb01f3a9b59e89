/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package menu

import "testing"

func TestParsePathRoundTrip(t *testing.T) {
	p, err := ParsePath("/2/4")
	if err != nil {
		t.Fatalf("ParsePath error: %v", err)
	}
	if len(p) != 2 || p[0] != 2 || p[1] != 4 {
		t.Fatalf("unexpected path: %v", p)
	}
	if got, want := p.String(), "/2/4"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestParsePathRoot(t *testing.T) {
	for _, s := range []string{"", "/"} {
		p, err := ParsePath(s)
		if err != nil {
			t.Fatalf("ParsePath(%q) error: %v", s, err)
		}
		if !p.IsRoot() {
			t.Fatalf("ParsePath(%q) expected root path, got %v", s, p)
		}
		if p.String() != "/" {
			t.Fatalf("root String() = %q, want \"/\"", p.String())
		}
	}
}

func TestParsePathRejectsMalformed(t *testing.T) {
	for _, s := range []string{"2/4", "/a", "/-1", "/1//2", "/1/"} {
		if _, err := ParsePath(s); err == nil {
			t.Fatalf("ParsePath(%q) expected error", s)
		}
	}
}

func testTree() []*Node {
	a := NewNode("a", "")
	b := NewNode("b", "")
	b.Children = []*Node{NewNode("b0", ""), NewNode("b1", "")}
	return []*Node{a, b}
}

func TestLookupWalksTree(t *testing.T) {
	items := testTree()
	n, ok := Lookup(items, Path{1, 0})
	if !ok || n.Name != "b0" {
		t.Fatalf("Lookup(/1/0) = %v, %v", n, ok)
	}
	if _, ok := Lookup(items, Path{}); ok {
		t.Fatalf("Lookup of root path expected false")
	}
	if _, ok := Lookup(items, Path{5}); ok {
		t.Fatalf("Lookup outside tree expected false")
	}
	if _, ok := Lookup(items, Path{0, 0}); ok {
		t.Fatalf("Lookup below leaf expected false")
	}
	if _, ok := Lookup(items, Path{1, -1}); ok {
		t.Fatalf("Lookup with negative segment expected false")
	}
}

func TestChildAtBoundsChecks(t *testing.T) {
	b := testTree()[1]
	if c := b.ChildAt(1); c == nil || c.Name != "b1" {
		t.Fatalf("ChildAt(1) = %v", c)
	}
	if c := b.ChildAt(2); c != nil {
		t.Fatalf("ChildAt(2) expected nil, got %v", c)
	}
	if c := b.ChildAt(-1); c != nil {
		t.Fatalf("ChildAt(-1) expected nil, got %v", c)
	}
}

func TestWalkAndCountVisitEveryNode(t *testing.T) {
	root := NewNode("m", "")
	root.Children = testTree()
	var names []string
	root.Walk(func(n *Node) { names = append(names, n.Name) })
	want := []string{"m", "a", "b", "b0", "b1"}
	if len(names) != len(want) {
		t.Fatalf("Walk visited %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Walk order %v, want %v", names, want)
		}
	}
	if got := root.Count(); got != 5 {
		t.Fatalf("Count() = %d, want 5", got)
	}
}

func TestResolvePanicsOutsideTree(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Resolve expected to panic for a path outside the tree")
		}
	}()
	Resolve(testTree(), Path{9})
}

func TestAssignIDsPositionalAndStable(t *testing.T) {
	items := testTree()
	items[1].StableID = "custom"
	AssignIDs(items, "")
	if items[0].ID != "/0" {
		t.Fatalf("items[0].ID = %q, want /0", items[0].ID)
	}
	if items[1].ID != "/custom" {
		t.Fatalf("items[1].ID = %q, want /custom", items[1].ID)
	}
	if items[1].Children[1].ID != "/custom/1" {
		t.Fatalf("nested ID = %q, want /custom/1", items[1].Children[1].ID)
	}

	// Rerunning after a layout pass must not change any id.
	AssignIDs(items, "")
	if items[1].Children[1].ID != "/custom/1" {
		t.Fatalf("AssignIDs is not idempotent: %q", items[1].Children[1].ID)
	}
}
