/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"errors"
	"math"
	"testing"

	"gopie/internal/menu"
)

func plainItems(n int) []*menu.Node {
	items := make([]*menu.Node, n)
	for i := range items {
		items[i] = menu.NewNode("item", "")
	}
	return items
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnglesEvenDistribution(t *testing.T) {
	angles, err := Angles(plainItems(3), NoParent)
	if err != nil {
		t.Fatalf("Angles error: %v", err)
	}
	want := []float64{90, 210, 330}
	for i := range want {
		if !almostEqual(angles[i], want[i]) {
			t.Fatalf("angles = %v, want %v", angles, want)
		}
	}
}

func TestAnglesSingleItem(t *testing.T) {
	angles, err := Angles(plainItems(1), NoParent)
	if err != nil {
		t.Fatalf("Angles error: %v", err)
	}
	if !almostEqual(angles[0], 90) {
		t.Fatalf("single item at %v, want 90", angles[0])
	}
}

func TestAnglesEmptyLevel(t *testing.T) {
	angles, err := Angles(nil, NoParent)
	if err != nil || angles != nil {
		t.Fatalf("empty level: %v, %v", angles, err)
	}
}

func TestAnglesRespectsFixedWedges(t *testing.T) {
	items := plainItems(4)
	items[0].FixedAngle = 0
	items[2].FixedAngle = 180
	angles, err := Angles(items, NoParent)
	if err != nil {
		t.Fatalf("Angles error: %v", err)
	}
	want := []float64{0, 90, 180, 270}
	for i := range want {
		if !almostEqual(angles[i], want[i]) {
			t.Fatalf("angles = %v, want %v", angles, want)
		}
	}
}

func TestAnglesRejectsNonIncreasingFixed(t *testing.T) {
	items := plainItems(3)
	items[0].FixedAngle = 180
	items[1].FixedAngle = 90
	if _, err := Angles(items, NoParent); !errors.Is(err, ErrAngleConflict) {
		t.Fatalf("expected ErrAngleConflict, got %v", err)
	}
}

func TestAnglesRejectsOutOfRangeFixed(t *testing.T) {
	items := plainItems(2)
	items[0].FixedAngle = 360
	if _, err := Angles(items, NoParent); !errors.Is(err, ErrAngleConflict) {
		t.Fatalf("expected ErrAngleConflict, got %v", err)
	}
}

func TestAnglesRejectsFixedOnParentLink(t *testing.T) {
	items := plainItems(2)
	items[0].FixedAngle = 90.5
	if _, err := Angles(items, 90); !errors.Is(err, ErrAngleConflict) {
		t.Fatalf("expected ErrAngleConflict, got %v", err)
	}

	// The clearance band wraps across 0°.
	items = plainItems(2)
	items[0].FixedAngle = 359.5
	if _, err := Angles(items, 0); !errors.Is(err, ErrAngleConflict) {
		t.Fatalf("expected ErrAngleConflict across the wrap, got %v", err)
	}
}

func TestAnglesFixedJustOutsideClearance(t *testing.T) {
	items := plainItems(2)
	items[0].FixedAngle = 92
	if _, err := Angles(items, 90); err != nil {
		t.Fatalf("fixed angle outside the clearance band rejected: %v", err)
	}
}

func TestAnglesAnchorsAwayFromParent(t *testing.T) {
	// A parent link pointing up pushes the anchor to the bottom half.
	angles, err := Angles(plainItems(1), 90)
	if err != nil {
		t.Fatalf("Angles error: %v", err)
	}
	if !almostEqual(angles[0], 270) {
		t.Fatalf("item at %v, want 270 opposite the parent", angles[0])
	}
}

func TestAnglesLeavesRoomForParentLink(t *testing.T) {
	// Two unpinned items with the parent link pointing down: the slot the
	// link falls into stays empty.
	angles, err := Angles(plainItems(2), 180)
	if err != nil {
		t.Fatalf("Angles error: %v", err)
	}
	if !almostEqual(angles[0], 90) || !almostEqual(angles[1], 330) {
		t.Fatalf("angles = %v, want [90 330]", angles)
	}
	for _, a := range angles {
		if circularDistance(a, 180) < parentClearance {
			t.Fatalf("item at %v collides with the parent link", a)
		}
	}
}

func TestAssignRecursesOppositeParent(t *testing.T) {
	child := menu.NewNode("child", "")
	top := menu.NewNode("top", "")
	top.Children = []*menu.Node{child}
	items := []*menu.Node{top}

	if err := Assign(items, NoParent); err != nil {
		t.Fatalf("Assign error: %v", err)
	}
	if !almostEqual(top.Angle, 90) {
		t.Fatalf("top angle = %v, want 90", top.Angle)
	}
	// The child level is anchored opposite its parent's direction (270), so
	// the single child sits at 90 again.
	if !almostEqual(child.Angle, 90) {
		t.Fatalf("child angle = %v, want 90", child.Angle)
	}
}

func TestAssignResolvesEveryItem(t *testing.T) {
	sub := menu.NewNode("sub", "")
	sub.Children = plainItems(4)
	items := append(plainItems(2), sub)

	if err := Assign(items, NoParent); err != nil {
		t.Fatalf("Assign error: %v", err)
	}
	seen := map[float64]bool{}
	for _, it := range items {
		if it.Angle < 0 || it.Angle >= 360 {
			t.Fatalf("angle %v outside [0,360)", it.Angle)
		}
		if seen[it.Angle] {
			t.Fatalf("duplicate angle %v", it.Angle)
		}
		seen[it.Angle] = true
	}
	for _, c := range sub.Children {
		if c.Angle < 0 || c.Angle >= 360 {
			t.Fatalf("child angle %v unresolved", c.Angle)
		}
	}
}

func TestAssignStopsAtFailingLevel(t *testing.T) {
	bad := menu.NewNode("bad", "")
	bad.Children = plainItems(2)
	bad.Children[0].FixedAngle = 200
	bad.Children[1].FixedAngle = 100
	items := []*menu.Node{bad}

	if err := Assign(items, NoParent); !errors.Is(err, ErrAngleConflict) {
		t.Fatalf("expected ErrAngleConflict, got %v", err)
	}
	if bad.Children[0].Angle != menu.UnsetAngle {
		t.Fatalf("failing level must stay unassigned, got %v", bad.Children[0].Angle)
	}
}

func TestOpposite(t *testing.T) {
	if got := Opposite(90); !almostEqual(got, 270) {
		t.Fatalf("Opposite(90) = %v", got)
	}
	if got := Opposite(270); !almostEqual(got, 90) {
		t.Fatalf("Opposite(270) = %v", got)
	}
	if got := Opposite(350); !almostEqual(got, 170) {
		t.Fatalf("Opposite(350) = %v", got)
	}
}
