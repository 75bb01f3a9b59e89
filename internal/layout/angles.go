/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout assigns a direction in degrees to every item of a pie-menu
// tree. Angles grow clockwise with 0° pointing up. Items may pin themselves
// to a fixed direction; all remaining items are distributed evenly into the
// wedges left between the pinned ones. In submenus one direction is reserved
// for the link back to the parent so that no item is drawn on top of it.
package layout

import (
	"errors"
	"fmt"
	"math"

	"gopie/internal/menu"
)

// NoParent is passed as the parent angle of a top-level menu, which has no
// back link. Any negative value works; resolved parent angles are always in
// [0,360).
const NoParent = -1.0

// parentClearance is the angular band around the back link that no fixed
// item may claim.
const parentClearance = 1.0

// ErrAngleConflict reports fixed angles that no valid layout can satisfy:
// a run that is not strictly increasing, an angle outside [0,360), or a
// fixed item within one degree of the parent link.
var ErrAngleConflict = errors.New("conflicting fixed angles")

// Angles computes the direction of every item on one menu level. It does not
// recurse and does not modify the items; the result is parallel to items.
// A parentAngle >= 0 reserves that direction for the back link.
func Angles(items []*menu.Node, parentAngle float64) ([]float64, error) {
	if len(items) == 0 {
		return nil, nil
	}
	angles := make([]float64, len(items))

	type fixedAngle struct {
		angle float64
		index int
	}
	var fixed []fixedAngle
	for i, it := range items {
		if it.FixedAngle >= 0 {
			fixed = append(fixed, fixedAngle{angle: it.FixedAngle, index: i})
		}
	}

	// Fixed angles must stay in [0,360) and increase strictly in item order.
	for i, f := range fixed {
		if f.angle >= 360 {
			return nil, fmt.Errorf("%w: %g° outside [0,360)", ErrAngleConflict, f.angle)
		}
		if i > 0 && f.angle <= fixed[i-1].angle {
			return nil, fmt.Errorf("%w: %g° does not increase over %g°", ErrAngleConflict, f.angle, fixed[i-1].angle)
		}
		if parentAngle >= 0 && circularDistance(f.angle, parentAngle) < parentClearance {
			return nil, fmt.Errorf("%w: %g° collides with the parent link at %g°", ErrAngleConflict, f.angle, parentAngle)
		}
	}

	// Without any fixed item the first one is anchored at the bottom, or at
	// the top when the parent link points down.
	if len(fixed) == 0 {
		first := 90.0
		if parentAngle >= 0 && parentAngle < 180 {
			first = 270.0
		}
		fixed = append(fixed, fixedAngle{angle: first, index: 0})
	}

	// Each pair of consecutive fixed angles bounds a wedge; the items listed
	// between them are spread evenly across it. A single fixed angle bounds
	// one full-circle wedge with itself.
	for i, begin := range fixed {
		end := fixed[(i+1)%len(fixed)]
		endAngle := end.angle
		if endAngle <= begin.angle {
			endAngle += 360
		}
		count := (end.index - begin.index - 1 + len(items)) % len(items)

		// The back link occupies one extra slot when it falls into this
		// wedge. Lift it into the wedge's frame first, which may exceed 360°.
		parent := parentAngle
		parentInWedge := false
		if parent >= 0 {
			if parent < begin.angle {
				parent += 360
			}
			parentInWedge = parent > begin.angle && parent < endAngle
			if parentInWedge {
				count++
			}
		}

		gap := (endAngle - begin.angle) / float64(count+1)

		idx := (begin.index + 1) % len(items)
		slot := 1
		skipParentSlot := parentInWedge
		for idx != end.index {
			angle := begin.angle + gap*float64(slot)
			if skipParentSlot && angle+gap/2-parent > 0 {
				slot++
				angle = begin.angle + gap*float64(slot)
				skipParentSlot = false
			}
			angles[idx] = math.Mod(angle, 360)
			idx = (idx + 1) % len(items)
			slot++
		}
		angles[begin.index] = math.Mod(begin.angle, 360)
	}

	return angles, nil
}

// Assign runs Angles over items, stores the results and recurses into every
// child level, anchoring each at the direction opposite its parent item.
// Pass NoParent for a top-level menu. On error no angle below the failing
// level has been assigned.
func Assign(items []*menu.Node, parentAngle float64) error {
	angles, err := Angles(items, parentAngle)
	if err != nil {
		return err
	}
	for i, it := range items {
		it.Angle = angles[i]
	}
	for _, it := range items {
		if len(it.Children) == 0 {
			continue
		}
		if err := Assign(it.Children, Opposite(it.Angle)); err != nil {
			return err
		}
	}
	return nil
}

// Opposite returns the direction pointing the other way, in [0,360).
func Opposite(angle float64) float64 {
	return math.Mod(angle+180, 360)
}

// circularDistance measures the shorter angular distance between two
// directions.
func circularDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}
