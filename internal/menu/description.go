/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package menu

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Errors reported for broken menu descriptions. Callers distinguish text that
// is not JSON at all from well-formed JSON describing an unusable tree.
var (
	ErrInvalidJSON     = errors.New("description is not valid JSON")
	ErrPropertyMissing = errors.New("description is not a usable menu")
)

// ItemConfig is the declarative form of one menu item, shared by the YAML
// menu configuration and the JSON descriptions of ad-hoc menus.
type ItemConfig struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`

	// ID optionally gives the item a stable id segment; selections then
	// report this segment instead of the child index.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Type selects the expansion behavior. Empty means "submenu when
	// children are present, plain item otherwise".
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Angle pins the item to a fixed direction in degrees. Absent or
	// negative leaves the direction to the layout engine.
	Angle *float64 `json:"angle,omitempty" yaml:"angle,omitempty"`

	// Command is the shell line run on selection (type "command").
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// URI is opened with the desktop handler on selection (type "uri").
	URI string `json:"uri,omitempty" yaml:"uri,omitempty"`

	// Max caps the number of generated entries of dynamic collections.
	Max int `json:"max,omitempty" yaml:"max,omitempty"`

	// Centered asks the presenter to open the menu at the screen center.
	// Only meaningful on the top-level item.
	Centered bool `json:"centered,omitempty" yaml:"centered,omitempty"`

	Children []ItemConfig `json:"children,omitempty" yaml:"children,omitempty"`
}

// fixedAngle maps the optional config angle onto the node convention.
func (ic ItemConfig) fixedAngle() float64 {
	if ic.Angle == nil || *ic.Angle < 0 {
		return UnsetAngle
	}
	return *ic.Angle
}

// BuildTree turns a declarative menu into its item tree. The returned root
// carries no angle; its children are expanded through the item-kind registry
// but not yet laid out.
func BuildTree(ic ItemConfig) (*Node, error) {
	root := NewNode(ic.Name, ic.Icon)
	root.Centered = ic.Centered
	children, err := buildChildren(ic.Children)
	if err != nil {
		return nil, err
	}
	root.Children = children
	return root, nil
}

func buildChildren(items []ItemConfig) ([]*Node, error) {
	var nodes []*Node
	for _, ic := range items {
		kind, ok := expanderFor(ic.Type)
		if !ok {
			return nil, fmt.Errorf("%w: unknown item type %q", ErrPropertyMissing, ic.Type)
		}
		expanded, err := kind.Expand(ic)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, expanded...)
	}
	// Every assigned id must address exactly one node, so an id may not
	// repeat within a sibling group.
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.StableID == "" {
			continue
		}
		if seen[n.StableID] {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrPropertyMissing, n.StableID)
		}
		seen[n.StableID] = true
	}
	return nodes, nil
}

// FromDescription parses the JSON description of an ad-hoc menu and builds
// its item tree. Unparseable text fails with ErrInvalidJSON; well-formed JSON
// that does not describe a menu fails with ErrPropertyMissing.
func FromDescription(data []byte) (*Node, error) {
	var ic ItemConfig
	if err := json.Unmarshal(data, &ic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := validateDescription(data); err != nil {
		return nil, err
	}
	return BuildTree(ic)
}

func validateDescription(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(descriptionSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPropertyMissing, err)
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		details = append(details, re.String())
	}
	return fmt.Errorf("%w: %s", ErrPropertyMissing, strings.Join(details, "; "))
}

// resolvedItem is the outbound JSON form of a laid-out node, consumed by
// presenters drawing the menu.
type resolvedItem struct {
	Name     string         `json:"name,omitempty"`
	Icon     string         `json:"icon,omitempty"`
	ID       string         `json:"id,omitempty"`
	Angle    float64        `json:"angle"`
	Centered bool           `json:"centered,omitempty"`
	Children []resolvedItem `json:"children,omitempty"`
}

// ToDescription serializes a laid-out tree, resolved angles and assigned ids
// included, for consumption by a presenter.
func ToDescription(root *Node) ([]byte, error) {
	return json.Marshal(resolveItem(root))
}

func resolveItem(n *Node) resolvedItem {
	ri := resolvedItem{
		Name:     n.Name,
		Icon:     n.Icon,
		ID:       n.ID,
		Angle:    n.Angle,
		Centered: n.Centered,
	}
	for _, c := range n.Children {
		ri.Children = append(ri.Children, resolveItem(c))
	}
	return ri
}
