/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package menu

import (
	"bufio"
	"encoding/xml"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// defaultMaxEntries bounds dynamic collections unless the item overrides it.
const defaultMaxEntries = 7

func maxEntries(ic ItemConfig) int {
	if ic.Max > 0 {
		return ic.Max
	}
	return defaultMaxEntries
}

// bookmarksKind expands into a submenu with one entry per GTK place
// bookmark. An unreadable bookmarks file yields an empty submenu rather than
// an error so that the surrounding menu still opens.
type bookmarksKind struct{}

func (bookmarksKind) Expand(ic ItemConfig) ([]*Node, error) {
	n := baseNode(ic)
	if n.Name == "" {
		n.Name = "Bookmarks"
	}
	if n.Icon == "" {
		n.Icon = "user-bookmarks"
	}
	for _, bm := range readGTKBookmarks(maxEntries(ic)) {
		child := NewNode(bm.label, "folder")
		child.Action = URIAction(bm.uri)
		n.Children = append(n.Children, child)
	}
	return []*Node{n}, nil
}

type gtkBookmark struct {
	uri   string
	label string
}

func readGTKBookmarks(limit int) []gtkBookmark {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	f, err := os.Open(filepath.Join(dir, "gtk-3.0", "bookmarks"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []gtkBookmark
	sc := bufio.NewScanner(f)
	for sc.Scan() && len(out) < limit {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		// Each line holds a URI, optionally followed by a custom label.
		uri, label, hasLabel := strings.Cut(line, " ")
		if !hasLabel || label == "" {
			label = displayName(uri)
		}
		out = append(out, gtkBookmark{uri: uri, label: label})
	}
	return out
}

// recentKind expands into a submenu with one entry per recently used file,
// newest first, read from the freedesktop recently-used.xbel store.
type recentKind struct{}

func (recentKind) Expand(ic ItemConfig) ([]*Node, error) {
	n := baseNode(ic)
	if n.Name == "" {
		n.Name = "Recent Files"
	}
	if n.Icon == "" {
		n.Icon = "document-open-recent"
	}
	for _, href := range readRecentFiles(maxEntries(ic)) {
		child := NewNode(displayName(href), "document-open-recent")
		child.Action = URIAction(href)
		n.Children = append(n.Children, child)
	}
	return []*Node{n}, nil
}

type xbelStore struct {
	XMLName   xml.Name       `xml:"xbel"`
	Bookmarks []xbelBookmark `xml:"bookmark"`
}

type xbelBookmark struct {
	Href     string `xml:"href,attr"`
	Modified string `xml:"modified,attr"`
}

func recentStorePath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "recently-used.xbel"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "recently-used.xbel"), nil
}

func readRecentFiles(limit int) []string {
	p, err := recentStorePath()
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil
	}
	var store xbelStore
	if err := xml.Unmarshal(data, &store); err != nil {
		return nil
	}
	sort.SliceStable(store.Bookmarks, func(i, j int) bool {
		return xbelTime(store.Bookmarks[i].Modified).After(xbelTime(store.Bookmarks[j].Modified))
	})
	var hrefs []string
	for _, bm := range store.Bookmarks {
		if bm.Href == "" {
			continue
		}
		hrefs = append(hrefs, bm.Href)
		if len(hrefs) == limit {
			break
		}
	}
	return hrefs
}

func xbelTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// displayName derives a human-readable label from a URI, typically the last
// path segment with percent-escapes resolved.
func displayName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return raw
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return raw
	}
	return base
}
